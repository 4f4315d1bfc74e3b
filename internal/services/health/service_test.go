package health

import (
	"context"
	"errors"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestStatusWithoutDatabase(t *testing.T) {
	st := NewService(nil, "local").Status(context.Background())
	if !st.OK || st.Database != "memory" || st.Storage != "local" {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestStatusReportsPingResult(t *testing.T) {
	ok := NewService(pingFunc(func(context.Context) error { return nil }), "s3").Status(context.Background())
	if !ok.OK || ok.Database != "postgres" {
		t.Fatalf("unexpected status: %+v", ok)
	}

	down := NewService(pingFunc(func(context.Context) error { return errors.New("refused") }), "s3").Status(context.Background())
	if down.OK || down.Database != "unreachable" {
		t.Fatalf("unexpected status: %+v", down)
	}
}
