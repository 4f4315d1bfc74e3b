package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestWriteEmitsJSONLine(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	Warn("candidate.submission", map[string]any{
		"state": "REJECTED",
		"err":   errors.New("boom"),
		"level": "overridden",
	})

	line := strings.TrimSpace(buf.String())
	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("decode log line %q: %v", line, err)
	}
	if payload["level"] != "warn" {
		t.Fatalf("expected level warn, got %v", payload["level"])
	}
	if payload["msg"] != "candidate.submission" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["err"] != "boom" {
		t.Fatalf("expected error to be stringified, got %v", payload["err"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("missing ts")
	}
}
