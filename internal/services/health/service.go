package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Status is the health payload.
type Status struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
	Storage  string `json:"storage"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB              Pinger
	StorageProvider string
}

// NewService constructs a new health service. db may be nil when the
// in-memory repositories are in use.
func NewService(db Pinger, storageProvider string) *Service {
	return &Service{DB: db, StorageProvider: storageProvider}
}

// Status reports whether the service can reach its database.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, Database: "memory", Storage: s.StorageProvider}
	if s.DB == nil {
		return st
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		st.OK = false
		st.Database = "unreachable"
		return st
	}
	st.Database = "postgres"
	return st
}
