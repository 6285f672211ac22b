package backend

import (
	"context"
	"time"

	"gastos/internal/sheets"
	gsheet "gastos/internal/sheets/google"
)

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// BackendResult contains the store, its cleanup and a readiness probe.
type BackendResult struct {
	Store   sheets.Store
	Cleanup CleanupFunc
	// Ready is nil for stores with nothing to probe.
	Ready func(ctx context.Context) error
}

// Close runs Cleanup when present.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Memory
	MemorySeedFile string

	// SQLite
	SQLiteDBPath string

	// PostgreSQL
	PostgresDSN string

	// Google Sheets
	Google gsheet.Config

	// Mirror events, only honoured for local backends
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Read cache in front of the store; zero disables it
	CacheTTL time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SheetsBackend   BackendType = "sheets"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SheetsBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}

// IsLocal reports whether the primary store lives outside Google Sheets,
// which is when mirror events are worth publishing.
func (bt BackendType) IsLocal() bool {
	return bt.IsValid() && bt != SheetsBackend
}
