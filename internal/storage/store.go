// Package storage persists triaged complaints.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/civictriage/internal/model"
)

// Store is the complaint persistence collaborator
type Store interface {
	// LoadAll returns every record in store order
	LoadAll(ctx context.Context) ([]model.Complaint, error)

	// Append adds a fully built record
	Append(ctx context.Context, c model.Complaint) error

	// Create assigns the next id and appends the record built from it,
	// with no other writer in between
	Create(ctx context.Context, build func(id int64) model.Complaint) (model.Complaint, error)

	Close() error
}

// NextID returns max(id)+1, or FirstComplaintID for an empty store
func NextID(records []model.Complaint) int64 {
	var maxID int64
	for _, r := range records {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	return nextAfter(maxID)
}

func nextAfter(maxID int64) int64 {
	if maxID <= 0 {
		return model.FirstComplaintID
	}
	return maxID + 1
}

// Open creates the store selected by cfg.Driver
func Open(ctx context.Context, cfg model.StorageConfig) (Store, error) {
	var (
		store Store
		err   error
	)

	// Keep the interface nil on failure
	switch strings.ToLower(cfg.Driver) {
	case "csv", "":
		var s *CSVStore
		if s, err = OpenCSV(cfg.DSN); err == nil {
			store = s
		}
	case "sqlite", "sqlite3":
		var s *SQLiteStore
		if s, err = OpenSQLite(ctx, cfg.DSN); err == nil {
			store = s
		}
	case "postgres", "postgresql":
		var s *PostgresStore
		if s, err = OpenPostgres(ctx, cfg.DSN); err == nil {
			store = s
		}
	case "memory":
		store = NewMemoryStore()
	default:
		err = fmt.Errorf("unsupported storage driver %q (supported: csv, sqlite, postgres, memory)", cfg.Driver)
	}

	if err != nil {
		return nil, err
	}
	return store, nil
}
