package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/ppiankov/civictriage/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS complaints (
	complaint_id      BIGINT PRIMARY KEY,
	description       TEXT NOT NULL,
	category          TEXT NOT NULL,
	severity          TEXT NOT NULL,
	location          TEXT NOT NULL,
	urgency_score     INTEGER NOT NULL,
	created_at        TIMESTAMP NOT NULL,
	resolution_status TEXT NOT NULL
)`

const selectComplaints = `
	SELECT complaint_id, description, category, severity, location,
	       urgency_score, created_at, resolution_status
	FROM complaints
	ORDER BY complaint_id ASC`

const insertComplaint = `
	INSERT INTO complaints (complaint_id, description, category, severity, location,
	                        urgency_score, created_at, resolution_status)
	VALUES (:complaint_id, :description, :category, :severity, :location,
	        :urgency_score, :created_at, :resolution_status)`

// PostgresStore keeps complaints in PostgreSQL
type PostgresStore struct {
	db *sqlx.DB
}

// OpenPostgres connects to dsn and ensures the schema exists
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	s := NewPostgresStore(db)
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStore wraps an existing connection
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the complaints table if needed
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create complaints table: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadAll(ctx context.Context) ([]model.Complaint, error) {
	var rows []complaintRecord
	if err := s.db.SelectContext(ctx, &rows, selectComplaints); err != nil {
		return nil, fmt.Errorf("load complaints: %w", err)
	}

	out := make([]model.Complaint, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *PostgresStore) Append(ctx context.Context, c model.Complaint) error {
	if _, err := s.db.NamedExecContext(ctx, insertComplaint, recordFromModel(c)); err != nil {
		return fmt.Errorf("insert complaint %d: %w", c.ID, err)
	}
	return nil
}

// Create locks the table for the id read and insert so concurrent
// writers cannot take the same id
func (s *PostgresStore) Create(ctx context.Context, build func(id int64) model.Complaint) (model.Complaint, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Complaint{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "LOCK TABLE complaints IN SHARE ROW EXCLUSIVE MODE"); err != nil {
		return model.Complaint{}, fmt.Errorf("lock complaints: %w", err)
	}

	var maxID int64
	if err := tx.GetContext(ctx, &maxID, "SELECT COALESCE(MAX(complaint_id), 0) FROM complaints"); err != nil {
		return model.Complaint{}, fmt.Errorf("read max id: %w", err)
	}

	c := build(nextAfter(maxID))
	if _, err := tx.NamedExecContext(ctx, insertComplaint, recordFromModel(c)); err != nil {
		return model.Complaint{}, fmt.Errorf("insert complaint %d: %w", c.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return model.Complaint{}, fmt.Errorf("commit: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
