package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ppiankov/civictriage/internal/model"
)

// SQLiteStore keeps complaints in a SQLite database through gorm
type SQLiteStore struct {
	db *gorm.DB
	mu sync.Mutex // SQLite allows one writer; serialize id assignment in process
}

// OpenSQLite opens (and migrates) the database at dsn
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ensureSQLiteDirectory(dsn); err != nil {
		return nil, fmt.Errorf("ensure sqlite directory: %w", err)
	}

	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	return NewSQLiteStore(ctx, db)
}

// NewSQLiteStore wraps an existing gorm handle and migrates the schema
func NewSQLiteStore(ctx context.Context, db *gorm.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("gorm db is required")
	}
	if err := db.WithContext(ctx).AutoMigrate(&complaintRecord{}); err != nil {
		return nil, fmt.Errorf("migrate complaints table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func ensureSQLiteDirectory(dsn string) error {
	candidate := strings.TrimSpace(dsn)
	if candidate == "" {
		return errors.New("sqlite dsn is required")
	}
	if candidate == ":memory:" || strings.HasPrefix(strings.ToLower(candidate), "file:") {
		return nil
	}
	if i := strings.IndexByte(candidate, '?'); i >= 0 {
		candidate = candidate[:i]
	}
	dir := filepath.Dir(candidate)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

func (s *SQLiteStore) LoadAll(ctx context.Context) ([]model.Complaint, error) {
	var rows []complaintRecord
	if err := s.db.WithContext(ctx).Order("complaint_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load complaints: %w", err)
	}

	out := make([]model.Complaint, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *SQLiteStore) Append(ctx context.Context, c model.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := recordFromModel(c)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("insert complaint %d: %w", c.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Create(ctx context.Context, build func(id int64) model.Complaint) (model.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created model.Complaint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxID int64
		if err := tx.Model(&complaintRecord{}).
			Select("COALESCE(MAX(complaint_id), 0)").
			Scan(&maxID).Error; err != nil {
			return fmt.Errorf("read max id: %w", err)
		}

		created = build(nextAfter(maxID))
		rec := recordFromModel(created)
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert complaint %d: %w", created.ID, err)
		}
		return nil
	})
	if err != nil {
		return model.Complaint{}, err
	}
	return created, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
