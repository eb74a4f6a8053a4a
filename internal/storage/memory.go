package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/ppiankov/civictriage/internal/model"
)

// MemoryStore keeps records in process. Used for dry runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	records []model.Complaint
}

// NewMemoryStore creates an empty store, optionally seeded
func NewMemoryStore(seed ...model.Complaint) *MemoryStore {
	return &MemoryStore{records: append([]model.Complaint(nil), seed...)}
}

func (s *MemoryStore) LoadAll(ctx context.Context) ([]model.Complaint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Complaint(nil), s.records...), nil
}

func (s *MemoryStore) Append(ctx context.Context, c model.Complaint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(c)
}

func (s *MemoryStore) Create(ctx context.Context, build func(id int64) model.Complaint) (model.Complaint, error) {
	if err := ctx.Err(); err != nil {
		return model.Complaint{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := build(NextID(s.records))
	if err := s.appendLocked(c); err != nil {
		return model.Complaint{}, err
	}
	return c, nil
}

func (s *MemoryStore) appendLocked(c model.Complaint) error {
	for _, r := range s.records {
		if r.ID == c.ID {
			return fmt.Errorf("complaint %d already exists", c.ID)
		}
	}
	s.records = append(s.records, c)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
