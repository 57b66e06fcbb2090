// Package audit records every committed action for the activity log.
package audit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Entry struct {
	ID        uuid.UUID `json:"id"`
	Category  string    `json:"category"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

//go:generate mockgen -source=audit.go -destination=audit_mock.go -package=audit
type Repository interface {
	Append(ctx context.Context, e *Entry) error
	// List returns the newest entries first.
	List(ctx context.Context, limit int) ([]*Entry, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Record(ctx context.Context, category, detail string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return fmt.Errorf("recording audit entry: category is required")
	}

	e := &Entry{
		ID:        uuid.New(),
		Category:  category,
		Detail:    detail,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Append(ctx, e); err != nil {
		return fmt.Errorf("recording audit entry: %w", err)
	}

	return nil
}

func (s *Service) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	return s.repo.List(ctx, limit)
}

// MemoryRepository backs the offline mode.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []*Entry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Append(_ context.Context, e *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *e
	r.entries = append(r.entries, &copied)

	return nil
}

func (r *MemoryRepository) List(_ context.Context, limit int) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Entry, 0, min(limit, len(r.entries)))
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		copied := *r.entries[i]
		out = append(out, &copied)
	}

	return out, nil
}
