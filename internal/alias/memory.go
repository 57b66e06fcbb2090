package alias

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

// MemoryRepository keeps mappings for the process lifetime. Later mappings
// for the same fragment win.
type MemoryRepository struct {
	mu       sync.RWMutex
	mappings []Mapping
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) FindMatch(_ context.Context, t entity.PersonType, fragment string) (uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.mappings) - 1; i >= 0; i-- {
		m := r.mappings[i]
		if t != "" && m.PersonType != t {
			continue
		}

		if strings.EqualFold(m.Fragment, fragment) {
			return m.PersonID, nil
		}
	}

	return uuid.Nil, nil
}

func (r *MemoryRepository) CreateMapping(_ context.Context, m Mapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.mappings = append(r.mappings, m)

	return nil
}
