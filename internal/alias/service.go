// Package alias remembers which person a spoken or typed name fragment meant
// the last time it was ambiguous.
package alias

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

type Mapping struct {
	Fragment   string
	PersonType entity.PersonType
	PersonID   uuid.UUID
}

//go:generate mockgen -source=service.go -destination=service_mock.go -package=alias
type Repository interface {
	// FindMatch returns uuid.Nil when nothing was learned for the fragment.
	// An empty person type matches mappings of either type.
	FindMatch(ctx context.Context, t entity.PersonType, fragment string) (uuid.UUID, error)
	CreateMapping(ctx context.Context, mapping Mapping) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the person last chosen for fragment, or uuid.Nil.
func (s *Service) Suggest(ctx context.Context, t entity.PersonType, fragment string) (uuid.UUID, error) {
	fragment = normalize(fragment)
	if fragment == "" {
		return uuid.Nil, nil
	}

	return s.repo.FindMatch(ctx, t, fragment)
}

// Learn remembers that fragment meant the given person.
func (s *Service) Learn(ctx context.Context, t entity.PersonType, fragment string, id uuid.UUID) error {
	fragment = normalize(fragment)
	if fragment == "" || id == uuid.Nil {
		return nil
	}

	return s.repo.CreateMapping(ctx, Mapping{Fragment: fragment, PersonType: t, PersonID: id})
}

func normalize(fragment string) string {
	return strings.Join(strings.Fields(fragment), " ")
}
