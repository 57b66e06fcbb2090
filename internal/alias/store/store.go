package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daftar/internal/alias"
	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindMatch(ctx context.Context, t entity.PersonType, fragment string) (uuid.UUID, error) {
	query := `
		SELECT person_id
		FROM name_aliases
		WHERE LOWER(fragment) = LOWER($1)
		  AND ($2 = '' OR person_type = $2)
		ORDER BY created_at DESC
		LIMIT 1
	`

	var id uuid.UUID

	err := s.db.QueryRowContext(ctx, query, fragment, string(t)).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, nil
		}

		return uuid.Nil, fmt.Errorf("finding alias: %w", err)
	}

	return id, nil
}

func (s *Store) CreateMapping(ctx context.Context, m alias.Mapping) error {
	query := `
		INSERT INTO name_aliases (fragment, person_type, person_id, created_at)
		VALUES ($1, $2, $3, NOW())
	`

	_, err := s.db.ExecContext(ctx, query, m.Fragment, string(m.PersonType), m.PersonID)
	if err != nil {
		return fmt.Errorf("creating alias: %w", err)
	}

	return nil
}
