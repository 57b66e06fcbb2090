package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrJamesThe3rd/daftar/internal/audit"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, e *audit.Entry) error {
	query := `
		INSERT INTO activity_log (id, category, detail, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.ExecContext(ctx, query, e.ID, e.Category, e.Detail, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending activity: %w", err)
	}

	return nil
}

func (s *Store) List(ctx context.Context, limit int) ([]*audit.Entry, error) {
	query := `
		SELECT id, category, detail, created_at
		FROM activity_log
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	defer rows.Close()

	var entries []*audit.Entry

	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.ID, &e.Category, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity: %w", err)
	}

	return entries, nil
}
