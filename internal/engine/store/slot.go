// Package store keeps the confirmation gate's pending slot in PostgreSQL so
// that every process attached to the ledger shares one pending action.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daftar/internal/action"
	"github.com/MrJamesThe3rd/daftar/internal/engine"
)

type Slot struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSlot returns a slot whose claims may be taken over once they are older
// than ttl, so a crashed process cannot block the ledger forever.
func NewSlot(db *sql.DB, ttl time.Duration) *Slot {
	return &Slot{db: db, ttl: ttl}
}

func (s *Slot) Claim(ctx context.Context, token uuid.UUID, source action.Source, name action.Name) error {
	query := `
		INSERT INTO pending_slot (id, token, source, action, claimed_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET token = EXCLUDED.token,
		    source = EXCLUDED.source,
		    action = EXCLUDED.action,
		    claimed_at = EXCLUDED.claimed_at
		WHERE pending_slot.claimed_at < NOW() - make_interval(secs => $4)
	`

	res, err := s.db.ExecContext(ctx, query, token, string(source), string(name), s.ttl.Seconds())
	if err != nil {
		return fmt.Errorf("claiming pending slot: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("claiming pending slot: %w", err)
	}

	if n == 0 {
		return engine.ErrBusy
	}

	return nil
}

// Release frees the slot when token still holds it.
func (s *Slot) Release(ctx context.Context, token uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pending_slot WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("releasing pending slot: %w", err)
	}

	return nil
}
