// Package store persists entities in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"hash/fnv"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// writeLockKey names the advisory lock every ledger write holds. Processes
// sharing one database each run their own gate, so writes are serialized
// here as well.
var writeLockKey = lockKey("daftar/ledger-write")

func lockKey(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))

	return int64(h.Sum64())
}

// Begin opens a write transaction holding the ledger write lock until it
// commits or rolls back.
func (s *Store) Begin(ctx context.Context) (entity.Tx, error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapError("beginning transaction", err, nil)
	}

	if _, err := sqlTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", writeLockKey); err != nil {
		sqlTx.Rollback() //nolint:errcheck
		return nil, mapError("acquiring write lock", err, nil)
	}

	return &tx{tx: sqlTx}, nil
}

// Snapshot reads every table inside one read-only repeatable-read
// transaction so the collections are consistent with each other.
func (s *Store) Snapshot(ctx context.Context) (*entity.Snapshot, error) {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, mapError("beginning snapshot", err, nil)
	}
	defer sqlTx.Rollback() //nolint:errcheck

	snap := &entity.Snapshot{}

	loaders := []func(context.Context, *sql.Tx, *entity.Snapshot) error{
		loadPeople,
		loadCategories,
		loadSales,
		loadPurchases,
		loadWaste,
		loadVouchers,
		loadOpeningBalances,
		loadRates,
	}

	for _, load := range loaders {
		if err := load(ctx, sqlTx, snap); err != nil {
			return nil, mapError("loading snapshot", err, nil)
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return nil, mapError("finishing snapshot", err, nil)
	}

	return snap, nil
}

// mapError translates driver failures into the entity sentinels. fk is the
// sentinel a foreign key violation stands for in the calling operation.
func mapError(op string, err error, fk error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeUniqueViolation:
			return fmt.Errorf("%s: %w", op, entity.ErrDuplicate)
		case pgErr.Code == codeForeignKeyViolation && fk != nil:
			return fmt.Errorf("%s: %w", op, fk)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if unavailable(err) {
		return fmt.Errorf("%s: %w: %v", op, entity.ErrUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

func unavailable(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone)
}
