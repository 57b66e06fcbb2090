package entity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicate       = errors.New("duplicate name")
	ErrHasDependents   = errors.New("record has dependent records")
	ErrAlreadyReturned = errors.New("invoice already returned")
	ErrUnavailable     = errors.New("store unavailable")
)

// Store is the owned handle to persisted entities. Reads go through
// Snapshot; every write happens inside a Tx so that a record and its
// dependent effects commit or roll back together.
//
//go:generate mockgen -source=repository.go -destination=repository_mock.go -package=entity
type Store interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
	Begin(ctx context.Context) (Tx, error)
}

type Tx interface {
	CreatePerson(ctx context.Context, p *Person) error
	UpdatePerson(ctx context.Context, p *Person) error
	DeletePerson(ctx context.Context, t PersonType, id uuid.UUID) error

	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	// AdjustStock adds delta to the named category's stock, clamping at zero.
	AdjustStock(ctx context.Context, categoryName string, delta int64) (*Category, error)

	CreateSale(ctx context.Context, s *Sale) error
	MarkSaleReturned(ctx context.Context, id uuid.UUID) error
	CreatePurchase(ctx context.Context, p *Purchase) error
	MarkPurchaseReturned(ctx context.Context, id uuid.UUID) error
	CreateWaste(ctx context.Context, w *Waste) error

	CreateVoucher(ctx context.Context, v *Voucher) error
	CreateOpeningBalance(ctx context.Context, b *OpeningBalance) error
	SaveExchangeRates(ctx context.Context, r *ExchangeRates) error

	Commit() error
	Rollback() error
}
