package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

type tx struct {
	tx *sql.Tx
}

func (t *tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return mapError("committing transaction", err, nil)
	}

	return nil
}

// Rollback is safe to defer after Commit.
func (t *tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return mapError("rolling back transaction", err, nil)
	}

	return nil
}

// requirePerson fails with ErrNotFound unless a person of type pt has id.
func (t *tx) requirePerson(ctx context.Context, op string, pt entity.PersonType, id uuid.UUID) error {
	query := `SELECT EXISTS (SELECT 1 FROM people WHERE id = $1 AND person_type = $2)`

	var exists bool
	if err := t.tx.QueryRowContext(ctx, query, id, string(pt)).Scan(&exists); err != nil {
		return mapError(op, err, nil)
	}

	if !exists {
		return fmt.Errorf("%s: person %s: %w", op, id, entity.ErrNotFound)
	}

	return nil
}

func (t *tx) CreatePerson(ctx context.Context, p *entity.Person) error {
	query := `
		INSERT INTO people (person_type, name, phone, region, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	p.Name = strings.TrimSpace(p.Name)

	err := t.tx.QueryRowContext(ctx, query, string(p.Type), p.Name, p.Phone, p.Region).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return mapError("creating person", err, nil)
	}

	return nil
}

func (t *tx) UpdatePerson(ctx context.Context, p *entity.Person) error {
	query := `
		UPDATE people
		SET name = $3, phone = $4, region = $5
		WHERE id = $1 AND person_type = $2
		RETURNING created_at
	`

	p.Name = strings.TrimSpace(p.Name)

	err := t.tx.QueryRowContext(ctx, query, p.ID, string(p.Type), p.Name, p.Phone, p.Region).Scan(&p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("updating person %s: %w", p.ID, entity.ErrNotFound)
	}

	if err != nil {
		return mapError("updating person", err, nil)
	}

	return nil
}

func (t *tx) DeletePerson(ctx context.Context, pt entity.PersonType, id uuid.UUID) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM people WHERE id = $1 AND person_type = $2`, id, string(pt))
	if err != nil {
		return mapError("deleting person", err, entity.ErrHasDependents)
	}

	return requireAffected(res, fmt.Sprintf("deleting person %s", id))
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(op, err, nil)
	}

	if n == 0 {
		return fmt.Errorf("%s: %w", op, entity.ErrNotFound)
	}

	return nil
}

func (t *tx) CreateCategory(ctx context.Context, c *entity.Category) error {
	query := `
		INSERT INTO categories (name, price, currency, stock, created_at)
		VALUES ($1, $2, $3, GREATEST($4::BIGINT, 0), NOW())
		RETURNING id, stock, created_at
	`

	c.Name = strings.TrimSpace(c.Name)

	err := t.tx.QueryRowContext(ctx, query, c.Name, c.Price, string(c.Currency), c.Stock).Scan(&c.ID, &c.Stock, &c.CreatedAt)
	if err != nil {
		return mapError("creating category", err, nil)
	}

	return nil
}

func (t *tx) UpdateCategory(ctx context.Context, c *entity.Category) error {
	query := `
		UPDATE categories
		SET name = $2, price = $3, currency = $4, stock = GREATEST($5::BIGINT, 0)
		WHERE id = $1
		RETURNING stock, created_at
	`

	c.Name = strings.TrimSpace(c.Name)

	err := t.tx.QueryRowContext(ctx, query, c.ID, c.Name, c.Price, string(c.Currency), c.Stock).Scan(&c.Stock, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("updating category %s: %w", c.ID, entity.ErrNotFound)
	}

	if err != nil {
		return mapError("updating category", err, nil)
	}

	return nil
}

// DeleteCategory refuses while any invoice still names the category.
// Invoices reference categories by name, so there is no foreign key to lean on.
func (t *tx) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	var name string

	err := t.tx.QueryRowContext(ctx, `SELECT name FROM categories WHERE id = $1`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("deleting category %s: %w", id, entity.ErrNotFound)
	}

	if err != nil {
		return mapError("deleting category", err, nil)
	}

	query := `
		SELECT EXISTS (SELECT 1 FROM sales WHERE qat_type = $1)
		    OR EXISTS (SELECT 1 FROM purchases WHERE qat_type = $1)
	`

	var used bool
	if err := t.tx.QueryRowContext(ctx, query, name).Scan(&used); err != nil {
		return mapError("deleting category", err, nil)
	}

	if used {
		return fmt.Errorf("deleting category %q: %w", name, entity.ErrHasDependents)
	}

	if _, err := t.tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return mapError("deleting category", err, nil)
	}

	return nil
}

func (t *tx) AdjustStock(ctx context.Context, categoryName string, delta int64) (*entity.Category, error) {
	query := `
		UPDATE categories
		SET stock = GREATEST(stock + $2, 0)
		WHERE name = $1
		RETURNING id, name, price, currency, stock, created_at
	`

	c, err := scanCategory(t.tx.QueryRowContext(ctx, query, strings.TrimSpace(categoryName), delta))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("adjusting stock of %q: %w", categoryName, entity.ErrNotFound)
	}

	if err != nil {
		return nil, mapError("adjusting stock", err, nil)
	}

	return c, nil
}

func (t *tx) CreateSale(ctx context.Context, s *entity.Sale) error {
	if err := t.requirePerson(ctx, "creating sale", entity.PersonCustomer, s.CustomerID); err != nil {
		return err
	}

	query := `
		INSERT INTO sales (customer_id, customer_name, qat_type, quantity, unit_price, total,
		                   currency, status, date, is_returned, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		s.CustomerID,
		s.CustomerName,
		s.QatType,
		s.Quantity,
		s.UnitPrice,
		s.Total,
		string(s.Currency),
		string(s.Status),
		s.Date,
		s.IsReturned,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return mapError("creating sale", err, entity.ErrNotFound)
	}

	return nil
}

func (t *tx) MarkSaleReturned(ctx context.Context, id uuid.UUID) error {
	return t.markReturned(ctx, "sales", "sale", id)
}

func (t *tx) CreatePurchase(ctx context.Context, p *entity.Purchase) error {
	if err := t.requirePerson(ctx, "creating purchase", entity.PersonSupplier, p.SupplierID); err != nil {
		return err
	}

	query := `
		INSERT INTO purchases (supplier_id, supplier_name, qat_type, quantity, unit_price, total,
		                       currency, status, date, is_returned, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		p.SupplierID,
		p.SupplierName,
		p.QatType,
		p.Quantity,
		p.UnitPrice,
		p.Total,
		string(p.Currency),
		string(p.Status),
		p.Date,
		p.IsReturned,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return mapError("creating purchase", err, entity.ErrNotFound)
	}

	return nil
}

func (t *tx) MarkPurchaseReturned(ctx context.Context, id uuid.UUID) error {
	return t.markReturned(ctx, "purchases", "purchase", id)
}

// markReturned flips is_returned once. table is one of the invoice tables.
func (t *tx) markReturned(ctx context.Context, table, kind string, id uuid.UUID) error {
	op := fmt.Sprintf("returning %s %s", kind, id)

	res, err := t.tx.ExecContext(ctx, `UPDATE `+table+` SET is_returned = TRUE WHERE id = $1 AND NOT is_returned`, id)
	if err != nil {
		return mapError(op, err, nil)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return mapError(op, err, nil)
	}

	if n > 0 {
		return nil
	}

	var exists bool
	if err := t.tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&exists); err != nil {
		return mapError(op, err, nil)
	}

	if exists {
		return fmt.Errorf("%s: %w", op, entity.ErrAlreadyReturned)
	}

	return fmt.Errorf("%s: %w", op, entity.ErrNotFound)
}

func (t *tx) CreateWaste(ctx context.Context, w *entity.Waste) error {
	query := `
		INSERT INTO waste (qat_type, quantity, date, notes, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := t.tx.QueryRowContext(ctx, query, w.QatType, w.Quantity, w.Date, w.Notes).Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		return mapError("creating waste", err, nil)
	}

	return nil
}

func (t *tx) CreateVoucher(ctx context.Context, v *entity.Voucher) error {
	if err := t.requirePerson(ctx, "creating voucher", v.PersonType, v.PersonID); err != nil {
		return err
	}

	query := `
		INSERT INTO vouchers (voucher_type, person_id, person_name, person_type, amount, currency,
		                      date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		string(v.Type),
		v.PersonID,
		v.PersonName,
		string(v.PersonType),
		v.Amount,
		string(v.Currency),
		v.Date,
		v.Notes,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return mapError("creating voucher", err, entity.ErrNotFound)
	}

	return nil
}

func (t *tx) CreateOpeningBalance(ctx context.Context, b *entity.OpeningBalance) error {
	if err := t.requirePerson(ctx, "creating opening balance", b.PersonType, b.PersonID); err != nil {
		return err
	}

	query := `
		INSERT INTO opening_balances (person_id, person_name, person_type, amount, currency,
		                              balance_type, date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		b.PersonID,
		b.PersonName,
		string(b.PersonType),
		b.Amount,
		string(b.Currency),
		string(b.BalanceType),
		b.Date,
		b.Notes,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return mapError("creating opening balance", err, entity.ErrNotFound)
	}

	return nil
}

func (t *tx) SaveExchangeRates(ctx context.Context, r *entity.ExchangeRates) error {
	query := `
		INSERT INTO exchange_rates (id, sar_to_yer, omr_to_yer, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE
		SET sar_to_yer = EXCLUDED.sar_to_yer, omr_to_yer = EXCLUDED.omr_to_yer, updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`

	if err := t.tx.QueryRowContext(ctx, query, r.SARToYER, r.OMRToYER).Scan(&r.UpdatedAt); err != nil {
		return mapError("saving exchange rates", err, nil)
	}

	return nil
}
