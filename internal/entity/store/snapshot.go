package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

const (
	selectPeople = `
		SELECT id, person_type, name, phone, region, created_at
		FROM people
		ORDER BY seq`

	selectCategories = `
		SELECT id, name, price, currency, stock, created_at
		FROM categories
		ORDER BY seq`

	selectSales = `
		SELECT id, customer_id, customer_name, qat_type, quantity, unit_price, total,
		       currency, status, date, is_returned, created_at
		FROM sales
		ORDER BY seq`

	selectPurchases = `
		SELECT id, supplier_id, supplier_name, qat_type, quantity, unit_price, total,
		       currency, status, date, is_returned, created_at
		FROM purchases
		ORDER BY seq`

	selectWaste = `
		SELECT id, qat_type, quantity, date, notes, created_at
		FROM waste
		ORDER BY seq`

	selectVouchers = `
		SELECT id, voucher_type, person_id, person_name, person_type, amount, currency,
		       date, notes, created_at
		FROM vouchers
		ORDER BY seq`

	selectOpeningBalances = `
		SELECT id, person_id, person_name, person_type, amount, currency, balance_type,
		       date, notes, created_at
		FROM opening_balances
		ORDER BY seq`

	selectRates = `
		SELECT sar_to_yer, omr_to_yer, updated_at
		FROM exchange_rates
		WHERE id = 1`
)

// each runs query and hands every row to scan.
func each(ctx context.Context, q *sql.Tx, query string, scan func(scanner) error) error {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}

	return rows.Err()
}

func loadPeople(ctx context.Context, q *sql.Tx, snap *entity.Snapshot) error {
	return each(ctx, q, selectPeople, func(s scanner) error {
		var (
			p       entity.Person
			typeStr string
		)

		if err := s.Scan(&p.ID, &typeStr, &p.Name, &p.Phone, &p.Region, &p.CreatedAt); err != nil {
			return err
		}

		p.Type = entity.PersonType(typeStr)

		if p.Type == entity.PersonSupplier {
			snap.Suppliers = append(snap.Suppliers, p)
		} else {
			snap.Customers = append(snap.Customers, p)
		}

		return nil
	})
}

func scanCategory(s scanner) (*entity.Category, error) {
	var (
		c           entity.Category
		currencyStr string
	)

	if err := s.Scan(&c.ID, &c.Name, &c.Price, &currencyStr, &c.Stock, &c.CreatedAt); err != nil {
		return nil, err
	}

	c.Currency = entity.Currency(currencyStr)

	return &c, nil
}

func loadCategories(ctx context.Context, q *sql.Tx, snap *entity.Snapshot) error {
	return each(ctx, q, selectCategories, func(s scanner) error {
		c, err := scanCategory(s)
		if err != nil {
			return err
		}

		snap.Categories = append(snap.Categories, *c)

		return nil
	})
}

func loadSales(ctx context.Context, q *sql.Tx, snap *entity.Snapshot) error {
	return each(ctx, q, selectSales, func(s scanner) error {
		var (
			sale                   entity.Sale
			currencyStr, statusStr string
		)

		if err := s.Scan(
			&sale.ID, &sale.CustomerID, &sale.CustomerName, &sale.QatType, &sale.Quantity,
			&sale.UnitPrice, &sale.Total, &currencyStr, &statusStr, &sale.Date,
			&sale.IsReturned, &sale.CreatedAt,
		); err != nil {
			return err
		}

		sale.Currency = entity.Currency(currencyStr)
		sale.Status = entity.InvoiceStatus(statusStr)
		snap.Sales = append(snap.Sales, sale)

		return nil
	})
}

func loadPurchases(ctx context.Context, q *sql.Tx, snap *entity.Snapshot) error {
	return each(ctx, q, selectPurchases, func(s scanner) error {
		var (
			p                      entity.Purchase
			currencyStr, statusStr string
		)

		if err := s.Scan(
			&p.ID, &p.SupplierID, &p.SupplierName, &p.QatType, &p.Quantity,
			&p.UnitPrice, &p.Total, &currencyStr, &statusStr, &p.Date,
			&p.IsReturned, &p.CreatedAt,
		); err != nil {
			return err
		}

		p.Currency = entity.Currency(currencyStr)
		p.Status = entity.InvoiceStatus(statusStr)
		snap.Purchases = append(snap.Purchases, p)

		return nil
	})
}

func loadWaste(ctx context.Context, q *sql.Tx, snap *entity.Snapshot) error {
	return each(ctx, q, selectWaste, func(s scanner) error {
		var w entity.Waste

		if err := s.Scan(&w.ID, &w.QatType, &w.Quantity, &w.Date, &w.Notes, &w.CreatedAt); err != nil {
			return err
		}

		snap.Waste = append(snap.Waste, w)

		return nil
	})
}

func loadVouchers(ctx context.Context, q *sql.Tx, snap *entity.Snapshot) error {
	return each(ctx, q, selectVouchers, func(s scanner) error {
		var (
			v                                entity.Voucher
			typeStr, personType, currencyStr string
		)

		if err := s.Scan(
			&v.ID, &typeStr, &v.PersonID, &v.PersonName, &personType, &v.Amount,
			&currencyStr, &v.Date, &v.Notes, &v.CreatedAt,
		); err != nil {
			return err
		}

		v.Type = entity.VoucherType(typeStr)
		v.PersonType = entity.PersonType(personType)
		v.Currency = entity.Currency(currencyStr)
		snap.Vouchers = append(snap.Vouchers, v)

		return nil
	})
}

func loadOpeningBalances(ctx context.Context, q *sql.Tx, snap *entity.Snapshot) error {
	return each(ctx, q, selectOpeningBalances, func(s scanner) error {
		var (
			b                                   entity.OpeningBalance
			personType, currencyStr, balanceStr string
		)

		if err := s.Scan(
			&b.ID, &b.PersonID, &b.PersonName, &personType, &b.Amount, &currencyStr,
			&balanceStr, &b.Date, &b.Notes, &b.CreatedAt,
		); err != nil {
			return err
		}

		b.PersonType = entity.PersonType(personType)
		b.Currency = entity.Currency(currencyStr)
		b.BalanceType = entity.BalanceType(balanceStr)
		snap.OpeningBalances = append(snap.OpeningBalances, b)

		return nil
	})
}

// loadRates leaves the rates zero until they are first saved.
func loadRates(ctx context.Context, q *sql.Tx, snap *entity.Snapshot) error {
	err := q.QueryRowContext(ctx, selectRates).Scan(&snap.Rates.SARToYER, &snap.Rates.OMRToYER, &snap.Rates.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}

	return err
}
