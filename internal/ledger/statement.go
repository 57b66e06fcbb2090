package ledger

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

// RowKind names the document a statement row comes from.
type RowKind string

const (
	RowSale     RowKind = "sale"
	RowPurchase RowKind = "purchase"
	RowReceipt  RowKind = "receipt"
	RowPayment  RowKind = "payment"
)

// StatementRow is one line of an account statement. Balance is the running
// balance after this row, computed oldest first.
type StatementRow struct {
	Date      time.Time
	Kind      RowKind
	Reference uuid.UUID
	Details   string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Balance   decimal.Decimal
}

// Statement lists a person's non-returned invoices and vouchers in cur,
// newest first. Rows with equal dates keep collection order (invoices
// before vouchers, each in insertion order) for the running balance.
//
// Customers: debit is a credit sale, credit is a receipt, balance grows by
// debit - credit. Suppliers: credit is a credit purchase, debit is a
// payment, balance grows by credit - debit. A cash invoice shows the same
// amount on both sides, so it never moves the balance. It is never booked
// on one side only: the newest row's running balance always equals Balance
// for the same person and currency.
func Statement(snap *entity.Snapshot, t entity.PersonType, id uuid.UUID, cur entity.Currency) []StatementRow {
	var rows []StatementRow

	if t == entity.PersonSupplier {
		rows = supplierRows(snap, id, cur)
	} else {
		rows = customerRows(snap, id, cur)
	}

	slices.SortStableFunc(rows, func(a, b StatementRow) int {
		return a.Date.Compare(b.Date)
	})

	running := decimal.Zero

	for i := range rows {
		if t == entity.PersonSupplier {
			running = running.Add(rows[i].Credit).Sub(rows[i].Debit)
		} else {
			running = running.Add(rows[i].Debit).Sub(rows[i].Credit)
		}

		rows[i].Balance = running
	}

	slices.Reverse(rows)

	return rows
}

func customerRows(snap *entity.Snapshot, id uuid.UUID, cur entity.Currency) []StatementRow {
	var rows []StatementRow

	for _, s := range snap.Sales {
		if s.CustomerID != id || s.Currency != cur || s.IsReturned {
			continue
		}

		row := StatementRow{
			Date:      s.Date,
			Kind:      RowSale,
			Reference: s.ID,
			Details:   fmt.Sprintf("%s x%d (%s)", s.QatType, s.Quantity, s.Status),
			Debit:     s.Total,
			Credit:    decimal.Zero,
		}
		if s.Status == entity.StatusCash {
			row.Credit = s.Total
		}

		rows = append(rows, row)
	}

	for _, v := range snap.Vouchers {
		if v.PersonID != id || v.Currency != cur || v.Type != entity.VoucherReceipt {
			continue
		}

		rows = append(rows, StatementRow{
			Date:      v.Date,
			Kind:      RowReceipt,
			Reference: v.ID,
			Details:   voucherDetails(v, "cash received"),
			Debit:     decimal.Zero,
			Credit:    v.Amount,
		})
	}

	return rows
}

func supplierRows(snap *entity.Snapshot, id uuid.UUID, cur entity.Currency) []StatementRow {
	var rows []StatementRow

	for _, p := range snap.Purchases {
		if p.SupplierID != id || p.Currency != cur || p.IsReturned {
			continue
		}

		row := StatementRow{
			Date:      p.Date,
			Kind:      RowPurchase,
			Reference: p.ID,
			Details:   fmt.Sprintf("%s x%d (%s)", p.QatType, p.Quantity, p.Status),
			Debit:     decimal.Zero,
			Credit:    p.Total,
		}
		if p.Status == entity.StatusCash {
			row.Debit = p.Total
		}

		rows = append(rows, row)
	}

	for _, v := range snap.Vouchers {
		if v.PersonID != id || v.Currency != cur || v.Type != entity.VoucherPayment {
			continue
		}

		rows = append(rows, StatementRow{
			Date:      v.Date,
			Kind:      RowPayment,
			Reference: v.ID,
			Details:   voucherDetails(v, "cash paid"),
			Debit:     v.Amount,
			Credit:    decimal.Zero,
		})
	}

	return rows
}

func voucherDetails(v entity.Voucher, fallback string) string {
	if v.Notes != "" {
		return v.Notes
	}

	return fallback
}

// Between keeps the rows dated within [start, end].
func Between(rows []StatementRow, start, end time.Time) []StatementRow {
	out := make([]StatementRow, 0, len(rows))

	for _, r := range rows {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}

		out = append(out, r)
	}

	return out
}
