// Package ledger derives balances and statements from financial records.
//
// Every function is pure: it reads a snapshot and recomputes from scratch.
// Cash invoices are treated as settled on the spot, so only credit invoices
// and vouchers move a person's outstanding balance. Returned invoices are
// ignored everywhere.
package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

// Amount is a value in a single currency.
type Amount struct {
	Currency entity.Currency
	Value    decimal.Decimal
}

// SummaryLine is the global position in one currency.
type SummaryLine struct {
	Currency    entity.Currency
	Assets      decimal.Decimal
	Liabilities decimal.Decimal
	Net         decimal.Decimal
}

// CustomerBalance is what the customer owes in cur.
func CustomerBalance(id uuid.UUID, cur entity.Currency, sales []entity.Sale, vouchers []entity.Voucher) decimal.Decimal {
	balance := decimal.Zero

	for _, s := range sales {
		if s.CustomerID != id || s.Currency != cur || s.IsReturned || s.Status != entity.StatusCredit {
			continue
		}

		balance = balance.Add(s.Total)
	}

	for _, v := range vouchers {
		if v.PersonID != id || v.Currency != cur || v.Type != entity.VoucherReceipt {
			continue
		}

		balance = balance.Sub(v.Amount)
	}

	return balance
}

// SupplierBalance is what we owe the supplier in cur.
func SupplierBalance(id uuid.UUID, cur entity.Currency, purchases []entity.Purchase, vouchers []entity.Voucher) decimal.Decimal {
	balance := decimal.Zero

	for _, p := range purchases {
		if p.SupplierID != id || p.Currency != cur || p.IsReturned || p.Status != entity.StatusCredit {
			continue
		}

		balance = balance.Add(p.Total)
	}

	for _, v := range vouchers {
		if v.PersonID != id || v.Currency != cur || v.Type != entity.VoucherPayment {
			continue
		}

		balance = balance.Sub(v.Amount)
	}

	return balance
}

// Balance dispatches on the person type.
func Balance(snap *entity.Snapshot, t entity.PersonType, id uuid.UUID, cur entity.Currency) decimal.Decimal {
	if t == entity.PersonSupplier {
		return SupplierBalance(id, cur, snap.Purchases, snap.Vouchers)
	}

	return CustomerBalance(id, cur, snap.Sales, snap.Vouchers)
}

// Balances returns one balance per supported currency.
func Balances(snap *entity.Snapshot, t entity.PersonType, id uuid.UUID) []Amount {
	out := make([]Amount, 0, len(entity.Currencies))
	for _, cur := range entity.Currencies {
		out = append(out, Amount{Currency: cur, Value: Balance(snap, t, id, cur)})
	}

	return out
}

// Summary totals receivables and payables per currency. A person who is a
// net creditor contributes zero rather than offsetting anyone else.
func Summary(snap *entity.Snapshot) []SummaryLine {
	out := make([]SummaryLine, 0, len(entity.Currencies))

	for _, cur := range entity.Currencies {
		line := SummaryLine{
			Currency:    cur,
			Assets:      decimal.Zero,
			Liabilities: decimal.Zero,
		}

		for _, c := range snap.Customers {
			if b := CustomerBalance(c.ID, cur, snap.Sales, snap.Vouchers); b.IsPositive() {
				line.Assets = line.Assets.Add(b)
			}
		}

		for _, s := range snap.Suppliers {
			if b := SupplierBalance(s.ID, cur, snap.Purchases, snap.Vouchers); b.IsPositive() {
				line.Liabilities = line.Liabilities.Add(b)
			}
		}

		line.Net = line.Assets.Sub(line.Liabilities)
		out = append(out, line)
	}

	return out
}

// Opening sums a person's legacy balances per currency: debit counts as
// owed to us, credit as owed by us.
func Opening(snap *entity.Snapshot, t entity.PersonType, id uuid.UUID) []Amount {
	out := make([]Amount, 0, len(entity.Currencies))

	for _, cur := range entity.Currencies {
		total := decimal.Zero

		for _, b := range snap.OpeningBalances {
			if b.PersonID != id || b.PersonType != t || b.Currency != cur {
				continue
			}

			if b.BalanceType == entity.BalanceCredit {
				total = total.Sub(b.Amount)
			} else {
				total = total.Add(b.Amount)
			}
		}

		out = append(out, Amount{Currency: cur, Value: total})
	}

	return out
}

// ToYER converts v into YER for display. It reports false when the rate
// for cur has not been set.
func ToYER(cur entity.Currency, v decimal.Decimal, rates entity.ExchangeRates) (decimal.Decimal, bool) {
	var rate decimal.Decimal

	switch cur {
	case entity.CurrencyYER:
		return v, true
	case entity.CurrencySAR:
		rate = rates.SARToYER
	case entity.CurrencyOMR:
		rate = rates.OMRToYER
	}

	if !rate.IsPositive() {
		return decimal.Zero, false
	}

	return v.Mul(rate), true
}

// NetYER totals the net of every summary line in YER. It reports false
// while a currency with a non-zero net has no rate.
func NetYER(lines []SummaryLine, rates entity.ExchangeRates) (decimal.Decimal, bool) {
	total := decimal.Zero

	for _, l := range lines {
		if l.Net.IsZero() {
			continue
		}

		v, ok := ToYER(l.Currency, l.Net, rates)
		if !ok {
			return decimal.Zero, false
		}

		total = total.Add(v)
	}

	return total, true
}

// Debt is a person's positive balances.
type Debt struct {
	Person   entity.Person
	Balances []Amount
}

// Outstanding lists the people of type t who carry a positive balance in at
// least one currency, in registry order.
func Outstanding(snap *entity.Snapshot, t entity.PersonType) []Debt {
	var out []Debt

	for _, p := range snap.People(t) {
		var owed []Amount

		for _, a := range Balances(snap, p.Type, p.ID) {
			if a.Value.IsPositive() {
				owed = append(owed, a)
			}
		}

		if len(owed) > 0 {
			out = append(out, Debt{Person: p, Balances: owed})
		}
	}

	return out
}
