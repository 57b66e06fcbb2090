package entity

import (
	"strings"

	"github.com/google/uuid"
)

// Snapshot is a read-only copy of every collection, in insertion order.
// Readers must not mutate it; stores hand out a fresh copy per call.
type Snapshot struct {
	Customers       []Person
	Suppliers       []Person
	Categories      []Category
	Sales           []Sale
	Purchases       []Purchase
	Waste           []Waste
	Vouchers        []Voucher
	OpeningBalances []OpeningBalance
	Rates           ExchangeRates
}

// People returns the persons of one type, or both types when t is empty.
func (s *Snapshot) People(t PersonType) []Person {
	switch t {
	case PersonCustomer:
		return s.Customers
	case PersonSupplier:
		return s.Suppliers
	}

	all := make([]Person, 0, len(s.Customers)+len(s.Suppliers))
	all = append(all, s.Customers...)

	return append(all, s.Suppliers...)
}

func (s *Snapshot) Person(t PersonType, id uuid.UUID) (Person, bool) {
	for _, p := range s.People(t) {
		if p.ID == id {
			return p, true
		}
	}

	return Person{}, false
}

// CategoryByName looks a category up by its trimmed name.
func (s *Snapshot) CategoryByName(name string) (Category, bool) {
	name = strings.TrimSpace(name)
	for _, c := range s.Categories {
		if strings.TrimSpace(c.Name) == name {
			return c, true
		}
	}

	return Category{}, false
}

// Clone deep-copies the slices so the copy can be mutated independently.
func (s *Snapshot) Clone() *Snapshot {
	return &Snapshot{
		Customers:       append([]Person(nil), s.Customers...),
		Suppliers:       append([]Person(nil), s.Suppliers...),
		Categories:      append([]Category(nil), s.Categories...),
		Sales:           append([]Sale(nil), s.Sales...),
		Purchases:       append([]Purchase(nil), s.Purchases...),
		Waste:           append([]Waste(nil), s.Waste...),
		Vouchers:        append([]Voucher(nil), s.Vouchers...),
		OpeningBalances: append([]OpeningBalance(nil), s.OpeningBalances...),
		Rates:           s.Rates,
	}
}
