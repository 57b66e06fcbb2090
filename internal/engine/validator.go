package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daftar/internal/action"
	"github.com/MrJamesThe3rd/daftar/internal/entity"
	"github.com/MrJamesThe3rd/daftar/internal/ledger"
)

// DebtWarning flags a sale to a customer who already owes money. It never
// blocks the sale.
type DebtWarning struct {
	PersonID   uuid.UUID       `json:"person_id"`
	PersonName string          `json:"person_name"`
	Currency   entity.Currency `json:"currency"`
	Balance    decimal.Decimal `json:"balance"`
}

func (w DebtWarning) String() string {
	return fmt.Sprintf("%s already owes %s %s", w.PersonName, w.Balance.StringFixed(2), w.Currency)
}

// Verdict is the result of validating a proposal against a snapshot.
// CandidateWarnings holds the debt warning of every indebted candidate when
// the counterpart still has to be chosen.
type Verdict struct {
	Person            *entity.Person
	Candidates        []entity.Person
	Suggested         *entity.Person
	Warning           *DebtWarning
	CandidateWarnings []DebtWarning
	Err               *Error
}

func (v Verdict) OK() bool {
	return v.Err == nil
}

func (v Verdict) NeedsChoice() bool {
	return v.Err == nil && v.Person == nil && len(v.Candidates) > 1
}

func reject(err *Error) Verdict {
	return Verdict{Err: err}
}

// Validate checks a proposal against registry integrity and the ledger. It
// reads only snap and never writes. The first failing rule wins. hint is a
// person id learned for the proposal's name fragment, or uuid.Nil.
func Validate(snap *entity.Snapshot, a action.Action, hint uuid.UUID) Verdict {
	switch a := a.(type) {
	case *action.Person:
		return validatePerson(snap, a, hint)
	case *action.Category:
		return validateCategory(snap, a)
	case *action.Sale:
		return validateSale(snap, a, hint)
	case *action.Purchase:
		return counterpart(snap, entity.PersonSupplier, a.SupplierName, hint)
	case *action.Waste:
		if _, err := findCategory(snap.Categories, a.QatType); err != nil {
			return reject(err)
		}

		return Verdict{}
	case *action.Return:
		return validateReturn(snap, a, hint)
	case *action.Voucher:
		return counterpart(snap, a.Type.PersonType(), a.PersonName, hint)
	case *action.OpeningBalance:
		return counterpart(snap, a.PersonType, a.PersonName, hint)
	case *action.ImportOpeningBalances:
		for i, line := range a.Lines {
			if _, err := resolveOne(snap.People(line.PersonType), line.PersonType, line.PersonName); err != nil {
				err.Message = fmt.Sprintf("Line %d: %s", i+1, err.Message)
				return reject(err)
			}
		}

		return Verdict{}
	case *action.SendMessage:
		return counterpart(snap, "", a.PersonName, hint)
	case *action.SystemControl:
		if a.Command == action.CommandUpdateRates && !a.SARRate.IsPositive() && !a.OMRRate.IsPositive() {
			return reject(newError(KindValidation, nil, "Give at least one exchange rate to update."))
		}

		return Verdict{}
	}

	return reject(newError(KindValidation, action.ErrUnknownAction, "Unsupported action %q.", a.Kind()))
}

func counterpart(snap *entity.Snapshot, t entity.PersonType, name string, hint uuid.UUID) Verdict {
	res, err := Resolve(snap.People(t), t, name, hint)
	if err != nil {
		return reject(err)
	}

	return Verdict{Person: res.Person, Candidates: res.Candidates, Suggested: res.Suggested}
}

func validatePerson(snap *entity.Snapshot, a *action.Person, hint uuid.UUID) Verdict {
	people := snap.People(a.Type)

	if a.Op == action.OpAdd {
		if taken(people, a.Name, uuid.Nil) {
			return reject(newError(KindDuplicate, entity.ErrDuplicate,
				"A %s named %q already exists.", a.Type, strings.TrimSpace(a.Name)))
		}

		return Verdict{}
	}

	v := counterpart(snap, a.Type, a.Name, hint)
	if !v.OK() || v.Person == nil {
		return v
	}

	switch a.Op {
	case action.OpUpdate:
		if a.NewName != "" && taken(people, a.NewName, v.Person.ID) {
			return reject(newError(KindDuplicate, entity.ErrDuplicate,
				"A %s named %q already exists.", a.Type, strings.TrimSpace(a.NewName)))
		}
	case action.OpDelete:
		if hasDependents(snap, v.Person.ID) {
			return reject(newError(KindReferential, entity.ErrHasDependents,
				"%s has recorded transactions and cannot be deleted.", v.Person.Name))
		}
	}

	return v
}

func validateCategory(snap *entity.Snapshot, a *action.Category) Verdict {
	if a.Op == action.OpAdd {
		if _, exists := snap.CategoryByName(a.Name); exists {
			return reject(newError(KindDuplicate, entity.ErrDuplicate,
				"An item named %q already exists.", strings.TrimSpace(a.Name)))
		}

		return Verdict{}
	}

	c, err := findCategory(snap.Categories, a.Name)
	if err != nil {
		return reject(err)
	}

	switch a.Op {
	case action.OpUpdate:
		if other, exists := snap.CategoryByName(a.NewName); a.NewName != "" && exists && other.ID != c.ID {
			return reject(newError(KindDuplicate, entity.ErrDuplicate,
				"An item named %q already exists.", strings.TrimSpace(a.NewName)))
		}
	case action.OpDelete:
		for _, s := range snap.Sales {
			if s.QatType == c.Name {
				return reject(newError(KindReferential, entity.ErrHasDependents,
					"%s appears on invoices and cannot be deleted.", c.Name))
			}
		}

		for _, p := range snap.Purchases {
			if p.QatType == c.Name {
				return reject(newError(KindReferential, entity.ErrHasDependents,
					"%s appears on invoices and cannot be deleted.", c.Name))
			}
		}
	}

	return Verdict{}
}

func validateSale(snap *entity.Snapshot, a *action.Sale, hint uuid.UUID) Verdict {
	v := counterpart(snap, entity.PersonCustomer, a.CustomerName, hint)
	if !v.OK() {
		return v
	}

	if v.Person != nil {
		v.Warning = debtWarning(snap, *v.Person, a.Currency)
		return v
	}

	for _, c := range v.Candidates {
		if w := debtWarning(snap, c, a.Currency); w != nil {
			v.CandidateWarnings = append(v.CandidateWarnings, *w)
		}
	}

	return v
}

// debtWarning reports a positive balance of customer in cur, or nil.
func debtWarning(snap *entity.Snapshot, customer entity.Person, cur entity.Currency) *DebtWarning {
	balance := ledger.CustomerBalance(customer.ID, cur, snap.Sales, snap.Vouchers)
	if !balance.IsPositive() {
		return nil
	}

	return &DebtWarning{
		PersonID:   customer.ID,
		PersonName: customer.Name,
		Currency:   cur,
		Balance:    balance,
	}
}

func warningFor(warnings []DebtWarning, id uuid.UUID) *DebtWarning {
	for i := range warnings {
		if warnings[i].PersonID == id {
			w := warnings[i]
			return &w
		}
	}

	return nil
}

// validateReturn narrows the counterpart to people who still have an open
// invoice, so a choice is only offered between returnable records.
func validateReturn(snap *entity.Snapshot, a *action.Return, hint uuid.UUID) Verdict {
	ref, _ := action.Counterpart(a)

	v := counterpart(snap, ref.Type, ref.Name, hint)
	if !v.OK() {
		return v
	}

	open := func(p entity.Person) bool {
		_, ok := openInvoice(snap, a, p.ID)
		return ok
	}

	if v.Person != nil {
		if !open(*v.Person) {
			return reject(noOpenInvoice(a))
		}

		return v
	}

	suggested := uuid.Nil
	if v.Suggested != nil {
		suggested = v.Suggested.ID
	}

	v.Candidates = slices.DeleteFunc(slices.Clone(v.Candidates), func(p entity.Person) bool {
		return !open(p)
	})

	switch len(v.Candidates) {
	case 0:
		return reject(noOpenInvoice(a))
	case 1:
		return Verdict{Person: &v.Candidates[0]}
	}

	v.Suggested = suggest(v.Candidates, suggested)

	return v
}

func noOpenInvoice(a *action.Return) *Error {
	book := "sales"
	if a.Operation == action.ReturnPurchase {
		book = "purchase"
	}

	return newError(KindValidation, nil, "%s has no open %s invoice to return.", strings.TrimSpace(a.PersonName), book)
}

// returnable is the invoice a return will mark.
type returnable struct {
	id       uuid.UUID
	qatType  string
	quantity int64
}

// openInvoice picks the most recent non-returned invoice of the person. For
// sales, a set item type must be contained in the invoice's item.
func openInvoice(snap *entity.Snapshot, a *action.Return, personID uuid.UUID) (returnable, bool) {
	qat := strings.TrimSpace(a.QatType)

	if a.Operation == action.ReturnPurchase {
		for i := len(snap.Purchases) - 1; i >= 0; i-- {
			p := snap.Purchases[i]
			if p.SupplierID == personID && !p.IsReturned {
				return returnable{id: p.ID, qatType: p.QatType, quantity: p.Quantity}, true
			}
		}

		return returnable{}, false
	}

	for i := len(snap.Sales) - 1; i >= 0; i-- {
		s := snap.Sales[i]
		if s.CustomerID != personID || s.IsReturned {
			continue
		}

		if qat != "" && !strings.Contains(s.QatType, qat) {
			continue
		}

		return returnable{id: s.ID, qatType: s.QatType, quantity: s.Quantity}, true
	}

	return returnable{}, false
}

func taken(people []entity.Person, name string, except uuid.UUID) bool {
	name = strings.TrimSpace(name)

	for _, p := range people {
		if p.ID != except && strings.TrimSpace(p.Name) == name {
			return true
		}
	}

	return false
}

func hasDependents(snap *entity.Snapshot, id uuid.UUID) bool {
	return slices.ContainsFunc(snap.Sales, func(s entity.Sale) bool { return s.CustomerID == id }) ||
		slices.ContainsFunc(snap.Purchases, func(p entity.Purchase) bool { return p.SupplierID == id }) ||
		slices.ContainsFunc(snap.Vouchers, func(v entity.Voucher) bool { return v.PersonID == id }) ||
		slices.ContainsFunc(snap.OpeningBalances, func(b entity.OpeningBalance) bool { return b.PersonID == id })
}
