// Package memstore keeps every entity in process memory. It backs the
// offline mode and the engine tests.
package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

type Store struct {
	mu   sync.RWMutex
	data *entity.Snapshot
	now  func() time.Time
}

func New() *Store {
	return &Store{
		data: &entity.Snapshot{},
		now:  time.Now,
	}
}

// NewSeeded starts from a copy of snap. Handy for tests and for restoring backups.
func NewSeeded(snap *entity.Snapshot) *Store {
	s := New()
	s.data = snap.Clone()

	return s
}

func (s *Store) Snapshot(_ context.Context) (*entity.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data.Clone(), nil
}

// Begin takes the write lock until Commit or Rollback, so transactions are
// serialized and a failed one leaves no trace.
func (s *Store) Begin(ctx context.Context) (entity.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	s.mu.Lock()

	return &tx{store: s, work: s.data.Clone()}, nil
}

type tx struct {
	store *Store
	work  *entity.Snapshot
	done  bool
}

func (t *tx) Commit() error {
	if t.done {
		return fmt.Errorf("committing transaction: already finished")
	}

	t.done = true
	t.store.data = t.work
	t.store.mu.Unlock()

	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return nil
	}

	t.done = true
	t.store.mu.Unlock()

	return nil
}

func (t *tx) stamp() time.Time {
	return t.store.now().UTC()
}

func sameName(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

func (t *tx) people(pt entity.PersonType) (*[]entity.Person, error) {
	switch pt {
	case entity.PersonCustomer:
		return &t.work.Customers, nil
	case entity.PersonSupplier:
		return &t.work.Suppliers, nil
	}

	return nil, fmt.Errorf("unknown person type %q", pt)
}

func (t *tx) CreatePerson(_ context.Context, p *entity.Person) error {
	list, err := t.people(p.Type)
	if err != nil {
		return err
	}

	for _, existing := range *list {
		if sameName(existing.Name, p.Name) {
			return fmt.Errorf("creating person %q: %w", p.Name, entity.ErrDuplicate)
		}
	}

	p.ID = uuid.New()
	p.Name = strings.TrimSpace(p.Name)
	p.CreatedAt = t.stamp()
	*list = append(*list, *p)

	return nil
}

func (t *tx) UpdatePerson(_ context.Context, p *entity.Person) error {
	list, err := t.people(p.Type)
	if err != nil {
		return err
	}

	idx := -1

	for i, existing := range *list {
		if existing.ID == p.ID {
			idx = i
			continue
		}

		if sameName(existing.Name, p.Name) {
			return fmt.Errorf("updating person %q: %w", p.Name, entity.ErrDuplicate)
		}
	}

	if idx < 0 {
		return fmt.Errorf("updating person %s: %w", p.ID, entity.ErrNotFound)
	}

	p.Name = strings.TrimSpace(p.Name)
	p.CreatedAt = (*list)[idx].CreatedAt
	(*list)[idx] = *p

	return nil
}

func (t *tx) DeletePerson(_ context.Context, pt entity.PersonType, id uuid.UUID) error {
	list, err := t.people(pt)
	if err != nil {
		return err
	}

	idx := -1

	for i, existing := range *list {
		if existing.ID == id {
			idx = i
			break
		}
	}

	if idx < 0 {
		return fmt.Errorf("deleting person %s: %w", id, entity.ErrNotFound)
	}

	if t.personHasDependents(id) {
		return fmt.Errorf("deleting person %s: %w", id, entity.ErrHasDependents)
	}

	*list = append((*list)[:idx], (*list)[idx+1:]...)

	return nil
}

func (t *tx) personHasDependents(id uuid.UUID) bool {
	for _, s := range t.work.Sales {
		if s.CustomerID == id {
			return true
		}
	}

	for _, p := range t.work.Purchases {
		if p.SupplierID == id {
			return true
		}
	}

	for _, v := range t.work.Vouchers {
		if v.PersonID == id {
			return true
		}
	}

	for _, b := range t.work.OpeningBalances {
		if b.PersonID == id {
			return true
		}
	}

	return false
}

func (t *tx) CreateCategory(_ context.Context, c *entity.Category) error {
	if _, exists := t.work.CategoryByName(c.Name); exists {
		return fmt.Errorf("creating category %q: %w", c.Name, entity.ErrDuplicate)
	}

	c.ID = uuid.New()
	c.Name = strings.TrimSpace(c.Name)
	c.Stock = max(c.Stock, 0)
	c.CreatedAt = t.stamp()
	t.work.Categories = append(t.work.Categories, *c)

	return nil
}

func (t *tx) UpdateCategory(_ context.Context, c *entity.Category) error {
	idx := -1

	for i, existing := range t.work.Categories {
		if existing.ID == c.ID {
			idx = i
			continue
		}

		if sameName(existing.Name, c.Name) {
			return fmt.Errorf("updating category %q: %w", c.Name, entity.ErrDuplicate)
		}
	}

	if idx < 0 {
		return fmt.Errorf("updating category %s: %w", c.ID, entity.ErrNotFound)
	}

	c.Name = strings.TrimSpace(c.Name)
	c.Stock = max(c.Stock, 0)
	c.CreatedAt = t.work.Categories[idx].CreatedAt
	t.work.Categories[idx] = *c

	return nil
}

func (t *tx) DeleteCategory(_ context.Context, id uuid.UUID) error {
	idx := -1

	for i, existing := range t.work.Categories {
		if existing.ID == id {
			idx = i
			break
		}
	}

	if idx < 0 {
		return fmt.Errorf("deleting category %s: %w", id, entity.ErrNotFound)
	}

	name := t.work.Categories[idx].Name

	for _, s := range t.work.Sales {
		if s.QatType == name {
			return fmt.Errorf("deleting category %q: %w", name, entity.ErrHasDependents)
		}
	}

	for _, p := range t.work.Purchases {
		if p.QatType == name {
			return fmt.Errorf("deleting category %q: %w", name, entity.ErrHasDependents)
		}
	}

	t.work.Categories = append(t.work.Categories[:idx], t.work.Categories[idx+1:]...)

	return nil
}

func (t *tx) AdjustStock(_ context.Context, categoryName string, delta int64) (*entity.Category, error) {
	name := strings.TrimSpace(categoryName)

	for i := range t.work.Categories {
		c := &t.work.Categories[i]
		if c.Name != name {
			continue
		}

		c.Stock = max(c.Stock+delta, 0)
		updated := *c

		return &updated, nil
	}

	return nil, fmt.Errorf("adjusting stock of %q: %w", categoryName, entity.ErrNotFound)
}

func (t *tx) CreateSale(_ context.Context, s *entity.Sale) error {
	if _, ok := t.work.Person(entity.PersonCustomer, s.CustomerID); !ok {
		return fmt.Errorf("creating sale for %s: %w", s.CustomerID, entity.ErrNotFound)
	}

	s.ID = uuid.New()
	s.CreatedAt = t.stamp()
	t.work.Sales = append(t.work.Sales, *s)

	return nil
}

func (t *tx) MarkSaleReturned(_ context.Context, id uuid.UUID) error {
	for i := range t.work.Sales {
		s := &t.work.Sales[i]
		if s.ID != id {
			continue
		}

		if s.IsReturned {
			return fmt.Errorf("returning sale %s: %w", id, entity.ErrAlreadyReturned)
		}

		s.IsReturned = true

		return nil
	}

	return fmt.Errorf("returning sale %s: %w", id, entity.ErrNotFound)
}

func (t *tx) CreatePurchase(_ context.Context, p *entity.Purchase) error {
	if _, ok := t.work.Person(entity.PersonSupplier, p.SupplierID); !ok {
		return fmt.Errorf("creating purchase for %s: %w", p.SupplierID, entity.ErrNotFound)
	}

	p.ID = uuid.New()
	p.CreatedAt = t.stamp()
	t.work.Purchases = append(t.work.Purchases, *p)

	return nil
}

func (t *tx) MarkPurchaseReturned(_ context.Context, id uuid.UUID) error {
	for i := range t.work.Purchases {
		p := &t.work.Purchases[i]
		if p.ID != id {
			continue
		}

		if p.IsReturned {
			return fmt.Errorf("returning purchase %s: %w", id, entity.ErrAlreadyReturned)
		}

		p.IsReturned = true

		return nil
	}

	return fmt.Errorf("returning purchase %s: %w", id, entity.ErrNotFound)
}

func (t *tx) CreateWaste(_ context.Context, w *entity.Waste) error {
	w.ID = uuid.New()
	w.CreatedAt = t.stamp()
	t.work.Waste = append(t.work.Waste, *w)

	return nil
}

func (t *tx) CreateVoucher(_ context.Context, v *entity.Voucher) error {
	if _, ok := t.work.Person(v.PersonType, v.PersonID); !ok {
		return fmt.Errorf("creating voucher for %s: %w", v.PersonID, entity.ErrNotFound)
	}

	v.ID = uuid.New()
	v.CreatedAt = t.stamp()
	t.work.Vouchers = append(t.work.Vouchers, *v)

	return nil
}

func (t *tx) CreateOpeningBalance(_ context.Context, b *entity.OpeningBalance) error {
	if _, ok := t.work.Person(b.PersonType, b.PersonID); !ok {
		return fmt.Errorf("creating opening balance for %s: %w", b.PersonID, entity.ErrNotFound)
	}

	b.ID = uuid.New()
	b.CreatedAt = t.stamp()
	t.work.OpeningBalances = append(t.work.OpeningBalances, *b)

	return nil
}

func (t *tx) SaveExchangeRates(_ context.Context, r *entity.ExchangeRates) error {
	r.UpdatedAt = t.stamp()
	t.work.Rates = *r

	return nil
}
