package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daftar/internal/action"
	"github.com/MrJamesThe3rd/daftar/internal/entity"
	"github.com/MrJamesThe3rd/daftar/internal/notify"
)

type Auditor interface {
	Record(ctx context.Context, category, detail string) error
}

type Notifier interface {
	Notify(title, message string, severity notify.Severity) notify.Notification
}

// Backuper stores a full copy of the data somewhere off the machine and
// returns where it went.
type Backuper interface {
	Backup(ctx context.Context, snap *entity.Snapshot) (string, error)
}

// Messenger delivers a composed message to a person. Formatting for a
// particular channel is its concern.
type Messenger interface {
	Send(ctx context.Context, to entity.Person, kind action.MessageType, body string) error
}

// Result describes a committed action.
type Result struct {
	Action  action.Name `json:"action"`
	Title   string      `json:"title"`
	Summary string      `json:"summary"`
}

type ExecutorConfig struct {
	Store    entity.Store
	Audit    Auditor
	Notifier Notifier
	// Backups and Messenger are optional. Without a Messenger the composed
	// text is returned in the result summary.
	Backups   Backuper
	Messenger Messenger
	Logger    *slog.Logger
}

// Executor turns an accepted proposal into committed records. Each action
// runs as one store transaction covering the record and its stock effects.
type Executor struct {
	store     entity.Store
	audit     Auditor
	notifier  Notifier
	backups   Backuper
	messenger Messenger
	logger    *slog.Logger
	now       func() time.Time
}

func NewExecutor(cfg ExecutorConfig) *Executor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		store:     cfg.Store,
		audit:     cfg.Audit,
		notifier:  cfg.Notifier,
		backups:   cfg.Backups,
		messenger: cfg.Messenger,
		logger:    logger,
		now:       time.Now,
	}
}

// Execute runs a, using personID for the counterpart when it is set and the
// name in the proposal otherwise. It emits exactly one notification and, on
// success, one audit entry. Failures come back as *Error.
func (e *Executor) Execute(ctx context.Context, a action.Action, personID uuid.UUID) (*Result, error) {
	res, err := e.execute(ctx, a, personID)
	if err != nil {
		verr := Classify(err)

		e.logger.Error("action failed", "action", a.Kind(), "kind", verr.Kind, "error", err)
		e.notify("Action failed", verr.Message, notify.SeverityError)

		return nil, verr
	}

	if e.audit != nil {
		if err := e.audit.Record(ctx, string(a.Kind()), res.Summary); err != nil {
			e.logger.Error("failed to record activity", "action", a.Kind(), "error", err)
		}
	}

	e.logger.Info("action executed", "action", a.Kind(), "summary", res.Summary)
	e.notify(res.Title, res.Summary, notify.SeveritySuccess)

	return res, nil
}

func (e *Executor) notify(title, message string, severity notify.Severity) {
	if e.notifier != nil {
		e.notifier.Notify(title, message, severity)
	}
}

func (e *Executor) execute(ctx context.Context, a action.Action, personID uuid.UUID) (*Result, error) {
	snap, err := e.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	switch a := a.(type) {
	case *action.Sale:
		return e.recordSale(ctx, snap, a, personID)
	case *action.Purchase:
		return e.recordPurchase(ctx, snap, a, personID)
	case *action.Waste:
		return e.recordWaste(ctx, snap, a)
	case *action.Return:
		return e.recordReturn(ctx, snap, a, personID)
	case *action.Person:
		return e.managePerson(ctx, snap, a, personID)
	case *action.Category:
		return e.manageCategory(ctx, snap, a)
	case *action.Voucher:
		return e.recordVoucher(ctx, snap, a, personID)
	case *action.OpeningBalance:
		return e.recordOpeningBalance(ctx, snap, a, personID)
	case *action.ImportOpeningBalances:
		return e.importOpeningBalances(ctx, snap, a)
	case *action.SystemControl:
		return e.systemControl(ctx, snap, a)
	case *action.SendMessage:
		return e.sendMessage(ctx, snap, a, personID)
	}

	return nil, fmt.Errorf("executing %q: %w", a.Kind(), action.ErrUnknownAction)
}

// inTx commits fn's writes together or not at all.
func (e *Executor) inTx(ctx context.Context, fn func(tx entity.Tx) error) error {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// adjustStock applies a stock effect. Items that are not tracked in the
// inventory are skipped.
func (e *Executor) adjustStock(ctx context.Context, tx entity.Tx, qatType string, delta int64) error {
	_, err := tx.AdjustStock(ctx, qatType, delta)
	if errors.Is(err, entity.ErrNotFound) {
		e.logger.Info("stock effect skipped, item not tracked", "qat_type", qatType, "delta", delta)
		return nil
	}

	if err != nil {
		return fmt.Errorf("adjusting stock of %q: %w", qatType, err)
	}

	return nil
}

// person resolves the counterpart by id when known, otherwise by name.
func person(snap *entity.Snapshot, t entity.PersonType, id uuid.UUID, name string) (*entity.Person, error) {
	if id != uuid.Nil {
		p, ok := snap.Person(t, id)
		if !ok {
			return nil, newError(KindNotFound, entity.ErrNotFound, "The chosen %s no longer exists.", label(t))
		}

		return &p, nil
	}

	p, verr := resolveOne(snap.People(t), t, name)
	if verr != nil {
		return nil, verr
	}

	return p, nil
}

func (e *Executor) recordSale(ctx context.Context, snap *entity.Snapshot, a *action.Sale, personID uuid.UUID) (*Result, error) {
	customer, err := person(snap, entity.PersonCustomer, personID, a.CustomerName)
	if err != nil {
		return nil, err
	}

	sale := &entity.Sale{
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		QatType:      strings.TrimSpace(a.QatType),
		Quantity:     a.Quantity,
		UnitPrice:    a.UnitPrice,
		Total:        entity.LineTotal(a.Quantity, a.UnitPrice),
		Currency:     a.Currency,
		Status:       a.Status,
		Date:         e.now().UTC(),
	}

	err = e.inTx(ctx, func(tx entity.Tx) error {
		if err := tx.CreateSale(ctx, sale); err != nil {
			return fmt.Errorf("creating sale: %w", err)
		}

		return e.adjustStock(ctx, tx, sale.QatType, -sale.Quantity)
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Action: a.Kind(),
		Title:  "Sale recorded",
		Summary: fmt.Sprintf("%s: %d x %s, %s %s (%s)",
			sale.CustomerName, sale.Quantity, sale.QatType, sale.Total, sale.Currency, sale.Status),
	}, nil
}

func (e *Executor) recordPurchase(ctx context.Context, snap *entity.Snapshot, a *action.Purchase, personID uuid.UUID) (*Result, error) {
	supplier, err := person(snap, entity.PersonSupplier, personID, a.SupplierName)
	if err != nil {
		return nil, err
	}

	purchase := &entity.Purchase{
		SupplierID:   supplier.ID,
		SupplierName: supplier.Name,
		QatType:      strings.TrimSpace(a.QatType),
		Quantity:     a.Quantity,
		UnitPrice:    a.UnitPrice,
		Total:        entity.LineTotal(a.Quantity, a.UnitPrice),
		Currency:     a.Currency,
		Status:       a.Status,
		Date:         e.now().UTC(),
	}

	err = e.inTx(ctx, func(tx entity.Tx) error {
		if err := tx.CreatePurchase(ctx, purchase); err != nil {
			return fmt.Errorf("creating purchase: %w", err)
		}

		return e.adjustStock(ctx, tx, purchase.QatType, purchase.Quantity)
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Action: a.Kind(),
		Title:  "Purchase recorded",
		Summary: fmt.Sprintf("%s: %d x %s, %s %s (%s)",
			purchase.SupplierName, purchase.Quantity, purchase.QatType, purchase.Total, purchase.Currency, purchase.Status),
	}, nil
}

func (e *Executor) recordWaste(ctx context.Context, snap *entity.Snapshot, a *action.Waste) (*Result, error) {
	category, verr := findCategory(snap.Categories, a.QatType)
	if verr != nil {
		return nil, verr
	}

	waste := &entity.Waste{
		QatType:  category.Name,
		Quantity: a.Quantity,
		Notes:    a.Notes,
		Date:     e.now().UTC(),
	}

	err := e.inTx(ctx, func(tx entity.Tx) error {
		if err := tx.CreateWaste(ctx, waste); err != nil {
			return fmt.Errorf("creating waste: %w", err)
		}

		return e.adjustStock(ctx, tx, waste.QatType, -waste.Quantity)
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Action:  a.Kind(),
		Title:   "Waste recorded",
		Summary: fmt.Sprintf("%d x %s written off", waste.Quantity, waste.QatType),
	}, nil
}

func (e *Executor) recordReturn(ctx context.Context, snap *entity.Snapshot, a *action.Return, personID uuid.UUID) (*Result, error) {
	ref, _ := action.Counterpart(a)

	counterpart, err := person(snap, ref.Type, personID, ref.Name)
	if err != nil {
		return nil, err
	}

	invoice, ok := openInvoice(snap, a, counterpart.ID)
	if !ok {
		return nil, noOpenInvoice(a)
	}

	err = e.inTx(ctx, func(tx entity.Tx) error {
		if a.Operation == action.ReturnPurchase {
			if err := tx.MarkPurchaseReturned(ctx, invoice.id); err != nil {
				return fmt.Errorf("returning purchase: %w", err)
			}

			return e.adjustStock(ctx, tx, invoice.qatType, -invoice.quantity)
		}

		if err := tx.MarkSaleReturned(ctx, invoice.id); err != nil {
			return fmt.Errorf("returning sale: %w", err)
		}

		return e.adjustStock(ctx, tx, invoice.qatType, invoice.quantity)
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Action:  a.Kind(),
		Title:   "Return recorded",
		Summary: fmt.Sprintf("%s invoice of %s returned: %d x %s", a.Operation, counterpart.Name, invoice.quantity, invoice.qatType),
	}, nil
}

func (e *Executor) managePerson(ctx context.Context, snap *entity.Snapshot, a *action.Person, personID uuid.UUID) (*Result, error) {
	if a.Op == action.OpAdd {
		p := &entity.Person{
			Type:   a.Type,
			Name:   strings.TrimSpace(a.Name),
			Phone:  strings.TrimSpace(a.Phone),
			Region: strings.TrimSpace(a.Region),
		}

		err := e.inTx(ctx, func(tx entity.Tx) error {
			return tx.CreatePerson(ctx, p)
		})
		if err != nil {
			return nil, fmt.Errorf("adding %s: %w", a.Type, err)
		}

		return &Result{Action: a.Kind(), Title: "Person added", Summary: fmt.Sprintf("%s %s added", p.Type, p.Name)}, nil
	}

	target, err := person(snap, a.Type, personID, a.Name)
	if err != nil {
		return nil, err
	}

	if a.Op == action.OpDelete {
		err := e.inTx(ctx, func(tx entity.Tx) error {
			return tx.DeletePerson(ctx, target.Type, target.ID)
		})
		if err != nil {
			return nil, fmt.Errorf("deleting %s: %w", a.Type, err)
		}

		return &Result{Action: a.Kind(), Title: "Person deleted", Summary: fmt.Sprintf("%s %s deleted", target.Type, target.Name)}, nil
	}

	updated := *target
	if name := strings.TrimSpace(a.NewName); name != "" {
		updated.Name = name
	}

	if phone := strings.TrimSpace(a.Phone); phone != "" {
		updated.Phone = phone
	}

	if region := strings.TrimSpace(a.Region); region != "" {
		updated.Region = region
	}

	err = e.inTx(ctx, func(tx entity.Tx) error {
		return tx.UpdatePerson(ctx, &updated)
	})
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", a.Type, err)
	}

	return &Result{Action: a.Kind(), Title: "Person updated", Summary: fmt.Sprintf("%s %s updated", updated.Type, updated.Name)}, nil
}

func (e *Executor) manageCategory(ctx context.Context, snap *entity.Snapshot, a *action.Category) (*Result, error) {
	if a.Op == action.OpAdd {
		c := &entity.Category{
			Name:     strings.TrimSpace(a.Name),
			Price:    a.Price,
			Currency: a.Currency,
			Stock:    a.Stock,
		}

		err := e.inTx(ctx, func(tx entity.Tx) error {
			return tx.CreateCategory(ctx, c)
		})
		if err != nil {
			return nil, fmt.Errorf("adding item: %w", err)
		}

		return &Result{Action: a.Kind(), Title: "Item added", Summary: fmt.Sprintf("%s at %s %s", c.Name, c.Price, c.Currency)}, nil
	}

	target, verr := findCategory(snap.Categories, a.Name)
	if verr != nil {
		return nil, verr
	}

	if a.Op == action.OpDelete {
		err := e.inTx(ctx, func(tx entity.Tx) error {
			return tx.DeleteCategory(ctx, target.ID)
		})
		if err != nil {
			return nil, fmt.Errorf("deleting item: %w", err)
		}

		return &Result{Action: a.Kind(), Title: "Item deleted", Summary: fmt.Sprintf("%s deleted", target.Name)}, nil
	}

	updated := *target
	if name := strings.TrimSpace(a.NewName); name != "" {
		updated.Name = name
	}

	if a.Price.IsPositive() {
		updated.Price = a.Price
	}

	if a.Currency != "" {
		updated.Currency = a.Currency
	}

	if a.Stock > 0 {
		updated.Stock = a.Stock
	}

	err := e.inTx(ctx, func(tx entity.Tx) error {
		return tx.UpdateCategory(ctx, &updated)
	})
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	return &Result{
		Action:  a.Kind(),
		Title:   "Item updated",
		Summary: fmt.Sprintf("%s at %s %s, %d in stock", updated.Name, updated.Price, updated.Currency, updated.Stock),
	}, nil
}

func (e *Executor) recordVoucher(ctx context.Context, snap *entity.Snapshot, a *action.Voucher, personID uuid.UUID) (*Result, error) {
	t := a.Type.PersonType()

	target, err := person(snap, t, personID, a.PersonName)
	if err != nil {
		return nil, err
	}

	v := &entity.Voucher{
		Type:       a.Type,
		PersonID:   target.ID,
		PersonName: target.Name,
		PersonType: t,
		Amount:     a.Amount,
		Currency:   a.Currency,
		Notes:      a.Notes,
		Date:       e.now().UTC(),
	}

	err = e.inTx(ctx, func(tx entity.Tx) error {
		return tx.CreateVoucher(ctx, v)
	})
	if err != nil {
		return nil, fmt.Errorf("creating voucher: %w", err)
	}

	return &Result{
		Action:  a.Kind(),
		Title:   "Voucher recorded",
		Summary: fmt.Sprintf("%s %s %s, %s", v.Type, v.Amount, v.Currency, v.PersonName),
	}, nil
}

func (e *Executor) recordOpeningBalance(ctx context.Context, snap *entity.Snapshot, a *action.OpeningBalance, personID uuid.UUID) (*Result, error) {
	target, err := person(snap, a.PersonType, personID, a.PersonName)
	if err != nil {
		return nil, err
	}

	b := e.openingBalance(target, a)

	err = e.inTx(ctx, func(tx entity.Tx) error {
		return tx.CreateOpeningBalance(ctx, b)
	})
	if err != nil {
		return nil, fmt.Errorf("creating opening balance: %w", err)
	}

	return &Result{
		Action:  a.Kind(),
		Title:   "Opening balance recorded",
		Summary: fmt.Sprintf("%s: %s %s %s", b.PersonName, b.Amount, b.Currency, b.BalanceType),
	}, nil
}

func (e *Executor) importOpeningBalances(ctx context.Context, snap *entity.Snapshot, a *action.ImportOpeningBalances) (*Result, error) {
	balances := make([]*entity.OpeningBalance, 0, len(a.Lines))

	for i := range a.Lines {
		line := &a.Lines[i]

		target, verr := resolveOne(snap.People(line.PersonType), line.PersonType, line.PersonName)
		if verr != nil {
			verr.Message = fmt.Sprintf("Line %d: %s", i+1, verr.Message)
			return nil, verr
		}

		balances = append(balances, e.openingBalance(target, line))
	}

	err := e.inTx(ctx, func(tx entity.Tx) error {
		for _, b := range balances {
			if err := tx.CreateOpeningBalance(ctx, b); err != nil {
				return fmt.Errorf("creating opening balance for %s: %w", b.PersonName, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Action:  a.Kind(),
		Title:   "Opening balances imported",
		Summary: fmt.Sprintf("%d opening balances imported", len(balances)),
	}, nil
}

func (e *Executor) openingBalance(p *entity.Person, a *action.OpeningBalance) *entity.OpeningBalance {
	return &entity.OpeningBalance{
		PersonID:    p.ID,
		PersonName:  p.Name,
		PersonType:  p.Type,
		Amount:      a.Amount,
		Currency:    a.Currency,
		BalanceType: a.BalanceType,
		Notes:       a.Notes,
		Date:        e.now().UTC(),
	}
}

func (e *Executor) systemControl(ctx context.Context, snap *entity.Snapshot, a *action.SystemControl) (*Result, error) {
	if a.Command == action.CommandBackup {
		if e.backups == nil {
			return nil, fmt.Errorf("cloud backup: %w", ErrNotConfigured)
		}

		location, err := e.backups.Backup(ctx, snap)
		if err != nil {
			return nil, fmt.Errorf("creating backup: %w", err)
		}

		return &Result{Action: a.Kind(), Title: "Backup created", Summary: "Backup stored at " + location}, nil
	}

	rates := snap.Rates
	if a.SARRate.IsPositive() {
		rates.SARToYER = a.SARRate
	}

	if a.OMRRate.IsPositive() {
		rates.OMRToYER = a.OMRRate
	}

	err := e.inTx(ctx, func(tx entity.Tx) error {
		return tx.SaveExchangeRates(ctx, &rates)
	})
	if err != nil {
		return nil, fmt.Errorf("saving exchange rates: %w", err)
	}

	return &Result{
		Action:  a.Kind(),
		Title:   "Exchange rates updated",
		Summary: fmt.Sprintf("1 SAR = %s YER, 1 OMR = %s YER", rates.SARToYER, rates.OMRToYER),
	}, nil
}

func (e *Executor) sendMessage(ctx context.Context, snap *entity.Snapshot, a *action.SendMessage, personID uuid.UUID) (*Result, error) {
	target, err := person(snap, "", personID, a.PersonName)
	if err != nil {
		return nil, err
	}

	body := ComposeMessage(snap, *target, a.MessageType)
	summary := fmt.Sprintf("%s message sent to %s", a.MessageType, target.Name)

	if e.messenger == nil {
		summary = fmt.Sprintf("%s message for %s:\n%s", a.MessageType, target.Name, body)
	} else if err := e.messenger.Send(ctx, *target, a.MessageType, body); err != nil {
		return nil, fmt.Errorf("sending message to %s: %w", target.Name, err)
	}

	return &Result{Action: a.Kind(), Title: "Message sent", Summary: summary}, nil
}
