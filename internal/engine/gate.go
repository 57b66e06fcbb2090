package engine

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daftar/internal/action"
	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

type State string

const (
	StateIdle                  State = "idle"
	StatePendingConfirmation   State = "pending_confirmation"
	StatePendingDisambiguation State = "pending_disambiguation"
	StateError                 State = "error"
)

// Pending is a validated proposal waiting for an explicit decision.
// Suggested points into Candidates.
type Pending struct {
	Token             uuid.UUID
	Source            action.Source
	Action            action.Action
	Person            *entity.Person
	Warning           *DebtWarning
	Candidates        []entity.Person
	Suggested         *entity.Person
	CandidateWarnings []DebtWarning
	CreatedAt         time.Time
}

func (p *Pending) clone() *Pending {
	if p == nil {
		return nil
	}

	c := *p
	c.Candidates = slices.Clone(p.Candidates)
	c.CandidateWarnings = slices.Clone(p.CandidateWarnings)
	c.Suggested = nil

	if p.Suggested != nil {
		c.Suggested = suggest(c.Candidates, p.Suggested.ID)
	}

	return &c
}

// Status is a point-in-time view of the gate.
type Status struct {
	State     State
	Pending   *Pending
	Err       *Error
	Executing bool
}

// Outcome reports where a Confirm or Choose left the gate. Warning is the
// debt warning of the chosen customer.
type Outcome struct {
	State             State
	Result            *Result
	Candidates        []entity.Person
	Suggested         *entity.Person
	CandidateWarnings []DebtWarning
	Warning           *DebtWarning
}

// Runner executes an accepted proposal.
type Runner interface {
	Execute(ctx context.Context, a action.Action, personID uuid.UUID) (*Result, error)
}

// Aliases remembers the person an ambiguous name fragment turned out to be.
type Aliases interface {
	Suggest(ctx context.Context, t entity.PersonType, fragment string) (uuid.UUID, error)
	Learn(ctx context.Context, t entity.PersonType, fragment string, id uuid.UUID) error
}

// Slot is the single pending-action claim shared by every process working on
// the same ledger. Claim fails with ErrBusy while another token holds it.
type Slot interface {
	Claim(ctx context.Context, token uuid.UUID, source action.Source, name action.Name) error
	Release(ctx context.Context, token uuid.UUID) error
}

type GateOption func(*Gate)

// WithSlot makes the gate claim slot for every accepted proposal and hold it
// until the proposal is cancelled or its execution ends.
func WithSlot(slot Slot) GateOption {
	return func(g *Gate) {
		g.slot = slot
	}
}

// Gate holds at most one pending proposal for every channel of the process
// and lets nothing reach the store without an explicit confirmation.
type Gate struct {
	store   entity.Store
	runner  Runner
	aliases Aliases
	slot    Slot
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	state     State
	pending   *Pending
	lastErr   *Error
	executing uuid.UUID
}

// NewGate builds a gate. aliases may be nil.
func NewGate(store entity.Store, runner Runner, aliases Aliases, logger *slog.Logger, opts ...GateOption) *Gate {
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gate{
		store:   store,
		runner:  runner,
		aliases: aliases,
		logger:  logger,
		now:     time.Now,
		state:   StateIdle,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

func (g *Gate) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Status{
		State:     g.state,
		Pending:   g.pending.clone(),
		Err:       g.lastErr,
		Executing: g.executing != uuid.Nil,
	}
}

// Propose validates a against a fresh snapshot. Accepted proposals wait for
// Confirm; rejected ones move the gate to the error state. A proposal made
// while another is pending or executing fails with ErrBusy and leaves the
// gate untouched. With a Slot, a proposal pending in another process also
// fails with ErrBusy.
func (g *Gate) Propose(ctx context.Context, source action.Source, a action.Action) (*Pending, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending != nil || g.executing != uuid.Nil {
		return nil, Classify(ErrBusy)
	}

	g.lastErr = nil
	g.state = StateIdle

	snap, err := g.store.Snapshot(ctx)
	if err != nil {
		return nil, g.fail(Classify(err))
	}

	verdict := Validate(snap, a, g.hint(ctx, a))
	if !verdict.OK() {
		return nil, g.fail(verdict.Err)
	}

	token := uuid.New()

	if err := g.claim(ctx, token, source, a); err != nil {
		if errors.Is(err, ErrBusy) {
			return nil, Classify(err)
		}

		return nil, g.fail(Classify(err))
	}

	g.pending = &Pending{
		Token:             token,
		Source:            source,
		Action:            a,
		Person:            verdict.Person,
		Warning:           verdict.Warning,
		Candidates:        verdict.Candidates,
		Suggested:         verdict.Suggested,
		CandidateWarnings: verdict.CandidateWarnings,
		CreatedAt:         g.now().UTC(),
	}
	g.state = StatePendingConfirmation

	g.logger.Info("action proposed", "action", a.Kind(), "source", source, "token", g.pending.Token)

	return g.pending.clone(), nil
}

// Confirm runs the pending proposal. When the counterpart is still
// ambiguous the gate moves to pending_disambiguation and nothing runs.
// Otherwise the gate returns to idle whatever the execution outcome.
func (g *Gate) Confirm(ctx context.Context, token uuid.UUID) (Outcome, error) {
	g.mu.Lock()

	p, err := g.take(token)
	if err != nil {
		return g.abort(err)
	}

	if p.Person == nil && len(p.Candidates) > 1 {
		g.state = StatePendingDisambiguation
		c := p.clone()
		g.mu.Unlock()

		return Outcome{
			State:             StatePendingDisambiguation,
			Candidates:        c.Candidates,
			Suggested:         c.Suggested,
			CandidateWarnings: c.CandidateWarnings,
		}, nil
	}

	personID := uuid.Nil
	if p.Person != nil {
		personID = p.Person.ID
	}

	g.begin(p)
	g.mu.Unlock()

	return g.run(ctx, p, personID)
}

// Choose resolves an ambiguous proposal to one of its candidates, runs it
// and remembers the choice for the name fragment.
func (g *Gate) Choose(ctx context.Context, token, personID uuid.UUID) (Outcome, error) {
	g.mu.Lock()

	p, err := g.take(token)
	if err != nil {
		return g.abort(err)
	}

	if len(p.Candidates) == 0 {
		return g.abort(Classify(ErrNoChoice))
	}

	idx := slices.IndexFunc(p.Candidates, func(c entity.Person) bool { return c.ID == personID })
	if idx < 0 {
		return g.abort(Classify(ErrNotCandidate))
	}

	chosen := p.Candidates[idx]
	warning := warningFor(p.CandidateWarnings, chosen.ID)

	if warning != nil {
		g.logger.Info("sale to indebted customer", "token", token, "warning", warning.String())
	}

	g.begin(p)
	g.mu.Unlock()

	out, err := g.run(ctx, p, chosen.ID)
	out.Warning = warning

	if err == nil {
		g.learn(ctx, p.Action, chosen)
	}

	return out, err
}

// Cancel drops the pending proposal without touching the store. Cancelling
// a proposal that is already executing only forgets it locally; the
// execution itself completes.
func (g *Gate) Cancel(ctx context.Context, token uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.executing != uuid.Nil && g.executing == token {
		g.logger.Info("cancel requested during execution", "token", token)
		return nil
	}

	if _, err := g.take(token); err != nil {
		return err
	}

	g.logger.Info("action cancelled", "action", g.pending.Action.Kind(), "token", token)

	g.pending = nil
	g.state = StateIdle
	g.release(ctx, token)

	return nil
}

// Acknowledge clears a rejection so the gate is idle again.
func (g *Gate) Acknowledge() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateError {
		g.state = StateIdle
		g.lastErr = nil
	}
}

// take returns the pending proposal when token names it. Caller holds mu.
func (g *Gate) take(token uuid.UUID) (*Pending, error) {
	if g.pending == nil {
		return nil, Classify(ErrNoPending)
	}

	if g.pending.Token != token {
		return nil, Classify(ErrStaleToken)
	}

	return g.pending, nil
}

// abort releases mu and reports err, leaving the state as it was.
func (g *Gate) abort(err error) (Outcome, error) {
	st := g.state
	g.mu.Unlock()

	return Outcome{State: st}, err
}

// begin marks p as executing and frees the slot. Caller holds mu.
func (g *Gate) begin(p *Pending) {
	g.pending = nil
	g.state = StateIdle
	g.executing = p.Token
}

func (g *Gate) run(ctx context.Context, p *Pending, personID uuid.UUID) (Outcome, error) {
	res, err := g.runner.Execute(ctx, p.Action, personID)

	g.release(ctx, p.Token)

	g.mu.Lock()
	g.executing = uuid.Nil
	g.mu.Unlock()

	if err != nil {
		return Outcome{State: StateIdle}, Classify(err)
	}

	return Outcome{State: StateIdle, Result: res}, nil
}

// fail records a rejection. Caller holds mu.
func (g *Gate) fail(err *Error) *Error {
	g.state = StateError
	g.lastErr = err

	g.logger.Warn("action rejected", "kind", err.Kind, "error", err)

	return err
}

func (g *Gate) claim(ctx context.Context, token uuid.UUID, source action.Source, a action.Action) error {
	if g.slot == nil {
		return nil
	}

	return g.slot.Claim(ctx, token, source, a.Kind())
}

// release frees the shared slot even when ctx is already cancelled. A failed
// release is left to expire.
func (g *Gate) release(ctx context.Context, token uuid.UUID) {
	if g.slot == nil {
		return
	}

	if err := g.slot.Release(context.WithoutCancel(ctx), token); err != nil {
		g.logger.Warn("failed to release pending slot", "token", token, "error", err)
	}
}

func (g *Gate) hint(ctx context.Context, a action.Action) uuid.UUID {
	ref, ok := action.Counterpart(a)
	if !ok || g.aliases == nil {
		return uuid.Nil
	}

	id, err := g.aliases.Suggest(ctx, ref.Type, ref.Name)
	if err != nil {
		g.logger.Warn("alias lookup failed", "fragment", ref.Name, "error", err)
		return uuid.Nil
	}

	return id
}

func (g *Gate) learn(ctx context.Context, a action.Action, chosen entity.Person) {
	ref, ok := action.Counterpart(a)
	if !ok || g.aliases == nil {
		return
	}

	if err := g.aliases.Learn(ctx, chosen.Type, ref.Name, chosen.ID); err != nil {
		g.logger.Warn("failed to learn alias", "fragment", ref.Name, "error", err)
	}
}
