// Package ledger serves balances, the global summary and account
// statements. Everything is derived from a fresh snapshot per request.
package ledger

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
	"github.com/MrJamesThe3rd/daftar/internal/http/respond"
	"github.com/MrJamesThe3rd/daftar/internal/ledger"
)

type Handler struct {
	store entity.Store
}

func NewHandler(store entity.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/debts", h.debts)
	r.Get("/balances/{type}/{id}", h.balances)
	r.Get("/statement/{type}/{id}", h.statement)
}

type amountResponse struct {
	Currency entity.Currency `json:"currency"`
	Value    decimal.Decimal `json:"value"`
}

type summaryLineResponse struct {
	Currency    entity.Currency `json:"currency"`
	Assets      decimal.Decimal `json:"assets"`
	Liabilities decimal.Decimal `json:"liabilities"`
	Net         decimal.Decimal `json:"net"`
}

type summaryResponse struct {
	Lines []summaryLineResponse `json:"lines"`
	// NetYER is nil until every currency with a non-zero net has a rate.
	NetYER *decimal.Decimal `json:"net_yer,omitempty"`
}

type balancesResponse struct {
	PersonID uuid.UUID        `json:"person_id"`
	Name     string           `json:"name"`
	Balances []amountResponse `json:"balances"`
	Opening  []amountResponse `json:"opening"`
}

type debtResponse struct {
	PersonID uuid.UUID        `json:"person_id"`
	Name     string           `json:"name"`
	Phone    string           `json:"phone,omitempty"`
	Balances []amountResponse `json:"balances"`
}

type statementRowResponse struct {
	Date      time.Time       `json:"date"`
	Kind      ledger.RowKind  `json:"kind"`
	Reference uuid.UUID       `json:"reference"`
	Details   string          `json:"details"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Balance   decimal.Decimal `json:"balance"`
}

func toAmounts(in []ledger.Amount) []amountResponse {
	out := make([]amountResponse, len(in))
	for i, a := range in {
		out[i] = amountResponse{Currency: a.Currency, Value: a.Value}
	}

	return out
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	lines := ledger.Summary(snap)
	resp := summaryResponse{Lines: make([]summaryLineResponse, len(lines))}

	for i, line := range lines {
		resp.Lines[i] = summaryLineResponse{
			Currency:    line.Currency,
			Assets:      line.Assets,
			Liabilities: line.Liabilities,
			Net:         line.Net,
		}
	}

	if total, ok := ledger.NetYER(lines, snap.Rates); ok {
		resp.NetYER = &total
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) debts(w http.ResponseWriter, r *http.Request) {
	t := entity.PersonType(r.URL.Query().Get("type"))
	if t != "" && !t.Valid() {
		respond.BadRequest(w, "invalid person type")
		return
	}

	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := []debtResponse{}
	for _, d := range ledger.Outstanding(snap, t) {
		resp = append(resp, debtResponse{
			PersonID: d.Person.ID,
			Name:     d.Person.Name,
			Phone:    d.Person.Phone,
			Balances: toAmounts(d.Balances),
		})
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) balances(w http.ResponseWriter, r *http.Request) {
	snap, p, ok := h.person(w, r)
	if !ok {
		return
	}

	respond.JSON(w, http.StatusOK, balancesResponse{
		PersonID: p.ID,
		Name:     p.Name,
		Balances: toAmounts(ledger.Balances(snap, p.Type, p.ID)),
		Opening:  toAmounts(ledger.Opening(snap, p.Type, p.ID)),
	})
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	cur := entity.Currency(r.URL.Query().Get("currency"))
	if cur == "" {
		cur = entity.CurrencyYER
	}

	if !cur.Valid() {
		respond.BadRequest(w, "invalid currency")
		return
	}

	snap, p, ok := h.person(w, r)
	if !ok {
		return
	}

	rows := ledger.Statement(snap, p.Type, p.ID, cur)

	resp := make([]statementRowResponse, len(rows))
	for i, row := range rows {
		resp[i] = statementRowResponse{
			Date:      row.Date,
			Kind:      row.Kind,
			Reference: row.Reference,
			Details:   row.Details,
			Debit:     row.Debit,
			Credit:    row.Credit,
			Balance:   row.Balance,
		}
	}

	respond.JSON(w, http.StatusOK, resp)
}

// person loads a snapshot and the person named by the {type} and {id} URL
// parameters, writing the error response itself when that fails.
func (h *Handler) person(w http.ResponseWriter, r *http.Request) (*entity.Snapshot, entity.Person, bool) {
	t := entity.PersonType(chi.URLParam(r, "type"))
	if !t.Valid() {
		respond.BadRequest(w, "invalid person type")
		return nil, entity.Person{}, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return nil, entity.Person{}, false
	}

	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		respond.Error(w, err)
		return nil, entity.Person{}, false
	}

	p, found := snap.Person(t, id)
	if !found {
		respond.Error(w, entity.ErrNotFound)
		return nil, entity.Person{}, false
	}

	return snap, p, true
}
