// Package registry lists people, categories and exchange rates. Changes go
// through the commands endpoint like every other write.
package registry

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
	"github.com/MrJamesThe3rd/daftar/internal/http/respond"
)

type Handler struct {
	store entity.Store
}

func NewHandler(store entity.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/persons", h.persons)
	r.Get("/categories", h.categories)
	r.Get("/rates", h.rates)
}

type personResponse struct {
	ID        uuid.UUID         `json:"id"`
	Type      entity.PersonType `json:"type"`
	Name      string            `json:"name"`
	Phone     string            `json:"phone,omitempty"`
	Region    string            `json:"region,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type categoryResponse struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Currency entity.Currency `json:"currency"`
	Stock    int64           `json:"stock"`
}

type ratesResponse struct {
	SARToYER  decimal.Decimal `json:"sar_to_yer"`
	OMRToYER  decimal.Decimal `json:"omr_to_yer"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

func (h *Handler) persons(w http.ResponseWriter, r *http.Request) {
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

	people := snap.People(t)

	resp := make([]personResponse, len(people))
	for i, p := range people {
		resp[i] = personResponse{
			ID:        p.ID,
			Type:      p.Type,
			Name:      p.Name,
			Phone:     p.Phone,
			Region:    p.Region,
			CreatedAt: p.CreatedAt,
		}
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := make([]categoryResponse, len(snap.Categories))
	for i, c := range snap.Categories {
		resp[i] = categoryResponse{
			ID:       c.ID,
			Name:     c.Name,
			Price:    c.Price,
			Currency: c.Currency,
			Stock:    c.Stock,
		}
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) rates(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := ratesResponse{
		SARToYER: snap.Rates.SARToYER,
		OMRToYER: snap.Rates.OMRToYER,
	}

	if !snap.Rates.UpdatedAt.IsZero() {
		resp.UpdatedAt = new(snap.Rates.UpdatedAt)
	}

	respond.JSON(w, http.StatusOK, resp)
}
