// Package commands exposes the confirmation gate over HTTP. Every channel,
// the voice front-end included, proposes here and confirms explicitly.
package commands

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daftar/internal/action"
	"github.com/MrJamesThe3rd/daftar/internal/engine"
	"github.com/MrJamesThe3rd/daftar/internal/http/respond"
)

type Handler struct {
	gate *engine.Gate
}

func NewHandler(gate *engine.Gate) *Handler {
	return &Handler{gate: gate}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.propose)
	r.Get("/pending", h.status)
	r.Post("/ack", h.acknowledge)
	r.Post("/{token}/confirm", h.confirm)
	r.Post("/{token}/choose", h.choose)
	r.Post("/{token}/cancel", h.cancel)
}

type proposeRequest struct {
	Action action.Name     `json:"action"`
	Args   json.RawMessage `json:"args"`
	Source action.Source   `json:"source"`
}

func (h *Handler) propose(w http.ResponseWriter, r *http.Request) {
	var req proposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	if req.Source == "" {
		req.Source = action.SourceText
	}

	if !req.Source.Valid() {
		respond.BadRequest(w, "unknown source: "+string(req.Source))
		return
	}

	a, err := action.Decode(req.Action, req.Args)
	if err != nil {
		respond.Error(w, err)
		return
	}

	p, err := h.gate.Propose(r.Context(), req.Source, a)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toPending(p))
}

func (h *Handler) status(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, toStatus(h.gate.Status()))
}

func (h *Handler) acknowledge(w http.ResponseWriter, _ *http.Request) {
	h.gate.Acknowledge()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	token, ok := parseToken(w, r)
	if !ok {
		return
	}

	out, err := h.gate.Confirm(r.Context(), token)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toOutcome(out))
}

type chooseRequest struct {
	PersonID uuid.UUID `json:"person_id"`
}

func (h *Handler) choose(w http.ResponseWriter, r *http.Request) {
	token, ok := parseToken(w, r)
	if !ok {
		return
	}

	var req chooseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	out, err := h.gate.Choose(r.Context(), token, req.PersonID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toOutcome(out))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	token, ok := parseToken(w, r)
	if !ok {
		return
	}

	if err := h.gate.Cancel(r.Context(), token); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseToken(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	token, err := uuid.Parse(chi.URLParam(r, "token"))
	if err != nil {
		respond.BadRequest(w, "invalid token")
		return uuid.Nil, false
	}

	return token, true
}
