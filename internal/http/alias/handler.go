package alias

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daftar/internal/alias"
	"github.com/MrJamesThe3rd/daftar/internal/entity"
	"github.com/MrJamesThe3rd/daftar/internal/http/respond"
)

type Handler struct {
	svc   *alias.Service
	store entity.Store
}

func NewHandler(svc *alias.Service, store entity.Store) *Handler {
	return &Handler{svc: svc, store: store}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestionResponse struct {
	Fragment string            `json:"fragment"`
	PersonID uuid.UUID         `json:"person_id"`
	Type     entity.PersonType `json:"type"`
	Name     string            `json:"name"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	fragment := strings.TrimSpace(r.URL.Query().Get("fragment"))
	if fragment == "" {
		respond.BadRequest(w, "fragment is required")
		return
	}

	t := entity.PersonType(r.URL.Query().Get("type"))
	if t != "" && !t.Valid() {
		respond.BadRequest(w, "invalid person type")
		return
	}

	id, err := h.svc.Suggest(r.Context(), t, fragment)
	if err != nil {
		respond.Error(w, err)
		return
	}

	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	// A learned person may have been deleted since.
	p, ok := snap.Person(t, id)
	if !ok {
		respond.Error(w, entity.ErrNotFound)
		return
	}

	respond.JSON(w, http.StatusOK, suggestionResponse{
		Fragment: fragment,
		PersonID: p.ID,
		Type:     p.Type,
		Name:     p.Name,
	})
}

type learnRequest struct {
	Fragment   string            `json:"fragment"`
	PersonType entity.PersonType `json:"person_type"`
	PersonID   uuid.UUID         `json:"person_id"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Fragment) == "" || !req.PersonType.Valid() {
		respond.BadRequest(w, "fragment and person_type are required")
		return
	}

	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	if _, ok := snap.Person(req.PersonType, req.PersonID); !ok {
		respond.Error(w, entity.ErrNotFound)
		return
	}

	if err := h.svc.Learn(r.Context(), req.PersonType, req.Fragment, req.PersonID); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
