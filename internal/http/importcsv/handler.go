// Package importcsv turns an uploaded spreadsheet of legacy balances into one
// importOpeningBalances proposal. Nothing is written until it is confirmed.
package importcsv

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/daftar/internal/action"
	"github.com/MrJamesThe3rd/daftar/internal/engine"
	"github.com/MrJamesThe3rd/daftar/internal/http/respond"
	"github.com/MrJamesThe3rd/daftar/internal/importer"
)

type Handler struct {
	importSvc *importer.Service
	gate      *engine.Gate
}

func NewHandler(importSvc *importer.Service, gate *engine.Gate) *Handler {
	return &Handler{
		importSvc: importSvc,
		gate:      gate,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type importResponse struct {
	Token       string `json:"token"`
	Lines       int    `json:"lines"`
	Description string `json:"description"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respond.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	a, err := h.importSvc.Import(importer.Format(r.FormValue("format")), r.FormValue("charset"), file)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	if err := action.Validate(a); err != nil {
		respond.Error(w, err)
		return
	}

	p, err := h.gate.Propose(r.Context(), action.SourceImport, a)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, importResponse{
		Token:       p.Token.String(),
		Lines:       len(a.Lines),
		Description: a.Describe(),
	})
}
