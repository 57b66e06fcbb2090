package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/daftar/internal/http/activity"
	"github.com/MrJamesThe3rd/daftar/internal/http/alias"
	"github.com/MrJamesThe3rd/daftar/internal/http/commands"
	"github.com/MrJamesThe3rd/daftar/internal/http/importcsv"
	"github.com/MrJamesThe3rd/daftar/internal/http/ledger"
	"github.com/MrJamesThe3rd/daftar/internal/http/registry"
)

type Handlers struct {
	Commands *commands.Handler
	Ledger   *ledger.Handler
	Registry *registry.Handler
	Import   *importcsv.Handler
	Activity *activity.Handler
	Aliases  *alias.Handler
}

func New(h Handlers, allowedOrigins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/commands", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Commands.Routes(r)
		})

		r.Route("/import", h.Import.Routes)
		r.Route("/ledger", h.Ledger.Routes)
		r.Route("/registry", h.Registry.Routes)
		r.Route("/activity", h.Activity.Routes)

		r.Route("/aliases", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Aliases.Routes(r)
		})
	})

	return router
}
