// Package activity serves the notification history, a live notification
// stream and the audit log.
package activity

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/daftar/internal/audit"
	"github.com/MrJamesThe3rd/daftar/internal/http/respond"
	"github.com/MrJamesThe3rd/daftar/internal/notify"
)

const defaultLimit = 50

type Handler struct {
	notifications *notify.Center
	audit         *audit.Service
}

func NewHandler(notifications *notify.Center, auditSvc *audit.Service) *Handler {
	return &Handler{notifications: notifications, audit: auditSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/notifications", h.listNotifications)
	r.Get("/notifications/stream", h.stream)
	r.Get("/audit", h.listAudit)
}

func limit(r *http.Request) (int, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return defaultLimit, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid limit %q", s)
	}

	return n, nil
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	n, err := limit(r)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	respond.JSON(w, http.StatusOK, h.notifications.List(n))
}

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	n, err := limit(r)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	entries, err := h.audit.Recent(r.Context(), n)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if entries == nil {
		entries = []*audit.Entry{}
	}

	respond.JSON(w, http.StatusOK, entries)
}

// stream pushes each new notification as a server-sent event until the
// client goes away.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, cancel := h.notifications.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case n, open := <-ch:
			if !open {
				return
			}

			data, err := json.Marshal(n)
			if err != nil {
				slog.Error("failed to encode notification", "error", err)
				continue
			}

			if _, err := fmt.Fprintf(w, "event: notification\ndata: %s\n\n", data); err != nil {
				return
			}

			flusher.Flush()
		}
	}
}
