// Package respond writes JSON bodies and maps engine errors onto HTTP status codes.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/daftar/internal/engine"
)

type errorResponse struct {
	Kind    engine.Kind `json:"kind"`
	Message string      `json:"message"`
}

var statusByKind = map[engine.Kind]int{
	engine.KindValidation:  http.StatusBadRequest,
	engine.KindNotFound:    http.StatusNotFound,
	engine.KindDuplicate:   http.StatusConflict,
	engine.KindStore:       http.StatusServiceUnavailable,
	engine.KindReferential: http.StatusConflict,
	engine.KindBusy:        http.StatusConflict,
	engine.KindUnknown:     http.StatusInternalServerError,
}

func StatusFor(kind engine.Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}

	return http.StatusInternalServerError
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error classifies err and writes it with the matching status code.
func Error(w http.ResponseWriter, err error) {
	e := engine.Classify(err)

	if e.Kind == engine.KindUnknown {
		slog.Error("request failed", "error", err)
	}

	JSON(w, StatusFor(e.Kind), errorResponse{Kind: e.Kind, Message: e.Message})
}

// BadRequest reports a malformed request that never reached the engine.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, errorResponse{Kind: engine.KindValidation, Message: message})
}
