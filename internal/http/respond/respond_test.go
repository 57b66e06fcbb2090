package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/daftar/internal/engine"
	"github.com/MrJamesThe3rd/daftar/internal/entity"
	"github.com/MrJamesThe3rd/daftar/internal/http/respond"
)

func TestError(t *testing.T) {
	type testCase struct {
		name       string
		err        error
		wantStatus int
		wantKind   engine.Kind
	}

	tests := []testCase{
		{name: "Busy", err: engine.ErrBusy, wantStatus: http.StatusConflict, wantKind: engine.KindBusy},
		{name: "Duplicate", err: entity.ErrDuplicate, wantStatus: http.StatusConflict, wantKind: engine.KindDuplicate},
		{name: "NotFound", err: entity.ErrNotFound, wantStatus: http.StatusNotFound, wantKind: engine.KindNotFound},
		{name: "Dependents", err: entity.ErrHasDependents, wantStatus: http.StatusConflict, wantKind: engine.KindReferential},
		{name: "Offline", err: entity.ErrUnavailable, wantStatus: http.StatusServiceUnavailable, wantKind: engine.KindStore},
		{name: "Stale", err: engine.ErrStaleToken, wantStatus: http.StatusBadRequest, wantKind: engine.KindValidation},
		{name: "Unknown", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantKind: engine.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respond.Error(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body struct {
				Kind    engine.Kind `json:"kind"`
				Message string      `json:"message"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantKind, body.Kind)
			assert.NotEmpty(t, body.Message)
		})
	}
}
