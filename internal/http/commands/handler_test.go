package commands_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/daftar/internal/engine"
	"github.com/MrJamesThe3rd/daftar/internal/entity"
	"github.com/MrJamesThe3rd/daftar/internal/entity/memstore"
	"github.com/MrJamesThe3rd/daftar/internal/http/commands"
)

var (
	mohammed  = entity.Person{ID: uuid.New(), Type: entity.PersonCustomer, Name: "Mohammed"}
	aliSaleh  = entity.Person{ID: uuid.New(), Type: entity.PersonCustomer, Name: "Ali Saleh"}
	aliHassan = entity.Person{ID: uuid.New(), Type: entity.PersonCustomer, Name: "Ali Hassan"}
)

type server struct {
	router http.Handler
	store  *memstore.Store
}

func newServer(t *testing.T) *server {
	t.Helper()

	store := memstore.NewSeeded(&entity.Snapshot{
		Customers: []entity.Person{mohammed, aliSaleh, aliHassan},
		Categories: []entity.Category{
			{ID: uuid.New(), Name: "Sabri", Price: decimal.NewFromInt(1500), Currency: entity.CurrencyYER, Stock: 10},
		},
	})

	exec := engine.NewExecutor(engine.ExecutorConfig{Store: store})
	gate := engine.NewGate(store, exec, nil, nil)

	r := chi.NewRouter()
	r.Route("/commands", commands.NewHandler(gate).Routes)

	return &server{router: r, store: store}
}

func (s *server) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	return body
}

const saleTo = `{"action":"recordSale","source":"voice","args":{"customer_name":%q,"qat_type":"Sabri","quantity":2,"unit_price":1500,"status":"credit"}}`

func proposeSale(t *testing.T, s *server, customer string) *httptest.ResponseRecorder {
	t.Helper()

	return s.do(t, http.MethodPost, "/commands", fmt.Sprintf(saleTo, customer))
}

func TestHandler_ProposeConfirm(t *testing.T) {
	s := newServer(t)

	rec := proposeSale(t, s, "Mohammed")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	pending := decode(t, rec)
	token := pending["token"].(string)
	assert.Equal(t, "recordSale", pending["action"])
	assert.Equal(t, "voice", pending["source"])

	rec = s.do(t, http.MethodGet, "/commands/pending", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(engine.StatePendingConfirmation), decode(t, rec)["state"])

	rec = s.do(t, http.MethodPost, "/commands/"+token+"/confirm", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode(t, rec)
	assert.Equal(t, string(engine.StateIdle), out["state"])
	assert.Equal(t, "recordSale", out["result"].(map[string]any)["action"])

	snap, err := s.store.Snapshot(t.Context())
	require.NoError(t, err)
	require.Len(t, snap.Sales, 1)
	assert.Equal(t, int64(8), snap.Categories[0].Stock)
}

func TestHandler_Propose(t *testing.T) {
	type testCase struct {
		name       string
		body       string
		wantStatus int
		wantKind   engine.Kind
	}

	tests := []testCase{
		{
			name:       "InvalidArgs",
			body:       `{"action":"recordSale","args":{"customer_name":"Mohammed","qat_type":"Sabri","quantity":0,"unit_price":1,"status":"cash"}}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   engine.KindValidation,
		},
		{
			name:       "UnknownAction",
			body:       `{"action":"dropTables","args":{}}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   engine.KindValidation,
		},
		{
			name:       "UnknownSource",
			body:       `{"action":"recordWaste","source":"fax","args":{"qat_type":"Sabri","quantity":1}}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   engine.KindValidation,
		},
		{
			name:       "UnknownCustomer",
			body:       `{"action":"recordSale","args":{"customer_name":"Khaled","qat_type":"Sabri","quantity":1,"unit_price":1,"status":"cash"}}`,
			wantStatus: http.StatusNotFound,
			wantKind:   engine.KindNotFound,
		},
		{
			name:       "DuplicatePerson",
			body:       `{"action":"managePerson","args":{"action":"add","type":"customer","name":"Mohammed"}}`,
			wantStatus: http.StatusConflict,
			wantKind:   engine.KindDuplicate,
		},
		{
			name:       "MalformedBody",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
			wantKind:   engine.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(t)

			rec := s.do(t, http.MethodPost, "/commands", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, string(tt.wantKind), decode(t, rec)["kind"])

			snap, err := s.store.Snapshot(t.Context())
			require.NoError(t, err)
			assert.Empty(t, snap.Sales)
			assert.Len(t, snap.Customers, 3)
		})
	}
}

func TestHandler_BusyWhilePending(t *testing.T) {
	s := newServer(t)

	require.Equal(t, http.StatusCreated, proposeSale(t, s, "Mohammed").Code)

	rec := proposeSale(t, s, "Mohammed")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(engine.KindBusy), decode(t, rec)["kind"])
}

func TestHandler_Disambiguation(t *testing.T) {
	s := newServer(t)

	rec := proposeSale(t, s, "Ali")
	require.Equal(t, http.StatusCreated, rec.Code)

	pending := decode(t, rec)
	token := pending["token"].(string)
	assert.Len(t, pending["candidates"], 2)

	rec = s.do(t, http.MethodPost, "/commands/"+token+"/confirm", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(engine.StatePendingDisambiguation), decode(t, rec)["state"])

	rec = s.do(t, http.MethodPost, "/commands/"+token+"/choose", `{"person_id":"`+mohammed.ID.String()+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/commands/"+token+"/choose", `{"person_id":"`+aliSaleh.ID.String()+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	snap, err := s.store.Snapshot(t.Context())
	require.NoError(t, err)
	require.Len(t, snap.Sales, 1)
	assert.Equal(t, aliSaleh.ID, snap.Sales[0].CustomerID)
}

func TestHandler_DisambiguationShowsDebt(t *testing.T) {
	s := newServer(t)

	rec := proposeSale(t, s, "Ali Hassan")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/commands/"+decode(t, rec)["token"].(string)+"/confirm", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = proposeSale(t, s, "Ali")
	require.Equal(t, http.StatusCreated, rec.Code)

	pending := decode(t, rec)
	token := pending["token"].(string)

	warnings, ok := pending["candidate_warnings"].([]any)
	require.True(t, ok, "candidate_warnings missing: %v", pending)
	require.Len(t, warnings, 1)
	assert.Equal(t, aliHassan.ID.String(), warnings[0].(map[string]any)["person_id"])

	rec = s.do(t, http.MethodPost, "/commands/"+token+"/confirm", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["candidate_warnings"], 1)

	rec = s.do(t, http.MethodPost, "/commands/"+token+"/choose", `{"person_id":"`+aliHassan.ID.String()+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, decode(t, rec)["warning"], "Ali Hassan already owes")
}

func TestHandler_Cancel(t *testing.T) {
	s := newServer(t)

	rec := proposeSale(t, s, "Mohammed")
	token := decode(t, rec)["token"].(string)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, "/commands/"+token+"/cancel", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/commands/"+token+"/cancel", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/commands/not-a-token/cancel", "").Code)

	snap, err := s.store.Snapshot(t.Context())
	require.NoError(t, err)
	assert.Empty(t, snap.Sales)
}

func TestHandler_ErrorAndAcknowledge(t *testing.T) {
	s := newServer(t)

	rec := proposeSale(t, s, "Khaled")
	require.Equal(t, http.StatusNotFound, rec.Code)

	status := decode(t, s.do(t, http.MethodGet, "/commands/pending", ""))
	assert.Equal(t, string(engine.StateError), status["state"])
	assert.NotNil(t, status["error"])

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, "/commands/ack", "").Code)

	status = decode(t, s.do(t, http.MethodGet, "/commands/pending", ""))
	assert.Equal(t, string(engine.StateIdle), status["state"])
	assert.Nil(t, status["error"])
}
