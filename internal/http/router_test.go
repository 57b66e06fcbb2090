package http_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/daftar/internal/alias"
	"github.com/MrJamesThe3rd/daftar/internal/audit"
	"github.com/MrJamesThe3rd/daftar/internal/engine"
	"github.com/MrJamesThe3rd/daftar/internal/entity"
	"github.com/MrJamesThe3rd/daftar/internal/entity/memstore"
	daftarHttp "github.com/MrJamesThe3rd/daftar/internal/http"
	activityHandler "github.com/MrJamesThe3rd/daftar/internal/http/activity"
	aliasHandler "github.com/MrJamesThe3rd/daftar/internal/http/alias"
	"github.com/MrJamesThe3rd/daftar/internal/http/commands"
	"github.com/MrJamesThe3rd/daftar/internal/http/importcsv"
	ledgerHandler "github.com/MrJamesThe3rd/daftar/internal/http/ledger"
	"github.com/MrJamesThe3rd/daftar/internal/http/registry"
	"github.com/MrJamesThe3rd/daftar/internal/importer"
	"github.com/MrJamesThe3rd/daftar/internal/notify"
)

var (
	mohammed = entity.Person{ID: uuid.New(), Type: entity.PersonCustomer, Name: "Mohammed"}
	omar     = entity.Person{ID: uuid.New(), Type: entity.PersonSupplier, Name: "Omar"}
)

type app struct {
	router http.Handler
	store  *memstore.Store
}

func newApp(t *testing.T) *app {
	t.Helper()

	store := memstore.NewSeeded(&entity.Snapshot{
		Customers: []entity.Person{mohammed},
		Suppliers: []entity.Person{omar},
		Categories: []entity.Category{
			{ID: uuid.New(), Name: "Sabri", Price: decimal.NewFromInt(500), Currency: entity.CurrencyYER, Stock: 5},
		},
		Sales: []entity.Sale{{
			ID:           uuid.New(),
			CustomerID:   mohammed.ID,
			CustomerName: mohammed.Name,
			QatType:      "Sabri",
			Quantity:     2,
			UnitPrice:    decimal.NewFromInt(500),
			Total:        decimal.NewFromInt(1000),
			Currency:     entity.CurrencyYER,
			Status:       entity.StatusCredit,
			Date:         time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
		}},
	})

	var (
		notifications = notify.NewCenter(0)
		auditService  = audit.NewService(audit.NewMemoryRepository())
		aliasService  = alias.NewService(alias.NewMemoryRepository())
	)

	exec := engine.NewExecutor(engine.ExecutorConfig{Store: store, Audit: auditService, Notifier: notifications})
	gate := engine.NewGate(store, exec, aliasService, nil)

	router := daftarHttp.New(daftarHttp.Handlers{
		Commands: commands.NewHandler(gate),
		Ledger:   ledgerHandler.NewHandler(store),
		Registry: registry.NewHandler(store),
		Import:   importcsv.NewHandler(importer.NewService(), gate),
		Activity: activityHandler.NewHandler(notifications, auditService),
		Aliases:  aliasHandler.NewHandler(aliasService, store),
	}, []string{"*"})

	return &app{router: router, store: store}
}

func (a *app) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	return rec
}

func (a *app) get(path string) *httptest.ResponseRecorder {
	return a.serve(httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *app) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	return a.serve(req)
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v), rec.Body.String())
}

func TestRouter_Reads(t *testing.T) {
	a := newApp(t)

	assert.Equal(t, http.StatusNoContent, a.get("/healthz").Code)

	rec := a.get("/api/v1/ledger/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary struct {
		Lines []struct {
			Currency entity.Currency `json:"currency"`
			Assets   decimal.Decimal `json:"assets"`
		} `json:"lines"`
		NetYER *decimal.Decimal `json:"net_yer"`
	}
	decodeInto(t, rec, &summary)
	require.Len(t, summary.Lines, 3)
	assert.True(t, decimal.NewFromInt(1000).Equal(summary.Lines[0].Assets))
	require.NotNil(t, summary.NetYER)
	assert.True(t, decimal.NewFromInt(1000).Equal(*summary.NetYER))

	var debts []map[string]any
	decodeInto(t, a.get("/api/v1/ledger/debts?type=customer"), &debts)
	assert.Len(t, debts, 1)

	var rows []map[string]any
	decodeInto(t, a.get("/api/v1/ledger/statement/customer/"+mohammed.ID.String()), &rows)
	assert.Len(t, rows, 1)

	assert.Equal(t, http.StatusNotFound, a.get("/api/v1/ledger/balances/customer/"+uuid.NewString()).Code)
	assert.Equal(t, http.StatusBadRequest, a.get("/api/v1/ledger/balances/partner/"+mohammed.ID.String()).Code)
	assert.Equal(t, http.StatusBadRequest, a.get("/api/v1/ledger/statement/customer/"+mohammed.ID.String()+"?currency=EUR").Code)

	var people []map[string]any
	decodeInto(t, a.get("/api/v1/registry/persons?type=supplier"), &people)
	require.Len(t, people, 1)
	assert.Equal(t, "Omar", people[0]["name"])

	var categories []map[string]any
	decodeInto(t, a.get("/api/v1/registry/categories"), &categories)
	assert.Len(t, categories, 1)

	assert.Equal(t, http.StatusOK, a.get("/api/v1/registry/rates").Code)
}

func TestRouter_ImportThenConfirm(t *testing.T) {
	a := newApp(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", "balances.csv")
	require.NoError(t, err)

	_, err = fw.Write([]byte("name,type,amount\nOmar,supplier,-250\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := a.serve(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var proposed struct {
		Token string `json:"token"`
		Lines int    `json:"lines"`
	}
	decodeInto(t, rec, &proposed)
	assert.Equal(t, 1, proposed.Lines)

	snap, err := a.store.Snapshot(t.Context())
	require.NoError(t, err)
	assert.Empty(t, snap.OpeningBalances, "nothing is written before confirmation")

	rec = a.postJSON("/api/v1/commands/"+proposed.Token+"/confirm", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	snap, err = a.store.Snapshot(t.Context())
	require.NoError(t, err)
	require.Len(t, snap.OpeningBalances, 1)
	assert.Equal(t, entity.BalanceCredit, snap.OpeningBalances[0].BalanceType)

	var notifications []notify.Notification
	decodeInto(t, a.get("/api/v1/activity/notifications"), &notifications)
	require.Len(t, notifications, 1)
	assert.Equal(t, notify.SeveritySuccess, notifications[0].Severity)

	var entries []audit.Entry
	decodeInto(t, a.get("/api/v1/activity/audit?limit=5"), &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "importOpeningBalances", entries[0].Category)

	assert.Equal(t, http.StatusBadRequest, a.get("/api/v1/activity/audit?limit=-1").Code)
}

func TestRouter_Aliases(t *testing.T) {
	a := newApp(t)

	rec := a.postJSON("/api/v1/aliases", `{"fragment":"Abu Ahmed","person_type":"customer","person_id":"`+mohammed.ID.String()+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.get("/api/v1/aliases/suggest?type=customer&fragment=abu%20ahmed")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	decodeInto(t, rec, &got)
	assert.Equal(t, "Mohammed", got["name"])

	assert.Equal(t, http.StatusNotFound, a.get("/api/v1/aliases/suggest?fragment=nobody").Code)

	rec = a.postJSON("/api/v1/aliases", `{"fragment":"x","person_type":"customer","person_id":"`+uuid.NewString()+`"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	a := newApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/commands", nil)
	req.Header.Set("Origin", "http://voice.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := a.serve(req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
