package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/lotes-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// App de inventario sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

func buildInventoryApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.PutItem(entity.Item{ID: "item-1", CompanyID: testCompanyID, StorageLocation: "Vault-1", IsActive: true})
	received := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, l := range []struct{ id, q string }{{"A", "100"}, {"B", "30"}} {
		store.PutLot(entity.Lot{
			ID: l.id, CompanyID: testCompanyID, ItemID: "item-1", LotCode: l.id,
			QuantityReceived: decimal.RequireFromString(l.q), QuantityRemaining: decimal.RequireFromString(l.q),
			StorageLocation: "Vault-1", ReceivedDate: received.AddDate(0, 0, i), IsActive: true,
		})
	}

	issue := inventory.NewIssueInventoryUseCase(store, inventory.IssueConfig{MaxAttempts: 3, RequireDisposeReason: true}, zerolog.Nop())
	ledger := inventory.NewLedgerUseCase(store.Items(), store.Lots(), store.Movements())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		IssueUC:      issue,
		LedgerUC:     ledger,
		JWTSecret:    testJWTSecret,
		IssueTimeout: 5 * time.Second,
		ServiceName:  "lotes-api-test",
	})
	return app, store
}

func send(t *testing.T, app *fiber.App, method, path, role, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// ──────────────────────────────────────────────────────────────────────────────
// POST /api/inventory/issues
// ──────────────────────────────────────────────────────────────────────────────

func TestIssueHandler_ConsumoFIFO(t *testing.T) {
	app, _ := buildInventoryApp(t)

	status, body := send(t, app, http.MethodPost, "/api/inventory/issues", apphttp.RoleBodeguero,
		`{"item_id":"item-1","quantity":"120","movement_type":"consume","allocation_method":"FIFO","batch_id":"b-1"}`)
	require.Equal(t, http.StatusCreated, status, body)

	allocs := body["allocations_applied"].([]any)
	require.Len(t, allocs, 2)
	assert.Equal(t, "A", allocs[0].(map[string]any)["lot_id"])
	assert.Equal(t, "B", allocs[1].(map[string]any)["lot_id"])
	assert.Len(t, body["movements_created"], 2)
	assert.NotEmpty(t, body["transaction_id"])
}

func TestIssueHandler_StockInsuficiente409(t *testing.T) {
	app, _ := buildInventoryApp(t)

	status, body := send(t, app, http.MethodPost, "/api/inventory/issues", apphttp.RoleAdmin,
		`{"item_id":"item-1","quantity":131,"movement_type":"consume","allocation_method":"FIFO"}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.Equal(t, "1", body["shortfall"])
	assert.Equal(t, "planning", body["stage"])
}

func TestIssueHandler_Validacion400(t *testing.T) {
	app, _ := buildInventoryApp(t)

	cases := map[string]string{
		"sin movement_type":    `{"item_id":"item-1","quantity":"1"}`,
		"tipo receive":         `{"item_id":"item-1","quantity":"1","movement_type":"receive"}`,
		"traslado sin destino": `{"item_id":"item-1","quantity":"1","movement_type":"transfer","allocation_method":"FIFO"}`,
		"cantidad cero":        `{"item_id":"item-1","quantity":"0","movement_type":"consume","allocation_method":"FIFO"}`,
		"json roto":            `{"item_id":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			status, _ := send(t, app, http.MethodPost, "/api/inventory/issues", apphttp.RoleAdmin, body)
			assert.Equal(t, http.StatusBadRequest, status)
		})
	}
}

func TestIssueHandler_ItemInexistente404(t *testing.T) {
	app, _ := buildInventoryApp(t)

	status, body := send(t, app, http.MethodPost, "/api/inventory/issues", apphttp.RoleAdmin,
		`{"item_id":"item-x","quantity":"1","movement_type":"consume","allocation_method":"FIFO"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ITEM_NOT_FOUND", body["code"])
}

func TestIssueHandler_TrasladoParcialDevuelveLoteNuevo(t *testing.T) {
	app, store := buildInventoryApp(t)

	status, body := send(t, app, http.MethodPost, "/api/inventory/issues", apphttp.RoleBodeguero,
		`{"item_id":"item-1","quantity":"10","movement_type":"transfer","to_location":"Vault-2",
		  "explicit_allocations":[{"lot_id":"B","quantity":"10"}]}`)
	require.Equal(t, http.StatusCreated, status, body)
	created := body["created_lot_ids"].([]any)
	require.Len(t, created, 1)

	lots, err := store.Lots().ListByItem(t.Context(), "item-1")
	require.NoError(t, err)
	assert.Len(t, lots, 3)
}

func TestIssueHandler_AuditorNoEmite(t *testing.T) {
	app, _ := buildInventoryApp(t)

	status, _ := send(t, app, http.MethodPost, "/api/inventory/issues", apphttp.RoleAuditor,
		`{"item_id":"item-1","quantity":"1","movement_type":"consume","allocation_method":"FIFO"}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = send(t, app, http.MethodPost, "/api/inventory/issues", "",
		`{"item_id":"item-1","quantity":"1","movement_type":"consume","allocation_method":"FIFO"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestLedgerHandlers_AuditorConsulta(t *testing.T) {
	app, _ := buildInventoryApp(t)
	for i := 0; i < 3; i++ {
		status, body := send(t, app, http.MethodPost, "/api/inventory/issues", apphttp.RoleAdmin,
			`{"item_id":"item-1","quantity":"5","movement_type":"consume","allocation_method":"FIFO"}`)
		require.Equal(t, http.StatusCreated, status, body)
	}

	status, body := send(t, app, http.MethodGet, "/api/inventory/items/item-1/movements?limit=2", apphttp.RoleAuditor, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 2)
	page := body["page"].(map[string]any)
	assert.EqualValues(t, 2, page["limit"])

	status, _ = send(t, app, http.MethodGet, "/api/inventory/items/item-1/movements?limit=500", apphttp.RoleAuditor, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = send(t, app, http.MethodGet, "/api/inventory/items/item-1/balance", apphttp.RoleAuditor, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["balanced"])
	assert.Len(t, body["lots"], 2)

	status, _ = send(t, app, http.MethodGet, "/api/inventory/items/item-x/lots", apphttp.RoleAuditor, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestLedgerHandlers_ListaLotes(t *testing.T) {
	app, _ := buildInventoryApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/inventory/items/item-1/lots", nil)
	req.Header.Set("Authorization", tokenForRole(t, apphttp.RoleBodeguero))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var lots []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lots))
	require.Len(t, lots, 2)
	assert.Equal(t, "A", lots[0]["lot_code"])
	assert.Equal(t, "100", lots[0]["quantity_remaining"])
}
