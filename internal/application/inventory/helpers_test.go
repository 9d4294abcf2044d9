package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/jhoicas/lotes-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: store en memoria con un ítem y tres lotes (A, B, C) en Vault-1
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompanyID = "company-1"
	testUserID    = "user-1"
	testItemID    = "item-1"
)

var day0 = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store  *memory.Store
	uc     *appinv.IssueInventoryUseCase
	ledger *appinv.LedgerUseCase
}

func newFixture(t *testing.T, runner func(*memory.Store) appinv.TxRunner) *fixture {
	t.Helper()
	store := memory.NewStore()
	var tx appinv.TxRunner = store
	if runner != nil {
		tx = runner(store)
	}
	return &fixture{
		store: store,
		uc: appinv.NewIssueInventoryUseCase(tx, appinv.IssueConfig{
			MaxAttempts:          3,
			RequireDisposeReason: true,
		}, zerolog.Nop()),
		ledger: appinv.NewLedgerUseCase(store.Items(), store.Lots(), store.Movements()),
	}
}

func (f *fixture) item(current string) entity.Item {
	return f.store.PutItem(entity.Item{
		ID:              testItemID,
		CompanyID:       testCompanyID,
		SKU:             "SKU-1",
		Name:            "Flor seca",
		UnitOfMeasure:   "g",
		CurrentQuantity: qty(current),
		StorageLocation: "Vault-1",
		IsActive:        true,
	})
}

// seedABC A=100 (día 1), B=30 (día 2), C=50 (día 3), todos en Vault-1 con costo.
func (f *fixture) seedABC() {
	f.item("0")
	f.lot("A", "100", 1, "2")
	f.lot("B", "30", 2, "3")
	f.lot("C", "50", 3, "4")
}

func (f *fixture) lot(id, q string, receivedDay int, cost string) entity.Lot {
	c := qty(cost)
	return f.store.PutLot(entity.Lot{
		ID:                id,
		CompanyID:         testCompanyID,
		ItemID:            testItemID,
		LotCode:           id,
		QuantityReceived:  qty(q),
		QuantityRemaining: qty(q),
		UnitOfMeasure:     "g",
		StorageLocation:   "Vault-1",
		ReceivedDate:      day0.AddDate(0, 0, receivedDay),
		CostPerUnit:       &c,
		IsActive:          true,
	})
}

func (f *fixture) getLot(t *testing.T, id string) *entity.Lot {
	t.Helper()
	l, err := f.store.Lots().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, l, "lote %s debe existir", id)
	return l
}

func (f *fixture) getItem(t *testing.T) *entity.Item {
	t.Helper()
	it, err := f.store.Items().GetByID(context.Background(), testCompanyID, testItemID)
	require.NoError(t, err)
	require.NotNil(t, it)
	return it
}

func (f *fixture) movements(t *testing.T) []*entity.Movement {
	t.Helper()
	movs, err := f.store.Movements().ListByItem(context.Background(), testItemID, 1000, 0)
	require.NoError(t, err)
	return movs
}

// assertBalanced verifica la ley de conservación en todos los lotes del ítem.
func (f *fixture) assertBalanced(t *testing.T) {
	t.Helper()
	balances, err := f.ledger.VerifyItem(context.Background(), testCompanyID, testItemID)
	require.NoError(t, err)
	for _, b := range balances {
		require.True(t, b.Balanced(), "lote %s descuadrado en %s", b.LotCode, b.Discrepancy)
	}
}

func consume(q string, method inventory.AllocationMethod) appinv.IssueRequest {
	return appinv.IssueRequest{
		CompanyID:   testCompanyID,
		ItemID:      testItemID,
		Quantity:    qty(q),
		Method:      method,
		Intent:      appinv.Consume{BatchID: "batch-1"},
		PerformedBy: testUserID,
	}
}

func issueKind(t *testing.T, err error) domain.ErrorKind {
	t.Helper()
	require.Error(t, err)
	ie, ok := domain.AsIssueError(err)
	require.True(t, ok, "se esperaba IssueError, obtenido %T: %v", err, err)
	return ie.Kind
}

// ──────────────────────────────────────────────────────────────────────────────
// Runners de prueba: fallos inyectados y conflictos
// ──────────────────────────────────────────────────────────────────────────────

var errDiskFull = errors.New("disco lleno")

// failingRunner falla al crear el movimiento número failAt dentro de la transacción.
type failingRunner struct {
	inner  appinv.TxRunner
	failAt int
}

func (r *failingRunner) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
) error) error {
	return r.inner.Run(ctx, func(items repository.ItemRepository, lots repository.LotRepository, movs repository.MovementRepository) error {
		return fn(items, lots, &failingMovements{MovementRepository: movs, failAt: r.failAt})
	})
}

type failingMovements struct {
	repository.MovementRepository
	failAt int
	n      int
}

func (m *failingMovements) Create(ctx context.Context, mov *entity.Movement) error {
	m.n++
	if m.n == m.failAt {
		return errDiskFull
	}
	return m.MovementRepository.Create(ctx, mov)
}

// conflictRunner devuelve conflicto de concurrencia en las primeras `conflicts` llamadas.
type conflictRunner struct {
	inner     appinv.TxRunner
	conflicts int
	calls     int
}

func (r *conflictRunner) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
) error) error {
	r.calls++
	if r.calls <= r.conflicts {
		return domain.ConcurrencyConflict("A")
	}
	return r.inner.Run(ctx, fn)
}

// staleLots simula una escritura concurrente: el primer UpdateRemaining ve un valor distinto.
type staleLots struct {
	repository.LotRepository
	tripped *bool
}

func (l *staleLots) UpdateRemaining(ctx context.Context, lot *entity.Lot, expected decimal.Decimal) error {
	if !*l.tripped {
		*l.tripped = true
		return l.LotRepository.UpdateRemaining(ctx, lot, expected.Add(decimal.NewFromInt(1)))
	}
	return l.LotRepository.UpdateRemaining(ctx, lot, expected)
}

type staleRunner struct {
	inner   appinv.TxRunner
	tripped bool
	calls   int
}

func (r *staleRunner) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
) error) error {
	r.calls++
	return r.inner.Run(ctx, func(items repository.ItemRepository, lots repository.LotRepository, movs repository.MovementRepository) error {
		return fn(items, &staleLots{LotRepository: lots, tripped: &r.tripped}, movs)
	})
}
