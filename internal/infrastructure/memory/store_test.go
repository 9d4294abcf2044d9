package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/jhoicas/lotes-api/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seeded() *memory.Store {
	s := memory.NewStore()
	s.PutItem(entity.Item{ID: "item-1", CompanyID: "company-1", IsActive: true})
	s.PutLot(entity.Lot{ID: "A", ItemID: "item-1", QuantityReceived: d("10"), QuantityRemaining: d("10"), IsActive: true})
	s.PutLot(entity.Lot{ID: "B", ItemID: "item-1", QuantityReceived: d("5"), QuantityRemaining: d("5"), IsActive: true})
	return s
}

func TestStore_RunDescartaCambiosAnteError(t *testing.T) {
	s := seeded()
	boom := errors.New("boom")

	err := s.Run(context.Background(), func(items repository.ItemRepository, lots repository.LotRepository, movs repository.MovementRepository) error {
		lot, _ := lots.GetByID(context.Background(), "A")
		lot.QuantityRemaining = d("1")
		require.NoError(t, lots.UpdateRemaining(context.Background(), lot, d("10")))
		require.NoError(t, movs.Create(context.Background(), &entity.Movement{ItemID: "item-1", LotID: "A"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	lot, err := s.Lots().GetByID(context.Background(), "A")
	require.NoError(t, err)
	assert.True(t, lot.QuantityRemaining.Equal(d("10")))
	movs, _ := s.Movements().ListByItem(context.Background(), "item-1", 10, 0)
	assert.Empty(t, movs)
}

func TestStore_RunConfirma(t *testing.T) {
	s := seeded()
	err := s.Run(context.Background(), func(_ repository.ItemRepository, _ repository.LotRepository, movs repository.MovementRepository) error {
		return movs.Create(context.Background(), &entity.Movement{ItemID: "item-1", LotID: "A"})
	})
	require.NoError(t, err)
	movs, _ := s.Movements().ListByLot(context.Background(), "A")
	require.Len(t, movs, 1)
	assert.NotEmpty(t, movs[0].ID)
}

func TestStore_RunContextoCancelado(t *testing.T) {
	s := seeded()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := s.Run(ctx, func(repository.ItemRepository, repository.LotRepository, repository.MovementRepository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestLotRepo_UpdateRemainingConflicto(t *testing.T) {
	s := seeded()
	lot, _ := s.Lots().GetByID(context.Background(), "B")
	lot.QuantityRemaining = d("0")
	lot.SyncActive()

	err := s.Lots().UpdateRemaining(context.Background(), lot, d("4"))
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	require.NoError(t, s.Lots().UpdateRemaining(context.Background(), lot, d("5")))
	active, _ := s.Lots().ListActiveByItem(context.Background(), "item-1", "")
	require.Len(t, active, 1)
	assert.Equal(t, "A", active[0].ID)
	n, _ := s.Lots().CountByItem(context.Background(), "item-1")
	assert.Equal(t, 2, n, "los lotes agotados se conservan")
}

func TestItemRepo_AislaEmpresas(t *testing.T) {
	s := seeded()
	it, err := s.Items().GetByID(context.Background(), "company-2", "item-1")
	require.NoError(t, err)
	assert.Nil(t, it)

	err = s.Items().UpdateQuantities(context.Background(), &entity.Item{ID: "nope"})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}
