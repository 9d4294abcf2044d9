package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
)

func TestLedger_ListaMovimientosRecientesPrimero(t *testing.T) {
	f := newFixture(t, nil)
	f.seedABC()
	ctx := context.Background()

	first, err := f.uc.IssueInventory(ctx, consume("120", inventory.MethodFIFO))
	require.NoError(t, err)
	second, err := f.uc.IssueInventory(ctx, consume("5", inventory.MethodFIFO))
	require.NoError(t, err)

	page, err := f.ledger.ListMovements(ctx, testCompanyID, testItemID, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, second.MovementsCreated[0], page[0].ID)
	assert.Equal(t, first.MovementsCreated[1], page[1].ID)

	rest, err := f.ledger.ListMovements(ctx, testCompanyID, testItemID, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, first.MovementsCreated[0], rest[0].ID)
}

func TestLedger_ItemDeOtraEmpresa(t *testing.T) {
	f := newFixture(t, nil)
	f.seedABC()
	ctx := context.Background()

	_, err := f.ledger.ListLots(ctx, "company-2", testItemID)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	_, err = f.ledger.ListMovements(ctx, "company-2", testItemID, 10, 0)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	_, err = f.ledger.VerifyItem(ctx, "company-2", testItemID)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestLedger_VerifyItem_IncluyeSplitsYAgotados(t *testing.T) {
	f := newFixture(t, nil)
	f.seedABC()
	ctx := context.Background()

	_, err := f.uc.IssueInventory(ctx, consume("100", inventory.MethodFIFO))
	require.NoError(t, err)
	_, err = f.uc.IssueInventory(ctx, appinv.IssueRequest{
		CompanyID:   testCompanyID,
		ItemID:      testItemID,
		Quantity:    qty("10"),
		Method:      inventory.MethodLIFO,
		Intent:      appinv.Transfer{ToLocation: "Vault-2"},
		PerformedBy: testUserID,
	})
	require.NoError(t, err)

	balances, err := f.ledger.VerifyItem(ctx, testCompanyID, testItemID)
	require.NoError(t, err)
	assert.Len(t, balances, 4, "A agotado, B, C y el split de C")
	for _, b := range balances {
		assert.True(t, b.Balanced(), b.LotCode)
	}
	assert.True(t, balances[0].LedgerOutflow.Equal(qty("100")))
}
