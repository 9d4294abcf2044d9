package inventory_test

import (
	"errors"
	"testing"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitForTransfer_Completo(t *testing.T) {
	b := newLot("B", 2, "30")

	out, err := inventory.SplitForTransfer(b, qty("30"), "Vault-2", day(10))
	require.NoError(t, err)

	assert.True(t, out.Full)
	assert.Nil(t, out.NewLot, "un traslado completo no crea lote")
	assert.Equal(t, "Vault-1", out.FromLocation)
	assert.Equal(t, "Vault-2", b.StorageLocation)
	assert.True(t, b.QuantityRemaining.Equal(qty("30")))
	assert.True(t, b.IsActive)
}

func TestSplitForTransfer_Parcial(t *testing.T) {
	cost := qty("2.5")
	c := newLot("C", 3, "50", expiresOn(40))
	c.CostPerUnit = &cost
	c.SupplierID = "sup-1"
	c.CompliancePackageUID = "1A4FF0100000022000000001"

	out, err := inventory.SplitForTransfer(c, qty("10"), "Vault-2", day(10))
	require.NoError(t, err)
	require.NotNil(t, out.NewLot)

	assert.False(t, out.Full)
	assert.True(t, c.QuantityRemaining.Equal(qty("40")))
	assert.Equal(t, "Vault-1", c.StorageLocation, "el origen se queda donde estaba")

	n := out.NewLot
	assert.Equal(t, "C-SPLIT", n.LotCode)
	assert.Equal(t, "C", n.ParentLotID)
	assert.Equal(t, "Vault-2", n.StorageLocation)
	assert.True(t, n.QuantityReceived.Equal(qty("10")))
	assert.True(t, n.QuantityRemaining.Equal(qty("10")))
	assert.True(t, n.IsActive)
	assert.True(t, n.ReceivedDate.Equal(c.ReceivedDate), "conserva la fecha de recepción para FIFO")
	require.NotNil(t, n.ExpiryDate)
	assert.True(t, n.ExpiryDate.Equal(*c.ExpiryDate))
	assert.NotSame(t, c.ExpiryDate, n.ExpiryDate, "las fechas se copian, no se comparten")
	require.NotNil(t, n.CostPerUnit)
	assert.True(t, n.CostPerUnit.Equal(cost))
	assert.Equal(t, "sup-1", n.SupplierID)
	assert.Equal(t, c.CompliancePackageUID, n.CompliancePackageUID)

	assert.True(t, c.QuantityRemaining.Add(n.QuantityReceived).Equal(out.PreviousRemaining),
		"origen + nuevo = cantidad previa")
}

func TestSplitForTransfer_Rechazos(t *testing.T) {
	t.Run("excede el lote", func(t *testing.T) {
		l := newLot("A", 1, "5")
		_, err := inventory.SplitForTransfer(l, qty("6"), "Vault-2", day(1))
		ie, ok := domain.AsIssueError(err)
		require.True(t, ok)
		assert.Equal(t, domain.KindInsufficientLotQuantity, ie.Kind)
		assert.Equal(t, "A", ie.LotID)
		assert.True(t, l.QuantityRemaining.Equal(qty("5")), "no muta el origen si falla")
	})
	t.Run("mismo destino", func(t *testing.T) {
		_, err := inventory.SplitForTransfer(newLot("A", 1, "5"), qty("1"), "Vault-1", day(1))
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
	t.Run("sin destino", func(t *testing.T) {
		_, err := inventory.SplitForTransfer(newLot("A", 1, "5"), qty("1"), "", day(1))
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
	t.Run("lote inactivo", func(t *testing.T) {
		l := newLot("A", 1, "0")
		l.IsActive = false
		_, err := inventory.SplitForTransfer(l, qty("1"), "Vault-2", day(1))
		assert.True(t, errors.Is(err, domain.ErrInsufficientLotQuantity))
	})
}
