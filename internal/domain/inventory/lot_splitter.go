package inventory

import (
	"time"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SplitSuffix marca agregada al lot_code de un lote derivado.
const SplitSuffix = "-SPLIT"

// SplitOutcome resultado de aplicar un traslado sobre un lote.
// Full: el lote se reubica en sitio y NewLot es nil.
// Parcial: Source queda con la cantidad reducida en su ubicación y NewLot nace en destino (sin ID asignado aún).
type SplitOutcome struct {
	Source            *entity.Lot
	NewLot            *entity.Lot
	FromLocation      string
	PreviousRemaining decimal.Decimal
	Full              bool
}

// SplitForTransfer decide entre traslado completo o parcial y muta source en memoria.
// Conserva: source.QuantityRemaining(después) + NewLot.QuantityReceived == source.QuantityRemaining(antes).
func SplitForTransfer(source *entity.Lot, quantity decimal.Decimal, destination string, now time.Time) (SplitOutcome, error) {
	if source == nil {
		return SplitOutcome{}, domain.Validation("lote origen requerido")
	}
	if destination == "" {
		return SplitOutcome{}, domain.Validation("ubicación destino requerida")
	}
	if !quantity.GreaterThan(decimal.Zero) {
		return SplitOutcome{}, domain.Validation("la cantidad debe ser mayor que cero")
	}
	if source.StorageLocation == destination {
		return SplitOutcome{}, domain.Validation("el lote %s ya está en %s", source.ID, destination)
	}
	if !source.Available() || source.QuantityRemaining.LessThan(quantity) {
		return SplitOutcome{}, domain.InsufficientLotQuantity(source.ID, quantity.Sub(source.QuantityRemaining))
	}

	out := SplitOutcome{
		Source:            source,
		FromLocation:      source.StorageLocation,
		PreviousRemaining: source.QuantityRemaining,
	}

	if quantity.Equal(source.QuantityRemaining) {
		source.StorageLocation = destination
		source.UpdatedAt = now
		out.Full = true
		return out, nil
	}

	source.QuantityRemaining = source.QuantityRemaining.Sub(quantity)
	source.SyncActive()
	source.UpdatedAt = now

	out.NewLot = &entity.Lot{
		CompanyID:            source.CompanyID,
		ItemID:               source.ItemID,
		ParentLotID:          source.ID,
		LotCode:              source.LotCode + SplitSuffix,
		QuantityReceived:     quantity,
		QuantityRemaining:    quantity,
		UnitOfMeasure:        source.UnitOfMeasure,
		StorageLocation:      destination,
		ReceivedDate:         source.ReceivedDate,
		ExpiryDate:           copyTime(source.ExpiryDate),
		ManufactureDate:      copyTime(source.ManufactureDate),
		SupplierID:           source.SupplierID,
		SupplierLotNumber:    source.SupplierLotNumber,
		CostPerUnit:          copyDecimal(source.CostPerUnit),
		CompliancePackageUID: source.CompliancePackageUID,
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	return out, nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
