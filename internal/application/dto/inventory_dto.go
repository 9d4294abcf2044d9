package dto

import (
	"time"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// LotAllocationRequest asignación explícita (lote, cantidad).
type LotAllocationRequest struct {
	LotID    string          `json:"lot_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// IssueInventoryRequest body para POST /api/inventory/issues.
// movement_type es obligatorio: no se infiere a partir de to_location/batch_id.
type IssueInventoryRequest struct {
	ItemID              string                 `json:"item_id" validate:"required"`
	Quantity            decimal.Decimal        `json:"quantity"`
	MovementType        string                 `json:"movement_type" validate:"required,oneof=consume transfer dispose adjust return reserve unreserve"`
	AllocationMethod    string                 `json:"allocation_method,omitempty" validate:"omitempty,oneof=FIFO LIFO FEFO fifo lifo fefo manual MANUAL"`
	ExplicitAllocations []LotAllocationRequest `json:"explicit_allocations,omitempty" validate:"omitempty,dive"`
	FromLocation        string                 `json:"from_location,omitempty"`
	ToLocation          string                 `json:"to_location,omitempty" validate:"required_if=MovementType transfer"`
	LotID               string                 `json:"lot_id,omitempty"`
	AdjustDirection     string                 `json:"adjust_direction,omitempty" validate:"omitempty,oneof=increase decrease"`
	BatchID             string                 `json:"batch_id,omitempty"`
	TaskID              string                 `json:"task_id,omitempty"`
	Reason              string                 `json:"reason,omitempty" validate:"max=500"`
	Notes               string                 `json:"notes,omitempty" validate:"max=2000"`
}

// AllocationDTO asignación aplicada; lot_id null en asignaciones legacy.
type AllocationDTO struct {
	LotID    *string         `json:"lot_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// IssueInventoryResponse respuesta de POST /api/inventory/issues.
type IssueInventoryResponse struct {
	TransactionID      string          `json:"transaction_id"`
	ItemID             string          `json:"item_id"`
	MovementType       string          `json:"movement_type"`
	AllocationsApplied []AllocationDTO `json:"allocations_applied"`
	MovementsCreated   []string        `json:"movements_created"`
	CreatedLotIDs      []string        `json:"created_lot_ids,omitempty"`
}

// NewAllocationDTOs convierte el plan aplicado al formato de respuesta.
func NewAllocationDTOs(allocs []inventory.Allocation) []AllocationDTO {
	out := make([]AllocationDTO, 0, len(allocs))
	for _, a := range allocs {
		d := AllocationDTO{Quantity: a.Quantity}
		if !a.IsLegacy() {
			id := a.LotID
			d.LotID = &id
		}
		out = append(out, d)
	}
	return out
}

// LotDTO representación de un lote.
type LotDTO struct {
	ID                   string           `json:"id"`
	ItemID               string           `json:"item_id"`
	ParentLotID          string           `json:"parent_lot_id,omitempty"`
	LotCode              string           `json:"lot_code"`
	QuantityReceived     decimal.Decimal  `json:"quantity_received"`
	QuantityRemaining    decimal.Decimal  `json:"quantity_remaining"`
	UnitOfMeasure        string           `json:"unit_of_measure"`
	StorageLocation      string           `json:"storage_location"`
	ReceivedDate         time.Time        `json:"received_date"`
	ExpiryDate           *time.Time       `json:"expiry_date,omitempty"`
	ManufactureDate      *time.Time       `json:"manufacture_date,omitempty"`
	SupplierID           string           `json:"supplier_id,omitempty"`
	SupplierLotNumber    string           `json:"supplier_lot_number,omitempty"`
	CostPerUnit          *decimal.Decimal `json:"cost_per_unit,omitempty"`
	CompliancePackageUID string           `json:"compliance_package_uid,omitempty"`
	IsActive             bool             `json:"is_active"`
}

// NewLotDTO mapea la entidad.
func NewLotDTO(l *entity.Lot) LotDTO {
	return LotDTO{
		ID:                   l.ID,
		ItemID:               l.ItemID,
		ParentLotID:          l.ParentLotID,
		LotCode:              l.LotCode,
		QuantityReceived:     l.QuantityReceived,
		QuantityRemaining:    l.QuantityRemaining,
		UnitOfMeasure:        l.UnitOfMeasure,
		StorageLocation:      l.StorageLocation,
		ReceivedDate:         l.ReceivedDate,
		ExpiryDate:           l.ExpiryDate,
		ManufactureDate:      l.ManufactureDate,
		SupplierID:           l.SupplierID,
		SupplierLotNumber:    l.SupplierLotNumber,
		CostPerUnit:          l.CostPerUnit,
		CompliancePackageUID: l.CompliancePackageUID,
		IsActive:             l.IsActive,
	}
}

// MovementDTO registro del libro de movimientos.
type MovementDTO struct {
	ID               string          `json:"id"`
	TransactionID    string          `json:"transaction_id"`
	ItemID           string          `json:"item_id"`
	LotID            *string         `json:"lot_id"`
	DestinationLotID string          `json:"destination_lot_id,omitempty"`
	MovementType     string          `json:"movement_type"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	FromLocation     string          `json:"from_location,omitempty"`
	ToLocation       string          `json:"to_location,omitempty"`
	BatchID          string          `json:"batch_id,omitempty"`
	TaskID           string          `json:"task_id,omitempty"`
	Reason           string          `json:"reason,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	PerformedBy      string          `json:"performed_by"`
	CreatedAt        time.Time       `json:"created_at"`
}

// NewMovementDTO mapea la entidad.
func NewMovementDTO(m *entity.Movement) MovementDTO {
	d := MovementDTO{
		ID:               m.ID,
		TransactionID:    m.TransactionID,
		ItemID:           m.ItemID,
		DestinationLotID: m.DestinationLotID,
		MovementType:     string(m.Type),
		Quantity:         m.Quantity,
		UnitCost:         m.UnitCost,
		TotalCost:        m.TotalCost,
		FromLocation:     m.FromLocation,
		ToLocation:       m.ToLocation,
		BatchID:          m.BatchID,
		TaskID:           m.TaskID,
		Reason:           m.Reason,
		Notes:            m.Notes,
		PerformedBy:      m.PerformedBy,
		CreatedAt:        m.CreatedAt,
	}
	if m.LotID != "" {
		id := m.LotID
		d.LotID = &id
	}
	return d
}

// LotBalanceDTO balance de conservación de un lote.
type LotBalanceDTO struct {
	LotID         string          `json:"lot_id"`
	LotCode       string          `json:"lot_code"`
	Received      decimal.Decimal `json:"quantity_received"`
	Remaining     decimal.Decimal `json:"quantity_remaining"`
	LedgerOutflow decimal.Decimal `json:"ledger_outflow"`
	Discrepancy   decimal.Decimal `json:"discrepancy"`
	Balanced      bool            `json:"balanced"`
}

// NewLotBalanceDTO mapea el balance calculado.
func NewLotBalanceDTO(b inventory.LotBalance) LotBalanceDTO {
	return LotBalanceDTO{
		LotID:         b.LotID,
		LotCode:       b.LotCode,
		Received:      b.Received,
		Remaining:     b.Remaining,
		LedgerOutflow: b.LedgerOutflow,
		Discrepancy:   b.Discrepancy,
		Balanced:      b.Balanced(),
	}
}
