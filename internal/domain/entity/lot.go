package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot porción física, fechable y ubicable del stock de un ítem.
// Invariantes: 0 <= QuantityRemaining <= QuantityReceived; IsActive sii QuantityRemaining > 0.
// Un lote consumido se conserva con cantidad cero e inactivo (auditoría).
type Lot struct {
	ID                   string
	CompanyID            string
	ItemID               string
	ParentLotID          string // lote origen cuando nace de un split
	LotCode              string // no es único: los splits agregan sufijo
	QuantityReceived     decimal.Decimal
	QuantityRemaining    decimal.Decimal
	UnitOfMeasure        string
	StorageLocation      string
	ReceivedDate         time.Time
	ExpiryDate           *time.Time
	ManufactureDate      *time.Time
	SupplierID           string
	SupplierLotNumber    string
	CostPerUnit          *decimal.Decimal
	CompliancePackageUID string
	IsActive             bool
	Sequence             int64 // orden de creación, desempate determinístico
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Available indica si el lote puede participar en una asignación.
func (l *Lot) Available() bool {
	return l.IsActive && l.QuantityRemaining.GreaterThan(decimal.Zero)
}

// UnitCost devuelve el costo unitario o cero si el lote no lo tiene.
func (l *Lot) UnitCost() decimal.Decimal {
	if l.CostPerUnit == nil {
		return decimal.Zero
	}
	return *l.CostPerUnit
}

// SyncActive recalcula IsActive a partir de la cantidad restante.
func (l *Lot) SyncActive() {
	l.IsActive = l.QuantityRemaining.GreaterThan(decimal.Zero)
}
