package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item definición de un producto en stock.
// CurrentQuantity solo es autoritativo para ítems legacy (sin lotes); ReservedQuantity aplica a ambos.
type Item struct {
	ID               string
	CompanyID        string
	SKU              string
	Name             string
	UnitOfMeasure    string
	CurrentQuantity  decimal.Decimal
	ReservedQuantity decimal.Decimal
	StorageLocation  string // solo legacy
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
