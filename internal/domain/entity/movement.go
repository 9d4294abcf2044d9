package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del libro de inventario.
type MovementType string

// Tipos de movimiento. La cantidad siempre es magnitud positiva salvo en ajustes (ver Movement.Quantity).
const (
	MovementTypeReceive   MovementType = "receive"   // recepción de un lote nuevo
	MovementTypeConsume   MovementType = "consume"   // consumo (batch/tarea)
	MovementTypeTransfer  MovementType = "transfer"  // traslado entre ubicaciones
	MovementTypeAdjust    MovementType = "adjust"    // corrección con signo
	MovementTypeDispose   MovementType = "dispose"   // desecho
	MovementTypeReturn    MovementType = "return"    // devolución a un lote
	MovementTypeReserve   MovementType = "reserve"   // reserva sobre el ítem
	MovementTypeUnreserve MovementType = "unreserve" // liberación de reserva
)

// Valid indica si el tipo pertenece al conjunto cerrado de movimientos.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeReceive, MovementTypeConsume, MovementTypeTransfer, MovementTypeAdjust,
		MovementTypeDispose, MovementTypeReturn, MovementTypeReserve, MovementTypeUnreserve:
		return true
	}
	return false
}

// QuantityScale decimales máximos de cantidades y costos; coincide con NUMERIC(20,6) del esquema PostgreSQL.
const QuantityScale int32 = 6

// WithinScale indica si d se representa sin redondeo con QuantityScale decimales.
func WithinScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(QuantityScale))
}

// Movement registro inmutable de un cambio de cantidad contra un lote (o contra el ítem si es legacy).
// Nunca se actualiza ni se borra.
type Movement struct {
	ID               string
	TransactionID    string // agrupa los movimientos de una misma llamada
	CompanyID        string
	ItemID           string
	LotID            string // vacío para ítems legacy y reservas
	DestinationLotID string // solo transfer: lote nuevo (split) o el mismo lote (traslado completo)
	Type             MovementType
	Quantity         decimal.Decimal // magnitud positiva; en adjust negativo = disminución
	UnitCost         decimal.Decimal
	TotalCost        decimal.Decimal
	FromLocation     string
	ToLocation       string
	BatchID          string
	TaskID           string
	Reason           string
	Notes            string
	PerformedBy      string
	CreatedAt        time.Time
}

// IsLegacy indica si el movimiento se aplicó directamente sobre el agregado del ítem.
func (m *Movement) IsLegacy() bool {
	return m.LotID == ""
}

// IsRelocation indica un traslado completo en sitio (el lote cambia de ubicación sin variar cantidad).
func (m *Movement) IsRelocation() bool {
	return m.Type == MovementTypeTransfer && m.DestinationLotID != "" && m.DestinationLotID == m.LotID
}

// Outflow devuelve cuánto reduce este movimiento el quantity_remaining de su lote.
// Negativo si lo incrementa (return, ajuste positivo). Reservas y traslados en sitio no afectan.
func (m *Movement) Outflow() decimal.Decimal {
	switch m.Type {
	case MovementTypeConsume, MovementTypeDispose:
		return m.Quantity
	case MovementTypeTransfer:
		if m.IsRelocation() {
			return decimal.Zero
		}
		return m.Quantity
	case MovementTypeReturn:
		return m.Quantity.Neg()
	case MovementTypeAdjust:
		return m.Quantity.Neg()
	}
	return decimal.Zero
}
