package inventory

import (
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// Intent intención de movimiento declarada por el caller. Conjunto cerrado: solo los tipos de este archivo.
type Intent interface {
	MovementType() entity.MovementType
	isIntent()
}

// Consume consumo contra un batch o tarea.
type Consume struct {
	BatchID string
	TaskID  string
}

// Transfer traslado hacia ToLocation (obligatorio).
type Transfer struct {
	ToLocation string
}

// Dispose desecho; el motivo se exige según configuración.
type Dispose struct{}

// AdjustDirection sentido de un ajuste.
type AdjustDirection string

const (
	AdjustIncrease AdjustDirection = "increase"
	AdjustDecrease AdjustDirection = "decrease"
)

// Adjust corrección con signo sobre un lote (o sobre el ítem legacy si LotID está vacío).
type Adjust struct {
	LotID     string
	Direction AdjustDirection
}

// Return devolución a un lote (o al ítem legacy si LotID está vacío).
type Return struct {
	LotID string
}

// Reserve reserva cantidad sobre el ítem sin tocar lotes.
type Reserve struct{}

// Unreserve libera una reserva previa.
type Unreserve struct{}

func (Consume) MovementType() entity.MovementType   { return entity.MovementTypeConsume }
func (Transfer) MovementType() entity.MovementType  { return entity.MovementTypeTransfer }
func (Dispose) MovementType() entity.MovementType   { return entity.MovementTypeDispose }
func (Adjust) MovementType() entity.MovementType    { return entity.MovementTypeAdjust }
func (Return) MovementType() entity.MovementType    { return entity.MovementTypeReturn }
func (Reserve) MovementType() entity.MovementType   { return entity.MovementTypeReserve }
func (Unreserve) MovementType() entity.MovementType { return entity.MovementTypeUnreserve }

func (Consume) isIntent()   {}
func (Transfer) isIntent()  {}
func (Dispose) isIntent()   {}
func (Adjust) isIntent()    {}
func (Return) isIntent()    {}
func (Reserve) isIntent()   {}
func (Unreserve) isIntent() {}

// IssueRequest entrada de IssueInventory.
// Method y ExplicitAllocations solo aplican a Consume, Transfer y Dispose.
type IssueRequest struct {
	CompanyID           string
	ItemID              string
	Quantity            decimal.Decimal
	Method              inventory.AllocationMethod
	ExplicitAllocations []inventory.Allocation
	FromLocation        string
	Intent              Intent
	Reason              string
	Notes               string
	PerformedBy         string
}

// IssueResult confirmación de lo aplicado en una llamada.
type IssueResult struct {
	TransactionID      string
	ItemID             string
	MovementType       entity.MovementType
	AllocationsApplied []inventory.Allocation
	MovementsCreated   []string
	Movements          []*entity.Movement
	CreatedLotIDs      []string
}

// usesPlanner indica si la intención pasa por el Allocation Planner.
func usesPlanner(intent Intent) bool {
	switch intent.(type) {
	case Consume, Transfer, Dispose:
		return true
	}
	return false
}
