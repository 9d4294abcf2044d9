package inventory

import (
	"sort"
	"strings"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AllocationMethod estrategia de selección de lotes.
type AllocationMethod string

const (
	MethodFIFO   AllocationMethod = "FIFO"   // recibido más antiguo primero
	MethodLIFO   AllocationMethod = "LIFO"   // recibido más reciente primero
	MethodFEFO   AllocationMethod = "FEFO"   // vence primero, sale primero
	MethodManual AllocationMethod = "manual" // el caller indica los lotes
)

// ParseAllocationMethod normaliza el método recibido (no distingue mayúsculas).
func ParseAllocationMethod(s string) (AllocationMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FIFO":
		return MethodFIFO, nil
	case "LIFO":
		return MethodLIFO, nil
	case "FEFO":
		return MethodFEFO, nil
	case "MANUAL":
		return MethodManual, nil
	}
	return "", domain.Validation("método de asignación desconocido %q", s)
}

// Allocation par (lote, cantidad). LotID vacío = asignación legacy contra el agregado del ítem.
type Allocation struct {
	LotID    string
	Quantity decimal.Decimal
}

// IsLegacy indica si la asignación va contra el ítem y no contra un lote.
func (a Allocation) IsLegacy() bool { return a.LotID == "" }

// Plan resultado ordenado de la planificación; la suma es exactamente la cantidad solicitada.
type Plan struct {
	ItemID      string
	Method      AllocationMethod
	Allocations []Allocation
}

// Legacy indica si el plan es el marcador único contra el agregado del ítem.
func (p Plan) Legacy() bool {
	return len(p.Allocations) == 1 && p.Allocations[0].IsLegacy()
}

// Total suma de las cantidades del plan.
func (p Plan) Total() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.Quantity)
	}
	return total
}

// PlanRequest parámetros de planificación.
type PlanRequest struct {
	ItemID          string
	Quantity        decimal.Decimal
	Method          AllocationMethod
	Location        string // restringe candidatos a una ubicación
	ExcludeLocation string // traslados: no mover lo que ya está en destino
}

// StockSnapshot estado leído dentro de la transacción.
type StockSnapshot struct {
	Lots           []*entity.Lot // lotes activos del ítem
	HasLots        bool          // el ítem tiene al menos un lote, activo o no
	LegacyQuantity decimal.Decimal
	LegacyLocation string
}

// PlanAutomatic ordena los candidatos según el método y consume de forma voraz.
// Sin efectos secundarios.
func PlanAutomatic(req PlanRequest, stock StockSnapshot) (Plan, error) {
	if !req.Quantity.GreaterThan(decimal.Zero) {
		return Plan{}, domain.Validation("la cantidad debe ser mayor que cero")
	}
	if req.Method == MethodManual {
		return Plan{}, domain.Validation("el método manual requiere asignaciones explícitas")
	}

	candidates := filterCandidates(req, stock.Lots)
	if err := sortCandidates(req.Method, candidates); err != nil {
		return Plan{}, err
	}

	plan := Plan{ItemID: req.ItemID, Method: req.Method}
	pending := req.Quantity
	for _, lot := range candidates {
		if !pending.GreaterThan(decimal.Zero) {
			break
		}
		take := decimal.Min(pending, lot.QuantityRemaining)
		plan.Allocations = append(plan.Allocations, Allocation{LotID: lot.ID, Quantity: take})
		pending = pending.Sub(take)
	}
	if !pending.GreaterThan(decimal.Zero) {
		return plan, nil
	}

	// Un ítem con lotes nunca cae al agregado legacy, aunque estén todos inactivos.
	if stock.HasLots {
		return Plan{}, domain.InsufficientStock(req.ItemID, pending)
	}
	legacyAvailable := stock.LegacyQuantity
	if req.Location != "" && req.Location != stock.LegacyLocation {
		legacyAvailable = decimal.Zero
	}
	if legacyAvailable.LessThan(req.Quantity) {
		return Plan{}, domain.InsufficientStock(req.ItemID, req.Quantity.Sub(legacyAvailable))
	}
	return Plan{
		ItemID:      req.ItemID,
		Method:      req.Method,
		Allocations: []Allocation{{Quantity: req.Quantity}},
	}, nil
}

// PlanExplicit valida las asignaciones indicadas por el caller; no hay planificación automática.
// lots contiene los lotes referenciados indexados por ID (los ausentes no existen).
func PlanExplicit(req PlanRequest, entries []Allocation, lots map[string]*entity.Lot) (Plan, error) {
	if len(entries) == 0 {
		return Plan{}, domain.Validation("sin asignaciones explícitas")
	}
	seen := make(map[string]struct{}, len(entries))
	total := decimal.Zero
	for _, e := range entries {
		if e.LotID == "" {
			return Plan{}, domain.Validation("asignación explícita sin lot_id")
		}
		if !e.Quantity.GreaterThan(decimal.Zero) {
			return Plan{}, domain.Validation("la cantidad del lote %s debe ser mayor que cero", e.LotID)
		}
		if !entity.WithinScale(e.Quantity) {
			return Plan{}, domain.Validation("la cantidad del lote %s admite a lo sumo %d decimales", e.LotID, entity.QuantityScale)
		}
		if _, dup := seen[e.LotID]; dup {
			return Plan{}, domain.Validation("lote %s repetido en las asignaciones", e.LotID)
		}
		seen[e.LotID] = struct{}{}

		lot, ok := lots[e.LotID]
		if !ok || lot == nil || lot.ItemID != req.ItemID {
			return Plan{}, domain.LotNotFound(req.ItemID, e.LotID)
		}
		if req.ExcludeLocation != "" && lot.StorageLocation == req.ExcludeLocation {
			return Plan{}, domain.Validation("el lote %s ya está en %s", lot.ID, req.ExcludeLocation)
		}
		available := decimal.Zero
		if lot.Available() {
			available = lot.QuantityRemaining
		}
		if available.LessThan(e.Quantity) {
			return Plan{}, domain.InsufficientLotQuantity(lot.ID, e.Quantity.Sub(available))
		}
		total = total.Add(e.Quantity)
	}
	if !total.Equal(req.Quantity) {
		return Plan{}, domain.Validation("las asignaciones suman %s y se solicitaron %s", total, req.Quantity)
	}
	method := req.Method
	if method == "" {
		method = MethodManual
	}
	plan := Plan{ItemID: req.ItemID, Method: method, Allocations: make([]Allocation, len(entries))}
	copy(plan.Allocations, entries)
	return plan, nil
}

func filterCandidates(req PlanRequest, lots []*entity.Lot) []*entity.Lot {
	out := make([]*entity.Lot, 0, len(lots))
	for _, lot := range lots {
		if lot == nil || lot.ItemID != req.ItemID || !lot.Available() {
			continue
		}
		if req.Location != "" && lot.StorageLocation != req.Location {
			continue
		}
		if req.ExcludeLocation != "" && lot.StorageLocation == req.ExcludeLocation {
			continue
		}
		// FEFO necesita una fecha de vencimiento para razonar.
		if req.Method == MethodFEFO && lot.ExpiryDate == nil {
			continue
		}
		out = append(out, lot)
	}
	return out
}

// sortCandidates aplica la clave del método; los empates se resuelven por orden de creación.
func sortCandidates(method AllocationMethod, lots []*entity.Lot) error {
	var less func(a, b *entity.Lot) bool
	switch method {
	case MethodFIFO:
		less = func(a, b *entity.Lot) bool {
			if !a.ReceivedDate.Equal(b.ReceivedDate) {
				return a.ReceivedDate.Before(b.ReceivedDate)
			}
			return a.Sequence < b.Sequence
		}
	case MethodLIFO:
		less = func(a, b *entity.Lot) bool {
			if !a.ReceivedDate.Equal(b.ReceivedDate) {
				return a.ReceivedDate.After(b.ReceivedDate)
			}
			return a.Sequence > b.Sequence
		}
	case MethodFEFO:
		less = func(a, b *entity.Lot) bool {
			if !a.ExpiryDate.Equal(*b.ExpiryDate) {
				return a.ExpiryDate.Before(*b.ExpiryDate)
			}
			return a.Sequence < b.Sequence
		}
	default:
		return domain.Validation("método de asignación desconocido %q", method)
	}
	sort.SliceStable(lots, func(i, j int) bool { return less(lots[i], lots[j]) })
	return nil
}
