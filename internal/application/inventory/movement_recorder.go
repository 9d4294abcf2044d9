package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// txRepos repositorios atados a la transacción en curso.
type txRepos struct {
	items repository.ItemRepository
	lots  repository.LotRepository
	movs  repository.MovementRepository
}

// recordInput metadatos comunes a todos los movimientos de una llamada.
type recordInput struct {
	TransactionID string
	CompanyID     string
	PerformedBy   string
	Reason        string
	Notes         string
	BatchID       string
	TaskID        string
	Now           time.Time
}

// MovementRecorder aplica las mutaciones de lotes/ítem y agrega los movimientos al libro.
// Debe ejecutarse dentro de TxRunner.Run: cualquier error aborta la transacción completa.
type MovementRecorder struct{}

// NewMovementRecorder construye el recorder.
func NewMovementRecorder() *MovementRecorder {
	return &MovementRecorder{}
}

func (r *MovementRecorder) newMovement(in recordInput, item *entity.Item, t entity.MovementType, qty decimal.Decimal) *entity.Movement {
	return &entity.Movement{
		TransactionID: in.TransactionID,
		CompanyID:     in.CompanyID,
		ItemID:        item.ID,
		Type:          t,
		Quantity:      qty,
		UnitCost:      decimal.Zero,
		TotalCost:     decimal.Zero,
		BatchID:       in.BatchID,
		TaskID:        in.TaskID,
		Reason:        in.Reason,
		Notes:         in.Notes,
		PerformedBy:   in.PerformedBy,
		CreatedAt:     in.Now,
	}
}

func withLotCost(m *entity.Movement, lot *entity.Lot) {
	m.LotID = lot.ID
	m.UnitCost = lot.UnitCost()
	m.TotalCost = m.Quantity.Abs().Mul(m.UnitCost).Round(entity.QuantityScale)
}

// loadLot obtiene un lote del ítem o devuelve LotNotFound.
func loadLot(ctx context.Context, repos txRepos, item *entity.Item, lotID string) (*entity.Lot, error) {
	lot, err := repos.lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil || lot.ItemID != item.ID {
		return nil, domain.LotNotFound(item.ID, lotID)
	}
	return lot, nil
}

// RecordOutbound aplica consume/dispose: decrementa cada lote del plan (o el agregado legacy).
func (r *MovementRecorder) RecordOutbound(
	ctx context.Context,
	repos txRepos,
	item *entity.Item,
	plan inventory.Plan,
	t entity.MovementType,
	in recordInput,
) ([]*entity.Movement, error) {
	movements := make([]*entity.Movement, 0, len(plan.Allocations))
	legacyChanged := false
	for _, a := range plan.Allocations {
		mov := r.newMovement(in, item, t, a.Quantity)
		if a.IsLegacy() {
			if item.CurrentQuantity.LessThan(a.Quantity) {
				return nil, domain.InsufficientStock(item.ID, a.Quantity.Sub(item.CurrentQuantity))
			}
			mov.FromLocation = item.StorageLocation
			item.CurrentQuantity = item.CurrentQuantity.Sub(a.Quantity)
			item.UpdatedAt = in.Now
			legacyChanged = true
		} else {
			lot, err := loadLot(ctx, repos, item, a.LotID)
			if err != nil {
				return nil, err
			}
			if err := r.decrementLot(ctx, repos, lot, a.Quantity, in.Now); err != nil {
				return nil, err
			}
			withLotCost(mov, lot)
			mov.FromLocation = lot.StorageLocation
		}
		if err := repos.movs.Create(ctx, mov); err != nil {
			return nil, err
		}
		movements = append(movements, mov)
	}
	if err := r.guardReservation(ctx, repos, item); err != nil {
		return nil, err
	}
	if legacyChanged {
		if err := repos.items.UpdateQuantities(ctx, item); err != nil {
			return nil, err
		}
	}
	return movements, nil
}

// decrementLot resta qty del lote; lo desactiva al llegar a cero.
func (r *MovementRecorder) decrementLot(ctx context.Context, repos txRepos, lot *entity.Lot, qty decimal.Decimal, now time.Time) error {
	expected := lot.QuantityRemaining
	if !lot.Available() || lot.QuantityRemaining.LessThan(qty) {
		return domain.InsufficientLotQuantity(lot.ID, qty.Sub(lot.QuantityRemaining))
	}
	lot.QuantityRemaining = lot.QuantityRemaining.Sub(qty)
	lot.SyncActive()
	lot.UpdatedAt = now
	return repos.lots.UpdateRemaining(ctx, lot, expected)
}

// RecordTransfer delega cada asignación al Lot Splitter y registra un movimiento por asignación.
// Devuelve también los IDs de lotes creados por split.
func (r *MovementRecorder) RecordTransfer(
	ctx context.Context,
	repos txRepos,
	item *entity.Item,
	plan inventory.Plan,
	destination string,
	in recordInput,
) ([]*entity.Movement, []string, error) {
	movements := make([]*entity.Movement, 0, len(plan.Allocations))
	var created []string
	for _, a := range plan.Allocations {
		mov := r.newMovement(in, item, entity.MovementTypeTransfer, a.Quantity)
		mov.ToLocation = destination

		if a.IsLegacy() {
			// Un agregado legacy no se puede partir: solo se reubica completo.
			if !a.Quantity.Equal(item.CurrentQuantity) {
				return nil, nil, stageError(domain.Validation(
					"el ítem legacy %s solo se traslada completo (%s)", item.ID, item.CurrentQuantity), StageSplitting)
			}
			if item.StorageLocation == destination {
				return nil, nil, stageError(domain.Validation("el ítem %s ya está en %s", item.ID, destination), StageSplitting)
			}
			mov.FromLocation = item.StorageLocation
			item.StorageLocation = destination
			item.UpdatedAt = in.Now
			if err := repos.items.UpdateQuantities(ctx, item); err != nil {
				return nil, nil, err
			}
		} else {
			lot, err := loadLot(ctx, repos, item, a.LotID)
			if err != nil {
				return nil, nil, err
			}
			expected := lot.QuantityRemaining
			outcome, err := inventory.SplitForTransfer(lot, a.Quantity, destination, in.Now)
			if err != nil {
				return nil, nil, stageError(err, StageSplitting)
			}
			if err := repos.lots.UpdateRemaining(ctx, lot, expected); err != nil {
				return nil, nil, err
			}
			if outcome.Full {
				if err := repos.lots.UpdateLocation(ctx, lot.ID, destination); err != nil {
					return nil, nil, err
				}
				mov.DestinationLotID = lot.ID
			} else {
				if err := repos.lots.Create(ctx, outcome.NewLot); err != nil {
					return nil, nil, err
				}
				mov.DestinationLotID = outcome.NewLot.ID
				created = append(created, outcome.NewLot.ID)
			}
			withLotCost(mov, lot)
			mov.FromLocation = outcome.FromLocation
		}
		if err := repos.movs.Create(ctx, mov); err != nil {
			return nil, nil, err
		}
		movements = append(movements, mov)
	}
	return movements, created, nil
}

// RecordAdjust aplica una corrección con signo. En el libro la cantidad es negativa si disminuye.
func (r *MovementRecorder) RecordAdjust(
	ctx context.Context,
	repos txRepos,
	item *entity.Item,
	adj Adjust,
	qty decimal.Decimal,
	in recordInput,
) (*entity.Movement, error) {
	signed := qty
	if adj.Direction == AdjustDecrease {
		signed = qty.Neg()
	}
	mov := r.newMovement(in, item, entity.MovementTypeAdjust, signed)

	if adj.LotID == "" {
		if err := requireLegacy(ctx, repos, item); err != nil {
			return nil, err
		}
		if adj.Direction == AdjustDecrease && item.CurrentQuantity.LessThan(qty) {
			return nil, domain.InsufficientStock(item.ID, qty.Sub(item.CurrentQuantity))
		}
		item.CurrentQuantity = item.CurrentQuantity.Add(signed)
		item.UpdatedAt = in.Now
		if err := r.guardReservation(ctx, repos, item); err != nil {
			return nil, err
		}
		if err := repos.items.UpdateQuantities(ctx, item); err != nil {
			return nil, err
		}
		mov.FromLocation = item.StorageLocation
	} else {
		lot, err := loadLot(ctx, repos, item, adj.LotID)
		if err != nil {
			return nil, err
		}
		if adj.Direction == AdjustDecrease {
			if err := r.decrementLot(ctx, repos, lot, qty, in.Now); err != nil {
				return nil, err
			}
			if err := r.guardReservation(ctx, repos, item); err != nil {
				return nil, err
			}
		} else {
			if !lot.IsActive {
				return nil, domain.Validation("el lote %s está inactivo; un ajuste no lo reactiva", lot.ID)
			}
			if err := r.incrementLot(ctx, repos, lot, qty, in.Now); err != nil {
				return nil, err
			}
		}
		withLotCost(mov, lot)
		mov.FromLocation = lot.StorageLocation
	}
	if err := repos.movs.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// RecordReturn reingresa cantidad a un lote sin superar quantity_received (o al agregado legacy).
func (r *MovementRecorder) RecordReturn(
	ctx context.Context,
	repos txRepos,
	item *entity.Item,
	ret Return,
	qty decimal.Decimal,
	in recordInput,
) (*entity.Movement, error) {
	mov := r.newMovement(in, item, entity.MovementTypeReturn, qty)
	if ret.LotID == "" {
		if err := requireLegacy(ctx, repos, item); err != nil {
			return nil, err
		}
		item.CurrentQuantity = item.CurrentQuantity.Add(qty)
		item.UpdatedAt = in.Now
		if err := repos.items.UpdateQuantities(ctx, item); err != nil {
			return nil, err
		}
		mov.ToLocation = item.StorageLocation
	} else {
		lot, err := loadLot(ctx, repos, item, ret.LotID)
		if err != nil {
			return nil, err
		}
		if err := r.incrementLot(ctx, repos, lot, qty, in.Now); err != nil {
			return nil, err
		}
		withLotCost(mov, lot)
		mov.ToLocation = lot.StorageLocation
	}
	if err := repos.movs.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// incrementLot suma qty al lote; superar quantity_received es error de validación, nunca se recorta.
func (r *MovementRecorder) incrementLot(ctx context.Context, repos txRepos, lot *entity.Lot, qty decimal.Decimal, now time.Time) error {
	expected := lot.QuantityRemaining
	next := lot.QuantityRemaining.Add(qty)
	if next.GreaterThan(lot.QuantityReceived) {
		return domain.Validation("el lote %s quedaría con %s y solo recibió %s", lot.ID, next, lot.QuantityReceived)
	}
	lot.QuantityRemaining = next
	lot.SyncActive()
	lot.UpdatedAt = now
	return repos.lots.UpdateRemaining(ctx, lot, expected)
}

// RecordReservation ajusta reserved_quantity del ítem; no toca quantity_remaining.
func (r *MovementRecorder) RecordReservation(
	ctx context.Context,
	repos txRepos,
	item *entity.Item,
	t entity.MovementType,
	qty decimal.Decimal,
	in recordInput,
) (*entity.Movement, error) {
	switch t {
	case entity.MovementTypeReserve:
		onHand, err := r.onHand(ctx, repos, item)
		if err != nil {
			return nil, err
		}
		available := onHand.Sub(item.ReservedQuantity)
		if available.LessThan(qty) {
			return nil, domain.InsufficientStock(item.ID, qty.Sub(available))
		}
		item.ReservedQuantity = item.ReservedQuantity.Add(qty)
	case entity.MovementTypeUnreserve:
		if item.ReservedQuantity.LessThan(qty) {
			return nil, domain.Validation("reserva actual %s menor que %s", item.ReservedQuantity, qty)
		}
		item.ReservedQuantity = item.ReservedQuantity.Sub(qty)
	default:
		return nil, domain.Validation("tipo de reserva inválido %q", t)
	}
	item.UpdatedAt = in.Now
	if err := repos.items.UpdateQuantities(ctx, item); err != nil {
		return nil, err
	}
	mov := r.newMovement(in, item, t, qty)
	if err := repos.movs.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// onHand existencia física: suma de lotes activos, o el agregado si el ítem nunca tuvo lotes.
func (r *MovementRecorder) onHand(ctx context.Context, repos txRepos, item *entity.Item) (decimal.Decimal, error) {
	n, err := repos.lots.CountByItem(ctx, item.ID)
	if err != nil {
		return decimal.Zero, err
	}
	if n == 0 {
		return item.CurrentQuantity, nil
	}
	active, err := repos.lots.ListActiveByItem(ctx, item.ID, "")
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, lot := range active {
		total = total.Add(lot.QuantityRemaining)
	}
	return total, nil
}

// guardReservation impide que la existencia quede por debajo de lo reservado.
func (r *MovementRecorder) guardReservation(ctx context.Context, repos txRepos, item *entity.Item) error {
	if !item.ReservedQuantity.GreaterThan(decimal.Zero) {
		return nil
	}
	onHand, err := r.onHand(ctx, repos, item)
	if err != nil {
		return err
	}
	if onHand.LessThan(item.ReservedQuantity) {
		return domain.InsufficientStock(item.ID, item.ReservedQuantity.Sub(onHand))
	}
	return nil
}

// requireLegacy rechaza operaciones sin lote sobre ítems que tienen lotes.
func requireLegacy(ctx context.Context, repos txRepos, item *entity.Item) error {
	n, err := repos.lots.CountByItem(ctx, item.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.Validation("el ítem %s maneja lotes: indique lot_id", item.ID)
	}
	return nil
}
