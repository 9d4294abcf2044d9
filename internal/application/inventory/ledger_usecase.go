package inventory

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// LedgerUseCase consultas de solo lectura sobre lotes y libro de movimientos.
type LedgerUseCase struct {
	itemRepo repository.ItemRepository
	lotRepo  repository.LotRepository
	movRepo  repository.MovementRepository
}

// NewLedgerUseCase construye el caso de uso de consulta.
func NewLedgerUseCase(
	itemRepo repository.ItemRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
) *LedgerUseCase {
	return &LedgerUseCase{itemRepo: itemRepo, lotRepo: lotRepo, movRepo: movRepo}
}

func (uc *LedgerUseCase) item(ctx context.Context, companyID, itemID string) (*entity.Item, error) {
	item, err := uc.itemRepo.GetByID(ctx, companyID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ItemNotFound(itemID)
	}
	return item, nil
}

// ListLots devuelve todos los lotes del ítem, incluidos los consumidos.
func (uc *LedgerUseCase) ListLots(ctx context.Context, companyID, itemID string) ([]*entity.Lot, error) {
	if _, err := uc.item(ctx, companyID, itemID); err != nil {
		return nil, err
	}
	return uc.lotRepo.ListByItem(ctx, itemID)
}

// ListMovements página del libro de movimientos del ítem, más recientes primero.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, companyID, itemID string, limit, offset int) ([]*entity.Movement, error) {
	if _, err := uc.item(ctx, companyID, itemID); err != nil {
		return nil, err
	}
	return uc.movRepo.ListByItem(ctx, itemID, limit, offset)
}

// VerifyItem calcula el balance de conservación de cada lote del ítem.
func (uc *LedgerUseCase) VerifyItem(ctx context.Context, companyID, itemID string) ([]inventory.LotBalance, error) {
	if _, err := uc.item(ctx, companyID, itemID); err != nil {
		return nil, err
	}
	lots, err := uc.lotRepo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	out := make([]inventory.LotBalance, 0, len(lots))
	for _, lot := range lots {
		movs, err := uc.movRepo.ListByLot(ctx, lot.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, inventory.BalanceLot(lot, movs))
	}
	return out, nil
}
