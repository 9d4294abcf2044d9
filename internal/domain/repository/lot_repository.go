package repository

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LotRepository define el puerto de persistencia para lotes.
// Los lotes nunca se borran: un lote consumido queda inactivo con cantidad cero.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, lotID string) (*entity.Lot, error)
	// ListActiveByItem devuelve los lotes activos con quantity_remaining > 0, en orden de creación.
	// location vacío = todas las ubicaciones.
	ListActiveByItem(ctx context.Context, itemID, location string) ([]*entity.Lot, error)
	// ListByItem devuelve todos los lotes (incluidos inactivos) en orden de creación.
	ListByItem(ctx context.Context, itemID string) ([]*entity.Lot, error)
	// CountByItem cuenta todos los lotes del ítem, activos o no.
	CountByItem(ctx context.Context, itemID string) (int, error)
	// UpdateRemaining escribe quantity_remaining/is_active condicionado a que el valor
	// persistido siga siendo expectedRemaining; si no, devuelve domain.ErrConcurrencyConflict.
	UpdateRemaining(ctx context.Context, lot *entity.Lot, expectedRemaining decimal.Decimal) error
	UpdateLocation(ctx context.Context, lotID, location string) error
}
