package repository

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para ítems de stock.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, companyID, itemID string) (*entity.Item, error)
	// GetForUpdate bloquea el ítem hasta el fin de la transacción (frontera de serialización por ítem).
	GetForUpdate(ctx context.Context, companyID, itemID string) (*entity.Item, error)
	// UpdateQuantities persiste current_quantity, reserved_quantity y storage_location.
	UpdateQuantities(ctx context.Context, item *entity.Item) error
}
