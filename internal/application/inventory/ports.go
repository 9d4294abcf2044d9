package inventory

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de asignación: todo se confirma junto o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.ItemRepository,
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
	) error) error
}
