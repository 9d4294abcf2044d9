package repository

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// MovementRepository puerto del libro de movimientos (solo inserción).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.Movement, error)
	ListByLot(ctx context.Context, lotID string) ([]*entity.Movement, error)
}
