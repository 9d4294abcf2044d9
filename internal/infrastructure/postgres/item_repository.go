package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, company_id, sku, name, unit_of_measure, current_quantity, reserved_quantity,
	storage_location, is_active, created_at, updated_at`

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de ítems. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create inserta un ítem nuevo.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		item.ID, item.CompanyID, item.SKU, item.Name, item.UnitOfMeasure,
		item.CurrentQuantity, item.ReservedQuantity, item.StorageLocation, item.IsActive,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return persistence("create item", err)
	}
	return nil
}

// GetByID devuelve nil, nil si el ítem no existe en la empresa.
func (r *ItemRepo) GetByID(ctx context.Context, companyID, itemID string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 AND company_id = $2`
	return r.getOne(ctx, "get item", query, itemID, companyID)
}

// GetForUpdate bloquea la fila del ítem (SELECT FOR UPDATE) hasta el fin de la tx.
func (r *ItemRepo) GetForUpdate(ctx context.Context, companyID, itemID string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 AND company_id = $2 FOR UPDATE`
	return r.getOne(ctx, "get item for update", query, itemID, companyID)
}

func (r *ItemRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Item, error) {
	var it entity.Item
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&it.ID, &it.CompanyID, &it.SKU, &it.Name, &it.UnitOfMeasure,
		&it.CurrentQuantity, &it.ReservedQuantity, &it.StorageLocation, &it.IsActive,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistence(op, err)
	}
	return &it, nil
}

// UpdateQuantities persiste cantidades agregadas y ubicación del ítem.
func (r *ItemRepo) UpdateQuantities(ctx context.Context, item *entity.Item) error {
	query := `
		UPDATE items
		SET current_quantity = $2, reserved_quantity = $3, storage_location = $4, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, item.ID, item.CurrentQuantity, item.ReservedQuantity, item.StorageLocation)
	if err != nil {
		return persistence("update item quantities", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ItemNotFound(item.ID)
	}
	return nil
}
