package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, seq, company_id, item_id, parent_lot_id, lot_code, quantity_received, quantity_remaining,
	unit_of_measure, storage_location, received_date, expiry_date, manufacture_date, supplier_id,
	supplier_lot_number, cost_per_unit, compliance_package_uid, is_active, created_at, updated_at`

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// Create inserta el lote; seq (orden de creación) lo asigna la secuencia de la tabla.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	query := `
		INSERT INTO lots (id, company_id, item_id, parent_lot_id, lot_code, quantity_received, quantity_remaining,
			unit_of_measure, storage_location, received_date, expiry_date, manufacture_date, supplier_id,
			supplier_lot_number, cost_per_unit, compliance_package_uid, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, now(), now())
		RETURNING seq, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		lot.ID, lot.CompanyID, lot.ItemID, nullableString(lot.ParentLotID), lot.LotCode,
		lot.QuantityReceived, lot.QuantityRemaining, lot.UnitOfMeasure, lot.StorageLocation,
		lot.ReceivedDate, lot.ExpiryDate, lot.ManufactureDate, nullableString(lot.SupplierID),
		nullableString(lot.SupplierLotNumber), lot.CostPerUnit, nullableString(lot.CompliancePackageUID),
		lot.IsActive,
	).Scan(&lot.Sequence, &lot.CreatedAt, &lot.UpdatedAt)
	if err != nil {
		return persistence("create lot", err)
	}
	return nil
}

// GetByID devuelve nil, nil si el lote no existe.
func (r *LotRepo) GetByID(ctx context.Context, lotID string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1`
	lot, err := scanLot(r.q.QueryRow(ctx, query, lotID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistence("get lot", err)
	}
	return lot, nil
}

// ListActiveByItem lotes con saldo, en orden de creación. location vacío = todas.
func (r *LotRepo) ListActiveByItem(ctx context.Context, itemID, location string) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + ` FROM lots
		WHERE item_id = $1 AND is_active AND quantity_remaining > 0
		  AND ($2 = '' OR storage_location = $2)
		ORDER BY seq`
	return r.list(ctx, "list active lots", query, itemID, location)
}

// ListByItem todos los lotes del ítem, incluidos los consumidos.
func (r *LotRepo) ListByItem(ctx context.Context, itemID string) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE item_id = $1 ORDER BY seq`
	return r.list(ctx, "list lots", query, itemID)
}

func (r *LotRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Lot, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, persistence(op, err)
	}
	defer rows.Close()
	var out []*entity.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, persistence(op, err)
		}
		out = append(out, lot)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence(op, err)
	}
	return out, nil
}

// CountByItem cuenta lotes activos e inactivos.
func (r *LotRepo) CountByItem(ctx context.Context, itemID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM lots WHERE item_id = $1`, itemID).Scan(&n); err != nil {
		return 0, persistence("count lots", err)
	}
	return n, nil
}

// UpdateRemaining escritura condicional: si quantity_remaining ya no es expectedRemaining no toca la fila.
func (r *LotRepo) UpdateRemaining(ctx context.Context, lot *entity.Lot, expectedRemaining decimal.Decimal) error {
	query := `
		UPDATE lots
		SET quantity_remaining = $2, is_active = $3, updated_at = now()
		WHERE id = $1 AND quantity_remaining = $4`
	tag, err := r.q.Exec(ctx, query, lot.ID, lot.QuantityRemaining, lot.IsActive, expectedRemaining)
	if err != nil {
		return persistence("update lot remaining", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ConcurrencyConflict(lot.ID)
	}
	return nil
}

func (r *LotRepo) UpdateLocation(ctx context.Context, lotID, location string) error {
	tag, err := r.q.Exec(ctx, `UPDATE lots SET storage_location = $2, updated_at = now() WHERE id = $1`, lotID, location)
	if err != nil {
		return persistence("update lot location", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.LotNotFound("", lotID)
	}
	return nil
}

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var (
		l                                         entity.Lot
		parent, supplier, supplierLot, compliance *string
	)
	err := row.Scan(
		&l.ID, &l.Sequence, &l.CompanyID, &l.ItemID, &parent, &l.LotCode, &l.QuantityReceived, &l.QuantityRemaining,
		&l.UnitOfMeasure, &l.StorageLocation, &l.ReceivedDate, &l.ExpiryDate, &l.ManufactureDate, &supplier,
		&supplierLot, &l.CostPerUnit, &compliance, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.ParentLotID = stringValue(parent)
	l.SupplierID = stringValue(supplier)
	l.SupplierLotNumber = stringValue(supplierLot)
	l.CompliancePackageUID = stringValue(compliance)
	return &l, nil
}
