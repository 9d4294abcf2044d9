package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var (
	_ repository.ItemRepository     = (*ItemRepo)(nil)
	_ repository.LotRepository      = (*LotRepo)(nil)
	_ repository.MovementRepository = (*MovementRepo)(nil)
)

func now() time.Time { return time.Now().UTC() }

const itemSelect = `
	SELECT id, company_id, sku, name, unit_of_measure, current_quantity, reserved_quantity,
	       storage_location, is_active, created_at, updated_at
	FROM items`

// ItemRepo ítems sobre SQLite (db o tx).
type ItemRepo struct {
	q sqlx.ExtContext
}

func NewItemRepository(q sqlx.ExtContext) *ItemRepo { return &ItemRepo{q: q} }

func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	ts := now()
	item.CreatedAt, item.UpdatedAt = ts, ts
	const q = `
		INSERT INTO items (id, company_id, sku, name, unit_of_measure, current_quantity, reserved_quantity,
			storage_location, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, q,
		item.ID, item.CompanyID, item.SKU, item.Name, item.UnitOfMeasure, item.CurrentQuantity,
		item.ReservedQuantity, item.StorageLocation, item.IsActive, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return wrap("create item", err)
	}
	return nil
}

func (r *ItemRepo) GetByID(ctx context.Context, companyID, itemID string) (*entity.Item, error) {
	var row itemRow
	err := sqlx.GetContext(ctx, r.q, &row, itemSelect+` WHERE id = ? AND company_id = ?`, itemID, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get item", err)
	}
	return row.entity(), nil
}

// GetForUpdate la transacción ya tiene el lock de escritura (BEGIN IMMEDIATE).
func (r *ItemRepo) GetForUpdate(ctx context.Context, companyID, itemID string) (*entity.Item, error) {
	return r.GetByID(ctx, companyID, itemID)
}

func (r *ItemRepo) UpdateQuantities(ctx context.Context, item *entity.Item) error {
	const q = `
		UPDATE items SET current_quantity = ?, reserved_quantity = ?, storage_location = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.q.ExecContext(ctx, q, item.CurrentQuantity, item.ReservedQuantity, item.StorageLocation, now(), item.ID)
	if err != nil {
		return wrap("update item quantities", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ItemNotFound(item.ID)
	}
	return nil
}

const lotSelect = `
	SELECT rowid AS seq, id, company_id, item_id, parent_lot_id, lot_code, quantity_received,
	       quantity_remaining, unit_of_measure, storage_location, received_date, expiry_date,
	       manufacture_date, supplier_id, supplier_lot_number, cost_per_unit,
	       compliance_package_uid, is_active, created_at, updated_at
	FROM lots`

// LotRepo lotes sobre SQLite; el orden de creación es el rowid (los lotes nunca se borran).
type LotRepo struct {
	q sqlx.ExtContext
}

func NewLotRepository(q sqlx.ExtContext) *LotRepo { return &LotRepo{q: q} }

func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	ts := now()
	if lot.CreatedAt.IsZero() {
		lot.CreatedAt = ts
	}
	lot.UpdatedAt = ts
	const q = `
		INSERT INTO lots (id, company_id, item_id, parent_lot_id, lot_code, quantity_received,
			quantity_remaining, unit_of_measure, storage_location, received_date, expiry_date,
			manufacture_date, supplier_id, supplier_lot_number, cost_per_unit, compliance_package_uid,
			is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.q.ExecContext(ctx, q,
		lot.ID, lot.CompanyID, lot.ItemID, nullString(lot.ParentLotID), lot.LotCode, lot.QuantityReceived,
		lot.QuantityRemaining, lot.UnitOfMeasure, lot.StorageLocation, lot.ReceivedDate.UTC(), lot.ExpiryDate,
		lot.ManufactureDate, nullString(lot.SupplierID), nullString(lot.SupplierLotNumber), lot.CostPerUnit,
		nullString(lot.CompliancePackageUID), lot.IsActive, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		return wrap("create lot", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return wrap("create lot", err)
	}
	lot.Sequence = seq
	return nil
}

func (r *LotRepo) GetByID(ctx context.Context, lotID string) (*entity.Lot, error) {
	var row lotRow
	if err := sqlx.GetContext(ctx, r.q, &row, lotSelect+` WHERE id = ?`, lotID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get lot", err)
	}
	return row.entity(), nil
}

// ListActiveByItem filtra por is_active en SQL y por saldo en Go (TEXT no compara numéricamente).
func (r *LotRepo) ListActiveByItem(ctx context.Context, itemID, location string) ([]*entity.Lot, error) {
	lots, err := r.list(ctx, "list active lots",
		lotSelect+` WHERE item_id = ? AND is_active = 1 AND (? = '' OR storage_location = ?) ORDER BY rowid`,
		itemID, location, location)
	if err != nil {
		return nil, err
	}
	out := lots[:0]
	for _, l := range lots {
		if l.Available() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *LotRepo) ListByItem(ctx context.Context, itemID string) ([]*entity.Lot, error) {
	return r.list(ctx, "list lots", lotSelect+` WHERE item_id = ? ORDER BY rowid`, itemID)
}

func (r *LotRepo) list(ctx context.Context, op, q string, args ...any) ([]*entity.Lot, error) {
	var rows []lotRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, q, args...); err != nil {
		return nil, wrap(op, err)
	}
	out := make([]*entity.Lot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.entity())
	}
	return out, nil
}

func (r *LotRepo) CountByItem(ctx context.Context, itemID string) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.q, &n, `SELECT count(*) FROM lots WHERE item_id = ?`, itemID); err != nil {
		return 0, wrap("count lots", err)
	}
	return n, nil
}

// UpdateRemaining compara el TEXT canónico de decimal.String(); 0 filas = conflicto.
func (r *LotRepo) UpdateRemaining(ctx context.Context, lot *entity.Lot, expectedRemaining decimal.Decimal) error {
	const q = `
		UPDATE lots SET quantity_remaining = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND quantity_remaining = ?`
	res, err := r.q.ExecContext(ctx, q, lot.QuantityRemaining, lot.IsActive, now(), lot.ID, expectedRemaining)
	if err != nil {
		return wrap("update lot remaining", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ConcurrencyConflict(lot.ID)
	}
	return nil
}

func (r *LotRepo) UpdateLocation(ctx context.Context, lotID, location string) error {
	res, err := r.q.ExecContext(ctx, `UPDATE lots SET storage_location = ?, updated_at = ? WHERE id = ?`, location, now(), lotID)
	if err != nil {
		return wrap("update lot location", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.LotNotFound("", lotID)
	}
	return nil
}

const movementSelect = `
	SELECT id, transaction_id, company_id, item_id, lot_id, destination_lot_id, movement_type, quantity,
	       unit_cost, total_cost, from_location, to_location, batch_id, task_id, reason, notes,
	       performed_by, created_at
	FROM inventory_movements`

// MovementRepo libro de movimientos; triggers impiden UPDATE y DELETE.
type MovementRepo struct {
	q sqlx.ExtContext
}

func NewMovementRepository(q sqlx.ExtContext) *MovementRepo { return &MovementRepo{q: q} }

func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now()
	}
	const q = `
		INSERT INTO inventory_movements (id, transaction_id, company_id, item_id, lot_id, destination_lot_id,
			movement_type, quantity, unit_cost, total_cost, from_location, to_location, batch_id, task_id,
			reason, notes, performed_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, q,
		m.ID, m.TransactionID, m.CompanyID, m.ItemID, nullString(m.LotID), nullString(m.DestinationLotID),
		string(m.Type), m.Quantity, m.UnitCost, m.TotalCost, nullString(m.FromLocation), nullString(m.ToLocation),
		nullString(m.BatchID), nullString(m.TaskID), nullString(m.Reason), nullString(m.Notes),
		m.PerformedBy, m.CreatedAt.UTC(),
	)
	if err != nil {
		return wrap("create movement", err)
	}
	return nil
}

// ListByItem más recientes primero.
func (r *MovementRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.Movement, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.list(ctx, "list movements",
		movementSelect+` WHERE item_id = ? ORDER BY rowid DESC LIMIT ? OFFSET ?`, itemID, limit, offset)
}

func (r *MovementRepo) ListByLot(ctx context.Context, lotID string) ([]*entity.Movement, error) {
	return r.list(ctx, "list lot movements", movementSelect+` WHERE lot_id = ? ORDER BY rowid`, lotID)
}

func (r *MovementRepo) list(ctx context.Context, op, q string, args ...any) ([]*entity.Movement, error) {
	var rows []movementRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, q, args...); err != nil {
		return nil, wrap(op, err)
	}
	out := make([]*entity.Movement, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.entity())
	}
	return out, nil
}
