package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, transaction_id, company_id, item_id, lot_id, destination_lot_id, movement_type,
	quantity, unit_cost, total_cost, from_location, to_location, batch_id, task_id, reason, notes,
	performed_by, created_at`

// MovementRepo libro de movimientos sobre PostgreSQL. La tabla rechaza UPDATE/DELETE por trigger.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador del libro. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TransactionID, m.CompanyID, m.ItemID, nullableString(m.LotID), nullableString(m.DestinationLotID),
		string(m.Type), m.Quantity, m.UnitCost, m.TotalCost, nullableString(m.FromLocation),
		nullableString(m.ToLocation), nullableString(m.BatchID), nullableString(m.TaskID),
		nullableString(m.Reason), nullableString(m.Notes), m.PerformedBy, m.CreatedAt,
	)
	if err != nil {
		return persistence("create movement", err)
	}
	return nil
}

// ListByItem más recientes primero.
func (r *MovementRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.Movement, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + movementColumns + ` FROM inventory_movements
		WHERE item_id = $1 ORDER BY seq DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, "list movements", query, itemID, limit, offset)
}

func (r *MovementRepo) ListByLot(ctx context.Context, lotID string) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE lot_id = $1 ORDER BY seq`
	return r.list(ctx, "list lot movements", query, lotID)
}

func (r *MovementRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, persistence(op, err)
	}
	defer rows.Close()
	var out []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, persistence(op, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence(op, err)
	}
	return out, nil
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var (
		m                                entity.Movement
		typ                              string
		lot, dest, from, to, batch, task *string
		reason, notes                    *string
	)
	err := row.Scan(
		&m.ID, &m.TransactionID, &m.CompanyID, &m.ItemID, &lot, &dest, &typ,
		&m.Quantity, &m.UnitCost, &m.TotalCost, &from, &to, &batch, &task, &reason, &notes,
		&m.PerformedBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(typ)
	m.LotID = stringValue(lot)
	m.DestinationLotID = stringValue(dest)
	m.FromLocation = stringValue(from)
	m.ToLocation = stringValue(to)
	m.BatchID = stringValue(batch)
	m.TaskID = stringValue(task)
	m.Reason = stringValue(reason)
	m.Notes = stringValue(notes)
	return &m, nil
}
