package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Fallos de serialización o deadlock se devuelven como conflicto de concurrencia (reintentables).
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return persistence("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewItemRepository(tx), NewLotRepository(tx), NewMovementRepository(tx)); err != nil {
		if isRetryableTxError(err) {
			return &domain.IssueError{Kind: domain.KindConcurrencyConflict, Err: err}
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isRetryableTxError(err) {
			return &domain.IssueError{Kind: domain.KindConcurrencyConflict, Err: err}
		}
		return persistence("commit transaction", err)
	}
	return nil
}

// persistence envuelve un error del driver; los errores de dominio pasan intactos.
func persistence(op string, err error) error {
	if _, ok := domain.AsIssueError(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &domain.IssueError{Kind: domain.KindPersistence, Detail: op, Err: fmt.Errorf("%s: %w", op, err)}
}
