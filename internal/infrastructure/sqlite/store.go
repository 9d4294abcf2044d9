// Package sqlite implementa el almacenamiento embebido sobre SQLite (sqlx + go-sqlite3).
// Un solo escritor: las transacciones abren con BEGIN IMMEDIATE y el pool usa una conexión.
package sqlite

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

var _ inventory.TxRunner = (*Store)(nil)

//go:embed schema.sql
var schemaSQL string

// Store base SQLite; implementa inventory.TxRunner.
type Store struct {
	db *sqlx.DB
}

// Open abre (o crea) la base en path y aplica el esquema.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL", path)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("aplicar esquema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close cierra la base.
func (s *Store) Close() error { return s.db.Close() }

// Run ejecuta fn dentro de una transacción; commit solo si fn termina sin error.
func (s *Store) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrap("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(NewItemRepository(tx), NewLotRepository(tx), NewMovementRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrap("commit transaction", err)
	}
	return nil
}

// Items repositorio fuera de transacción.
func (s *Store) Items() *ItemRepo { return NewItemRepository(s.db) }

// Lots repositorio fuera de transacción.
func (s *Store) Lots() *LotRepo { return NewLotRepository(s.db) }

// Movements repositorio fuera de transacción.
func (s *Store) Movements() *MovementRepo { return NewMovementRepository(s.db) }

// wrap clasifica errores del driver: base ocupada = conflicto reintentable, resto = persistencia.
func wrap(op string, err error) error {
	if _, ok := domain.AsIssueError(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var se sqlite3.Error
	if errors.As(err, &se) && (se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked) {
		return &domain.IssueError{Kind: domain.KindConcurrencyConflict, Detail: op, Err: err}
	}
	return &domain.IssueError{Kind: domain.KindPersistence, Detail: op, Err: fmt.Errorf("%s: %w", op, err)}
}
