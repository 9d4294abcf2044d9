// Package storage selecciona el backend de persistencia según DB_DRIVER.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/jhoicas/lotes-api/internal/infrastructure/memory"
	"github.com/jhoicas/lotes-api/internal/infrastructure/postgres"
	"github.com/jhoicas/lotes-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/lotes-api/pkg/config"
)

// Backend runner transaccional y repositorios de lectura de un driver.
type Backend struct {
	Driver    string
	Runner    inventory.TxRunner
	Items     repository.ItemRepository
	Lots      repository.LotRepository
	Movements repository.MovementRepository
	close     func() error
}

// Close libera conexiones; en memoria no hace nada.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open abre el backend configurado y aplica el esquema si corresponde.
func Open(ctx context.Context, cfg config.DBConfig) (*Backend, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &Backend{
			Driver:    cfg.Driver,
			Runner:    postgres.NewTxRunner(pool),
			Items:     postgres.NewItemRepository(pool),
			Lots:      postgres.NewLotRepository(pool),
			Movements: postgres.NewMovementRepository(pool),
			close:     func() error { pool.Close(); return nil },
		}, nil

	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Driver:    cfg.Driver,
			Runner:    s,
			Items:     s.Items(),
			Lots:      s.Lots(),
			Movements: s.Movements(),
			close:     s.Close,
		}, nil

	case config.DriverMemory:
		s := memory.NewStore()
		return &Backend{
			Driver:    cfg.Driver,
			Runner:    s,
			Items:     s.Items(),
			Lots:      s.Lots(),
			Movements: s.Movements(),
		}, nil
	}
	return nil, fmt.Errorf("storage: driver desconocido %q", cfg.Driver)
}
