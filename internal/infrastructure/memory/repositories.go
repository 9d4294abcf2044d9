package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.ItemRepository     = (*itemRepo)(nil)
	_ repository.LotRepository      = (*lotRepo)(nil)
	_ repository.MovementRepository = (*movementRepo)(nil)
)

type itemRepo struct {
	access func(func(st *state))
}

func (r *itemRepo) Create(_ context.Context, item *entity.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	r.access(func(st *state) { st.items[item.ID] = *item })
	return nil
}

func (r *itemRepo) GetByID(_ context.Context, companyID, itemID string) (*entity.Item, error) {
	var out *entity.Item
	r.access(func(st *state) {
		if it, ok := st.items[itemID]; ok && it.CompanyID == companyID {
			out = &it
		}
	})
	return out, nil
}

// GetForUpdate dentro de Run el mutex del store ya serializa la transacción.
func (r *itemRepo) GetForUpdate(ctx context.Context, companyID, itemID string) (*entity.Item, error) {
	return r.GetByID(ctx, companyID, itemID)
}

func (r *itemRepo) UpdateQuantities(_ context.Context, item *entity.Item) error {
	var err error
	r.access(func(st *state) {
		cur, ok := st.items[item.ID]
		if !ok {
			err = domain.ItemNotFound(item.ID)
			return
		}
		cur.CurrentQuantity = item.CurrentQuantity
		cur.ReservedQuantity = item.ReservedQuantity
		cur.StorageLocation = item.StorageLocation
		cur.UpdatedAt = item.UpdatedAt
		st.items[item.ID] = cur
	})
	return err
}

type lotRepo struct {
	access func(func(st *state))
	now    func() time.Time
}

func (r *lotRepo) Create(_ context.Context, lot *entity.Lot) error {
	r.access(func(st *state) { *lot = insertLot(st, *lot, r.now()) })
	return nil
}

func (r *lotRepo) GetByID(_ context.Context, lotID string) (*entity.Lot, error) {
	var out *entity.Lot
	r.access(func(st *state) {
		if l, ok := st.lots[lotID]; ok {
			out = &l
		}
	})
	return out, nil
}

func (r *lotRepo) ListActiveByItem(_ context.Context, itemID, location string) ([]*entity.Lot, error) {
	var out []*entity.Lot
	r.access(func(st *state) {
		out = sortedLots(st, func(l *entity.Lot) bool {
			return l.ItemID == itemID && l.Available() && (location == "" || l.StorageLocation == location)
		})
	})
	return out, nil
}

func (r *lotRepo) ListByItem(_ context.Context, itemID string) ([]*entity.Lot, error) {
	var out []*entity.Lot
	r.access(func(st *state) {
		out = sortedLots(st, func(l *entity.Lot) bool { return l.ItemID == itemID })
	})
	return out, nil
}

func (r *lotRepo) CountByItem(_ context.Context, itemID string) (int, error) {
	n := 0
	r.access(func(st *state) {
		for _, l := range st.lots {
			if l.ItemID == itemID {
				n++
			}
		}
	})
	return n, nil
}

func (r *lotRepo) UpdateRemaining(_ context.Context, lot *entity.Lot, expectedRemaining decimal.Decimal) error {
	var err error
	r.access(func(st *state) {
		cur, ok := st.lots[lot.ID]
		if !ok {
			err = domain.LotNotFound(lot.ItemID, lot.ID)
			return
		}
		if !cur.QuantityRemaining.Equal(expectedRemaining) {
			err = domain.ConcurrencyConflict(lot.ID)
			return
		}
		cur.QuantityRemaining = lot.QuantityRemaining
		cur.IsActive = lot.IsActive
		cur.UpdatedAt = lot.UpdatedAt
		st.lots[lot.ID] = cur
	})
	return err
}

func (r *lotRepo) UpdateLocation(_ context.Context, lotID, location string) error {
	var err error
	r.access(func(st *state) {
		cur, ok := st.lots[lotID]
		if !ok {
			err = domain.LotNotFound("", lotID)
			return
		}
		cur.StorageLocation = location
		cur.UpdatedAt = r.now()
		st.lots[lotID] = cur
	})
	return err
}

type movementRepo struct {
	access func(func(st *state))
}

func (r *movementRepo) Create(_ context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	r.access(func(st *state) { st.movements = append(st.movements, *m) })
	return nil
}

// ListByItem más recientes primero.
func (r *movementRepo) ListByItem(_ context.Context, itemID string, limit, offset int) ([]*entity.Movement, error) {
	var out []*entity.Movement
	r.access(func(st *state) {
		skipped := 0
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if m.ItemID != itemID {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && len(out) >= limit {
				break
			}
			out = append(out, &m)
		}
	})
	return out, nil
}

func (r *movementRepo) ListByLot(_ context.Context, lotID string) ([]*entity.Movement, error) {
	var out []*entity.Movement
	r.access(func(st *state) {
		for _, m := range st.movements {
			if m.LotID == lotID {
				m := m
				out = append(out, &m)
			}
		}
	})
	return out, nil
}
