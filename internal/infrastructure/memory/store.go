// Package memory implementa el almacenamiento transaccional en memoria (clonar estado, aplicar, reemplazar).
// Las transacciones se serializan con un único mutex: bloqueo más grueso que por ítem, nunca más fino.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	items     map[string]entity.Item
	lots      map[string]entity.Lot
	movements []entity.Movement
	seq       int64
}

func newState() state {
	return state{
		items: make(map[string]entity.Item),
		lots:  make(map[string]entity.Lot),
	}
}

func (s state) clone() state {
	cp := state{
		items:     make(map[string]entity.Item, len(s.items)),
		lots:      make(map[string]entity.Lot, len(s.lots)),
		movements: make([]entity.Movement, len(s.movements)),
		seq:       s.seq,
	}
	for k, v := range s.items {
		cp.items[k] = v
	}
	for k, v := range s.lots {
		cp.lots[k] = v
	}
	copy(cp.movements, s.movements)
	return cp
}

// Store almacenamiento en memoria; implementa inventory.TxRunner.
type Store struct {
	mu    sync.Mutex
	state state
	nowFn func() time.Time
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{state: newState(), nowFn: func() time.Time { return time.Now().UTC() }}
}

// Run ejecuta fn sobre una copia del estado; solo si fn termina sin error y el contexto
// sigue vigente la copia reemplaza al estado confirmado.
func (s *Store) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := s.state.clone()
	access := func(f func(st *state)) { f(&tx) }
	if err := fn(&itemRepo{access: access}, &lotRepo{access: access, now: s.nowFn}, &movementRepo{access: access}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = tx
	return nil
}

func (s *Store) committed(f func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(&s.state)
}

// Items repositorio fuera de transacción (lecturas y altas de inventario).
func (s *Store) Items() repository.ItemRepository { return &itemRepo{access: s.committed} }

// Lots repositorio fuera de transacción.
func (s *Store) Lots() repository.LotRepository { return &lotRepo{access: s.committed, now: s.nowFn} }

// Movements repositorio fuera de transacción.
func (s *Store) Movements() repository.MovementRepository { return &movementRepo{access: s.committed} }

// PutItem registra o reemplaza un ítem. Asigna ID si viene vacío.
func (s *Store) PutItem(item entity.Item) entity.Item {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := s.nowFn()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	s.committed(func(st *state) { st.items[item.ID] = item })
	return item
}

// PutLot registra un lote recibido fuera del motor. Asigna ID y orden de creación.
func (s *Store) PutLot(lot entity.Lot) entity.Lot {
	s.committed(func(st *state) { lot = insertLot(st, lot, s.nowFn()) })
	return lot
}

func insertLot(st *state, lot entity.Lot, now time.Time) entity.Lot {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	st.seq++
	lot.Sequence = st.seq
	if lot.CreatedAt.IsZero() {
		lot.CreatedAt = now
	}
	if lot.UpdatedAt.IsZero() {
		lot.UpdatedAt = now
	}
	st.lots[lot.ID] = lot
	return lot
}

func sortedLots(st *state, keep func(l *entity.Lot) bool) []*entity.Lot {
	out := make([]*entity.Lot, 0)
	for _, l := range st.lots {
		l := l
		if keep(&l) {
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}
