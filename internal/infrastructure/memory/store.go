package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/stock-control/internal/application/inventory"
	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// DefaultLockTimeout espera máxima por un bloqueo de fila.
const DefaultLockTimeout = 2 * time.Second

type balanceKey struct {
	locationID string
	lotID      string
}

// Store almacén en proceso para desarrollo y tests. Mismas reglas que el adaptador
// PostgreSQL: bloqueo por fila con espera acotada y deshacer completo si la
// transacción falla. Las lecturas sin bloqueo pueden ver escrituras aún no confirmadas.
type Store struct {
	mu        sync.RWMutex
	products  map[string]entity.Product
	lots      map[string]entity.StockLot
	locations map[string]entity.Location
	balances  map[balanceKey]entity.LocationBalance
	ledger    []entity.LedgerEntry
	orders    map[string]entity.PurchaseOrder
	checks    []entity.QualityCheck
	users     map[string]entity.User

	locks       *lockTable
	lockTimeout time.Duration
}

// NewStore crea un almacén vacío. lockTimeout <= 0 usa DefaultLockTimeout.
func NewStore(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Store{
		products:    make(map[string]entity.Product),
		lots:        make(map[string]entity.StockLot),
		locations:   make(map[string]entity.Location),
		balances:    make(map[balanceKey]entity.LocationBalance),
		orders:      make(map[string]entity.PurchaseOrder),
		users:       make(map[string]entity.User),
		locks:       &lockTable{slots: make(map[string]chan struct{})},
		lockTimeout: lockTimeout,
	}
}

// Repositorios fuera de transacción.

func (s *Store) Products() *ProductRepo { return &ProductRepo{sess: s.session(nil)} }
func (s *Store) Lots() *LotRepo { return &LotRepo{sess: s.session(nil)} }
func (s *Store) Locations() *LocationRepo { return &LocationRepo{sess: s.session(nil)} }
func (s *Store) Balances() *BalanceRepo { return &BalanceRepo{sess: s.session(nil)} }
func (s *Store) Ledger() *LedgerRepo { return &LedgerRepo{sess: s.session(nil)} }
func (s *Store) Orders() *PurchaseOrderRepo { return &PurchaseOrderRepo{sess: s.session(nil)} }
func (s *Store) QualityChecks() *QualityCheckRepo { return &QualityCheckRepo{sess: s.session(nil)} }
func (s *Store) Users() *UserRepo { return &UserRepo{sess: s.session(nil)} }

// Readers repositorios de lectura para los casos de uso de inventario.
func (s *Store) Readers() inventory.Readers {
	return inventory.Readers{
		Products: s.Products(),
		Lots:     s.Lots(),
		Balances: s.Balances(),
		Ledger:   s.Ledger(),
		Orders:   s.Orders(),
	}
}

// TxRunner devuelve el ejecutor de transacciones del almacén.
func (s *Store) TxRunner() *TxRunner {
	return &TxRunner{s: s}
}

func (s *Store) session(t *tx) *session {
	return &session{s: s, tx: t}
}

// session comparte almacén y, si existe, la transacción en curso.
type session struct {
	s  *Store
	tx *tx
}

// lock toma el bloqueo de fila para la transacción. Fuera de transacción no bloquea.
func (ss *session) lock(ctx context.Context, key string) error {
	if ss.tx == nil || ss.tx.held[key] {
		return nil
	}
	if err := ss.s.locks.acquire(ctx, key, ss.s.lockTimeout); err != nil {
		return err
	}
	ss.tx.held[key] = true
	ss.tx.order = append(ss.tx.order, key)
	return nil
}

// mutate aplica fn bajo el mutex del almacén y guarda su deshacer en la transacción.
func (ss *session) mutate(fn func() (undo func(), err error)) error {
	ss.s.mu.Lock()
	undo, err := fn()
	ss.s.mu.Unlock()
	if err != nil {
		return err
	}
	if ss.tx != nil && undo != nil {
		ss.tx.undo = append(ss.tx.undo, undo)
	}
	return nil
}

type tx struct {
	held  map[string]bool
	order []string
	undo  []func()
}

// TxRunner ejecuta callbacks con repositorios atados a una transacción en memoria.
type TxRunner struct {
	s *Store
}

// Run ejecuta fn; si devuelve error (o entra en pánico) deshace todo lo escrito.
// Los bloqueos se liberan al terminar.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) (err error) {
	t := &tx{held: make(map[string]bool)}
	sess := r.s.session(t)
	defer func() {
		if p := recover(); p != nil {
			r.s.rollback(t)
			r.s.release(t)
			panic(p)
		}
		r.s.release(t)
	}()

	repos := inventory.TxRepos{
		Products:  &ProductRepo{sess: sess},
		Lots:      &LotRepo{sess: sess},
		Locations: &LocationRepo{sess: sess},
		Balances:  &BalanceRepo{sess: sess},
		Ledger:    &LedgerRepo{sess: sess},
		Orders:    &PurchaseOrderRepo{sess: sess},
	}
	if err := fn(repos); err != nil {
		r.s.rollback(t)
		return err
	}
	return nil
}

func (s *Store) rollback(t *tx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (s *Store) release(t *tx) {
	for i := len(t.order) - 1; i >= 0; i-- {
		s.locks.release(t.order[i])
	}
	t.order = nil
}

// lockTable bloqueos de fila como semáforos de capacidad 1.
type lockTable struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func (t *lockTable) slot(key string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch, ok := t.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		t.slots[key] = ch
	}
	return ch
}

func (t *lockTable) acquire(ctx context.Context, key string, timeout time.Duration) error {
	ch := t.slot(key)
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return nil
	case <-timer.C:
		return fmt.Errorf("lock %s: %w", key, domain.ErrConcurrentModification)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *lockTable) release(key string) {
	<-t.slot(key)
}
