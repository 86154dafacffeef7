package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-control/internal/application/inventory"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. lockTimeout acota la espera de cada
// SELECT ... FOR UPDATE; al vencer, la operación falla con ErrConcurrentModification.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		// SET no admite parámetros.
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	repos := inventory.TxRepos{
		Products:  NewProductRepository(tx),
		Lots:      NewLotRepository(tx),
		Locations: NewLocationRepository(tx),
		Balances:  NewLocationBalanceRepository(tx),
		Ledger:    NewLedgerRepository(tx),
		Orders:    NewPurchaseOrderRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrap("commit transaction", err)
	}
	return nil
}

// Readers repositorios de lectura sobre el pool.
func Readers(pool *pgxpool.Pool) inventory.Readers {
	return inventory.Readers{
		Products: NewProductRepository(pool),
		Lots:     NewLotRepository(pool),
		Balances: NewLocationBalanceRepository(pool),
		Ledger:   NewLedgerRepository(pool),
		Orders:   NewPurchaseOrderRepository(pool),
	}
}
