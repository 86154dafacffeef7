package inventory

import (
	"context"

	"github.com/jhoicas/stock-control/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Products  repository.ProductRepository
	Lots      repository.StockLotRepository
	Locations repository.LocationRepository
	Balances  repository.LocationBalanceRepository
	Ledger    repository.LedgerRepository
	Orders    repository.PurchaseOrderRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad del libro de cantidades: si fn devuelve error no queda nada escrito.
// Los conflictos de bloqueo se devuelven envueltos en domain.ErrConcurrentModification.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

// Readers repositorios de lectura fuera de transacción.
type Readers struct {
	Products repository.ProductRepository
	Lots     repository.StockLotRepository
	Balances repository.LocationBalanceRepository
	Ledger   repository.LedgerRepository
	Orders   repository.PurchaseOrderRepository
}
