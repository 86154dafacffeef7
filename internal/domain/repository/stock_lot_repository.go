package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-control/internal/domain/entity"
)

// LotFilter acota los lotes de un producto. Campos vacíos no filtran.
type LotFilter struct {
	LotNumber  string     // exacto, sin distinguir mayúsculas
	ExpiryDate *time.Time // fecha exacta (día)
}

// ExpiryWindow rango de vencimientos [From, Before). Extremos nil no acotan.
type ExpiryWindow struct {
	From   *time.Time
	Before *time.Time
}

// StockLotRepository puerto de persistencia de lotes.
//
// Orden de almacén en los listados: expiry_date DESC, created_at DESC (salvo ListByExpiry).
// Create devuelve domain.ErrDuplicate si ya existe (producto, lote, vencimiento).
type StockLotRepository interface {
	Create(ctx context.Context, lot *entity.StockLot) error
	GetByID(ctx context.Context, id string) (*entity.StockLot, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.StockLot, error)
	// UpdateQuantities persiste current_stock y accumulated_partial.
	UpdateQuantities(ctx context.Context, lot *entity.StockLot) error
	// UpdateSettings persiste units_per_quantity y feature.
	UpdateSettings(ctx context.Context, lot *entity.StockLot) error
	Delete(ctx context.Context, id string) error
	ListByProduct(ctx context.Context, productID string, filter LotFilter) ([]*entity.StockLot, error)
	// FindByLotNumber busca en todos los productos.
	FindByLotNumber(ctx context.Context, lotNumber string) ([]*entity.StockLot, error)
	// ListByExpiry lotes de todos los productos dentro de la ventana, vencimiento más próximo primero.
	ListByExpiry(ctx context.Context, window ExpiryWindow) ([]*entity.StockLot, error)
	// StockByProduct suma current_stock de todos los lotes por producto.
	StockByProduct(ctx context.Context) (map[string]decimal.Decimal, error)
}
