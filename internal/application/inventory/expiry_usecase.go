package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
)

// ExpiryRange ventana del reporte de vencimientos.
type ExpiryRange string

const (
	ExpiryRangeExpired ExpiryRange = "now"   // vencidos antes de hoy
	ExpiryRangeWeek    ExpiryRange = "week"  // de hoy a hoy+7
	ExpiryRangeMonth   ExpiryRange = "month" // de hoy a hoy+30
)

var expiryRangeDays = map[ExpiryRange]int{
	ExpiryRangeWeek:  7,
	ExpiryRangeMonth: 30,
}

// ExpiringLot lote del reporte con su producto.
type ExpiringLot struct {
	Lot      *entity.StockLot
	Product  *entity.Product
	DaysLeft int // negativo si ya venció
}

// ExpiryUseCase reporte de lotes vencidos o por vencer.
type ExpiryUseCase struct {
	products repository.ProductRepository
	lots     repository.StockLotRepository
	now      func() time.Time
}

// NewExpiryUseCase construye el caso de uso.
func NewExpiryUseCase(products repository.ProductRepository, lots repository.StockLotRepository) *ExpiryUseCase {
	return &ExpiryUseCase{products: products, lots: lots, now: time.Now}
}

// Report devuelve los lotes de la ventana pedida, el vencimiento más próximo primero.
// Rango vacío equivale a ExpiryRangeExpired.
func (uc *ExpiryUseCase) Report(ctx context.Context, rng ExpiryRange) ([]ExpiringLot, error) {
	today := today(uc.now())
	var window repository.ExpiryWindow
	switch rng {
	case "", ExpiryRangeExpired:
		window.Before = &today
	case ExpiryRangeWeek, ExpiryRangeMonth:
		upper := today.AddDate(0, 0, expiryRangeDays[rng]+1)
		window.From, window.Before = &today, &upper
	default:
		return nil, domain.ErrInvalidInput
	}

	lots, err := uc.lots.ListByExpiry(ctx, window)
	if err != nil {
		return nil, err
	}
	products := make(map[string]*entity.Product)
	out := make([]ExpiringLot, 0, len(lots))
	for _, l := range lots {
		p, ok := products[l.ProductID]
		if !ok {
			if p, err = uc.products.GetByID(ctx, l.ProductID); err != nil {
				return nil, err
			}
			products[l.ProductID] = p
		}
		if p == nil {
			continue
		}
		y, m, d := l.ExpiryDate.Date()
		expiry := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		out = append(out, ExpiringLot{Lot: l, Product: p, DaysLeft: int(expiry.Sub(today).Hours() / 24)})
	}
	return out, nil
}
