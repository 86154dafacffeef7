package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
)

// LowStockItem producto por debajo de su umbral de reposición.
type LowStockItem struct {
	Product        *entity.Product
	CurrentStock   decimal.Decimal
	Deficit        decimal.Decimal
	ThresholdUnset bool       // umbral 0: dato a revisar, no "sin reposición"
	NextExpiry     *time.Time // vencimiento más próximo entre sus lotes; nil sin lotes
}

// LowStockUseCase genera la lista de reposición sumando el stock de todos los lotes.
type LowStockUseCase struct {
	products repository.ProductRepository
	lots     repository.StockLotRepository
}

// NewLowStockUseCase construye el caso de uso de reposición.
func NewLowStockUseCase(products repository.ProductRepository, lots repository.StockLotRepository) *LowStockUseCase {
	return &LowStockUseCase{products: products, lots: lots}
}

// Report devuelve los productos con stock total menor que su umbral, mayor déficit
// primero, seguidos de los productos sin umbral configurado.
func (uc *LowStockUseCase) Report(ctx context.Context) ([]LowStockItem, error) {
	totals, err := uc.lots.StockByProduct(ctx)
	if err != nil {
		return nil, err
	}

	var items []LowStockItem
	const pageSize = 500
	for offset := 0; ; offset += pageSize {
		page, err := uc.products.List(ctx, repository.ProductFilter{Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		for _, p := range page {
			stock := totals[p.ID]
			if p.ReorderThreshold <= 0 {
				items = append(items, LowStockItem{Product: p, CurrentStock: stock, Deficit: decimal.Zero, ThresholdUnset: true})
				continue
			}
			threshold := decimal.NewFromInt(int64(p.ReorderThreshold))
			if stock.LessThan(threshold) {
				items = append(items, LowStockItem{Product: p, CurrentStock: stock, Deficit: threshold.Sub(stock)})
			}
		}
		if len(page) < pageSize {
			break
		}
	}

	for i := range items {
		next, err := uc.nextExpiry(ctx, items[i].Product.ID)
		if err != nil {
			return nil, err
		}
		items[i].NextExpiry = next
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ThresholdUnset != b.ThresholdUnset {
			return !a.ThresholdUnset
		}
		if !a.Deficit.Equal(b.Deficit) {
			return a.Deficit.GreaterThan(b.Deficit)
		}
		return a.Product.ProductCode < b.Product.ProductCode
	})
	if items == nil {
		items = []LowStockItem{}
	}
	return items, nil
}

// nextExpiry toma el último lote en orden de almacén (vencimiento DESC).
func (uc *LowStockUseCase) nextExpiry(ctx context.Context, productID string) (*time.Time, error) {
	lots, err := uc.lots.ListByProduct(ctx, productID, repository.LotFilter{})
	if err != nil {
		return nil, err
	}
	if len(lots) == 0 {
		return nil, nil
	}
	exp := lots[len(lots)-1].ExpiryDate
	return &exp, nil
}
