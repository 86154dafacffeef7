package scan

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
)

// Motivos legibles de un fallo de resolución.
const (
	ReasonNoProduct     = "no product"
	ReasonNoMatchingLot = "no matching lot"
)

// ProductFinder búsquedas de producto que necesita el resolvedor.
type ProductFinder interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
}

// LotFinder búsquedas de lote que necesita el resolvedor.
type LotFinder interface {
	ListByProduct(ctx context.Context, productID string, filter repository.LotFilter) ([]*entity.StockLot, error)
	FindByLotNumber(ctx context.Context, lotNumber string) ([]*entity.StockLot, error)
}

// ProductLotStore agrupa las búsquedas de solo lectura del catálogo y los lotes.
type ProductLotStore struct {
	Products ProductFinder
	Lots     LotFinder
}

// Resolution producto (y lote, si lo hay) al que apunta un escaneo.
type Resolution struct {
	Product     *entity.Product
	Lot         *entity.StockLot // nil si el producto no tiene lotes y no se pidió uno concreto
	MatchedCode string           // candidato que encontró el producto; vacío si se llegó por lote
	ByLot       bool             // resuelto por búsqueda de número de lote
}

// ResolutionError fallo ordinario de resolución (no encontrado). Err es
// domain.ErrProductNotFound o domain.ErrLotNotFound.
type ResolutionError struct {
	Err     error
	Reason  string
	Product *entity.Product // producto encontrado cuando lo que falta es el lote
}

func (e *ResolutionError) Error() string {
	if e.Product != nil {
		return fmt.Sprintf("%s (%s)", e.Reason, e.Product.ProductCode)
	}
	return e.Reason
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Resolver traduce una Query a producto y lote. Solo lectura; seguro para uso concurrente.
type Resolver struct {
	store ProductLotStore
}

// NewResolver construye el resolvedor.
func NewResolver(store ProductLotStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve prueba los códigos candidatos en orden; si ninguno existe y hay número
// de lote, busca el lote en todo el almacén. Con producto resuelto, acota sus lotes
// por número y/o vencimiento y toma el primero en orden de almacén.
func (r *Resolver) Resolve(ctx context.Context, q Query) (*Resolution, error) {
	for _, code := range CandidateCodes(q) {
		product, err := r.store.Products.GetByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("resolve product %q: %w", code, err)
		}
		if product != nil {
			return r.narrowLots(ctx, product, code, q)
		}
	}

	if q.LotNumber != "" {
		lots, err := r.store.Lots.FindByLotNumber(ctx, q.LotNumber)
		if err != nil {
			return nil, fmt.Errorf("resolve lot %q: %w", q.LotNumber, err)
		}
		if len(lots) > 0 {
			lot := lots[0]
			product, err := r.store.Products.GetByID(ctx, lot.ProductID)
			if err != nil {
				return nil, fmt.Errorf("resolve lot product: %w", err)
			}
			if product != nil {
				return &Resolution{Product: product, Lot: lot, ByLot: true}, nil
			}
		}
	}
	return nil, &ResolutionError{Err: domain.ErrProductNotFound, Reason: ReasonNoProduct}
}

func (r *Resolver) narrowLots(ctx context.Context, product *entity.Product, code string, q Query) (*Resolution, error) {
	filter := repository.LotFilter{LotNumber: q.LotNumber, ExpiryDate: q.Expiry}
	lots, err := r.store.Lots.ListByProduct(ctx, product.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	res := &Resolution{Product: product, MatchedCode: code}
	if len(lots) > 0 {
		res.Lot = lots[0]
		return res, nil
	}
	if filter.LotNumber != "" || filter.ExpiryDate != nil {
		return nil, &ResolutionError{Err: domain.ErrLotNotFound, Reason: ReasonNoMatchingLot, Product: product}
	}
	return res, nil
}
