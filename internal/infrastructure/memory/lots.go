package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
)

var _ repository.StockLotRepository = (*LotRepo)(nil)

// LotRepo lotes en memoria.
type LotRepo struct {
	sess *session
}

func lotKey(id string) string { return "lot:" + id }

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// storeOrder: vencimiento DESC, creación DESC.
func storeOrder(list []*entity.StockLot) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].ExpiryDate.Equal(list[j].ExpiryDate) {
			return list[i].ExpiryDate.After(list[j].ExpiryDate)
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

// Create inserta el lote y lo deja bloqueado por la transacción que lo crea.
func (r *LotRepo) Create(ctx context.Context, lot *entity.StockLot) error {
	if err := r.sess.lock(ctx, lotKey(lot.ID)); err != nil {
		return err
	}
	return r.sess.mutate(func() (func(), error) {
		for _, l := range r.sess.s.lots {
			if l.ProductID == lot.ProductID && strings.EqualFold(l.LotNumber, lot.LotNumber) && sameDay(l.ExpiryDate, lot.ExpiryDate) {
				return nil, domain.ErrDuplicate
			}
		}
		r.sess.s.lots[lot.ID] = *lot
		id := lot.ID
		return func() { delete(r.sess.s.lots, id) }, nil
	})
}

func (r *LotRepo) GetByID(_ context.Context, id string) (*entity.StockLot, error) {
	r.sess.s.mu.RLock()
	defer r.sess.s.mu.RUnlock()
	l, ok := r.sess.s.lots[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

// GetForUpdate espera el bloqueo de la fila y relee el lote.
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockLot, error) {
	if err := r.sess.lock(ctx, lotKey(id)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *LotRepo) UpdateQuantities(_ context.Context, lot *entity.StockLot) error {
	return r.sess.mutate(func() (func(), error) {
		prev, ok := r.sess.s.lots[lot.ID]
		if !ok {
			return nil, domain.ErrLotNotFound
		}
		next := prev
		next.CurrentStock = lot.CurrentStock
		next.AccumulatedPartial = lot.AccumulatedPartial
		next.UpdatedAt = lot.UpdatedAt
		r.sess.s.lots[lot.ID] = next
		return func() { r.sess.s.lots[prev.ID] = prev }, nil
	})
}

func (r *LotRepo) UpdateSettings(_ context.Context, lot *entity.StockLot) error {
	return r.sess.mutate(func() (func(), error) {
		prev, ok := r.sess.s.lots[lot.ID]
		if !ok {
			return nil, domain.ErrLotNotFound
		}
		next := prev
		next.UnitsPerQuantity = lot.UnitsPerQuantity
		next.Feature = lot.Feature
		next.UpdatedAt = lot.UpdatedAt
		r.sess.s.lots[lot.ID] = next
		return func() { r.sess.s.lots[prev.ID] = prev }, nil
	})
}

// Delete elimina el lote y sus saldos por ubicación. Toma antes el bloqueo del lote y
// el de cada saldo (en orden de clave) para no borrar una fila que otra transacción
// tiene bloqueada.
func (r *LotRepo) Delete(ctx context.Context, id string) error {
	if err := r.sess.lock(ctx, lotKey(id)); err != nil {
		return err
	}
	for _, key := range r.balanceLockKeys(id) {
		if err := r.sess.lock(ctx, key); err != nil {
			return err
		}
	}
	return r.sess.mutate(func() (func(), error) {
		prev, ok := r.sess.s.lots[id]
		if !ok {
			return nil, nil
		}
		delete(r.sess.s.lots, id)
		var removed []entity.LocationBalance
		for k, b := range r.sess.s.balances {
			if k.lotID == id {
				removed = append(removed, b)
				delete(r.sess.s.balances, k)
			}
		}
		return func() {
			r.sess.s.lots[prev.ID] = prev
			for _, b := range removed {
				r.sess.s.balances[balanceKey{locationID: b.LocationID, lotID: b.LotID}] = b
			}
		}, nil
	})
}

func (r *LotRepo) balanceLockKeys(lotID string) []string {
	r.sess.s.mu.RLock()
	var keys []string
	for k := range r.sess.s.balances {
		if k.lotID == lotID {
			keys = append(keys, balanceLockKey(k.locationID, k.lotID))
		}
	}
	r.sess.s.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

func (r *LotRepo) ListByProduct(_ context.Context, productID string, filter repository.LotFilter) ([]*entity.StockLot, error) {
	r.sess.s.mu.RLock()
	var list []*entity.StockLot
	for _, l := range r.sess.s.lots {
		if l.ProductID != productID {
			continue
		}
		if filter.LotNumber != "" && !strings.EqualFold(l.LotNumber, filter.LotNumber) {
			continue
		}
		if filter.ExpiryDate != nil && !sameDay(l.ExpiryDate, *filter.ExpiryDate) {
			continue
		}
		out := l
		list = append(list, &out)
	}
	r.sess.s.mu.RUnlock()
	storeOrder(list)
	return list, nil
}

func (r *LotRepo) FindByLotNumber(_ context.Context, lotNumber string) ([]*entity.StockLot, error) {
	r.sess.s.mu.RLock()
	var list []*entity.StockLot
	for _, l := range r.sess.s.lots {
		if strings.EqualFold(l.LotNumber, lotNumber) {
			out := l
			list = append(list, &out)
		}
	}
	r.sess.s.mu.RUnlock()
	storeOrder(list)
	return list, nil
}

// ListByExpiry vencimiento ASC, creación ASC.
func (r *LotRepo) ListByExpiry(_ context.Context, window repository.ExpiryWindow) ([]*entity.StockLot, error) {
	r.sess.s.mu.RLock()
	var list []*entity.StockLot
	for _, l := range r.sess.s.lots {
		if window.From != nil && l.ExpiryDate.Before(*window.From) {
			continue
		}
		if window.Before != nil && !l.ExpiryDate.Before(*window.Before) {
			continue
		}
		out := l
		list = append(list, &out)
	}
	r.sess.s.mu.RUnlock()
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].ExpiryDate.Equal(list[j].ExpiryDate) {
			return list[i].ExpiryDate.Before(list[j].ExpiryDate)
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (r *LotRepo) StockByProduct(_ context.Context) (map[string]decimal.Decimal, error) {
	r.sess.s.mu.RLock()
	defer r.sess.s.mu.RUnlock()
	out := make(map[string]decimal.Decimal)
	for _, l := range r.sess.s.lots {
		out[l.ProductID] = out[l.ProductID].Add(l.CurrentStock)
	}
	return out, nil
}
