package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
)

var (
	_ repository.LocationRepository        = (*LocationRepo)(nil)
	_ repository.LocationBalanceRepository = (*BalanceRepo)(nil)
)

// LocationRepo ubicaciones en memoria.
type LocationRepo struct {
	sess *session
}

func (r *LocationRepo) Create(_ context.Context, location *entity.Location) error {
	return r.sess.mutate(func() (func(), error) {
		if _, ok := r.sess.s.locations[location.ID]; ok {
			return nil, domain.ErrDuplicate
		}
		r.sess.s.locations[location.ID] = *location
		id := location.ID
		return func() { delete(r.sess.s.locations, id) }, nil
	})
}

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	r.sess.s.mu.RLock()
	defer r.sess.s.mu.RUnlock()
	l, ok := r.sess.s.locations[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *LocationRepo) List(_ context.Context) ([]*entity.Location, error) {
	r.sess.s.mu.RLock()
	list := make([]*entity.Location, 0, len(r.sess.s.locations))
	for _, l := range r.sess.s.locations {
		out := l
		list = append(list, &out)
	}
	r.sess.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// BalanceRepo saldos por (ubicación, lote) en memoria.
type BalanceRepo struct {
	sess *session
}

func balanceLockKey(locationID, lotID string) string { return "bal:" + locationID + ":" + lotID }

func (r *BalanceRepo) GetOrCreateForUpdate(ctx context.Context, locationID, lotID string) (*entity.LocationBalance, error) {
	if err := r.sess.lock(ctx, balanceLockKey(locationID, lotID)); err != nil {
		return nil, err
	}
	key := balanceKey{locationID: locationID, lotID: lotID}
	var out entity.LocationBalance
	err := r.sess.mutate(func() (func(), error) {
		if _, ok := r.sess.s.lots[lotID]; !ok {
			return nil, domain.ErrLotNotFound
		}
		if b, ok := r.sess.s.balances[key]; ok {
			out = b
			return nil, nil
		}
		out = entity.LocationBalance{LocationID: locationID, LotID: lotID, Quantity: decimal.Zero, UpdatedAt: time.Now()}
		r.sess.s.balances[key] = out
		return func() { delete(r.sess.s.balances, key) }, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Save escribe el saldo; si el lote ya no existe devuelve domain.ErrLotNotFound.
func (r *BalanceRepo) Save(_ context.Context, balance *entity.LocationBalance) error {
	key := balanceKey{locationID: balance.LocationID, lotID: balance.LotID}
	return r.sess.mutate(func() (func(), error) {
		if _, ok := r.sess.s.lots[balance.LotID]; !ok {
			return nil, domain.ErrLotNotFound
		}
		prev, existed := r.sess.s.balances[key]
		r.sess.s.balances[key] = *balance
		return func() {
			if existed {
				r.sess.s.balances[key] = prev
				return
			}
			delete(r.sess.s.balances, key)
		}, nil
	})
}

func (r *BalanceRepo) ListByLot(_ context.Context, lotID string) ([]*entity.LocationBalance, error) {
	r.sess.s.mu.RLock()
	var list []*entity.LocationBalance
	for k, b := range r.sess.s.balances {
		if k.lotID == lotID {
			out := b
			list = append(list, &out)
		}
	}
	r.sess.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].LocationID < list[j].LocationID })
	return list, nil
}
