package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo órdenes de compra en memoria.
type PurchaseOrderRepo struct {
	sess *session
}

func poKey(id string) string { return "po:" + id }

func (r *PurchaseOrderRepo) Create(_ context.Context, order *entity.PurchaseOrder) error {
	return r.sess.mutate(func() (func(), error) {
		if _, ok := r.sess.s.orders[order.ID]; ok {
			return nil, domain.ErrDuplicate
		}
		r.sess.s.orders[order.ID] = *order
		id := order.ID
		return func() { delete(r.sess.s.orders, id) }, nil
	})
}

func (r *PurchaseOrderRepo) get(id string) *entity.PurchaseOrder {
	r.sess.s.mu.RLock()
	defer r.sess.s.mu.RUnlock()
	po, ok := r.sess.s.orders[id]
	if !ok {
		return nil
	}
	return &po
}

func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	if err := r.sess.lock(ctx, poKey(id)); err != nil {
		return nil, err
	}
	return r.get(id), nil
}

func (r *PurchaseOrderRepo) FirstOpenForLot(ctx context.Context, lotID string) (*entity.PurchaseOrder, error) {
	r.sess.s.mu.RLock()
	var open []entity.PurchaseOrder
	for _, po := range r.sess.s.orders {
		if po.LotID != nil && *po.LotID == lotID && po.IsOpen() {
			open = append(open, po)
		}
	}
	r.sess.s.mu.RUnlock()
	sort.Slice(open, func(i, j int) bool { return open[i].OrderDate.Before(open[j].OrderDate) })

	for _, candidate := range open {
		po, err := r.GetForUpdate(ctx, candidate.ID)
		if err != nil {
			return nil, err
		}
		if po != nil && po.IsOpen() {
			return po, nil
		}
	}
	return nil, nil
}

func (r *PurchaseOrderRepo) Update(_ context.Context, order *entity.PurchaseOrder) error {
	return r.sess.mutate(func() (func(), error) {
		prev, ok := r.sess.s.orders[order.ID]
		if !ok {
			return nil, domain.ErrNotFound
		}
		r.sess.s.orders[order.ID] = *order
		return func() { r.sess.s.orders[prev.ID] = prev }, nil
	})
}

func (r *PurchaseOrderRepo) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.sess.mutate(func() (func(), error) {
		var changed []entity.PurchaseOrder
		for id, po := range r.sess.s.orders {
			if po.Status == entity.POStatusOrdered && po.ExpectedDelivery.Before(now) {
				changed = append(changed, po)
				po.Status = entity.POStatusDelayed
				r.sess.s.orders[id] = po
				n++
			}
		}
		return func() {
			for _, po := range changed {
				r.sess.s.orders[po.ID] = po
			}
		}, nil
	})
	return n, err
}

func (r *PurchaseOrderRepo) List(_ context.Context, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	r.sess.s.mu.RLock()
	var list []*entity.PurchaseOrder
	for _, po := range r.sess.s.orders {
		if status != "" && po.Status != status {
			continue
		}
		out := po
		list = append(list, &out)
	}
	r.sess.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].OrderDate.After(list[j].OrderDate) })
	return page(list, limit, offset), nil
}
