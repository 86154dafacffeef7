package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo asientos en memoria (solo inserción).
type LedgerRepo struct {
	sess *session
}

func (r *LedgerRepo) Create(_ context.Context, entry *entity.LedgerEntry) error {
	return r.sess.mutate(func() (func(), error) {
		r.sess.s.ledger = append(r.sess.s.ledger, *entry)
		id := entry.ID
		return func() {
			for i := len(r.sess.s.ledger) - 1; i >= 0; i-- {
				if r.sess.s.ledger[i].ID == id {
					r.sess.s.ledger = append(r.sess.s.ledger[:i], r.sess.s.ledger[i+1:]...)
					return
				}
			}
		}, nil
	})
}

func (r *LedgerRepo) ListByLot(_ context.Context, lotID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	r.sess.s.mu.RLock()
	var list []*entity.LedgerEntry
	for i := len(r.sess.s.ledger) - 1; i >= 0; i-- {
		if r.sess.s.ledger[i].LotID == lotID {
			out := r.sess.s.ledger[i]
			list = append(list, &out)
		}
	}
	r.sess.s.mu.RUnlock()
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}

func (r *LedgerRepo) List(_ context.Context, filter repository.LedgerFilter, limit, offset int) ([]*entity.LedgerEntry, error) {
	r.sess.s.mu.RLock()
	var list []*entity.LedgerEntry
	for i := len(r.sess.s.ledger) - 1; i >= 0; i-- {
		e := r.sess.s.ledger[i]
		if filter.Kind != "" && e.Kind != filter.Kind {
			continue
		}
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		list = append(list, &e)
	}
	r.sess.s.mu.RUnlock()
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}
