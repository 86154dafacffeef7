package memory

import (
	"context"

	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
)

var _ repository.QualityCheckRepository = (*QualityCheckRepo)(nil)

// QualityCheckRepo controles de calidad en memoria.
type QualityCheckRepo struct {
	sess *session
}

func (r *QualityCheckRepo) Create(_ context.Context, check *entity.QualityCheck) error {
	return r.sess.mutate(func() (func(), error) {
		r.sess.s.checks = append(r.sess.s.checks, *check)
		n := len(r.sess.s.checks) - 1
		return func() { r.sess.s.checks = r.sess.s.checks[:n] }, nil
	})
}

func (r *QualityCheckRepo) LatestByLots(_ context.Context, lotIDs []string) (map[string]*entity.QualityCheck, error) {
	want := make(map[string]bool, len(lotIDs))
	for _, id := range lotIDs {
		want[id] = true
	}
	r.sess.s.mu.RLock()
	defer r.sess.s.mu.RUnlock()
	out := make(map[string]*entity.QualityCheck)
	for _, c := range r.sess.s.checks {
		if !want[c.LotID] {
			continue
		}
		// A igual fecha gana el último insertado.
		if cur, ok := out[c.LotID]; !ok || !c.CreatedAt.Before(cur.CreatedAt) {
			check := c
			out[c.LotID] = &check
		}
	}
	return out, nil
}
