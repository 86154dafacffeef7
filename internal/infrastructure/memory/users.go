package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria.
type UserRepo struct {
	sess *session
}

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	return r.sess.mutate(func() (func(), error) {
		for _, u := range r.sess.s.users {
			if strings.EqualFold(u.Email, user.Email) {
				return nil, domain.ErrDuplicate
			}
		}
		r.sess.s.users[user.ID] = *user
		id := user.ID
		return func() { delete(r.sess.s.users, id) }, nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.sess.s.mu.RLock()
	defer r.sess.s.mu.RUnlock()
	u, ok := r.sess.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.sess.s.mu.RLock()
	defer r.sess.s.mu.RUnlock()
	for _, u := range r.sess.s.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}
