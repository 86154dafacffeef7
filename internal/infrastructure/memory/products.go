package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo catálogo en memoria.
type ProductRepo struct {
	sess *session
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.sess.mutate(func() (func(), error) {
		for _, p := range r.sess.s.products {
			if strings.EqualFold(p.ProductCode, product.ProductCode) {
				return nil, domain.ErrDuplicate
			}
		}
		r.sess.s.products[product.ID] = *product
		id := product.ID
		return func() { delete(r.sess.s.products, id) }, nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.sess.s.mu.RLock()
	defer r.sess.s.mu.RUnlock()
	p, ok := r.sess.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	r.sess.s.mu.RLock()
	defer r.sess.s.mu.RUnlock()
	for _, p := range r.sess.s.products {
		if strings.EqualFold(p.ProductCode, code) {
			out := p
			return &out, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.sess.mutate(func() (func(), error) {
		prev, ok := r.sess.s.products[product.ID]
		if !ok {
			return nil, nil
		}
		next := *product
		next.ProductCode = prev.ProductCode
		next.CreatedAt = prev.CreatedAt
		r.sess.s.products[product.ID] = next
		return func() { r.sess.s.products[prev.ID] = prev }, nil
	})
}

func (r *ProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	r.sess.s.mu.RLock()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var list []*entity.Product
	for _, p := range r.sess.s.products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.ProductCode), search) &&
			!strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out := p
		list = append(list, &out)
	}
	r.sess.s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ProductCode < list[j].ProductCode
	})
	return page(list, filter.Limit, filter.Offset), nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
