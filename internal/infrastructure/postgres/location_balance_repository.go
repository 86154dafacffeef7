package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
)

var _ repository.LocationBalanceRepository = (*LocationBalanceRepo)(nil)

// LocationBalanceRepo saldos (ubicación, lote) sobre PostgreSQL (usable con pool o tx).
type LocationBalanceRepo struct {
	q Querier
}

// NewLocationBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewLocationBalanceRepository(q Querier) *LocationBalanceRepo {
	return &LocationBalanceRepo{q: q}
}

// GetOrCreateForUpdate crea la fila con cantidad 0 si no existe y la bloquea (SELECT FOR UPDATE).
func (r *LocationBalanceRepo) GetOrCreateForUpdate(ctx context.Context, locationID, lotID string) (*entity.LocationBalance, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO location_balances (location_id, lot_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (location_id, lot_id) DO NOTHING`, locationID, lotID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrLotNotFound
		}
		return nil, wrap("ensure location balance", err)
	}
	var b entity.LocationBalance
	err = r.q.QueryRow(ctx, `
		SELECT location_id, lot_id, quantity, updated_at
		FROM location_balances WHERE location_id = $1 AND lot_id = $2
		FOR UPDATE`, locationID, lotID).Scan(&b.LocationID, &b.LotID, &b.Quantity, &b.UpdatedAt)
	if err != nil {
		return nil, wrap("get location balance for update", err)
	}
	return &b, nil
}

// Save escribe la cantidad del saldo (la fila ya está bloqueada por GetOrCreateForUpdate).
func (r *LocationBalanceRepo) Save(ctx context.Context, balance *entity.LocationBalance) error {
	query := `
		INSERT INTO location_balances (location_id, lot_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (location_id, lot_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	if _, err := r.q.Exec(ctx, query, balance.LocationID, balance.LotID, balance.Quantity, balance.UpdatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrLotNotFound
		}
		return wrap("save location balance", err)
	}
	return nil
}

// ListByLot saldos de un lote por ubicación.
func (r *LocationBalanceRepo) ListByLot(ctx context.Context, lotID string) ([]*entity.LocationBalance, error) {
	rows, err := r.q.Query(ctx, `
		SELECT location_id, lot_id, quantity, updated_at
		FROM location_balances WHERE lot_id = $1 ORDER BY location_id`, lotID)
	if err != nil {
		return nil, wrap("list location balances", err)
	}
	defer rows.Close()
	var list []*entity.LocationBalance
	for rows.Next() {
		var b entity.LocationBalance
		if err := rows.Scan(&b.LocationID, &b.LotID, &b.Quantity, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan location balance: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
