package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
)

var _ repository.StockLotRepository = (*LotRepo)(nil)

const lotColumns = `id, product_id, lot_number, expiry_date, current_stock, units_per_quantity, accumulated_partial, feature, created_at, updated_at`

// Orden de almacén: vencimiento más lejano primero.
const lotOrder = ` ORDER BY expiry_date DESC, created_at DESC`

// LotRepo implementación de StockLotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

func scanLot(row pgx.Row) (*entity.StockLot, error) {
	var l entity.StockLot
	err := row.Scan(&l.ID, &l.ProductID, &l.LotNumber, &l.ExpiryDate, &l.CurrentStock,
		&l.UnitsPerQuantity, &l.AccumulatedPartial, &l.Feature, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func collectLots(rows pgx.Rows) ([]*entity.StockLot, error) {
	defer rows.Close()
	var list []*entity.StockLot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// Create inserta el lote. (producto, lote, vencimiento) es único: ErrDuplicate si ya existe.
func (r *LotRepo) Create(ctx context.Context, lot *entity.StockLot) error {
	query := `
		INSERT INTO stock_lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.ProductID, lot.LotNumber, lot.ExpiryDate, lot.CurrentStock,
		lot.UnitsPerQuantity, lot.AccumulatedPartial, lot.Feature, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert lot", err)
	}
	return nil
}

func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.StockLot, error) {
	return r.getOne(ctx, `SELECT `+lotColumns+` FROM stock_lots WHERE id = $1`, "get lot", id)
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockLot, error) {
	return r.getOne(ctx, `SELECT `+lotColumns+` FROM stock_lots WHERE id = $1 FOR UPDATE`, "get lot for update", id)
}

func (r *LotRepo) getOne(ctx context.Context, query, op, id string) (*entity.StockLot, error) {
	l, err := scanLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap(op, err)
	}
	return l, nil
}

func (r *LotRepo) UpdateQuantities(ctx context.Context, lot *entity.StockLot) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE stock_lots SET current_stock = $2, accumulated_partial = $3, updated_at = $4 WHERE id = $1`,
		lot.ID, lot.CurrentStock, lot.AccumulatedPartial, lot.UpdatedAt,
	)
	if err != nil {
		return wrap("update lot quantities", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLotNotFound
	}
	return nil
}

func (r *LotRepo) UpdateSettings(ctx context.Context, lot *entity.StockLot) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE stock_lots SET units_per_quantity = $2, feature = $3, updated_at = $4 WHERE id = $1`,
		lot.ID, lot.UnitsPerQuantity, lot.Feature, lot.UpdatedAt,
	)
	if err != nil {
		return wrap("update lot settings", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLotNotFound
	}
	return nil
}

// Delete elimina el lote; saldos y controles de calidad caen en cascada.
func (r *LotRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_lots WHERE id = $1`, id); err != nil {
		return wrap("delete lot", err)
	}
	return nil
}

func (r *LotRepo) ListByProduct(ctx context.Context, productID string, filter repository.LotFilter) ([]*entity.StockLot, error) {
	query := `
		SELECT ` + lotColumns + ` FROM stock_lots
		WHERE product_id = $1
		  AND ($2 = '' OR lower(lot_number) = lower($2))
		  AND ($3::date IS NULL OR expiry_date = $3::date)` + lotOrder
	rows, err := r.q.Query(ctx, query, productID, filter.LotNumber, filter.ExpiryDate)
	if err != nil {
		return nil, wrap("list lots by product", err)
	}
	return collectLots(rows)
}

func (r *LotRepo) FindByLotNumber(ctx context.Context, lotNumber string) ([]*entity.StockLot, error) {
	rows, err := r.q.Query(ctx, `SELECT `+lotColumns+` FROM stock_lots WHERE lower(lot_number) = lower($1)`+lotOrder, lotNumber)
	if err != nil {
		return nil, wrap("find lots by number", err)
	}
	return collectLots(rows)
}

// ListByExpiry lotes con vencimiento en [From, Before), el más próximo primero.
func (r *LotRepo) ListByExpiry(ctx context.Context, window repository.ExpiryWindow) ([]*entity.StockLot, error) {
	query := `
		SELECT ` + lotColumns + ` FROM stock_lots
		WHERE ($1::date IS NULL OR expiry_date >= $1::date)
		  AND ($2::date IS NULL OR expiry_date < $2::date)
		ORDER BY expiry_date, created_at`
	rows, err := r.q.Query(ctx, query, window.From, window.Before)
	if err != nil {
		return nil, wrap("list lots by expiry", err)
	}
	return collectLots(rows)
}

func (r *LotRepo) StockByProduct(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `SELECT product_id, COALESCE(SUM(current_stock), 0) FROM stock_lots GROUP BY product_id`)
	if err != nil {
		return nil, wrap("stock by product", err)
	}
	defer rows.Close()
	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var id string
		var total decimal.Decimal
		if err := rows.Scan(&id, &total); err != nil {
			return nil, fmt.Errorf("scan stock total: %w", err)
		}
		out[id] = total
	}
	return out, rows.Err()
}
