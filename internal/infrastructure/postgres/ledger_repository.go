package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const ledgerColumns = `id, transaction_id, kind, lot_id, product_code, product_name, lot_number, expiry_date,
	quantity, parts_withdrawn, accumulated_partial_after, stock_after, from_location_id, to_location_id,
	barcode, user_id, created_at`

// LedgerRepo asientos del libro de cantidades (solo inserción).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador del libro. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Create inserta un asiento. lot_id no tiene FK: el historial sobrevive al descarte del lote.
func (r *LedgerRepo) Create(ctx context.Context, e *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.TransactionID, e.Kind, e.LotID, e.ProductCode, e.ProductName, e.LotNumber, e.ExpiryDate,
		e.Quantity, e.PartsWithdrawn, e.AccumulatedPartialAfter, e.StockAfter, e.FromLocationID, e.ToLocationID,
		e.Barcode, e.UserID, e.CreatedAt,
	)
	if err != nil {
		return wrap("insert ledger entry", err)
	}
	return nil
}

// ListByLot asientos de un lote, más recientes primero.
func (r *LedgerRepo) ListByLot(ctx context.Context, lotID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+ledgerColumns+` FROM ledger_entries
		WHERE lot_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`, lotID, limit, offset)
	if err != nil {
		return nil, wrap("list ledger entries", err)
	}
	return collectEntries(rows)
}

// List historial global filtrado por tipo y usuario, más recientes primero.
func (r *LedgerRepo) List(ctx context.Context, filter repository.LedgerFilter, limit, offset int) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+ledgerColumns+` FROM ledger_entries
		WHERE ($1 = '' OR kind = $1) AND ($2 = '' OR user_id::text = $2)
		ORDER BY created_at DESC, id LIMIT $3 OFFSET $4`, filter.Kind, filter.UserID, limit, offset)
	if err != nil {
		return nil, wrap("list ledger", err)
	}
	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]*entity.LedgerEntry, error) {
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		err := rows.Scan(&e.ID, &e.TransactionID, &e.Kind, &e.LotID, &e.ProductCode, &e.ProductName, &e.LotNumber,
			&e.ExpiryDate, &e.Quantity, &e.PartsWithdrawn, &e.AccumulatedPartialAfter, &e.StockAfter,
			&e.FromLocationID, &e.ToLocationID, &e.Barcode, &e.UserID, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
