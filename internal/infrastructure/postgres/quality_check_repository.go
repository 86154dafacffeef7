package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
)

var _ repository.QualityCheckRepository = (*QualityCheckRepo)(nil)

// QualityCheckRepo controles de calidad sobre PostgreSQL.
type QualityCheckRepo struct {
	q Querier
}

// NewQualityCheckRepository construye el adaptador. Pasar pool o tx (Querier).
func NewQualityCheckRepository(q Querier) *QualityCheckRepo {
	return &QualityCheckRepo{q: q}
}

func (r *QualityCheckRepo) Create(ctx context.Context, c *entity.QualityCheck) error {
	query := `
		INSERT INTO quality_checks (id, lot_id, performed_by, status, test_reference, result, signed_off_by, signed_off_at, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.LotID, c.PerformedBy, c.Status, c.TestReference, c.Result, c.SignedOffBy, c.SignedOffAt, c.Notes, c.CreatedAt,
	)
	if err != nil {
		return wrap("insert quality check", err)
	}
	return nil
}

// LatestByLots último control por lote (DISTINCT ON).
func (r *QualityCheckRepo) LatestByLots(ctx context.Context, lotIDs []string) (map[string]*entity.QualityCheck, error) {
	out := make(map[string]*entity.QualityCheck, len(lotIDs))
	if len(lotIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT DISTINCT ON (lot_id)
			id, lot_id, performed_by, status, test_reference, result, signed_off_by, signed_off_at, notes, created_at
		FROM quality_checks
		WHERE lot_id = ANY($1::uuid[])
		ORDER BY lot_id, created_at DESC`, lotIDs)
	if err != nil {
		return nil, wrap("latest quality checks", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c entity.QualityCheck
		if err := rows.Scan(&c.ID, &c.LotID, &c.PerformedBy, &c.Status, &c.TestReference, &c.Result,
			&c.SignedOffBy, &c.SignedOffAt, &c.Notes, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quality check: %w", err)
		}
		out[c.LotID] = &c
	}
	return out, rows.Err()
}
