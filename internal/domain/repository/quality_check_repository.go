package repository

import (
	"context"

	"github.com/jhoicas/stock-control/internal/domain/entity"
)

// QualityCheckRepository puerto de persistencia de controles de calidad.
type QualityCheckRepository interface {
	Create(ctx context.Context, check *entity.QualityCheck) error
	// LatestByLots devuelve el control más reciente de cada lote (clave: lot id).
	LatestByLots(ctx context.Context, lotIDs []string) (map[string]*entity.QualityCheck, error)
}
