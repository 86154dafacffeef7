package repository

import (
	"context"

	"github.com/jhoicas/stock-control/internal/domain/entity"
)

// LedgerFilter acota el historial global. Campos vacíos no filtran.
type LedgerFilter struct {
	Kind   string
	UserID string
}

// LedgerRepository registro de auditoría de mutaciones de stock (solo inserción).
type LedgerRepository interface {
	Create(ctx context.Context, entry *entity.LedgerEntry) error
	// ListByLot devuelve los asientos del lote, más recientes primero.
	ListByLot(ctx context.Context, lotID string, limit, offset int) ([]*entity.LedgerEntry, error)
	// List devuelve asientos de todos los lotes, más recientes primero.
	List(ctx context.Context, filter LedgerFilter, limit, offset int) ([]*entity.LedgerEntry, error)
}
