package repository

import (
	"context"

	"github.com/jhoicas/stock-control/internal/domain/entity"
)

// LocationRepository puerto de persistencia de ubicaciones físicas.
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	List(ctx context.Context) ([]*entity.Location, error)
}

// LocationBalanceRepository saldos por (ubicación, lote).
type LocationBalanceRepository interface {
	// GetOrCreateForUpdate crea la fila con cantidad 0 si no existe y la bloquea.
	GetOrCreateForUpdate(ctx context.Context, locationID, lotID string) (*entity.LocationBalance, error)
	Save(ctx context.Context, balance *entity.LocationBalance) error
	ListByLot(ctx context.Context, lotID string) ([]*entity.LocationBalance, error)
}
