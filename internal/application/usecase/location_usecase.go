package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-control/internal/application/dto"
	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
)

// LocationUseCase alta y listado de ubicaciones físicas.
type LocationUseCase struct {
	repo repository.LocationRepository
	caps domain.Capabilities
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository, caps domain.Capabilities) *LocationUseCase {
	return &LocationUseCase{repo: repo, caps: caps}
}

// Create crea una ubicación activa.
func (uc *LocationUseCase) Create(ctx context.Context, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if !uc.caps.Enabled(domain.ModuleLocationTracking) {
		return nil, domain.ErrModuleDisabled
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	loc := &entity.Location{ID: uuid.New().String(), Name: name, Description: in.Description, IsActive: true}
	if err := uc.repo.Create(ctx, loc); err != nil {
		return nil, err
	}
	out := dto.FromLocation(loc)
	return &out, nil
}

// List todas las ubicaciones por nombre.
func (uc *LocationUseCase) List(ctx context.Context) ([]dto.LocationResponse, error) {
	if !uc.caps.Enabled(domain.ModuleLocationTracking) {
		return nil, domain.ErrModuleDisabled
	}
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		out = append(out, dto.FromLocation(l))
	}
	return out, nil
}
