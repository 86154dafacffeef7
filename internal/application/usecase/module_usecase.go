package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-control/internal/domain"
)

// ModuleService verifica qué módulos opcionales están activos en esta instalación.
// Es el único punto de la capa HTTP que conoce la activación de módulos.
type ModuleService struct {
	caps domain.Capabilities
}

// NewModuleService construye el servicio de módulos.
func NewModuleService(caps domain.Capabilities) *ModuleService {
	return &ModuleService{caps: caps}
}

// HasActiveModule informa si el módulo está activo.
// Devuelve error solo si el nombre de módulo está vacío.
func (s *ModuleService) HasActiveModule(_ context.Context, moduleName string) (bool, error) {
	if moduleName == "" {
		return false, fmt.Errorf("module: moduleName es obligatorio")
	}
	return s.caps.Enabled(domain.Module(moduleName)), nil
}

// Modules flags de todos los módulos, para /health.
func (s *ModuleService) Modules() map[string]bool {
	return s.caps.Flags()
}
