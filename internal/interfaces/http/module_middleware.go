package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-control/internal/application/dto"
	"github.com/jhoicas/stock-control/internal/domain"
)

// moduleChecker es el contrato mínimo que necesita el middleware para verificar módulos.
// Lo implementa *usecase.ModuleService.
type moduleChecker interface {
	HasActiveModule(ctx context.Context, moduleName string) (bool, error)
}

// RequireModule corta con 403 las rutas de un módulo inactivo en esta instalación.
// Los casos de uso vuelven a comprobarlo; el middleware evita parsear cuerpos en vano.
func RequireModule(module domain.Module, checker moduleChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		active, err := checker.HasActiveModule(c.UserContext(), string(module))
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "MODULE_CHECK_FAILED",
				Message: "no se pudo verificar el módulo, intente más tarde",
			})
		}
		if !active {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "MODULE_DISABLED",
				Message: "el módulo '" + string(module) + "' no está activo",
			})
		}
		return c.Next()
	}
}
