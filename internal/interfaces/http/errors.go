package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/stock-control/internal/application/dto"
	"github.com/jhoicas/stock-control/internal/application/scan"
	"github.com/jhoicas/stock-control/internal/domain"
)

// errorMapping traduce un error de dominio a status HTTP y código estable.
type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// El orden importa: ErrInsufficientLocationStock antes que el genérico.
var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "INVALID_INPUT", "datos inválidos"},
	{domain.ErrMalformedBarcode, fiber.StatusUnprocessableEntity, "MALFORMED_BARCODE", "código de barras sin estructura reconocible"},
	{domain.ErrProductNotFound, fiber.StatusNotFound, "PRODUCT_NOT_FOUND", "producto no encontrado"},
	{domain.ErrLotNotFound, fiber.StatusNotFound, "LOT_NOT_FOUND", "lote no encontrado"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "el recurso ya existe"},
	{domain.ErrInsufficientLocationStock, fiber.StatusConflict, "INSUFFICIENT_LOCATION_STOCK", "stock insuficiente en la ubicación de origen"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", "stock insuficiente"},
	{domain.ErrConcurrentModification, fiber.StatusConflict, "CONFLICT_RETRY", "modificación concurrente, reintente la operación"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "conflicto con el estado actual"},
	{domain.ErrModuleDisabled, fiber.StatusForbidden, "MODULE_DISABLED", "módulo no activo"},
	{domain.ErrUserNotFound, fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado"},
}

// respondError escribe la respuesta de error. Los errores no reconocidos se registran
// y salen como 500 sin detalle interno.
func respondError(c *fiber.Ctx, err error) error {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: reqErr.code, Message: reqErr.message})
	}
	var rerr *scan.ResolutionError
	if errors.As(err, &rerr) {
		code := "PRODUCT_NOT_FOUND"
		if errors.Is(rerr.Err, domain.ErrLotNotFound) {
			code = "LOT_NOT_FOUND"
		}
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: code, Message: rerr.Error()})
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.message})
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
