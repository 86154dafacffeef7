package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-control/internal/application/dto"
	"github.com/jhoicas/stock-control/internal/application/usecase"
)

// QualityHandler controles de calidad (módulo quality_control).
type QualityHandler struct {
	uc *usecase.QualityUseCase
}

// NewQualityHandler construye el handler.
func NewQualityHandler(uc *usecase.QualityUseCase) *QualityHandler {
	return &QualityHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar control de calidad
// @Description  Con result (pass|fail) queda completado y firmado por el usuario del token.
// @Tags         quality
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateQualityCheckRequest  true  "lot_id, test_reference, result, notes"
// @Success      201   {object}  dto.QualityCheckResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/quality-checks [post]
func (h *QualityHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateQualityCheckRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// LotStatus godoc
// @Summary      Estado de calidad de los lotes de un producto
// @Tags         quality
// @Security     Bearer
// @Produce      json
// @Param        raw           query  string  false  "Texto escaneado"
// @Param        product_code  query  string  false  "Código elegido a mano"
// @Success      200  {object}  dto.ProductQCStatusResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/quality-checks/lot-status [get]
func (h *QualityHandler) LotStatus(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if err := parseQuery(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.LotStatus(c.UserContext(), scanInput(in))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
