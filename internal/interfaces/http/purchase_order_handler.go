package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-control/internal/application/dto"
	"github.com/jhoicas/stock-control/internal/application/inventory"
	"github.com/jhoicas/stock-control/internal/application/scan"
)

// PurchaseOrderHandler órdenes de compra (módulo purchase_orders).
type PurchaseOrderHandler struct {
	uc      *inventory.PurchaseOrderUseCase
	scanner *scan.UseCase
}

// NewPurchaseOrderHandler construye el handler.
func NewPurchaseOrderHandler(uc *inventory.PurchaseOrderUseCase, scanner *scan.UseCase) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{uc: uc, scanner: scanner}
}

// Create godoc
// @Summary      Crear orden de compra
// @Description  Sin lot_id se asocia el lote del producto que vence antes.
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "product_code, quantity_ordered, expected_delivery"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	expected, err := time.Parse("2006-01-02", in.ExpectedDelivery)
	if err != nil {
		return respondError(c, &requestError{code: "INVALID_INPUT", message: "expected_delivery: datetime"})
	}
	po, err := h.uc.Create(c.UserContext(), inventory.CreatePOInput{
		ProductCode:      in.ProductCode,
		LotID:            in.LotID,
		Quantity:         in.Quantity,
		ExpectedDelivery: expected,
		UserID:           GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromPurchaseOrder(po))
}

// List godoc
// @Summary      Listar órdenes de compra
// @Description  Antes de listar, las órdenes abiertas con entrega vencida pasan a DELAYED.
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "ORDERED, DELAYED o DELIVERED"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.PurchaseOrderResponse
// @Router       /api/purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.uc.List(c.UserContext(), c.Query("status"), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.PurchaseOrderResponse, 0, len(orders))
	for _, po := range orders {
		out = append(out, dto.FromPurchaseOrder(po))
	}
	return c.JSON(out)
}

// Complete godoc
// @Summary      Recibir mercancía escaneada
// @Description  Registra la cantidad en el lote escaneado y marca entregada su primera orden abierta.
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CompletePurchaseOrderRequest  true  "barcode + hints, quantity"
// @Success      200   {object}  dto.CompletePurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/complete [post]
func (h *PurchaseOrderHandler) Complete(c *fiber.Ctx) error {
	var in dto.CompletePurchaseOrderRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	interp, err := h.scanner.Interpret(scanInput(in.ScanRequest))
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Complete(c.UserContext(), inventory.CompleteInput{
		Query:    interp.Query,
		Quantity: in.Quantity,
		NewLot:   lotSettings(in.LotSettingsRequest),
		UserID:   GetUserID(c),
		Barcode:  in.Raw,
	})
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.CompletePurchaseOrderResponse{Stock: registerResponse(out.RegisterResult)}
	if out.Order != nil {
		po := dto.FromPurchaseOrder(out.Order)
		resp.Order = &po
	}
	return c.JSON(resp)
}

// Deliver godoc
// @Summary      Marcar orden como entregada
// @Description  Si la orden tiene lote, suma la cantidad pedida. Una orden entregada responde 409.
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/deliver [post]
func (h *PurchaseOrderHandler) Deliver(c *fiber.Ctx) error {
	po, err := h.uc.Deliver(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromPurchaseOrder(po))
}
