package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-control/internal/application/dto"
	"github.com/jhoicas/stock-control/internal/application/inventory"
	"github.com/jhoicas/stock-control/internal/application/usecase"
)

// LocationHandler ubicaciones y saldos por ubicación (módulo location_tracking).
type LocationHandler struct {
	locations *usecase.LocationUseCase
	ledger    *inventory.LedgerUseCase
}

// NewLocationHandler construye el handler.
func NewLocationHandler(locations *usecase.LocationUseCase, ledger *inventory.LedgerUseCase) *LocationHandler {
	return &LocationHandler{locations: locations, ledger: ledger}
}

// Create godoc
// @Summary      Crear ubicación
// @Tags         locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLocationRequest  true  "name, description"
// @Success      201   {object}  dto.LocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/locations [post]
func (h *LocationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLocationRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.locations.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar ubicaciones
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LocationResponse
// @Router       /api/locations [get]
func (h *LocationHandler) List(c *fiber.Ctx) error {
	out, err := h.locations.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Transfer godoc
// @Summary      Transferir stock entre ubicaciones
// @Description  Origen y destino cambian en la misma transacción; el stock del lote no varía.
// @Tags         locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "lot_id, from_location_id, to_location_id, amount"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/locations/transfers [post]
func (h *LocationHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.ledger.Transfer(c.UserContext(), inventory.TransferInput{
		LotID:          in.LotID,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		Amount:         in.Amount,
		UserID:         GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TransferResponse{
		From:  dto.FromBalance(out.From),
		To:    dto.FromBalance(out.To),
		Entry: dto.FromEntry(out.Entry),
	})
}

// AddStock godoc
// @Summary      Sumar stock a una ubicación
// @Description  Suma al saldo de la ubicación y al stock del lote en una transacción.
// @Tags         locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddLocationStockRequest  true  "lot_id, location_id, quantity"
// @Success      200   {object}  dto.AddLocationStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/locations/stock [post]
func (h *LocationHandler) AddStock(c *fiber.Ctx) error {
	var in dto.AddLocationStockRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.ledger.AddLocationStock(c.UserContext(), inventory.AddLocationStockInput{
		LotID:      in.LotID,
		LocationID: in.LocationID,
		Quantity:   in.Quantity,
		UserID:     GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.AddLocationStockResponse{
		Lot:     dto.FromLot(out.Lot),
		Balance: dto.FromBalance(out.Balance),
	})
}

// Balances godoc
// @Summary      Saldos por ubicación de un lote
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        lot_id  query  string  true  "ID del lote"
// @Success      200  {array}  dto.LocationBalanceResponse
// @Router       /api/locations/balances [get]
func (h *LocationHandler) Balances(c *fiber.Ctx) error {
	balances, err := h.ledger.Balances(c.UserContext(), c.Query("lot_id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.LocationBalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, dto.FromBalance(b))
	}
	return c.JSON(out)
}
