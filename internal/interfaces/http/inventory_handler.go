package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-control/internal/application/dto"
	"github.com/jhoicas/stock-control/internal/application/inventory"
	"github.com/jhoicas/stock-control/internal/application/scan"
	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-control/internal/domain/inventory"
)

// LabelGenerator genera el PDF de etiqueta de un lote.
type LabelGenerator interface {
	GenerateLotLabel(ctx context.Context, product *entity.Product, lot *entity.StockLot) ([]byte, error)
}

// InventoryHandler retiros, registros, historial y etiquetas de lotes (protegido).
type InventoryHandler struct {
	ledger   *inventory.LedgerUseCase
	lowStock *inventory.LowStockUseCase
	expiry   *inventory.ExpiryUseCase
	scanner  *scan.UseCase
	readers  inventory.Readers
	labels   LabelGenerator
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	ledger *inventory.LedgerUseCase,
	lowStock *inventory.LowStockUseCase,
	expiry *inventory.ExpiryUseCase,
	scanner *scan.UseCase,
	readers inventory.Readers,
	labels LabelGenerator,
) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, lowStock: lowStock, expiry: expiry, scanner: scanner, readers: readers, labels: labels}
}

// Withdraw godoc
// @Summary      Retirar stock de un lote
// @Description  El lote se indica por lot_id o por escaneo (barcode + hints). En modo part
//
//	se retiran partes de unidad; al completar una unidad se descuenta del stock.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.WithdrawRequest  true  "lot_id o barcode, mode, quantity, parts"
// @Success      200   {object}  dto.WithdrawResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/withdrawals [post]
func (h *InventoryHandler) Withdraw(c *fiber.Ctx) error {
	var in dto.WithdrawRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	ctx := c.UserContext()
	lotID := in.LotID
	if lotID == "" {
		res, err := h.scanner.DecodeAndResolve(ctx, scanInput(in.ScanRequest))
		if err != nil {
			return respondError(c, err)
		}
		if res.Lot == nil {
			return respondError(c, &scan.ResolutionError{Err: domain.ErrLotNotFound, Reason: scan.ReasonNoMatchingLot, Product: res.Product})
		}
		lotID = res.Lot.ID
	}
	out, err := h.ledger.Withdraw(ctx, inventory.WithdrawInput{
		LotID:    lotID,
		Mode:     domaininv.WithdrawalMode(in.Mode),
		Quantity: in.Quantity,
		Parts:    in.Parts,
		UserID:   GetUserID(c),
		Barcode:  in.Raw,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.WithdrawResponse{
		Lot:           dto.FromLot(out.Lot),
		UnitsConsumed: out.UnitsConsumed,
		Entry:         dto.FromEntry(out.Entry),
	})
}

// Register godoc
// @Summary      Registrar stock escaneado
// @Description  Suma la cantidad al lote (producto, lote, vencimiento); si no existe lo crea.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterStockRequest  true  "barcode + hints, quantity (por defecto 1), units_per_quantity y feature del lote nuevo"
// @Success      201   {object}  dto.RegisterStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/registrations [post]
func (h *InventoryHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterStockRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	interp, err := h.scanner.Interpret(scanInput(in.ScanRequest))
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.ledger.Register(c.UserContext(), inventory.RegisterInput{
		Query:    interp.Query,
		Quantity: in.Quantity,
		NewLot:   lotSettings(in.LotSettingsRequest),
		UserID:   GetUserID(c),
		Barcode:  in.Raw,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(registerResponse(out))
}

// LowStock godoc
// @Summary      Productos bajo umbral de reposición
// @Description  Mayor déficit primero; los productos sin umbral van al final con threshold_unset.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LowStockItemResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	items, err := h.lowStock.Report(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.LowStockItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.LowStockItemResponse{
			ProductID:        it.Product.ID,
			ProductCode:      it.Product.ProductCode,
			ProductName:      it.Product.Name,
			Supplier:         it.Product.Supplier,
			CurrentStock:     it.CurrentStock,
			ReorderThreshold: it.Product.ReorderThreshold,
			Deficit:          it.Deficit,
			ThresholdUnset:   it.ThresholdUnset,
			NextExpiry:       formatDate(it.NextExpiry),
		})
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}

// Expiring godoc
// @Summary      Lotes vencidos o por vencer
// @Description  range=now (vencidos), week (próximos 7 días) o month (próximos 30 días).
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        range  query  string  false  "now, week o month"  default(now)
// @Success      200  {array}  dto.ExpiringLotResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/expiring [get]
func (h *InventoryHandler) Expiring(c *fiber.Ctx) error {
	items, err := h.expiry.Report(c.UserContext(), inventory.ExpiryRange(c.Query("range")))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ExpiringLotResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.ExpiringLotResponse{
			Lot:         dto.FromLot(it.Lot),
			ProductCode: it.Product.ProductCode,
			ProductName: it.Product.Name,
			DaysLeft:    it.DaysLeft,
		})
	}
	return c.JSON(out)
}

// Withdrawals godoc
// @Summary      Historial de retiros
// @Description  Todos los retiros para inventory_manager; el resto de roles solo ve los suyos.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(50)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {array}  dto.LedgerEntryResponse
// @Router       /api/inventory/withdrawals [get]
func (h *InventoryHandler) Withdrawals(c *fiber.Ctx) error {
	userID := ""
	if GetRole(c) != entity.RoleInventoryManager {
		userID = GetUserID(c)
	}
	entries, err := h.ledger.Withdrawals(c.UserContext(), userID, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.FromEntry(e))
	}
	return c.JSON(out)
}

// CreateLot godoc
// @Summary      Alta manual de lote
// @Description  Crea el lote con su factor de conversión y tipo; quantity > 0 registra stock inicial.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLotRequest  true  "product_id, lot_number, expiry_date, units_per_quantity, feature, quantity"
// @Success      201   {object}  dto.CreateLotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/lots [post]
func (h *InventoryHandler) CreateLot(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	expiry, err := time.Parse("2006-01-02", in.ExpiryDate)
	if err != nil {
		return respondError(c, &requestError{code: "INVALID_INPUT", message: "expiry_date: datetime"})
	}
	out, err := h.ledger.CreateLot(c.UserContext(), inventory.CreateLotInput{
		ProductID: in.ProductID,
		LotNumber: in.LotNumber,
		Expiry:    expiry,
		Settings:  lotSettings(in.LotSettingsRequest),
		Quantity:  in.Quantity,
		UserID:    GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.CreateLotResponse{Lot: dto.FromLot(out.Lot)}
	if out.Entry != nil {
		entry := dto.FromEntry(out.Entry)
		resp.Entry = &entry
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// UpdateLot godoc
// @Summary      Configurar consumo de un lote
// @Description  Cambia units_per_quantity y feature. El factor debe superar el acumulado parcial actual.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del lote"
// @Param        body  body  dto.UpdateLotRequest  true  "units_per_quantity, feature"
// @Success      200   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/lots/{id} [put]
func (h *InventoryHandler) UpdateLot(c *fiber.Ctx) error {
	var in dto.UpdateLotRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	lot, err := h.ledger.UpdateLotSettings(c.UserContext(), c.Params("id"), inventory.LotSettings{
		UnitsPerQuantity: in.UnitsPerQuantity,
		Feature:          in.Feature,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromLot(lot))
}

// Entries godoc
// @Summary      Historial de un lote
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del lote"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.LedgerEntryResponse
// @Router       /api/inventory/lots/{id}/entries [get]
func (h *InventoryHandler) Entries(c *fiber.Ctx) error {
	entries, err := h.ledger.History(c.UserContext(), c.Params("id"), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.FromEntry(e))
	}
	return c.JSON(out)
}

// Label godoc
// @Summary      Etiqueta PDF del lote
// @Description  DataMatrix GS1 (01/17/10) más la línea legible.
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/lots/{id}/label [get]
func (h *InventoryHandler) Label(c *fiber.Ctx) error {
	ctx := c.UserContext()
	lot, err := h.readers.Lots.GetByID(ctx, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if lot == nil {
		return respondError(c, domain.ErrLotNotFound)
	}
	product, err := h.readers.Products.GetByID(ctx, lot.ProductID)
	if err != nil {
		return respondError(c, err)
	}
	if product == nil {
		return respondError(c, domain.ErrProductNotFound)
	}
	pdf, err := h.labels.GenerateLotLabel(ctx, product, lot)
	if err != nil {
		// Códigos no numéricos no tienen representación GTIN.
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "LABEL_UNAVAILABLE", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="lote-`+lot.LotNumber+`.pdf"`)
	return c.Send(pdf)
}

// DiscardLot godoc
// @Summary      Descartar lote
// @Description  Registra LOT_DISCARD con el stock restante y elimina el lote con sus saldos.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LedgerEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/lots/{id} [delete]
func (h *InventoryHandler) DiscardLot(c *fiber.Ctx) error {
	entry, err := h.ledger.DiscardLot(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromEntry(entry))
}

func registerResponse(r *inventory.RegisterResult) dto.RegisterStockResponse {
	return dto.RegisterStockResponse{
		Product: dto.FromProduct(r.Product),
		Lot:     dto.FromLot(r.Lot),
		Created: r.Created,
		Entry:   dto.FromEntry(r.Entry),
	}
}

func lotSettings(in dto.LotSettingsRequest) inventory.LotSettings {
	return inventory.LotSettings{UnitsPerQuantity: in.UnitsPerQuantity, Feature: in.Feature}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
