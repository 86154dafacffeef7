package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-control/internal/application/dto"
	"github.com/jhoicas/stock-control/internal/application/scan"
)

// BarcodeHandler decodificación y resolución de escaneos.
type BarcodeHandler struct {
	scanner *scan.UseCase
}

// NewBarcodeHandler construye el handler.
func NewBarcodeHandler(scanner *scan.UseCase) *BarcodeHandler {
	return &BarcodeHandler{scanner: scanner}
}

// Parse godoc
// @Summary      Decodificar código de barras
// @Description  Decodifica GS1 (con o sin paréntesis), formato de proveedor con ** y
//
//	formato plano. No consulta el catálogo.
//
// @Tags         barcodes
// @Security     Bearer
// @Produce      json
// @Param        raw  query  string  true  "Texto escaneado"
// @Success      200  {object}  dto.DecodedBarcodeResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/barcodes/parse [get]
func (h *BarcodeHandler) Parse(c *fiber.Ctx) error {
	raw := c.Query("raw")
	if raw == "" {
		return respondError(c, &requestError{code: "INVALID_INPUT", message: "raw es requerido"})
	}
	decoded, err := h.scanner.Decode(raw)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromDecoded(decoded))
}

// Resolve godoc
// @Summary      Resolver escaneo a producto y lote
// @Tags         barcodes
// @Security     Bearer
// @Produce      json
// @Param        raw           query  string  false  "Texto escaneado"
// @Param        product_code  query  string  false  "Código elegido a mano"
// @Param        lot_number    query  string  false  "Lote si el escaneo no lo trae"
// @Param        expiry_date   query  string  false  "Vencimiento YYYY-MM-DD si el escaneo no lo trae"
// @Success      200  {object}  dto.ResolveResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/barcodes/resolve [get]
func (h *BarcodeHandler) Resolve(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if err := parseQuery(c, &in); err != nil {
		return respondError(c, err)
	}
	res, err := h.scanner.DecodeAndResolve(c.UserContext(), scanInput(in))
	if err != nil {
		return respondError(c, err)
	}
	out := dto.ResolveResponse{
		Decoded:     dto.FromDecoded(res.Decoded),
		Product:     dto.FromProduct(res.Product),
		MatchedCode: res.MatchedCode,
		ByLot:       res.ByLot,
	}
	if res.Lot != nil {
		lot := dto.FromLot(res.Lot)
		out.Lot = &lot
	}
	return c.JSON(out)
}

func scanInput(in dto.ScanRequest) scan.ScanInput {
	return scan.ScanInput{
		Raw:         in.Raw,
		ProductHint: in.ProductCode,
		LotHint:     in.LotNumber,
		ExpiryHint:  in.ExpiryDate,
	}
}
