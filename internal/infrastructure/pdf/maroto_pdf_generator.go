// Package pdf genera etiquetas de lote en PDF.
//
// Layout de la etiqueta (100 x 50 mm):
//
//	┌──────────────────────────────────────────────┐
//	│  DataMatrix GS1  │  Producto + código          │
//	│                  │  Lote / Vence               │
//	│  ──────────────────────────────────────────  │
//	│  (01)…(17)…(10)… texto legible                 │
//	└──────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/stock-control/internal/domain/barcode"
	"github.com/jhoicas/stock-control/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// Dimensiones de la etiqueta en mm.
const (
	labelWidth  = 100
	labelHeight = 50
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoLabelGenerator genera etiquetas de lote usando Maroto v2.
type MarotoLabelGenerator struct{}

// NewMarotoLabelGenerator construye el generador.
func NewMarotoLabelGenerator() *MarotoLabelGenerator { return &MarotoLabelGenerator{} }

// GenerateLotLabel devuelve el PDF de la etiqueta. El DataMatrix codifica el mismo
// payload GS1 plano (01/17/10 con separador GS) que luego decodifica el escáner.
func (g *MarotoLabelGenerator) GenerateLotLabel(_ context.Context, product *entity.Product, lot *entity.StockLot) ([]byte, error) {
	payload, err := barcode.EncodeGS1(product.ProductCode, lot.ExpiryDate, lot.LotNumber)
	if err != nil {
		return nil, fmt.Errorf("pdf: payload GS1: %w", err)
	}
	readable, err := barcode.HumanReadable(product.ProductCode, lot.ExpiryDate, lot.LotNumber)
	if err != nil {
		return nil, fmt.Errorf("pdf: texto legible: %w", err)
	}

	cfg := config.NewBuilder().
		WithDimensions(labelWidth, labelHeight).
		WithLeftMargin(3).WithRightMargin(3).
		WithTopMargin(3).WithBottomMargin(2).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 7}).
		WithTitle("Etiqueta de lote "+lot.LotNumber, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(labelBodyRow(product, lot, payload))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(readableRows(readable)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar etiqueta: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// labelBodyRow: DataMatrix (izq) y datos del producto y lote (der).
func labelBodyRow(product *entity.Product, lot *entity.StockLot, payload string) core.Row {
	return row.New(30).Add(
		col.New(4).Add(code.NewMatrix(payload, props.Rect{
			Percent: 95,
			Center:  true,
		})),
		col.New(8).Add(
			text.New(nonEmpty(product.Name, product.ProductCode), props.Text{
				Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 1, Left: 2,
			}),
			text.New("Código: "+product.ProductCode, props.Text{
				Size: 7, Top: 10, Left: 2, Color: colorGray,
			}),
			text.New("Lote: "+lot.LotNumber, props.Text{
				Style: fontstyle.Bold, Size: 8, Top: 16, Left: 2,
			}),
			text.New("Vence: "+lot.ExpiryDate.Format("02/01/2006"), props.Text{
				Size: 8, Top: 22, Left: 2,
			}),
		),
	)
}

// readableRows: línea (01)…(17)…(10)… partida si el lote es largo.
func readableRows(readable string) []core.Row {
	var rows []core.Row
	for _, part := range splitEvery(readable, 48) {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New(part, props.Text{Size: 7, Align: align.Center, Top: 0.5}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// splitEvery divide s en trozos de max n caracteres.
func splitEvery(s string, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
