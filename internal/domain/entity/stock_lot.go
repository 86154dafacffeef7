package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de lote según cómo se consume.
const (
	FeatureUnit   = "unit"   // unidades enteras, con retiro parcial por partes
	FeatureVolume = "volume" // cantidad fraccionaria, sin partes
)

// PlaceholderLotNumber se usa cuando el escaneo no trae número de lote.
const PlaceholderLotNumber = "LOT000"

// StockLot representa un lote recibido de un producto (lote + vencimiento).
// Invariantes: CurrentStock >= 0 y 0 <= AccumulatedPartial < UnitsPerQuantity.
type StockLot struct {
	ID                 string
	ProductID          string
	LotNumber          string
	ExpiryDate         time.Time
	CurrentStock       decimal.Decimal
	UnitsPerQuantity   int // partes que forman una unidad entera (ej. dosis por vial)
	AccumulatedPartial int // partes ya consumidas de la unidad abierta
	Feature            string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsVolume indica si el lote se descuenta por volumen.
func (l *StockLot) IsVolume() bool {
	return l.Feature == FeatureVolume
}
