package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Location representa una ubicación física (sala, nevera, estante).
type Location struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
}

// LocationBalance es la cantidad de un lote en una ubicación. Única por (ubicación, lote)
// y nunca negativa.
type LocationBalance struct {
	LocationID string
	LotID      string
	Quantity   decimal.Decimal
	UpdatedAt  time.Time
}
