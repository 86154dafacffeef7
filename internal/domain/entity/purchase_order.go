package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra.
const (
	POStatusOrdered   = "ORDERED"
	POStatusDelayed   = "DELAYED"
	POStatusDelivered = "DELIVERED"
)

// PurchaseOrder orden de compra a proveedor, opcionalmente atada a un lote.
type PurchaseOrder struct {
	ID               string
	ProductID        string
	LotID            *string
	ProductCode      string
	ProductName      string
	LotNumber        string
	ExpiryDate       *time.Time
	QuantityOrdered  decimal.Decimal
	Status           string
	OrderDate        time.Time
	ExpectedDelivery time.Time
	DeliveredAt      *time.Time
	OrderedBy        string
	CompletedBy      *string
}

// IsOpen indica si la orden aún espera entrega.
func (po *PurchaseOrder) IsOpen() bool {
	return po.Status == POStatusOrdered || po.Status == POStatusDelayed
}
