package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	ProductCode      string          `json:"product_code" validate:"required"`
	LotID            string          `json:"lot_id" validate:"omitempty,uuid"`
	Quantity         decimal.Decimal `json:"quantity_ordered"`
	ExpectedDelivery string          `json:"expected_delivery" validate:"required,datetime=2006-01-02"`
}

// CompletePurchaseOrderRequest body para POST /api/purchase-orders/complete.
type CompletePurchaseOrderRequest struct {
	ScanRequest
	LotSettingsRequest
	Quantity decimal.Decimal `json:"quantity"`
}

// CompletePurchaseOrderResponse registro hecho y orden entregada (si había una abierta).
type CompletePurchaseOrderResponse struct {
	Stock RegisterStockResponse  `json:"stock"`
	Order *PurchaseOrderResponse `json:"order,omitempty"`
}

// PurchaseOrderResponse salida de una orden de compra.
type PurchaseOrderResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	LotID            *string         `json:"lot_id,omitempty"`
	ProductCode      string          `json:"product_code"`
	ProductName      string          `json:"product_name"`
	LotNumber        string          `json:"lot_number,omitempty"`
	ExpiryDate       *time.Time      `json:"expiry_date,omitempty"`
	QuantityOrdered  decimal.Decimal `json:"quantity_ordered"`
	Status           string          `json:"status"`
	OrderDate        time.Time       `json:"order_date"`
	ExpectedDelivery time.Time       `json:"expected_delivery"`
	DeliveredAt      *time.Time      `json:"delivered_at,omitempty"`
	OrderedBy        string          `json:"ordered_by"`
	CompletedBy      *string         `json:"completed_by,omitempty"`
}
