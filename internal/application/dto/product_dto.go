package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	ProductCode      string  `json:"product_code" validate:"required,min=1,max=64"`
	Name             string  `json:"name" validate:"required,min=1,max=200"`
	Supplier         string  `json:"supplier" validate:"max=200"`
	ReorderThreshold int     `json:"reorder_threshold" validate:"min=0"`
	LocationID       *string `json:"location_id" validate:"omitempty,uuid"`
}

// UpdateProductRequest entrada para actualizar un producto. El código no se modifica.
type UpdateProductRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=1,max=200"`
	Supplier         *string `json:"supplier" validate:"omitempty,max=200"`
	ReorderThreshold *int    `json:"reorder_threshold" validate:"omitempty,min=0"`
	LocationID       *string `json:"location_id" validate:"omitempty,uuid"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID               string    `json:"id"`
	ProductCode      string    `json:"product_code"`
	Name             string    `json:"name"`
	Supplier         string    `json:"supplier"`
	ReorderThreshold int       `json:"reorder_threshold"`
	LocationID       *string   `json:"location_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// LotResponse salida de un lote.
type LotResponse struct {
	ID                 string          `json:"id"`
	ProductID          string          `json:"product_id"`
	LotNumber          string          `json:"lot_number"`
	ExpiryDate         string          `json:"expiry_date"` // YYYY-MM-DD
	CurrentStock       decimal.Decimal `json:"current_stock"`
	UnitsPerQuantity   int             `json:"units_per_quantity"`
	AccumulatedPartial int             `json:"accumulated_partial"`
	Feature            string          `json:"feature"`
}
