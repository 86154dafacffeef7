package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawRequest body para POST /api/inventory/withdrawals. Se indica el lote por
// lot_id (selección manual) o por escaneo (barcode + hints).
type WithdrawRequest struct {
	ScanRequest
	LotID    string          `json:"lot_id" validate:"omitempty,uuid"`
	Mode     string          `json:"mode" validate:"required,oneof=full part"`
	Quantity decimal.Decimal `json:"quantity"`
	Parts    int             `json:"parts" validate:"min=0"`
}

// WithdrawResponse lote tras el retiro.
type WithdrawResponse struct {
	Lot           LotResponse         `json:"lot"`
	UnitsConsumed decimal.Decimal     `json:"units_consumed"`
	Entry         LedgerEntryResponse `json:"entry"`
}

// LotSettingsRequest cómo se consume un lote nuevo. Vacío: 1 parte por unidad, tipo unit.
type LotSettingsRequest struct {
	UnitsPerQuantity int    `json:"units_per_quantity" validate:"omitempty,min=1"`
	Feature          string `json:"feature" validate:"omitempty,oneof=unit volume"`
}

// RegisterStockRequest body para POST /api/inventory/registrations. La configuración
// de lote solo se aplica si el registro crea el lote.
type RegisterStockRequest struct {
	ScanRequest
	LotSettingsRequest
	Quantity decimal.Decimal `json:"quantity"`
}

// CreateLotRequest body para POST /api/inventory/lots.
type CreateLotRequest struct {
	LotSettingsRequest
	ProductID  string          `json:"product_id" validate:"required,uuid"`
	LotNumber  string          `json:"lot_number" validate:"required,max=64"`
	ExpiryDate string          `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// CreateLotResponse lote creado y, si hubo stock inicial, su asiento.
type CreateLotResponse struct {
	Lot   LotResponse          `json:"lot"`
	Entry *LedgerEntryResponse `json:"entry,omitempty"`
}

// UpdateLotRequest body para PUT /api/inventory/lots/:id.
type UpdateLotRequest struct {
	UnitsPerQuantity int    `json:"units_per_quantity" validate:"required,min=1"`
	Feature          string `json:"feature" validate:"required,oneof=unit volume"`
}

// ExpiringLotResponse lote vencido o por vencer.
type ExpiringLotResponse struct {
	Lot         LotResponse `json:"lot"`
	ProductCode string      `json:"product_code"`
	ProductName string      `json:"product_name"`
	DaysLeft    int         `json:"days_left"`
}

// RegisterStockResponse lote destino; Created avisa de que el lote es nuevo.
type RegisterStockResponse struct {
	Product ProductResponse     `json:"product"`
	Lot     LotResponse         `json:"lot"`
	Created bool                `json:"lot_created"`
	Entry   LedgerEntryResponse `json:"entry"`
}

// TransferRequest body para POST /api/locations/transfers.
type TransferRequest struct {
	LotID          string          `json:"lot_id" validate:"required,uuid"`
	FromLocationID string          `json:"from_location_id" validate:"required,uuid"`
	ToLocationID   string          `json:"to_location_id" validate:"required,uuid,nefield=FromLocationID"`
	Amount         decimal.Decimal `json:"amount"`
}

// TransferResponse saldos finales.
type TransferResponse struct {
	From  LocationBalanceResponse `json:"from"`
	To    LocationBalanceResponse `json:"to"`
	Entry LedgerEntryResponse     `json:"entry"`
}

// AddLocationStockRequest body para POST /api/locations/stock.
type AddLocationStockRequest struct {
	LotID      string          `json:"lot_id" validate:"required,uuid"`
	LocationID string          `json:"location_id" validate:"required,uuid"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// AddLocationStockResponse lote y saldo tras la entrada.
type AddLocationStockResponse struct {
	Lot     LotResponse             `json:"lot"`
	Balance LocationBalanceResponse `json:"balance"`
}

// LocationBalanceResponse saldo de un lote en una ubicación.
type LocationBalanceResponse struct {
	LocationID string          `json:"location_id"`
	LotID      string          `json:"lot_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CreateLocationRequest body para POST /api/locations.
type CreateLocationRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"max=500"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

// LedgerEntryResponse asiento del libro de cantidades.
type LedgerEntryResponse struct {
	ID                      string          `json:"id"`
	Kind                    string          `json:"kind"`
	LotID                   string          `json:"lot_id"`
	ProductCode             string          `json:"product_code"`
	ProductName             string          `json:"product_name"`
	LotNumber               string          `json:"lot_number"`
	ExpiryDate              string          `json:"expiry_date"`
	Quantity                decimal.Decimal `json:"quantity"`
	PartsWithdrawn          int             `json:"parts_withdrawn"`
	AccumulatedPartialAfter int             `json:"accumulated_partial_after"`
	StockAfter              decimal.Decimal `json:"stock_after"`
	FromLocationID          *string         `json:"from_location_id,omitempty"`
	ToLocationID            *string         `json:"to_location_id,omitempty"`
	Barcode                 *string         `json:"barcode,omitempty"`
	UserID                  string          `json:"user_id"`
	CreatedAt               time.Time       `json:"created_at"`
}

// LowStockItemResponse producto bajo umbral de reposición.
type LowStockItemResponse struct {
	ProductID        string          `json:"product_id"`
	ProductCode      string          `json:"product_code"`
	ProductName      string          `json:"product_name"`
	Supplier         string          `json:"supplier"`
	CurrentStock     decimal.Decimal `json:"current_stock"`
	ReorderThreshold int             `json:"reorder_threshold"`
	Deficit          decimal.Decimal `json:"deficit"`
	ThresholdUnset   bool            `json:"threshold_unset"`
	NextExpiry       *string         `json:"next_expiry"` // YYYY-MM-DD
}
