package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de asiento del libro de cantidades.
const (
	LedgerWithdrawal       = "WITHDRAWAL"
	LedgerRegistration     = "REGISTRATION"
	LedgerPOCompletion     = "PO_COMPLETION"
	LedgerLotDiscard       = "LOT_DISCARD"
	LedgerLocationTransfer = "LOCATION_TRANSFER"
	LedgerLocationReceipt  = "LOCATION_RECEIPT"
)

// LedgerEntry registro inmutable de una mutación de stock. Copia código, lote y
// vencimiento para poder reconstruir el historial aunque el lote se descarte.
type LedgerEntry struct {
	ID                      string
	TransactionID           string
	Kind                    string
	LotID                   string
	ProductCode             string
	ProductName             string
	LotNumber               string
	ExpiryDate              time.Time
	Quantity                decimal.Decimal // delta con signo: negativo en retiros
	PartsWithdrawn          int
	AccumulatedPartialAfter int
	StockAfter              decimal.Decimal
	FromLocationID          *string
	ToLocationID            *string
	Barcode                 *string
	UserID                  string
	CreatedAt               time.Time
}
