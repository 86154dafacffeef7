package dto

import "time"

// CreateQualityCheckRequest body para POST /api/quality-checks.
type CreateQualityCheckRequest struct {
	LotID         string `json:"lot_id" validate:"required,uuid"`
	TestReference string `json:"test_reference" validate:"required,max=120"`
	Result        string `json:"result" validate:"omitempty,oneof=pass fail"`
	Notes         string `json:"notes" validate:"max=2000"`
}

// QualityCheckResponse salida de un control de calidad.
type QualityCheckResponse struct {
	ID            string     `json:"id"`
	LotID         string     `json:"lot_id"`
	PerformedBy   string     `json:"performed_by"`
	Status        string     `json:"status"`
	TestReference string     `json:"test_reference"`
	Result        string     `json:"result,omitempty"`
	SignedOffBy   *string    `json:"signed_off_by,omitempty"`
	SignedOffAt   *time.Time `json:"signed_off_at,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// LotQCStatusResponse estado de calidad de un lote con stock.
type LotQCStatusResponse struct {
	Lot      LotResponse `json:"lot"`
	QCStatus string      `json:"qc_status"`
}

// ProductQCStatusResponse lotes con stock de un producto y su estado de calidad.
type ProductQCStatusResponse struct {
	Product ProductResponse       `json:"product"`
	Lots    []LotQCStatusResponse `json:"lots"`
}
