package entity

import "time"

// Estados y resultados de control de calidad.
const (
	QCStatusPending   = "pending"
	QCStatusCompleted = "completed"

	QCResultPass = "pass"
	QCResultFail = "fail"
)

// QualityCheck prueba de calidad sobre un lote.
type QualityCheck struct {
	ID            string
	LotID         string
	PerformedBy   string
	Status        string
	TestReference string
	Result        string // vacío mientras no hay resultado
	SignedOffBy   *string
	SignedOffAt   *time.Time
	Notes         string
	CreatedAt     time.Time
}
