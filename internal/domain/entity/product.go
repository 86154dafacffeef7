package entity

import "time"

// Product representa un producto del catálogo. ProductCode es único y puede
// conservar ceros a la izquierda (GTIN completo o código de proveedor).
type Product struct {
	ID               string
	ProductCode      string
	Name             string
	Supplier         string
	ReorderThreshold int     // 0 = sin umbral configurado
	LocationID       *string // ubicación por defecto (opcional)
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
