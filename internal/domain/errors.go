package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrUserNotFound = errors.New("usuario no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Escaneo y resolución de códigos de barras.
	ErrMalformedBarcode = errors.New("código de barras sin estructura reconocible")
	ErrProductNotFound  = errors.New("producto no encontrado")
	ErrLotNotFound      = errors.New("lote no encontrado")

	// Libro de cantidades. Ninguno deja estado parcial.
	ErrInsufficientStock         = errors.New("stock insuficiente")
	ErrInsufficientLocationStock = errors.New("stock insuficiente en la ubicación de origen")
	ErrConcurrentModification    = errors.New("modificación concurrente, reintente la operación")

	ErrModuleDisabled = errors.New("módulo no activo")
)
