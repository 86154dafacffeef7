package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
)

// WithdrawalMode indica si se retiran unidades completas o partes de unidad.
type WithdrawalMode string

const (
	ModeFull WithdrawalMode = "full"
	ModePart WithdrawalMode = "part"
)

// Withdrawal es el resultado de aplicar un retiro sobre un lote (servicio de dominio puro).
type Withdrawal struct {
	Delta              decimal.Decimal // unidades (o volumen) descontadas de current_stock, >= 0
	Parts              int             // partes retiradas en modo parcial
	Stock              decimal.Decimal // current_stock resultante
	AccumulatedPartial int             // accumulated_partial resultante
}

// ApplyWithdrawal calcula el nuevo estado de un lote sin modificarlo.
//
//   - Lote de volumen: Stock -= quantity (admite fracciones, quantity >= 0).
//   - Unidad, modo full: Stock -= quantity (entero >= 0).
//   - Unidad, modo part: total = acumulado + parts; consumidas = total / upq;
//     acumulado' = total % upq; Stock -= consumidas.
//
// Un resultado negativo devuelve domain.ErrInsufficientStock.
func ApplyWithdrawal(lot entity.StockLot, mode WithdrawalMode, quantity decimal.Decimal, parts int) (Withdrawal, error) {
	if lot.IsVolume() {
		if quantity.IsNegative() {
			return Withdrawal{}, domain.ErrInvalidInput
		}
		return subtract(lot, quantity, 0, lot.AccumulatedPartial)
	}

	switch mode {
	case ModeFull:
		if quantity.IsNegative() || !IsWhole(quantity) {
			return Withdrawal{}, domain.ErrInvalidInput
		}
		return subtract(lot, quantity, 0, lot.AccumulatedPartial)
	case ModePart:
		if parts < 0 || lot.UnitsPerQuantity < 1 {
			return Withdrawal{}, domain.ErrInvalidInput
		}
		consumed, acc := RollParts(lot.AccumulatedPartial, parts, lot.UnitsPerQuantity)
		return subtract(lot, decimal.NewFromInt(int64(consumed)), parts, acc)
	}
	return Withdrawal{}, domain.ErrInvalidInput
}

// RollParts acumula partes y devuelve cuántas unidades completas se consumen y el nuevo acumulado.
func RollParts(accumulated, parts, unitsPerQuantity int) (consumed, remainder int) {
	total := accumulated + parts
	return total / unitsPerQuantity, total % unitsPerQuantity
}

func subtract(lot entity.StockLot, delta decimal.Decimal, parts, acc int) (Withdrawal, error) {
	stock := lot.CurrentStock.Sub(delta)
	if stock.IsNegative() {
		return Withdrawal{}, domain.ErrInsufficientStock
	}
	return Withdrawal{Delta: delta, Parts: parts, Stock: stock, AccumulatedPartial: acc}, nil
}

// ApplyRegistration suma quantity al stock del lote; no hay tope superior.
func ApplyRegistration(lot entity.StockLot, quantity decimal.Decimal) (decimal.Decimal, error) {
	if !quantity.IsPositive() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	if !lot.IsVolume() && !IsWhole(quantity) {
		return decimal.Zero, domain.ErrInvalidInput
	}
	return lot.CurrentStock.Add(quantity), nil
}

// ApplyLocationDelta aplica delta al saldo de una ubicación; nunca por debajo de cero.
func ApplyLocationDelta(balance, delta decimal.Decimal) (decimal.Decimal, error) {
	next := balance.Add(delta)
	if next.IsNegative() {
		return balance, domain.ErrInsufficientLocationStock
	}
	return next, nil
}

// IsWhole indica si q no tiene parte fraccionaria.
func IsWhole(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(0))
}

// ValidateLotSettings comprueba el factor de conversión y el tipo de un lote cuyo
// acumulado actual es accumulated (0 en lotes nuevos). El factor debe quedar por
// encima del acumulado: si no, la unidad abierta ya estaría consumida.
func ValidateLotSettings(unitsPerQuantity int, feature string, accumulated int) error {
	if unitsPerQuantity < 1 {
		return domain.ErrInvalidInput
	}
	if feature != entity.FeatureUnit && feature != entity.FeatureVolume {
		return domain.ErrInvalidInput
	}
	if unitsPerQuantity <= accumulated {
		return domain.ErrConflict
	}
	return nil
}
