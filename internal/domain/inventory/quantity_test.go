package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/inventory"
)

func unitLot(stock int64, upq, acc int) entity.StockLot {
	return entity.StockLot{
		CurrentStock:       decimal.NewFromInt(stock),
		UnitsPerQuantity:   upq,
		AccumulatedPartial: acc,
		Feature:            entity.FeatureUnit,
	}
}

func TestApplyWithdrawal_PartesCompletanUnaUnidad(t *testing.T) {
	got, err := inventory.ApplyWithdrawal(unitLot(5, 10, 7), inventory.ModePart, decimal.Zero, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AccumulatedPartial)
	assert.True(t, got.Delta.Equal(decimal.NewFromInt(1)))
	assert.True(t, got.Stock.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, 4, got.Parts)
}

func TestApplyWithdrawal_PartesSinCompletarUnidad(t *testing.T) {
	got, err := inventory.ApplyWithdrawal(unitLot(5, 10, 2), inventory.ModePart, decimal.Zero, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, got.AccumulatedPartial)
	assert.True(t, got.Delta.IsZero())
	assert.True(t, got.Stock.Equal(decimal.NewFromInt(5)))
}

func TestApplyWithdrawal_PartesVariasUnidades(t *testing.T) {
	got, err := inventory.ApplyWithdrawal(unitLot(5, 4, 3), inventory.ModePart, decimal.Zero, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AccumulatedPartial)
	assert.True(t, got.Stock.Equal(decimal.NewFromInt(2)))
}

func TestApplyWithdrawal_PartesSinStock(t *testing.T) {
	_, err := inventory.ApplyWithdrawal(unitLot(0, 10, 9), inventory.ModePart, decimal.Zero, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestApplyWithdrawal_FullHastaCero(t *testing.T) {
	got, err := inventory.ApplyWithdrawal(unitLot(3, 1, 0), inventory.ModeFull, decimal.NewFromInt(3), 0)
	require.NoError(t, err)
	assert.True(t, got.Stock.IsZero())
}

func TestApplyWithdrawal_FullInsuficiente(t *testing.T) {
	lot := unitLot(2, 10, 4)
	_, err := inventory.ApplyWithdrawal(lot, inventory.ModeFull, decimal.NewFromInt(3), 0)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	// El lote de entrada no se modifica.
	assert.True(t, lot.CurrentStock.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, 4, lot.AccumulatedPartial)
}

func TestApplyWithdrawal_FullRechazaFracciones(t *testing.T) {
	_, err := inventory.ApplyWithdrawal(unitLot(5, 1, 0), inventory.ModeFull, decimal.RequireFromString("1.5"), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplyWithdrawal_Volumen(t *testing.T) {
	lot := entity.StockLot{CurrentStock: decimal.RequireFromString("2.5"), UnitsPerQuantity: 1, Feature: entity.FeatureVolume}
	got, err := inventory.ApplyWithdrawal(lot, inventory.ModePart, decimal.RequireFromString("0.75"), 3)
	require.NoError(t, err)
	assert.True(t, got.Stock.Equal(decimal.RequireFromString("1.75")))
	assert.Equal(t, 0, got.Parts)

	_, err = inventory.ApplyWithdrawal(lot, inventory.ModeFull, decimal.NewFromInt(3), 0)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = inventory.ApplyWithdrawal(lot, inventory.ModeFull, decimal.NewFromInt(-1), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplyWithdrawal_ModoDesconocido(t *testing.T) {
	_, err := inventory.ApplyWithdrawal(unitLot(5, 1, 0), "otro", decimal.NewFromInt(1), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRollParts(t *testing.T) {
	consumed, rem := inventory.RollParts(0, 0, 5)
	assert.Equal(t, 0, consumed)
	assert.Equal(t, 0, rem)

	consumed, rem = inventory.RollParts(4, 1, 5)
	assert.Equal(t, 1, consumed)
	assert.Equal(t, 0, rem)
}

func TestApplyRegistration(t *testing.T) {
	got, err := inventory.ApplyRegistration(unitLot(0, 1, 0), decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(1)))

	_, err = inventory.ApplyRegistration(unitLot(0, 1, 0), decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplyLocationDelta(t *testing.T) {
	got, err := inventory.ApplyLocationDelta(decimal.NewFromInt(5), decimal.NewFromInt(-5))
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = inventory.ApplyLocationDelta(decimal.NewFromInt(5), decimal.NewFromInt(-6))
	assert.ErrorIs(t, err, domain.ErrInsufficientLocationStock)
	assert.True(t, got.Equal(decimal.NewFromInt(5)))
}

// ── Configuración de lote ────────────────────────────────────────────────────

func TestValidateLotSettings(t *testing.T) {
	assert.NoError(t, inventory.ValidateLotSettings(10, entity.FeatureUnit, 0))
	assert.NoError(t, inventory.ValidateLotSettings(1, entity.FeatureVolume, 0))
	assert.NoError(t, inventory.ValidateLotSettings(8, entity.FeatureUnit, 7))

	assert.ErrorIs(t, inventory.ValidateLotSettings(0, entity.FeatureUnit, 0), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ValidateLotSettings(5, "litros", 0), domain.ErrInvalidInput)
	// Reducir el factor por debajo del acumulado dejaría la unidad abierta ya consumida.
	assert.ErrorIs(t, inventory.ValidateLotSettings(7, entity.FeatureUnit, 7), domain.ErrConflict)
}

func TestApplyRegistration_UnidadRechazaFracciones(t *testing.T) {
	_, err := inventory.ApplyRegistration(unitLot(0, 1, 0), decimal.RequireFromString("0.5"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, inventory.IsWhole(decimal.RequireFromString("2.25")))
	assert.True(t, inventory.IsWhole(decimal.NewFromInt(3)))
}
