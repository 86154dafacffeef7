package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-control/internal/application/inventory"
	"github.com/jhoicas/stock-control/internal/application/scan"
	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
)

// ── Alta y configuración de lotes ────────────────────────────────────────────

func TestCreateLot_ConStockInicialRegistraAsiento(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	p := e.product(t, "P1", 0)

	res, err := e.ledger.CreateLot(context.Background(), inventory.CreateLotInput{
		ProductID: p.ID, LotNumber: " L1 ", Expiry: day(2028, 2, 1),
		Settings: inventory.LotSettings{UnitsPerQuantity: 6, Feature: entity.FeatureVolume},
		Quantity: decimal.RequireFromString("1.5"), UserID: "u1",
	})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "L1", res.Lot.LotNumber)
	assert.Equal(t, 6, res.Lot.UnitsPerQuantity)
	assert.Equal(t, entity.FeatureVolume, res.Lot.Feature)
	require.NotNil(t, res.Entry)
	assert.Equal(t, entity.LedgerRegistration, res.Entry.Kind)
	assert.True(t, e.stock(t, res.Lot.ID).Equal(decimal.RequireFromString("1.5")))
}

func TestCreateLot_VacioSinAsientoYDuplicado(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	p := e.product(t, "P1", 0)
	in := inventory.CreateLotInput{ProductID: p.ID, LotNumber: "L1", Expiry: day(2028, 2, 1), UserID: "u1"}

	res, err := e.ledger.CreateLot(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, res.Entry)
	assert.Equal(t, 1, res.Lot.UnitsPerQuantity)
	assert.Equal(t, entity.FeatureUnit, res.Lot.Feature)
	hist, err := e.ledger.History(context.Background(), res.Lot.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, hist)

	_, err = e.ledger.CreateLot(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateLot_Validaciones(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	p := e.product(t, "P1", 0)
	base := inventory.CreateLotInput{ProductID: p.ID, LotNumber: "L1", Expiry: day(2028, 2, 1), UserID: "u1"}

	unitFraction := base
	unitFraction.Quantity = decimal.RequireFromString("0.5")
	_, err := e.ledger.CreateLot(context.Background(), unitFraction)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	badFeature := base
	badFeature.Settings.Feature = "litro"
	_, err = e.ledger.CreateLot(context.Background(), badFeature)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	unknown := base
	unknown.ProductID = "00000000-0000-0000-0000-000000000099"
	_, err = e.ledger.CreateLot(context.Background(), unknown)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	lots, err := e.store.Lots().ListByProduct(context.Background(), p.ID, repository.LotFilter{})
	require.NoError(t, err)
	assert.Empty(t, lots, "un alta fallida no deja lote")
}

func TestRegister_LoteNuevoUsaFactorIndicado(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	e.product(t, "12345678905", 0)
	exp := day(2027, 5, 31)
	q := scan.Query{RawCode: "00012345678905", NormalizedCode: "12345678905", LotNumber: "NEW1", Expiry: &exp}

	res, err := e.ledger.Register(context.Background(), inventory.RegisterInput{
		Query: q, Quantity: d(4), UserID: "u1", NewLot: inventory.LotSettings{UnitsPerQuantity: 10},
	})
	require.NoError(t, err)
	require.True(t, res.Created)
	assert.Equal(t, 10, res.Lot.UnitsPerQuantity)

	w, err := e.ledger.Withdraw(context.Background(), inventory.WithdrawInput{
		LotID: res.Lot.ID, Mode: "part", Parts: 1, UserID: "u1",
	})
	require.NoError(t, err)
	assert.True(t, w.Lot.CurrentStock.Equal(d(4)))
	assert.Equal(t, 1, w.Lot.AccumulatedPartial)

	// Un lote existente conserva su configuración.
	again, err := e.ledger.Register(context.Background(), inventory.RegisterInput{
		Query: q, UserID: "u1", NewLot: inventory.LotSettings{UnitsPerQuantity: 3},
	})
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, 10, again.Lot.UnitsPerQuantity)
}

func TestUpdateLotSettings_FactorDebeSuperarAcumulado(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	l := e.lot(t, e.product(t, "P1", 0), "A", day(2027, 1, 1), 5, 10)
	_, err := e.ledger.Withdraw(context.Background(), inventory.WithdrawInput{LotID: l.ID, Mode: "part", Parts: 4, UserID: "u1"})
	require.NoError(t, err)

	_, err = e.ledger.UpdateLotSettings(context.Background(), l.ID, inventory.LotSettings{UnitsPerQuantity: 4, Feature: entity.FeatureUnit})
	assert.ErrorIs(t, err, domain.ErrConflict)

	updated, err := e.ledger.UpdateLotSettings(context.Background(), l.ID, inventory.LotSettings{UnitsPerQuantity: 5, Feature: entity.FeatureUnit})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.UnitsPerQuantity)
	assert.Equal(t, 4, updated.AccumulatedPartial)

	stored, err := e.store.Lots().GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.UnitsPerQuantity)
	assert.True(t, stored.CurrentStock.Equal(d(5)))

	_, err = e.ledger.UpdateLotSettings(context.Background(), l.ID, inventory.LotSettings{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.ledger.UpdateLotSettings(context.Background(), "no-existe", inventory.LotSettings{UnitsPerQuantity: 2, Feature: entity.FeatureUnit})
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
}

func TestWithdrawals_FiltraPorUsuarioYOrdenaRecientes(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	l := e.lot(t, e.product(t, "P1", 0), "A", day(2027, 1, 1), 5, 1)
	for _, user := range []string{"u1", "u2", "u1"} {
		_, err := e.ledger.Withdraw(context.Background(), inventory.WithdrawInput{LotID: l.ID, Mode: "full", Quantity: d(1), UserID: user})
		require.NoError(t, err)
	}
	_, err := e.ledger.Register(context.Background(), inventory.RegisterInput{
		Query: scan.Query{RawCode: "P1"}, UserID: "u1",
	})
	require.NoError(t, err)

	all, err := e.ledger.Withdrawals(context.Background(), "", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "u1", all[0].UserID)
	assert.True(t, all[0].StockAfter.Equal(d(2)))

	own, err := e.ledger.Withdrawals(context.Background(), "u2", 0, 0)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, entity.LedgerWithdrawal, own[0].Kind)

	page, err := e.ledger.Withdrawals(context.Background(), "", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "u2", page[0].UserID)
}
