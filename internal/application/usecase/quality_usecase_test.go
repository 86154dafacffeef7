package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-control/internal/application/dto"
	"github.com/jhoicas/stock-control/internal/application/scan"
	"github.com/jhoicas/stock-control/internal/application/usecase"
	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/barcode"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/infrastructure/memory"
)

func newQuality(t *testing.T, caps domain.Capabilities) (*usecase.QualityUseCase, *memory.Store) {
	t.Helper()
	s := memory.NewStore(0)
	resolver := scan.NewResolver(scan.ProductLotStore{Products: s.Products(), Lots: s.Lots()})
	scanner := scan.NewUseCase(barcode.NewDecoder(""), resolver, zerolog.Nop())
	return usecase.NewQualityUseCase(s.QualityChecks(), s.Lots(), s.Balances(), scanner, caps), s
}

func addLot(t *testing.T, s *memory.Store, productID, number string, expiry time.Time, stock int64) *entity.StockLot {
	t.Helper()
	l := &entity.StockLot{
		ID: uuid.New().String(), ProductID: productID, LotNumber: number, ExpiryDate: expiry,
		CurrentStock: decimal.NewFromInt(stock), UnitsPerQuantity: 1, Feature: entity.FeatureUnit, CreatedAt: time.Now(),
	}
	require.NoError(t, s.Lots().Create(context.Background(), l))
	return l
}

func TestQuality_CreateConResultadoQuedaFirmado(t *testing.T) {
	uc, s := newQuality(t, domain.AllCapabilities())
	p := &entity.Product{ID: uuid.New().String(), ProductCode: "QC1", Name: "Reactivo"}
	require.NoError(t, s.Products().Create(context.Background(), p))
	l := addLot(t, s, p.ID, "L1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 3)

	out, err := uc.Create(context.Background(), "u1", dto.CreateQualityCheckRequest{LotID: l.ID, TestReference: "T-1", Result: entity.QCResultPass})
	require.NoError(t, err)
	assert.Equal(t, entity.QCStatusCompleted, out.Status)
	require.NotNil(t, out.SignedOffBy)
	assert.Equal(t, "u1", *out.SignedOffBy)

	pending, err := uc.Create(context.Background(), "u1", dto.CreateQualityCheckRequest{LotID: l.ID, TestReference: "T-2"})
	require.NoError(t, err)
	assert.Equal(t, entity.QCStatusPending, pending.Status)
	assert.Nil(t, pending.SignedOffBy)
}

func TestQuality_CreateResultadoInvalido(t *testing.T) {
	uc, _ := newQuality(t, domain.AllCapabilities())
	_, err := uc.Create(context.Background(), "u1", dto.CreateQualityCheckRequest{LotID: "x", TestReference: "T", Result: "maybe"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestQuality_LotStatusEtiquetasYFiltroDeStock(t *testing.T) {
	uc, s := newQuality(t, domain.AllCapabilities())
	ctx := context.Background()
	p := &entity.Product{ID: uuid.New().String(), ProductCode: "QC1", Name: "Reactivo"}
	require.NoError(t, s.Products().Create(ctx, p))
	exp := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	passed := addLot(t, s, p.ID, "A", exp, 2)
	waiting := addLot(t, s, p.ID, "B", exp, 1)
	addLot(t, s, p.ID, "C", exp, 0)

	_, err := uc.Create(ctx, "u1", dto.CreateQualityCheckRequest{LotID: passed.ID, TestReference: "T", Result: entity.QCResultPass})
	require.NoError(t, err)

	out, err := uc.LotStatus(ctx, scan.ScanInput{Raw: "QC1"})
	require.NoError(t, err)
	require.Len(t, out.Lots, 2)
	assert.Equal(t, passed.ID, out.Lots[0].Lot.ID)
	assert.Equal(t, usecase.QCLabelPass, out.Lots[0].QCStatus)
	assert.Equal(t, waiting.ID, out.Lots[1].Lot.ID)
	assert.Equal(t, usecase.QCLabelWaiting, out.Lots[1].QCStatus)
}

func TestQuality_LotStatusUsaSaldoDeUbicacionesSiStockEsCero(t *testing.T) {
	uc, s := newQuality(t, domain.AllCapabilities())
	ctx := context.Background()
	p := &entity.Product{ID: uuid.New().String(), ProductCode: "QC1", Name: "Reactivo"}
	require.NoError(t, s.Products().Create(ctx, p))
	l := addLot(t, s, p.ID, "A", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 0)
	require.NoError(t, s.Balances().Save(ctx, &entity.LocationBalance{LocationID: "loc", LotID: l.ID, Quantity: decimal.NewFromInt(2)}))

	out, err := uc.LotStatus(ctx, scan.ScanInput{Raw: "QC1"})
	require.NoError(t, err)
	require.Len(t, out.Lots, 1)

	off, s2 := newQuality(t, domain.NewCapabilities(map[domain.Module]bool{domain.ModuleQualityControl: true}))
	require.NoError(t, s2.Products().Create(ctx, p))
	l2 := addLot(t, s2, p.ID, "A", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 0)
	require.NoError(t, s2.Balances().Save(ctx, &entity.LocationBalance{LocationID: "loc", LotID: l2.ID, Quantity: decimal.NewFromInt(2)}))
	out, err = off.LotStatus(ctx, scan.ScanInput{Raw: "QC1"})
	require.NoError(t, err)
	assert.Empty(t, out.Lots)
}

func TestQuality_ModuloInactivo(t *testing.T) {
	uc, _ := newQuality(t, domain.NewCapabilities(nil))
	_, err := uc.LotStatus(context.Background(), scan.ScanInput{Raw: "QC1"})
	assert.ErrorIs(t, err, domain.ErrModuleDisabled)
}
