package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-control/internal/application/inventory"
	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/infrastructure/memory"
)

type env struct {
	store  *memory.Store
	ledger *inventory.LedgerUseCase
	orders *inventory.PurchaseOrderUseCase
}

func newEnv(t *testing.T, caps domain.Capabilities) *env {
	t.Helper()
	s := memory.NewStore(0)
	cfg := inventory.DefaultLedgerConfig()
	cfg.MaxAttempts = 5
	cfg.RetryBackoff = time.Millisecond
	ledger := inventory.NewLedgerUseCase(s.TxRunner(), s.Readers(), caps, cfg, zerolog.Nop())
	return &env{
		store:  s,
		ledger: ledger,
		orders: inventory.NewPurchaseOrderUseCase(ledger, s.Readers(), caps, zerolog.Nop()),
	}
}

func (e *env) product(t *testing.T, code string, threshold int) *entity.Product {
	t.Helper()
	p := &entity.Product{ID: uuid.New().String(), ProductCode: code, Name: "Producto " + code, ReorderThreshold: threshold}
	require.NoError(t, e.store.Products().Create(context.Background(), p))
	return p
}

func (e *env) lot(t *testing.T, p *entity.Product, number string, expiry time.Time, stock int64, upq int) *entity.StockLot {
	t.Helper()
	l := &entity.StockLot{
		ID: uuid.New().String(), ProductID: p.ID, LotNumber: number, ExpiryDate: expiry,
		CurrentStock: decimal.NewFromInt(stock), UnitsPerQuantity: upq, Feature: entity.FeatureUnit, CreatedAt: time.Now(),
	}
	require.NoError(t, e.store.Lots().Create(context.Background(), l))
	return l
}

func (e *env) location(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, e.store.Locations().Create(context.Background(), &entity.Location{ID: id, Name: id, IsActive: true}))
}

func (e *env) stock(t *testing.T, lotID string) decimal.Decimal {
	t.Helper()
	l, err := e.store.Lots().GetByID(context.Background(), lotID)
	require.NoError(t, err)
	require.NotNil(t, l)
	return l.CurrentStock
}

func d(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}
