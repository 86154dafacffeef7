package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-control/internal/application/inventory"
	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
	"github.com/jhoicas/stock-control/internal/infrastructure/memory"
)

func seedLot(t *testing.T, s *memory.Store, lotNumber string, expiry time.Time, stock int64) *entity.StockLot {
	t.Helper()
	ctx := context.Background()
	p, err := s.Products().GetByCode(ctx, "P-1")
	require.NoError(t, err)
	if p == nil {
		p = &entity.Product{ID: uuid.New().String(), ProductCode: "P-1", Name: "Guantes"}
		require.NoError(t, s.Products().Create(ctx, p))
	}
	lot := &entity.StockLot{
		ID: uuid.New().String(), ProductID: p.ID, LotNumber: lotNumber, ExpiryDate: expiry,
		CurrentStock: decimal.NewFromInt(stock), UnitsPerQuantity: 1, Feature: entity.FeatureUnit,
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.Lots().Create(ctx, lot))
	return lot
}

// ── Unicidad ─────────────────────────────────────────────────────────────────

func TestProducts_CodigoUnicoSinMayusculas(t *testing.T) {
	s := memory.NewStore(0)
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "1", ProductCode: "abc"}))
	err := s.Products().Create(ctx, &entity.Product{ID: "2", ProductCode: "ABC"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	p, err := s.Products().GetByCode(ctx, "Abc")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "1", p.ID)
}

func TestLots_UnicoPorProductoLoteVencimiento(t *testing.T) {
	s := memory.NewStore(0)
	exp := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	lot := seedLot(t, s, "L1", exp, 1)

	dup := *lot
	dup.ID = uuid.New().String()
	dup.LotNumber = "l1"
	assert.ErrorIs(t, s.Lots().Create(context.Background(), &dup), domain.ErrDuplicate)

	dup.ExpiryDate = exp.AddDate(0, 0, 1)
	assert.NoError(t, s.Lots().Create(context.Background(), &dup))
}

// ── Orden y filtros ──────────────────────────────────────────────────────────

func TestLots_ListByProductOrdenVencimientoDesc(t *testing.T) {
	s := memory.NewStore(0)
	a := seedLot(t, s, "A", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 1)
	b := seedLot(t, s, "B", time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), 1)

	lots, err := s.Lots().ListByProduct(context.Background(), a.ProductID, repository.LotFilter{})
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.Equal(t, b.ID, lots[0].ID)
	assert.Equal(t, a.ID, lots[1].ID)

	exp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	lots, err = s.Lots().ListByProduct(context.Background(), a.ProductID, repository.LotFilter{ExpiryDate: &exp})
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, a.ID, lots[0].ID)
}

func TestLots_DevuelveCopias(t *testing.T) {
	s := memory.NewStore(0)
	lot := seedLot(t, s, "A", time.Now(), 5)
	got, err := s.Lots().GetByID(context.Background(), lot.ID)
	require.NoError(t, err)
	got.CurrentStock = decimal.Zero

	again, err := s.Lots().GetByID(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.True(t, again.CurrentStock.Equal(decimal.NewFromInt(5)))
}

// ── Transacciones ────────────────────────────────────────────────────────────

func TestTxRunner_ErrorDeshaceTodo(t *testing.T) {
	s := memory.NewStore(0)
	lot := seedLot(t, s, "A", time.Now(), 5)
	require.NoError(t, s.Locations().Create(context.Background(), &entity.Location{ID: "loc", Name: "Nevera"}))
	boom := errors.New("boom")

	err := s.TxRunner().Run(context.Background(), func(r inventory.TxRepos) error {
		l, err := r.Lots.GetForUpdate(context.Background(), lot.ID)
		require.NoError(t, err)
		l.CurrentStock = decimal.NewFromInt(1)
		require.NoError(t, r.Lots.UpdateQuantities(context.Background(), l))
		b, err := r.Balances.GetOrCreateForUpdate(context.Background(), "loc", lot.ID)
		require.NoError(t, err)
		b.Quantity = decimal.NewFromInt(1)
		require.NoError(t, r.Balances.Save(context.Background(), b))
		require.NoError(t, r.Ledger.Create(context.Background(), &entity.LedgerEntry{ID: "e1", LotID: lot.ID}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Lots().GetByID(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentStock.Equal(decimal.NewFromInt(5)))
	balances, err := s.Balances().ListByLot(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.Empty(t, balances)
	entries, err := s.Ledger().ListByLot(context.Background(), lot.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTxRunner_PanicDeshaceYRelanza(t *testing.T) {
	s := memory.NewStore(0)
	lot := seedLot(t, s, "A", time.Now(), 5)

	assert.Panics(t, func() {
		_ = s.TxRunner().Run(context.Background(), func(r inventory.TxRepos) error {
			l, _ := r.Lots.GetForUpdate(context.Background(), lot.ID)
			l.CurrentStock = decimal.Zero
			_ = r.Lots.UpdateQuantities(context.Background(), l)
			panic("boom")
		})
	})

	got, err := s.Lots().GetByID(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentStock.Equal(decimal.NewFromInt(5)))

	// El bloqueo se liberó.
	err = s.TxRunner().Run(context.Background(), func(r inventory.TxRepos) error {
		_, err := r.Lots.GetForUpdate(context.Background(), lot.ID)
		return err
	})
	assert.NoError(t, err)
}

func TestTxRunner_BloqueoConTimeout(t *testing.T) {
	s := memory.NewStore(30 * time.Millisecond)
	lot := seedLot(t, s, "A", time.Now(), 5)

	held := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = s.TxRunner().Run(context.Background(), func(r inventory.TxRepos) error {
			_, err := r.Lots.GetForUpdate(context.Background(), lot.ID)
			close(held)
			<-done
			return err
		})
	}()
	<-held

	err := s.TxRunner().Run(context.Background(), func(r inventory.TxRepos) error {
		_, err := r.Lots.GetForUpdate(context.Background(), lot.ID)
		return err
	})
	close(done)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
}

func TestLots_DeleteEliminaSaldos(t *testing.T) {
	s := memory.NewStore(0)
	ctx := context.Background()
	lot := seedLot(t, s, "A", time.Now(), 5)
	require.NoError(t, s.TxRunner().Run(ctx, func(r inventory.TxRepos) error {
		b, err := r.Balances.GetOrCreateForUpdate(ctx, "loc", lot.ID)
		if err != nil {
			return err
		}
		b.Quantity = decimal.NewFromInt(5)
		return r.Balances.Save(ctx, b)
	}))

	require.NoError(t, s.Lots().Delete(ctx, lot.ID))
	balances, err := s.Balances().ListByLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Empty(t, balances)
}

func TestLots_DeleteEsperaBloqueoDeSaldo(t *testing.T) {
	s := memory.NewStore(30 * time.Millisecond)
	ctx := context.Background()
	lot := seedLot(t, s, "A", time.Now(), 5)

	held := make(chan struct{})
	done := make(chan struct{})
	finished := make(chan error, 1)
	go func() {
		finished <- s.TxRunner().Run(ctx, func(r inventory.TxRepos) error {
			b, err := r.Balances.GetOrCreateForUpdate(ctx, "A", lot.ID)
			if err != nil {
				return err
			}
			close(held)
			<-done
			b.Quantity = decimal.NewFromInt(5)
			return r.Balances.Save(ctx, b)
		})
	}()
	<-held

	err := s.TxRunner().Run(ctx, func(r inventory.TxRepos) error {
		if _, err := r.Lots.GetForUpdate(ctx, lot.ID); err != nil {
			return err
		}
		return r.Lots.Delete(ctx, lot.ID)
	})
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	close(done)
	require.NoError(t, <-finished)

	got, err := s.Lots().GetByID(ctx, lot.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "el borrado fallido se deshace")
	balances, err := s.Balances().ListByLot(ctx, lot.ID)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, balances[0].Quantity.Equal(decimal.NewFromInt(5)))
}

func TestLots_DeleteTrasLiberarSaldoNoDejaHuerfanos(t *testing.T) {
	s := memory.NewStore(2 * time.Second)
	ctx := context.Background()
	lot := seedLot(t, s, "A", time.Now(), 5)

	held := make(chan struct{})
	done := make(chan struct{})
	finished := make(chan error, 1)
	go func() {
		finished <- s.TxRunner().Run(ctx, func(r inventory.TxRepos) error {
			b, err := r.Balances.GetOrCreateForUpdate(ctx, "A", lot.ID)
			if err != nil {
				return err
			}
			close(held)
			<-done
			b.Quantity = decimal.NewFromInt(5)
			return r.Balances.Save(ctx, b)
		})
	}()
	<-held

	deleted := make(chan error, 1)
	go func() {
		deleted <- s.TxRunner().Run(ctx, func(r inventory.TxRepos) error {
			if _, err := r.Lots.GetForUpdate(ctx, lot.ID); err != nil {
				return err
			}
			return r.Lots.Delete(ctx, lot.ID)
		})
	}()
	time.Sleep(20 * time.Millisecond)
	close(done)
	require.NoError(t, <-finished)
	require.NoError(t, <-deleted)

	got, err := s.Lots().GetByID(ctx, lot.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	balances, err := s.Balances().ListByLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Empty(t, balances)
}

func TestBalances_SaveSinLote(t *testing.T) {
	s := memory.NewStore(0)
	ctx := context.Background()
	lot := seedLot(t, s, "A", time.Now(), 5)
	require.NoError(t, s.Lots().Delete(ctx, lot.ID))

	err := s.Balances().Save(ctx, &entity.LocationBalance{LocationID: "A", LotID: lot.ID, Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
	balances, err := s.Balances().ListByLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Empty(t, balances)
}

func TestLots_UpdateSettings(t *testing.T) {
	s := memory.NewStore(0)
	ctx := context.Background()
	lot := seedLot(t, s, "A", time.Now(), 5)

	upd := *lot
	upd.UnitsPerQuantity = 8
	upd.Feature = entity.FeatureVolume
	upd.CurrentStock = decimal.NewFromInt(99)
	require.NoError(t, s.Lots().UpdateSettings(ctx, &upd))

	got, err := s.Lots().GetByID(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.UnitsPerQuantity)
	assert.Equal(t, entity.FeatureVolume, got.Feature)
	assert.True(t, got.CurrentStock.Equal(decimal.NewFromInt(5)), "solo cambia la configuración")

	upd.ID = uuid.NewString()
	assert.ErrorIs(t, s.Lots().UpdateSettings(ctx, &upd), domain.ErrLotNotFound)
}

func TestLots_ListByExpiryVentanaSemiabierta(t *testing.T) {
	s := memory.NewStore(0)
	at := func(dd int) time.Time { return time.Date(2026, 3, dd, 0, 0, 0, 0, time.UTC) }
	late := seedLot(t, s, "C", at(10), 1)
	early := seedLot(t, s, "A", at(1), 1)
	mid := seedLot(t, s, "B", at(5), 1)

	from, before := at(1), at(10)
	lots, err := s.Lots().ListByExpiry(context.Background(), repository.ExpiryWindow{From: &from, Before: &before})
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.Equal(t, early.ID, lots[0].ID)
	assert.Equal(t, mid.ID, lots[1].ID)

	lots, err = s.Lots().ListByExpiry(context.Background(), repository.ExpiryWindow{From: &before})
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, late.ID, lots[0].ID)
}

func TestLedger_ListFiltraTipoYUsuario(t *testing.T) {
	s := memory.NewStore(0)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	entries := []*entity.LedgerEntry{
		{ID: "1", Kind: entity.LedgerWithdrawal, LotID: "l", UserID: "u1", CreatedAt: base},
		{ID: "2", Kind: entity.LedgerRegistration, LotID: "l", UserID: "u1", CreatedAt: base.Add(time.Minute)},
		{ID: "3", Kind: entity.LedgerWithdrawal, LotID: "l", UserID: "u2", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "4", Kind: entity.LedgerWithdrawal, LotID: "l", UserID: "u1", CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, e := range entries {
		require.NoError(t, s.Ledger().Create(ctx, e))
	}

	ids := func(list []*entity.LedgerEntry) []string {
		out := make([]string, 0, len(list))
		for _, e := range list {
			out = append(out, e.ID)
		}
		return out
	}

	all, err := s.Ledger().List(ctx, repository.LedgerFilter{Kind: entity.LedgerWithdrawal}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "3", "1"}, ids(all))

	own, err := s.Ledger().List(ctx, repository.LedgerFilter{Kind: entity.LedgerWithdrawal, UserID: "u1"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "1"}, ids(own))

	paged, err := s.Ledger().List(ctx, repository.LedgerFilter{}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2"}, ids(paged))
}

// ── Órdenes de compra ────────────────────────────────────────────────────────

func TestOrders_MarkOverdueYPrimeraAbierta(t *testing.T) {
	s := memory.NewStore(0)
	ctx := context.Background()
	lotID := "lot-1"
	now := time.Now()
	older := &entity.PurchaseOrder{ID: "po-1", LotID: &lotID, Status: entity.POStatusOrdered, OrderDate: now.Add(-48 * time.Hour), ExpectedDelivery: now.Add(-time.Hour)}
	newer := &entity.PurchaseOrder{ID: "po-2", LotID: &lotID, Status: entity.POStatusOrdered, OrderDate: now.Add(-time.Hour), ExpectedDelivery: now.Add(time.Hour)}
	require.NoError(t, s.Orders().Create(ctx, older))
	require.NoError(t, s.Orders().Create(ctx, newer))

	n, err := s.Orders().MarkOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	delayed, err := s.Orders().List(ctx, entity.POStatusDelayed, 10, 0)
	require.NoError(t, err)
	require.Len(t, delayed, 1)
	assert.Equal(t, "po-1", delayed[0].ID)

	first, err := s.Orders().FirstOpenForLot(ctx, lotID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "po-1", first.ID)
}

// ── Calidad ──────────────────────────────────────────────────────────────────

func TestQualityChecks_UltimoPorLote(t *testing.T) {
	s := memory.NewStore(0)
	ctx := context.Background()
	t0 := time.Now()
	require.NoError(t, s.QualityChecks().Create(ctx, &entity.QualityCheck{ID: "1", LotID: "a", Result: entity.QCResultFail, CreatedAt: t0}))
	require.NoError(t, s.QualityChecks().Create(ctx, &entity.QualityCheck{ID: "2", LotID: "a", Result: entity.QCResultPass, CreatedAt: t0.Add(time.Minute)}))
	require.NoError(t, s.QualityChecks().Create(ctx, &entity.QualityCheck{ID: "3", LotID: "b", CreatedAt: t0}))

	latest, err := s.QualityChecks().LatestByLots(ctx, []string{"a", "c"})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "2", latest["a"].ID)
}
