package inventory_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-control/internal/application/inventory"
	"github.com/jhoicas/stock-control/internal/application/scan"
	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-control/internal/domain/inventory"
)

// ── Retiro ───────────────────────────────────────────────────────────────────

func TestWithdraw_FullDescuentaYRegistraAsiento(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	p := e.product(t, "P1", 0)
	l := e.lot(t, p, "L1", day(2026, 1, 1), 5, 1)

	res, err := e.ledger.Withdraw(context.Background(), inventory.WithdrawInput{
		LotID: l.ID, Mode: domaininv.ModeFull, Quantity: d(2), UserID: "u1", Barcode: "P1",
	})
	require.NoError(t, err)
	assert.True(t, res.Lot.CurrentStock.Equal(d(3)))
	assert.Equal(t, entity.LedgerWithdrawal, res.Entry.Kind)
	assert.True(t, res.Entry.Quantity.Equal(d(-2)))
	assert.Equal(t, "P1", res.Entry.ProductCode)
	require.NotNil(t, res.Entry.Barcode)
	assert.True(t, e.stock(t, l.ID).Equal(d(3)))
}

func TestWithdraw_InsuficienteNoModificaNada(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	p := e.product(t, "P1", 0)
	l := e.lot(t, p, "L1", day(2026, 1, 1), 2, 1)

	_, err := e.ledger.Withdraw(context.Background(), inventory.WithdrawInput{
		LotID: l.ID, Mode: domaininv.ModeFull, Quantity: d(3), UserID: "u1",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, e.stock(t, l.ID).Equal(d(2)))

	hist, err := e.ledger.History(context.Background(), l.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestWithdraw_PartesAcumulanYConsumenUnidad(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	p := e.product(t, "P1", 0)
	l := e.lot(t, p, "L1", day(2026, 1, 1), 5, 10)

	res, err := e.ledger.Withdraw(context.Background(), inventory.WithdrawInput{LotID: l.ID, Mode: domaininv.ModePart, Parts: 7, UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 7, res.Lot.AccumulatedPartial)
	assert.True(t, res.Lot.CurrentStock.Equal(d(5)))

	res, err = e.ledger.Withdraw(context.Background(), inventory.WithdrawInput{LotID: l.ID, Mode: domaininv.ModePart, Parts: 4, UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Lot.AccumulatedPartial)
	assert.True(t, res.Lot.CurrentStock.Equal(d(4)))
	assert.True(t, res.UnitsConsumed.Equal(d(1)))
	assert.Equal(t, 4, res.Entry.PartsWithdrawn)
	assert.Equal(t, 1, res.Entry.AccumulatedPartialAfter)
}

func TestWithdraw_LoteInexistente(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	_, err := e.ledger.Withdraw(context.Background(), inventory.WithdrawInput{LotID: "nope", Mode: domaininv.ModeFull, Quantity: d(1), UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
}

func TestWithdraw_ConcurrentesNoPierdenActualizaciones(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	p := e.product(t, "P1", 0)
	l := e.lot(t, p, "L1", day(2026, 1, 1), 10, 1)

	var ok, short int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.ledger.Withdraw(context.Background(), inventory.WithdrawInput{
				LotID: l.ID, Mode: domaininv.ModeFull, Quantity: d(1), UserID: "u1",
			})
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case errors.Is(err, domain.ErrInsufficientStock):
				atomic.AddInt32(&short, 1)
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), ok)
	assert.Equal(t, int32(10), short)
	assert.True(t, e.stock(t, l.ID).IsZero())
	hist, err := e.ledger.History(context.Background(), l.ID, 100, 0)
	require.NoError(t, err)
	assert.Len(t, hist, 10)
}

// ── Registro ─────────────────────────────────────────────────────────────────

func TestRegister_CreaLoteYLuegoLoReutiliza(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	p := e.product(t, "12345678905", 0)
	exp := day(2027, 5, 31)
	q := scan.Query{RawCode: "00012345678905", NormalizedCode: "12345678905", LotNumber: "NEW1", Expiry: &exp}

	first, err := e.ledger.Register(context.Background(), inventory.RegisterInput{Query: q, Quantity: d(4), UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, p.ID, first.Product.ID)
	assert.Equal(t, "NEW1", first.Lot.LotNumber)
	assert.Equal(t, 1, first.Lot.UnitsPerQuantity)
	assert.True(t, first.Lot.CurrentStock.Equal(d(4)))
	assert.Equal(t, entity.LedgerRegistration, first.Entry.Kind)

	second, err := e.ledger.Register(context.Background(), inventory.RegisterInput{Query: q, UserID: "u1"})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Lot.ID, second.Lot.ID)
	assert.True(t, second.Lot.CurrentStock.Equal(d(5)))
}

func TestRegister_SinLoteUsaComodinYFechaDeHoy(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	e.product(t, "ABC", 0)

	res, err := e.ledger.Register(context.Background(), inventory.RegisterInput{Query: scan.Query{RawCode: "ABC"}, UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, entity.PlaceholderLotNumber, res.Lot.LotNumber)
	y, m, dd := time.Now().Date()
	ly, lm, ld := res.Lot.ExpiryDate.Date()
	assert.Equal(t, []int{y, int(m), dd}, []int{ly, int(lm), ld})
}

func TestRegister_ProductoDesconocido(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	_, err := e.ledger.Register(context.Background(), inventory.RegisterInput{Query: scan.Query{RawCode: "NADA"}, UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	var rerr *scan.ResolutionError
	assert.True(t, errors.As(err, &rerr))
}

func TestRegister_ConcurrentesCreanUnSoloLote(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	p := e.product(t, "ABC", 0)
	exp := day(2027, 1, 1)
	q := scan.Query{RawCode: "ABC", LotNumber: "X1", Expiry: &exp}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.ledger.Register(context.Background(), inventory.RegisterInput{Query: q, UserID: "u1"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	lots, err := e.store.Lots().FindByLotNumber(context.Background(), "X1")
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, p.ID, lots[0].ProductID)
	assert.True(t, lots[0].CurrentStock.Equal(d(8)))
}

// ── Transferencias ───────────────────────────────────────────────────────────

func TestTransfer_MueveCantidadSinCambiarStockTotal(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	p := e.product(t, "P1", 0)
	l := e.lot(t, p, "L1", day(2026, 1, 1), 0, 1)
	e.location(t, "a")
	e.location(t, "b")

	_, err := e.ledger.AddLocationStock(context.Background(), inventory.AddLocationStockInput{LotID: l.ID, LocationID: "a", Quantity: d(6), UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, e.stock(t, l.ID).Equal(d(6)))

	res, err := e.ledger.Transfer(context.Background(), inventory.TransferInput{LotID: l.ID, FromLocationID: "a", ToLocationID: "b", Amount: d(4), UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, res.From.Quantity.Equal(d(2)))
	assert.True(t, res.To.Quantity.Equal(d(4)))
	assert.Equal(t, entity.LedgerLocationTransfer, res.Entry.Kind)
	assert.True(t, e.stock(t, l.ID).Equal(d(6)))

	balances, err := e.ledger.Balances(context.Background(), l.ID)
	require.NoError(t, err)
	require.Len(t, balances, 2)
}

func TestTransfer_OrigenInsuficienteNoCambiaSaldos(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	p := e.product(t, "P1", 0)
	l := e.lot(t, p, "L1", day(2026, 1, 1), 0, 1)
	e.location(t, "a")
	e.location(t, "b")
	_, err := e.ledger.AddLocationStock(context.Background(), inventory.AddLocationStockInput{LotID: l.ID, LocationID: "a", Quantity: d(2), UserID: "u1"})
	require.NoError(t, err)

	_, err = e.ledger.Transfer(context.Background(), inventory.TransferInput{LotID: l.ID, FromLocationID: "a", ToLocationID: "b", Amount: d(3), UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrInsufficientLocationStock)

	balances, err := e.ledger.Balances(context.Background(), l.ID)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "a", balances[0].LocationID)
	assert.True(t, balances[0].Quantity.Equal(d(2)))
}

func TestTransfer_MismaUbicacionInvalida(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	_, err := e.ledger.Transfer(context.Background(), inventory.TransferInput{LotID: "l", FromLocationID: "a", ToLocationID: "a", Amount: d(1), UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransfer_ModuloInactivo(t *testing.T) {
	e := newEnv(t, domain.NewCapabilities(nil))
	_, err := e.ledger.Transfer(context.Background(), inventory.TransferInput{LotID: "l", FromLocationID: "a", ToLocationID: "b", Amount: d(1), UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrModuleDisabled)
	_, err = e.ledger.Balances(context.Background(), "l")
	assert.ErrorIs(t, err, domain.ErrModuleDisabled)
}

func TestTransfer_CruzadasConcurrentesNoSeBloquean(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	p := e.product(t, "P1", 0)
	l := e.lot(t, p, "L1", day(2026, 1, 1), 0, 1)
	e.location(t, "a")
	e.location(t, "b")
	for _, loc := range []string{"a", "b"} {
		_, err := e.ledger.AddLocationStock(context.Background(), inventory.AddLocationStockInput{LotID: l.ID, LocationID: loc, Quantity: d(50), UserID: "u1"})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := e.ledger.Transfer(context.Background(), inventory.TransferInput{LotID: l.ID, FromLocationID: "a", ToLocationID: "b", Amount: d(1), UserID: "u1"})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := e.ledger.Transfer(context.Background(), inventory.TransferInput{LotID: l.ID, FromLocationID: "b", ToLocationID: "a", Amount: d(1), UserID: "u1"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	balances, err := e.ledger.Balances(context.Background(), l.ID)
	require.NoError(t, err)
	for _, b := range balances {
		assert.True(t, b.Quantity.Equal(d(50)), b.LocationID)
	}
}

// ── Descarte e historial ─────────────────────────────────────────────────────

func TestDiscardLot_RegistraSalidaYConservaHistorial(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	p := e.product(t, "P1", 0)
	l := e.lot(t, p, "L1", day(2026, 1, 1), 7, 1)

	entry, err := e.ledger.DiscardLot(context.Background(), l.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.LedgerLotDiscard, entry.Kind)
	assert.True(t, entry.Quantity.Equal(d(-7)))
	assert.True(t, entry.StockAfter.IsZero())

	gone, err := e.store.Lots().GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	hist, err := e.ledger.History(context.Background(), l.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "L1", hist[0].LotNumber)

	_, err = e.ledger.DiscardLot(context.Background(), l.ID, "u1")
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
}

// ── Reintentos ───────────────────────────────────────────────────────────────

// flakyRunner falla con conflicto las primeras n veces.
type flakyRunner struct {
	inner inventory.TxRunner
	fails int32
	calls int32
}

func (f *flakyRunner) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	if atomic.AddInt32(&f.calls, 1) <= f.fails {
		return domain.ErrConcurrentModification
	}
	return f.inner.Run(ctx, fn)
}

func TestAtomically_ReintentaConflictos(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	p := e.product(t, "P1", 0)
	l := e.lot(t, p, "L1", day(2026, 1, 1), 3, 1)

	runner := &flakyRunner{inner: e.store.TxRunner(), fails: 2}
	cfg := inventory.LedgerConfig{MaxAttempts: 3, RetryBackoff: time.Millisecond}
	uc := inventory.NewLedgerUseCase(runner, e.store.Readers(), domain.AllCapabilities(), cfg, zerolog.Nop())

	_, err := uc.Withdraw(context.Background(), inventory.WithdrawInput{LotID: l.ID, Mode: domaininv.ModeFull, Quantity: d(1), UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), runner.calls)
	assert.True(t, e.stock(t, l.ID).Equal(d(2)))
}

func TestAtomically_AgotaIntentos(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	p := e.product(t, "P1", 0)
	l := e.lot(t, p, "L1", day(2026, 1, 1), 3, 1)

	runner := &flakyRunner{inner: e.store.TxRunner(), fails: 10}
	cfg := inventory.LedgerConfig{MaxAttempts: 2, RetryBackoff: time.Millisecond}
	uc := inventory.NewLedgerUseCase(runner, e.store.Readers(), domain.AllCapabilities(), cfg, zerolog.Nop())

	_, err := uc.Withdraw(context.Background(), inventory.WithdrawInput{LotID: l.ID, Mode: domaininv.ModeFull, Quantity: d(1), UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	assert.Equal(t, int32(2), runner.calls)
	assert.True(t, e.stock(t, l.ID).Equal(d(3)))
}

func TestAtomically_ErroresDeNegocioNoSeReintentan(t *testing.T) {
	e := newEnv(t, domain.AllCapabilities())
	p := e.product(t, "P1", 0)
	l := e.lot(t, p, "L1", day(2026, 1, 1), 0, 1)

	runner := &flakyRunner{inner: e.store.TxRunner()}
	uc := inventory.NewLedgerUseCase(runner, e.store.Readers(), domain.AllCapabilities(), inventory.DefaultLedgerConfig(), zerolog.Nop())

	_, err := uc.Withdraw(context.Background(), inventory.WithdrawInput{LotID: l.ID, Mode: domaininv.ModeFull, Quantity: d(1), UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int32(1), runner.calls)
}
