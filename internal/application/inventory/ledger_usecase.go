package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-control/internal/application/scan"
	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/inventory"
	"github.com/jhoicas/stock-control/internal/domain/repository"
)

// LedgerConfig parámetros del libro de cantidades.
type LedgerConfig struct {
	MaxAttempts    int           // intentos ante conflicto de bloqueo antes de ErrConcurrentModification
	RetryBackoff   time.Duration // espera base entre intentos (crece lineal)
	PlaceholderLot string        // número de lote para lotes creados sin lote escaneado
}

// DefaultLedgerConfig valores por defecto.
func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{MaxAttempts: 3, RetryBackoff: 20 * time.Millisecond, PlaceholderLot: entity.PlaceholderLotNumber}
}

// LedgerUseCase libro de cantidades: retiros, registros, transferencias entre ubicaciones
// y descarte de lotes. Cada operación es una transacción con bloqueo de fila
// (SELECT FOR UPDATE) y reintento acotado ante conflictos.
type LedgerUseCase struct {
	txRunner TxRunner
	readers  Readers
	caps     domain.Capabilities
	cfg      LedgerConfig
	logger   zerolog.Logger
	now      func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	readers Readers,
	caps domain.Capabilities,
	cfg LedgerConfig,
	logger zerolog.Logger,
) *LedgerUseCase {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.PlaceholderLot == "" {
		cfg.PlaceholderLot = entity.PlaceholderLotNumber
	}
	return &LedgerUseCase{
		txRunner: txRunner,
		readers:  readers,
		caps:     caps,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// WithdrawInput retiro de un lote ya resuelto (por escaneo o selección manual).
type WithdrawInput struct {
	LotID    string
	Mode     inventory.WithdrawalMode
	Quantity decimal.Decimal // unidades (full) o volumen
	Parts    int             // partes en modo part
	UserID   string
	Barcode  string
}

// WithdrawResult lote tras el retiro y asiento generado.
type WithdrawResult struct {
	Lot           *entity.StockLot
	Entry         *entity.LedgerEntry
	UnitsConsumed decimal.Decimal
}

// Withdraw descuenta stock del lote. Si el resultado fuera negativo devuelve
// domain.ErrInsufficientStock y el lote queda intacto.
func (uc *LedgerUseCase) Withdraw(ctx context.Context, in WithdrawInput) (*WithdrawResult, error) {
	if in.LotID == "" || in.UserID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *WithdrawResult
	err := uc.atomically(ctx, "withdraw", func(r TxRepos) error {
		lot, err := r.Lots.GetForUpdate(ctx, in.LotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrLotNotFound
		}
		w, err := inventory.ApplyWithdrawal(*lot, in.Mode, in.Quantity, in.Parts)
		if err != nil {
			return err
		}
		now := uc.now()
		lot.CurrentStock = w.Stock
		lot.AccumulatedPartial = w.AccumulatedPartial
		lot.UpdatedAt = now
		if err := r.Lots.UpdateQuantities(ctx, lot); err != nil {
			return err
		}
		product, err := r.Products.GetByID(ctx, lot.ProductID)
		if err != nil {
			return err
		}
		entry := newEntry(entity.LedgerWithdrawal, lot, product, w.Delta.Neg(), in.UserID, in.Barcode, now)
		entry.PartsWithdrawn = w.Parts
		if err := r.Ledger.Create(ctx, entry); err != nil {
			return err
		}
		out = &WithdrawResult{Lot: lot, Entry: entry, UnitsConsumed: w.Delta}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logMutation(out.Entry)
	return out, nil
}

// LotSettings cómo se consume un lote. Valores cero: 1 parte por unidad, tipo unit.
type LotSettings struct {
	UnitsPerQuantity int
	Feature          string
}

func (s LotSettings) withDefaults() LotSettings {
	if s.UnitsPerQuantity == 0 {
		s.UnitsPerQuantity = 1
	}
	if s.Feature == "" {
		s.Feature = entity.FeatureUnit
	}
	return s
}

// RegisterInput registro de stock a partir de un escaneo interpretado.
type RegisterInput struct {
	Query    scan.Query
	Quantity decimal.Decimal // cero = 1
	NewLot   LotSettings     // solo se aplica si el lote se crea en este registro
	UserID   string
	Barcode  string
}

// RegisterResult lote destino, asiento y si el lote se creó en esta operación.
type RegisterResult struct {
	Product *entity.Product
	Lot     *entity.StockLot
	Entry   *entity.LedgerEntry
	Created bool
}

// Register suma stock al lote que coincide con (producto, lote, vencimiento) o crea uno
// nuevo con stock 0 antes de sumar. Sin lote escaneado usa el lote comodín; sin
// vencimiento, la fecha de hoy.
func (uc *LedgerUseCase) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	return uc.register(ctx, in, entity.LedgerRegistration, nil)
}

// afterRegister se ejecuta dentro de la misma transacción con el lote ya actualizado.
type afterRegister func(ctx context.Context, r TxRepos, res *RegisterResult) error

func (uc *LedgerUseCase) register(ctx context.Context, in RegisterInput, kind string, hook afterRegister) (*RegisterResult, error) {
	if in.UserID == "" {
		return nil, domain.ErrInvalidInput
	}
	qty := in.Quantity
	if qty.IsZero() {
		qty = decimal.NewFromInt(1)
	}
	settings := in.NewLot.withDefaults()
	if err := inventory.ValidateLotSettings(settings.UnitsPerQuantity, settings.Feature, 0); err != nil {
		return nil, err
	}
	var out *RegisterResult
	err := uc.atomically(ctx, "register", func(r TxRepos) error {
		product, err := findProduct(ctx, r.Products, in.Query)
		if err != nil {
			return err
		}
		lot, created, err := uc.lockOrCreateLot(ctx, r, product, in.Query, settings)
		if err != nil {
			return err
		}
		stock, err := inventory.ApplyRegistration(*lot, qty)
		if err != nil {
			return err
		}
		now := uc.now()
		lot.CurrentStock = stock
		lot.UpdatedAt = now
		if err := r.Lots.UpdateQuantities(ctx, lot); err != nil {
			return err
		}
		entry := newEntry(kind, lot, product, qty, in.UserID, in.Barcode, now)
		if err := r.Ledger.Create(ctx, entry); err != nil {
			return err
		}
		out = &RegisterResult{Product: product, Lot: lot, Entry: entry, Created: created}
		if hook != nil {
			return hook(ctx, r, out)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Created {
		uc.logger.Info().Str("lot_id", out.Lot.ID).Str("lot_number", out.Lot.LotNumber).
			Str("product_code", out.Product.ProductCode).Msg("lote creado en registro")
	}
	uc.logMutation(out.Entry)
	return out, nil
}

// findProduct prueba los códigos candidatos dentro de la transacción.
func findProduct(ctx context.Context, products repository.ProductRepository, q scan.Query) (*entity.Product, error) {
	for _, code := range scan.CandidateCodes(q) {
		p, err := products.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return p, nil
		}
	}
	return nil, &scan.ResolutionError{Err: domain.ErrProductNotFound, Reason: scan.ReasonNoProduct}
}

// lockOrCreateLot bloquea el lote (producto, lote, vencimiento) o lo crea con settings.
// Un lote existente conserva su configuración.
func (uc *LedgerUseCase) lockOrCreateLot(ctx context.Context, r TxRepos, product *entity.Product, q scan.Query, settings LotSettings) (*entity.StockLot, bool, error) {
	lots, err := r.Lots.ListByProduct(ctx, product.ID, repository.LotFilter{LotNumber: q.LotNumber, ExpiryDate: q.Expiry})
	if err != nil {
		return nil, false, err
	}
	if len(lots) > 0 {
		lot, err := r.Lots.GetForUpdate(ctx, lots[0].ID)
		if err != nil {
			return nil, false, err
		}
		if lot == nil {
			// Descartado entre la lectura y el bloqueo.
			return nil, false, domain.ErrConcurrentModification
		}
		return lot, false, nil
	}

	now := uc.now()
	lot := &entity.StockLot{
		ID:               uuid.New().String(),
		ProductID:        product.ID,
		LotNumber:        q.LotNumber,
		CurrentStock:     decimal.Zero,
		UnitsPerQuantity: settings.UnitsPerQuantity,
		Feature:          settings.Feature,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if lot.LotNumber == "" {
		lot.LotNumber = uc.cfg.PlaceholderLot
	}
	if q.Expiry != nil {
		lot.ExpiryDate = *q.Expiry
	} else {
		lot.ExpiryDate = today(now)
	}
	if err := r.Lots.Create(ctx, lot); err != nil {
		return nil, false, err
	}
	return lot, true, nil
}

// TransferInput movimiento de cantidad de un lote entre dos ubicaciones.
type TransferInput struct {
	LotID          string
	FromLocationID string
	ToLocationID   string
	Amount         decimal.Decimal
	UserID         string
}

// TransferResult saldos finales de ambas ubicaciones.
type TransferResult struct {
	From  *entity.LocationBalance
	To    *entity.LocationBalance
	Entry *entity.LedgerEntry
}

// Transfer descuenta del origen y suma al destino en la misma transacción. Si el origen
// quedara negativo devuelve domain.ErrInsufficientLocationStock y ningún saldo cambia.
// El stock total del lote no varía.
func (uc *LedgerUseCase) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if !uc.caps.Enabled(domain.ModuleLocationTracking) {
		return nil, domain.ErrModuleDisabled
	}
	if in.LotID == "" || in.FromLocationID == "" || in.ToLocationID == "" || in.UserID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.FromLocationID == in.ToLocationID || !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	var out *TransferResult
	err := uc.atomically(ctx, "transfer", func(r TxRepos) error {
		// Orden de bloqueo: lote y después saldos.
		lot, err := r.Lots.GetForUpdate(ctx, in.LotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrLotNotFound
		}
		if err := ensureLocations(ctx, r.Locations, in.FromLocationID, in.ToLocationID); err != nil {
			return err
		}
		balances, err := lockBalances(ctx, r.Balances, lot.ID, in.FromLocationID, in.ToLocationID)
		if err != nil {
			return err
		}
		from, to := balances[in.FromLocationID], balances[in.ToLocationID]

		next, err := inventory.ApplyLocationDelta(from.Quantity, in.Amount.Neg())
		if err != nil {
			return err
		}
		now := uc.now()
		from.Quantity, from.UpdatedAt = next, now
		to.Quantity, to.UpdatedAt = to.Quantity.Add(in.Amount), now
		if err := r.Balances.Save(ctx, from); err != nil {
			return err
		}
		if err := r.Balances.Save(ctx, to); err != nil {
			return err
		}

		product, err := r.Products.GetByID(ctx, lot.ProductID)
		if err != nil {
			return err
		}
		entry := newEntry(entity.LedgerLocationTransfer, lot, product, in.Amount, in.UserID, "", now)
		entry.FromLocationID = &in.FromLocationID
		entry.ToLocationID = &in.ToLocationID
		if err := r.Ledger.Create(ctx, entry); err != nil {
			return err
		}
		out = &TransferResult{From: from, To: to, Entry: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logMutation(out.Entry)
	return out, nil
}

// lockBalances bloquea las filas (ubicación, lote) en orden de location id para que dos
// transferencias cruzadas no se bloqueen mutuamente.
func lockBalances(ctx context.Context, repo repository.LocationBalanceRepository, lotID string, locationIDs ...string) (map[string]*entity.LocationBalance, error) {
	ordered := append([]string(nil), locationIDs...)
	sort.Strings(ordered)
	out := make(map[string]*entity.LocationBalance, len(ordered))
	for _, locID := range ordered {
		b, err := repo.GetOrCreateForUpdate(ctx, locID, lotID)
		if err != nil {
			return nil, err
		}
		out[locID] = b
	}
	return out, nil
}

func ensureLocations(ctx context.Context, repo repository.LocationRepository, ids ...string) error {
	for _, id := range ids {
		loc, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if loc == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

// AddLocationStockInput entrada de stock a una ubicación concreta.
type AddLocationStockInput struct {
	LotID      string
	LocationID string
	Quantity   decimal.Decimal
	UserID     string
}

// AddLocationStockResult lote y saldo tras la entrada.
type AddLocationStockResult struct {
	Lot     *entity.StockLot
	Balance *entity.LocationBalance
	Entry   *entity.LedgerEntry
}

// AddLocationStock suma la cantidad al saldo de la ubicación y al stock del lote.
func (uc *LedgerUseCase) AddLocationStock(ctx context.Context, in AddLocationStockInput) (*AddLocationStockResult, error) {
	if !uc.caps.Enabled(domain.ModuleLocationTracking) {
		return nil, domain.ErrModuleDisabled
	}
	if in.LotID == "" || in.LocationID == "" || in.UserID == "" || !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	var out *AddLocationStockResult
	err := uc.atomically(ctx, "add_location_stock", func(r TxRepos) error {
		lot, err := r.Lots.GetForUpdate(ctx, in.LotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrLotNotFound
		}
		if err := ensureLocations(ctx, r.Locations, in.LocationID); err != nil {
			return err
		}
		stock, err := inventory.ApplyRegistration(*lot, in.Quantity)
		if err != nil {
			return err
		}
		balance, err := r.Balances.GetOrCreateForUpdate(ctx, in.LocationID, lot.ID)
		if err != nil {
			return err
		}
		now := uc.now()
		lot.CurrentStock, lot.UpdatedAt = stock, now
		if err := r.Lots.UpdateQuantities(ctx, lot); err != nil {
			return err
		}
		balance.Quantity, balance.UpdatedAt = balance.Quantity.Add(in.Quantity), now
		if err := r.Balances.Save(ctx, balance); err != nil {
			return err
		}
		product, err := r.Products.GetByID(ctx, lot.ProductID)
		if err != nil {
			return err
		}
		entry := newEntry(entity.LedgerLocationReceipt, lot, product, in.Quantity, in.UserID, "", now)
		entry.ToLocationID = &in.LocationID
		if err := r.Ledger.Create(ctx, entry); err != nil {
			return err
		}
		out = &AddLocationStockResult{Lot: lot, Balance: balance, Entry: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logMutation(out.Entry)
	return out, nil
}

// DiscardLot registra la salida del stock restante y elimina el lote. Los saldos por
// ubicación se eliminan con él; el historial conserva código, lote y vencimiento.
func (uc *LedgerUseCase) DiscardLot(ctx context.Context, lotID, userID string) (*entity.LedgerEntry, error) {
	if lotID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.LedgerEntry
	err := uc.atomically(ctx, "discard_lot", func(r TxRepos) error {
		lot, err := r.Lots.GetForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrLotNotFound
		}
		product, err := r.Products.GetByID(ctx, lot.ProductID)
		if err != nil {
			return err
		}
		remaining := lot.CurrentStock
		lot.CurrentStock = decimal.Zero
		lot.AccumulatedPartial = 0
		entry := newEntry(entity.LedgerLotDiscard, lot, product, remaining.Neg(), userID, "", uc.now())
		if err := r.Ledger.Create(ctx, entry); err != nil {
			return err
		}
		if err := r.Lots.Delete(ctx, lot.ID); err != nil {
			return err
		}
		out = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logMutation(out)
	return out, nil
}

// Balances saldos por ubicación de un lote.
func (uc *LedgerUseCase) Balances(ctx context.Context, lotID string) ([]*entity.LocationBalance, error) {
	if !uc.caps.Enabled(domain.ModuleLocationTracking) {
		return nil, domain.ErrModuleDisabled
	}
	if lotID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.readers.Balances.ListByLot(ctx, lotID)
}

// History asientos de un lote, más recientes primero.
func (uc *LedgerUseCase) History(ctx context.Context, lotID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	if lotID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.readers.Ledger.ListByLot(ctx, lotID, limit, offset)
}

// Withdrawals historial global de retiros, más recientes primero. userID no vacío
// limita el historial a los retiros de ese usuario.
func (uc *LedgerUseCase) Withdrawals(ctx context.Context, userID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	filter := repository.LedgerFilter{Kind: entity.LedgerWithdrawal, UserID: userID}
	return uc.readers.Ledger.List(ctx, filter, limit, offset)
}

// atomically ejecuta fn en una transacción y la repite ante conflictos de bloqueo
// (o de creación concurrente del mismo lote) hasta cfg.MaxAttempts veces.
func (uc *LedgerUseCase) atomically(ctx context.Context, op string, fn func(r TxRepos) error) error {
	var err error
	for attempt := 1; attempt <= uc.cfg.MaxAttempts; attempt++ {
		err = uc.txRunner.Run(ctx, fn)
		if err == nil || !retryable(err) {
			return err
		}
		if attempt == uc.cfg.MaxAttempts {
			break
		}
		uc.logger.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("conflicto de concurrencia, reintentando")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(uc.cfg.RetryBackoff * time.Duration(attempt)):
		}
	}
	if errors.Is(err, domain.ErrConcurrentModification) {
		return err
	}
	return fmt.Errorf("%s: %w", op, domain.ErrConcurrentModification)
}

func retryable(err error) bool {
	return errors.Is(err, domain.ErrConcurrentModification) || errors.Is(err, domain.ErrDuplicate)
}

func (uc *LedgerUseCase) logMutation(e *entity.LedgerEntry) {
	uc.logger.Info().
		Str("kind", e.Kind).
		Str("lot_id", e.LotID).
		Str("lot_number", e.LotNumber).
		Str("quantity", e.Quantity.String()).
		Str("stock_after", e.StockAfter.String()).
		Str("user_id", e.UserID).
		Msg("movimiento registrado")
}

func newEntry(kind string, lot *entity.StockLot, product *entity.Product, qty decimal.Decimal, userID, barcode string, now time.Time) *entity.LedgerEntry {
	e := &entity.LedgerEntry{
		ID:                      uuid.New().String(),
		TransactionID:           uuid.New().String(),
		Kind:                    kind,
		LotID:                   lot.ID,
		LotNumber:               lot.LotNumber,
		ExpiryDate:              lot.ExpiryDate,
		Quantity:                qty,
		AccumulatedPartialAfter: lot.AccumulatedPartial,
		StockAfter:              lot.CurrentStock,
		UserID:                  userID,
		CreatedAt:               now,
	}
	if product != nil {
		e.ProductCode = product.ProductCode
		e.ProductName = product.Name
	}
	if barcode != "" {
		e.Barcode = &barcode
	}
	return e
}

func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
