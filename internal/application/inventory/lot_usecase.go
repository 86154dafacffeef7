package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/inventory"
)

// CreateLotInput alta manual de un lote (sin escaneo).
type CreateLotInput struct {
	ProductID string
	LotNumber string
	Expiry    time.Time
	Settings  LotSettings
	Quantity  decimal.Decimal // stock inicial; cero = lote vacío
	UserID    string
}

// CreateLot da de alta un lote con su configuración. Un stock inicial se registra en el
// libro como REGISTRATION en la misma transacción. Un lote repetido devuelve
// domain.ErrDuplicate.
func (uc *LedgerUseCase) CreateLot(ctx context.Context, in CreateLotInput) (*RegisterResult, error) {
	lotNumber := strings.TrimSpace(in.LotNumber)
	if in.ProductID == "" || lotNumber == "" || in.Expiry.IsZero() || in.UserID == "" || in.Quantity.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	settings := in.Settings.withDefaults()
	if err := inventory.ValidateLotSettings(settings.UnitsPerQuantity, settings.Feature, 0); err != nil {
		return nil, err
	}

	var out *RegisterResult
	// Sin reintento: aquí ErrDuplicate es un lote repetido, no una carrera.
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		product, err := r.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}
		now := uc.now()
		y, m, d := in.Expiry.Date()
		lot := &entity.StockLot{
			ID:               uuid.New().String(),
			ProductID:        product.ID,
			LotNumber:        lotNumber,
			ExpiryDate:       time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			CurrentStock:     decimal.Zero,
			UnitsPerQuantity: settings.UnitsPerQuantity,
			Feature:          settings.Feature,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := r.Lots.Create(ctx, lot); err != nil {
			return err
		}
		out = &RegisterResult{Product: product, Lot: lot, Created: true}
		if in.Quantity.IsZero() {
			return nil
		}
		stock, err := inventory.ApplyRegistration(*lot, in.Quantity)
		if err != nil {
			return err
		}
		lot.CurrentStock = stock
		if err := r.Lots.UpdateQuantities(ctx, lot); err != nil {
			return err
		}
		out.Entry = newEntry(entity.LedgerRegistration, lot, product, in.Quantity, in.UserID, "", now)
		return r.Ledger.Create(ctx, out.Entry)
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info().Str("lot_id", out.Lot.ID).Str("lot_number", out.Lot.LotNumber).
		Int("units_per_quantity", out.Lot.UnitsPerQuantity).Str("feature", out.Lot.Feature).Msg("lote creado")
	if out.Entry != nil {
		uc.logMutation(out.Entry)
	}
	return out, nil
}

// UpdateLotSettings cambia factor de conversión y tipo de un lote existente. Un factor
// que no supere el acumulado parcial actual devuelve domain.ErrConflict.
func (uc *LedgerUseCase) UpdateLotSettings(ctx context.Context, lotID string, settings LotSettings) (*entity.StockLot, error) {
	if lotID == "" || settings.UnitsPerQuantity == 0 || settings.Feature == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.StockLot
	err := uc.atomically(ctx, "update_lot_settings", func(r TxRepos) error {
		lot, err := r.Lots.GetForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrLotNotFound
		}
		if err := inventory.ValidateLotSettings(settings.UnitsPerQuantity, settings.Feature, lot.AccumulatedPartial); err != nil {
			return err
		}
		lot.UnitsPerQuantity = settings.UnitsPerQuantity
		lot.Feature = settings.Feature
		lot.UpdatedAt = uc.now()
		if err := r.Lots.UpdateSettings(ctx, lot); err != nil {
			return err
		}
		out = lot
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info().Str("lot_id", out.ID).Int("units_per_quantity", out.UnitsPerQuantity).
		Str("feature", out.Feature).Msg("configuración de lote actualizada")
	return out, nil
}
