package inventory

import (
	"context"
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

// PurchaseOrderUseCase órdenes de compra: alta, seguimiento (marca de retraso) y cierre.
// El cierre suma stock a través del libro de cantidades.
type PurchaseOrderUseCase struct {
	ledger  *LedgerUseCase
	readers Readers
	caps    domain.Capabilities
	logger  zerolog.Logger
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(ledger *LedgerUseCase, readers Readers, caps domain.Capabilities, logger zerolog.Logger) *PurchaseOrderUseCase {
	return &PurchaseOrderUseCase{ledger: ledger, readers: readers, caps: caps, logger: logger}
}

// CreatePOInput alta de orden. Sin LotID se asocia el lote del producto que vence antes.
type CreatePOInput struct {
	ProductCode      string
	LotID            string
	Quantity         decimal.Decimal
	ExpectedDelivery time.Time
	UserID           string
}

// Create registra una orden en estado ORDERED.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, in CreatePOInput) (*entity.PurchaseOrder, error) {
	if !uc.caps.Enabled(domain.ModulePurchaseOrders) {
		return nil, domain.ErrModuleDisabled
	}
	if in.ProductCode == "" || in.UserID == "" || !in.Quantity.IsPositive() || in.ExpectedDelivery.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	product, err := findProduct(ctx, uc.readers.Products, scan.Query{RawCode: in.ProductCode})
	if err != nil {
		return nil, err
	}

	var lot *entity.StockLot
	if in.LotID != "" {
		lot, err = uc.readers.Lots.GetByID(ctx, in.LotID)
		if err != nil {
			return nil, err
		}
		if lot == nil || lot.ProductID != product.ID {
			return nil, domain.ErrLotNotFound
		}
	} else {
		lots, err := uc.readers.Lots.ListByProduct(ctx, product.ID, repository.LotFilter{})
		if err != nil {
			return nil, err
		}
		if len(lots) > 0 {
			lot = lots[len(lots)-1] // orden de almacén es vencimiento DESC
		}
	}

	if lot != nil {
		// Misma regla que aplicará Deliver al sumar la cantidad al lote.
		if _, err := inventory.ApplyRegistration(*lot, in.Quantity); err != nil {
			return nil, err
		}
	}

	now := uc.ledger.now()
	po := &entity.PurchaseOrder{
		ID:               uuid.New().String(),
		ProductID:        product.ID,
		ProductCode:      product.ProductCode,
		ProductName:      product.Name,
		QuantityOrdered:  in.Quantity,
		Status:           entity.POStatusOrdered,
		OrderDate:        now,
		ExpectedDelivery: in.ExpectedDelivery,
		OrderedBy:        in.UserID,
	}
	if lot != nil {
		po.LotID = &lot.ID
		po.LotNumber = lot.LotNumber
		exp := lot.ExpiryDate
		po.ExpiryDate = &exp
	}
	if err := uc.readers.Orders.Create(ctx, po); err != nil {
		return nil, err
	}
	uc.logger.Info().Str("po_id", po.ID).Str("product_code", po.ProductCode).
		Str("quantity", po.QuantityOrdered.String()).Msg("orden de compra creada")
	return po, nil
}

// List marca como DELAYED las órdenes vencidas y devuelve el listado.
func (uc *PurchaseOrderUseCase) List(ctx context.Context, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	if !uc.caps.Enabled(domain.ModulePurchaseOrders) {
		return nil, domain.ErrModuleDisabled
	}
	switch status {
	case "", entity.POStatusOrdered, entity.POStatusDelayed, entity.POStatusDelivered:
	default:
		return nil, domain.ErrInvalidInput
	}
	n, err := uc.readers.Orders.MarkOverdue(ctx, uc.ledger.now())
	if err != nil {
		return nil, err
	}
	if n > 0 {
		uc.logger.Info().Int64("orders", n).Msg("órdenes marcadas como retrasadas")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.readers.Orders.List(ctx, status, limit, offset)
}

// CompleteInput recepción de mercancía escaneada.
type CompleteInput struct {
	Query    scan.Query
	Quantity decimal.Decimal
	NewLot   LotSettings
	UserID   string
	Barcode  string
}

// CompleteResult registro de stock y, si la había, la orden abierta que quedó entregada.
type CompleteResult struct {
	*RegisterResult
	Order *entity.PurchaseOrder
}

// Complete registra la cantidad recibida en el lote (creándolo si hace falta) y marca
// entregada la primera orden abierta de ese lote, todo en una transacción.
func (uc *PurchaseOrderUseCase) Complete(ctx context.Context, in CompleteInput) (*CompleteResult, error) {
	if !uc.caps.Enabled(domain.ModulePurchaseOrders) {
		return nil, domain.ErrModuleDisabled
	}
	if !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	var order *entity.PurchaseOrder
	reg, err := uc.ledger.register(ctx, RegisterInput{
		Query:    in.Query,
		Quantity: in.Quantity,
		NewLot:   in.NewLot,
		UserID:   in.UserID,
		Barcode:  in.Barcode,
	}, entity.LedgerPOCompletion, func(ctx context.Context, r TxRepos, res *RegisterResult) error {
		order = nil
		po, err := r.Orders.FirstOpenForLot(ctx, res.Lot.ID)
		if err != nil || po == nil {
			return err
		}
		markDelivered(po, in.UserID, res.Entry.CreatedAt)
		if err := r.Orders.Update(ctx, po); err != nil {
			return err
		}
		order = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	if order != nil {
		uc.logger.Info().Str("po_id", order.ID).Str("lot_id", reg.Lot.ID).Msg("orden de compra entregada")
	}
	return &CompleteResult{RegisterResult: reg, Order: order}, nil
}

// Deliver marca la orden como entregada y, si tiene lote, suma la cantidad pedida.
// Una orden ya entregada devuelve domain.ErrConflict sin tocar el stock.
func (uc *PurchaseOrderUseCase) Deliver(ctx context.Context, orderID, userID string) (*entity.PurchaseOrder, error) {
	if !uc.caps.Enabled(domain.ModulePurchaseOrders) {
		return nil, domain.ErrModuleDisabled
	}
	if orderID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.PurchaseOrder
	var entry *entity.LedgerEntry
	err := uc.ledger.atomically(ctx, "deliver_po", func(r TxRepos) error {
		entry = nil
		po, err := r.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if po == nil {
			return domain.ErrNotFound
		}
		if !po.IsOpen() {
			return domain.ErrConflict
		}
		now := uc.ledger.now()
		if po.LotID != nil {
			lot, err := r.Lots.GetForUpdate(ctx, *po.LotID)
			if err != nil {
				return err
			}
			if lot != nil {
				stock, err := inventory.ApplyRegistration(*lot, po.QuantityOrdered)
				if err != nil {
					return err
				}
				lot.CurrentStock, lot.UpdatedAt = stock, now
				if err := r.Lots.UpdateQuantities(ctx, lot); err != nil {
					return err
				}
				product, err := r.Products.GetByID(ctx, lot.ProductID)
				if err != nil {
					return err
				}
				entry = newEntry(entity.LedgerPOCompletion, lot, product, po.QuantityOrdered, userID, "", now)
				if err := r.Ledger.Create(ctx, entry); err != nil {
					return err
				}
			}
		}
		markDelivered(po, userID, now)
		if err := r.Orders.Update(ctx, po); err != nil {
			return err
		}
		out = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	if entry != nil {
		uc.ledger.logMutation(entry)
	}
	return out, nil
}

func markDelivered(po *entity.PurchaseOrder, userID string, at time.Time) {
	po.Status = entity.POStatusDelivered
	po.DeliveredAt = &at
	po.CompletedBy = &userID
}
