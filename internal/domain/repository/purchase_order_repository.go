package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-control/internal/domain/entity"
)

// PurchaseOrderRepository puerto de persistencia de órdenes de compra.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// FirstOpenForLot bloquea la orden abierta más antigua del lote (ORDERED o DELAYED).
	FirstOpenForLot(ctx context.Context, lotID string) (*entity.PurchaseOrder, error)
	Update(ctx context.Context, order *entity.PurchaseOrder) error
	// MarkOverdue pasa a DELAYED las órdenes ORDERED con entrega esperada anterior a now.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
	List(ctx context.Context, status string, limit, offset int) ([]*entity.PurchaseOrder, error)
}
