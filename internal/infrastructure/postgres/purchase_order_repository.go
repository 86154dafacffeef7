package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const poColumns = `id, product_id, lot_id, product_code, product_name, lot_number, expiry_date, quantity_ordered,
	status, order_date, expected_delivery, delivered_at, ordered_by, completed_by`

// PurchaseOrderRepo órdenes de compra sobre PostgreSQL (usable con pool o tx).
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

func scanPO(row pgx.Row) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	err := row.Scan(&po.ID, &po.ProductID, &po.LotID, &po.ProductCode, &po.ProductName, &po.LotNumber,
		&po.ExpiryDate, &po.QuantityOrdered, &po.Status, &po.OrderDate, &po.ExpectedDelivery,
		&po.DeliveredAt, &po.OrderedBy, &po.CompletedBy)
	if err != nil {
		return nil, err
	}
	return &po, nil
}

// Create persiste una orden.
func (r *PurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (` + poColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		po.ID, po.ProductID, po.LotID, po.ProductCode, po.ProductName, po.LotNumber, po.ExpiryDate,
		po.QuantityOrdered, po.Status, po.OrderDate, po.ExpectedDelivery, po.DeliveredAt, po.OrderedBy, po.CompletedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert purchase order", err)
	}
	return nil
}

// GetForUpdate obtiene la orden y bloquea la fila.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	po, err := scanPO(r.q.QueryRow(ctx, `SELECT `+poColumns+` FROM purchase_orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get purchase order for update", err)
	}
	return po, nil
}

// FirstOpenForLot bloquea la orden abierta más antigua del lote.
func (r *PurchaseOrderRepo) FirstOpenForLot(ctx context.Context, lotID string) (*entity.PurchaseOrder, error) {
	query := `
		SELECT ` + poColumns + ` FROM purchase_orders
		WHERE lot_id = $1 AND status IN ('ORDERED', 'DELAYED')
		ORDER BY order_date
		LIMIT 1
		FOR UPDATE`
	po, err := scanPO(r.q.QueryRow(ctx, query, lotID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("first open purchase order", err)
	}
	return po, nil
}

func (r *PurchaseOrderRepo) Update(ctx context.Context, po *entity.PurchaseOrder) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_orders SET status = $2, delivered_at = $3, completed_by = $4, lot_id = $5
		WHERE id = $1`, po.ID, po.Status, po.DeliveredAt, po.CompletedBy, po.LotID)
	if err != nil {
		return wrap("update purchase order", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkOverdue pasa a DELAYED las órdenes ORDERED con entrega prevista anterior a now.
func (r *PurchaseOrderRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_orders SET status = 'DELAYED'
		WHERE status = 'ORDERED' AND expected_delivery < $1`, now)
	if err != nil {
		return 0, wrap("mark overdue purchase orders", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PurchaseOrderRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+poColumns+` FROM purchase_orders
		WHERE $1 = '' OR status = $1
		ORDER BY order_date DESC LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, wrap("list purchase orders", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseOrder
	for rows.Next() {
		po, err := scanPO(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, po)
	}
	return list, rows.Err()
}
