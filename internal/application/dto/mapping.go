package dto

import (
	"github.com/jhoicas/stock-control/internal/domain/barcode"
	"github.com/jhoicas/stock-control/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// FromProduct convierte la entidad a su salida HTTP.
func FromProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID,
		ProductCode:      p.ProductCode,
		Name:             p.Name,
		Supplier:         p.Supplier,
		ReorderThreshold: p.ReorderThreshold,
		LocationID:       p.LocationID,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// FromLot convierte un lote.
func FromLot(l *entity.StockLot) LotResponse {
	return LotResponse{
		ID:                 l.ID,
		ProductID:          l.ProductID,
		LotNumber:          l.LotNumber,
		ExpiryDate:         l.ExpiryDate.Format(dateLayout),
		CurrentStock:       l.CurrentStock,
		UnitsPerQuantity:   l.UnitsPerQuantity,
		AccumulatedPartial: l.AccumulatedPartial,
		Feature:            l.Feature,
	}
}

// FromLots convierte una lista de lotes; nunca devuelve nil.
func FromLots(lots []*entity.StockLot) []LotResponse {
	out := make([]LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, FromLot(l))
	}
	return out
}

// FromDecoded convierte el resultado del decodificador.
func FromDecoded(d *barcode.Decoded) *DecodedBarcodeResponse {
	if d == nil {
		return nil
	}
	return &DecodedBarcodeResponse{
		RawProductCode:        d.RawProductCode,
		NormalizedProductCode: d.NormalizedProductCode,
		LotNumber:             d.LotNumber,
		ExpiryDate:            d.ExpiryDate,
		Format:                string(d.Format),
	}
}

// FromEntry convierte un asiento del libro.
func FromEntry(e *entity.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:                      e.ID,
		Kind:                    e.Kind,
		LotID:                   e.LotID,
		ProductCode:             e.ProductCode,
		ProductName:             e.ProductName,
		LotNumber:               e.LotNumber,
		ExpiryDate:              e.ExpiryDate.Format(dateLayout),
		Quantity:                e.Quantity,
		PartsWithdrawn:          e.PartsWithdrawn,
		AccumulatedPartialAfter: e.AccumulatedPartialAfter,
		StockAfter:              e.StockAfter,
		FromLocationID:          e.FromLocationID,
		ToLocationID:            e.ToLocationID,
		Barcode:                 e.Barcode,
		UserID:                  e.UserID,
		CreatedAt:               e.CreatedAt,
	}
}

// FromBalance convierte un saldo por ubicación.
func FromBalance(b *entity.LocationBalance) LocationBalanceResponse {
	return LocationBalanceResponse{
		LocationID: b.LocationID,
		LotID:      b.LotID,
		Quantity:   b.Quantity,
		UpdatedAt:  b.UpdatedAt,
	}
}

// FromLocation convierte una ubicación.
func FromLocation(l *entity.Location) LocationResponse {
	return LocationResponse{ID: l.ID, Name: l.Name, Description: l.Description, IsActive: l.IsActive}
}

// FromPurchaseOrder convierte una orden de compra.
func FromPurchaseOrder(po *entity.PurchaseOrder) PurchaseOrderResponse {
	return PurchaseOrderResponse{
		ID:               po.ID,
		ProductID:        po.ProductID,
		LotID:            po.LotID,
		ProductCode:      po.ProductCode,
		ProductName:      po.ProductName,
		LotNumber:        po.LotNumber,
		ExpiryDate:       po.ExpiryDate,
		QuantityOrdered:  po.QuantityOrdered,
		Status:           po.Status,
		OrderDate:        po.OrderDate,
		ExpectedDelivery: po.ExpectedDelivery,
		DeliveredAt:      po.DeliveredAt,
		OrderedBy:        po.OrderedBy,
		CompletedBy:      po.CompletedBy,
	}
}

// FromQualityCheck convierte un control de calidad.
func FromQualityCheck(q *entity.QualityCheck) QualityCheckResponse {
	return QualityCheckResponse{
		ID:            q.ID,
		LotID:         q.LotID,
		PerformedBy:   q.PerformedBy,
		Status:        q.Status,
		TestReference: q.TestReference,
		Result:        q.Result,
		SignedOffBy:   q.SignedOffBy,
		SignedOffAt:   q.SignedOffAt,
		Notes:         q.Notes,
		CreatedAt:     q.CreatedAt,
	}
}
