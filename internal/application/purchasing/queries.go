package purchasing

import (
	"context"

	"github.com/sublirex/inventario-api/internal/application/dto"
	"github.com/sublirex/inventario-api/internal/domain/repository"
)

// Get devuelve la ficha de la compra; nil si no existe o si el id no es un UUID.
func (s *Service) Get(ctx context.Context, purchaseID string) (*dto.PurchaseDetailResponse, error) {
	if !validID(purchaseID) {
		return nil, nil
	}
	d, err := s.purchaseRepo.GetDetail(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}
	out := &dto.PurchaseDetailResponse{
		ID:            d.Purchase.ID,
		SupplierID:    d.Purchase.SupplierID,
		SupplierName:  d.SupplierName,
		WarehouseID:   d.Purchase.WarehouseID,
		WarehouseName: d.WarehouseName,
		PurchasedAt:   d.Purchase.PurchasedAt,
		Total:         d.Purchase.Total,
		Note:          d.Purchase.Note,
		CreatedBy:     d.CreatedByName,
		UpdatedBy:     d.UpdatedByName,
		CreatedAt:     d.Purchase.CreatedAt,
		UpdatedAt:     d.Purchase.UpdatedAt,
		Lines:         make([]dto.PurchaseLineResponse, 0, len(d.Lines)),
	}
	for _, l := range d.Lines {
		out.Lines = append(out.Lines, dto.PurchaseLineResponse{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal,
		})
	}
	return out, nil
}

// List lista compras por fecha descendente, opcionalmente filtradas por mes y año.
func (s *Service) List(ctx context.Context, filter repository.PurchaseFilter) (*dto.PurchaseListResponse, error) {
	rows, err := s.purchaseRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseSummaryResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.PurchaseSummaryResponse{
			ID:            r.ID,
			PurchasedAt:   r.PurchasedAt,
			SupplierName:  r.SupplierName,
			WarehouseName: r.WarehouseName,
			Total:         r.Total,
			CreatedBy:     r.CreatedByName,
			UpdatedBy:     r.UpdatedByName,
		})
	}
	return &dto.PurchaseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}
