// Package reports expone las vistas de solo lectura sobre stock y kardex y sus exportaciones.
package reports

import (
	"context"
	"time"

	"github.com/sublirex/inventario-api/internal/application/dto"
	"github.com/sublirex/inventario-api/internal/domain"
	"github.com/sublirex/inventario-api/internal/domain/repository"
)

const (
	defaultKardexLimit = 100
	maxKardexLimit     = 500
)

// Service consultas de stock, kardex y exportaciones.
type Service struct {
	repo      repository.ReportRepository
	purchases PurchaseReader
	pdf       PurchasePDFGenerator
	sheet     StockSheetGenerator
	now       func() time.Time
}

// NewService construye el servicio de reportes.
func NewService(
	repo repository.ReportRepository,
	purchases PurchaseReader,
	pdf PurchasePDFGenerator,
	sheet StockSheetGenerator,
) *Service {
	return &Service{repo: repo, purchases: purchases, pdf: pdf, sheet: sheet, now: time.Now}
}

// GlobalStock stock total por producto sumando todas las bodegas (cero si no tiene filas).
func (s *Service) GlobalStock(ctx context.Context) ([]dto.ProductStockResponse, error) {
	rows, err := s.repo.GlobalStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductStockResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ProductStockResponse{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Quantity:    r.Quantity,
		})
	}
	return out, nil
}

// ProductStock existencias de un producto en cada bodega.
func (s *Service) ProductStock(ctx context.Context, productID string) ([]dto.WarehouseStockResponse, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "required")
	}
	rows, err := s.repo.StockByWarehouse(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.WarehouseStockResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.WarehouseStockResponse{
			WarehouseID:   r.WarehouseID,
			WarehouseName: r.WarehouseName,
			Quantity:      r.Quantity,
		})
	}
	return out, nil
}

// Kardex lista movimientos del más reciente al más antiguo.
func (s *Service) Kardex(ctx context.Context, filter repository.KardexFilter) ([]dto.KardexEntryResponse, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, domain.NewValidationError("from", "ltefield=to")
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultKardexLimit
	}
	if filter.Limit > maxKardexLimit {
		filter.Limit = maxKardexLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	rows, err := s.repo.Kardex(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.KardexEntryResponse, 0, len(rows))
	for _, r := range rows {
		e := dto.KardexEntryResponse{
			ID:            r.ID,
			ProductID:     r.ProductID,
			ProductName:   r.ProductName,
			WarehouseID:   r.WarehouseID,
			WarehouseName: r.WarehouseName,
			Direction:     r.Direction,
			Quantity:      r.Quantity,
			Reason:        r.Reason,
			SourceType:    r.SourceType,
			SourceID:      r.SourceID,
			CreatedAt:     r.CreatedAt,
		}
		if r.Username != nil {
			e.Username = *r.Username
		}
		out = append(out, e)
	}
	return out, nil
}

// ExportGlobalStockXLSX genera el .xlsx del stock global.
func (s *Service) ExportGlobalStockXLSX(ctx context.Context) ([]byte, error) {
	rows, err := s.GlobalStock(ctx)
	if err != nil {
		return nil, err
	}
	return s.sheet.GenerateStockSheet(ctx, rows, s.now())
}

// PurchasePDF genera el PDF de la ficha de compra. Compra inexistente: domain.ErrNotFound.
func (s *Service) PurchasePDF(ctx context.Context, purchaseID string) ([]byte, error) {
	purchase, err := s.purchases.Get(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, domain.ErrNotFound
	}
	return s.pdf.GeneratePurchasePDF(ctx, purchase)
}
