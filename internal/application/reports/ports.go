package reports

import (
	"context"
	"time"

	"github.com/sublirex/inventario-api/internal/application/dto"
)

// PurchaseReader obtiene la ficha de una compra (purchasing.Service la implementa).
type PurchaseReader interface {
	Get(ctx context.Context, purchaseID string) (*dto.PurchaseDetailResponse, error)
}

// PurchasePDFGenerator puerto de salida para la representación impresa de una compra.
type PurchasePDFGenerator interface {
	GeneratePurchasePDF(ctx context.Context, purchase *dto.PurchaseDetailResponse) ([]byte, error)
}

// StockSheetGenerator puerto de salida para la hoja de cálculo de stock global.
type StockSheetGenerator interface {
	GenerateStockSheet(ctx context.Context, rows []dto.ProductStockResponse, generatedAt time.Time) ([]byte, error)
}
