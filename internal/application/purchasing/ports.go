package purchasing

import (
	"context"

	"github.com/sublirex/inventario-api/internal/application/inventory"
	"github.com/sublirex/inventario-api/internal/domain/repository"
)

// PurchaseTxRunner ejecuta una función dentro de una transacción con repos de compras, stock y kardex.
type PurchaseTxRunner interface {
	RunPurchase(ctx context.Context, fn func(
		purchaseRepo repository.PurchaseRepository,
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// StockLedger integra compras con inventario usando los repositorios del caller (misma transacción).
// Si retorna error, el caller debe hacer rollback.
type StockLedger interface {
	ApplyMovements(
		ctx context.Context,
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
		b inventory.Batch,
	) error
	ReplaceDocument(
		ctx context.Context,
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
		src inventory.Source,
		userID string,
		previous, next inventory.Placement,
	) error
}

var _ StockLedger = (*inventory.Ledger)(nil)
