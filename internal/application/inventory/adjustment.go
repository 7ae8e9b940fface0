package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/sublirex/inventario-api/internal/domain"
	dominv "github.com/sublirex/inventario-api/internal/domain/inventory"
	"github.com/sublirex/inventario-api/internal/domain/entity"
	"github.com/sublirex/inventario-api/internal/domain/repository"
)

// AdjustInput fija el stock de un producto en una bodega a una cantidad absoluta (conteo físico).
type AdjustInput struct {
	ProductID   string
	WarehouseID string
	UserID      string
	Quantity    decimal.Decimal
}

// AdjustResult resultado de un ajuste. Delta cero significa que no se registró movimiento.
type AdjustResult struct {
	AdjustmentID string          `json:"adjustment_id"`
	Previous     decimal.Decimal `json:"previous"`
	Current      decimal.Decimal `json:"current"`
	Delta        decimal.Decimal `json:"delta"`
}

// AdjustmentUseCase registra ajustes manuales de inventario a través del ledger,
// de modo que el ajuste queda en el kardex con motivo AJUSTE.
type AdjustmentUseCase struct {
	txRunner      TxRunner
	ledger        *Ledger
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	log           zerolog.Logger
}

// NewAdjustmentUseCase construye el caso de uso.
func NewAdjustmentUseCase(
	txRunner TxRunner,
	ledger *Ledger,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	log zerolog.Logger,
) *AdjustmentUseCase {
	return &AdjustmentUseCase{
		txRunner:      txRunner,
		ledger:        ledger,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		log:           log,
	}
}

// Adjust bloquea la fila de stock, calcula delta = objetivo - actual y lo aplica como movimiento.
func (uc *AdjustmentUseCase) Adjust(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	if in.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if in.ProductID == "" {
		return nil, domain.NewValidationError("product_id", "required")
	}
	if in.WarehouseID == "" {
		return nil, domain.NewValidationError("warehouse_id", "required")
	}
	if in.Quantity.IsNegative() {
		return nil, domain.NewValidationError("quantity", "gte=0")
	}
	if !dominv.FitsScale(in.Quantity) {
		return nil, domain.NewValidationError("quantity", fmt.Sprintf("max_scale=%d", dominv.MaxScale))
	}

	product, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if product == nil || wh == nil {
		return nil, domain.ErrNotFound
	}

	res := &AdjustResult{AdjustmentID: uuid.New().String()}
	err = uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error {
		current, err := stockRepo.GetForUpdate(ctx, in.ProductID, in.WarehouseID)
		if err != nil {
			return err
		}
		res.Previous = current.Quantity
		res.Current = in.Quantity
		res.Delta = in.Quantity.Sub(current.Quantity)
		if res.Delta.IsZero() {
			return nil
		}
		sign := Inbound
		if res.Delta.IsNegative() {
			sign = Outbound
		}
		return uc.ledger.ApplyMovements(ctx, stockRepo, movRepo, Batch{
			Source: Source{Reason: entity.ReasonAjuste, Type: entity.SourceAjustes, ID: res.AdjustmentID},
			Placement: Placement{
				WarehouseID: in.WarehouseID,
				Lines:       []dominv.Line{{ProductID: in.ProductID, Quantity: res.Delta.Abs()}},
			},
			Sign:   sign,
			UserID: in.UserID,
		})
	})
	if err != nil {
		uc.log.Error().Err(err).
			Str("product_id", in.ProductID).
			Str("warehouse_id", in.WarehouseID).
			Str("user_id", in.UserID).
			Msg("ajuste de inventario revertido")
		return nil, &domain.TransactionError{Op: "ajuste de inventario", Err: err}
	}
	return res, nil
}
