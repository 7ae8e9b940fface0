package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sublirex/inventario-api/internal/application/inventory"
	"github.com/sublirex/inventario-api/internal/application/purchasing"
	"github.com/sublirex/inventario-api/internal/domain/repository"
)

var tracer = otel.Tracer("github.com/sublirex/inventario-api/postgres")

// Ensure TxRunner implements inventory.TxRunner and purchasing.PurchaseTxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ purchasing.PurchaseTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción con repos de stock y kardex (ajustes de inventario).
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return r.inTx(ctx, "inventory", func(tx pgx.Tx) error {
		return fn(NewStockRepository(tx), NewStockMovementRepository(tx))
	})
}

// RunPurchase inicia una transacción con repos de compras, stock y kardex (Create/Update de compras).
func (r *TxRunner) RunPurchase(ctx context.Context, fn func(
	purchaseRepo repository.PurchaseRepository,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return r.inTx(ctx, "purchase", func(tx pgx.Tx) error {
		return fn(NewPurchaseRepository(tx), NewStockRepository(tx), NewStockMovementRepository(tx))
	})
}

// inTx hace Begin, ejecuta fn y Commit; cualquier error deja la tx revertida por el Rollback diferido.
func (r *TxRunner) inTx(ctx context.Context, op string, fn func(tx pgx.Tx) error) error {
	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(attribute.String("tx.op", op)))
	defer span.End()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "begin")
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if err := fn(tx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rollback")
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		span.SetStatus(codes.Error, "commit")
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
