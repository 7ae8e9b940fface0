package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sublirex/inventario-api/internal/domain/entity"
	"github.com/sublirex/inventario-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre product_stock (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto en una bodega.
func (r *StockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	query := `
		SELECT product_id, bodega_id, cantidad, updated_at
		FROM product_stock WHERE product_id = $1 AND bodega_id = $2`
	return r.scanOne(ctx, "get stock", query, productID, warehouseID)
}

// Sentencias de GetForUpdate. La fila se crea en cero antes del SELECT FOR UPDATE:
// sin fila no hay nada que bloquear y dos ajustes concurrentes leerían ambos cero.
const (
	ensureStockRowSQL = `
		INSERT INTO product_stock (product_id, bodega_id, cantidad, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, bodega_id) DO NOTHING`
	lockStockRowSQL = `
		SELECT product_id, bodega_id, cantidad, updated_at
		FROM product_stock WHERE product_id = $1 AND bodega_id = $2
		FOR UPDATE`
)

// GetForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE), creándola en cero si no existe.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	if _, err := r.q.Exec(ctx, ensureStockRowSQL, productID, warehouseID); err != nil {
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}
	return r.scanOne(ctx, "get stock for update", lockStockRowSQL, productID, warehouseID)
}

// ApplyDelta suma delta a la fila (product_id, bodega_id) en una sola sentencia; crea la fila si no existe.
func (r *StockRepo) ApplyDelta(ctx context.Context, productID, warehouseID string, delta decimal.Decimal) error {
	query := `
		INSERT INTO product_stock (product_id, bodega_id, cantidad, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, bodega_id)
		DO UPDATE SET cantidad = product_stock.cantidad + EXCLUDED.cantidad, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, productID, warehouseID, delta); err != nil {
		return fmt.Errorf("apply stock delta: %w", err)
	}
	return nil
}

func (r *StockRepo) scanOne(ctx context.Context, op, query, productID, warehouseID string) (*entity.StockLevel, error) {
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(
		&s.ProductID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &s, nil
}
