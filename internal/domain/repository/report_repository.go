package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ProductStockTotal stock global de un producto (todas las bodegas).
type ProductStockTotal struct {
	ProductID   string          `db:"product_id"`
	ProductName string          `db:"product_name"`
	Quantity    decimal.Decimal `db:"quantity"`
}

// WarehouseStock existencias de un producto en una bodega.
type WarehouseStock struct {
	WarehouseID   string          `db:"warehouse_id"`
	WarehouseName string          `db:"warehouse_name"`
	Quantity      decimal.Decimal `db:"quantity"`
}

// KardexFilter filtros del listado de movimientos. Campos vacíos no filtran.
type KardexFilter struct {
	ProductID   string
	WarehouseID string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// KardexEntry movimiento del kardex con nombres resueltos.
type KardexEntry struct {
	ID            string          `db:"id"`
	ProductID     string          `db:"product_id"`
	ProductName   string          `db:"product_name"`
	WarehouseID   string          `db:"bodega_id"`
	WarehouseName string          `db:"bodega_nombre"`
	Direction     string          `db:"movimiento"`
	Quantity      decimal.Decimal `db:"cantidad"`
	Reason        string          `db:"motivo"`
	SourceType    string          `db:"referencia"`
	SourceID      string          `db:"referencia_id"`
	Username      *string         `db:"username"`
	CreatedAt     time.Time       `db:"created_at"`
}

// ReportRepository consultas de solo lectura sobre stock y kardex.
type ReportRepository interface {
	GlobalStock(ctx context.Context) ([]ProductStockTotal, error)
	StockByWarehouse(ctx context.Context, productID string) ([]WarehouseStock, error)
	Kardex(ctx context.Context, filter KardexFilter) ([]KardexEntry, error)
}
