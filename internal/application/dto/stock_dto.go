package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/stock/adjustments (conteo físico).
type AdjustStockRequest struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// ProductStockResponse stock global de un producto.
type ProductStockResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"stock_total"`
}

// WarehouseStockResponse existencias de un producto en una bodega.
type WarehouseStockResponse struct {
	WarehouseID   string          `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// KardexEntryResponse movimiento del kardex.
type KardexEntryResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	WarehouseID   string          `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	Direction     string          `json:"movimiento"`
	Quantity      decimal.Decimal `json:"cantidad"`
	Reason        string          `json:"motivo"`
	SourceType    string          `json:"referencia"`
	SourceID      string          `json:"referencia_id"`
	Username      string          `json:"usuario,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
