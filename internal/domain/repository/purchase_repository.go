package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sublirex/inventario-api/internal/domain/entity"
)

// PurchaseFilter filtros del listado de compras. Month y Year en cero no filtran.
type PurchaseFilter struct {
	Month  int
	Year   int
	Limit  int
	Offset int
}

// PurchaseSummary fila del listado de compras.
type PurchaseSummary struct {
	ID            string          `db:"id"`
	PurchasedAt   time.Time       `db:"fecha_compra"`
	SupplierName  string          `db:"proveedor_nombre"`
	WarehouseName string          `db:"bodega_nombre"`
	Total         decimal.Decimal `db:"total"`
	CreatedByName string          `db:"creador_username"`
	UpdatedByName *string         `db:"modificador_username"`
}

// PurchaseDetailLine línea de la ficha de compra con nombre de producto y subtotal.
type PurchaseDetailLine struct {
	ProductID   string          `db:"producto_id"`
	ProductName string          `db:"producto_nombre"`
	Quantity    decimal.Decimal `db:"cantidad"`
	UnitPrice   decimal.Decimal `db:"precio_unitario"`
	Subtotal    decimal.Decimal `db:"subtotal"`
}

// PurchaseDetail ficha completa de una compra.
type PurchaseDetail struct {
	Purchase      entity.Purchase
	SupplierName  string
	WarehouseName string
	CreatedByName string
	UpdatedByName *string
	Lines         []PurchaseDetailLine
}

// PurchaseRepository define el puerto de persistencia de compras de productos (cabecera + líneas).
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.Purchase) error
	// GetForUpdate obtiene la cabecera bloqueando la fila; nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error)
	Update(ctx context.Context, purchase *entity.Purchase) error
	CreateItem(ctx context.Context, item *entity.PurchaseItem) error
	ListItems(ctx context.Context, purchaseID string) ([]*entity.PurchaseItem, error)
	DeleteItems(ctx context.Context, purchaseID string) error

	GetDetail(ctx context.Context, id string) (*PurchaseDetail, error)
	List(ctx context.Context, filter PurchaseFilter) ([]PurchaseSummary, error)
}
