package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase es la cabecera de una compra de productos. Una compra pertenece a una sola bodega.
type Purchase struct {
	ID          string
	SupplierID  string
	WarehouseID string
	PurchasedAt time.Time
	Total       decimal.Decimal // suma de cantidad * precio de las líneas enviadas
	Note        *string
	CreatedBy   string
	UpdatedBy   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PurchaseItem es una línea de detalle. Las líneas se reemplazan completas al editar la compra.
type PurchaseItem struct {
	ID         string
	PurchaseID string
	ProductID  string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
}

// Subtotal devuelve cantidad * precio unitario.
func (i PurchaseItem) Subtotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}
