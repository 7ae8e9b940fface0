package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseItemRequest línea enviada en el formulario de compra. Cantidad y precio vacíos o ausentes valen cero.
type PurchaseItemRequest struct {
	ProductID string `json:"producto_id"`
	Quantity  Number `json:"cantidad"`
	UnitPrice Number `json:"precio_unitario"`
}

// PurchaseRequest body para POST /api/purchases y PUT /api/purchases/:id.
// PurchasedAt acepta RFC3339 o el formato de input datetime-local (2006-01-02T15:04); vacío = ahora.
type PurchaseRequest struct {
	SupplierID  string                `json:"proveedor_id"`
	WarehouseID string                `json:"bodega_id"`
	PurchasedAt string                `json:"fecha_compra"`
	Note        *string               `json:"notas"`
	Items       []PurchaseItemRequest `json:"items"`
}

// PurchaseCreatedResponse respuesta de creación.
type PurchaseCreatedResponse struct {
	ID string `json:"id"`
}

// PurchaseSummaryResponse fila del listado de compras.
type PurchaseSummaryResponse struct {
	ID            string          `json:"id"`
	PurchasedAt   time.Time       `json:"fecha_compra"`
	SupplierName  string          `json:"proveedor_nombre"`
	WarehouseName string          `json:"bodega_nombre"`
	Total         decimal.Decimal `json:"total"`
	CreatedBy     string          `json:"creador_username"`
	UpdatedBy     *string         `json:"modificador_username,omitempty"`
}

// PurchaseListResponse listado paginado de compras.
type PurchaseListResponse struct {
	Items []PurchaseSummaryResponse `json:"items"`
	Page  PageResponse              `json:"page"`
}

// PurchaseLineResponse línea de la ficha de compra.
type PurchaseLineResponse struct {
	ProductID   string          `json:"producto_id"`
	ProductName string          `json:"producto_nombre"`
	Quantity    decimal.Decimal `json:"cantidad"`
	UnitPrice   decimal.Decimal `json:"precio_unitario"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// PurchaseDetailResponse ficha de una compra.
type PurchaseDetailResponse struct {
	ID            string                 `json:"id"`
	SupplierID    string                 `json:"proveedor_id"`
	SupplierName  string                 `json:"proveedor_nombre"`
	WarehouseID   string                 `json:"bodega_id"`
	WarehouseName string                 `json:"bodega_nombre"`
	PurchasedAt   time.Time              `json:"fecha_compra"`
	Total         decimal.Decimal        `json:"total"`
	Note          *string                `json:"notas,omitempty"`
	CreatedBy     string                 `json:"creador_username"`
	UpdatedBy     *string                `json:"modificador_username,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	Lines         []PurchaseLineResponse `json:"detalles"`
}
