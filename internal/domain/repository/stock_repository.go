package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sublirex/inventario-api/internal/domain/entity"
)

// StockRepository define el puerto del stock agregado por producto+bodega.
// Usado dentro de transacciones para garantizar consistencia con el kardex.
type StockRepository interface {
	// Get devuelve el stock actual; si no existe fila, devuelve cantidad cero.
	Get(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error)
	// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE).
	// Si la fila no existe la crea en cero para que el bloqueo serialice a los concurrentes.
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error)
	// ApplyDelta suma delta a la cantidad actual, creando la fila si no existe.
	// Es una suma, nunca un reemplazo.
	ApplyDelta(ctx context.Context, productID, warehouseID string, delta decimal.Decimal) error
}
