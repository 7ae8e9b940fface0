package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección del movimiento en el kardex.
const (
	DirectionEntrada = "ENTRADA"
	DirectionSalida  = "SALIDA"
)

// Motivo del movimiento.
const (
	ReasonCompra = "COMPRA"
	ReasonAjuste = "AJUSTE"
)

// Tipo de documento origen del movimiento.
const (
	SourceCompras = "compras"
	SourceAjustes = "ajustes"
)

// StockMovement es una entrada del kardex. Quantity es la magnitud (siempre >= 0);
// el signo lo da Direction.
type StockMovement struct {
	ID          string
	ProductID   string
	WarehouseID string
	Direction   string
	Quantity    decimal.Decimal
	Reason      string
	SourceType  string
	SourceID    string
	UserID      string
	CreatedAt   time.Time
}

// SignedQuantity devuelve la cantidad con signo (+ entrada, - salida).
func (m StockMovement) SignedQuantity() decimal.Decimal {
	if m.Direction == DirectionSalida {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
