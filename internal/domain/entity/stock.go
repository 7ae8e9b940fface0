package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel es el stock agregado de un producto en una bodega (único por producto+bodega).
// Quantity siempre es igual a la suma con signo de los movimientos del kardex para el par.
type StockLevel struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}
