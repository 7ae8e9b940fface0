package entity

import "time"

// Warehouse bodega (tabla bodegas). Las compras entran a una sola bodega y el stock se lleva por bodega.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
