package repository

import (
	"context"

	"github.com/sublirex/inventario-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del kardex.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// DeleteBySource elimina los movimientos etiquetados con (motivo, tipo origen, id origen).
	// Solo debe invocarse junto con la reversión del stock correspondiente.
	DeleteBySource(ctx context.Context, reason, sourceType, sourceID string) (int64, error)
}
