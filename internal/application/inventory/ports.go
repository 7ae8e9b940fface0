package inventory

import (
	"context"

	"github.com/sublirex/inventario-api/internal/domain/repository"
)

// TxRunner abre una transacción con los repos de stock y kardex atados a ella.
// Si fn devuelve error no queda nada escrito.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}
