package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/sublirex/inventario-api/internal/domain/entity"
	"github.com/sublirex/inventario-api/internal/domain/repository"
)

const movementsTable = "product_inventario"

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo persistencia del kardex en product_inventario.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador del kardex. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	sql, args, err := psql.Insert(movementsTable).
		Columns("id", "product_id", "bodega_id", "movimiento", "cantidad",
			"motivo", "referencia", "referencia_id", "user_id", "created_at").
		Values(m.ID, m.ProductID, m.WarehouseID, m.Direction, m.Quantity,
			m.Reason, m.SourceType, m.SourceID, nullIfEmpty(m.UserID), m.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert movement: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// DeleteBySource elimina los movimientos de un documento origen y devuelve cuántos borró.
func (r *StockMovementRepo) DeleteBySource(ctx context.Context, reason, sourceType, sourceID string) (int64, error) {
	sql, args, err := psql.Delete(movementsTable).
		Where(squirrel.Eq{
			"motivo":        reason,
			"referencia":    sourceType,
			"referencia_id": sourceID,
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete movements: %w", err)
	}
	cmd, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete movements: %w", err)
	}
	return cmd.RowsAffected(), nil
}
