package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sublirex/inventario-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura sobre product_stock y product_inventario.
type ReportRepo struct {
	pool *pgxpool.Pool
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// GlobalStock stock total por producto; productos sin filas de stock salen con cero.
func (r *ReportRepo) GlobalStock(ctx context.Context) ([]repository.ProductStockTotal, error) {
	query := `
		SELECT p.id AS product_id, p.name AS product_name, COALESCE(SUM(s.cantidad), 0) AS quantity
		FROM products p
		LEFT JOIN product_stock s ON s.product_id = p.id
		GROUP BY p.id, p.name
		ORDER BY p.name`
	var rows []repository.ProductStockTotal
	if err := pgxscan.Select(ctx, r.pool, &rows, query); err != nil {
		return nil, fmt.Errorf("global stock: %w", err)
	}
	return rows, nil
}

// StockByWarehouse existencias de un producto en cada bodega (cero donde no hay fila).
func (r *ReportRepo) StockByWarehouse(ctx context.Context, productID string) ([]repository.WarehouseStock, error) {
	query := `
		SELECT b.id AS warehouse_id, b.nombre AS warehouse_name, COALESCE(s.cantidad, 0) AS quantity
		FROM bodegas b
		LEFT JOIN product_stock s ON s.bodega_id = b.id AND s.product_id = $1
		ORDER BY b.nombre`
	var rows []repository.WarehouseStock
	if err := pgxscan.Select(ctx, r.pool, &rows, query, productID); err != nil {
		return nil, fmt.Errorf("stock by warehouse: %w", err)
	}
	return rows, nil
}

// Kardex movimientos filtrados, del más reciente al más antiguo.
func (r *ReportRepo) Kardex(ctx context.Context, f repository.KardexFilter) ([]repository.KardexEntry, error) {
	sql, args, err := kardexQuery(f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build kardex: %w", err)
	}
	var rows []repository.KardexEntry
	if err := pgxscan.Select(ctx, r.pool, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("kardex: %w", err)
	}
	return rows, nil
}

func kardexQuery(f repository.KardexFilter) squirrel.SelectBuilder {
	q := psql.Select(
		"m.id",
		"m.product_id",
		"COALESCE(p.name, '') AS product_name",
		"m.bodega_id",
		"COALESCE(b.nombre, '') AS bodega_nombre",
		"m.movimiento",
		"m.cantidad",
		"m.motivo",
		"m.referencia",
		"m.referencia_id",
		"u.username",
		"m.created_at",
	).
		From(movementsTable + " m").
		LeftJoin("products p ON p.id = m.product_id").
		LeftJoin("bodegas b ON b.id = m.bodega_id").
		LeftJoin("usuarios u ON u.id = m.user_id").
		OrderBy("m.created_at DESC", "m.id")
	if f.ProductID != "" {
		q = q.Where(squirrel.Eq{"m.product_id": f.ProductID})
	}
	if f.WarehouseID != "" {
		q = q.Where(squirrel.Eq{"m.bodega_id": f.WarehouseID})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"m.created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"m.created_at": *f.To})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q
}
