package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/sublirex/inventario-api/internal/domain/entity"
	"github.com/sublirex/inventario-api/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo persistencia de compras (compras) y sus líneas (compras_detalles).
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

const purchaseColumns = `id, proveedor_id, bodega_id, fecha_compra, total, notas,
		created_by, updated_by, created_at, updated_at`

// Create inserta la cabecera.
func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	query := `
		INSERT INTO compras (` + purchaseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SupplierID, p.WarehouseID, p.PurchasedAt, p.Total, p.Note,
		p.CreatedBy, p.UpdatedBy, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// GetForUpdate obtiene la cabecera bloqueando la fila hasta el fin de la tx.
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM compras WHERE id = $1 FOR UPDATE`
	var p entity.Purchase
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.SupplierID, &p.WarehouseID, &p.PurchasedAt, &p.Total, &p.Note,
		&p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase for update: %w", err)
	}
	return &p, nil
}

// Update sobrescribe los campos editables de la cabecera.
func (r *PurchaseRepo) Update(ctx context.Context, p *entity.Purchase) error {
	query := `
		UPDATE compras
		SET proveedor_id = $2, bodega_id = $3, fecha_compra = $4, total = $5, notas = $6,
		    updated_by = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SupplierID, p.WarehouseID, p.PurchasedAt, p.Total, p.Note,
		p.UpdatedBy, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	return nil
}

// CreateItem inserta una línea.
func (r *PurchaseRepo) CreateItem(ctx context.Context, it *entity.PurchaseItem) error {
	query := `
		INSERT INTO compras_detalles (id, compra_id, producto_id, cantidad, precio_unitario)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, it.ID, it.PurchaseID, it.ProductID, it.Quantity, it.UnitPrice)
	if err != nil {
		return fmt.Errorf("insert purchase item: %w", err)
	}
	return nil
}

// ListItems devuelve las líneas en orden de inserción.
func (r *PurchaseRepo) ListItems(ctx context.Context, purchaseID string) ([]*entity.PurchaseItem, error) {
	query := `
		SELECT id, compra_id, producto_id, cantidad, precio_unitario
		FROM compras_detalles WHERE compra_id = $1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list purchase items: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseItem
	for rows.Next() {
		var it entity.PurchaseItem
		if err := rows.Scan(&it.ID, &it.PurchaseID, &it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan purchase item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// DeleteItems elimina todas las líneas de la compra.
func (r *PurchaseRepo) DeleteItems(ctx context.Context, purchaseID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM compras_detalles WHERE compra_id = $1`, purchaseID); err != nil {
		return fmt.Errorf("delete purchase items: %w", err)
	}
	return nil
}

// GetDetail ficha de la compra con nombres de proveedor, bodega, usuarios y productos; nil si no existe.
func (r *PurchaseRepo) GetDetail(ctx context.Context, id string) (*repository.PurchaseDetail, error) {
	query := `
		SELECT c.id, c.proveedor_id, c.bodega_id, c.fecha_compra, c.total, c.notas,
		       c.created_by, c.updated_by, c.created_at, c.updated_at,
		       COALESCE(p.nombre, ''), COALESCE(b.nombre, ''), COALESCE(uc.username, ''), um.username
		FROM compras c
		LEFT JOIN proveedores p ON p.id = c.proveedor_id
		LEFT JOIN bodegas b ON b.id = c.bodega_id
		LEFT JOIN usuarios uc ON uc.id = c.created_by
		LEFT JOIN usuarios um ON um.id = c.updated_by
		WHERE c.id = $1`
	var d repository.PurchaseDetail
	p := &d.Purchase
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.SupplierID, &p.WarehouseID, &p.PurchasedAt, &p.Total, &p.Note,
		&p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt,
		&d.SupplierName, &d.WarehouseName, &d.CreatedByName, &d.UpdatedByName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase detail: %w", err)
	}

	linesQuery := `
		SELECT d.producto_id, COALESCE(pr.name, '') AS producto_nombre,
		       d.cantidad, d.precio_unitario, d.cantidad * d.precio_unitario AS subtotal
		FROM compras_detalles d
		LEFT JOIN products pr ON pr.id = d.producto_id
		WHERE d.compra_id = $1
		ORDER BY d.seq`
	if err := pgxscan.Select(ctx, r.q, &d.Lines, linesQuery, id); err != nil {
		return nil, fmt.Errorf("get purchase lines: %w", err)
	}
	return &d, nil
}

// List lista compras por fecha descendente con filtros opcionales de mes y año.
func (r *PurchaseRepo) List(ctx context.Context, f repository.PurchaseFilter) ([]repository.PurchaseSummary, error) {
	sql, args, err := listPurchasesQuery(f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list purchases: %w", err)
	}
	var rows []repository.PurchaseSummary
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return rows, nil
}

func listPurchasesQuery(f repository.PurchaseFilter) squirrel.SelectBuilder {
	q := psql.Select(
		"c.id",
		"c.fecha_compra",
		"COALESCE(p.nombre, '') AS proveedor_nombre",
		"COALESCE(b.nombre, '') AS bodega_nombre",
		"c.total",
		"COALESCE(uc.username, '') AS creador_username",
		"um.username AS modificador_username",
	).
		From("compras c").
		LeftJoin("proveedores p ON p.id = c.proveedor_id").
		LeftJoin("bodegas b ON b.id = c.bodega_id").
		LeftJoin("usuarios uc ON uc.id = c.created_by").
		LeftJoin("usuarios um ON um.id = c.updated_by").
		OrderBy("c.fecha_compra DESC", "c.created_at DESC")
	if f.Month > 0 {
		q = q.Where("EXTRACT(MONTH FROM c.fecha_compra) = ?", f.Month)
	}
	if f.Year > 0 {
		q = q.Where("EXTRACT(YEAR FROM c.fecha_compra) = ?", f.Year)
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q
}
