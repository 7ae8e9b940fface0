package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sublirex/inventario-api/internal/domain/entity"
	"github.com/sublirex/inventario-api/internal/domain/repository"
)

// Repositorios ligados a una tx: el mutex del Store ya está tomado.

type stockRepo struct{ s *Store }

func (r stockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	return &entity.StockLevel{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    r.s.st.stock[StockKey{productID, warehouseID}],
	}, nil
}

func (r stockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	return r.Get(ctx, productID, warehouseID)
}

func (r stockRepo) ApplyDelta(ctx context.Context, productID, warehouseID string, delta decimal.Decimal) error {
	k := StockKey{productID, warehouseID}
	r.s.st.stock[k] = r.s.st.stock[k].Add(delta)
	return nil
}

type movementRepo struct{ s *Store }

func (r movementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	r.s.movementWrites++
	if r.s.failMovementAt > 0 && r.s.movementWrites == r.s.failMovementAt {
		return ErrInjected
	}
	r.s.st.movements = append(r.s.st.movements, *m)
	return nil
}

func (r movementRepo) DeleteBySource(ctx context.Context, reason, sourceType, sourceID string) (int64, error) {
	kept := r.s.st.movements[:0]
	var n int64
	for _, m := range r.s.st.movements {
		if m.Reason == reason && m.SourceType == sourceType && m.SourceID == sourceID {
			n++
			continue
		}
		kept = append(kept, m)
	}
	r.s.st.movements = kept
	return n, nil
}

type purchaseRepo struct{ s *Store }

func (r purchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	r.s.st.purchases[p.ID] = *p
	return nil
}

func (r purchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	p, ok := r.s.st.purchases[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r purchaseRepo) Update(ctx context.Context, p *entity.Purchase) error {
	if _, ok := r.s.st.purchases[p.ID]; ok {
		r.s.st.purchases[p.ID] = *p
	}
	return nil
}

func (r purchaseRepo) CreateItem(ctx context.Context, item *entity.PurchaseItem) error {
	r.s.st.items[item.PurchaseID] = append(r.s.st.items[item.PurchaseID], *item)
	return nil
}

func (r purchaseRepo) ListItems(ctx context.Context, purchaseID string) ([]*entity.PurchaseItem, error) {
	src := r.s.st.items[purchaseID]
	out := make([]*entity.PurchaseItem, 0, len(src))
	for i := range src {
		it := src[i]
		out = append(out, &it)
	}
	return out, nil
}

func (r purchaseRepo) DeleteItems(ctx context.Context, purchaseID string) error {
	delete(r.s.st.items, purchaseID)
	return nil
}

func (r purchaseRepo) GetDetail(ctx context.Context, id string) (*repository.PurchaseDetail, error) {
	p, ok := r.s.st.purchases[id]
	if !ok {
		return nil, nil
	}
	d := &repository.PurchaseDetail{
		Purchase:      p,
		SupplierName:  r.s.st.suppliers[p.SupplierID].Name,
		WarehouseName: r.s.st.warehouses[p.WarehouseID].Name,
		CreatedByName: r.s.st.users[p.CreatedBy].Username,
	}
	if p.UpdatedBy != nil {
		name := r.s.st.users[*p.UpdatedBy].Username
		d.UpdatedByName = &name
	}
	for _, it := range r.s.st.items[id] {
		d.Lines = append(d.Lines, repository.PurchaseDetailLine{
			ProductID:   it.ProductID,
			ProductName: r.s.st.products[it.ProductID].Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal(),
		})
	}
	return d, nil
}

func (r purchaseRepo) List(ctx context.Context, f repository.PurchaseFilter) ([]repository.PurchaseSummary, error) {
	var out []repository.PurchaseSummary
	for _, id := range sortedKeys(r.s.st.purchases) {
		p := r.s.st.purchases[id]
		if f.Month > 0 && int(p.PurchasedAt.Month()) != f.Month {
			continue
		}
		if f.Year > 0 && p.PurchasedAt.Year() != f.Year {
			continue
		}
		row := repository.PurchaseSummary{
			ID:            p.ID,
			PurchasedAt:   p.PurchasedAt,
			SupplierName:  r.s.st.suppliers[p.SupplierID].Name,
			WarehouseName: r.s.st.warehouses[p.WarehouseID].Name,
			Total:         p.Total,
			CreatedByName: r.s.st.users[p.CreatedBy].Username,
		}
		if p.UpdatedBy != nil {
			name := r.s.st.users[*p.UpdatedBy].Username
			row.UpdatedByName = &name
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PurchasedAt.After(out[j].PurchasedAt) })
	return page(out, f.Limit, f.Offset), nil
}

// Repositorios fuera de tx: toman el mutex en cada llamada.

type lockedPurchaseRepo struct{ s *Store }

func (r lockedPurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return purchaseRepo(r).Create(ctx, p)
}

func (r lockedPurchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return purchaseRepo(r).GetForUpdate(ctx, id)
}

func (r lockedPurchaseRepo) Update(ctx context.Context, p *entity.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return purchaseRepo(r).Update(ctx, p)
}

func (r lockedPurchaseRepo) CreateItem(ctx context.Context, item *entity.PurchaseItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return purchaseRepo(r).CreateItem(ctx, item)
}

func (r lockedPurchaseRepo) ListItems(ctx context.Context, purchaseID string) ([]*entity.PurchaseItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return purchaseRepo(r).ListItems(ctx, purchaseID)
}

func (r lockedPurchaseRepo) DeleteItems(ctx context.Context, purchaseID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return purchaseRepo(r).DeleteItems(ctx, purchaseID)
}

func (r lockedPurchaseRepo) GetDetail(ctx context.Context, id string) (*repository.PurchaseDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return purchaseRepo(r).GetDetail(ctx, id)
}

func (r lockedPurchaseRepo) List(ctx context.Context, f repository.PurchaseFilter) ([]repository.PurchaseSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return purchaseRepo(r).List(ctx, f)
}

type lockedStockRepo struct{ s *Store }

func (r lockedStockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return stockRepo(r).Get(ctx, productID, warehouseID)
}

func (r lockedStockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	return r.Get(ctx, productID, warehouseID)
}

func (r lockedStockRepo) ApplyDelta(ctx context.Context, productID, warehouseID string, delta decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return stockRepo(r).ApplyDelta(ctx, productID, warehouseID, delta)
}

type productRepo struct{ s *Store }

func (r productRepo) Create(ctx context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.products[p.ID] = *p
	return nil
}

func (r productRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r productRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Product, 0, len(r.s.st.products))
	for _, id := range sortedKeys(r.s.st.products) {
		p := r.s.st.products[id]
		out = append(out, &p)
	}
	return page(out, limit, offset), nil
}

type warehouseRepo struct{ s *Store }

func (r warehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.warehouses[w.ID] = *w
	return nil
}

func (r warehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.st.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r warehouseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Warehouse, 0, len(r.s.st.warehouses))
	for _, id := range sortedKeys(r.s.st.warehouses) {
		w := r.s.st.warehouses[id]
		out = append(out, &w)
	}
	return page(out, limit, offset), nil
}

type supplierRepo struct{ s *Store }

func (r supplierRepo) Create(ctx context.Context, sp *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.suppliers[sp.ID] = *sp
	return nil
}

func (r supplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.st.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &sp, nil
}

func (r supplierRepo) List(ctx context.Context, limit, offset int) ([]*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Supplier, 0, len(r.s.st.suppliers))
	for _, id := range sortedKeys(r.s.st.suppliers) {
		sp := r.s.st.suppliers[id]
		out = append(out, &sp)
	}
	return page(out, limit, offset), nil
}

type userRepo struct{ s *Store }

func (r userRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r userRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.st.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

type reportRepo struct{ s *Store }

func (r reportRepo) GlobalStock(ctx context.Context) ([]repository.ProductStockTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	totals := make(map[string]decimal.Decimal)
	for k, q := range r.s.st.stock {
		totals[k.ProductID] = totals[k.ProductID].Add(q)
	}
	out := make([]repository.ProductStockTotal, 0, len(r.s.st.products))
	for _, id := range sortedKeys(r.s.st.products) {
		out = append(out, repository.ProductStockTotal{
			ProductID:   id,
			ProductName: r.s.st.products[id].Name,
			Quantity:    totals[id],
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out, nil
}

func (r reportRepo) StockByWarehouse(ctx context.Context, productID string) ([]repository.WarehouseStock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []repository.WarehouseStock
	for _, id := range sortedKeys(r.s.st.warehouses) {
		q := r.s.st.stock[StockKey{productID, id}]
		out = append(out, repository.WarehouseStock{
			WarehouseID:   id,
			WarehouseName: r.s.st.warehouses[id].Name,
			Quantity:      q,
		})
	}
	return out, nil
}

func (r reportRepo) Kardex(ctx context.Context, f repository.KardexFilter) ([]repository.KardexEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []repository.KardexEntry
	for _, m := range r.s.st.movements {
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.WarehouseID != "" && m.WarehouseID != f.WarehouseID {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		e := repository.KardexEntry{
			ID:            m.ID,
			ProductID:     m.ProductID,
			ProductName:   r.s.st.products[m.ProductID].Name,
			WarehouseID:   m.WarehouseID,
			WarehouseName: r.s.st.warehouses[m.WarehouseID].Name,
			Direction:     m.Direction,
			Quantity:      m.Quantity,
			Reason:        m.Reason,
			SourceType:    m.SourceType,
			SourceID:      m.SourceID,
			CreatedAt:     m.CreatedAt,
		}
		if u, ok := r.s.st.users[m.UserID]; ok {
			name := u.Username
			e.Username = &name
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), nil
}

func page[T any](rows []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(rows) {
			return nil
		}
		rows = rows[offset:]
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
