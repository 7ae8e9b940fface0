package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sublirex/inventario-api/internal/application/dto"
	"github.com/sublirex/inventario-api/internal/application/inventory"
	"github.com/sublirex/inventario-api/internal/application/purchasing"
	"github.com/sublirex/inventario-api/internal/application/reports"
	"github.com/sublirex/inventario-api/internal/domain"
	"github.com/sublirex/inventario-api/internal/domain/entity"
	"github.com/sublirex/inventario-api/internal/domain/repository"
	"github.com/sublirex/inventario-api/internal/infrastructure/memory"
)

type fakePDF struct{ got *dto.PurchaseDetailResponse }

func (f *fakePDF) GeneratePurchasePDF(_ context.Context, p *dto.PurchaseDetailResponse) ([]byte, error) {
	f.got = p
	return []byte("%PDF-fake"), nil
}

type fakeSheet struct{ rows []dto.ProductStockResponse }

func (f *fakeSheet) GenerateStockSheet(_ context.Context, rows []dto.ProductStockResponse, _ time.Time) ([]byte, error) {
	f.rows = rows
	return []byte("xlsx"), nil
}

type fixture struct {
	svc       *reports.Service
	purchases *purchasing.Service
	pdf       *fakePDF
	sheet     *fakeSheet
}

func setup(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "A", Name: "Papel"}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "B", Name: "Tinta"}))
	require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: "W1", Name: "Principal"}))
	require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: "W2", Name: "Taller"}))
	store.AddUser(entity.User{ID: "u1", Username: "ana", Role: entity.RoleCompras, Active: true})

	purchases := purchasing.NewService(store, inventory.NewLedger(), store.Purchases(), zerolog.Nop())
	f := fixture{purchases: purchases, pdf: &fakePDF{}, sheet: &fakeSheet{}}
	f.svc = reports.NewService(store.Reports(), purchases, f.pdf, f.sheet)
	return f
}

func (f fixture) buy(t *testing.T, warehouseID, productID, qty string) string {
	t.Helper()
	id, err := f.purchases.Create(context.Background(), purchasing.Header{SupplierID: "S1", WarehouseID: warehouseID},
		[]purchasing.ItemInput{{ProductID: productID, Quantity: decimal.RequireFromString(qty), UnitPrice: decimal.NewFromInt(1)}}, "u1")
	require.NoError(t, err)
	return id
}

func TestGlobalStock_IncludesProductsWithoutStock(t *testing.T) {
	f := setup(t)
	f.buy(t, "W1", "A", "3")
	f.buy(t, "W2", "A", "2")

	rows, err := f.svc.GlobalStock(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Papel", rows[0].ProductName)
	assert.True(t, rows[0].Quantity.Equal(decimal.NewFromInt(5)))
	assert.True(t, rows[1].Quantity.IsZero())
}

func TestProductStock_ListsEveryWarehouse(t *testing.T) {
	f := setup(t)
	f.buy(t, "W2", "B", "4")

	rows, err := f.svc.ProductStock(context.Background(), "B")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Quantity.IsZero())
	assert.True(t, rows[1].Quantity.Equal(decimal.NewFromInt(4)))

	_, err = f.svc.ProductStock(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestKardex_FiltersAndResolvesUser(t *testing.T) {
	f := setup(t)
	f.buy(t, "W1", "A", "3")
	f.buy(t, "W1", "B", "1")

	rows, err := f.svc.Kardex(context.Background(), repository.KardexFilter{ProductID: "A"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, entity.DirectionEntrada, rows[0].Direction)
	assert.Equal(t, "ana", rows[0].Username)
	assert.Equal(t, "Principal", rows[0].WarehouseName)
}

func TestKardex_RejectsInvertedRange(t *testing.T) {
	f := setup(t)
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, -1, 0)

	_, err := f.svc.Kardex(context.Background(), repository.KardexFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExportGlobalStockXLSX_UsesGlobalStock(t *testing.T) {
	f := setup(t)
	f.buy(t, "W1", "A", "2")

	out, err := f.svc.ExportGlobalStockXLSX(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), out)
	assert.Len(t, f.sheet.rows, 2)
}

func TestPurchasePDF(t *testing.T) {
	f := setup(t)
	id := f.buy(t, "W1", "A", "2")

	out, err := f.svc.PurchasePDF(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(out))
	require.NotNil(t, f.pdf.got)
	assert.Equal(t, "Principal", f.pdf.got.WarehouseName)
	require.Len(t, f.pdf.got.Lines, 1)
	assert.Equal(t, "Papel", f.pdf.got.Lines[0].ProductName)

	_, err = f.svc.PurchasePDF(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
