package purchasing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sublirex/inventario-api/internal/application/inventory"
	"github.com/sublirex/inventario-api/internal/application/purchasing"
	"github.com/sublirex/inventario-api/internal/domain"
	"github.com/sublirex/inventario-api/internal/domain/entity"
	"github.com/sublirex/inventario-api/internal/infrastructure/memory"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newService(t *testing.T) (*purchasing.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := purchasing.NewService(store, inventory.NewLedger(), store.Purchases(), zerolog.Nop())
	return svc, store
}

func header(warehouseID string) purchasing.Header {
	return purchasing.Header{
		SupplierID:  "1",
		WarehouseID: warehouseID,
		PurchasedAt: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}
}

func item(productID, qty, price string) purchasing.ItemInput {
	return purchasing.ItemInput{ProductID: productID, Quantity: dec(qty), UnitPrice: dec(price)}
}

// El stock agregado de cada par producto/bodega debe coincidir con la suma con signo del kardex.
func assertConservation(t *testing.T, store *memory.Store) {
	t.Helper()
	balance := store.LedgerBalance()
	rows := store.StockRows()
	for k, q := range rows {
		assert.Truef(t, q.Equal(balance[k]), "stock %s/%s = %s, kardex = %s", k.ProductID, k.WarehouseID, q, balance[k])
	}
	for k, q := range balance {
		assert.Truef(t, q.Equal(rows[k]), "kardex %s/%s = %s sin stock equivalente", k.ProductID, k.WarehouseID, q)
	}
}

func TestCreate_SingleLine(t *testing.T) {
	svc, store := newService(t)

	id, err := svc.Create(context.Background(), header("1"), []purchasing.ItemInput{item("7", "3", "10")}, "1")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	p, ok := store.Purchase(id)
	require.True(t, ok)
	assert.True(t, p.Total.Equal(dec("30")))
	assert.Equal(t, "1", p.CreatedBy)
	assert.Nil(t, p.UpdatedBy)

	items := store.Items(id)
	require.Len(t, items, 1)
	assert.Equal(t, "7", items[0].ProductID)

	assert.True(t, store.StockOf("7", "1").Equal(dec("3")))

	movs := store.MovementsBySource(entity.SourceCompras, id)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.DirectionEntrada, movs[0].Direction)
	assert.Equal(t, entity.ReasonCompra, movs[0].Reason)
	assert.True(t, movs[0].Quantity.Equal(dec("3")))
	assert.Equal(t, "1", movs[0].UserID)
	assertConservation(t, store)
}

func TestCreate_GroupsRepeatedProducts(t *testing.T) {
	svc, store := newService(t)

	id, err := svc.Create(context.Background(), header("1"), []purchasing.ItemInput{
		item("A", "2", "5"),
		item("B", "1", "4"),
		item("A", "3", "6"),
	}, "1")
	require.NoError(t, err)

	// Las líneas se guardan tal cual; el kardex lleva un movimiento por producto.
	assert.Len(t, store.Items(id), 3)
	movs := store.MovementsBySource(entity.SourceCompras, id)
	require.Len(t, movs, 2)
	assert.Equal(t, "A", movs[0].ProductID)
	assert.True(t, movs[0].Quantity.Equal(dec("5")))
	assert.Equal(t, "B", movs[1].ProductID)

	p, _ := store.Purchase(id)
	assert.True(t, p.Total.Equal(dec("32")))
	assertConservation(t, store)
}

func TestCreate_LineWithoutProductCountsInTotalOnly(t *testing.T) {
	svc, store := newService(t)

	id, err := svc.Create(context.Background(), header("1"), []purchasing.ItemInput{
		item("7", "2", "10"),
		item("", "4", "5"),
	}, "1")
	require.NoError(t, err)

	p, _ := store.Purchase(id)
	assert.True(t, p.Total.Equal(dec("40")), "total incluye la línea sin producto")
	assert.Len(t, store.Items(id), 1)
	assert.Len(t, store.MovementsBySource(entity.SourceCompras, id), 1)
	assertConservation(t, store)
}

func TestCreate_ZeroQuantityLineIsStoredWithoutMovement(t *testing.T) {
	svc, store := newService(t)

	id, err := svc.Create(context.Background(), header("1"), []purchasing.ItemInput{
		item("7", "0", "10"),
	}, "1")
	require.NoError(t, err)

	assert.Len(t, store.Items(id), 1)
	assert.Empty(t, store.MovementsBySource(entity.SourceCompras, id))
	assert.True(t, store.StockOf("7", "1").IsZero())
}

func TestCreate_ValidationHappensBeforeWrites(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, purchasing.Header{WarehouseID: "1"}, []purchasing.ItemInput{item("7", "1", "1")}, "1")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "proveedor_id")

	_, err = svc.Create(ctx, header("1"), []purchasing.ItemInput{item("7", "-1", "1")}, "1")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "gte=0", verr.Fields["items[0].cantidad"])

	_, err = svc.Create(ctx, header("1"), []purchasing.ItemInput{item("7", "1", "1")}, "")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.Zero(t, store.PurchaseCount())
	assert.Empty(t, store.Movements())
}

func TestCreate_RejectsMoreThanFourDecimals(t *testing.T) {
	svc, store := newService(t)

	_, err := svc.Create(context.Background(), header("1"), []purchasing.ItemInput{
		item("A", "0.00005", "1"),
		item("B", "1", "10.123456"),
		item("C", "1.50000", "2.2500"),
	}, "1")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "max_scale=4", verr.Fields["items[0].cantidad"])
	assert.Equal(t, "max_scale=4", verr.Fields["items[1].precio_unitario"])
	assert.NotContains(t, verr.Fields, "items[2].cantidad", "ceros a la derecha no cuentan como decimales")
	assert.NotContains(t, verr.Fields, "items[2].precio_unitario")
	assert.Zero(t, store.PurchaseCount())
	assert.Empty(t, store.Movements())
}

func TestCreate_FailureRollsBackEverything(t *testing.T) {
	svc, store := newService(t)
	store.FailMovementAt(2)

	_, err := svc.Create(context.Background(), header("1"), []purchasing.ItemInput{
		item("A", "1", "1"),
		item("B", "1", "1"),
	}, "1")
	var txErr *domain.TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.True(t, errors.Is(err, memory.ErrInjected))

	assert.Zero(t, store.PurchaseCount())
	assert.Empty(t, store.Movements())
	assert.Empty(t, store.StockRows())
}

func TestUpdate_ChangesQuantity(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, header("1"), []purchasing.ItemInput{item("A", "10", "2")}, "1")
	require.NoError(t, err)

	err = svc.Update(ctx, id, header("1"), []purchasing.ItemInput{item("A", "4", "2")}, "2")
	require.NoError(t, err)

	assert.True(t, store.StockOf("A", "1").Equal(dec("4")))
	movs := store.MovementsBySource(entity.SourceCompras, id)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.DirectionEntrada, movs[0].Direction)
	assert.True(t, movs[0].Quantity.Equal(dec("4")))
	assert.Equal(t, "2", movs[0].UserID)

	p, _ := store.Purchase(id)
	assert.True(t, p.Total.Equal(dec("8")))
	require.NotNil(t, p.UpdatedBy)
	assert.Equal(t, "2", *p.UpdatedBy)
	assert.Equal(t, "1", p.CreatedBy)
	assertConservation(t, store)
}

func TestUpdate_MovesToAnotherWarehouse(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, header("W1"), []purchasing.ItemInput{item("A", "5", "1")}, "1")
	require.NoError(t, err)

	err = svc.Update(ctx, id, header("W2"), []purchasing.ItemInput{item("A", "5", "1")}, "1")
	require.NoError(t, err)

	assert.True(t, store.StockOf("A", "W1").IsZero())
	assert.True(t, store.StockOf("A", "W2").Equal(dec("5")))
	movs := store.MovementsBySource(entity.SourceCompras, id)
	require.Len(t, movs, 1)
	assert.Equal(t, "W2", movs[0].WarehouseID)
	assertConservation(t, store)
}

func TestUpdate_DropsAndAddsProducts(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, header("1"), []purchasing.ItemInput{item("A", "3", "1"), item("B", "2", "1")}, "1")
	require.NoError(t, err)

	err = svc.Update(ctx, id, header("1"), []purchasing.ItemInput{item("C", "7", "1")}, "1")
	require.NoError(t, err)

	assert.True(t, store.StockOf("A", "1").IsZero())
	assert.True(t, store.StockOf("B", "1").IsZero())
	assert.True(t, store.StockOf("C", "1").Equal(dec("7")))
	items := store.Items(id)
	require.Len(t, items, 1)
	assert.Equal(t, "C", items[0].ProductID)
	assertConservation(t, store)
}

func TestUpdate_KeepsOtherDocumentsIntact(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, header("1"), []purchasing.ItemInput{item("A", "2", "1")}, "1")
	require.NoError(t, err)
	second, err := svc.Create(ctx, header("1"), []purchasing.ItemInput{item("A", "6", "1")}, "1")
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, first, header("1"), []purchasing.ItemInput{item("A", "1", "1")}, "1"))

	assert.True(t, store.StockOf("A", "1").Equal(dec("7")))
	assert.Len(t, store.MovementsBySource(entity.SourceCompras, second), 1)
	assertConservation(t, store)
}

func TestUpdate_FailureRestoresPreviousState(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, header("W1"), []purchasing.ItemInput{item("A", "3", "2"), item("B", "1", "2")}, "1")
	require.NoError(t, err)
	before, _ := store.Purchase(id)
	beforeItems := store.Items(id)
	beforeStock := store.StockRows()
	beforeMovs := store.Movements()

	// Reversión: 2 movimientos; la falla cae en el segundo movimiento de la re-aplicación.
	store.FailMovementAt(4)
	err = svc.Update(ctx, id, header("W2"), []purchasing.ItemInput{item("A", "9", "1"), item("C", "1", "1")}, "2")
	var txErr *domain.TransactionError
	require.ErrorAs(t, err, &txErr)

	after, _ := store.Purchase(id)
	assert.Equal(t, before, after)
	assert.Equal(t, beforeItems, store.Items(id))
	assert.Equal(t, beforeStock, store.StockRows())
	assert.Equal(t, beforeMovs, store.Movements())
}

func TestUpdate_NotFoundIsNoOp(t *testing.T) {
	svc, store := newService(t)

	err := svc.Update(context.Background(), "no-existe", header("1"), []purchasing.ItemInput{item("A", "1", "1")}, "1")
	require.NoError(t, err)
	assert.Zero(t, store.PurchaseCount())
	assert.Empty(t, store.Movements())
	assert.Empty(t, store.StockRows())
}

func TestUpdate_NonUUIDIsNoOp(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	id, err := svc.Create(ctx, header("1"), []purchasing.ItemInput{item("A", "2", "1")}, "1")
	require.NoError(t, err)
	before := store.StockRows()

	require.NoError(t, svc.Update(ctx, "abc", header("1"), []purchasing.ItemInput{item("A", "9", "1")}, "1"))
	require.NoError(t, svc.Update(ctx, uuid.New().String(), header("1"), []purchasing.ItemInput{item("A", "9", "1")}, "1"))

	assert.Equal(t, 1, store.PurchaseCount())
	assert.Equal(t, before, store.StockRows())
	assert.True(t, store.StockOf("A", "1").Equal(dec("2")))
	assert.Len(t, store.MovementsBySource(entity.SourceCompras, id), 1)
}

func TestUpdate_RejectsMoreThanFourDecimals(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	id, err := svc.Create(ctx, header("1"), []purchasing.ItemInput{item("A", "1", "3")}, "1")
	require.NoError(t, err)

	err = svc.Update(ctx, id, header("1"), []purchasing.ItemInput{item("A", "1.00001", "3")}, "1")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, store.StockOf("A", "1").Equal(dec("1")))
}

func TestGet_NonUUIDIsNil(t *testing.T) {
	svc, _ := newService(t)

	got, err := svc.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdate_RequiresID(t *testing.T) {
	svc, _ := newService(t)

	err := svc.Update(context.Background(), "", header("1"), nil, "1")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConservationAcrossSequence(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, header("W1"), []purchasing.ItemInput{item("A", "5", "1"), item("B", "2.5", "1")}, "1")
	require.NoError(t, err)
	b, err := svc.Create(ctx, header("W2"), []purchasing.ItemInput{item("A", "1", "1")}, "1")
	require.NoError(t, err)
	require.NoError(t, svc.Update(ctx, a, header("W2"), []purchasing.ItemInput{item("B", "1", "1"), item("B", "1", "1")}, "1"))
	require.NoError(t, svc.Update(ctx, b, header("W1"), []purchasing.ItemInput{item("A", "3", "1")}, "1"))
	require.NoError(t, svc.Update(ctx, a, header("W2"), nil, "1"))

	assert.True(t, store.StockOf("A", "W1").Equal(dec("3")))
	assert.True(t, store.StockOf("A", "W2").IsZero())
	assert.True(t, store.StockOf("B", "W1").IsZero())
	assert.True(t, store.StockOf("B", "W2").IsZero())
	assert.Empty(t, store.MovementsBySource(entity.SourceCompras, a))
	assertConservation(t, store)
}

func TestTotal(t *testing.T) {
	total := purchasing.Total([]purchasing.ItemInput{item("A", "1.5", "2"), item("", "2", "0.25")})
	assert.True(t, total.Equal(dec("3.5")))
	assert.True(t, purchasing.Total(nil).IsZero())
}
