package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/sublirex/inventario-api/internal/application/auth"
	"github.com/sublirex/inventario-api/internal/application/dto"
	"github.com/sublirex/inventario-api/internal/application/inventory"
	"github.com/sublirex/inventario-api/internal/application/purchasing"
	"github.com/sublirex/inventario-api/internal/application/reports"
	"github.com/sublirex/inventario-api/internal/application/usecase"
	"github.com/sublirex/inventario-api/internal/domain/entity"
	"github.com/sublirex/inventario-api/internal/infrastructure/memory"
	"github.com/sublirex/inventario-api/internal/infrastructure/pdf"
	"github.com/sublirex/inventario-api/internal/infrastructure/xlsx"
	apphttp "github.com/sublirex/inventario-api/internal/interfaces/http"
	pkgjwt "github.com/sublirex/inventario-api/pkg/jwt"
)

const (
	adminID    = "00000000-0000-0000-0000-00000000000a"
	comprasID  = "00000000-0000-0000-0000-00000000000b"
	consultaID = "00000000-0000-0000-0000-00000000000c"
)

// apiFixture arma la API completa sobre el store en memoria.
type apiFixture struct {
	app   *fiber.App
	store *memory.Store
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("clave123"), bcrypt.MinCost)
	require.NoError(t, err)
	for _, u := range []entity.User{
		{ID: adminID, Username: "admin", Name: "Admin", Role: entity.RoleAdmin},
		{ID: comprasID, Username: "compras", Name: "Compras", Role: entity.RoleCompras},
		{ID: consultaID, Username: "consulta", Name: "Consulta", Role: entity.RoleConsulta},
	} {
		u.PasswordHash = string(hash)
		u.Active = true
		store.AddUser(u)
	}

	ledger := inventory.NewLedger()
	purchases := purchasing.NewService(store, ledger, store.Purchases(), zerolog.Nop())
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 5, Issuer: testIssuer}),
		UserUC:      usecase.NewUserUseCase(store.Users()),
		WarehouseUC: usecase.NewWarehouseUseCase(store.Warehouses()),
		ProductUC:   usecase.NewProductUseCase(store.Products()),
		SupplierUC:  usecase.NewSupplierUseCase(store.Suppliers()),
		Purchases:   purchases,
		Reports: reports.NewService(store.Reports(), purchases,
			pdf.NewMarotoPDFGenerator("SubliRex"), xlsx.NewStockSheetGenerator()),
		Adjustments: inventory.NewAdjustmentUseCase(store, ledger, store.Products(), store.Warehouses(), zerolog.Nop()),
		JWTSecret:   testJWTSecret,
	})
	return &apiFixture{app: app, store: store}
}

func (f *apiFixture) do(t *testing.T, method, path, userID, role string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		tok, err := pkgjwt.Generate(testJWTSecret, userID, role, testIssuer, testExpMin)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// seedCatalog crea bodega, proveedor y producto vía API como admin.
func (f *apiFixture) seedCatalog(t *testing.T) (warehouseID, supplierID, productID string) {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/warehouses", adminID, entity.RoleAdmin, dto.CreateWarehouseRequest{Name: "Principal"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	warehouseID = decode[dto.WarehouseResponse](t, resp).ID

	resp = f.do(t, http.MethodPost, "/api/suppliers", adminID, entity.RoleAdmin, dto.CreateSupplierRequest{Name: "Tintas SAS"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	supplierID = decode[dto.SupplierResponse](t, resp).ID

	resp = f.do(t, http.MethodPost, "/api/products", adminID, entity.RoleAdmin, dto.CreateProductRequest{Name: "Taza blanca 11oz"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	productID = decode[dto.ProductResponse](t, resp).ID
	return warehouseID, supplierID, productID
}

func purchaseBody(supplierID, warehouseID, productID string, qty, price float64) fiber.Map {
	return fiber.Map{
		"proveedor_id": supplierID,
		"bodega_id":    warehouseID,
		"fecha_compra": "2024-03-15T10:00",
		"items": []fiber.Map{
			{"producto_id": productID, "cantidad": qty, "precio_unitario": price},
		},
	}
}

func TestHealth(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodGet, "/health", "", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLoginAndMe(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodPost, "/api/auth/login", "", "", dto.LoginRequest{Username: "compras", Password: "clave123"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	login := decode[dto.LoginResponse](t, resp)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, entity.RoleCompras, login.User.Role)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "compras", decode[dto.UserResponse](t, resp).Username)
}

func TestLogin_BadPassword(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodPost, "/api/auth/login", "", "", dto.LoginRequest{Username: "compras", Password: "otra"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCatalog_WriteRequiresAdmin(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodPost, "/api/warehouses", comprasID, entity.RoleCompras, dto.CreateWarehouseRequest{Name: "Norte"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/warehouses", consultaID, entity.RoleConsulta, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCatalog_ValidationAndNotFound(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodPost, "/api/products", adminID, entity.RoleAdmin, dto.CreateProductRequest{Name: "  "})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)

	resp = f.do(t, http.MethodGet, "/api/products/no-existe", adminID, entity.RoleAdmin, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPurchase_CreateGetUpdate(t *testing.T) {
	f := newAPI(t)
	warehouseID, supplierID, productID := f.seedCatalog(t)

	resp := f.do(t, http.MethodPost, "/api/purchases", comprasID, entity.RoleCompras,
		purchaseBody(supplierID, warehouseID, productID, 3, 10))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := decode[dto.PurchaseCreatedResponse](t, resp).ID
	require.NotEmpty(t, id)
	assert.Equal(t, "3", f.store.StockOf(productID, warehouseID).String())

	resp = f.do(t, http.MethodGet, "/api/purchases/"+id, consultaID, entity.RoleConsulta, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	detail := decode[dto.PurchaseDetailResponse](t, resp)
	assert.Equal(t, "30", detail.Total.String())
	assert.Equal(t, "compras", detail.CreatedBy)
	require.Len(t, detail.Lines, 1)
	assert.Equal(t, "Taza blanca 11oz", detail.Lines[0].ProductName)

	resp = f.do(t, http.MethodPut, "/api/purchases/"+id, adminID, entity.RoleAdmin,
		purchaseBody(supplierID, warehouseID, productID, 5, 10))
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "5", f.store.StockOf(productID, warehouseID).String())

	resp = f.do(t, http.MethodGet, "/api/purchases?month=3&year=2024", consultaID, entity.RoleConsulta, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decode[dto.PurchaseListResponse](t, resp)
	require.Len(t, list.Items, 1)
	require.NotNil(t, list.Items[0].UpdatedBy)
	assert.Equal(t, "admin", *list.Items[0].UpdatedBy)
}

func TestPurchase_StringQuantitiesAndBlankRow(t *testing.T) {
	f := newAPI(t)
	warehouseID, supplierID, productID := f.seedCatalog(t)

	body := fiber.Map{
		"proveedor_id": supplierID,
		"bodega_id":    warehouseID,
		"fecha_compra": "2024-03-15T10:00",
		"items": []fiber.Map{
			{"producto_id": productID, "cantidad": "3", "precio_unitario": "10"},
			{"producto_id": "", "cantidad": "", "precio_unitario": ""},
			{"producto_id": "", "cantidad": nil},
		},
	}
	resp := f.do(t, http.MethodPost, "/api/purchases", comprasID, entity.RoleCompras, body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := decode[dto.PurchaseCreatedResponse](t, resp).ID
	assert.Equal(t, "3", f.store.StockOf(productID, warehouseID).String())

	resp = f.do(t, http.MethodGet, "/api/purchases/"+id, consultaID, entity.RoleConsulta, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	detail := decode[dto.PurchaseDetailResponse](t, resp)
	assert.Equal(t, "30", detail.Total.String())
	assert.Len(t, detail.Lines, 1)
}

func TestPurchase_MoreThanFourDecimalsRejected(t *testing.T) {
	f := newAPI(t)
	warehouseID, supplierID, productID := f.seedCatalog(t)

	body := purchaseBody(supplierID, warehouseID, productID, 1, 1)
	body["items"] = []fiber.Map{{"producto_id": productID, "cantidad": "1.00005", "precio_unitario": "10"}}
	resp := f.do(t, http.MethodPost, "/api/purchases", comprasID, entity.RoleCompras, body)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	out := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", out.Code)
	assert.Equal(t, "max_scale=4", out.Fields["items[0].cantidad"])
	assert.Equal(t, 0, f.store.PurchaseCount())
}

func TestPurchase_NonUUIDIDIsNotFound(t *testing.T) {
	f := newAPI(t)
	warehouseID, supplierID, productID := f.seedCatalog(t)

	resp := f.do(t, http.MethodPut, "/api/purchases/abc", adminID, entity.RoleAdmin,
		purchaseBody(supplierID, warehouseID, productID, 5, 10))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, f.store.PurchaseCount())
	assert.Empty(t, f.store.Movements())

	resp = f.do(t, http.MethodGet, "/api/purchases/abc", consultaID, entity.RoleConsulta, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/purchases/abc/pdf", consultaID, entity.RoleConsulta, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPurchase_ConsultaCannotWrite(t *testing.T) {
	f := newAPI(t)
	warehouseID, supplierID, productID := f.seedCatalog(t)

	resp := f.do(t, http.MethodPost, "/api/purchases", consultaID, entity.RoleConsulta,
		purchaseBody(supplierID, warehouseID, productID, 1, 1))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, f.store.PurchaseCount())
}

func TestPurchase_ValidationError(t *testing.T) {
	f := newAPI(t)
	warehouseID, supplierID, productID := f.seedCatalog(t)

	resp := f.do(t, http.MethodPost, "/api/purchases", comprasID, entity.RoleCompras,
		purchaseBody(supplierID, warehouseID, productID, -1, 10))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)
	assert.Equal(t, 0, f.store.PurchaseCount())
	assert.Empty(t, f.store.Movements())
}

func TestPurchase_TransactionFailure(t *testing.T) {
	f := newAPI(t)
	warehouseID, supplierID, productID := f.seedCatalog(t)
	f.store.FailMovementAt(1)

	resp := f.do(t, http.MethodPost, "/api/purchases", comprasID, entity.RoleCompras,
		purchaseBody(supplierID, warehouseID, productID, 2, 10))
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "TRANSACTION", decode[dto.ErrorResponse](t, resp).Code)
	assert.Equal(t, 0, f.store.PurchaseCount())
	assert.True(t, f.store.StockOf(productID, warehouseID).IsZero())
}

func TestPurchase_PDF(t *testing.T) {
	f := newAPI(t)
	warehouseID, supplierID, productID := f.seedCatalog(t)

	resp := f.do(t, http.MethodPost, "/api/purchases", comprasID, entity.RoleCompras,
		purchaseBody(supplierID, warehouseID, productID, 2, 12500))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := decode[dto.PurchaseCreatedResponse](t, resp).ID

	resp = f.do(t, http.MethodGet, "/api/purchases/"+id+"/pdf", consultaID, entity.RoleConsulta, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp = f.do(t, http.MethodGet, "/api/purchases/no-existe/pdf", consultaID, entity.RoleConsulta, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStock_ReportsAndAdjustment(t *testing.T) {
	f := newAPI(t)
	warehouseID, supplierID, productID := f.seedCatalog(t)

	resp := f.do(t, http.MethodPost, "/api/purchases", comprasID, entity.RoleCompras,
		purchaseBody(supplierID, warehouseID, productID, 4, 10))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/stock", consultaID, entity.RoleConsulta, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	global := decode[[]dto.ProductStockResponse](t, resp)
	require.Len(t, global, 1)
	assert.Equal(t, "4", global[0].Quantity.String())

	resp = f.do(t, http.MethodGet, "/api/stock/products/"+productID, consultaID, entity.RoleConsulta, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	byWarehouse := decode[[]dto.WarehouseStockResponse](t, resp)
	require.Len(t, byWarehouse, 1)
	assert.Equal(t, "Principal", byWarehouse[0].WarehouseName)

	resp = f.do(t, http.MethodPost, "/api/stock/adjustments", comprasID, entity.RoleCompras,
		dto.AdjustStockRequest{ProductID: productID, WarehouseID: warehouseID})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/stock/adjustments", adminID, entity.RoleAdmin,
		fiber.Map{"product_id": productID, "warehouse_id": warehouseID, "quantity": 1})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	adj := decode[inventory.AdjustResult](t, resp)
	assert.Equal(t, "-3", adj.Delta.String())
	assert.Equal(t, "1", f.store.StockOf(productID, warehouseID).String())

	resp = f.do(t, http.MethodGet, "/api/stock/kardex?product_id="+productID, consultaID, entity.RoleConsulta, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	kardex := decode[[]dto.KardexEntryResponse](t, resp)
	require.Len(t, kardex, 2)
	reasons := []string{kardex[0].Reason, kardex[1].Reason}
	assert.ElementsMatch(t, []string{entity.ReasonCompra, entity.ReasonAjuste}, reasons)
}

func TestStock_KardexInvalidRange(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodGet, "/api/stock/kardex?from=2024-05-01&to=2024-04-01", consultaID, entity.RoleConsulta, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/stock/kardex?from=ayer", consultaID, entity.RoleConsulta, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStock_Export(t *testing.T) {
	f := newAPI(t)
	f.seedCatalog(t)

	resp := f.do(t, http.MethodGet, "/api/stock/export", consultaID, entity.RoleConsulta, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "stock.xlsx")

	book, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer book.Close()
	name, err := book.GetCellValue("Stock", "A4")
	require.NoError(t, err)
	assert.Equal(t, "Taza blanca 11oz", name)
}
