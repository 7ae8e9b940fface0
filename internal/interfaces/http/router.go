package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sublirex/inventario-api/internal/application/auth"
	"github.com/sublirex/inventario-api/internal/application/inventory"
	"github.com/sublirex/inventario-api/internal/application/purchasing"
	"github.com/sublirex/inventario-api/internal/application/reports"
	"github.com/sublirex/inventario-api/internal/application/usecase"
	"github.com/sublirex/inventario-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	WarehouseUC *usecase.WarehouseUseCase
	ProductUC   *usecase.ProductUseCase
	SupplierUC  *usecase.SupplierUseCase
	Purchases   *purchasing.Service
	Reports     *reports.Service
	Adjustments *inventory.AdjustmentUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Auth (público salvo /me)
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)

	adminOnly := RequireRole(entity.RoleAdmin)
	purchasers := RequireRole(entity.RoleAdmin, entity.RoleCompras)

	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Post("/", adminOnly, warehouseHandler.Create)

	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Post("/", adminOnly, supplierHandler.Create)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", adminOnly, productHandler.Create)

	purchases := protected.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.Purchases, deps.Reports)
	purchases.Get("/", purchaseHandler.List)
	purchases.Post("/", purchasers, purchaseHandler.Create)
	purchases.Get("/:id/pdf", purchaseHandler.PDF)
	purchases.Get("/:id", purchaseHandler.GetByID)
	purchases.Put("/:id", purchasers, purchaseHandler.Update)

	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.Reports, deps.Adjustments)
	stock.Get("/", stockHandler.GlobalStock)
	stock.Get("/export", stockHandler.Export)
	stock.Get("/kardex", stockHandler.Kardex)
	stock.Get("/products/:id", stockHandler.ProductStock)
	stock.Post("/adjustments", adminOnly, stockHandler.Adjust)
}
