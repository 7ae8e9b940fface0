package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sublirex/inventario-api/internal/application/auth"
	"github.com/sublirex/inventario-api/internal/application/inventory"
	"github.com/sublirex/inventario-api/internal/application/purchasing"
	"github.com/sublirex/inventario-api/internal/application/reports"
	"github.com/sublirex/inventario-api/internal/application/usecase"
	infrapdf "github.com/sublirex/inventario-api/internal/infrastructure/pdf"
	"github.com/sublirex/inventario-api/internal/infrastructure/postgres"
	infraxlsx "github.com/sublirex/inventario-api/internal/infrastructure/xlsx"
	httpRouter "github.com/sublirex/inventario-api/internal/interfaces/http"
	"github.com/sublirex/inventario-api/pkg/config"
	"github.com/sublirex/inventario-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	purchaseRepo := postgres.NewPurchaseRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	ledger := inventory.NewLedger()
	purchaseSvc := purchasing.NewService(txRunner, ledger, purchaseRepo, log.Component("purchasing"))
	adjustmentUC := inventory.NewAdjustmentUseCase(txRunner, ledger, productRepo, warehouseRepo, log.Component("inventory"))

	// PDF de compras y Excel de stock
	reportSvc := reports.NewService(
		reportRepo, purchaseSvc,
		infrapdf.NewMarotoPDFGenerator(cfg.App.CompanyName),
		infraxlsx.NewStockSheetGenerator(),
	)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "SubliRex Inventario API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		UserUC:      usecase.NewUserUseCase(userRepo),
		WarehouseUC: usecase.NewWarehouseUseCase(warehouseRepo),
		ProductUC:   usecase.NewProductUseCase(productRepo),
		SupplierUC:  usecase.NewSupplierUseCase(supplierRepo),
		Purchases:   purchaseSvc,
		Reports:     reportSvc,
		Adjustments: adjustmentUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
