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

	"github.com/alcafoods/magazzino-api/internal/application/ledger"
	"github.com/alcafoods/magazzino-api/internal/application/lots"
	"github.com/alcafoods/magazzino-api/internal/application/orders"
	"github.com/alcafoods/magazzino-api/internal/application/ports"
	"github.com/alcafoods/magazzino-api/internal/application/reconcile"
	appstock "github.com/alcafoods/magazzino-api/internal/application/stock"
	"github.com/alcafoods/magazzino-api/internal/application/transfer"
	"github.com/alcafoods/magazzino-api/internal/infrastructure/events"
	"github.com/alcafoods/magazzino-api/internal/infrastructure/postgres"
	infraredis "github.com/alcafoods/magazzino-api/internal/infrastructure/redis"
	httpRouter "github.com/alcafoods/magazzino-api/internal/interfaces/http"
	"github.com/alcafoods/magazzino-api/pkg/config"
	"github.com/alcafoods/magazzino-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
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

	articleRepo := postgres.NewArticleRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	transferRepo := postgres.NewTransferRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	inventoryRepo := postgres.NewInventoryRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Cache de valoración opcional: sin REDIS_ADDR el costo medio se
	// recalcula del ledger en cada consulta.
	var valuationCache ports.ValuationCache
	if cfg.Redis.Addr != "" {
		cache, err := infraredis.New(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer cache.Close()
		valuationCache = cache
		log.Info().Str("addr", cfg.Redis.Addr).Msg("cache de valoración habilitado")
	}

	publisher := events.NewLogPublisher(log.Zerolog())

	stockUC := appstock.NewUseCase(articleRepo, movementRepo, valuationCache)
	lotUC := lots.NewUseCase(txRunner, lotRepo, articleRepo)
	ledgerUC := ledger.NewUseCase(txRunner, articleRepo, locationRepo, lotRepo, movementRepo, publisher)
	transferUC := transfer.NewUseCase(txRunner, articleRepo, locationRepo, transferRepo)
	orderUC := orders.NewUseCase(txRunner, articleRepo, locationRepo, orderRepo, movementRepo, stockUC, publisher)
	reconcileUC := reconcile.NewUseCase(txRunner, locationRepo, inventoryRepo, publisher)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Magazzino API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:    ledgerUC,
		LotUC:       lotUC,
		TransferUC:  transferUC,
		OrderUC:     orderUC,
		ReconcileUC: reconcileUC,
		StockUC:     stockUC,
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
