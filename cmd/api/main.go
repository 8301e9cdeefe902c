package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/cerveceria-ancestral/inventario-api/internal/application/auth"
	"github.com/cerveceria-ancestral/inventario-api/internal/application/inventory"
	"github.com/cerveceria-ancestral/inventario-api/internal/application/usecase"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
	"github.com/cerveceria-ancestral/inventario-api/internal/infrastructure/excel"
	"github.com/cerveceria-ancestral/inventario-api/internal/infrastructure/postgres"
	httpRouter "github.com/cerveceria-ancestral/inventario-api/internal/interfaces/http"
	"github.com/cerveceria-ancestral/inventario-api/pkg/config"
	"github.com/cerveceria-ancestral/inventario-api/pkg/logger"
)

func runMigrations(dsn, dir string) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, dir)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.DB.MigrateOnStart {
		if err := runMigrations(cfg.DB.ConnectionString(), cfg.DB.MigrationsDir); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	rawItemRepo := postgres.NewRawMaterialRepository(pool)
	finishedItemRepo := postgres.NewFinishedGoodRepository(pool)
	rawLotRepo := postgres.NewRawMaterialLotRepository(pool)
	finishedLotRepo := postgres.NewFinishedGoodLotRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	registerMovementUC := inventory.NewRegisterMovementUseCase(txRunner)
	rawItemUC := usecase.NewItemUseCase(entity.ElementRawMaterial, rawItemRepo, txRunner)
	finishedItemUC := usecase.NewItemUseCase(entity.ElementFinishedGood, finishedItemRepo, txRunner)
	rawLotUC := usecase.NewLotUseCase(entity.ElementRawMaterial, rawLotRepo, rawItemRepo, txRunner)
	finishedLotUC := usecase.NewLotUseCase(entity.ElementFinishedGood, finishedLotRepo, finishedItemRepo, txRunner)
	movementQueryUC := usecase.NewMovementQueryUseCase(
		movementRepo, rawItemRepo, finishedItemRepo, rawLotRepo, finishedLotRepo,
		userRepo, excel.NewExporter(),
	)
	reconciliationUC := usecase.NewReconciliationUseCase(rawItemRepo, finishedItemRepo, rawLotRepo, finishedLotRepo)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	metrics := httpRouter.NewMetrics()
	app.Use(metrics.Middleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, httpRouter.MetricsHandler())
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		RawItemUC:        rawItemUC,
		FinishedItemUC:   finishedItemUC,
		RawLotUC:         rawLotUC,
		FinishedLotUC:    finishedLotUC,
		RegisterMovement: registerMovementUC,
		MovementQueries:  movementQueryUC,
		ReconciliationUC: reconciliationUC,
		AuthUC:           authUC,
		Permissions:      httpRouter.NewPermissionCache(userRepo),
		Metrics:          metrics,
		JWTSecret:        cfg.JWT.Secret,
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
