package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/internal/handler"
	"go-inventory-ledger/internal/idempotency"
	"go-inventory-ledger/internal/ledger"
	"go-inventory-ledger/internal/metrics"
	"go-inventory-ledger/internal/middleware"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/internal/ws"
	"go-inventory-ledger/pkg/database"
	"go-inventory-ledger/pkg/jwt"
	"go-inventory-ledger/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Env
	dotenvErr := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer zl.Sync()
	if dotenvErr != nil {
		zl.Warn(".env file not found, using process environment")
	}

	// 2. Setup Database
	db, err := database.Connect(cfg.Database(), zl)
	if err != nil {
		zl.Fatal("connect database", zap.Error(err))
	}
	// Schema is managed by AutoMigrate; there is no separate migration step.
	if err := repository.AutoMigrate(db); err != nil {
		zl.Fatal("migrate schema", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub(zl)
	go wsHub.Run(ctx)

	// 4. Idempotency claims: Redis when configured, otherwise in process
	var idem idempotency.Store = idempotency.NewMemoryStore(cfg.Redis.IdempotencyTTL)
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			zl.Fatal("parse REDIS_URL", zap.Error(err))
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			zl.Fatal("connect redis", zap.Error(err))
		}
		idem = idempotency.NewRedisStore(rdb, cfg.Redis.IdempotencyTTL)
		zl.Info("idempotency keys stored in redis")
	}

	m := metrics.New()

	// 5. Dependency Injection (Wiring Layers)
	timeout := cfg.DB.StoreTimeout
	store := repository.NewStore(db, timeout)
	itemRepo := repository.NewItemRepo(db, timeout)
	txRepo := repository.NewTransactionRepo(db, ledger.NewMonotonicClock(), timeout)
	userRepo := repository.NewUserRepo(db, timeout)

	authService := service.NewAuthService(userRepo, jwt.NewManager(cfg.Session.Secret, cfg.Session.TTL), zl)
	catalogService := service.NewCatalogService(store, itemRepo, txRepo, wsHub, m, zl)
	txService := service.NewTransactionService(itemRepo, txRepo, idem, wsHub, m, zl)
	invService := service.NewInventoryService(itemRepo, txRepo, m, zl)
	moveService := service.NewMovementService(txRepo)

	routes := handler.Routes{
		Inventory:   handler.NewInventoryHandler(catalogService, txService, invService, zl),
		Auth:        handler.NewAuthHandler(authService, handler.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure}, zl),
		Dashboard:   handler.NewDashboardHandler(moveService, store, zl),
		RequireAuth: middleware.RequireAuth(authService, cfg.Session.CookieName),
		Hub:         wsHub,
		StaticDir:   cfg.App.StaticDir,
	}
	if cfg.Metrics.Enabled {
		routes.Metrics = m.Handler()
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Inventory Ledger",
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CORSOrigins,
		AllowCredentials: cfg.App.CORSOrigins != "*",
	}))

	routes.Register(app)

	// 7. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			zl.Error("listen", zap.Error(err))
			stop()
		}
	}()
	zl.Info("server started", zap.String("port", cfg.App.Port), zap.String("db_driver", cfg.DB.Driver))

	<-ctx.Done()

	zl.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	zl.Info("server exited")
}
