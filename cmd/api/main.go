package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"naratani-inventory/internal/cache"
	"naratani-inventory/internal/config"
	"naratani-inventory/internal/handler"
	"naratani-inventory/internal/permission"
	"naratani-inventory/internal/repository"
	"naratani-inventory/internal/service"
	"naratani-inventory/internal/ws"
	"naratani-inventory/pkg/database"
	"naratani-inventory/pkg/jwt"
	"naratani-inventory/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	loc := cfg.Location()
	ctx := context.Background()

	// 2. Setup Database
	db, err := database.Connect(database.Options{
		DSN:          cfg.DatabaseURL,
		Host:         cfg.DBHost,
		User:         cfg.DBUser,
		Password:     cfg.DBPassword,
		Name:         cfg.DBName,
		Port:         cfg.DBPort,
		TimeZone:     cfg.Timezone,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		log.WithError(err).Fatal("database")
	}
	if err := repository.Migrate(db); err != nil {
		log.WithError(err).Fatal("migrate")
	}

	// 3. Seed default privileges, roles, and admin user
	grants := make(map[string][]string, len(permission.Defaults))
	for role, statements := range permission.Defaults {
		grants[role] = statements.Codes()
	}
	seeded, err := repository.Seed(ctx, db, repository.SeedOptions{
		Grants:        grants,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		log.WithError(err).Fatal("seed")
	}
	if seeded.AdminCreated {
		log.WithField("email", cfg.AdminEmail).Info("admin user created")
	}

	roleRepo := repository.NewRoleRepo(db)
	roles, err := roleRepo.FindAll(ctx)
	if err != nil {
		log.WithError(err).Fatal("load roles")
	}
	checker := permission.NewRoleChecker(roles)

	// 4. Dashboard cache
	var (
		dashCache cache.Cache = cache.NewMemoryCache()
		rdb       *redis.Client
	)
	if cfg.RedisURL != "" {
		rdb, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("redis")
		}
		dashCache = cache.NewRedisCache(rdb)
	}

	// 5. Setup WebSocket Hub
	hub := ws.NewHub(log)
	go hub.Run()

	// 6. Dependency Injection (Wiring Layers)
	store := repository.NewStore(db)
	dashRepo := repository.NewDashboardRepo(db)
	userRepo := store.Repositories().Users
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTExpiry)

	authService := service.NewAuthService(userRepo, roleRepo, tokens)
	handlers := handler.Handlers{
		Auth:             handler.NewAuthHandler(authService),
		Users:            handler.NewUserHandler(service.NewUserService(userRepo, roleRepo, repository.NewPrivilegeRepo(db), dashCache, log)),
		Products:         handler.NewProductHandler(service.NewProductService(store, hub, dashCache, log)),
		Categories:       handler.NewCategoryHandler(service.NewCategoryService(store)),
		Shops:            handler.NewShopHandler(service.NewShopService(store, dashCache, log)),
		Suppliers:        handler.NewSupplierHandler(service.NewSupplierService(store)),
		StockEntries:     handler.NewStockEntryHandler(service.NewStockEntryService(store, hub, dashCache, log)),
		Orders:           handler.NewOrderHandler(service.NewOrderService(store, hub, dashCache, log)),
		Dashboard:        handler.NewDashboardHandler(service.NewDashboardService(dashRepo, dashCache, cfg.DashboardCacheTTL, loc, log)),
		SalesPerformance: handler.NewSalesPerformanceHandler(service.NewSalesPerformanceService(store, dashRepo, loc)),
		Hub:              hub,
	}

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      "Naratani Inventory",
		ErrorHandler: handler.ErrorHandler(log),
	})
	app.Use(recover.New()) // Panic recovery
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	handler.Register(app, handlers, authService, checker)

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Fatal("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	hub.Stop()
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.WithError(err).Error("close redis")
		}
	}
	if err := database.Close(db); err != nil {
		log.WithError(err).Error("close database")
	}
	log.Info("Server exited")
}
