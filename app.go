package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"invest/internal/config"
	"invest/internal/handlers"
	"invest/internal/models"
	"invest/internal/repositories"
	"invest/internal/services"
	"invest/internal/store"
	"invest/pkg/rabbitmq"
)

// App is the composition root: it owns both stores and everything built on them.
type App struct {
	Fiber    *fiber.App
	Services handlers.Services
	Users    *store.Store[models.User]
	Assets   *store.Store[models.Asset]

	closers []func() error
}

// NewApp opens the configured storage, loads both collections and wires the
// services, HTTP routes and optional event publishing.
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{}

	userSnap, assetSnap, err := app.openSnapshots(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Users = store.Open[models.User]("users", userSnap, logger)
	app.Assets = store.Open[models.Asset]("assets", assetSnap, logger)

	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		app.closers = append(app.closers, mqClient.Close)
		events = mqClient

		auditLog := func(msg amqp.Delivery) error {
			logger.Info("asset event", zap.String("routing_key", msg.RoutingKey), zap.ByteString("body", msg.Body))
			return nil
		}
		if err := mqClient.ConsumeEvents("asset_audit", "asset.*", auditLog); err != nil {
			logger.Warn("failed to start asset event consumer", zap.Error(err))
		}
	}

	app.Services = handlers.Services{
		Auth:   services.NewAuthService(repositories.NewUserDirectory(app.Users), cfg.JWTSecret, cfg.TokenTTL, logger),
		Assets: services.NewAssetService(repositories.NewAssetLedger(app.Assets), events, logger),
		Bank:   services.NewBankService(cfg.BankOTP, logger),
	}

	app.Fiber = fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Fiber.Use(fiberlogger.New())
	handlers.RegisterRoutes(app.Fiber, app.Services, logger)

	return app, nil
}

func (a *App) openSnapshots(cfg *config.Config) (store.Snapshotter[models.User], store.Snapshotter[models.Asset], error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return store.NewMemorySnapshot[models.User](), store.NewMemorySnapshot[models.Asset](), nil

	case config.BackendSQLite, config.BackendPostgres:
		db, err := a.openDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		users, err := store.NewGormSnapshot[models.User](db)
		if err != nil {
			return nil, nil, err
		}
		assets, err := store.NewGormSnapshot[models.Asset](db)
		if err != nil {
			return nil, nil, err
		}
		return users, assets, nil

	default:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
		}
		return store.NewFileSnapshot[models.User](filepath.Join(cfg.DataDir, "users.json")),
			store.NewFileSnapshot[models.Asset](filepath.Join(cfg.DataDir, "assets.json")),
			nil
	}
}

func (a *App) openDB(cfg *config.Config) (*gorm.DB, error) {
	dialector := sqlite.Open(cfg.DatabaseDSN)
	if cfg.StorageBackend == config.BackendPostgres {
		dialector = postgres.Open(cfg.DatabaseDSN)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	a.closers = append(a.closers, sqlDB.Close)
	return db, nil
}

// Close releases the broker connection and database handle, in reverse
// order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if len(errs) > 0 {
		return fmt.Errorf("errors while closing app: %v", errs)
	}
	return nil
}
