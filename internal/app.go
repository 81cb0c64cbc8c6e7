// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"

	router "skillswap-ledger/internal/api"
	"skillswap-ledger/internal/api/handler"
	"skillswap-ledger/internal/config"
	"skillswap-ledger/internal/repository"
	"skillswap-ledger/internal/repository/postgres"
	"skillswap-ledger/internal/service"
	"skillswap-ledger/internal/util"
	"skillswap-ledger/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	// Repositories
	UserRepository           repository.UserRepository
	WalletRepository         repository.WalletRepository
	TransactionRepository    repository.TransactionRepository
	SessionRequestRepository repository.SessionRequestRepository
	SessionRepository        repository.SessionRepository
	ConnectionRepository     repository.ConnectionRepository
	SkillRepository          repository.SkillRepository

	// Services
	LedgerService     service.LedgerService
	NegotiatorService service.NegotiatorService
	LifecycleService  service.LifecycleService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if app.Config.RedisAddr != "" {
		rdb, err := db.NewRedisClient(app.Config.RedisAddr)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.Redis = rdb
		app.Logger.Info("Redis connection established; idempotency layer enabled.")
	}

	app.UserRepository = postgres.NewUserRepository(app.DB)
	app.WalletRepository = postgres.NewWalletRepository(app.DB)
	app.TransactionRepository = postgres.NewTransactionRepository(app.DB)
	app.SessionRequestRepository = postgres.NewSessionRequestRepository(app.DB)
	app.SessionRepository = postgres.NewSessionRepository(app.DB)
	app.ConnectionRepository = postgres.NewConnectionRepository(app.DB)
	app.SkillRepository = postgres.NewSkillRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	app.LedgerService = service.NewLedgerService(
		app.DB,
		app.DB,
		app.UserRepository,
		app.WalletRepository,
		app.TransactionRepository,
		app.ConnectionRepository,
		app.SkillRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		app.Config.SignupGrant,
	)
	app.NegotiatorService = service.NewNegotiatorService(
		app.DB,
		app.DB,
		app.WalletRepository,
		app.TransactionRepository,
		app.SessionRequestRepository,
		app.SessionRepository,
		app.ConnectionRepository,
		app.SkillRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		app.Config.AllowSkillFallback,
	)
	app.LifecycleService = service.NewLifecycleService(
		app.DB,
		app.DB,
		app.WalletRepository,
		app.TransactionRepository,
		app.SessionRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.Logger.Info("Services initialized.")

	walletHandler := handler.NewWalletHandler(app.LedgerService, app.Logger, app.Config.JWTSecret)
	requestHandler := handler.NewRequestHandler(app.NegotiatorService, app.Logger)
	sessionHandler := handler.NewSessionHandler(app.LifecycleService, app.Logger)
	app.HTTPHandler = router.NewRouter(walletHandler, requestHandler, sessionHandler, app.Config.JWTSecret, app.Redis, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			app.Logger.Error("Failed to close Redis connection", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
