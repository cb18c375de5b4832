package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/motors-dealership/internal"
	"github.com/frahmantamala/motors-dealership/internal/account"
	accountPostgres "github.com/frahmantamala/motors-dealership/internal/account/postgres"
	"github.com/frahmantamala/motors-dealership/internal/auth"
	authPostgres "github.com/frahmantamala/motors-dealership/internal/auth/postgres"
	authRedis "github.com/frahmantamala/motors-dealership/internal/auth/redis"
	"github.com/frahmantamala/motors-dealership/internal/core/events"
	"github.com/frahmantamala/motors-dealership/internal/flash"
	"github.com/frahmantamala/motors-dealership/internal/inventory"
	inventoryPostgres "github.com/frahmantamala/motors-dealership/internal/inventory/postgres"
	"github.com/frahmantamala/motors-dealership/internal/transport/metrics"
	"github.com/frahmantamala/motors-dealership/internal/transport/rest"
	"github.com/frahmantamala/motors-dealership/internal/transport/view"
	"github.com/frahmantamala/motors-dealership/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 30 * time.Second

var staticDir string

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server that renders the dealership site`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func init() {
	httpServerCmd.Flags().StringVar(&staticDir, "static", "public", "directory served under /css, /js and /images; empty disables it")
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Redis  *redis.Client
	Bus    *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		deps.Logger.Error("failed to set up routes", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr, "credential_mode", deps.Config.Security.CredentialMode)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.Bus.Wait(ctx); err != nil {
			deps.Logger.Warn("event handlers still running at shutdown", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("server failed to start", "error", err)
			deps.close()
			os.Exit(1)
		}
	}

	deps.close()
	deps.Logger.Info("server stopped")
}

func (d *Dependencies) close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("database close error", "error", err)
	}
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	secure := !cfg.App.IsDevelopment()

	issuer, err := newIssuer(deps)
	if err != nil {
		return err
	}
	cookies := auth.NewCookieJar(issuer, secure, cfg.Security.CredentialTTL)
	notices := flash.NewStore(cfg.Security.FlashSecret, secure)

	accountService := account.NewService(
		accountPostgres.NewAccountRepository(deps.Gorm),
		newHasher(cfg.Security.BCryptCost),
		issuer,
		deps.Bus,
		deps.Logger,
	)
	inventoryService := inventory.NewService(
		inventoryPostgres.NewInventoryRepository(deps.Gorm),
		inventoryPostgres.NewImagePathRepair(deps.DB),
		deps.Bus,
		deps.Logger,
	)

	var inventoryHandler *inventory.Handler
	renderer, err := view.New(func(ctx context.Context) ([]view.NavItem, error) {
		return inventoryHandler.Navigation(ctx)
	}, notices, deps.Logger)
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	inventoryHandler = inventory.NewHandler(inventoryService, renderer, notices)

	checks := map[string]rest.Check{
		"database": deps.DB.PingContext,
	}
	if deps.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		}
	}

	metricsPath := ""
	if cfg.Observability.Metrics.Enabled {
		metricsPath = cfg.Observability.Metrics.Path
		metrics.Subscribe(deps.Bus)
	}

	rest.RegisterAllRoutes(deps.Router, rest.Routes{
		Gate:      auth.NewGate(issuer, cookies, notices, deps.Logger),
		Notices:   notices,
		View:      renderer,
		Account:   account.NewHandler(accountService, renderer, cookies, notices),
		Inventory: inventoryHandler,
		Health:    rest.NewHealthHandler(checks),
		RateLimits: rest.RateLimits{
			LoginPerMinute:    cfg.RateLimit.LoginPerMinute,
			RegisterPerMinute: cfg.RateLimit.RegisterPerMinute,
		},
		MetricsPath: metricsPath,
		StaticDir:   staticDir,
		Logger:      deps.Logger,
	})
	return nil
}

// newIssuer picks the one credential realization this deployment runs.
func newIssuer(deps *Dependencies) (auth.Issuer, error) {
	sec := deps.Config.Security
	switch sec.CredentialMode {
	case internal.CredentialModeToken:
		return auth.NewTokenIssuer(sec.TokenSecret, sec.CredentialTTL), nil
	case internal.CredentialModeSession:
		if sec.SessionStore == internal.SessionStoreRedis {
			return auth.NewSessionIssuer(authRedis.NewSessionStore(deps.Redis), sec.CredentialTTL), nil
		}
		return auth.NewSessionIssuer(authPostgres.NewSessionStore(deps.Gorm), sec.CredentialTTL), nil
	default:
		return nil, fmt.Errorf("unknown credential mode %q", sec.CredentialMode)
	}
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.Init(logger.Options{
		Env:    config.App.Env,
		Level:  config.Observability.Logging.Level,
		Format: config.Observability.Logging.Format,
	})

	db, gormDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var redisClient *redis.Client
	sec := config.Security
	if sec.CredentialMode == internal.CredentialModeSession && sec.SessionStore == internal.SessionStoreRedis {
		redisClient, err = authRedis.Connect(ctx, authRedis.Config{
			Addr:    config.Redis.Addr,
			DB:      config.Redis.DB,
			Timeout: config.Redis.Timeout,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	}

	return &Dependencies{
		Config: config,
		DB:     db,
		Gorm:   gormDB,
		Redis:  redisClient,
		Bus:    events.NewEventBus(lg),
		Router: chi.NewRouter(),
		Logger: lg,
	}, nil
}

// initDB opens one pgx pool and hands it to both sqlx and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, *gorm.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: dbConn.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to open gorm session: %w", err)
	}

	return dbConn, gormDB, nil
}

func newHasher(cost int) auth.PasswordHasher {
	if cost < bcrypt.MinCost {
		cost = auth.DefaultBcryptCost
	}
	return auth.NewBcryptHasher(cost)
}
