package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/coreybb/dietlog/api"
	"github.com/coreybb/dietlog/auth"
	"github.com/coreybb/dietlog/config"
	"github.com/coreybb/dietlog/datastore"
	"github.com/coreybb/dietlog/datefmt"
	"github.com/coreybb/dietlog/meals"
	rh "github.com/coreybb/dietlog/route-handlers"
)

var (
	envFile     string
	autoMigrate bool
)

var rootCmd = &cobra.Command{
	Use:           "dietlog",
	Short:         "Diet tracking API: meals, sessions and adherence metrics",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before the environment is read")
	serveCmd.Flags().BoolVar(&autoMigrate, "auto-migrate", true, "apply the schema before serving")
	rootCmd.Flags().BoolVar(&autoMigrate, "auto-migrate", true, "apply the schema before serving")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.LogFormat == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.DatabaseDriver == datastore.DriverMemory {
		logger.Info("memory driver has no schema to apply")
		return nil
	}

	db, err := datastore.Open(cmd.Context(), cfg.DatabaseDriver, cfg.DatabaseURL, cfg.Pool())
	if err != nil {
		return fmt.Errorf("database setup failed: %w", err)
	}
	defer db.Close()

	if err := datastore.Migrate(cmd.Context(), db); err != nil {
		return err
	}
	logger.Info("schema applied", zap.String("driver", cfg.DatabaseDriver))
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	users, mealStore, db, err := openStores(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	dates := datefmt.New(nil)
	sessions := auth.NewService(users, logger.Named("auth"))
	mealService := meals.NewService(mealStore, dates, logger.Named("meals"))

	userHandler := rh.NewUserHandler(sessions, rh.SessionCookie{
		Name:   cfg.SessionCookieName,
		TTL:    cfg.SessionTTL,
		Secure: cfg.SessionCookieSecure,
	})
	mealHandler := rh.NewMealHandler(mealService, dates)

	router := api.SetupRoutes(api.RouterConfig{
		Logger:         logger.Named("http"),
		Sessions:       sessions,
		CookieName:     cfg.SessionCookieName,
		LoginLimiter:   api.NewRateLimiter(cfg.LoginRatePerSecond, cfg.LoginRateBurst, logger.Named("ratelimit")),
		RequestTimeout: cfg.RequestTimeout,
	}, userHandler, mealHandler)

	return startServer(cfg, logger, router)
}

// openStores returns the user and meal stores for the configured driver. db is nil for the memory driver.
func openStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (auth.UserStore, meals.Store, *sql.DB, error) {
	if cfg.DatabaseDriver == datastore.DriverMemory {
		logger.Warn("using in-memory store; data is lost on exit")
		mem := datastore.NewMemoryStore()
		return mem, mem, nil, nil
	}

	db, err := datastore.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL, cfg.Pool())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("database setup failed: %w", err)
	}
	logger.Info("database connection successful", zap.String("driver", cfg.DatabaseDriver))

	if autoMigrate {
		if err := datastore.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
	}
	return datastore.NewUserRepository(db), datastore.NewMealRepository(db), db, nil
}

func startServer(cfg config.Config, logger *zap.Logger, router http.Handler) error {
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-shutdownSignal:
	}
	logger.Info("shutdown signal received, initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server gracefully stopped")
	return nil
}
