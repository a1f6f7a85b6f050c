package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sales_explorer/api"
	"sales_explorer/internal/config"
	"sales_explorer/internal/postgres"
	"sales_explorer/internal/sales"
	"sales_explorer/internal/sqlite"
	"sales_explorer/internal/telemetry"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = level
	return zc.Build()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown error", zap.Error(err))
		}
	}()

	storage, closeStorage, err := openStorage(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStorage()
	logger.Info("store ready", zap.String("driver", cfg.Store.Driver))

	if cfg.Store.SeedFile != "" {
		if err := seed(ctx, storage, cfg.Store.SeedFile, logger); err != nil {
			return err
		}
	}

	svc := sales.NewService(storage, logger.Named("sales"),
		sales.WithTimeout(cfg.Store.Timeout),
		sales.WithRetries(cfg.Store.Retries),
	)

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	api.InitRoutes(r, svc, logger.Named("http"), api.Options{
		RateLimit:     cfg.RateLimit.RPS,
		Burst:         cfg.RateLimit.Burst,
		AllowedOrigin: cfg.CORS.AllowedOrigin,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("error trying to start server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// openStorage returns the configured store and a function releasing it.
func openStorage(ctx context.Context, cfg config.StoreConfig) (sales.Storage, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		st, err := sqlite.New(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil
	case config.DriverPostgres:
		st, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	}
	return sales.NewLocalStorage(), func() {}, nil
}

// seed loads the dataset CSV at path into storage when storage is empty.
func seed(ctx context.Context, storage sales.Storage, path string, logger *zap.Logger) error {
	n, err := storage.Count(ctx, sales.And{})
	if err != nil {
		return fmt.Errorf("count sales before seeding: %w", err)
	}
	if n > 0 {
		logger.Info("store already populated, skipping seed", zap.Int("total", n))
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	records, err := sales.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("read seed file %s: %w", path, err)
	}
	if err := storage.Insert(ctx, records); err != nil {
		return fmt.Errorf("seed sales: %w", err)
	}
	logger.Info("store seeded", zap.String("file", path), zap.Int("records", len(records)))
	return nil
}
