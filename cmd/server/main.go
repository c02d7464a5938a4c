package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/atelier-korea/internal/api"
	"github.com/dom/atelier-korea/internal/catalog"
	"github.com/dom/atelier-korea/internal/config"
	"github.com/dom/atelier-korea/internal/logger"
	"github.com/dom/atelier-korea/internal/metrics"
	"github.com/dom/atelier-korea/internal/repository"
	"github.com/dom/atelier-korea/internal/repository/memory"
	"github.com/dom/atelier-korea/internal/repository/postgres"
	"github.com/dom/atelier-korea/internal/repository/s3"
	"github.com/dom/atelier-korea/internal/repository/sqlite"
	"github.com/dom/atelier-korea/internal/service"
	"github.com/dom/atelier-korea/internal/store"
	"github.com/dom/atelier-korea/internal/websocket"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Load editorial catalog
	cat, err := loadCatalog(cfg)
	if err != nil {
		log.Fatal("failed to load catalog", zap.Error(err))
	}
	log.Info("catalog loaded",
		zap.Int("ateliers", len(cat.Ateliers())),
		zap.Int("collections", len(cat.Collections())))

	// Initialize storage
	repos, err := openRepositories(context.Background(), cfg)
	if err != nil {
		log.Fatal("failed to open storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer repos.Close()
	log.Info("storage ready", zap.String("driver", cfg.StorageDriver))

	collector := metrics.NewCollector("atelier")
	registry := store.NewRegistry(repos.Blob,
		store.WithLogger(log),
		store.WithSaveErrorHook(func(error) { collector.PersistFailures.Inc() }),
	)

	evictCtx, stopEviction := context.WithCancel(context.Background())
	defer stopEviction()
	go registry.RunEviction(evictCtx, cfg.ProfileIdleTTL, cfg.ProfileIdleTTL/2)

	// Initialize services
	services := service.NewServices(cat, registry, collector, cfg, log)

	// Initialize WebSocket hub
	hub := websocket.NewHub(registry, services.Collection, services.Piece, services.Suggestion, collector, log)
	go hub.Run()

	// Initialize router
	router := api.NewRouter(services, hub, collector, cfg, log)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	hub.Stop()

	log.Info("server stopped")
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogDir != "" {
		return catalog.LoadDir(cfg.CatalogDir)
	}
	return catalog.LoadBundled()
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repository.Repositories, error) {
	switch cfg.StorageDriver {
	case repository.DriverMemory:
		return memory.NewRepositories(), nil

	case repository.DriverPostgres:
		logLevel := gormlogger.Warn
		if cfg.IsProduction() {
			logLevel = gormlogger.Error
		}
		db, err := postgres.NewConnection(cfg.DatabaseURL, logLevel)
		if err != nil {
			return nil, err
		}
		return postgres.NewRepositories(db), nil

	case repository.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sqlite.NewRepositories(db), nil

	case repository.DriverS3:
		s3cfg := s3.Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			Prefix:    cfg.S3Prefix,
			PathStyle: cfg.S3PathStyle,
		}
		client, err := s3.NewClient(ctx, s3cfg)
		if err != nil {
			return nil, err
		}
		return s3.NewRepositories(client, s3cfg.Bucket, s3cfg.Prefix), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
