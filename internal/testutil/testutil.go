package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/atelier-korea/internal/api"
	"github.com/dom/atelier-korea/internal/catalog"
	"github.com/dom/atelier-korea/internal/config"
	"github.com/dom/atelier-korea/internal/metrics"
	"github.com/dom/atelier-korea/internal/repository"
	"github.com/dom/atelier-korea/internal/repository/memory"
	repoPostgres "github.com/dom/atelier-korea/internal/repository/postgres"
	"github.com/dom/atelier-korea/internal/service"
	"github.com/dom/atelier-korea/internal/store"
	"github.com/dom/atelier-korea/internal/websocket"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a migrated connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_atelier_korea"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	if err := tdb.DB.Exec("TRUNCATE TABLE storage_blobs").Error; err != nil {
		t.Fatalf("failed to truncate storage_blobs: %v", err)
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:            "0", // Random port
		Environment:     "test",
		StorageDriver:   repository.DriverMemory,
		CraftingDelay:   0,
		SuggestionDelay: 0,
		ProfileIdleTTL:  time.Hour,
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	Repo     repository.BlobRepository
	Catalog  *catalog.Catalog
	Registry *store.Registry
	Services *service.Services
	Hub      *websocket.Hub
	Metrics  *metrics.Collector
	Config   *config.Config
}

// NewTestServer creates a complete test server backed by in-memory storage
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return NewTestServerWithConfig(t, TestConfig(), memory.NewBlobRepository())
}

// NewTestServerWithConfig creates a test server with the given config and blob storage
func NewTestServerWithConfig(t *testing.T, cfg *config.Config, repo repository.BlobRepository) *TestServer {
	t.Helper()

	cat, err := catalog.LoadBundled()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	log := zap.NewNop()
	collector := metrics.NewCollector("test")
	registry := store.NewRegistry(repo,
		store.WithLogger(log),
		store.WithSaveErrorHook(func(error) { collector.PersistFailures.Inc() }),
	)

	services := service.NewServices(cat, registry, collector, cfg, log)
	hub := websocket.NewHub(registry, services.Collection, services.Piece, services.Suggestion, collector, log)
	go hub.Run()

	router := api.NewRouter(services, hub, collector, cfg, log)
	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		Repo:     repo,
		Catalog:  cat,
		Registry: registry,
		Services: services,
		Hub:      hub,
		Metrics:  collector,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}

// WebSocketURL returns the WebSocket URL for a profile
func (ts *TestServer) WebSocketURL(profileID string) string {
	wsURL := "ws" + ts.Server.URL[4:] // Replace "http" with "ws"
	return fmt.Sprintf("%s/api/v1/ws?profile=%s", wsURL, profileID)
}
