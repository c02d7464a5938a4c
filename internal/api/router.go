package api

import (
	"net/http"

	"github.com/dom/atelier-korea/internal/api/handlers"
	"github.com/dom/atelier-korea/internal/api/middleware"
	"github.com/dom/atelier-korea/internal/config"
	"github.com/dom/atelier-korea/internal/metrics"
	"github.com/dom/atelier-korea/internal/service"
	"github.com/dom/atelier-korea/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func NewRouter(services *service.Services, hub *websocket.Hub, collector *metrics.Collector, cfg *config.Config, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(collector.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.ProfileHeader, "X-Request-ID"},
		ExposedHeaders:   []string{middleware.ProfileHeader, "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", collector.Handler())

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(services.Catalog, logger)
	collectionHandler := handlers.NewCollectionHandler(services.Collection, services.Piece, logger)
	routeHandler := handlers.NewRouteHandler(services.Suggestion, logger)
	wsHandler := handlers.NewWebSocketHandler(hub, cfg.AllowedOrigins, logger)

	profile := middleware.Profile(logger, cfg.IsProduction())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Editorial catalog
		r.Route("/ateliers", func(r chi.Router) {
			r.Get("/", catalogHandler.ListAteliers)
			r.Get("/{slug}", catalogHandler.GetAtelier)
		})
		r.Route("/collections", func(r chi.Router) {
			r.Get("/", catalogHandler.ListCollections)
			r.Get("/{id}", catalogHandler.GetCollection)
		})

		r.Post("/routes/suggest", routeHandler.Suggest)

		// Per-profile collection
		r.Group(func(r chi.Router) {
			r.Use(profile)

			r.Route("/me", func(r chi.Router) {
				r.Get("/collection", collectionHandler.Get)
				r.Get("/saved/{slug}", collectionHandler.IsSaved)
				r.Post("/saved/{slug}/toggle", collectionHandler.ToggleSave)
				r.Post("/pieces", collectionHandler.CraftPiece)
				r.Get("/pieces/{slug}", collectionHandler.GetPiece)
				r.Get("/routes", collectionHandler.ListRoutes)
				r.Post("/routes", collectionHandler.SaveRoute)
			})

			// WebSocket endpoint
			r.Get("/ws", wsHandler.Handle)
		})
	})

	return r
}
