package service

import (
	"time"

	"github.com/dom/atelier-korea/internal/catalog"
	"github.com/dom/atelier-korea/internal/config"
	"github.com/dom/atelier-korea/internal/metrics"
	"github.com/dom/atelier-korea/internal/store"
	"github.com/dom/atelier-korea/internal/suggest"
	"go.uber.org/zap"
)

type Services struct {
	Catalog    *CatalogService
	Collection *CollectionService
	Piece      *PieceService
	Suggestion *SuggestionService
}

func NewServices(cat *catalog.Catalog, registry *store.Registry, collector *metrics.Collector, cfg *config.Config, logger *zap.Logger) *Services {
	registry.OnCreate(func(profileID string, s *store.Store) {
		collector.ProfilesLoaded.Inc()
		logger.Debug("collection store loaded", zap.String("key", s.Key()))
	})
	registry.OnEvict(func(profileID string, s *store.Store) {
		collector.ProfilesLoaded.Dec()
		logger.Debug("collection store evicted", zap.String("key", s.Key()))
	})

	return &Services{
		Catalog:    NewCatalogService(cat),
		Collection: NewCollectionService(cat, registry, collector, time.Now),
		Piece:      NewPieceService(cat, registry, collector, cfg.CraftingDelay, time.Now),
		Suggestion: NewSuggestionService(cat, collector, cfg.SuggestionDelay, suggest.NewRand()),
	}
}
