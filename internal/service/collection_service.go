package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dom/atelier-korea/internal/catalog"
	"github.com/dom/atelier-korea/internal/domain"
	"github.com/dom/atelier-korea/internal/metrics"
	"github.com/dom/atelier-korea/internal/store"
	"github.com/dom/atelier-korea/internal/suggest"
)

// CollectionService applies collection actions to the calling profile's store.
type CollectionService struct {
	catalog  *catalog.Catalog
	registry *store.Registry
	metrics  *metrics.Collector
	now      func() time.Time
}

func NewCollectionService(cat *catalog.Catalog, registry *store.Registry, collector *metrics.Collector, now func() time.Time) *CollectionService {
	return &CollectionService{
		catalog:  cat,
		registry: registry,
		metrics:  collector,
		now:      now,
	}
}

// MyCollection is the whole state of a profile plus the saved ateliers resolved from the catalog.
type MyCollection struct {
	domain.CollectionState
	SavedAteliers []domain.Atelier `json:"savedAteliers"`
}

type SaveRouteInput struct {
	Title        string
	AtelierSlugs []string
}

// ToggleSave flips whether slug is saved for the profile and returns the new state.
func (s *CollectionService) ToggleSave(ctx context.Context, profileID, slug string) (bool, error) {
	if _, err := s.catalog.Atelier(slug); err != nil {
		return false, err
	}

	st, release := s.registry.Acquire(ctx, profileID)
	defer release()

	saved := st.ToggleSave(ctx, slug)
	s.metrics.SaveToggles.WithLabelValues(strconv.FormatBool(saved)).Inc()
	return saved, nil
}

// IsSaved and the other reads go through the registry's View, so browsing never
// keeps a store in memory.
func (s *CollectionService) IsSaved(ctx context.Context, profileID, slug string) bool {
	return s.registry.View(ctx, profileID).IsSaved(slug)
}

func (s *CollectionService) GetCollection(ctx context.Context, profileID string) *MyCollection {
	state := s.registry.View(ctx, profileID)
	return &MyCollection{
		CollectionState: state,
		SavedAteliers:   s.catalog.AteliersBySlugs(state.SavedAtelierSlugs),
	}
}

// GetPiece returns the piece issued to the profile for atelierSlug, if any.
func (s *CollectionService) GetPiece(ctx context.Context, profileID, atelierSlug string) (domain.IssuedPiece, bool) {
	return s.registry.View(ctx, profileID).Piece(atelierSlug)
}

func (s *CollectionService) ListRoutes(ctx context.Context, profileID string) []domain.SavedRoute {
	return s.registry.View(ctx, profileID).SavedRoutes
}

// SaveRoute records a route of known ateliers. The id and creation time are assigned here.
func (s *CollectionService) SaveRoute(ctx context.Context, profileID string, input SaveRouteInput) (domain.SavedRoute, error) {
	ateliers := make([]domain.Atelier, 0, len(input.AtelierSlugs))
	for _, slug := range input.AtelierSlugs {
		a, err := s.catalog.Atelier(slug)
		if err != nil {
			return domain.SavedRoute{}, fmt.Errorf("route: %w", err)
		}
		ateliers = append(ateliers, a)
	}

	route := suggest.NewSavedRoute(input.Title, ateliers, s.now())
	st, release := s.registry.Acquire(ctx, profileID)
	defer release()
	st.SaveRoute(ctx, route)
	s.metrics.RoutesSaved.Inc()
	return route, nil
}
