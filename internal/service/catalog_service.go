package service

import (
	"context"

	"github.com/dom/atelier-korea/internal/catalog"
	"github.com/dom/atelier-korea/internal/domain"
)

type CatalogService struct {
	catalog *catalog.Catalog
}

func NewCatalogService(cat *catalog.Catalog) *CatalogService {
	return &CatalogService{catalog: cat}
}

// CollectionDetail is a collection with its ateliers resolved in listed order.
type CollectionDetail struct {
	domain.Collection
	Ateliers []domain.Atelier `json:"ateliers"`
}

// ListAteliers returns every atelier, or only those of one collection when theme is set.
func (s *CatalogService) ListAteliers(ctx context.Context, theme *domain.Theme) []domain.Atelier {
	if theme == nil {
		return s.catalog.Ateliers()
	}
	return s.catalog.AteliersByCollection(*theme)
}

func (s *CatalogService) GetAtelier(ctx context.Context, slug string) (domain.Atelier, error) {
	return s.catalog.Atelier(slug)
}

func (s *CatalogService) ListCollections(ctx context.Context) []domain.Collection {
	return s.catalog.Collections()
}

func (s *CatalogService) GetCollection(ctx context.Context, id domain.Theme) (*CollectionDetail, error) {
	col, err := s.catalog.Collection(id)
	if err != nil {
		return nil, err
	}
	return &CollectionDetail{
		Collection: col,
		Ateliers:   s.catalog.AteliersBySlugs(col.AtelierSlugs),
	}, nil
}
