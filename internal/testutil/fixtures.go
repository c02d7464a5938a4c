package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/dom/atelier-korea/internal/catalog"
	"github.com/dom/atelier-korea/internal/domain"
	"github.com/google/uuid"
)

// AtelierBuilder creates test ateliers with a builder pattern
type AtelierBuilder struct {
	atelier domain.Atelier
}

// NewAtelierBuilder creates a new AtelierBuilder with default values
func NewAtelierBuilder() *AtelierBuilder {
	slug := fmt.Sprintf("atelier-%s", uuid.New().String()[:8])
	return &AtelierBuilder{
		atelier: domain.Atelier{
			Slug:              slug,
			DisplayName:       slug,
			CollectionID:      domain.ThemeSea,
			PaceTag:           domain.PaceBalanced,
			RecommendedNights: 2,
			Piece: domain.Piece{
				ID:       "piece-" + slug,
				BaseName: "Test Piece",
				Question: "What stayed with you?",
				Choices: []domain.PieceChoice{
					{ID: "c1", Label: "The light", GeneratedLine: "Light remembers the shore."},
					{ID: "c2", Label: "The quiet", GeneratedLine: "Quiet is a kind of map."},
				},
			},
		},
	}
}

// WithSlug sets the slug
func (b *AtelierBuilder) WithSlug(slug string) *AtelierBuilder {
	b.atelier.Slug = slug
	return b
}

// WithTheme sets the collection the atelier belongs to
func (b *AtelierBuilder) WithTheme(theme domain.Theme) *AtelierBuilder {
	b.atelier.CollectionID = theme
	return b
}

// WithPace sets the pace tag
func (b *AtelierBuilder) WithPace(pace domain.Pace) *AtelierBuilder {
	b.atelier.PaceTag = pace
	return b
}

// Build returns the atelier
func (b *AtelierBuilder) Build() domain.Atelier {
	return b.atelier
}

// NewCatalog builds a catalog from ateliers, with one collection per theme used
func NewCatalog(t *testing.T, ateliers ...domain.Atelier) *catalog.Catalog {
	t.Helper()

	byTheme := make(map[domain.Theme][]string)
	var order []domain.Theme
	for _, a := range ateliers {
		if _, ok := byTheme[a.CollectionID]; !ok {
			order = append(order, a.CollectionID)
		}
		byTheme[a.CollectionID] = append(byTheme[a.CollectionID], a.Slug)
	}

	collections := make([]domain.Collection, 0, len(order))
	for _, theme := range order {
		collections = append(collections, domain.Collection{
			ID:           theme,
			Title:        theme.String(),
			AtelierSlugs: byTheme[theme],
		})
	}

	c, err := catalog.New(ateliers, collections)
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return c
}

// NewProfileID returns a fresh browser profile id
func NewProfileID() string {
	return uuid.NewString()
}

// CreateProfileRequest creates an HTTP request acting for profileID
func CreateProfileRequest(t *testing.T, method, url string, body interface{}, profileID string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if profileID != "" {
		req.Header.Set("X-Profile-ID", profileID)
	}

	return req
}

// DoProfileRequest sends a request acting for profileID and returns the response
func DoProfileRequest(t *testing.T, method, url string, body interface{}, profileID string) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(CreateProfileRequest(t, method, url, body, profileID))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
