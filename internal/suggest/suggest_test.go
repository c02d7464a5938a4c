package suggest_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/dom/atelier-korea/internal/domain"
	"github.com/dom/atelier-korea/internal/suggest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func atelier(slug string, theme domain.Theme, pace domain.Pace) domain.Atelier {
	return domain.Atelier{Slug: slug, CollectionID: theme, PaceTag: pace}
}

func slugs(ateliers []domain.Atelier) []string {
	out := make([]string, len(ateliers))
	for i, a := range ateliers {
		out[i] = a.Slug
	}
	return out
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

var catalog = []domain.Atelier{
	atelier("sea-slow", domain.ThemeSea, domain.PaceSlow),
	atelier("sea-deep", domain.ThemeSea, domain.PaceDeep),
	atelier("ritual-slow", domain.ThemeRitual, domain.PaceSlow),
	atelier("ritual-balanced", domain.ThemeRitual, domain.PaceBalanced),
	atelier("grain-balanced", domain.ThemeGrain, domain.PaceBalanced),
	atelier("raw-deep", domain.ThemeRaw, domain.PaceDeep),
}

func TestSuggest_CountByDuration(t *testing.T) {
	tests := []struct {
		duration int
		want     int
	}{
		{duration: 1, want: 1},
		{duration: 4, want: 1},
		{duration: 5, want: 2},
		{duration: 7, want: 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, suggest.Count(tt.duration), "duration %d", tt.duration)

		got := suggest.Suggest(catalog, suggest.Request{
			Duration: tt.duration,
			Pace:     domain.PaceSlow,
			Theme:    domain.AnyTheme(),
		}, seeded(1))
		assert.Len(t, got, tt.want, "duration %d", tt.duration)
	}
}

func TestSuggest_ThemeIsStrictPaceIsRelaxed(t *testing.T) {
	sea := []domain.Atelier{
		atelier("A", domain.ThemeSea, domain.PaceSlow),
		atelier("B", domain.ThemeSea, domain.PaceDeep),
		atelier("C", domain.ThemeRaw, domain.PaceBalanced),
	}

	for seed := uint64(0); seed < 50; seed++ {
		got := suggest.Suggest(sea, suggest.Request{
			Duration: 6,
			Pace:     domain.PaceBalanced,
			Theme:    domain.OnlyTheme(domain.ThemeSea),
		}, seeded(seed))

		require.Len(t, got, 2)
		assert.ElementsMatch(t, []string{"A", "B"}, slugs(got))
	}
}

func TestSuggest_PaceFilterApplies(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		got := suggest.Suggest(catalog, suggest.Request{
			Duration: 7,
			Pace:     domain.PaceDeep,
			Theme:    domain.AnyTheme(),
		}, seeded(seed))

		assert.ElementsMatch(t, []string{"sea-deep", "raw-deep"}, slugs(got))
	}
}

func TestSuggest_FewerCandidatesThanCount(t *testing.T) {
	got := suggest.Suggest(catalog, suggest.Request{
		Duration: 5,
		Pace:     domain.PaceDeep,
		Theme:    domain.OnlyTheme(domain.ThemeRaw),
	}, seeded(3))

	assert.Equal(t, []string{"raw-deep"}, slugs(got))
}

func TestSuggest_EmptyThemeGivesEmptyResult(t *testing.T) {
	got := suggest.Suggest(catalog, suggest.Request{
		Duration: 5,
		Pace:     domain.PaceSlow,
		Theme:    domain.OnlyTheme(domain.ThemeTaste),
	}, seeded(3))

	assert.Empty(t, got)
}

func TestSuggest_EmptyCatalog(t *testing.T) {
	got := suggest.Suggest(nil, suggest.Request{Duration: 3, Pace: domain.PaceSlow}, seeded(1))
	assert.Empty(t, got)
}

func TestSuggest_DeterministicWithSeed(t *testing.T) {
	req := suggest.Request{Duration: 6, Pace: domain.PaceBalanced, Theme: domain.AnyTheme()}

	first := suggest.Suggest(catalog, req, seeded(42))
	second := suggest.Suggest(catalog, req, seeded(42))

	assert.Equal(t, first, second)
}

func TestSuggest_DoesNotMutateInput(t *testing.T) {
	input := append([]domain.Atelier{}, catalog...)

	for seed := uint64(0); seed < 10; seed++ {
		suggest.Suggest(input, suggest.Request{Duration: 6, Pace: domain.PaceSlow, Theme: domain.AnyTheme()}, seeded(seed))
	}

	assert.Equal(t, catalog, input)
}

func TestSuggest_EveryCandidateReachable(t *testing.T) {
	seen := map[string]bool{}
	for seed := uint64(0); seed < 200; seed++ {
		got := suggest.Suggest(catalog, suggest.Request{
			Duration: 2,
			Pace:     domain.PaceBalanced,
			Theme:    domain.AnyTheme(),
		}, seeded(seed))
		require.Len(t, got, 1)
		seen[got[0].Slug] = true
	}

	assert.Equal(t, map[string]bool{"ritual-balanced": true, "grain-balanced": true}, seen)
}

func TestRouteTitle(t *testing.T) {
	assert.Equal(t, "4 Days - Balanced Pace Journey", suggest.RouteTitle(4, domain.PaceBalanced))
}

func TestNewSavedRoute(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	route := suggest.NewSavedRoute("5 Days - Slow Pace Journey", catalog[:2], now)

	_, err := uuid.Parse(route.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"sea-slow", "sea-deep"}, route.AtelierSlugs)
	assert.Equal(t, now, route.CreatedAt)

	other := suggest.NewSavedRoute("x", nil, now)
	assert.NotEqual(t, route.ID, other.ID)
	assert.Empty(t, other.AtelierSlugs)
}
