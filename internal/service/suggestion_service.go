package service

import (
	"context"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/dom/atelier-korea/internal/catalog"
	"github.com/dom/atelier-korea/internal/domain"
	"github.com/dom/atelier-korea/internal/metrics"
	"github.com/dom/atelier-korea/internal/pacing"
	"github.com/dom/atelier-korea/internal/suggest"
)

type SuggestionService struct {
	catalog *catalog.Catalog
	metrics *metrics.Collector
	delay   time.Duration

	// rand.Rand is not safe for concurrent use
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSuggestionService(cat *catalog.Catalog, collector *metrics.Collector, delay time.Duration, rng *rand.Rand) *SuggestionService {
	return &SuggestionService{
		catalog: cat,
		metrics: collector,
		delay:   delay,
		rng:     rng,
	}
}

type SuggestInput struct {
	Duration int
	Pace     domain.Pace
	Theme    domain.ThemeFilter
}

type Suggestion struct {
	Title    string           `json:"title"`
	Ateliers []domain.Atelier `json:"ateliers"`
}

// Suggest consults the archives: it waits the suggestion delay, then draws a route.
func (s *SuggestionService) Suggest(ctx context.Context, input SuggestInput) (*Suggestion, error) {
	if err := pacing.Delay(ctx, s.delay); err != nil {
		return nil, err
	}
	return s.Draw(input), nil
}

// Draw picks a route without waiting.
func (s *SuggestionService) Draw(input SuggestInput) *Suggestion {
	req := suggest.Request{
		Duration: input.Duration,
		Pace:     input.Pace,
		Theme:    input.Theme,
	}

	s.mu.Lock()
	picked := suggest.Suggest(s.catalog.Ateliers(), req, s.rng)
	s.mu.Unlock()

	s.metrics.Suggestions.WithLabelValues(strconv.Itoa(len(picked))).Inc()
	return &Suggestion{
		Title:    suggest.RouteTitle(input.Duration, input.Pace),
		Ateliers: picked,
	}
}

func (s *SuggestionService) Delay() time.Duration {
	return s.delay
}
