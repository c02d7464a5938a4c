package suggest

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dom/atelier-korea/internal/domain"
	"github.com/google/uuid"
)

// LongTripDays is the trip length from which two ateliers are suggested instead of one.
const LongTripDays = 5

// Request is what the visitor picks in the route builder.
type Request struct {
	Duration int // days
	Pace     domain.Pace
	Theme    domain.ThemeFilter
}

// Suggest narrows ateliers by theme (strictly) and pace (only if something matches),
// then draws up to Count(req.Duration) of them at random using rng.
// The result may be empty: a theme with no ateliers is never relaxed.
func Suggest(ateliers []domain.Atelier, req Request, rng *rand.Rand) []domain.Atelier {
	candidates := filterTheme(ateliers, req.Theme)

	if paced := filterPace(candidates, req.Pace); len(paced) > 0 {
		candidates = paced
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	n := Count(req.Duration)
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n]
}

// Count is how many ateliers a trip of the given length gets.
func Count(duration int) int {
	if duration >= LongTripDays {
		return 2
	}
	return 1
}

// filterTheme always returns a fresh slice so shuffling never touches the catalog.
func filterTheme(ateliers []domain.Atelier, filter domain.ThemeFilter) []domain.Atelier {
	theme, ok := filter.Theme()
	out := make([]domain.Atelier, 0, len(ateliers))
	for _, a := range ateliers {
		if !ok || a.CollectionID == theme {
			out = append(out, a)
		}
	}
	return out
}

func filterPace(ateliers []domain.Atelier, pace domain.Pace) []domain.Atelier {
	var out []domain.Atelier
	for _, a := range ateliers {
		if a.PaceTag == pace {
			out = append(out, a)
		}
	}
	return out
}

// RouteTitle names a suggested route, e.g. "4 Days - Balanced Pace Journey".
func RouteTitle(duration int, pace domain.Pace) string {
	return fmt.Sprintf("%d Days - %s Pace Journey", duration, pace)
}

// NewSavedRoute builds a route record with a fresh id, ready for the store.
func NewSavedRoute(title string, ateliers []domain.Atelier, now time.Time) domain.SavedRoute {
	slugs := make([]string, len(ateliers))
	for i, a := range ateliers {
		slugs[i] = a.Slug
	}
	return domain.SavedRoute{
		ID:           uuid.NewString(),
		Title:        title,
		AtelierSlugs: slugs,
		CreatedAt:    now.UTC(),
	}
}

// NewRand returns a random source seeded from the runtime's entropy.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
