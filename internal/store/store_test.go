package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dom/atelier-korea/internal/domain"
	"github.com/dom/atelier-korea/internal/repository"
	"github.com/dom/atelier-korea/internal/repository/memory"
	"github.com/dom/atelier-korea/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingRepo fails every call, standing in for unavailable storage.
type failingRepo struct {
	saves int
}

func (r *failingRepo) Load(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("storage offline")
}

func (r *failingRepo) Save(ctx context.Context, key string, data []byte) error {
	r.saves++
	return errors.New("storage offline")
}

func newStore(t *testing.T) (*store.Store, repository.BlobRepository) {
	t.Helper()
	repo := memory.NewBlobRepository()
	return store.New(context.Background(), store.Key("profile-1"), repo), repo
}

func TestStore_ToggleSave(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	assert.False(t, s.IsSaved("andong-hanok"))

	assert.True(t, s.ToggleSave(ctx, "andong-hanok"))
	assert.True(t, s.IsSaved("andong-hanok"))

	assert.False(t, s.ToggleSave(ctx, "andong-hanok"))
	assert.False(t, s.IsSaved("andong-hanok"))
}

func TestStore_ToggleSave_TwiceRestoresMembership(t *testing.T) {
	slugs := []string{"a", "b", "c", ""}

	for _, preSaved := range []bool{false, true} {
		for _, slug := range slugs {
			s, _ := newStore(t)
			ctx := context.Background()
			if preSaved {
				s.ToggleSave(ctx, slug)
			}
			before := s.IsSaved(slug)

			s.ToggleSave(ctx, slug)
			assert.NotEqual(t, before, s.IsSaved(slug), "single toggle flips %q", slug)

			s.ToggleSave(ctx, slug)
			assert.Equal(t, before, s.IsSaved(slug), "double toggle restores %q", slug)
		}
	}
}

func TestStore_ToggleSave_KeepsInsertionOrder(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	s.ToggleSave(ctx, "a")
	s.ToggleSave(ctx, "b")
	s.ToggleSave(ctx, "c")
	s.ToggleSave(ctx, "b")

	assert.Equal(t, []string{"a", "c"}, s.SavedSlugs())
}

func TestStore_IssuePiece_FirstWins(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	first := domain.IssuedPiece{
		PieceID:       "p1",
		AtelierSlug:   "andong-hanok",
		ChoiceID:      "c1",
		IssuedAt:      time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		GeneratedLine: "The tide knows no haste.",
	}
	second := domain.IssuedPiece{
		PieceID:       "p1",
		AtelierSlug:   "andong-hanok",
		ChoiceID:      "c2",
		IssuedAt:      time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC),
		GeneratedLine: "different",
	}

	assert.False(t, s.HasPiece("andong-hanok"))
	assert.True(t, s.IssuePiece(ctx, first))
	assert.False(t, s.IssuePiece(ctx, second))
	assert.False(t, s.IssuePiece(ctx, second))

	assert.True(t, s.HasPiece("andong-hanok"))

	pieces := s.IssuedPieces()
	require.Len(t, pieces, 1)
	assert.Equal(t, first, pieces[0])
	assert.Equal(t, "c1", pieces[0].ChoiceID)

	got, ok := s.Piece("andong-hanok")
	require.True(t, ok)
	assert.Equal(t, first, got)
}

func TestStore_IssuePiece_NewestFirst(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	s.IssuePiece(ctx, domain.IssuedPiece{PieceID: "p1", AtelierSlug: "a", ChoiceID: "c1"})
	s.IssuePiece(ctx, domain.IssuedPiece{PieceID: "p2", AtelierSlug: "b", ChoiceID: "c1"})
	s.IssuePiece(ctx, domain.IssuedPiece{PieceID: "p3", AtelierSlug: "c", ChoiceID: "c1"})

	pieces := s.IssuedPieces()
	require.Len(t, pieces, 3)
	assert.Equal(t, "c", pieces[0].AtelierSlug)
	assert.Equal(t, "b", pieces[1].AtelierSlug)
	assert.Equal(t, "a", pieces[2].AtelierSlug)
	assert.False(t, s.HasPiece("d"))
}

func TestStore_SaveRoute_AppendsInOrder(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	r1 := domain.SavedRoute{ID: "r1", Title: "4 Days - Slow Pace Journey", AtelierSlugs: []string{"a"}}
	r2 := domain.SavedRoute{ID: "r2", Title: "6 Days - Deep Pace Journey", AtelierSlugs: []string{"b", "c"}}

	s.SaveRoute(ctx, r1)
	s.SaveRoute(ctx, r2)
	s.SaveRoute(ctx, r1)

	routes := s.SavedRoutes()
	require.Len(t, routes, 3)
	assert.Equal(t, "r1", routes[0].ID)
	assert.Equal(t, "r2", routes[1].ID)
	assert.Equal(t, "r1", routes[2].ID)
}

func TestStore_SaveRoute_CopiesSlugs(t *testing.T) {
	s, _ := newStore(t)
	slugs := []string{"a", "b"}

	s.SaveRoute(context.Background(), domain.SavedRoute{ID: "r1", AtelierSlugs: slugs})
	slugs[0] = "mutated"

	assert.Equal(t, []string{"a", "b"}, s.SavedRoutes()[0].AtelierSlugs)
}

func TestStore_PersistenceRoundTrip(t *testing.T) {
	repo := memory.NewBlobRepository()
	ctx := context.Background()
	key := store.Key("profile-1")

	s := store.New(ctx, key, repo)
	s.ToggleSave(ctx, "andong-hanok")
	s.ToggleSave(ctx, "jeju-haenyeo")
	s.IssuePiece(ctx, domain.IssuedPiece{
		PieceID:       "piece-quiet-courtyard",
		AtelierSlug:   "andong-hanok",
		ChoiceID:      "c1",
		IssuedAt:      time.Date(2025, 5, 4, 10, 30, 0, 0, time.UTC),
		GeneratedLine: "Water remembers every bend.",
	})
	s.SaveRoute(ctx, domain.SavedRoute{
		ID:           "route-1",
		Title:        "5 Days - Slow Pace Journey",
		AtelierSlugs: []string{"andong-hanok", "damyang-bamboo"},
		CreatedAt:    time.Date(2025, 5, 4, 11, 0, 0, 0, time.UTC),
	})
	want := s.Snapshot()

	// Discard the in-memory store and rehydrate from the repository
	rehydrated := store.New(ctx, key, repo)

	assert.Equal(t, want, rehydrated.Snapshot())
	assert.True(t, rehydrated.IsSaved("jeju-haenyeo"))
	assert.True(t, rehydrated.HasPiece("andong-hanok"))
}

func TestStore_RehydrateFallsBackToEmpty(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
	}{
		{name: "missing"},
		{name: "empty", blob: []byte("")},
		{name: "corrupt", blob: []byte("{not json")},
		{name: "wrong shape", blob: []byte(`{"state":{"savedAtelierSlugs":"oops"}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := memory.NewBlobRepository()
			ctx := context.Background()
			if tt.blob != nil {
				require.NoError(t, repo.Save(ctx, store.Key("p"), tt.blob))
			}

			s := store.New(ctx, store.Key("p"), repo)
			assert.Equal(t, domain.EmptyCollectionState(), s.Snapshot())
		})
	}
}

func TestStore_UnavailableStorage(t *testing.T) {
	repo := &failingRepo{}
	var hookErrors int

	s := store.New(context.Background(), store.Key("p"), repo,
		store.WithSaveErrorHook(func(error) { hookErrors++ }))

	assert.Equal(t, domain.EmptyCollectionState(), s.Snapshot())

	// Mutations still apply in memory
	assert.True(t, s.ToggleSave(context.Background(), "a"))
	assert.True(t, s.IsSaved("a"))
	assert.Equal(t, 1, repo.saves)
	assert.Equal(t, 1, hookErrors)
}

func TestStore_Observers(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	var seen []domain.CollectionState
	unsubscribe := s.Subscribe(func(state domain.CollectionState) {
		seen = append(seen, state)
	})

	s.ToggleSave(ctx, "a")
	s.IssuePiece(ctx, domain.IssuedPiece{AtelierSlug: "a", ChoiceID: "c1"})
	s.IssuePiece(ctx, domain.IssuedPiece{AtelierSlug: "a", ChoiceID: "c2"}) // no-op, no notification
	s.SaveRoute(ctx, domain.SavedRoute{ID: "r1"})

	require.Len(t, seen, 3)
	assert.Equal(t, []string{"a"}, seen[0].SavedAtelierSlugs)
	assert.Len(t, seen[1].IssuedPieces, 1)
	assert.Len(t, seen[2].SavedRoutes, 1)

	unsubscribe()
	s.ToggleSave(ctx, "a")
	assert.Len(t, seen, 3)
}

func TestStore_ObserverCanReadStore(t *testing.T) {
	s, _ := newStore(t)

	var savedInObserver bool
	s.Subscribe(func(domain.CollectionState) {
		savedInObserver = s.IsSaved("a")
	})

	s.ToggleSave(context.Background(), "a")
	assert.True(t, savedInObserver)
}
