package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/atelier-korea/internal/domain"
	"github.com/dom/atelier-korea/internal/repository/memory"
	"github.com/dom/atelier-korea/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_IsolatesProfiles(t *testing.T) {
	repo := memory.NewBlobRepository()
	registry := store.NewRegistry(repo)
	ctx := context.Background()

	alice := registry.Get(ctx, "alice")
	bob := registry.Get(ctx, "bob")

	alice.ToggleSave(ctx, "andong-hanok")

	assert.True(t, alice.IsSaved("andong-hanok"))
	assert.False(t, bob.IsSaved("andong-hanok"))
	assert.Same(t, alice, registry.Get(ctx, "alice"))
	assert.Equal(t, 2, registry.Len())

	// Each profile persists under its own key
	_, err := repo.Load(ctx, store.Key("alice"))
	require.NoError(t, err)
	_, err = repo.Load(ctx, store.Key("bob"))
	assert.Error(t, err)
}

func TestRegistry_RehydratesFromRepository(t *testing.T) {
	repo := memory.NewBlobRepository()
	ctx := context.Background()

	store.NewRegistry(repo).Get(ctx, "alice").ToggleSave(ctx, "jeju-haenyeo")

	// A fresh registry, as after a restart
	restarted := store.NewRegistry(repo)
	assert.True(t, restarted.Get(ctx, "alice").IsSaved("jeju-haenyeo"))
}

func TestRegistry_OnCreate(t *testing.T) {
	registry := store.NewRegistry(memory.NewBlobRepository())
	ctx := context.Background()

	var created []string
	registry.OnCreate(func(profileID string, s *store.Store) {
		created = append(created, profileID)
		assert.Equal(t, store.Key(profileID), s.Key())
	})

	registry.Get(ctx, "alice")
	registry.Get(ctx, "alice")
	registry.Get(ctx, "bob")

	assert.Equal(t, []string{"alice", "bob"}, created)
}

func TestRegistry_Sweep(t *testing.T) {
	registry := store.NewRegistry(memory.NewBlobRepository())
	ctx := context.Background()

	var evicted []string
	registry.OnEvict(func(profileID string, s *store.Store) {
		evicted = append(evicted, profileID)
	})

	registry.Get(ctx, "alice").ToggleSave(ctx, "andong-hanok")
	_, release := registry.Acquire(ctx, "bob")

	future := time.Now().Add(time.Minute)
	assert.Equal(t, 1, registry.Sweep(future))
	assert.Equal(t, []string{"alice"}, evicted)
	assert.Equal(t, 1, registry.Len())

	// Stores still in use are never dropped
	assert.Equal(t, 0, registry.Sweep(future))

	release()
	release()
	assert.Equal(t, 1, registry.Sweep(future))
	assert.Equal(t, 0, registry.Len())

	// Recently used stores survive a sweep with an older cutoff
	registry.Get(ctx, "carol")
	assert.Equal(t, 0, registry.Sweep(time.Now().Add(-time.Minute)))

	// An evicted profile reloads from storage
	assert.True(t, registry.Get(ctx, "alice").IsSaved("andong-hanok"))
}

func TestRegistry_View(t *testing.T) {
	repo := memory.NewBlobRepository()
	registry := store.NewRegistry(repo)
	ctx := context.Background()

	assert.Equal(t, domain.EmptyCollectionState(), registry.View(ctx, "nobody"))
	assert.Equal(t, 0, registry.Len())

	store.NewRegistry(repo).Get(ctx, "alice").ToggleSave(ctx, "jeju-haenyeo")
	assert.True(t, registry.View(ctx, "alice").IsSaved("jeju-haenyeo"))
	assert.Equal(t, 0, registry.Len())

	// A loaded store is read in place
	registry.Get(ctx, "alice").ToggleSave(ctx, "icheon-ceramics")
	assert.Equal(t, []string{"jeju-haenyeo", "icheon-ceramics"}, registry.View(ctx, "alice").SavedAtelierSlugs)
}

func TestRegistry_RunEviction(t *testing.T) {
	registry := store.NewRegistry(memory.NewBlobRepository())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry.Get(ctx, "alice")
	go registry.RunEviction(ctx, time.Millisecond, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		return registry.Len() == 0
	}, time.Second, 10*time.Millisecond)
}
