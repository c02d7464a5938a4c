package store

import (
	"context"
	"sync"
	"time"

	"github.com/dom/atelier-korea/internal/domain"
	"github.com/dom/atelier-korea/internal/repository"
)

// Key returns the storage key for a profile's collection state.
func Key(profileID string) string {
	return Namespace + ":" + profileID
}

type entry struct {
	store    *Store
	refs     int
	lastUsed time.Time
}

// Registry hands out one Store per profile, creating and rehydrating it on first use.
// Stores nobody holds are dropped by Sweep once idle; state lives on in the repository.
type Registry struct {
	repo    repository.BlobRepository
	opts    []Option
	created []func(profileID string, s *Store)
	evicted []func(profileID string, s *Store)

	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

func NewRegistry(repo repository.BlobRepository, opts ...Option) *Registry {
	return &Registry{
		repo:    repo,
		opts:    opts,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// OnCreate registers fn to run once for every store the registry creates,
// before the store is handed to any caller.
func (r *Registry) OnCreate(fn func(profileID string, s *Store)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, fn)
}

// OnEvict registers fn to run for every store Sweep drops.
func (r *Registry) OnEvict(fn func(profileID string, s *Store)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evicted = append(r.evicted, fn)
}

// Get returns the profile's store, loading it if needed, and marks it used.
func (r *Registry) Get(ctx context.Context, profileID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entryLocked(ctx, profileID).store
}

// Acquire returns the profile's store and pins it until release is called.
// A pinned store is never evicted. release may be called more than once.
func (r *Registry) Acquire(ctx context.Context, profileID string) (*Store, func()) {
	r.mu.Lock()
	e := r.entryLocked(ctx, profileID)
	e.refs++
	r.mu.Unlock()

	var once sync.Once
	return e.store, func() {
		once.Do(func() {
			r.mu.Lock()
			e.refs--
			e.lastUsed = r.now()
			r.mu.Unlock()
		})
	}
}

func (r *Registry) entryLocked(ctx context.Context, profileID string) *entry {
	if e, ok := r.entries[profileID]; ok {
		e.lastUsed = r.now()
		return e
	}

	s := New(ctx, Key(profileID), r.repo, r.opts...)
	for _, fn := range r.created {
		fn(profileID, s)
	}
	e := &entry{store: s, lastUsed: r.now()}
	r.entries[profileID] = e
	return e
}

// View returns the profile's current state. A profile that is not loaded is read
// straight from the repository and not cached.
func (r *Registry) View(ctx context.Context, profileID string) domain.CollectionState {
	r.mu.Lock()
	e, ok := r.entries[profileID]
	if ok {
		e.lastUsed = r.now()
	}
	r.mu.Unlock()

	if ok {
		return e.store.Snapshot()
	}
	return New(ctx, Key(profileID), r.repo, r.opts...).Snapshot()
}

// Sweep drops every unpinned store last used before cutoff and returns how many went.
func (r *Registry) Sweep(cutoff time.Time) int {
	r.mu.Lock()
	var dropped []string
	var stores []*Store
	for id, e := range r.entries {
		if e.refs == 0 && e.lastUsed.Before(cutoff) {
			delete(r.entries, id)
			dropped = append(dropped, id)
			stores = append(stores, e.store)
		}
	}
	hooks := r.evicted
	r.mu.Unlock()

	for i, id := range dropped {
		for _, fn := range hooks {
			fn(id, stores[i])
		}
	}
	return len(dropped)
}

// RunEviction sweeps stores idle for longer than idle every interval until ctx is done.
func (r *Registry) RunEviction(ctx context.Context, idle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(r.now().Add(-idle))
		}
	}
}

// Len returns the number of profiles currently loaded.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
