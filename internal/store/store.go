package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dom/atelier-korea/internal/domain"
	"github.com/dom/atelier-korea/internal/repository"
	"go.uber.org/zap"
)

const persistTimeout = 5 * time.Second

// Observer receives a snapshot after every change to the store.
type Observer func(state domain.CollectionState)

// Store is one profile's saved ateliers, issued pieces and saved routes.
// Every change is written through to the blob repository before observers are notified.
// Persistence failures are logged and never returned to callers.
type Store struct {
	key         string
	repo        repository.BlobRepository
	logger      *zap.Logger
	onSaveError func(error)

	mu    sync.Mutex
	state domain.CollectionState
	saved map[string]struct{}

	obsMu     sync.RWMutex
	observers map[int]Observer
	nextObsID int
}

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithSaveErrorHook is called whenever writing state to the repository fails.
func WithSaveErrorHook(fn func(error)) Option {
	return func(s *Store) {
		s.onSaveError = fn
	}
}

// New creates a store persisted under key and rehydrates it. A missing, empty or
// unreadable blob leaves the store at the empty default.
func New(ctx context.Context, key string, repo repository.BlobRepository, opts ...Option) *Store {
	s := &Store{
		key:       key,
		repo:      repo,
		logger:    zap.NewNop(),
		state:     domain.EmptyCollectionState(),
		saved:     make(map[string]struct{}),
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.rehydrate(ctx)
	return s
}

func (s *Store) rehydrate(ctx context.Context) {
	data, err := s.repo.Load(ctx, s.key)
	if errors.Is(err, repository.ErrBlobNotFound) {
		return
	}
	if err != nil {
		s.logger.Error("failed to load collection state, starting empty",
			zap.String("key", s.key), zap.Error(err))
		return
	}

	state, err := Decode(data)
	if err != nil {
		s.logger.Warn("corrupt collection state, starting empty",
			zap.String("key", s.key), zap.Error(err))
		return
	}

	s.state = state
	for _, slug := range state.SavedAtelierSlugs {
		s.saved[slug] = struct{}{}
	}
}

// Key returns the storage key this store persists under.
func (s *Store) Key() string {
	return s.key
}

// ToggleSave removes slug from the saved set if present, otherwise adds it.
// It returns whether slug is saved afterwards.
func (s *Store) ToggleSave(ctx context.Context, slug string) bool {
	s.mu.Lock()
	_, isSaved := s.saved[slug]
	if isSaved {
		delete(s.saved, slug)
		kept := make([]string, 0, len(s.state.SavedAtelierSlugs))
		for _, existing := range s.state.SavedAtelierSlugs {
			if existing != slug {
				kept = append(kept, existing)
			}
		}
		s.state.SavedAtelierSlugs = kept
	} else {
		s.saved[slug] = struct{}{}
		s.state.SavedAtelierSlugs = append(s.state.SavedAtelierSlugs, slug)
	}
	snapshot := s.commitLocked(ctx)
	s.mu.Unlock()

	s.notify(snapshot)
	return !isSaved
}

func (s *Store) IsSaved(slug string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.saved[slug]
	return ok
}

// IssuePiece stores piece at the front of the issued list unless a piece was already
// issued for the same atelier, in which case nothing changes. It returns whether
// piece was stored.
func (s *Store) IssuePiece(ctx context.Context, piece domain.IssuedPiece) bool {
	s.mu.Lock()
	if s.hasPieceLocked(piece.AtelierSlug) {
		s.mu.Unlock()
		return false
	}
	pieces := make([]domain.IssuedPiece, 0, len(s.state.IssuedPieces)+1)
	pieces = append(pieces, piece)
	s.state.IssuedPieces = append(pieces, s.state.IssuedPieces...)
	snapshot := s.commitLocked(ctx)
	s.mu.Unlock()

	s.notify(snapshot)
	return true
}

func (s *Store) HasPiece(atelierSlug string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasPieceLocked(atelierSlug)
}

func (s *Store) hasPieceLocked(atelierSlug string) bool {
	for _, p := range s.state.IssuedPieces {
		if p.AtelierSlug == atelierSlug {
			return true
		}
	}
	return false
}

// Piece returns the piece issued for atelierSlug, if any.
func (s *Store) Piece(atelierSlug string) (domain.IssuedPiece, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.state.IssuedPieces {
		if p.AtelierSlug == atelierSlug {
			return p, true
		}
	}
	return domain.IssuedPiece{}, false
}

// SaveRoute appends route. Routes are never deduplicated.
func (s *Store) SaveRoute(ctx context.Context, route domain.SavedRoute) {
	route.AtelierSlugs = append([]string{}, route.AtelierSlugs...)

	s.mu.Lock()
	s.state.SavedRoutes = append(s.state.SavedRoutes, route)
	snapshot := s.commitLocked(ctx)
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *Store) SavedSlugs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.state.SavedAtelierSlugs...)
}

// IssuedPieces returns the issued pieces, newest first.
func (s *Store) IssuedPieces() []domain.IssuedPiece {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.IssuedPiece{}, s.state.IssuedPieces...)
}

func (s *Store) SavedRoutes() []domain.SavedRoute {
	return s.Snapshot().SavedRoutes
}

// Snapshot returns a deep copy of the whole state.
func (s *Store) Snapshot() domain.CollectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn to be called synchronously after every change.
// The returned function removes it.
func (s *Store) Subscribe(fn Observer) func() {
	s.obsMu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

// commitLocked persists the current state. The caller holds s.mu so writes reach
// the repository in mutation order.
func (s *Store) commitLocked(ctx context.Context) domain.CollectionState {
	snapshot := s.state.Clone()

	data, err := Encode(snapshot)
	if err != nil {
		s.saveFailed(err)
		return snapshot
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := s.repo.Save(saveCtx, s.key, data); err != nil {
		s.saveFailed(err)
	}
	return snapshot
}

func (s *Store) saveFailed(err error) {
	s.logger.Error("failed to persist collection state", zap.String("key", s.key), zap.Error(err))
	if s.onSaveError != nil {
		s.onSaveError(err)
	}
}

func (s *Store) notify(snapshot domain.CollectionState) {
	s.obsMu.RLock()
	observers := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.obsMu.RUnlock()

	for _, fn := range observers {
		fn(snapshot.Clone())
	}
}
