package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/dom/atelier-korea/internal/domain"
	"github.com/dom/atelier-korea/internal/metrics"
	"github.com/dom/atelier-korea/internal/service"
	"github.com/dom/atelier-korea/internal/store"
	"go.uber.org/zap"
)

// PieceCrafter prepares and issues pieces for a profile.
type PieceCrafter interface {
	Prepare(input service.CraftPieceInput) (domain.IssuedPiece, error)
	Issue(ctx context.Context, profileID string, piece domain.IssuedPiece) *service.CraftResult
	Delay() time.Duration
}

type RouteSuggester interface {
	Draw(input service.SuggestInput) *service.Suggestion
	Delay() time.Duration
}

type CollectionToggler interface {
	ToggleSave(ctx context.Context, profileID, slug string) (bool, error)
}

// Hub tracks connected clients by profile and pushes STATE_SYNC to all of a
// profile's clients whenever that profile's collection store changes.
type Hub struct {
	profiles   map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	mu         sync.RWMutex

	registry    *store.Registry
	collection  CollectionToggler
	pieces      PieceCrafter
	suggestions RouteSuggester
	metrics     *metrics.Collector
	logger      *zap.Logger
}

func NewHub(registry *store.Registry, collection CollectionToggler, pieces PieceCrafter, suggestions RouteSuggester, collector *metrics.Collector, logger *zap.Logger) *Hub {
	h := &Hub{
		profiles:    make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		registry:    registry,
		collection:  collection,
		pieces:      pieces,
		suggestions: suggestions,
		metrics:     collector,
		logger:      logger,
	}

	registry.OnCreate(func(profileID string, s *store.Store) {
		s.Subscribe(func(state domain.CollectionState) {
			h.Broadcast(profileID, state)
		})
	})

	return h
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for _, clients := range h.profiles {
				for client := range clients {
					client.Close()
					h.metrics.SocketClients.Dec()
				}
			}
			h.profiles = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			st, release := h.registry.Acquire(context.Background(), client.profileID)
			client.hold(release)

			h.mu.Lock()
			if !h.stopped {
				clients, ok := h.profiles[client.profileID]
				if !ok {
					clients = make(map[*Client]bool)
					h.profiles[client.profileID] = clients
				}
				clients[client] = true
				h.metrics.SocketClients.Inc()
			}
			h.mu.Unlock()

			// Every new connection starts from the current state
			client.SendState(st.Snapshot())

		case client := <-h.unregister:
			h.mu.Lock()
			if !h.stopped {
				if clients, ok := h.profiles[client.profileID]; ok && clients[client] {
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.profiles, client.profileID)
					}
					client.Close()
					h.metrics.SocketClients.Dec()
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop gracefully shuts down the hub and closes every client.
// It blocks until Run has returned.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

// Broadcast sends state to every client of profileID.
func (h *Hub) Broadcast(profileID string, state domain.CollectionState) {
	msg, err := NewMessage(MessageTypeStateSync, StateSyncPayload{Collection: state})
	if err != nil {
		h.logger.Error("failed to build state sync", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.profiles[profileID] {
		client.Send(msg)
	}
}

// ClientCount returns the number of connected clients for profileID.
func (h *Hub) ClientCount(profileID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.profiles[profileID])
}

// Register adds client to its profile. Once the hub has stopped the client is closed instead.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister safely unregisters a client, handling the case where the hub may be stopped.
func (h *Hub) Unregister(client *Client) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()

	if stopped {
		return
	}

	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
