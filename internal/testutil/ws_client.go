package testutil

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dom/atelier-korea/internal/websocket"
	gorillaWS "github.com/gorilla/websocket"
)

// WSClient is a test WebSocket client
type WSClient struct {
	t        *testing.T
	conn     *gorillaWS.Conn
	messages chan *websocket.Message
	errors   chan error
	done     chan struct{}
	mu       sync.Mutex
}

// NewWSClient creates a new WebSocket test client
func NewWSClient(t *testing.T, url string) *WSClient {
	t.Helper()

	dialer := gorillaWS.DefaultDialer
	dialer.HandshakeTimeout = 5 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect to websocket: %v", err)
	}

	client := &WSClient{
		t:        t,
		conn:     conn,
		messages: make(chan *websocket.Message, 100),
		errors:   make(chan error, 10),
		done:     make(chan struct{}),
	}

	go client.readPump()

	t.Cleanup(func() {
		client.Close()
	})

	return client
}

// readPump reads messages from the WebSocket connection
func (c *WSClient) readPump() {
	defer close(c.messages)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			case c.errors <- err:
			}
			return
		}

		var msg websocket.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.errors <- err
			continue
		}

		select {
		case c.messages <- &msg:
		case <-c.done:
			return
		}
	}
}

// Close closes the WebSocket connection gracefully
func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return
	default:
		close(c.done)
		c.conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""))
		c.conn.Close()
	}
}

// Send writes a message of msgType with payload to the server
func (c *WSClient) Send(msgType websocket.MessageType, payload interface{}) {
	c.t.Helper()

	msg, err := websocket.NewMessage(msgType, payload)
	if err != nil {
		c.t.Fatalf("failed to build message: %v", err)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		c.t.Fatalf("failed to marshal message: %v", err)
	}

	c.mu.Lock()
	err = c.conn.WriteMessage(gorillaWS.TextMessage, data)
	c.mu.Unlock()
	if err != nil {
		c.t.Fatalf("failed to send message: %v", err)
	}
}

func (c *WSClient) SyncState() {
	c.Send(websocket.MessageTypeSyncState, struct{}{})
}

func (c *WSClient) ToggleSave(atelierSlug string) {
	c.Send(websocket.MessageTypeToggleSave, websocket.ToggleSavePayload{AtelierSlug: atelierSlug})
}

func (c *WSClient) CraftPiece(atelierSlug, choiceID string) {
	c.Send(websocket.MessageTypeCraftPiece, websocket.CraftPiecePayload{AtelierSlug: atelierSlug, ChoiceID: choiceID})
}

func (c *WSClient) CancelCraft() {
	c.Send(websocket.MessageTypeCancelCraft, struct{}{})
}

func (c *WSClient) SuggestRoute(duration int, pace, theme string) {
	c.Send(websocket.MessageTypeSuggestRoute, websocket.SuggestRoutePayload{Duration: duration, Pace: pace, Theme: theme})
}

// ExpectMessage waits for a message of the specified type, skipping others
func (c *WSClient) ExpectMessage(msgType websocket.MessageType, timeout time.Duration) *websocket.Message {
	c.t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case msg := <-c.messages:
			if msg == nil {
				c.t.Fatalf("connection closed while waiting for %s", msgType)
			}
			if msg.Type == msgType {
				return msg
			}
		case err := <-c.errors:
			c.t.Fatalf("error while waiting for %s: %v", msgType, err)
		case <-deadline:
			c.t.Fatalf("timeout waiting for message type %s", msgType)
		}
	}
}

func (c *WSClient) decode(msgType websocket.MessageType, timeout time.Duration, v interface{}) {
	c.t.Helper()

	msg := c.ExpectMessage(msgType, timeout)
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		c.t.Fatalf("failed to decode %s payload: %v", msgType, err)
	}
}

// ExpectStateSync waits for and decodes a STATE_SYNC message
func (c *WSClient) ExpectStateSync(timeout time.Duration) *websocket.StateSyncPayload {
	c.t.Helper()
	var payload websocket.StateSyncPayload
	c.decode(websocket.MessageTypeStateSync, timeout, &payload)
	return &payload
}

// ExpectPieceIssued waits for and decodes a PIECE_ISSUED message
func (c *WSClient) ExpectPieceIssued(timeout time.Duration) *websocket.PieceIssuedPayload {
	c.t.Helper()
	var payload websocket.PieceIssuedPayload
	c.decode(websocket.MessageTypePieceIssued, timeout, &payload)
	return &payload
}

// ExpectRouteSuggested waits for and decodes a ROUTE_SUGGESTED message
func (c *WSClient) ExpectRouteSuggested(timeout time.Duration) *websocket.RouteSuggestedPayload {
	c.t.Helper()
	var payload websocket.RouteSuggestedPayload
	c.decode(websocket.MessageTypeRouteSuggested, timeout, &payload)
	return &payload
}

// ExpectErrorWithCode waits for an ERROR with a specific code
func (c *WSClient) ExpectErrorWithCode(code string, timeout time.Duration) *websocket.ErrorPayload {
	c.t.Helper()

	var payload websocket.ErrorPayload
	c.decode(websocket.MessageTypeError, timeout, &payload)
	if payload.Code != code {
		c.t.Fatalf("expected error code %s, got %s: %s", code, payload.Code, payload.Message)
	}
	return &payload
}

// ExpectNoMessage verifies no message of msgType arrives within timeout
func (c *WSClient) ExpectNoMessage(msgType websocket.MessageType, timeout time.Duration) {
	c.t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case msg := <-c.messages:
			if msg != nil && msg.Type == msgType {
				c.t.Fatalf("unexpected message received: %s", msg.Type)
			}
			if msg == nil {
				return
			}
		case <-deadline:
			return
		}
	}
}

// DrainMessages waits for the channel to settle, then discards everything buffered.
func (c *WSClient) DrainMessages() {
	deadline := time.After(100 * time.Millisecond)
	for {
		select {
		case msg := <-c.messages:
			if msg == nil {
				return
			}
			deadline = time.After(50 * time.Millisecond)
		case <-deadline:
			return
		case <-c.done:
			return
		}
	}
}
