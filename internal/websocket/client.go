package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dom/atelier-korea/internal/domain"
	"github.com/dom/atelier-korea/internal/pacing"
	"github.com/dom/atelier-korea/internal/service"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	maxSuggestDays = 30
)

type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	profileID string
	logger    *zap.Logger

	mu      sync.Mutex
	closed  bool
	craft   *pacing.Timer
	consult *pacing.Timer
	release func()
}

func NewClient(hub *Hub, conn *websocket.Conn, profileID string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, 256),
		profileID: profileID,
		logger:    hub.logger.With(zap.String("profileID", profileID)),
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket error", zap.Error(err))
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("INVALID_MESSAGE", "Message is not valid JSON")
			continue
		}

		c.handleMessage(&msg)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *Message) {
	switch msg.Type {
	case MessageTypeSyncState:
		c.SendState(c.hub.registry.Get(context.Background(), c.profileID).Snapshot())

	case MessageTypeToggleSave:
		var payload ToggleSavePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid toggle save payload")
			return
		}
		if _, err := c.hub.collection.ToggleSave(context.Background(), c.profileID, payload.AtelierSlug); err != nil {
			c.sendError("ATELIER_NOT_FOUND", "Atelier does not exist")
		}

	case MessageTypeCraftPiece:
		var payload CraftPiecePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid craft piece payload")
			return
		}
		c.startCraft(payload)

	case MessageTypeCancelCraft:
		c.mu.Lock()
		if c.craft != nil {
			c.craft.Stop()
			c.craft = nil
		}
		c.mu.Unlock()

	case MessageTypeSuggestRoute:
		var payload SuggestRoutePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid suggest route payload")
			return
		}
		c.startSuggestion(payload)

	default:
		c.sendError("UNKNOWN_MESSAGE", "Unknown message type "+string(msg.Type))
	}
}

// startCraft issues the piece once the crafting delay has passed. Closing the
// connection or sending CANCEL_CRAFT before then issues nothing.
func (c *Client) startCraft(payload CraftPiecePayload) {
	piece, err := c.hub.pieces.Prepare(service.CraftPieceInput{
		AtelierSlug: payload.AtelierSlug,
		ChoiceID:    payload.ChoiceID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAtelierNotFound):
			c.sendError("ATELIER_NOT_FOUND", "Atelier does not exist")
		case errors.Is(err, domain.ErrChoiceNotFound):
			c.sendError("CHOICE_NOT_FOUND", "Choice does not exist for this atelier")
		default:
			c.sendError("CRAFT_FAILED", "Could not craft piece")
		}
		return
	}

	delay := c.hub.pieces.Delay()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.craft != nil {
		c.craft.Stop()
	}

	c.sendLocked(MessageTypeCraftingStarted, CraftingStartedPayload{
		AtelierSlug: piece.AtelierSlug,
		DelayMs:     delay.Milliseconds(),
	})

	c.craft = pacing.AfterFunc(delay, func() {
		piece.IssuedAt = time.Now().UTC()
		result := c.hub.pieces.Issue(context.Background(), c.profileID, piece)
		c.sendMessage(MessageTypePieceIssued, PieceIssuedPayload{
			Piece:  result.Piece,
			Issued: result.Issued,
		})
	})
}

func (c *Client) startSuggestion(payload SuggestRoutePayload) {
	pace, err := domain.ParsePace(payload.Pace)
	if err != nil {
		c.sendError("INVALID_PACE", err.Error())
		return
	}
	theme, err := domain.ParseThemeFilter(payload.Theme)
	if err != nil {
		c.sendError("INVALID_THEME", err.Error())
		return
	}
	if payload.Duration < 1 || payload.Duration > maxSuggestDays {
		c.sendError("INVALID_DURATION", "Duration must be between 1 and 30 days")
		return
	}

	input := service.SuggestInput{Duration: payload.Duration, Pace: pace, Theme: theme}
	delay := c.hub.suggestions.Delay()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.consult != nil {
		c.consult.Stop()
	}

	c.sendLocked(MessageTypeConsulting, ConsultingPayload{DelayMs: delay.Milliseconds()})

	c.consult = pacing.AfterFunc(delay, func() {
		suggestion := c.hub.suggestions.Draw(input)
		c.sendMessage(MessageTypeRouteSuggested, RouteSuggestedPayload{
			Title:    suggestion.Title,
			Ateliers: suggestion.Ateliers,
		})
	})
}

// SendState pushes a STATE_SYNC with state to this client only.
func (c *Client) SendState(state domain.CollectionState) {
	c.sendMessage(MessageTypeStateSync, StateSyncPayload{Collection: state})
}

func (c *Client) sendError(code, message string) {
	c.sendMessage(MessageTypeError, ErrorPayload{
		Code:    code,
		Message: message,
	})
}

func (c *Client) sendMessage(msgType MessageType, payload interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendLocked(msgType, payload)
}

func (c *Client) sendLocked(msgType MessageType, payload interface{}) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		c.logger.Error("failed to build message", zap.String("type", string(msgType)), zap.Error(err))
		return
	}
	c.sendRawLocked(msg)
}

// Send queues msg. Slow clients drop messages rather than stall the sender.
func (c *Client) Send(msg *Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendRawLocked(msg)
}

func (c *Client) sendRawLocked(msg *Message) {
	if c.closed {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to marshal message", zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn("client send buffer full, dropping message", zap.String("type", string(msg.Type)))
	}
}

// hold pins the profile's store for as long as the client is connected.
func (c *Client) hold(release func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		release()
		return
	}
	c.release = release
	c.mu.Unlock()
}

// Close stops pending crafting and suggestions, closes the send channel and
// unpins the profile's store.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.craft != nil {
		c.craft.Stop()
	}
	if c.consult != nil {
		c.consult.Stop()
	}
	close(c.send)
	release := c.release
	c.release = nil
	c.mu.Unlock()

	if release != nil {
		release()
	}
}
