package websocket

import (
	"encoding/json"
	"time"

	"github.com/dom/atelier-korea/internal/domain"
)

type MessageType string

const (
	// Client to Server
	MessageTypeSyncState    MessageType = "SYNC_STATE"
	MessageTypeToggleSave   MessageType = "TOGGLE_SAVE"
	MessageTypeCraftPiece   MessageType = "CRAFT_PIECE"
	MessageTypeCancelCraft  MessageType = "CANCEL_CRAFT"
	MessageTypeSuggestRoute MessageType = "SUGGEST_ROUTE"

	// Server to Client
	MessageTypeStateSync       MessageType = "STATE_SYNC"
	MessageTypeCraftingStarted MessageType = "CRAFTING_STARTED"
	MessageTypePieceIssued     MessageType = "PIECE_ISSUED"
	MessageTypeConsulting      MessageType = "CONSULTING_ARCHIVES"
	MessageTypeRouteSuggested  MessageType = "ROUTE_SUGGESTED"
	MessageTypeError           MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Client to Server payloads

type ToggleSavePayload struct {
	AtelierSlug string `json:"atelierSlug"`
}

type CraftPiecePayload struct {
	AtelierSlug string `json:"atelierSlug"`
	ChoiceID    string `json:"choiceId"`
}

type SuggestRoutePayload struct {
	Duration int    `json:"duration"`
	Pace     string `json:"pace"`
	Theme    string `json:"theme"`
}

// Server to Client payloads

type StateSyncPayload struct {
	Collection domain.CollectionState `json:"collection"`
}

type CraftingStartedPayload struct {
	AtelierSlug string `json:"atelierSlug"`
	DelayMs     int64  `json:"delayMs"`
}

type PieceIssuedPayload struct {
	Piece  domain.IssuedPiece `json:"piece"`
	Issued bool               `json:"issued"`
}

type ConsultingPayload struct {
	DelayMs int64 `json:"delayMs"`
}

type RouteSuggestedPayload struct {
	Title    string           `json:"title"`
	Ateliers []domain.Atelier `json:"ateliers"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
