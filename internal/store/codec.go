package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dom/atelier-korea/internal/domain"
)

// Namespace is the storage key prefix for collection state.
const Namespace = "atelier-korea-storage"

// formatVersion is written into every blob. Blobs of any version are read the same way.
const formatVersion = 0

// envelope matches the blob the browser build keeps in localStorage,
// so exported browser state can be loaded as-is.
type envelope struct {
	State   *domain.CollectionState `json:"state"`
	Version int                     `json:"version"`
}

// Encode serializes state into the persisted blob format.
func Encode(state domain.CollectionState) ([]byte, error) {
	state = normalize(state)
	return json.Marshal(envelope{State: &state, Version: formatVersion})
}

// Decode parses a persisted blob. Empty input yields the empty state. Unknown fields
// are ignored and a bare state object without the envelope is accepted too.
// Blobs written elsewhere are read leniently: a list entry that cannot be decoded
// is dropped on its own and unreadable timestamps become the zero time, so one bad
// field never costs the rest of the collection.
func Decode(data []byte) (domain.CollectionState, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.EmptyCollectionState(), nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.EmptyCollectionState(), fmt.Errorf("decode collection state: %w", err)
	}

	body := data
	if inner, ok := raw["state"]; ok {
		body = inner
	}

	var stored storedState
	if err := json.Unmarshal(body, &stored); err != nil {
		return domain.EmptyCollectionState(), fmt.Errorf("decode collection state: %w", err)
	}

	var state domain.CollectionState
	for _, item := range stored.SavedAtelierSlugs {
		var slug string
		if json.Unmarshal(item, &slug) == nil && slug != "" {
			state.SavedAtelierSlugs = append(state.SavedAtelierSlugs, slug)
		}
	}
	for _, item := range stored.IssuedPieces {
		var p storedPiece
		if json.Unmarshal(item, &p) == nil && p.AtelierSlug != "" {
			p.IssuedPiece.IssuedAt = p.IssuedAt.Time
			state.IssuedPieces = append(state.IssuedPieces, p.IssuedPiece)
		}
	}
	for _, item := range stored.SavedRoutes {
		var r storedRoute
		if json.Unmarshal(item, &r) == nil {
			r.SavedRoute.CreatedAt = r.CreatedAt.Time
			state.SavedRoutes = append(state.SavedRoutes, r.SavedRoute)
		}
	}
	return normalize(state), nil
}

type storedState struct {
	SavedAtelierSlugs []json.RawMessage `json:"savedAtelierSlugs"`
	IssuedPieces      []json.RawMessage `json:"issuedPieces"`
	SavedRoutes       []json.RawMessage `json:"savedRoutes"`
}

type storedPiece struct {
	domain.IssuedPiece
	IssuedAt lenientTime `json:"issuedAt"`
}

type storedRoute struct {
	domain.SavedRoute
	CreatedAt lenientTime `json:"createdAt"`
}

// lenientTime reads RFC 3339 strings and JavaScript millisecond timestamps.
// Anything else decodes to the zero time without an error.
type lenientTime struct {
	time.Time
}

func (t *lenientTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
			t.Time = parsed
		}
		return nil
	}

	var millis float64
	if err := json.Unmarshal(data, &millis); err == nil {
		t.Time = time.UnixMilli(int64(millis)).UTC()
	}
	return nil
}

// normalize restores the store invariants on data that did not come from the store
// itself: nil lists become empty, saved slugs form a set, and only the first
// issued piece per atelier is kept.
func normalize(state domain.CollectionState) domain.CollectionState {
	out := domain.EmptyCollectionState()

	seen := make(map[string]bool, len(state.SavedAtelierSlugs))
	for _, slug := range state.SavedAtelierSlugs {
		if seen[slug] {
			continue
		}
		seen[slug] = true
		out.SavedAtelierSlugs = append(out.SavedAtelierSlugs, slug)
	}

	// issuedPieces is newest first, so the first issuance for a slug is the last one in the list
	issued := make(map[string]int, len(state.IssuedPieces))
	for i, p := range state.IssuedPieces {
		issued[p.AtelierSlug] = i
	}
	for i, p := range state.IssuedPieces {
		if issued[p.AtelierSlug] == i {
			out.IssuedPieces = append(out.IssuedPieces, p)
		}
	}

	for _, r := range state.SavedRoutes {
		if r.AtelierSlugs == nil {
			r.AtelierSlugs = []string{}
		}
		out.SavedRoutes = append(out.SavedRoutes, r)
	}
	return out.Clone()
}
