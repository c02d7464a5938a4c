package domain

import "time"

// IssuedPiece is the persisted result of answering an atelier's piece
type IssuedPiece struct {
	PieceID       string    `json:"pieceId"`
	AtelierSlug   string    `json:"atelierSlug"`
	ChoiceID      string    `json:"choiceId"`
	IssuedAt      time.Time `json:"issuedAt"`
	GeneratedLine string    `json:"generatedLine"`
}

// SavedRoute is an ordered list of ateliers kept by the visitor
type SavedRoute struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	AtelierSlugs []string  `json:"atelierSlugs"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CollectionState is everything a single profile has saved
type CollectionState struct {
	SavedAtelierSlugs []string      `json:"savedAtelierSlugs"`
	IssuedPieces      []IssuedPiece `json:"issuedPieces"`
	SavedRoutes       []SavedRoute  `json:"savedRoutes"`
}

// EmptyCollectionState returns the state of a profile that has never saved anything
func EmptyCollectionState() CollectionState {
	return CollectionState{
		SavedAtelierSlugs: []string{},
		IssuedPieces:      []IssuedPiece{},
		SavedRoutes:       []SavedRoute{},
	}
}

// Clone returns a deep copy so callers can't alias store internals
func (s CollectionState) Clone() CollectionState {
	out := CollectionState{
		SavedAtelierSlugs: append([]string{}, s.SavedAtelierSlugs...),
		IssuedPieces:      append([]IssuedPiece{}, s.IssuedPieces...),
		SavedRoutes:       make([]SavedRoute, len(s.SavedRoutes)),
	}
	for i, r := range s.SavedRoutes {
		r.AtelierSlugs = append([]string{}, r.AtelierSlugs...)
		out.SavedRoutes[i] = r
	}
	return out
}

// IsSaved reports whether slug is among the saved ateliers
func (s CollectionState) IsSaved(slug string) bool {
	for _, saved := range s.SavedAtelierSlugs {
		if saved == slug {
			return true
		}
	}
	return false
}

// Piece returns the piece issued for atelierSlug, if any
func (s CollectionState) Piece(atelierSlug string) (IssuedPiece, bool) {
	for _, p := range s.IssuedPieces {
		if p.AtelierSlug == atelierSlug {
			return p, true
		}
	}
	return IssuedPiece{}, false
}
