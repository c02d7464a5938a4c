package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dom/atelier-korea/internal/catalog"
	"github.com/dom/atelier-korea/internal/domain"
	"github.com/dom/atelier-korea/internal/metrics"
	"github.com/dom/atelier-korea/internal/pacing"
	"github.com/dom/atelier-korea/internal/store"
)

// PieceService crafts pieces: the visitor answers an atelier's question and keeps the line.
type PieceService struct {
	catalog  *catalog.Catalog
	registry *store.Registry
	metrics  *metrics.Collector
	delay    time.Duration
	now      func() time.Time
}

func NewPieceService(cat *catalog.Catalog, registry *store.Registry, collector *metrics.Collector, delay time.Duration, now func() time.Time) *PieceService {
	return &PieceService{
		catalog:  cat,
		registry: registry,
		metrics:  collector,
		delay:    delay,
		now:      now,
	}
}

type CraftPieceInput struct {
	AtelierSlug string
	ChoiceID    string
}

type CraftResult struct {
	Piece domain.IssuedPiece `json:"piece"`
	// Issued is false when the profile already held a piece for the atelier;
	// Piece is then the one issued first.
	Issued bool `json:"issued"`
}

// Prepare resolves the atelier and choice and builds the record that crafting would issue.
func (s *PieceService) Prepare(input CraftPieceInput) (domain.IssuedPiece, error) {
	atelier, err := s.catalog.Atelier(input.AtelierSlug)
	if err != nil {
		return domain.IssuedPiece{}, err
	}

	choice, ok := atelier.Piece.Choice(input.ChoiceID)
	if !ok {
		return domain.IssuedPiece{}, fmt.Errorf("%w: %s on %s", domain.ErrChoiceNotFound, input.ChoiceID, input.AtelierSlug)
	}

	return domain.IssuedPiece{
		PieceID:       atelier.Piece.ID,
		AtelierSlug:   atelier.Slug,
		ChoiceID:      choice.ID,
		IssuedAt:      s.now().UTC(),
		GeneratedLine: choice.GeneratedLine,
	}, nil
}

// Craft waits out the crafting delay and issues the piece. If ctx ends during the
// delay nothing is issued.
func (s *PieceService) Craft(ctx context.Context, profileID string, input CraftPieceInput) (*CraftResult, error) {
	piece, err := s.Prepare(input)
	if err != nil {
		return nil, err
	}

	if err := pacing.Delay(ctx, s.delay); err != nil {
		return nil, err
	}

	piece.IssuedAt = s.now().UTC()
	return s.Issue(ctx, profileID, piece), nil
}

// Issue stores a prepared piece immediately.
func (s *PieceService) Issue(ctx context.Context, profileID string, piece domain.IssuedPiece) *CraftResult {
	st, release := s.registry.Acquire(ctx, profileID)
	defer release()

	if st.IssuePiece(ctx, piece) {
		s.metrics.PiecesIssued.Inc()
		return &CraftResult{Piece: piece, Issued: true}
	}

	s.metrics.PiecesDuplicate.Inc()
	existing, _ := st.Piece(piece.AtelierSlug)
	return &CraftResult{Piece: existing, Issued: false}
}

// Delay is the configured crafting wait.
func (s *PieceService) Delay() time.Duration {
	return s.delay
}
