package handlers

import (
	"net/http"

	"github.com/dom/atelier-korea/internal/api/middleware"
	"github.com/dom/atelier-korea/internal/domain"
	"github.com/dom/atelier-korea/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CollectionHandler serves the calling profile's saved ateliers, pieces and routes.
type CollectionHandler struct {
	collectionService *service.CollectionService
	pieceService      *service.PieceService
	logger            *zap.Logger
}

func NewCollectionHandler(collectionService *service.CollectionService, pieceService *service.PieceService, logger *zap.Logger) *CollectionHandler {
	return &CollectionHandler{
		collectionService: collectionService,
		pieceService:      pieceService,
		logger:            logger,
	}
}

type MyCollectionResponse struct {
	ProfileID string `json:"profileId"`
	*service.MyCollection
}

type SavedResponse struct {
	Slug  string `json:"slug"`
	Saved bool   `json:"saved"`
}

type CraftPieceRequest struct {
	AtelierSlug string `json:"atelierSlug" validate:"required"`
	ChoiceID    string `json:"choiceId" validate:"required"`
}

type PieceResponse struct {
	AtelierSlug string              `json:"atelierSlug"`
	HasPiece    bool                `json:"hasPiece"`
	Piece       *domain.IssuedPiece `json:"piece,omitempty"`
}

type SaveRouteRequest struct {
	Title        string   `json:"title" validate:"required,max=200"`
	AtelierSlugs []string `json:"atelierSlugs" validate:"required,min=1,max=10,dive,required"`
}

type RoutesResponse struct {
	Routes []domain.SavedRoute `json:"routes"`
}

func (h *CollectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	profileID, ok := middleware.GetProfileID(r.Context())
	if !ok {
		http.Error(w, "Profile required", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, MyCollectionResponse{
		ProfileID:    profileID,
		MyCollection: h.collectionService.GetCollection(r.Context(), profileID),
	})
}

func (h *CollectionHandler) ToggleSave(w http.ResponseWriter, r *http.Request) {
	profileID, ok := middleware.GetProfileID(r.Context())
	if !ok {
		http.Error(w, "Profile required", http.StatusBadRequest)
		return
	}
	slug := chi.URLParam(r, "slug")

	saved, err := h.collectionService.ToggleSave(r.Context(), profileID, slug)
	if err != nil {
		writeError(w, h.logger, "collection.ToggleSave", err)
		return
	}
	writeJSON(w, http.StatusOK, SavedResponse{Slug: slug, Saved: saved})
}

func (h *CollectionHandler) IsSaved(w http.ResponseWriter, r *http.Request) {
	profileID, ok := middleware.GetProfileID(r.Context())
	if !ok {
		http.Error(w, "Profile required", http.StatusBadRequest)
		return
	}
	slug := chi.URLParam(r, "slug")

	writeJSON(w, http.StatusOK, SavedResponse{
		Slug:  slug,
		Saved: h.collectionService.IsSaved(r.Context(), profileID, slug),
	})
}

// CraftPiece holds the request for the crafting delay, then issues the piece.
// A visitor who already holds a piece for the atelier gets the original back with 200.
func (h *CollectionHandler) CraftPiece(w http.ResponseWriter, r *http.Request) {
	profileID, ok := middleware.GetProfileID(r.Context())
	if !ok {
		http.Error(w, "Profile required", http.StatusBadRequest)
		return
	}

	var req CraftPieceRequest
	if err := decodeAndValidate(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.pieceService.Craft(r.Context(), profileID, service.CraftPieceInput{
		AtelierSlug: req.AtelierSlug,
		ChoiceID:    req.ChoiceID,
	})
	if err != nil {
		writeError(w, h.logger, "collection.CraftPiece", err)
		return
	}

	status := http.StatusOK
	if result.Issued {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

func (h *CollectionHandler) GetPiece(w http.ResponseWriter, r *http.Request) {
	profileID, ok := middleware.GetProfileID(r.Context())
	if !ok {
		http.Error(w, "Profile required", http.StatusBadRequest)
		return
	}
	slug := chi.URLParam(r, "slug")

	resp := PieceResponse{AtelierSlug: slug}
	if piece, found := h.collectionService.GetPiece(r.Context(), profileID, slug); found {
		resp.HasPiece = true
		resp.Piece = &piece
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CollectionHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	profileID, ok := middleware.GetProfileID(r.Context())
	if !ok {
		http.Error(w, "Profile required", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, RoutesResponse{
		Routes: h.collectionService.ListRoutes(r.Context(), profileID),
	})
}

func (h *CollectionHandler) SaveRoute(w http.ResponseWriter, r *http.Request) {
	profileID, ok := middleware.GetProfileID(r.Context())
	if !ok {
		http.Error(w, "Profile required", http.StatusBadRequest)
		return
	}

	var req SaveRouteRequest
	if err := decodeAndValidate(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	route, err := h.collectionService.SaveRoute(r.Context(), profileID, service.SaveRouteInput{
		Title:        req.Title,
		AtelierSlugs: req.AtelierSlugs,
	})
	if err != nil {
		writeError(w, h.logger, "collection.SaveRoute", err)
		return
	}
	writeJSON(w, http.StatusCreated, route)
}
