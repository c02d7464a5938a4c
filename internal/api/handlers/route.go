package handlers

import (
	"net/http"

	"github.com/dom/atelier-korea/internal/domain"
	"github.com/dom/atelier-korea/internal/service"
	"go.uber.org/zap"
)

type RouteHandler struct {
	suggestionService *service.SuggestionService
	logger            *zap.Logger
}

func NewRouteHandler(suggestionService *service.SuggestionService, logger *zap.Logger) *RouteHandler {
	return &RouteHandler{suggestionService: suggestionService, logger: logger}
}

type SuggestRouteRequest struct {
	Duration int    `json:"duration" validate:"required,min=1,max=30"`
	Pace     string `json:"pace" validate:"required,oneof=Slow Balanced Deep"`
	Theme    string `json:"theme" validate:"omitempty,oneof=Any Sea Ritual Grain Raw Taste"`
}

// Suggest draws a route. An empty ateliers list is a valid answer.
func (h *RouteHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestRouteRequest
	if err := decodeAndValidate(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pace, err := domain.ParsePace(req.Pace)
	if err != nil {
		writeError(w, h.logger, "route.Suggest", err)
		return
	}
	theme, err := domain.ParseThemeFilter(req.Theme)
	if err != nil {
		writeError(w, h.logger, "route.Suggest", err)
		return
	}

	suggestion, err := h.suggestionService.Suggest(r.Context(), service.SuggestInput{
		Duration: req.Duration,
		Pace:     pace,
		Theme:    theme,
	})
	if err != nil {
		writeError(w, h.logger, "route.Suggest", err)
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}
