package handlers

import (
	"net/http"

	"github.com/dom/atelier-korea/internal/domain"
	"github.com/dom/atelier-korea/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, logger: logger}
}

type AteliersResponse struct {
	Ateliers []domain.Atelier `json:"ateliers"`
}

type CollectionsResponse struct {
	Collections []domain.Collection `json:"collections"`
}

func (h *CatalogHandler) ListAteliers(w http.ResponseWriter, r *http.Request) {
	var theme *domain.Theme
	if raw := r.URL.Query().Get("collection"); raw != "" {
		parsed, err := domain.ParseTheme(raw)
		if err != nil {
			writeError(w, h.logger, "catalog.ListAteliers", err)
			return
		}
		theme = &parsed
	}

	ateliers := h.catalogService.ListAteliers(r.Context(), theme)
	writeJSON(w, http.StatusOK, AteliersResponse{Ateliers: ateliers})
}

func (h *CatalogHandler) GetAtelier(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	atelier, err := h.catalogService.GetAtelier(r.Context(), slug)
	if err != nil {
		writeError(w, h.logger, "catalog.GetAtelier", err)
		return
	}
	writeJSON(w, http.StatusOK, atelier)
}

func (h *CatalogHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CollectionsResponse{
		Collections: h.catalogService.ListCollections(r.Context()),
	})
}

func (h *CatalogHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	theme, err := domain.ParseTheme(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Collection not found", http.StatusNotFound)
		return
	}

	detail, err := h.catalogService.GetCollection(r.Context(), theme)
	if err != nil {
		writeError(w, h.logger, "catalog.GetCollection", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
