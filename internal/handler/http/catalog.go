package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
	"github.com/bcart01v/atlas-cinema-guru/pkg/httputil"
	"github.com/bcart01v/atlas-cinema-guru/pkg/middleware"
	"github.com/bcart01v/atlas-cinema-guru/pkg/pagination"
)

// CatalogHandler serves catalog browsing and the activity feed.
type CatalogHandler struct {
	catalog    CatalogService
	activities ActivityService
	logger     *slog.Logger
	now        func() time.Time
}

func NewCatalogHandler(catalog CatalogService, activities ActivityService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, activities: activities, logger: logger, now: time.Now}
}

type TitlesResponse struct {
	Titles     []domain.Movie `json:"titles"`
	TotalPages int            `json:"totalPages"`
}

type GenresResponse struct {
	Genres []string `json:"genres"`
}

type ActivitiesResponse struct {
	Activities []domain.Activity `json:"activities"`
	TotalPages int               `json:"totalPages"`
}

// Titles handles GET /api/titles
func (h *CatalogHandler) Titles(w http.ResponseWriter, r *http.Request) {
	q, err := ParseListQuery(r.URL.Query(), h.now())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	page, err := h.catalog.Titles(r.Context(), q, middleware.EmailFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TitlesResponse{Titles: page.Items, TotalPages: page.TotalPages})
}

// Genres handles GET /api/genres
func (h *CatalogHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.catalog.Genres(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, GenresResponse{Genres: genres})
}

// Activities handles GET /api/activities
func (h *CatalogHandler) Activities(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.PageFromRequest(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result, err := h.activities.List(r.Context(), page, middleware.EmailFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ActivitiesResponse{Activities: result.Items, TotalPages: result.TotalPages})
}
