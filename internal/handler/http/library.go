package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
	"github.com/bcart01v/atlas-cinema-guru/pkg/httputil"
	"github.com/bcart01v/atlas-cinema-guru/pkg/middleware"
)

// LibraryHandler serves /api/favorites and /api/watch-later.
type LibraryHandler struct {
	service LibraryService
	logger  *slog.Logger
	now     func() time.Time
}

func NewLibraryHandler(service LibraryService, logger *slog.Logger) *LibraryHandler {
	return &LibraryHandler{service: service, logger: logger, now: time.Now}
}

// --- Response DTOs ---

// FavoritesResponse is the body of GET /api/favorites.
type FavoritesResponse struct {
	Favorites  []domain.Movie `json:"favorites"`
	TotalPages int            `json:"totalPages"`
}

// WatchLaterResponse is the body of GET /api/watch-later.
type WatchLaterResponse struct {
	WatchLater []domain.Movie `json:"watchLater"`
	TotalPages int            `json:"totalPages"`
}

type FavoriteToggleResponse struct {
	MovieID   string `json:"movieId"`
	Favorited bool   `json:"favorited"`
}

type WatchLaterToggleResponse struct {
	MovieID    string `json:"movieId"`
	WatchLater bool   `json:"watchLater"`
}

// --- Handlers ---

// List returns the handler for GET /api/favorites or GET /api/watch-later.
func (h *LibraryHandler) List(kind domain.ListKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := ParseListQuery(r.URL.Query(), h.now())
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}

		page, err := h.service.List(r.Context(), kind, q, middleware.EmailFromContext(r.Context()))
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}

		if kind == domain.KindWatchLater {
			httputil.WriteJSON(w, http.StatusOK, WatchLaterResponse{WatchLater: page.Items, TotalPages: page.TotalPages})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, FavoritesResponse{Favorites: page.Items, TotalPages: page.TotalPages})
	}
}

// Toggle returns the handler for POST /api/{list}/{movieId}.
func (h *LibraryHandler) Toggle(kind domain.ListKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httputil.ParseUUID("movieId", chi.URLParam(r, "movieId"))
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}

		result, err := h.service.Toggle(r.Context(), kind, id.String(), middleware.EmailFromContext(r.Context()))
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		writeToggle(w, result)
	}
}

// Remove returns the handler for DELETE /api/{list}/{movieId}.
func (h *LibraryHandler) Remove(kind domain.ListKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httputil.ParseUUID("movieId", chi.URLParam(r, "movieId"))
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}

		result, err := h.service.Remove(r.Context(), kind, id.String(), middleware.EmailFromContext(r.Context()))
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		writeToggle(w, result)
	}
}

func writeToggle(w http.ResponseWriter, result domain.ToggleResult) {
	if result.Kind == domain.KindWatchLater {
		httputil.WriteJSON(w, http.StatusOK, WatchLaterToggleResponse{MovieID: result.MovieID, WatchLater: result.Active})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FavoriteToggleResponse{MovieID: result.MovieID, Favorited: result.Active})
}
