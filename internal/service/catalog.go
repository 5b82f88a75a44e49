package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
	"github.com/bcart01v/atlas-cinema-guru/internal/repository"
	apperrors "github.com/bcart01v/atlas-cinema-guru/pkg/errors"
	"github.com/bcart01v/atlas-cinema-guru/pkg/pagination"
)

const scopeTitles = "titles"

// CatalogService browses the full movie catalog with the caller's flags
// resolved on every entry.
type CatalogService struct {
	movies   repository.MovieRepository
	cache    ListCache
	pageSize int
	logger   *slog.Logger
}

func NewCatalogService(movies repository.MovieRepository, cache ListCache, pageSize int, logger *slog.Logger) *CatalogService {
	if pageSize <= 0 {
		pageSize = pagination.DefaultPerPage
	}
	return &CatalogService{movies: movies, cache: cache, pageSize: pageSize, logger: logger}
}

// Titles returns one page of the catalog. Cached pages are scoped to the
// user because they carry the user's flags.
func (s *CatalogService) Titles(ctx context.Context, q domain.ListQuery, email string) (domain.Page[domain.Movie], error) {
	if email == "" {
		return domain.Page[domain.Movie]{}, apperrors.Unauthorized("Unauthorized")
	}
	if q.Page < 1 {
		return domain.Page[domain.Movie]{}, apperrors.InvalidParameter("page", "must be a positive integer")
	}

	var cached domain.Page[domain.Movie]
	if hit, err := s.cache.Get(ctx, email, scopeTitles, q.CacheKey(), &cached); err != nil {
		s.logger.WarnContext(ctx, "titles cache read failed", slog.String("error", err.Error()))
	} else if hit {
		return cached, nil
	}

	params := pagination.New(q.Page, s.pageSize)
	items, total, err := s.movies.Search(ctx, email, q.Filters(), params.PerPage, params.Offset)
	if err != nil {
		return domain.Page[domain.Movie]{}, apperrors.DataAccess("Failed to fetch titles", err)
	}

	page := domain.NewPage(items, q.Page, pagination.TotalPages(total, params.PerPage))
	if err := s.cache.Set(ctx, email, scopeTitles, q.CacheKey(), page); err != nil {
		s.logger.WarnContext(ctx, "titles cache write failed", slog.String("error", err.Error()))
	}
	return page, nil
}

// Genres lists the distinct genres in the catalog, sorted.
func (s *CatalogService) Genres(ctx context.Context) ([]string, error) {
	genres, err := s.movies.Genres(ctx)
	if err != nil {
		return nil, apperrors.DataAccess("Failed to fetch genres", err)
	}
	if genres == nil {
		genres = []string{}
	}
	sort.Strings(genres)
	return genres, nil
}
