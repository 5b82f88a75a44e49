package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
	"github.com/bcart01v/atlas-cinema-guru/internal/repository"
	apperrors "github.com/bcart01v/atlas-cinema-guru/pkg/errors"
	"github.com/bcart01v/atlas-cinema-guru/pkg/pagination"
	"github.com/bcart01v/atlas-cinema-guru/pkg/tracing"
)

// LibraryService implements favorites and watch-later: listing a user's
// lists and flipping membership.
type LibraryService struct {
	relations repository.RelationRepository
	cache     ListCache
	events    EventPublisher
	pageSize  int
	logger    *slog.Logger
}

func NewLibraryService(
	relations repository.RelationRepository,
	cache ListCache,
	events EventPublisher,
	pageSize int,
	logger *slog.Logger,
) *LibraryService {
	if pageSize <= 0 {
		pageSize = pagination.DefaultPerPage
	}
	return &LibraryService{
		relations: relations,
		cache:     cache,
		events:    events,
		pageSize:  pageSize,
		logger:    logger,
	}
}

// List returns one page of the user's list. A page past the end is not an
// error: it comes back empty with the real page count.
func (s *LibraryService) List(ctx context.Context, kind domain.ListKind, q domain.ListQuery, email string) (domain.Page[domain.Movie], error) {
	if email == "" {
		return domain.Page[domain.Movie]{}, apperrors.Unauthorized("Unauthorized")
	}
	if !kind.Valid() {
		return domain.Page[domain.Movie]{}, apperrors.InvalidParameter("kind", "must be favorites or watch_later")
	}
	if q.Page < 1 {
		return domain.Page[domain.Movie]{}, apperrors.InvalidParameter("page", "must be a positive integer")
	}

	var cached domain.Page[domain.Movie]
	if s.readCache(ctx, email, string(kind), q.CacheKey(), &cached) {
		return cached, nil
	}

	params := pagination.New(q.Page, s.pageSize)
	items, total, err := s.relations.List(ctx, kind, email, q.Filters(), params.PerPage, params.Offset)
	if err != nil {
		return domain.Page[domain.Movie]{}, apperrors.DataAccess("Failed to fetch "+kind.Label(), err)
	}

	page := domain.NewPage(items, q.Page, pagination.TotalPages(total, params.PerPage))
	s.writeCache(ctx, email, string(kind), q.CacheKey(), page)
	return page, nil
}

// Toggle flips membership based on the stored state.
func (s *LibraryService) Toggle(ctx context.Context, kind domain.ListKind, movieID, email string) (domain.ToggleResult, error) {
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "LibraryService.Toggle")
	defer span.End()
	span.SetAttributes(attribute.String("list.kind", string(kind)), attribute.String("movie.id", movieID))

	if err := s.checkWrite(kind, movieID, email); err != nil {
		return domain.ToggleResult{}, err
	}

	active, err := s.relations.Toggle(ctx, kind, email, movieID)
	if err != nil {
		span.SetStatus(codes.Error, "toggle failed")
		return domain.ToggleResult{}, s.writeError(kind, err)
	}
	span.SetAttributes(attribute.Bool("list.active", active))

	result := domain.ToggleResult{MovieID: movieID, Kind: kind, Active: active}
	s.afterWrite(ctx, email, result)
	return result, nil
}

// Remove ensures the movie is not in the list. Removing an absent entry
// succeeds.
func (s *LibraryService) Remove(ctx context.Context, kind domain.ListKind, movieID, email string) (domain.ToggleResult, error) {
	if err := s.checkWrite(kind, movieID, email); err != nil {
		return domain.ToggleResult{}, err
	}
	if err := s.relations.Remove(ctx, kind, email, movieID); err != nil {
		return domain.ToggleResult{}, s.writeError(kind, err)
	}

	result := domain.ToggleResult{MovieID: movieID, Kind: kind, Active: false}
	s.afterWrite(ctx, email, result)
	return result, nil
}

func (s *LibraryService) checkWrite(kind domain.ListKind, movieID, email string) error {
	if email == "" {
		return apperrors.Unauthorized("Unauthorized")
	}
	if !kind.Valid() {
		return apperrors.InvalidParameter("kind", "must be favorites or watch_later")
	}
	if movieID == "" {
		return apperrors.InvalidParameter("movieId", "is required")
	}
	return nil
}

func (s *LibraryService) writeError(kind domain.ListKind, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return apperrors.DataAccess("Failed to update "+kind.Label(), err)
}

// afterWrite runs once the change has committed. Neither step can undo the
// write, so failures are only logged.
func (s *LibraryService) afterWrite(ctx context.Context, email string, result domain.ToggleResult) {
	if err := s.cache.Invalidate(ctx, email); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate list cache", slog.String("error", err.Error()))
	}

	err := s.events.PublishToggled(ctx, domain.ToggledEvent{
		UserEmail: email,
		MovieID:   result.MovieID,
		Kind:      result.Kind,
		Active:    result.Active,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to publish toggle event",
			slog.String("movie_id", result.MovieID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *LibraryService) readCache(ctx context.Context, email, scope, key string, dest any) bool {
	hit, err := s.cache.Get(ctx, email, scope, key, dest)
	if err != nil {
		s.logger.WarnContext(ctx, "list cache read failed", slog.String("scope", scope), slog.String("error", err.Error()))
		return false
	}
	return hit
}

func (s *LibraryService) writeCache(ctx context.Context, email, scope, key string, value any) {
	if err := s.cache.Set(ctx, email, scope, key, value); err != nil {
		s.logger.WarnContext(ctx, "list cache write failed", slog.String("scope", scope), slog.String("error", err.Error()))
	}
}
