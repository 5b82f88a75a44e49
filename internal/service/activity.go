package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
	"github.com/bcart01v/atlas-cinema-guru/internal/repository"
	apperrors "github.com/bcart01v/atlas-cinema-guru/pkg/errors"
	"github.com/bcart01v/atlas-cinema-guru/pkg/pagination"
)

const scopeActivities = "activities"

type ActivityService struct {
	activities repository.ActivityRepository
	cache      ListCache
	pageSize   int
	logger     *slog.Logger
}

func NewActivityService(activities repository.ActivityRepository, cache ListCache, pageSize int, logger *slog.Logger) *ActivityService {
	if pageSize <= 0 {
		pageSize = pagination.DefaultPerPage
	}
	return &ActivityService{activities: activities, cache: cache, pageSize: pageSize, logger: logger}
}

// List returns one page of the user's activity feed, newest first.
func (s *ActivityService) List(ctx context.Context, page int, email string) (domain.Page[domain.Activity], error) {
	if email == "" {
		return domain.Page[domain.Activity]{}, apperrors.Unauthorized("Unauthorized")
	}
	if page < 1 {
		return domain.Page[domain.Activity]{}, apperrors.InvalidParameter("page", "must be a positive integer")
	}

	key := "p=" + strconv.Itoa(page)
	var cached domain.Page[domain.Activity]
	if hit, err := s.cache.Get(ctx, email, scopeActivities, key, &cached); err != nil {
		s.logger.WarnContext(ctx, "activity cache read failed", slog.String("error", err.Error()))
	} else if hit {
		return cached, nil
	}

	params := pagination.New(page, s.pageSize)
	items, total, err := s.activities.List(ctx, email, params.PerPage, params.Offset)
	if err != nil {
		return domain.Page[domain.Activity]{}, apperrors.DataAccess("Failed to fetch activities", err)
	}

	result := domain.NewPage(items, page, pagination.TotalPages(total, params.PerPage))
	if err := s.cache.Set(ctx, email, scopeActivities, key, result); err != nil {
		s.logger.WarnContext(ctx, "activity cache write failed", slog.String("error", err.Error()))
	}
	return result, nil
}
