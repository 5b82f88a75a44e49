package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
	apperrors "github.com/bcart01v/atlas-cinema-guru/pkg/errors"
)

func TestCatalogTitles(t *testing.T) {
	repo := new(mockMovieRepository)
	q := domain.ListQuery{Page: 2, Query: "star"}
	repo.On("Search", mock.Anything, testEmail, q.Filters(), 6, 6).Return(moviesN(6), 14, nil)

	svc := NewCatalogService(repo, noopCache{}, 6, newTestLogger())
	page, err := svc.Titles(context.Background(), q, testEmail)

	require.NoError(t, err)
	assert.Len(t, page.Items, 6)
	assert.Equal(t, 3, page.TotalPages)
}

func TestCatalogTitles_Unauthenticated(t *testing.T) {
	repo := new(mockMovieRepository)
	svc := NewCatalogService(repo, noopCache{}, 6, newTestLogger())

	_, err := svc.Titles(context.Background(), domain.ListQuery{Page: 1}, "")

	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	repo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogTitles_RepoError(t *testing.T) {
	repo := new(mockMovieRepository)
	repo.On("Search", mock.Anything, testEmail, mock.Anything, 6, 0).Return([]domain.Movie(nil), 0, errors.New("boom"))

	_, err := NewCatalogService(repo, noopCache{}, 6, newTestLogger()).Titles(context.Background(), domain.ListQuery{Page: 1}, testEmail)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Failed to fetch titles", appErr.Message)
}

func TestCatalogGenres_Sorted(t *testing.T) {
	repo := new(mockMovieRepository)
	repo.On("Genres", mock.Anything).Return([]string{"Western", "Drama", "Action"}, nil)

	genres, err := NewCatalogService(repo, noopCache{}, 6, newTestLogger()).Genres(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Action", "Drama", "Western"}, genres)
}

func TestCatalogGenres_EmptyIsNotNil(t *testing.T) {
	repo := new(mockMovieRepository)
	repo.On("Genres", mock.Anything).Return(nil, nil)

	genres, err := NewCatalogService(repo, noopCache{}, 6, newTestLogger()).Genres(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, genres)
}

func TestActivityList(t *testing.T) {
	repo := new(mockActivityRepository)
	now := time.Now()
	repo.On("List", mock.Anything, testEmail, 6, 0).Return([]domain.Activity{
		{ID: "a-2", MovieID: "m-2", MovieTitle: "Heat", Type: domain.ActivityWatchLater, CreatedAt: now},
		{ID: "a-1", MovieID: "m-1", MovieTitle: "Alien", Type: domain.ActivityFavorited, CreatedAt: now.Add(-time.Minute)},
	}, 2, nil)

	svc := NewActivityService(repo, noopCache{}, 6, newTestLogger())
	page, err := svc.List(context.Background(), 1, testEmail)

	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "a-2", page.Items[0].ID)
	assert.Equal(t, 1, page.TotalPages)
}

func TestActivityList_Errors(t *testing.T) {
	repo := new(mockActivityRepository)
	svc := NewActivityService(repo, noopCache{}, 6, newTestLogger())

	_, err := svc.List(context.Background(), 1, "")
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	_, err = svc.List(context.Background(), 0, testEmail)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidParameter))

	repo.On("List", mock.Anything, testEmail, 6, 0).Return([]domain.Activity(nil), 0, errors.New("boom"))
	_, err = svc.List(context.Background(), 1, testEmail)
	assert.True(t, errors.Is(err, apperrors.ErrDataAccess))
}
