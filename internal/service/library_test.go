package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
	apperrors "github.com/bcart01v/atlas-cinema-guru/pkg/errors"
)

const testEmail = "user@example.com"

func newTestLibrary(repo *mockRelationRepository, pageSize int) *LibraryService {
	return NewLibraryService(repo, noopCache{}, noopPublisher{}, pageSize, newTestLogger())
}

// --- List ---

func TestLibraryList_ThirdPageOfTwentyFive(t *testing.T) {
	repo := new(mockRelationRepository)
	q := domain.ListQuery{Page: 3}
	repo.On("List", mock.Anything, domain.KindFavorites, testEmail, q.Filters(), 10, 20).
		Return(moviesN(5), 25, nil)

	svc := newTestLibrary(repo, 10)
	page, err := svc.List(context.Background(), domain.KindFavorites, q, testEmail)

	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 3, page.Page)
	repo.AssertExpectations(t)
}

func TestLibraryList_PageBeyondLast(t *testing.T) {
	repo := new(mockRelationRepository)
	q := domain.ListQuery{Page: 9}
	repo.On("List", mock.Anything, domain.KindWatchLater, testEmail, q.Filters(), 10, 80).
		Return([]domain.Movie{}, 25, nil)

	svc := newTestLibrary(repo, 10)
	page, err := svc.List(context.Background(), domain.KindWatchLater, q, testEmail)

	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.TotalPages)
}

func TestLibraryList_EmptyListHasOnePage(t *testing.T) {
	repo := new(mockRelationRepository)
	q := domain.ListQuery{Page: 1}
	repo.On("List", mock.Anything, domain.KindFavorites, testEmail, q.Filters(), 6, 0).
		Return([]domain.Movie{}, 0, nil)

	svc := newTestLibrary(repo, 0)
	page, err := svc.List(context.Background(), domain.KindFavorites, q, testEmail)

	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalPages)
}

func TestLibraryList_FiltersPassedThrough(t *testing.T) {
	repo := new(mockRelationRepository)
	q := domain.ListQuery{Page: 1, MinYear: 1990, MaxYear: 2000, Query: "matrix", Genres: []string{"Sci-Fi"}}
	want := domain.Filters{MinYear: 1990, MaxYear: 2000, Query: "matrix", Genres: []string{"Sci-Fi"}}
	repo.On("List", mock.Anything, domain.KindFavorites, testEmail, want, 6, 0).
		Return(moviesN(1), 1, nil)

	_, err := newTestLibrary(repo, 6).List(context.Background(), domain.KindFavorites, q, testEmail)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestLibraryList_Unauthenticated_NoRepoCalls(t *testing.T) {
	repo := new(mockRelationRepository)
	svc := newTestLibrary(repo, 6)

	_, err := svc.List(context.Background(), domain.KindFavorites, domain.ListQuery{Page: 1}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	_, err = svc.Toggle(context.Background(), domain.KindFavorites, "m-1", "")
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	_, err = svc.Remove(context.Background(), domain.KindWatchLater, "m-1", "")
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Toggle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLibraryList_InvalidPage(t *testing.T) {
	repo := new(mockRelationRepository)
	_, err := newTestLibrary(repo, 6).List(context.Background(), domain.KindFavorites, domain.ListQuery{Page: 0}, testEmail)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidParameter))
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLibraryList_RepoError(t *testing.T) {
	tests := []struct {
		kind    domain.ListKind
		message string
	}{
		{domain.KindFavorites, "Failed to fetch favorites"},
		{domain.KindWatchLater, "Failed to fetch watch later items"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			repo := new(mockRelationRepository)
			repo.On("List", mock.Anything, tt.kind, testEmail, mock.Anything, 6, 0).
				Return([]domain.Movie(nil), 0, errors.New("connection reset"))

			_, err := newTestLibrary(repo, 6).List(context.Background(), tt.kind, domain.ListQuery{Page: 1}, testEmail)

			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrDataAccess))
			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.message, appErr.Message)
			assert.Equal(t, 500, appErr.Status)
		})
	}
}

func TestLibraryList_CacheHitSkipsRepo(t *testing.T) {
	repo := new(mockRelationRepository)
	c := new(mockCache)
	q := domain.ListQuery{Page: 2}
	c.On("Get", mock.Anything, testEmail, "favorites", q.CacheKey(), mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(4).(*domain.Page[domain.Movie])
			*dest = domain.NewPage(moviesN(2), 2, 4)
		}).
		Return(true, nil)

	svc := NewLibraryService(repo, c, noopPublisher{}, 6, newTestLogger())
	page, err := svc.List(context.Background(), domain.KindFavorites, q, testEmail)

	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 4, page.TotalPages)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLibraryList_CacheErrorFallsThrough(t *testing.T) {
	repo := new(mockRelationRepository)
	c := new(mockCache)
	q := domain.ListQuery{Page: 1}
	c.On("Get", mock.Anything, testEmail, "watch_later", q.CacheKey(), mock.Anything).Return(false, errors.New("redis down"))
	c.On("Set", mock.Anything, testEmail, "watch_later", q.CacheKey(), mock.Anything).Return(errors.New("redis down"))
	repo.On("List", mock.Anything, domain.KindWatchLater, testEmail, q.Filters(), 6, 0).Return(moviesN(3), 3, nil)

	svc := NewLibraryService(repo, c, noopPublisher{}, 6, newTestLogger())
	page, err := svc.List(context.Background(), domain.KindWatchLater, q, testEmail)

	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	c.AssertExpectations(t)
}

// --- Toggle ---

func TestLibraryToggle_DoubleToggleRestoresState(t *testing.T) {
	repo := newMemoryRelations("m-1")
	svc := NewLibraryService(repo, noopCache{}, noopPublisher{}, 6, newTestLogger())
	ctx := context.Background()

	first, err := svc.Toggle(ctx, domain.KindFavorites, "m-1", testEmail)
	require.NoError(t, err)
	assert.True(t, first.Active)

	second, err := svc.Toggle(ctx, domain.KindFavorites, "m-1", testEmail)
	require.NoError(t, err)
	assert.False(t, second.Active)

	page, err := svc.List(ctx, domain.KindFavorites, domain.ListQuery{Page: 1}, testEmail)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestLibraryToggle_ListsAreIndependent(t *testing.T) {
	repo := newMemoryRelations("m-1")
	svc := NewLibraryService(repo, noopCache{}, noopPublisher{}, 6, newTestLogger())
	ctx := context.Background()

	_, err := svc.Toggle(ctx, domain.KindFavorites, "m-1", testEmail)
	require.NoError(t, err)

	watch, err := svc.List(ctx, domain.KindWatchLater, domain.ListQuery{Page: 1}, testEmail)
	require.NoError(t, err)
	assert.Empty(t, watch.Items)

	other, err := svc.List(ctx, domain.KindFavorites, domain.ListQuery{Page: 1}, "other@example.com")
	require.NoError(t, err)
	assert.Empty(t, other.Items)
}

func TestLibraryToggle_ConcurrentTogglesSerialise(t *testing.T) {
	repo := newMemoryRelations("m-1")
	svc := NewLibraryService(repo, noopCache{}, noopPublisher{}, 6, newTestLogger())
	ctx := context.Background()

	const n = 51
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		added int
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Toggle(ctx, domain.KindWatchLater, "m-1", testEmail)
			if err != nil {
				t.Error(err)
				return
			}
			if res.Active {
				mu.Lock()
				added++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Adds and removes must alternate, so an odd count ends with the movie present.
	assert.Equal(t, n/2+1, added)
	page, err := svc.List(ctx, domain.KindWatchLater, domain.ListQuery{Page: 1}, testEmail)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestLibraryToggle_UnknownMovie(t *testing.T) {
	repo := new(mockRelationRepository)
	repo.On("Toggle", mock.Anything, domain.KindFavorites, testEmail, "missing").
		Return(false, apperrors.NotFound("movie", "missing"))
	c := new(mockCache)
	pub := new(mockPublisher)

	svc := NewLibraryService(repo, c, pub, 6, newTestLogger())
	_, err := svc.Toggle(context.Background(), domain.KindFavorites, "missing", testEmail)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	c.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishToggled", mock.Anything, mock.Anything)
}

func TestLibraryToggle_RepoErrorIsDataAccess(t *testing.T) {
	repo := new(mockRelationRepository)
	repo.On("Toggle", mock.Anything, domain.KindWatchLater, testEmail, "m-1").Return(false, errors.New("deadlock"))

	_, err := newTestLibrary(repo, 6).Toggle(context.Background(), domain.KindWatchLater, "m-1", testEmail)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDataAccess))
	assert.Equal(t, 500, apperrors.HTTPStatus(err))
}

func TestLibraryToggle_InvalidatesAndPublishes(t *testing.T) {
	repo := new(mockRelationRepository)
	repo.On("Toggle", mock.Anything, domain.KindFavorites, testEmail, "m-1").Return(true, nil)
	c := new(mockCache)
	c.On("Invalidate", mock.Anything, testEmail).Return(nil)
	pub := new(mockPublisher)
	pub.On("PublishToggled", mock.Anything, domain.ToggledEvent{
		UserEmail: testEmail, MovieID: "m-1", Kind: domain.KindFavorites, Active: true,
	}).Return(nil)

	svc := NewLibraryService(repo, c, pub, 6, newTestLogger())
	res, err := svc.Toggle(context.Background(), domain.KindFavorites, "m-1", testEmail)

	require.NoError(t, err)
	assert.Equal(t, domain.ToggleResult{MovieID: "m-1", Kind: domain.KindFavorites, Active: true}, res)
	c.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestLibraryToggle_SideEffectFailuresDoNotFail(t *testing.T) {
	repo := new(mockRelationRepository)
	repo.On("Toggle", mock.Anything, domain.KindFavorites, testEmail, "m-1").Return(false, nil)
	c := new(mockCache)
	c.On("Invalidate", mock.Anything, testEmail).Return(errors.New("redis down"))
	pub := new(mockPublisher)
	pub.On("PublishToggled", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	svc := NewLibraryService(repo, c, pub, 6, newTestLogger())
	res, err := svc.Toggle(context.Background(), domain.KindFavorites, "m-1", testEmail)

	require.NoError(t, err)
	assert.False(t, res.Active)
}

func TestLibraryToggle_MissingMovieID(t *testing.T) {
	repo := new(mockRelationRepository)
	_, err := newTestLibrary(repo, 6).Toggle(context.Background(), domain.KindFavorites, "", testEmail)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidParameter))
}

// --- Remove ---

func TestLibraryRemove_Idempotent(t *testing.T) {
	repo := newMemoryRelations("m-1")
	svc := NewLibraryService(repo, noopCache{}, noopPublisher{}, 6, newTestLogger())
	ctx := context.Background()

	_, err := svc.Toggle(ctx, domain.KindWatchLater, "m-1", testEmail)
	require.NoError(t, err)

	for range 2 {
		res, err := svc.Remove(ctx, domain.KindWatchLater, "m-1", testEmail)
		require.NoError(t, err)
		assert.False(t, res.Active)
	}
}

func TestLibraryRemove_UnknownMovie(t *testing.T) {
	svc := NewLibraryService(newMemoryRelations(), noopCache{}, noopPublisher{}, 6, newTestLogger())

	_, err := svc.Remove(context.Background(), domain.KindFavorites, "nope", testEmail)

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
