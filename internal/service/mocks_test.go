package service

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
	apperrors "github.com/bcart01v/atlas-cinema-guru/pkg/errors"
)

// --- Mock Repositories ---

type mockRelationRepository struct {
	mock.Mock
}

func (m *mockRelationRepository) List(ctx context.Context, kind domain.ListKind, email string, f domain.Filters, limit, offset int) ([]domain.Movie, int, error) {
	args := m.Called(ctx, kind, email, f, limit, offset)
	return args.Get(0).([]domain.Movie), args.Int(1), args.Error(2)
}

func (m *mockRelationRepository) Toggle(ctx context.Context, kind domain.ListKind, email, movieID string) (bool, error) {
	args := m.Called(ctx, kind, email, movieID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRelationRepository) Remove(ctx context.Context, kind domain.ListKind, email, movieID string) error {
	args := m.Called(ctx, kind, email, movieID)
	return args.Error(0)
}

type mockMovieRepository struct {
	mock.Mock
}

func (m *mockMovieRepository) Search(ctx context.Context, email string, f domain.Filters, limit, offset int) ([]domain.Movie, int, error) {
	args := m.Called(ctx, email, f, limit, offset)
	return args.Get(0).([]domain.Movie), args.Int(1), args.Error(2)
}

func (m *mockMovieRepository) Genres(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockMovieRepository) Upsert(ctx context.Context, movies []domain.MovieSeed) (int, error) {
	args := m.Called(ctx, movies)
	return args.Int(0), args.Error(1)
}

type mockActivityRepository struct {
	mock.Mock
}

func (m *mockActivityRepository) List(ctx context.Context, email string, limit, offset int) ([]domain.Activity, int, error) {
	args := m.Called(ctx, email, limit, offset)
	return args.Get(0).([]domain.Activity), args.Int(1), args.Error(2)
}

// --- Mock Collaborators ---

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, email, scope, key string, dest any) (bool, error) {
	args := m.Called(ctx, email, scope, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, email, scope, key string, value any) error {
	args := m.Called(ctx, email, scope, key, value)
	return args.Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishToggled(ctx context.Context, e domain.ToggledEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// memoryRelations is a RelationRepository backed by a map. A single mutex
// serialises each toggle the way the row lock does in Postgres.
type memoryRelations struct {
	mu     sync.Mutex
	movies map[string]bool
	rows   map[string]bool
}

func newMemoryRelations(movieIDs ...string) *memoryRelations {
	r := &memoryRelations{movies: map[string]bool{}, rows: map[string]bool{}}
	for _, id := range movieIDs {
		r.movies[id] = true
	}
	return r
}

func (r *memoryRelations) key(kind domain.ListKind, email, movieID string) string {
	return string(kind) + "|" + email + "|" + movieID
}

func (r *memoryRelations) List(_ context.Context, kind domain.ListKind, email string, _ domain.Filters, limit, offset int) ([]domain.Movie, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.Movie
	for id := range r.movies {
		if r.rows[r.key(kind, email, id)] {
			all = append(all, domain.Movie{ID: id, Favorited: kind == domain.KindFavorites, WatchLater: kind == domain.KindWatchLater})
		}
	}
	total := len(all)
	if offset >= total {
		return []domain.Movie{}, total, nil
	}
	end := min(offset+limit, total)
	return all[offset:end], total, nil
}

func (r *memoryRelations) Toggle(_ context.Context, kind domain.ListKind, email, movieID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.movies[movieID] {
		return false, apperrors.NotFound("movie", movieID)
	}
	k := r.key(kind, email, movieID)
	if r.rows[k] {
		delete(r.rows, k)
		return false, nil
	}
	r.rows[k] = true
	return true, nil
}

func (r *memoryRelations) Remove(_ context.Context, kind domain.ListKind, email, movieID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.movies[movieID] {
		return apperrors.NotFound("movie", movieID)
	}
	delete(r.rows, r.key(kind, email, movieID))
	return nil
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type noopCache struct{}

func (noopCache) Get(context.Context, string, string, string, any) (bool, error) { return false, nil }
func (noopCache) Set(context.Context, string, string, string, any) error         { return nil }
func (noopCache) Invalidate(context.Context, string) error                       { return nil }

type noopPublisher struct{}

func (noopPublisher) PublishToggled(context.Context, domain.ToggledEvent) error { return nil }

func moviesN(n int) []domain.Movie {
	out := make([]domain.Movie, n)
	for i := range out {
		out[i] = domain.Movie{ID: "m-" + string(rune('a'+i%26)), Favorited: true}
	}
	return out
}
