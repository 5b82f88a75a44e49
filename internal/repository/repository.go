package repository

import (
	"context"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
)

// MovieRepository defines catalog persistence operations.
type MovieRepository interface {
	// Search returns one page of catalog movies matching f, with the
	// favorite and watch-later flags resolved for email, and the total
	// number of matches.
	Search(ctx context.Context, email string, f domain.Filters, limit, offset int) ([]domain.Movie, int, error)

	// Genres returns the distinct genres in the catalog, sorted.
	Genres(ctx context.Context) ([]string, error)

	// Upsert inserts or updates catalog entries and returns how many rows
	// were written.
	Upsert(ctx context.Context, movies []domain.MovieSeed) (int, error)
}

// RelationRepository defines persistence for the per-user favorite and
// watch-later lists.
type RelationRepository interface {
	// List returns one page of the user's list, newest addition first, and
	// the total number of matches. Flags are resolved for email.
	List(ctx context.Context, kind domain.ListKind, email string, f domain.Filters, limit, offset int) ([]domain.Movie, int, error)

	// Toggle flips membership of movieID in the user's list based on the
	// stored state and returns the new state. Concurrent toggles of the
	// same (kind, email, movie) are serialised. Adding records an activity.
	Toggle(ctx context.Context, kind domain.ListKind, email, movieID string) (bool, error)

	// Remove ensures movieID is absent from the user's list.
	Remove(ctx context.Context, kind domain.ListKind, email, movieID string) error
}

// ActivityRepository defines read access to the activity feed.
type ActivityRepository interface {
	// List returns one page of the user's activities, newest first, and
	// the total count.
	List(ctx context.Context, email string, limit, offset int) ([]domain.Activity, int, error)
}
