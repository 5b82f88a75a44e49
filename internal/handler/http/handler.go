package http

import (
	"context"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
)

// LibraryService is the favorites and watch-later use case.
type LibraryService interface {
	List(ctx context.Context, kind domain.ListKind, q domain.ListQuery, email string) (domain.Page[domain.Movie], error)
	Toggle(ctx context.Context, kind domain.ListKind, movieID, email string) (domain.ToggleResult, error)
	Remove(ctx context.Context, kind domain.ListKind, movieID, email string) (domain.ToggleResult, error)
}

type CatalogService interface {
	Titles(ctx context.Context, q domain.ListQuery, email string) (domain.Page[domain.Movie], error)
	Genres(ctx context.Context) ([]string, error)
}

type ActivityService interface {
	List(ctx context.Context, page int, email string) (domain.Page[domain.Activity], error)
}
