package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
	"github.com/bcart01v/atlas-cinema-guru/pkg/database"
)

// MovieRepository implements repository.MovieRepository using PostgreSQL.
type MovieRepository struct {
	pool database.Pool
}

func NewMovieRepository(pool database.Pool) *MovieRepository {
	return &MovieRepository{pool: pool}
}

// Search lists catalog movies, most recent release first.
func (r *MovieRepository) Search(ctx context.Context, email string, f domain.Filters, limit, offset int) (_ []domain.Movie, _ int, err error) {
	w := &whereBuilder{args: []any{email}}
	w.applyFilters(f)

	query := fmt.Sprintf(`
		SELECT m.id, m.title, m.synopsis, m.released, m.genre, COALESCE(m.image, ''),
		       %s,
		       count(*) OVER() AS total_count
		FROM movies m
		%s
		ORDER BY m.released DESC, m.title, m.id
		LIMIT $%d OFFSET $%d`,
		flagColumns(1), w.clause(), w.next(), w.next()+1,
	)

	ctx, end := database.TraceQuery(ctx, "SearchMovies", query)
	defer func() { end(err) }()

	movies, total, err := scanMovies(ctx, r.pool, query, append(w.args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("search movies: %w", err)
	}

	// An offset past the end yields no rows and so no window count. The
	// count has no flag columns, so it numbers its filters from $1.
	if len(movies) == 0 && offset > 0 {
		cw := &whereBuilder{}
		cw.applyFilters(f)
		countQuery := "SELECT count(*) FROM movies m " + cw.clause()
		if err := r.pool.QueryRow(ctx, countQuery, cw.args...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count movies: %w", err)
		}
	}
	return movies, total, nil
}

func (r *MovieRepository) Genres(ctx context.Context) (_ []string, err error) {
	query := `SELECT DISTINCT genre FROM movies WHERE genre <> '' ORDER BY genre`

	ctx, end := database.TraceQuery(ctx, "ListGenres", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	genres, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan genres: %w", err)
	}
	if genres == nil {
		genres = []string{}
	}
	return genres, nil
}

// Upsert writes all movies in one transaction, updating entries whose id
// already exists.
func (r *MovieRepository) Upsert(ctx context.Context, movies []domain.MovieSeed) (int, error) {
	query := `
		INSERT INTO movies (id, title, synopsis, released, genre, image)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
		    synopsis = EXCLUDED.synopsis,
		    released = EXCLUDED.released,
		    genre = EXCLUDED.genre,
		    image = EXCLUDED.image`

	written := 0
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, m := range movies {
			if _, err := tx.Exec(ctx, query, m.ID, m.Title, m.Synopsis, m.Released, m.Genre, m.Image); err != nil {
				return fmt.Errorf("upsert movie %s: %w", m.ID, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// scanMovies runs a listing query whose columns are the movie fields, the
// two flags and a window total, in that order.
func scanMovies(ctx context.Context, q database.DBTX, query string, args ...any) ([]domain.Movie, int, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		movies []domain.Movie
		total  int
	)
	for rows.Next() {
		var m domain.Movie
		if err := rows.Scan(
			&m.ID,
			&m.Title,
			&m.Synopsis,
			&m.Released,
			&m.Genre,
			&m.Image,
			&m.Favorited,
			&m.WatchLater,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan movie row: %w", err)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate movie rows: %w", err)
	}
	if movies == nil {
		movies = []domain.Movie{}
	}
	return movies, total, nil
}
