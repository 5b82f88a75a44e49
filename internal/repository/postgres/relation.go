package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
	"github.com/bcart01v/atlas-cinema-guru/pkg/database"
	apperrors "github.com/bcart01v/atlas-cinema-guru/pkg/errors"
)

// RelationRepository implements repository.RelationRepository using
// PostgreSQL. Favorites and watch-later share a table layout.
type RelationRepository struct {
	pool database.Pool
}

func NewRelationRepository(pool database.Pool) *RelationRepository {
	return &RelationRepository{pool: pool}
}

func (r *RelationRepository) List(ctx context.Context, kind domain.ListKind, email string, f domain.Filters, limit, offset int) (_ []domain.Movie, _ int, err error) {
	table, err := relationTable(kind)
	if err != nil {
		return nil, 0, err
	}

	w := &whereBuilder{}
	w.add("rel.user_email = $%d", email)
	w.applyFilters(f)

	from := fmt.Sprintf("FROM %s rel JOIN movies m ON m.id = rel.movie_id", table)
	query := fmt.Sprintf(`
		SELECT m.id, m.title, m.synopsis, m.released, m.genre, COALESCE(m.image, ''),
		       %s,
		       count(*) OVER() AS total_count
		%s
		%s
		ORDER BY rel.created_at DESC, m.id
		LIMIT $%d OFFSET $%d`,
		flagColumns(1), from, w.clause(), w.next(), w.next()+1,
	)

	ctx, end := database.TraceQuery(ctx, "List_"+table, query)
	defer func() { end(err) }()

	movies, total, err := scanMovies(ctx, r.pool, query, append(w.args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", table, err)
	}

	if len(movies) == 0 && offset > 0 {
		countQuery := "SELECT count(*) " + from + " " + w.clause()
		if err := r.pool.QueryRow(ctx, countQuery, w.args...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count %s: %w", table, err)
		}
	}
	return movies, total, nil
}

// Toggle runs inside one transaction holding an advisory lock on
// (kind, email, movie), so a concurrent toggle waits and then observes this
// one's result.
func (r *RelationRepository) Toggle(ctx context.Context, kind domain.ListKind, email, movieID string) (active bool, err error) {
	table, err := relationTable(kind)
	if err != nil {
		return false, err
	}

	ctx, end := database.TraceQuery(ctx, "Toggle_"+table, "toggle "+table)
	defer func() { end(err) }()

	err = database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		title, err := lockAndLookup(ctx, tx, kind, email, movieID)
		if err != nil {
			return err
		}

		ct, err := tx.Exec(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE user_email = $1 AND movie_id = $2`, table),
			email, movieID)
		if err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
		if ct.RowsAffected() > 0 {
			active = false
			return nil
		}

		if _, err := tx.Exec(ctx,
			fmt.Sprintf(`INSERT INTO %s (user_email, movie_id) VALUES ($1, $2)`, table),
			email, movieID); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
		if err := insertActivity(ctx, tx, email, movieID, title, kind.ActivityType()); err != nil {
			return err
		}
		active = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return active, nil
}

// Remove deletes the relation if present. It takes the same lock as Toggle
// so the two never interleave.
func (r *RelationRepository) Remove(ctx context.Context, kind domain.ListKind, email, movieID string) (err error) {
	table, err := relationTable(kind)
	if err != nil {
		return err
	}

	ctx, end := database.TraceQuery(ctx, "Remove_"+table, "remove "+table)
	defer func() { end(err) }()

	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := lockAndLookup(ctx, tx, kind, email, movieID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE user_email = $1 AND movie_id = $2`, table),
			email, movieID); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
		return nil
	})
}

// lockAndLookup takes the transaction-scoped advisory lock for the
// relation and returns the movie title, or NotFound.
func lockAndLookup(ctx context.Context, tx pgx.Tx, kind domain.ListKind, email, movieID string) (string, error) {
	lockKey := string(kind) + "|" + email + "|" + movieID
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey); err != nil {
		return "", fmt.Errorf("acquire relation lock: %w", err)
	}

	var title string
	err := tx.QueryRow(ctx, `SELECT title FROM movies WHERE id = $1`, movieID).Scan(&title)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperrors.NotFound("movie", movieID)
	}
	if err != nil {
		return "", fmt.Errorf("look up movie: %w", err)
	}
	return title, nil
}
