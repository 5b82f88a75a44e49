package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
	"github.com/bcart01v/atlas-cinema-guru/pkg/database"
)

// ActivityRepository implements repository.ActivityRepository using
// PostgreSQL.
type ActivityRepository struct {
	pool database.Pool
}

func NewActivityRepository(pool database.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

func (r *ActivityRepository) List(ctx context.Context, email string, limit, offset int) (_ []domain.Activity, _ int, err error) {
	query := `
		SELECT id, user_email, movie_id, movie_title, activity, created_at,
		       count(*) OVER() AS total_count
		FROM activities
		WHERE user_email = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	ctx, end := database.TraceQuery(ctx, "ListActivities", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, email, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var (
		activities []domain.Activity
		total      int
	)
	for rows.Next() {
		var (
			a   domain.Activity
			typ string
		)
		if err := rows.Scan(&a.ID, &a.UserEmail, &a.MovieID, &a.MovieTitle, &typ, &a.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan activity row: %w", err)
		}
		if a.Type, err = domain.ParseActivityType(typ); err != nil {
			return nil, 0, fmt.Errorf("activity %s: %w", a.ID, err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate activity rows: %w", err)
	}

	if len(activities) == 0 && offset > 0 {
		if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM activities WHERE user_email = $1`, email).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count activities: %w", err)
		}
	}
	if activities == nil {
		activities = []domain.Activity{}
	}
	return activities, total, nil
}

// insertActivity records a feed entry inside the caller's transaction.
// The title is denormalised so the feed survives catalog edits.
func insertActivity(ctx context.Context, q database.DBTX, email, movieID, title string, typ domain.ActivityType) error {
	_, err := q.Exec(ctx, `
		INSERT INTO activities (id, user_email, movie_id, movie_title, activity)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), email, movieID, title, string(typ))
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}
