package postgres

import (
	"fmt"
	"strings"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
)

// whereBuilder accumulates SQL conditions with positional arguments.
type whereBuilder struct {
	conditions []string
	args       []any
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conditions = append(w.conditions, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereBuilder) next() int {
	return len(w.args) + 1
}

func (w *whereBuilder) clause() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conditions, " AND ")
}

// applyFilters adds the year range, title search and genre conditions on
// the movies table aliased m.
func (w *whereBuilder) applyFilters(f domain.Filters) {
	w.add("m.released >= $%d", f.MinYear)
	w.add("m.released <= $%d", f.MaxYear)
	if f.Query != "" {
		w.add(`m.title ILIKE $%d ESCAPE '\'`, "%"+escapeLike(f.Query)+"%")
	}
	if len(f.Genres) > 0 {
		w.add("m.genre = ANY($%d)", f.Genres)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// relationTable maps a list kind to its table. Kinds are a closed set so
// the result is safe to interpolate.
func relationTable(kind domain.ListKind) (string, error) {
	switch kind {
	case domain.KindFavorites:
		return "favorites", nil
	case domain.KindWatchLater:
		return "watch_later", nil
	default:
		return "", fmt.Errorf("unknown list kind %q", kind)
	}
}

// flagColumns returns the favorited and watch_later select expressions for
// movies aliased m, given the positional parameter holding the email.
func flagColumns(emailArg int) string {
	return fmt.Sprintf(`EXISTS (SELECT 1 FROM favorites f WHERE f.user_email = $%[1]d AND f.movie_id = m.id) AS favorited,
		       EXISTS (SELECT 1 FROM watch_later w WHERE w.user_email = $%[1]d AND w.movie_id = m.id) AS watch_later`, emailArg)
}
