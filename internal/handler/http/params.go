package http

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
	apperrors "github.com/bcart01v/atlas-cinema-guru/pkg/errors"
	"github.com/bcart01v/atlas-cinema-guru/pkg/pagination"
	"github.com/bcart01v/atlas-cinema-guru/pkg/validator"
)

// ParseListQuery reads page, minYear, maxYear, query and genres from values.
// Absent years default to 0 and the calendar year of now. Invalid values are
// rejected, never clamped.
func ParseListQuery(values url.Values, now time.Time) (domain.ListQuery, error) {
	page, err := pagination.ParsePage(values.Get("page"))
	if err != nil {
		return domain.ListQuery{}, err
	}
	minYear, err := parseYear(values, "minYear", 0)
	if err != nil {
		return domain.ListQuery{}, err
	}
	maxYear, err := parseYear(values, "maxYear", now.Year())
	if err != nil {
		return domain.ListQuery{}, err
	}
	if minYear > maxYear {
		return domain.ListQuery{}, apperrors.InvalidParameter("minYear", "must not be greater than maxYear")
	}

	q := domain.ListQuery{
		Page:    page,
		MinYear: minYear,
		MaxYear: maxYear,
		Query:   strings.TrimSpace(values.Get("query")),
		Genres:  parseGenres(values.Get("genres")),
	}
	if err := validator.Validate(q); err != nil {
		return domain.ListQuery{}, err
	}
	return q, nil
}

func parseYear(values url.Values, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return fallback, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidParameter(name, "must be an integer")
	}
	if year < 0 {
		return 0, apperrors.InvalidParameter(name, "must not be negative")
	}
	return year, nil
}

// parseGenres splits a comma-separated list, dropping blanks and repeats.
// The result is sorted so equal selections share a cache key.
func parseGenres(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var genres []string
	for _, g := range strings.Split(raw, ",") {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		genres = append(genres, g)
	}
	slices.Sort(genres)
	return genres
}
