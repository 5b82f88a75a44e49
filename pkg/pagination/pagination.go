package pagination

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/bcart01v/atlas-cinema-guru/pkg/errors"
)

// DefaultPerPage is the page size used when none is configured.
const DefaultPerPage = 6

// Params holds a validated page request.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// New builds Params for a 1-based page. A non-positive perPage falls back to
// DefaultPerPage.
func New(page, perPage int) Params {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		page = 1
	}
	return Params{
		Page:    page,
		PerPage: perPage,
		Offset:  (page - 1) * perPage,
	}
}

// ParsePage parses a raw page value. An empty value means page 1; anything
// that is not a positive integer is rejected rather than clamped.
func ParsePage(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, apperrors.InvalidParameter("page", "must be a positive integer")
	}
	return v, nil
}

// PageFromRequest reads the page query parameter of r.
func PageFromRequest(r *http.Request) (int, error) {
	return ParsePage(r.URL.Query().Get("page"))
}

// TotalPages returns the number of pages needed for totalCount items. An
// empty collection still has one (empty) page.
func TotalPages(totalCount, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if totalCount <= 0 {
		return 1
	}
	pages := totalCount / perPage
	if totalCount%perPage > 0 {
		pages++
	}
	return pages
}
