package domain

import (
	"strconv"
	"strings"
)

// ListQuery is a validated page request. Years are inclusive bounds on the
// release year.
type ListQuery struct {
	Page    int      `query:"page" validate:"min=1"`
	MinYear int      `query:"minYear" validate:"gte=0,ltefield=MaxYear"`
	MaxYear int      `query:"maxYear" validate:"gte=0"`
	Query   string   `query:"query" validate:"max=200"`
	Genres  []string `query:"genres" validate:"max=20,dive,min=1,max=64"`
}

// Filters is a ListQuery without its page.
type Filters struct {
	MinYear int
	MaxYear int
	Query   string
	Genres  []string
}

func (q ListQuery) Filters() Filters {
	return Filters{MinYear: q.MinYear, MaxYear: q.MaxYear, Query: q.Query, Genres: q.Genres}
}

// CacheKey renders the query as a stable string. Genres are expected to be
// normalised (sorted, de-duplicated) already.
func (q ListQuery) CacheKey() string {
	var b strings.Builder
	b.WriteString("p=")
	b.WriteString(strconv.Itoa(q.Page))
	b.WriteString("&min=")
	b.WriteString(strconv.Itoa(q.MinYear))
	b.WriteString("&max=")
	b.WriteString(strconv.Itoa(q.MaxYear))
	b.WriteString("&q=")
	b.WriteString(strings.ToLower(q.Query))
	b.WriteString("&g=")
	b.WriteString(strings.Join(q.Genres, ","))
	return b.String()
}

// Page is one page of a listing. TotalPages is at least 1.
type Page[T any] struct {
	Items      []T
	Page       int
	TotalPages int
}

// NewPage normalises nil items to an empty slice so it encodes as [].
func NewPage[T any](items []T, page, totalPages int) Page[T] {
	if items == nil {
		items = []T{}
	}
	if totalPages < 1 {
		totalPages = 1
	}
	return Page[T]{Items: items, Page: page, TotalPages: totalPages}
}
