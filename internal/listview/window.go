package listview

import "fmt"

// Window is the pagination control for one list: where the user is and how
// far they can go.
type Window struct {
	CurrentPage int
	TotalPages  int
}

// HasPrev reports whether a previous page exists.
func (w Window) HasPrev() bool { return w.CurrentPage > 1 }

// HasNext reports whether a next page exists.
func (w Window) HasNext() bool { return w.CurrentPage < w.TotalPages }

// Prev returns the previous page, or the current page when there is none.
func (w Window) Prev() int {
	if !w.HasPrev() {
		return w.CurrentPage
	}
	return w.CurrentPage - 1
}

// Next returns the next page, or the current page when there is none.
func (w Window) Next() int {
	if !w.HasNext() {
		return w.CurrentPage
	}
	return w.CurrentPage + 1
}

func (w Window) Label() string {
	return fmt.Sprintf("Page %d of %d", w.CurrentPage, w.TotalPages)
}
