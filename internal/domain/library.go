package domain

// ListKind names one of a user's personal movie lists.
type ListKind string

const (
	KindFavorites  ListKind = "favorites"
	KindWatchLater ListKind = "watch_later"
)

func (k ListKind) Valid() bool {
	return k == KindFavorites || k == KindWatchLater
}

// ActivityType is the feed entry written when a movie enters this list.
func (k ListKind) ActivityType() ActivityType {
	if k == KindWatchLater {
		return ActivityWatchLater
	}
	return ActivityFavorited
}

// Label is the human-readable list name used in error messages.
func (k ListKind) Label() string {
	if k == KindWatchLater {
		return "watch later items"
	}
	return "favorites"
}

// ToggleResult is the membership state after a toggle or remove.
type ToggleResult struct {
	MovieID string   `json:"movieId"`
	Kind    ListKind `json:"kind"`
	Active  bool     `json:"active"`
}

// ToggledEvent is published after a membership change commits.
type ToggledEvent struct {
	UserEmail string   `json:"user_email"`
	MovieID   string   `json:"movie_id"`
	Kind      ListKind `json:"kind"`
	Active    bool     `json:"active"`
}
