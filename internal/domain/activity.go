package domain

import (
	"fmt"
	"time"
)

type ActivityType string

const (
	ActivityFavorited  ActivityType = "FAVORITED"
	ActivityWatchLater ActivityType = "WATCH_LATER"
)

// ParseActivityType accepts the stored form of an activity.
func ParseActivityType(s string) (ActivityType, error) {
	switch t := ActivityType(s); t {
	case ActivityFavorited, ActivityWatchLater:
		return t, nil
	default:
		return "", fmt.Errorf("unknown activity type %q", s)
	}
}

// Activity is one entry of a user's feed, newest first.
type Activity struct {
	ID         string       `json:"id"`
	UserEmail  string       `json:"-"`
	MovieID    string       `json:"movieId"`
	MovieTitle string       `json:"title"`
	Type       ActivityType `json:"activity"`
	CreatedAt  time.Time    `json:"timestamp"`
}
