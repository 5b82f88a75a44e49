package domain

// Movie is a catalog entry. Favorited and WatchLater are never stored on
// the movie; they are resolved for the identity making the request.
type Movie struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Synopsis   string `json:"synopsis"`
	Released   int    `json:"released"`
	Genre      string `json:"genre"`
	Image      string `json:"image,omitempty"`
	Favorited  bool   `json:"favorited"`
	WatchLater bool   `json:"watchLater"`
}

// MovieSeed is the insert shape used when loading the catalog.
type MovieSeed struct {
	ID       string
	Title    string
	Synopsis string
	Released int
	Genre    string
	Image    string
}
