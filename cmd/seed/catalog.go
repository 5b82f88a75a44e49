package main

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
)

// movieNamespace keeps seeded ids stable across runs so re-seeding updates
// rows instead of duplicating them.
var movieNamespace = uuid.MustParse("6f1c2b8e-3d4a-4e5f-9a7b-0c1d2e3f4a5b")

var genres = []string{
	"Action", "Adventure", "Animation", "Comedy", "Crime", "Documentary",
	"Drama", "Fantasy", "Horror", "Mystery", "Romance", "Sci-Fi", "Thriller", "Western",
}

var (
	titleOpeners = []string{
		"The Last", "Return of the", "Beyond the", "Night of the", "Edge of",
		"Shadows of", "The Silent", "Children of the", "Empire of", "A Door to",
	}
	titleNouns = []string{
		"Harbor", "Machine", "Frontier", "Garden", "Signal", "Kingdom",
		"Stranger", "Orbit", "Canyon", "Lighthouse", "Archive", "Tide",
	}
	synopsisTemplates = []string{
		"A %s story about a stranger who arrives at the %s and never leaves.",
		"When the %s goes quiet, a reluctant hero must cross the %s.",
		"Two rivals, one %s, and a secret buried beneath the %s.",
	}
)

// movieID derives the stable id of the i-th seeded movie.
func movieID(i int) string {
	return uuid.NewSHA1(movieNamespace, []byte(fmt.Sprintf("movie:%d", i))).String()
}

// generateMovies builds count movies released between firstYear and
// lastYear. The same seed always yields the same catalog.
func generateMovies(count int, seed int64, firstYear, lastYear int) []domain.MovieSeed {
	rng := rand.New(rand.NewSource(seed))
	span := lastYear - firstYear + 1

	movies := make([]domain.MovieSeed, 0, count)
	for i := 0; i < count; i++ {
		genre := genres[rng.Intn(len(genres))]
		noun := titleNouns[rng.Intn(len(titleNouns))]
		title := titleOpeners[rng.Intn(len(titleOpeners))] + " " + noun
		if i >= len(titleOpeners)*len(titleNouns) {
			title = fmt.Sprintf("%s %d", title, i/(len(titleOpeners)*len(titleNouns))+1)
		}
		tmpl := synopsisTemplates[rng.Intn(len(synopsisTemplates))]

		movies = append(movies, domain.MovieSeed{
			ID:       movieID(i),
			Title:    title,
			Synopsis: fmt.Sprintf(tmpl, strings.ToLower(genre), strings.ToLower(noun)),
			Released: firstYear + rng.Intn(span),
			Genre:    genre,
			Image:    fmt.Sprintf("https://picsum.photos/seed/%d/300/450", i),
		})
	}
	return movies
}
