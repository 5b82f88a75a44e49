package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMovies_Deterministic(t *testing.T) {
	a := generateMovies(50, 7, 1970, 2000)
	b := generateMovies(50, 7, 1970, 2000)

	require.Len(t, a, 50)
	assert.Equal(t, a, b)
}

func TestGenerateMovies_Bounds(t *testing.T) {
	movies := generateMovies(300, 1, 1990, 1995)

	ids := make(map[string]bool)
	for _, m := range movies {
		assert.GreaterOrEqual(t, m.Released, 1990)
		assert.LessOrEqual(t, m.Released, 1995)
		assert.Contains(t, genres, m.Genre)
		assert.NotEmpty(t, m.Title)
		_, err := uuid.Parse(m.ID)
		assert.NoError(t, err)
		ids[m.ID] = true
	}
	assert.Len(t, ids, 300)
}

func TestMovieID_Stable(t *testing.T) {
	assert.Equal(t, movieID(3), movieID(3))
	assert.NotEqual(t, movieID(3), movieID(4))
}
