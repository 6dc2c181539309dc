package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Road Trip: Côte d'Azur": "road-trip-cote-d-azur",
		"  Japan 2024  ":         "japan-2024",
		"Sci-Fi/Fantasy":         "sci-fi-fantasy",
		"東京":                     "",
		"":                       "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestFoldForSearch(t *testing.T) {
	assert.Equal(t, "creme brulee", FoldForSearch("Crème Brûlée"))
	assert.Equal(t, "東京", FoldForSearch(" 東京 "))
}
