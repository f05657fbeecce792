package game_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mind-engage/whosthat/internal/game"
)

func TestFormatName(t *testing.T) {
	cases := map[string]string{
		"mr-mime":          "Mr mime",
		"pikachu":          "Pikachu",
		"tapu-koko":        "Tapu koko",
		"ho-oh":            "Ho oh",
		"porygon-z":        "Porygon z",
		"-dash":            "-dash",
		"é-clair":          "É clair",
		"":                 "",
		"Already-Cased-Up": "Already Cased Up",
	}
	for in, want := range cases {
		assert.Equal(t, want, game.FormatName(in), in)
	}
}
