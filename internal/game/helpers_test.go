package game_test

import (
	"math/rand/v2"

	"github.com/mind-engage/whosthat/internal/catalog"
)

var starters = []catalog.Entry{
	{ID: 1, Name: "bulbasaur"},
	{ID: 4, Name: "charmander"},
	{ID: 7, Name: "squirtle"},
	{ID: 25, Name: "pikachu"},
}

// scripted replays vals (reduced mod n), then counts upward so rejection
// loops always make progress.
type scripted struct {
	vals []int
	i    int
}

func script(vals ...int) *scripted { return &scripted{vals: vals} }

func (s *scripted) IntN(n int) int {
	var v int
	if s.i < len(s.vals) {
		v = s.vals[s.i]
	} else {
		v = s.i - len(s.vals)
	}
	s.i++
	return v % n
}

func seeded(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }

func bigCatalog(n int) []catalog.Entry {
	out := make([]catalog.Entry, n)
	for i := range out {
		out[i] = catalog.Entry{ID: i + 1, Name: "mon-" + string(rune('a'+i%26)) + string(rune('a'+i/26))}
	}
	return out
}
