package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/mind-engage/whosthat/internal/catalog"
)

// OptionCount is the number of names shown per question.
const OptionCount = 4

var (
	ErrEmptyCatalog        = catalog.ErrEmptyCatalog
	ErrInsufficientCatalog = catalog.ErrInsufficientCatalog
)

// Rand is the randomness source the game draws from. *rand.Rand satisfies it;
// tests substitute scripted sources.
type Rand interface {
	IntN(n int) int
}

// NewRand returns a randomly seeded source.
func NewRand() Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Sample picks one entry uniformly at random.
func Sample(rng Rand, entries []catalog.Entry) (catalog.Entry, error) {
	if len(entries) == 0 {
		return catalog.Entry{}, ErrEmptyCatalog
	}
	return entries[rng.IntN(len(entries))], nil
}

// Distractors collects count distinct names that differ from correct.Name by
// rejection sampling. It fails fast with ErrInsufficientCatalog instead of
// looping forever when the catalog cannot supply enough names.
func Distractors(rng Rand, entries []catalog.Entry, correct catalog.Entry, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}
	if n := distinctOthers(entries, correct.Name); n < count {
		return nil, fmt.Errorf("%w: need %d distractors, catalog offers %d", ErrInsufficientCatalog, count, n)
	}
	used := map[string]struct{}{correct.Name: {}}
	out := make([]string, 0, count)
	for len(out) < count {
		e, err := Sample(rng, entries)
		if err != nil {
			return nil, err
		}
		if _, seen := used[e.Name]; seen {
			continue
		}
		used[e.Name] = struct{}{}
		out = append(out, e.Name)
	}
	return out, nil
}

func distinctOthers(entries []catalog.Entry, exclude string) int {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Name != exclude {
			seen[e.Name] = struct{}{}
		}
	}
	return len(seen)
}

// Shuffle permutes items in place (Fisher–Yates) and returns the same slice.
func Shuffle[T any](rng Rand, items []T) []T {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
	return items
}
