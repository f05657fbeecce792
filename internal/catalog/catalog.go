// Package catalog loads the list of creatures questions are drawn from.
package catalog

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrCatalogLoad wraps every network or decoding failure of the one-time fetch.
	ErrCatalogLoad = errors.New("catalog load failed")
	// ErrEmptyCatalog is returned when the catalog loaded but holds no entries.
	ErrEmptyCatalog = errors.New("catalog is empty")
)

// Entry is a single catalog record. Entries are immutable once loaded.
type Entry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Provider supplies the full catalog.
type Provider interface {
	Fetch(ctx context.Context) ([]Entry, error)
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(ctx context.Context) ([]Entry, error)

func (f ProviderFunc) Fetch(ctx context.Context) ([]Entry, error) { return f(ctx) }

// Validate checks the entry invariants: positive ids, non-empty names, and
// uniqueness of both within the catalog.
func Validate(entries []Entry) error {
	if len(entries) == 0 {
		return ErrEmptyCatalog
	}
	ids := make(map[int]struct{}, len(entries))
	names := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if e.ID <= 0 {
			return fmt.Errorf("%w: entry %d has non-positive id %d", ErrCatalogLoad, i, e.ID)
		}
		if e.Name == "" {
			return fmt.Errorf("%w: entry %d (id %d) has an empty name", ErrCatalogLoad, i, e.ID)
		}
		if _, dup := ids[e.ID]; dup {
			return fmt.Errorf("%w: duplicate id %d", ErrCatalogLoad, e.ID)
		}
		if _, dup := names[e.Name]; dup {
			return fmt.Errorf("%w: duplicate name %q", ErrCatalogLoad, e.Name)
		}
		ids[e.ID] = struct{}{}
		names[e.Name] = struct{}{}
	}
	return nil
}

// ImageURL builds the artwork URL for an entry id from a printf template
// holding a single %d verb.
func ImageURL(template string, id int) string {
	return fmt.Sprintf(template, id)
}
