package ops

import (
	"context"

	"github.com/hpungsan/bestiary/internal/catalog"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID int
}

// Fetch returns the full record for an id, synthesizing one for gaps in
// [1, catalog.MaxID].
func Fetch(ctx context.Context, store *catalog.Store, input FetchInput) (*catalog.Entity, error) {
	return store.Get(input.ID)
}

// CategoryRef names a category and the path listing it.
type CategoryRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CategoriesOutput contains the result of the Categories operation.
type CategoriesOutput struct {
	Results []CategoryRef `json:"results"`
}

// Categories lists every category in lexicographic order.
func Categories(ctx context.Context, store *catalog.Store) (*CategoriesOutput, error) {
	names := store.Categories()
	out := &CategoriesOutput{Results: make([]CategoryRef, len(names))}
	for i, name := range names {
		out.Results[i] = CategoryRef{Name: name, URL: "/entities/categories/" + name}
	}
	return out, nil
}
