package ops

import (
	"context"

	"github.com/hpungsan/bestiary/internal/catalog"
	"github.com/hpungsan/bestiary/internal/config"
	"github.com/hpungsan/bestiary/internal/prefs"
	"github.com/hpungsan/bestiary/internal/urlstate"
)

// BrowseInput contains parameters for the Browse operation.
type BrowseInput struct {
	// Query is a raw navigation query string (q, type, sortBy, sortOrder,
	// page, favorites). A leading "?" is allowed.
	Query string
}

// BrowseOutput is one rendered view of the catalog.
type BrowseOutput struct {
	State      catalog.FilterSortState `json:"state"`
	Location   string                  `json:"location"`
	Count      int                     `json:"count"`
	Results    []catalog.Summary       `json:"results"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	TotalPages int                     `json:"totalPages"`
}

// Browse decodes navigation parameters and renders the matching page.
// With favorites-only set, non-favorites are dropped from the page after
// pagination; Count still reports the unfiltered total.
func Browse(ctx context.Context, store *catalog.Store, favs *prefs.Favorites, cfg *config.Config, input BrowseInput) (*BrowseOutput, error) {
	q := urlstate.ParseQuery(input.Query)
	state := urlstate.Decode(q)
	limit := resolveLimit(0, cfg)

	page := catalog.Query(store.All(), state, limit)
	results := page.Items
	if state.ShowFavoritesOnly && favs != nil {
		results = catalog.FilterFavorites(results, favs.Has)
	}

	return &BrowseOutput{
		State:      state,
		Location:   urlstate.Encode(state, q).Encode(),
		Count:      page.Total,
		Results:    results,
		Page:       state.Page,
		Limit:      limit,
		TotalPages: catalog.TotalPages(page.Total, limit),
	}, nil
}
