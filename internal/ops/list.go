package ops

import (
	"context"

	"github.com/hpungsan/bestiary/internal/catalog"
	"github.com/hpungsan/bestiary/internal/config"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Page      int    // default: 1
	Limit     int    // default: page_size, max: max_page_size
	Search    string // case-insensitive substring of the name
	Type      string // category, case-insensitive
	SortBy    string // unknown values fall back to id
	SortOrder string // unknown values fall back to asc
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Count   int               `json:"count"`
	Results []catalog.Summary `json:"results"`
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
}

// List filters, sorts and paginates the catalog.
func List(ctx context.Context, store *catalog.Store, cfg *config.Config, input ListInput) (*ListOutput, error) {
	limit := resolveLimit(input.Limit, cfg)

	state := catalog.DefaultState()
	state.Search = input.Search
	state.Category = input.Type
	state.SortBy, _ = catalog.ParseSortBy(input.SortBy)
	state.SortOrder, _ = catalog.ParseSortOrder(input.SortOrder)
	state.Page = max(input.Page, 1)

	page := catalog.Query(store.All(), state, limit)

	return &ListOutput{
		Count:   page.Total,
		Results: page.Items,
		Page:    state.Page,
		Limit:   limit,
	}, nil
}

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query string
	Type  string
}

// Search returns the first SearchLimit matches for a name fragment in id order.
func Search(ctx context.Context, store *catalog.Store, cfg *config.Config, input SearchInput) (*ListOutput, error) {
	limit := SearchLimit
	if cfg != nil && cfg.MaxPageSize > 0 {
		limit = min(limit, cfg.MaxPageSize)
	}
	return List(ctx, store, cfg, ListInput{
		Page:   1,
		Limit:  limit,
		Search: input.Query,
		Type:   input.Type,
	})
}
