// Package urlstate maps navigation query parameters to and from a
// catalog.FilterSortState. Encoded queries are canonical: parameters at their
// default value are omitted.
package urlstate

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/hpungsan/bestiary/internal/catalog"
)

// Query parameter names.
const (
	ParamSearch    = "q"
	ParamCategory  = "type"
	ParamSortBy    = "sortBy"
	ParamSortOrder = "sortOrder"
	ParamPage      = "page"
	ParamFavorites = "favorites"
)

var managedParams = []string{ParamSearch, ParamCategory, ParamSortBy, ParamSortOrder, ParamPage, ParamFavorites}

// Decode reads a FilterSortState from query parameters. Absent or unparsable
// values fall back to catalog.DefaultState.
func Decode(q url.Values) catalog.FilterSortState {
	s := catalog.DefaultState()

	s.Search = q.Get(ParamSearch)
	s.Category = q.Get(ParamCategory)
	if by, ok := catalog.ParseSortBy(q.Get(ParamSortBy)); ok {
		s.SortBy = by
	}
	if order, ok := catalog.ParseSortOrder(q.Get(ParamSortOrder)); ok {
		s.SortOrder = order
	}
	if page, err := strconv.Atoi(q.Get(ParamPage)); err == nil && page > 0 {
		s.Page = page
	}
	s.ShowFavoritesOnly = q.Get(ParamFavorites) == "true"

	return s
}

// DecodeString parses a raw query string (with or without a leading "?") and
// decodes it. Malformed pairs are skipped.
func DecodeString(raw string) catalog.FilterSortState {
	return Decode(ParseQuery(raw))
}

// ParseQuery parses raw leniently, keeping every pair that decodes.
func ParseQuery(raw string) url.Values {
	// ParseQuery returns the pairs it could decode alongside the first error.
	q, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if q == nil {
		q = url.Values{}
	}
	return q
}

// Encode writes state onto a copy of prior. Managed parameters at their
// default value are removed; unrelated parameters in prior are kept.
func Encode(state catalog.FilterSortState, prior url.Values) url.Values {
	out := url.Values{}
	for k, v := range prior {
		out[k] = append([]string(nil), v...)
	}
	for _, k := range managedParams {
		out.Del(k)
	}

	def := catalog.DefaultState()
	if state.Search != "" {
		out.Set(ParamSearch, state.Search)
	}
	if state.Category != "" {
		out.Set(ParamCategory, state.Category)
	}
	if state.SortBy != "" && state.SortBy != def.SortBy {
		out.Set(ParamSortBy, string(state.SortBy))
	}
	if state.SortOrder != "" && state.SortOrder != def.SortOrder {
		out.Set(ParamSortOrder, string(state.SortOrder))
	}
	if state.Page > 1 {
		out.Set(ParamPage, strconv.Itoa(state.Page))
	}
	if state.ShowFavoritesOnly {
		out.Set(ParamFavorites, "true")
	}
	return out
}

// Update is a partial change to a FilterSortState. Nil fields are left alone.
type Update struct {
	Search            *string
	Category          *string
	SortBy            *catalog.SortBy
	SortOrder         *catalog.SortOrder
	Page              *int
	ShowFavoritesOnly *bool
}

// resetsPage reports whether u changes the result set, which invalidates the
// current pagination position.
func (u Update) resetsPage() bool {
	return u.Search != nil || u.Category != nil || u.SortBy != nil || u.SortOrder != nil
}

// Merge applies u to s. Any change to search, category, sortBy or sortOrder
// moves back to page 1, even if u also names a page.
func Merge(s catalog.FilterSortState, u Update) catalog.FilterSortState {
	if u.Search != nil {
		s.Search = *u.Search
	}
	if u.Category != nil {
		s.Category = *u.Category
	}
	if u.SortBy != nil {
		s.SortBy = *u.SortBy
	}
	if u.SortOrder != nil {
		s.SortOrder = *u.SortOrder
	}
	if u.Page != nil {
		s.Page = max(*u.Page, 1)
	}
	if u.ShowFavoritesOnly != nil {
		s.ShowFavoritesOnly = *u.ShowFavoritesOnly
	}
	if u.resetsPage() {
		s.Page = 1
	}
	return s
}

// Apply decodes current, merges u, and encodes the next location.
func Apply(current url.Values, u Update) url.Values {
	return Encode(Merge(Decode(current), u), current)
}

// Reset returns an empty location: every parameter is dropped in one step.
func Reset() url.Values {
	return url.Values{}
}

// Canonical re-encodes raw so that equal states produce equal strings.
func Canonical(raw string) string {
	q := ParseQuery(raw)
	return Encode(Decode(q), q).Encode()
}
