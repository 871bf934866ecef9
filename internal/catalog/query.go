package catalog

import (
	"cmp"
	"slices"
	"strings"
)

// DefaultPageSize is the page window used when a caller does not pick one.
const DefaultPageSize = 20

// SortBy names the key a result set is ordered by.
type SortBy string

const (
	SortByID         SortBy = "id"
	SortByName       SortBy = "name"
	SortByHeight     SortBy = "height"
	SortByWeight     SortBy = "weight"
	SortByExperience SortBy = "experienceValue"
)

// ParseSortBy maps a wire value to a SortBy. "base_experience" is accepted as
// an alias of experienceValue.
func ParseSortBy(s string) (SortBy, bool) {
	switch s {
	case string(SortByID), string(SortByName), string(SortByHeight), string(SortByWeight), string(SortByExperience):
		return SortBy(s), true
	case "base_experience":
		return SortByExperience, true
	}
	return SortByID, false
}

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder maps a wire value to a SortOrder.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch s {
	case string(SortAsc), string(SortDesc):
		return SortOrder(s), true
	}
	return SortAsc, false
}

// FilterSortState is the structured view state produced by URL decoding and
// consumed by Query. It is a plain value; copies never share state.
type FilterSortState struct {
	Search            string    `json:"search"`
	Category          string    `json:"category"`
	SortBy            SortBy    `json:"sortBy"`
	SortOrder         SortOrder `json:"sortOrder"`
	Page              int       `json:"page"`
	ShowFavoritesOnly bool      `json:"showFavoritesOnly"`
}

// DefaultState returns the state used when no parameters are set.
func DefaultState() FilterSortState {
	return FilterSortState{
		SortBy:    SortByID,
		SortOrder: SortAsc,
		Page:      1,
	}
}

// Page is one window of a filtered, sorted result set.
type Page struct {
	// Total is the filtered count before pagination.
	Total int       `json:"total"`
	Items []Summary `json:"items"`
}

// Query filters entities by category then search text, sorts them stably by
// state.SortBy, and returns the page window for state.Page.
// ShowFavoritesOnly is not consulted; see FilterFavorites.
func Query(entities []Entity, state FilterSortState, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	filtered := make([]Entity, 0, len(entities))
	search := foldString(state.Search)
	for _, e := range entities {
		if state.Category != "" && !e.HasCategory(state.Category) {
			continue
		}
		if search != "" && !strings.Contains(foldString(e.Name), search) {
			continue
		}
		filtered = append(filtered, e)
	}

	slices.SortStableFunc(filtered, comparator(state.SortBy, state.SortOrder))

	total := len(filtered)
	page := max(state.Page, 1)
	items := make([]Summary, 0, min(pageSize, total))
	// Compare page numbers rather than offsets so a huge page cannot overflow.
	if page <= TotalPages(total, pageSize) {
		start := (page - 1) * pageSize
		end := min(start+pageSize, total)
		for _, e := range filtered[start:end] {
			items = append(items, e.Summarize())
		}
	}

	return Page{Total: total, Items: items}
}

// comparator orders by key; desc negates the comparison so equal keys keep
// their input order in both directions.
func comparator(by SortBy, order SortOrder) func(a, b Entity) int {
	var asc func(a, b Entity) int
	switch by {
	case SortByName:
		asc = func(a, b Entity) int { return strings.Compare(foldString(a.Name), foldString(b.Name)) }
	case SortByHeight:
		asc = func(a, b Entity) int { return cmp.Compare(a.Height, b.Height) }
	case SortByWeight:
		asc = func(a, b Entity) int { return cmp.Compare(a.Weight, b.Weight) }
	case SortByExperience:
		asc = func(a, b Entity) int { return cmp.Compare(a.ExperienceValue, b.ExperienceValue) }
	default:
		asc = func(a, b Entity) int { return cmp.Compare(a.ID, b.ID) }
	}

	if order == SortDesc {
		return func(a, b Entity) int { return asc(b, a) }
	}
	return asc
}

// FilterFavorites keeps the page items isFavorite accepts. It runs after
// pagination, so callers keep reporting the unfiltered Total.
func FilterFavorites(items []Summary, isFavorite func(id int) bool) []Summary {
	out := make([]Summary, 0, len(items))
	for _, it := range items {
		if isFavorite(it.ID) {
			out = append(out, it)
		}
	}
	return out
}

// TotalPages returns the number of pages of size pageSize needed for total items.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return pages
}
