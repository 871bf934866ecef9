package urlstate

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hpungsan/bestiary/internal/catalog"
)

func ptr[T any](v T) *T { return &v }

func TestDecode_Defaults(t *testing.T) {
	got := Decode(url.Values{})
	if diff := cmp.Diff(catalog.DefaultState(), got); diff != "" {
		t.Errorf("Decode(empty) mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_AllParams(t *testing.T) {
	got := DecodeString("?q=char&type=fire&sortBy=name&sortOrder=desc&page=3&favorites=true")

	want := catalog.FilterSortState{
		Search:            "char",
		Category:          "fire",
		SortBy:            catalog.SortByName,
		SortOrder:         catalog.SortDesc,
		Page:              3,
		ShowFavoritesOnly: true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_UnparsableFallsBack(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"bad sortBy", "sortBy=color"},
		{"bad sortOrder", "sortOrder=up"},
		{"bad page", "page=abc"},
		{"zero page", "page=0"},
		{"negative page", "page=-2"},
		{"favorites not true", "favorites=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeString(tt.query)
			if diff := cmp.Diff(catalog.DefaultState(), got); diff != "" {
				t.Errorf("DecodeString(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestDecodeString_SkipsMalformedPairs(t *testing.T) {
	got := DecodeString("q=%zz&type=water")
	if got.Category != "water" {
		t.Errorf("Category = %q, want water", got.Category)
	}
	if got.Search != "" {
		t.Errorf("Search = %q, want empty", got.Search)
	}
}

func TestEncode_MinimalURL(t *testing.T) {
	if got := Encode(catalog.DefaultState(), nil).Encode(); got != "" {
		t.Errorf("Encode(default) = %q, want empty", got)
	}

	s := catalog.DefaultState()
	s.Search = "saur"
	s.Page = 2
	got := Encode(s, nil)
	want := url.Values{"q": {"saur"}, "page": {"2"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Encode mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_RemovesParamsRevertedToDefault(t *testing.T) {
	prior := url.Values{
		"q":         {"char"},
		"type":      {"fire"},
		"sortBy":    {"name"},
		"sortOrder": {"desc"},
		"page":      {"4"},
		"favorites": {"true"},
	}

	got := Encode(catalog.DefaultState(), prior)
	if len(got) != 0 {
		t.Errorf("Encode(default, prior) = %v, want no params", got)
	}
	if prior.Get("q") != "char" {
		t.Error("Encode mutated prior")
	}
}

func TestEncode_KeepsUnrelatedParams(t *testing.T) {
	prior := url.Values{"utm_source": {"newsletter"}, "q": {"old"}}

	s := catalog.DefaultState()
	s.Category = "water"
	got := Encode(s, prior)

	want := url.Values{"utm_source": {"newsletter"}, "type": {"water"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Encode mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_DecodeEncodeDecode(t *testing.T) {
	queries := []string{
		"",
		"q=char",
		"q=&type=&page=1",
		"sortBy=id&sortOrder=asc",
		"sortBy=weight&sortOrder=desc&page=7",
		"page=abc&favorites=false",
		"favorites=true&type=Fire&q=Mr%20Mime",
		"sortBy=base_experience",
		"q=a&q=b",
	}

	for _, raw := range queries {
		t.Run(raw, func(t *testing.T) {
			first := DecodeString(raw)
			canonical := Encode(first, nil).Encode()
			second := DecodeString(canonical)
			if diff := cmp.Diff(first, second); diff != "" {
				t.Errorf("round trip of %q via %q mismatch (-want +got):\n%s", raw, canonical, diff)
			}
			if again := Canonical(canonical); again != canonical {
				t.Errorf("Canonical(%q) = %q, want idempotent", canonical, again)
			}
		})
	}
}

func TestApply_ResultSetChangesResetPage(t *testing.T) {
	current := url.Values{"page": {"5"}, "type": {"fire"}}

	tests := []struct {
		name string
		u    Update
	}{
		{"search", Update{Search: ptr("char")}},
		{"category", Update{Category: ptr("water")}},
		{"sortBy", Update{SortBy: ptr(catalog.SortByName)}},
		{"sortOrder", Update{SortOrder: ptr(catalog.SortDesc)}},
		{"search with page", Update{Search: ptr("x"), Page: ptr(3)}},
		{"same category", Update{Category: ptr("fire")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := Apply(current, tt.u)
			if next.Has(ParamPage) {
				t.Errorf("page = %q, want removed (page 1)", next.Get(ParamPage))
			}
			if Decode(next).Page != 1 {
				t.Errorf("decoded page = %d, want 1", Decode(next).Page)
			}
		})
	}
}

func TestApply_PageAndFavoritesKeepPosition(t *testing.T) {
	current := url.Values{"page": {"5"}, "q": {"saur"}}

	next := Apply(current, Update{ShowFavoritesOnly: ptr(true)})
	if next.Get(ParamPage) != "5" {
		t.Errorf("page = %q, want 5", next.Get(ParamPage))
	}
	if next.Get(ParamFavorites) != "true" {
		t.Errorf("favorites = %q, want true", next.Get(ParamFavorites))
	}

	next = Apply(next, Update{Page: ptr(6), ShowFavoritesOnly: ptr(false)})
	if next.Get(ParamPage) != "6" {
		t.Errorf("page = %q, want 6", next.Get(ParamPage))
	}
	if next.Has(ParamFavorites) {
		t.Error("favorites should be removed once false")
	}
	if next.Get(ParamSearch) != "saur" {
		t.Errorf("q = %q, want saur", next.Get(ParamSearch))
	}
}

func TestApply_ClearingSearchRemovesParam(t *testing.T) {
	next := Apply(url.Values{"q": {"char"}, "sortBy": {"name"}}, Update{Search: ptr("")})
	if next.Has(ParamSearch) {
		t.Error("q should be removed when search is cleared")
	}
	if next.Get(ParamSortBy) != "name" {
		t.Errorf("sortBy = %q, want name", next.Get(ParamSortBy))
	}
}

func TestReset(t *testing.T) {
	if got := Reset(); len(got) != 0 {
		t.Errorf("Reset() = %v, want empty", got)
	}
}
