package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxID is the upper bound of the dense id range every store covers.
const MaxID = 151

// Placeholder attributes for ids in [1, MaxID] missing from the dataset.
const (
	PlaceholderCategory   = "normal"
	PlaceholderHeight     = 10
	PlaceholderWeight     = 100
	PlaceholderExperience = 100
)

// Entity is a single creature record.
type Entity struct {
	// ID is unique and positive.
	ID int `json:"id" yaml:"id"`

	// Name is unique within the store.
	Name string `json:"name" yaml:"name"`

	// Categories holds lowercase canonical category names, never empty.
	Categories []string `json:"categories" yaml:"categories"`

	// Height and Weight are in tenths of a unit.
	Height int `json:"height" yaml:"height"`
	Weight int `json:"weight" yaml:"weight"`

	ExperienceValue int `json:"experienceValue" yaml:"experienceValue"`

	// ImageURL and ArtworkURL are derived from ID when the store is built.
	ImageURL   string `json:"imageUrl" yaml:"-"`
	ArtworkURL string `json:"artworkUrl,omitempty" yaml:"-"`
}

// Summary is the projection of an Entity used in list pages.
type Summary struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	DetailLink string `json:"url"`
	ImageURL   string `json:"imageUrl"`
}

// HasCategory reports whether e carries category, compared case-insensitively.
func (e Entity) HasCategory(category string) bool {
	want := foldString(category)
	for _, c := range e.Categories {
		if foldString(c) == want {
			return true
		}
	}
	return false
}

// Summarize projects e for list output.
func (e Entity) Summarize() Summary {
	return Summary{
		ID:         e.ID,
		Name:       e.Name,
		DetailLink: DetailLink(e.ID),
		ImageURL:   e.ImageURL,
	}
}

// Placeholder synthesizes the record used for an id absent from the dataset.
func Placeholder(id int, imageBaseURL string) Entity {
	return Entity{
		ID:              id,
		Name:            "entity-" + strconv.Itoa(id),
		Categories:      []string{PlaceholderCategory},
		Height:          PlaceholderHeight,
		Weight:          PlaceholderWeight,
		ExperienceValue: PlaceholderExperience,
		ImageURL:        ImageURL(imageBaseURL, id),
		ArtworkURL:      ArtworkURL(imageBaseURL, id),
	}
}

// DetailLink returns the detail page path for id.
func DetailLink(id int) string {
	return fmt.Sprintf("/entity/%d", id)
}

// ImageURL returns the sprite locator for id under base.
func ImageURL(base string, id int) string {
	return fmt.Sprintf("%s/%d.png", strings.TrimRight(base, "/"), id)
}

// ArtworkURL returns the official artwork locator for id under base.
func ArtworkURL(base string, id int) string {
	return fmt.Sprintf("%s/other/official-artwork/%d.png", strings.TrimRight(base, "/"), id)
}

// DisplayName turns a slug like "mr-mime" into "Mr Mime".
func DisplayName(name string) string {
	words := strings.Split(name, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = cases.Title(language.Und, cases.NoLower).String(w)
	}
	return strings.Join(words, " ")
}
