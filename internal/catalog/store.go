package catalog

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hpungsan/bestiary/internal/errors"
)

// Store is the immutable, id-ordered collection of entities.
// Every id in [1, MaxID] resolves, either to a dataset record or a placeholder.
type Store struct {
	entities []Entity
	byID     map[int]int // id -> index into entities
}

// NewStore validates records, derives image locators, and gap-fills ids in
// [1, MaxID] with placeholders. Records outside that range are kept.
func NewStore(records []Entity, imageBaseURL string) (*Store, error) {
	byID := make(map[int]Entity, MaxID)
	names := make(map[string]int, len(records))

	for i, r := range records {
		if r.ID <= 0 {
			return nil, fmt.Errorf("record %d: id must be positive, got %d", i, r.ID)
		}
		if _, dup := byID[r.ID]; dup {
			return nil, fmt.Errorf("record %d: duplicate id %d", i, r.ID)
		}
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			return nil, fmt.Errorf("record %d (id %d): name is required", i, r.ID)
		}
		if other, dup := names[r.Name]; dup {
			return nil, fmt.Errorf("record %d (id %d): name %q already used by id %d", i, r.ID, r.Name, other)
		}
		if r.Height <= 0 || r.Weight <= 0 {
			return nil, fmt.Errorf("record %d (id %d): height and weight must be positive", i, r.ID)
		}
		if r.ExperienceValue < 0 {
			return nil, fmt.Errorf("record %d (id %d): experienceValue must be non-negative", i, r.ID)
		}
		r.Categories = canonicalCategories(r.Categories)
		if len(r.Categories) == 0 {
			return nil, fmt.Errorf("record %d (id %d): at least one category is required", i, r.ID)
		}
		r.ImageURL = ImageURL(imageBaseURL, r.ID)
		r.ArtworkURL = ArtworkURL(imageBaseURL, r.ID)

		byID[r.ID] = r
		names[r.Name] = r.ID
	}

	for id := 1; id <= MaxID; id++ {
		if _, ok := byID[id]; ok {
			continue
		}
		p := Placeholder(id, imageBaseURL)
		if other, dup := names[p.Name]; dup {
			return nil, fmt.Errorf("id %d: placeholder name %q already used by id %d", id, p.Name, other)
		}
		byID[id] = p
	}

	entities := make([]Entity, 0, len(byID))
	for _, e := range byID {
		entities = append(entities, e)
	}
	slices.SortFunc(entities, func(a, b Entity) int { return a.ID - b.ID })

	index := make(map[int]int, len(entities))
	for i, e := range entities {
		index[e.ID] = i
	}

	return &Store{entities: entities, byID: index}, nil
}

// All returns a copy of every entity in id order.
func (s *Store) All() []Entity {
	out := make([]Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// Len returns the number of entities in the store.
func (s *Store) Len() int {
	return len(s.entities)
}

// Get returns the entity with the given id, or a NOT_FOUND error.
func (s *Store) Get(id int) (*Entity, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, errors.NewNotFound(strconv.Itoa(id))
	}
	e := s.entities[i]
	e.Categories = slices.Clone(e.Categories)
	return &e, nil
}

// Has reports whether id resolves to a record.
func (s *Store) Has(id int) bool {
	_, ok := s.byID[id]
	return ok
}

// Categories returns every category in the store, deduplicated and sorted.
func (s *Store) Categories() []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, e := range s.entities {
		for _, c := range e.Categories {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	slices.Sort(out)
	return out
}

// canonicalCategories trims, lowercases and deduplicates, keeping first-seen order.
func canonicalCategories(in []string) []string {
	lower := cases.Lower(language.Und)
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = lower.String(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
