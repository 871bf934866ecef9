package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hpungsan/bestiary/internal/errors"
)

const testImageBase = "https://img.example/sprites"

func openBundled(t *testing.T) *Store {
	t.Helper()
	store, err := Open("", testImageBase)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return store
}

func TestOpen_BundledCoversDenseRange(t *testing.T) {
	store := openBundled(t)

	if store.Len() != MaxID {
		t.Fatalf("Len() = %d, want %d", store.Len(), MaxID)
	}
	all := store.All()
	for i, e := range all {
		if e.ID != i+1 {
			t.Fatalf("All()[%d].ID = %d, want %d (id order)", i, e.ID, i+1)
		}
	}
}

func TestGet_DatasetRecord(t *testing.T) {
	store := openBundled(t)

	e, err := store.Get(4)
	if err != nil {
		t.Fatalf("Get(4) error = %v", err)
	}
	if e.Name != "charmander" {
		t.Errorf("Name = %q, want charmander", e.Name)
	}
	if e.ImageURL != testImageBase+"/4.png" {
		t.Errorf("ImageURL = %q", e.ImageURL)
	}
	if e.ArtworkURL != testImageBase+"/other/official-artwork/4.png" {
		t.Errorf("ArtworkURL = %q", e.ArtworkURL)
	}
}

func TestGet_SynthesizesMissingID(t *testing.T) {
	store := openBundled(t)

	e, err := store.Get(25)
	if err != nil {
		t.Fatalf("Get(25) error = %v", err)
	}

	want := Entity{
		ID:              25,
		Name:            "entity-25",
		Categories:      []string{"normal"},
		Height:          10,
		Weight:          100,
		ExperienceValue: 100,
		ImageURL:        testImageBase + "/25.png",
		ArtworkURL:      testImageBase + "/other/official-artwork/25.png",
	}
	if diff := cmp.Diff(want, *e); diff != "" {
		t.Errorf("Get(25) mismatch (-want +got):\n%s", diff)
	}
}

func TestGet_OutOfRangeIsNotFound(t *testing.T) {
	store := openBundled(t)

	for _, id := range []int{0, -1, 152, 999} {
		_, err := store.Get(id)
		if !errors.Is(err, errors.ErrNotFound) {
			t.Errorf("Get(%d) error = %v, want NOT_FOUND", id, err)
		}
		if store.Has(id) {
			t.Errorf("Has(%d) = true, want false", id)
		}
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	store := openBundled(t)

	e, _ := store.Get(1)
	e.Categories[0] = "mutated"

	again, _ := store.Get(1)
	if again.Categories[0] != "grass" {
		t.Errorf("store was mutated through Get result: %v", again.Categories)
	}
}

func TestNewStore_KeepsRecordsBeyondMaxID(t *testing.T) {
	store, err := NewStore([]Entity{
		{ID: 200, Name: "mew-two", Categories: []string{"psychic"}, Height: 20, Weight: 1220, ExperienceValue: 306},
	}, testImageBase)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	if store.Len() != MaxID+1 {
		t.Errorf("Len() = %d, want %d", store.Len(), MaxID+1)
	}
	if _, err := store.Get(200); err != nil {
		t.Errorf("Get(200) error = %v", err)
	}
}

func TestNewStore_RejectsNameClashWithPlaceholder(t *testing.T) {
	// Id 5 is missing, so its placeholder would also be named entity-5.
	_, err := NewStore([]Entity{
		{ID: 200, Name: "entity-5", Categories: []string{"fire"}, Height: 1, Weight: 1},
	}, testImageBase)
	if err == nil {
		t.Fatal("NewStore() expected error for placeholder name clash")
	}

	// With id 5 present there is no placeholder to clash with.
	if _, err := NewStore([]Entity{
		{ID: 5, Name: "charmeleon", Categories: []string{"fire"}, Height: 11, Weight: 190},
		{ID: 200, Name: "entity-5", Categories: []string{"fire"}, Height: 1, Weight: 1},
	}, testImageBase); err != nil {
		t.Errorf("NewStore() error = %v", err)
	}
}

func TestNewStore_CanonicalizesCategories(t *testing.T) {
	store, err := NewStore([]Entity{
		{ID: 1, Name: "a", Categories: []string{" Fire ", "FIRE", "Flying"}, Height: 1, Weight: 1},
	}, testImageBase)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	e, _ := store.Get(1)
	if diff := cmp.Diff([]string{"fire", "flying"}, e.Categories); diff != "" {
		t.Errorf("Categories mismatch (-want +got):\n%s", diff)
	}
}

func TestNewStore_Validation(t *testing.T) {
	valid := Entity{ID: 1, Name: "a", Categories: []string{"fire"}, Height: 1, Weight: 1}

	tests := []struct {
		name    string
		records []Entity
	}{
		{"zero id", []Entity{{ID: 0, Name: "a", Categories: []string{"fire"}, Height: 1, Weight: 1}}},
		{"duplicate id", []Entity{valid, valid}},
		{"duplicate name", []Entity{valid, {ID: 2, Name: "a", Categories: []string{"fire"}, Height: 1, Weight: 1}}},
		{"blank name", []Entity{{ID: 1, Name: "  ", Categories: []string{"fire"}, Height: 1, Weight: 1}}},
		{"no categories", []Entity{{ID: 1, Name: "a", Categories: []string{" "}, Height: 1, Weight: 1}}},
		{"zero height", []Entity{{ID: 1, Name: "a", Categories: []string{"fire"}, Weight: 1}}},
		{"negative experience", []Entity{{ID: 1, Name: "a", Categories: []string{"fire"}, Height: 1, Weight: 1, ExperienceValue: -1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewStore(tt.records, testImageBase); err == nil {
				t.Error("NewStore() expected error, got nil")
			}
		})
	}
}

func TestCategories_SortedAndDeduplicated(t *testing.T) {
	store, err := NewStore([]Entity{
		{ID: 1, Name: "a", Categories: []string{"water"}, Height: 1, Weight: 1},
		{ID: 2, Name: "b", Categories: []string{"fire", "water"}, Height: 1, Weight: 1},
	}, testImageBase)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	want := []string{"fire", "normal", "water"}
	if diff := cmp.Diff(want, store.Categories()); diff != "" {
		t.Errorf("Categories() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creatures.yaml")
	body := `
- id: 7
  name: squirtle
  categories: [water]
  height: 5
  weight: 90
  experienceValue: 63
`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	store, err := Open(path, testImageBase)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	e, err := store.Get(7)
	if err != nil {
		t.Fatalf("Get(7) error = %v", err)
	}
	if e.Name != "squirtle" || e.ExperienceValue != 63 {
		t.Errorf("Get(7) = %+v", e)
	}
	if e2, _ := store.Get(1); e2.Name != "entity-1" {
		t.Errorf("Get(1).Name = %q, want placeholder", e2.Name)
	}
}

func TestLoadFile_JSONRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creatures.json")
	if err := os.WriteFile(path, []byte(`[{"id":1,"name":"a","kind":"x"}]`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile() expected error for unknown field")
	}
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creatures.csv")
	if err := os.WriteFile(path, []byte("id,name\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile() expected error for .csv")
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"mr-mime":   "Mr Mime",
		"bulbasaur": "Bulbasaur",
		"entity-25": "Entity 25",
		"élan-vital": "Élan Vital",
		"ho-oh":     "Ho Oh",
		"mr--mime":  "Mr  Mime",
		"":          "",
	}
	for in, want := range tests {
		if got := DisplayName(in); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}
