package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/bestiary/internal/errors"
	"github.com/hpungsan/bestiary/internal/prefs"
)

// TestFullWorkflow exercises a browsing session:
// list → fetch → favorite → note → theme → browse favorites → reload
func TestFullWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 1. List fire entities by name
	listOut, err := List(ctx, f.store, f.cfg, ListInput{Type: "fire", SortBy: "name"})
	require.NoError(t, err)
	require.Equal(t, 12, listOut.Count)
	require.Equal(t, "arcanine", listOut.Results[0].Name)
	id := listOut.Results[0].ID

	// 2. Fetch the first one
	entity, err := Fetch(ctx, f.store, FetchInput{ID: id})
	require.NoError(t, err)
	require.Equal(t, []string{"fire"}, entity.Categories)

	// 3. Favorite it and flush
	favOut, err := ToggleFavorite(ctx, f.store, f.prefs.Favorites, FavoriteInput{ID: id})
	require.NoError(t, err)
	require.True(t, favOut.Favorite)
	require.NoError(t, f.prefs.Favorites.Flush(ctx))

	// 4. Annotate it
	_, err = SetNote(ctx, f.store, f.prefs.Notes, SetNoteInput{ID: id, Note: "loyal"})
	require.NoError(t, err)

	// 5. Dark theme
	_, err = SetTheme(ctx, f.prefs.Theme, SetThemeInput{Theme: "dark"})
	require.NoError(t, err)

	// 6. Browse favorites on the page that holds it
	browseOut, err := Browse(ctx, f.store, f.prefs.Favorites, f.cfg, BrowseInput{Query: "type=fire&sortBy=name&favorites=true"})
	require.NoError(t, err)
	require.Len(t, browseOut.Results, 1)
	require.Equal(t, id, browseOut.Results[0].ID)
	require.Equal(t, 12, browseOut.Count)

	// 7. Reload everything from durable storage
	reloaded := prefs.Open(ctx, f.storage, prefs.Options{Clock: f.clock})
	require.True(t, reloaded.Favorites.Has(id))
	text, ok := reloaded.Notes.Get(id)
	require.True(t, ok)
	require.Equal(t, "loyal", text)
	require.Equal(t, prefs.ThemeDark, reloaded.Theme.Current())

	// 8. Unknown entity stays NOT_FOUND everywhere
	_, err = GetNote(ctx, f.store, f.prefs.Notes, NoteInput{ID: 500})
	require.True(t, errors.Is(err, errors.ErrNotFound))
}
