package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/bestiary/internal/errors"
	"github.com/hpungsan/bestiary/internal/prefs"
)

func TestToggleFavorite_RejectsUnknownEntity(t *testing.T) {
	f := newFixture(t)

	_, err := ToggleFavorite(context.Background(), f.store, f.prefs.Favorites, FavoriteInput{ID: 152})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("ToggleFavorite(152) error = %v, want NOT_FOUND", err)
	}
}

func TestToggleFavorite_TwiceSettlesAbsentDurably(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	on, err := ToggleFavorite(ctx, f.store, f.prefs.Favorites, FavoriteInput{ID: 7})
	if err != nil || !on.Favorite {
		t.Fatalf("first toggle = %+v, %v", on, err)
	}
	off, err := ToggleFavorite(ctx, f.store, f.prefs.Favorites, FavoriteInput{ID: 7})
	if err != nil || off.Favorite {
		t.Fatalf("second toggle = %+v, %v", off, err)
	}

	f.clock.Advance(prefs.DefaultFlushDelay)

	raw, _, err := f.storage.GetItem(ctx, prefs.FavoritesKey)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if raw != "[]" {
		t.Errorf("durable favorites = %q, want []", raw)
	}

	// A fresh load sees the same settled state.
	reloaded := prefs.NewFavorites(f.storage, f.clock, prefs.DefaultFlushDelay, nil)
	reloaded.Load(ctx)
	if reloaded.Has(7) {
		t.Error("7 present after reload")
	}
}

func TestListFavorites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _ = AddFavorite(ctx, f.store, f.prefs.Favorites, FavoriteInput{ID: 9})
	_, _ = AddFavorite(ctx, f.store, f.prefs.Favorites, FavoriteInput{ID: 1})
	res, _ := AddFavorite(ctx, f.store, f.prefs.Favorites, FavoriteInput{ID: 1})
	if res.Changed {
		t.Error("second AddFavorite(1) reported a change")
	}

	out, err := ListFavorites(ctx, f.store, f.prefs.Favorites)
	if err != nil {
		t.Fatalf("ListFavorites failed: %v", err)
	}
	if len(out.IDs) != 2 || out.IDs[0] != 1 || out.IDs[1] != 9 {
		t.Errorf("IDs = %v, want [1 9]", out.IDs)
	}
	if len(out.Results) != 2 || out.Results[1].Name != "blastoise" {
		t.Errorf("Results = %+v", out.Results)
	}

	rm, err := RemoveFavorite(ctx, f.store, f.prefs.Favorites, FavoriteInput{ID: 9})
	if err != nil || !rm.Changed || rm.Favorite {
		t.Errorf("RemoveFavorite = %+v, %v", rm, err)
	}
}
