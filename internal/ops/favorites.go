package ops

import (
	"context"

	"github.com/hpungsan/bestiary/internal/catalog"
	"github.com/hpungsan/bestiary/internal/prefs"
)

// FavoriteInput names one entity.
type FavoriteInput struct {
	ID int
}

// FavoriteOutput reports membership after a change.
type FavoriteOutput struct {
	ID       int  `json:"id"`
	Favorite bool `json:"favorite"`
	Changed  bool `json:"changed"`
}

// ToggleFavorite flips membership of an entity.
func ToggleFavorite(ctx context.Context, store *catalog.Store, favs *prefs.Favorites, input FavoriteInput) (*FavoriteOutput, error) {
	if err := requireEntity(store, input.ID); err != nil {
		return nil, err
	}
	return &FavoriteOutput{ID: input.ID, Favorite: favs.Toggle(input.ID), Changed: true}, nil
}

// AddFavorite marks an entity as a favorite.
func AddFavorite(ctx context.Context, store *catalog.Store, favs *prefs.Favorites, input FavoriteInput) (*FavoriteOutput, error) {
	if err := requireEntity(store, input.ID); err != nil {
		return nil, err
	}
	changed := favs.Add(input.ID)
	return &FavoriteOutput{ID: input.ID, Favorite: true, Changed: changed}, nil
}

// RemoveFavorite unmarks an entity.
func RemoveFavorite(ctx context.Context, store *catalog.Store, favs *prefs.Favorites, input FavoriteInput) (*FavoriteOutput, error) {
	if err := requireEntity(store, input.ID); err != nil {
		return nil, err
	}
	changed := favs.Remove(input.ID)
	return &FavoriteOutput{ID: input.ID, Favorite: false, Changed: changed}, nil
}

// FavoritesOutput lists the favorites.
type FavoritesOutput struct {
	IDs     []int             `json:"ids"`
	Results []catalog.Summary `json:"results"`
}

// ListFavorites returns favorite ids in ascending order with their summaries.
// Ids the catalog no longer resolves are listed but have no summary.
func ListFavorites(ctx context.Context, store *catalog.Store, favs *prefs.Favorites) (*FavoritesOutput, error) {
	ids := favs.IDs()
	out := &FavoritesOutput{IDs: ids, Results: make([]catalog.Summary, 0, len(ids))}
	for _, id := range ids {
		e, err := store.Get(id)
		if err != nil {
			continue
		}
		out.Results = append(out.Results, e.Summarize())
	}
	return out, nil
}
