package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/bestiary/internal/catalog"
	"github.com/hpungsan/bestiary/internal/config"
	"github.com/hpungsan/bestiary/internal/errors"
	"github.com/hpungsan/bestiary/internal/ops"
	"github.com/hpungsan/bestiary/internal/prefs"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// colorSchemeHeader is the client hint carrying the ambient color scheme.
const colorSchemeHeader = "Sec-CH-Prefers-Color-Scheme"

// Handlers contains HTTP route handlers for the JSON API.
type Handlers struct {
	store  *catalog.Store
	prefs  *prefs.State
	cfg    *config.Config
	logger *zap.Logger
}

// HandleList handles GET /entities: filter, sort and paginate.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := ops.ListInput{
		Page:      parseIntParam(r, "page", 1),
		Limit:     parseIntParam(r, "limit", h.cfg.PageSize),
		Search:    q.Get("search"),
		Type:      q.Get("type"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}

	result, err := ops.List(r.Context(), h.store, h.cfg, input)
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleCategories handles GET /entities/categories.
func (h *Handlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Categories(r.Context(), h.store)
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleDetail handles GET /entities/{id}: one full record.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := ops.ParseID(r.PathValue("id"))
	if err != nil {
		renderError(w, err)
		return
	}

	entity, err := ops.Fetch(r.Context(), h.store, ops.FetchInput{ID: id})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, entity)
}

// HandleBrowse handles GET /browse: navigation parameters to a rendered view.
func (h *Handlers) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Browse(r.Context(), h.store, h.prefs.Favorites, h.cfg, ops.BrowseInput{Query: r.URL.RawQuery})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleFavorites handles GET /favorites.
func (h *Handlers) HandleFavorites(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListFavorites(r.Context(), h.store, h.prefs.Favorites)
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleToggleFavorite handles POST /favorites/{id}/toggle.
func (h *Handlers) HandleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	h.favoriteChange(w, r, ops.ToggleFavorite)
}

// HandleAddFavorite handles PUT /favorites/{id}.
func (h *Handlers) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	h.favoriteChange(w, r, ops.AddFavorite)
}

// HandleRemoveFavorite handles DELETE /favorites/{id}.
func (h *Handlers) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.favoriteChange(w, r, ops.RemoveFavorite)
}

type favoriteOp func(ctx context.Context, store *catalog.Store, favs *prefs.Favorites, input ops.FavoriteInput) (*ops.FavoriteOutput, error)

func (h *Handlers) favoriteChange(w http.ResponseWriter, r *http.Request, op favoriteOp) {
	id, err := ops.ParseID(r.PathValue("id"))
	if err != nil {
		renderError(w, err)
		return
	}

	result, err := op(r.Context(), h.store, h.prefs.Favorites, ops.FavoriteInput{ID: id})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleNotes handles GET /notes.
func (h *Handlers) HandleNotes(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListNotes(r.Context(), h.prefs.Notes)
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleGetNote handles GET /notes/{id}.
func (h *Handlers) HandleGetNote(w http.ResponseWriter, r *http.Request) {
	id, err := ops.ParseID(r.PathValue("id"))
	if err != nil {
		renderError(w, err)
		return
	}

	result, err := ops.GetNote(r.Context(), h.store, h.prefs.Notes, ops.NoteInput{ID: id})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

type setNoteBody struct {
	Note string `json:"note"`
}

// HandleSetNote handles PUT /notes/{id} with body {"note": "..."}.
func (h *Handlers) HandleSetNote(w http.ResponseWriter, r *http.Request) {
	id, err := ops.ParseID(r.PathValue("id"))
	if err != nil {
		renderError(w, err)
		return
	}

	var body setNoteBody
	if err := decodeBody(r, &body); err != nil {
		renderError(w, err)
		return
	}

	result, err := ops.SetNote(r.Context(), h.store, h.prefs.Notes, ops.SetNoteInput{ID: id, Note: body.Note})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleClearNote handles DELETE /notes/{id}.
func (h *Handlers) HandleClearNote(w http.ResponseWriter, r *http.Request) {
	id, err := ops.ParseID(r.PathValue("id"))
	if err != nil {
		renderError(w, err)
		return
	}

	result, err := ops.ClearNote(r.Context(), h.store, h.prefs.Notes, ops.NoteInput{ID: id})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleGetTheme handles GET /theme.
func (h *Handlers) HandleGetTheme(w http.ResponseWriter, r *http.Request) {
	result, err := ops.GetTheme(r.Context(), h.prefs.Theme, ambientScheme(r))
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

type setThemeBody struct {
	Theme string `json:"theme"`
}

// HandleSetTheme handles PUT /theme with body {"theme": "light|dark|system"}.
func (h *Handlers) HandleSetTheme(w http.ResponseWriter, r *http.Request) {
	var body setThemeBody
	if err := decodeBody(r, &body); err != nil {
		renderError(w, err)
		return
	}

	result, err := ops.SetTheme(r.Context(), h.prefs.Theme, ops.SetThemeInput{Theme: body.Theme, Ambient: ambientScheme(r)})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// decodeBody reads a bounded JSON body into v.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.NewInvalidRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

// ambientScheme reads the color-scheme client hint. The hint is a quoted
// structured-header string, e.g. "dark".
func ambientScheme(r *http.Request) string {
	return strings.Trim(strings.TrimSpace(r.Header.Get(colorSchemeHeader)), `"`)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
