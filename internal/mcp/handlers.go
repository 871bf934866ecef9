package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/bestiary/internal/catalog"
	"github.com/hpungsan/bestiary/internal/config"
	"github.com/hpungsan/bestiary/internal/errors"
	"github.com/hpungsan/bestiary/internal/ops"
	"github.com/hpungsan/bestiary/internal/prefs"
)

// Handlers wraps the catalog, preference stores and config for MCP tool handlers.
type Handlers struct {
	store *catalog.Store
	prefs *prefs.State
	cfg   *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store *catalog.Store, state *prefs.State, cfg *config.Config) *Handlers {
	return &Handlers{store: store, prefs: state, cfg: cfg}
}

// Request types for each tool

// ListRequest represents the arguments for entity_list.
type ListRequest struct {
	Page      int    `json:"page,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Search    string `json:"search,omitempty"`
	Type      string `json:"type,omitempty"`
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
}

// SearchRequest represents the arguments for entity_search.
type SearchRequest struct {
	Query string `json:"query"`
	Type  string `json:"type,omitempty"`
}

// IDRequest represents the arguments for tools addressed by entity id.
type IDRequest struct {
	ID int `json:"id"`
}

// NoteSetRequest represents the arguments for note_set.
type NoteSetRequest struct {
	ID   int    `json:"id"`
	Note string `json:"note"`
}

// ThemeRequest represents the arguments for theme_get and theme_set.
type ThemeRequest struct {
	Theme   string `json:"theme,omitempty"`
	Ambient string `json:"ambient,omitempty"`
}

// HandleList handles the entity_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.store, h.cfg, ops.ListInput{
		Page:      input.Page,
		Limit:     input.Limit,
		Search:    input.Search,
		Type:      input.Type,
		SortBy:    input.SortBy,
		SortOrder: input.SortOrder,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSearch handles the entity_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Search(ctx, h.store, h.cfg, ops.SearchInput{Query: input.Query, Type: input.Type})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGet handles the entity_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(ctx, h.store, ops.FetchInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCategories handles the entity_categories tool call.
func (h *Handlers) HandleCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Categories(ctx, h.store)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFavoriteToggle handles the favorite_toggle tool call.
func (h *Handlers) HandleFavoriteToggle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ToggleFavorite(ctx, h.store, h.prefs.Favorites, ops.FavoriteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFavoriteList handles the favorite_list tool call.
func (h *Handlers) HandleFavoriteList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListFavorites(ctx, h.store, h.prefs.Favorites)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleNoteGet handles the note_get tool call.
func (h *Handlers) HandleNoteGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.GetNote(ctx, h.store, h.prefs.Notes, ops.NoteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleNoteSet handles the note_set tool call.
func (h *Handlers) HandleNoteSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NoteSetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SetNote(ctx, h.store, h.prefs.Notes, ops.SetNoteInput{ID: input.ID, Note: input.Note})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleNoteClear handles the note_clear tool call.
func (h *Handlers) HandleNoteClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ClearNote(ctx, h.store, h.prefs.Notes, ops.NoteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleThemeGet handles the theme_get tool call.
func (h *Handlers) HandleThemeGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ThemeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.GetTheme(ctx, h.prefs.Theme, input.Ambient)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleThemeSet handles the theme_set tool call.
func (h *Handlers) HandleThemeSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ThemeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SetTheme(ctx, h.prefs.Theme, ops.SetThemeInput{Theme: input.Theme, Ambient: input.Ambient})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// errorResult creates an MCP error result from an error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var bErr *errors.BestiaryError
	if stderrors.As(err, &bErr) {
		errorObj := map[string]any{
			"code":    bErr.Code,
			"message": bErr.Message,
			"status":  bErr.Status,
		}
		// Internal error details can carry file paths or SQL text
		if bErr.Code != errors.ErrInternal && bErr.Details != nil {
			errorObj["details"] = bErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
