package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hpungsan/bestiary/internal/catalog"
	"github.com/hpungsan/bestiary/internal/config"
	"github.com/hpungsan/bestiary/internal/prefs"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"entity", "favorite", "note", "theme"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"entity_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"entity_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
	"entity_get": {
		def:     getToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGet },
	},
	"entity_categories": {
		def:     categoriesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCategories },
	},
	"favorite_toggle": {
		def:     favoriteToggleToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFavoriteToggle },
	},
	"favorite_list": {
		def:     favoriteListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFavoriteList },
	},
	"note_get": {
		def:     noteGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNoteGet },
	},
	"note_set": {
		def:     noteSetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNoteSet },
	},
	"note_clear": {
		def:     noteClearToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNoteClear },
	},
	"theme_get": {
		def:     themeGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleThemeGet },
	},
	"theme_set": {
		def:     themeSetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleThemeSet },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "favorite_toggle" → "favorite").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	// Build set of types for O(1) lookup
	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	// Collect tools belonging to disabled types
	tools := make([]string, 0)
	for name := range toolRegistry {
		typ := GetTypeForTool(name)
		if typeSet[typ] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with Bestiary tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(store *catalog.Store, state *prefs.State, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"bestiary",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(store, state, cfg)

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run serves tools over stdio until the client disconnects, then flushes
// pending favorite writes.
func Run(ctx context.Context, store *catalog.Store, state *prefs.State, cfg *config.Config, version string, logger *zap.Logger) error {
	s := NewServer(store, state, cfg, version)
	err := server.ServeStdio(s)
	if ferr := state.Close(ctx); ferr != nil {
		logger.Warn("final favorites flush failed", zap.Error(ferr))
	}
	return err
}
