package mcp

import "github.com/mark3labs/mcp-go/mcp"

var listToolDef = mcp.NewTool("entity_list",
	mcp.WithDescription("List catalog entities with filtering, sorting and pagination."),
	mcp.WithNumber("page", mcp.Description("1-based page number (default 1)"), mcp.Min(1)),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)"), mcp.Min(1)),
	mcp.WithString("search", mcp.Description("Case-insensitive name substring")),
	mcp.WithString("type", mcp.Description("Category filter, e.g. fire")),
	mcp.WithString("sort_by",
		mcp.Description("Sort key; unknown values fall back to id"),
		mcp.Enum("id", "name", "height", "weight", "experienceValue"),
	),
	mcp.WithString("sort_order",
		mcp.Description("Sort direction; unknown values fall back to asc"),
		mcp.Enum("asc", "desc"),
	),
)

var searchToolDef = mcp.NewTool("entity_search",
	mcp.WithDescription("Find up to 50 entities whose name contains the query, in id order."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Name fragment")),
	mcp.WithString("type", mcp.Description("Optional category filter")),
)

var getToolDef = mcp.NewTool("entity_get",
	mcp.WithDescription("Get the full record for an entity id."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Entity id")),
)

var categoriesToolDef = mcp.NewTool("entity_categories",
	mcp.WithDescription("List every category, sorted."),
)

var favoriteToggleToolDef = mcp.NewTool("favorite_toggle",
	mcp.WithDescription("Flip favorite membership for an entity. The change is written after a short delay."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Entity id")),
)

var favoriteListToolDef = mcp.NewTool("favorite_list",
	mcp.WithDescription("List favorite entities in id order."),
)

var noteGetToolDef = mcp.NewTool("note_get",
	mcp.WithDescription("Get the note attached to an entity."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Entity id")),
)

var noteSetToolDef = mcp.NewTool("note_set",
	mcp.WithDescription("Attach a note to an entity. Surrounding whitespace is trimmed; blank notes are rejected."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Entity id")),
	mcp.WithString("note", mcp.Required(), mcp.Description("Note text (Markdown)")),
)

var noteClearToolDef = mcp.NewTool("note_clear",
	mcp.WithDescription("Remove the note attached to an entity."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Entity id")),
)

var themeGetToolDef = mcp.NewTool("theme_get",
	mcp.WithDescription("Get the color theme preference and its resolution."),
	mcp.WithString("ambient", mcp.Description("Ambient color scheme used to resolve system"), mcp.Enum("light", "dark")),
)

var themeSetToolDef = mcp.NewTool("theme_set",
	mcp.WithDescription("Set the color theme preference."),
	mcp.WithString("theme", mcp.Required(), mcp.Enum("light", "dark", "system")),
	mcp.WithString("ambient", mcp.Description("Ambient color scheme used to resolve system"), mcp.Enum("light", "dark")),
)
