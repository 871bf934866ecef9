package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/bestiary/internal/browse"
	"github.com/hpungsan/bestiary/internal/catalog"
	"github.com/hpungsan/bestiary/internal/client"
	"github.com/hpungsan/bestiary/internal/config"
	"github.com/hpungsan/bestiary/internal/errors"
	"github.com/hpungsan/bestiary/internal/ops"
	"github.com/hpungsan/bestiary/internal/prefs"
	"github.com/hpungsan/bestiary/internal/urlstate"
	"github.com/hpungsan/bestiary/internal/web"
)

// maxNoteBytes caps note text read from stdin.
const maxNoteBytes = 64 << 10

// appEnv holds what commands operate on. It is nil for --help and --version.
type appEnv struct {
	store  *catalog.Store
	prefs  *prefs.State
	cfg    *config.Config
	logger *zap.Logger
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *appEnv) *cli.App {
	app := &cli.App{
		Name:    "bestiary",
		Usage:   "Browsable creature catalog",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(env),
			listCmd(env),
			searchCmd(env),
			getCmd(env),
			categoriesCmd(env),
			favCmd(env),
			noteCmd(env),
			themeCmd(env),
			urlCmd(),
			browseCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Interface to listen on (default from config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port to listen on (default from config)"},
		},
		Action: func(c *cli.Context) error {
			bind := env.cfg.Bind
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			port := env.cfg.Port
			if c.IsSet("port") {
				port = c.Int("port")
			}

			deps := web.Deps{Catalog: env.store, Prefs: env.prefs, Config: env.cfg, Logger: env.logger}
			srv := web.NewServer(deps, bind, port)
			if err := web.Run(c.Context, srv, env.prefs, env.logger); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// listFlags are shared by list-style commands.
func listFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "page", Value: 1, Usage: "1-based page number"},
		&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Page size (default from config)"},
		&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "Name substring"},
		&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Category filter"},
		&cli.StringFlag{Name: "sort-by", Usage: "id|name|height|weight|experienceValue"},
		&cli.StringFlag{Name: "sort-order", Usage: "asc|desc"},
		&cli.BoolFlag{Name: "table", Usage: "Print a table instead of JSON"},
	}
}

// listCmd creates the list command.
func listCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List entities with filtering, sorting and pagination",
		Flags: listFlags(),
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, env.store, env.cfg, ops.ListInput{
				Page:      c.Int("page"),
				Limit:     c.Int("limit"),
				Search:    c.String("search"),
				Type:      c.String("type"),
				SortBy:    c.String("sort-by"),
				SortOrder: c.String("sort-order"),
			})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("table") {
				return outputTable(output)
			}
			return outputJSON(output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find up to 50 entities by name",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Category filter"},
			&cli.BoolFlag{Name: "table", Usage: "Print a table instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("query is required"))
			}
			output, err := ops.Search(c.Context, env.store, env.cfg, ops.SearchInput{
				Query: strings.Join(c.Args().Slice(), " "),
				Type:  c.String("type"),
			})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("table") {
				return outputTable(output)
			}
			return outputJSON(output)
		},
	}
}

// getCmd creates the get command.
func getCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the full record for an entity",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Fetch(c.Context, env.store, ops.FetchInput{ID: id})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// categoriesCmd creates the categories command.
func categoriesCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "List every category",
		Action: func(c *cli.Context) error {
			output, err := ops.Categories(c.Context, env.store)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

type favoriteOp func(ctx context.Context, store *catalog.Store, favs *prefs.Favorites, input ops.FavoriteInput) (*ops.FavoriteOutput, error)

// favChangeCmd builds a favorites subcommand that flushes before returning.
func favChangeCmd(env *appEnv, name, usage string, op favoriteOp) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return outputError(err)
			}
			output, err := op(c.Context, env.store, env.prefs.Favorites, ops.FavoriteInput{ID: id})
			if err != nil {
				return outputError(err)
			}
			if err := env.prefs.Favorites.Flush(c.Context); err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// favCmd creates the fav command group.
func favCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "fav",
		Usage: "Manage favorites",
		Subcommands: []*cli.Command{
			favChangeCmd(env, "toggle", "Flip favorite membership", ops.ToggleFavorite),
			favChangeCmd(env, "add", "Mark an entity as favorite", ops.AddFavorite),
			favChangeCmd(env, "remove", "Unmark a favorite", ops.RemoveFavorite),
			{
				Name:  "list",
				Usage: "List favorites",
				Action: func(c *cli.Context) error {
					output, err := ops.ListFavorites(c.Context, env.store, env.prefs.Favorites)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// noteCmd creates the note command group.
func noteCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "note",
		Usage: "Manage notes",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Show the note for an entity",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id, err := idArg(c)
					if err != nil {
						return outputError(err)
					}
					output, err := ops.GetNote(c.Context, env.store, env.prefs.Notes, ops.NoteInput{ID: id})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "set",
				Usage:     "Attach a note (text from arguments or stdin)",
				ArgsUsage: "<id> [text...]",
				Action: func(c *cli.Context) error {
					id, err := idArg(c)
					if err != nil {
						return outputError(err)
					}

					text := strings.Join(c.Args().Tail(), " ")
					if text == "" && stdinHasData() {
						text, err = readStdin(maxNoteBytes)
						if err != nil {
							return outputError(errors.NewInvalidRequest(err.Error()))
						}
					}

					output, err := ops.SetNote(c.Context, env.store, env.prefs.Notes, ops.SetNoteInput{ID: id, Note: text})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "clear",
				Usage:     "Remove the note for an entity",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id, err := idArg(c)
					if err != nil {
						return outputError(err)
					}
					output, err := ops.ClearNote(c.Context, env.store, env.prefs.Notes, ops.NoteInput{ID: id})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List every note",
				Action: func(c *cli.Context) error {
					output, err := ops.ListNotes(c.Context, env.prefs.Notes)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// themeCmd creates the theme command group.
func themeCmd(env *appEnv) *cli.Command {
	ambient := &cli.StringFlag{Name: "ambient", Usage: "Ambient color scheme used to resolve system (light|dark)"}
	return &cli.Command{
		Name:  "theme",
		Usage: "Show or change the color theme",
		Subcommands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Show the theme",
				Flags: []cli.Flag{ambient},
				Action: func(c *cli.Context) error {
					output, err := ops.GetTheme(c.Context, env.prefs.Theme, c.String("ambient"))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "set",
				Usage:     "Set the theme",
				ArgsUsage: "<light|dark|system>",
				Flags:     []cli.Flag{ambient},
				Action: func(c *cli.Context) error {
					output, err := ops.SetTheme(c.Context, env.prefs.Theme, ops.SetThemeInput{
						Theme:   c.Args().First(),
						Ambient: c.String("ambient"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// locationOutput is the JSON shape of url encode.
type locationOutput struct {
	Location string `json:"location"`
}

// urlCmd creates the url command group. It needs no stores.
func urlCmd() *cli.Command {
	return &cli.Command{
		Name:  "url",
		Usage: "Convert between navigation query strings and view state",
		Subcommands: []*cli.Command{
			{
				Name:      "decode",
				Usage:     "Decode a query string into view state",
				ArgsUsage: "<query>",
				Action: func(c *cli.Context) error {
					return outputJSON(urlstate.DecodeString(c.Args().First()))
				},
			},
			{
				Name:      "encode",
				Usage:     "Encode view state into a canonical query string",
				ArgsUsage: "[prior-query]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "q", Usage: "Search text"},
					&cli.StringFlag{Name: "type", Usage: "Category"},
					&cli.StringFlag{Name: "sort-by", Usage: "Sort key"},
					&cli.StringFlag{Name: "sort-order", Usage: "Sort direction"},
					&cli.IntFlag{Name: "page", Usage: "Page number"},
					&cli.BoolFlag{Name: "favorites", Usage: "Favorites only"},
				},
				Action: func(c *cli.Context) error {
					prior := urlstate.ParseQuery(c.Args().First())

					var u urlstate.Update
					if c.IsSet("q") {
						q := c.String("q")
						u.Search = &q
					}
					if c.IsSet("type") {
						t := c.String("type")
						u.Category = &t
					}
					if c.IsSet("sort-by") {
						by, _ := catalog.ParseSortBy(c.String("sort-by"))
						u.SortBy = &by
					}
					if c.IsSet("sort-order") {
						order, _ := catalog.ParseSortOrder(c.String("sort-order"))
						u.SortOrder = &order
					}
					if c.IsSet("page") {
						page := c.Int("page")
						u.Page = &page
					}
					if c.IsSet("favorites") {
						fav := c.Bool("favorites")
						u.ShowFavoritesOnly = &fav
					}

					return outputJSON(locationOutput{Location: urlstate.Apply(prior, u).Encode()})
				},
			},
		},
	}
}

// browseCmd creates the browse command, which renders one view from a
// running server.
func browseCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "browse",
		Usage:     "Fetch one list view from a running server",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server", Required: true, Usage: "Server base URL, e.g. http://127.0.0.1:8151"},
			&cli.IntFlag{Name: "id", Usage: "Show one entity instead of a list"},
		},
		Action: func(c *cli.Context) error {
			ctx := c.Context
			api := client.New(c.String("server"), nil)

			ctrl := browse.New(ctx, browse.Options{
				Fetcher:        api,
				IsFavorite:     remoteFavorites(ctx, api, env.logger),
				SearchDebounce: env.cfg.SearchDebounce(),
				PageSize:       env.cfg.PageSize,
				Logger:         env.logger,
			})
			defer ctrl.Close()

			if c.IsSet("id") {
				return outputJSON(ctrl.Detail(ctx, c.Int("id")))
			}

			ctrl.Navigate(c.Args().First())
			ctrl.Wait()
			view := ctrl.View()
			if view.Status == browse.StatusError {
				return outputError(&errors.BestiaryError{Code: errors.ErrTransport, Status: 502, Message: view.Error})
			}
			return outputJSON(view)
		},
	}
}

// remoteFavorites returns a membership check over the server's favorites.
// A failed lookup treats nothing as a favorite.
func remoteFavorites(ctx context.Context, api *client.Client, logger *zap.Logger) func(int) bool {
	set := map[int]bool{}
	favs, err := api.Favorites(ctx)
	if err != nil {
		logger.Warn("favorites lookup failed", zap.Error(err))
		return func(int) bool { return false }
	}
	for _, id := range favs.IDs {
		set[id] = true
	}
	return func(id int) bool { return set[id] }
}

// Helper functions

// idArg parses the first positional argument as an entity id.
func idArg(c *cli.Context) (int, error) {
	if c.NArg() == 0 {
		return 0, errors.NewInvalidRequest("id is required")
	}
	return ops.ParseID(c.Args().First())
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputTable prints a list page as aligned columns.
func outputTable(out *ops.ListOutput) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tURL")
	for _, r := range out.Results {
		fmt.Fprintf(w, "%d\t%s\t%s\n", r.ID, catalog.DisplayName(r.Name), r.DetailLink)
	}
	fmt.Fprintf(w, "\n%d total, page %d\n", out.Count, out.Page)
	return w.Flush()
}

// outputError formats error for CLI.
func outputError(err error) error {
	if bErr, ok := err.(*errors.BestiaryError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", bErr.Code, bErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads at most limit bytes from stdin.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("input exceeds %d bytes", limit)
	}
	return strings.TrimSpace(string(data)), nil
}
