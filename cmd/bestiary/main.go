package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hpungsan/bestiary/internal/catalog"
	"github.com/hpungsan/bestiary/internal/config"
	"github.com/hpungsan/bestiary/internal/db"
	"github.com/hpungsan/bestiary/internal/logging"
	"github.com/hpungsan/bestiary/internal/mcp"
	"github.com/hpungsan/bestiary/internal/prefs"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"serve": true, "list": true, "search": true, "get": true, "categories": true,
	"fav": true, "note": true, "theme": true, "url": true, "browse": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _               _   _
  | |__   ___  ___| |_(_) __ _ _ __ _   _
  | '_ \ / _ \/ __| __| |/ _' | '__| | | |
  | |_) |  __/\__ \ |_| | (_| | |  | |_| |
  |_.__/ \___||___/\__|_|\__,_|_|   \__, |
                                    |___/
  Browsable creature catalog

  Usage: bestiary <command> [options]
         bestiary --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	os.Exit(run())
}

// run wires the stores and dispatches. It returns the process exit code so
// deferred cleanup runs before exit.
func run() int {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		return 1
	}
	baseDir := filepath.Join(homeDir, ".bestiary")

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		return 1
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	store, err := catalog.Open(cfg.DatasetPath, cfg.ImageBaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load dataset: %v\n", err)
		return 1
	}

	ctx := context.Background()
	state := prefs.Open(ctx, db.NewLocalStorage(database), prefs.Options{
		FlushDelay: cfg.FavoritesFlushDelay(),
		Logger:     logger,
	})

	env := &appEnv{store: store, prefs: state, cfg: cfg, logger: logger}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(env)
		err := app.Run(os.Args)
		if ferr := state.Close(ctx); ferr != nil {
			logger.Warn("final favorites flush failed", zap.Error(ferr))
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'bestiary --help' for usage.\n")
		return 1
	}

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown tools in disabled_tools", zap.Strings("tools", unknown))
	}
	if unknown := mcp.ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		logger.Warn("unknown types in disabled_types", zap.Strings("types", unknown))
	}

	// MCP server mode (default)
	if err := mcp.Run(ctx, store, state, cfg, Version, logger); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
