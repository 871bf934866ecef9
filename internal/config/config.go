package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultImageBaseURL is the sprite directory image locators are derived from.
const DefaultImageBaseURL = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon"

// Config holds application configuration.
type Config struct {
	// PageSize is the default number of entities per list page.
	PageSize int `json:"page_size" env:"BESTIARY_PAGE_SIZE"`

	// MaxPageSize caps the limit a caller may request.
	MaxPageSize int `json:"max_page_size" env:"BESTIARY_MAX_PAGE_SIZE"`

	// DatasetPath overrides the bundled dataset with a .json, .yaml or .yml file.
	// Empty means use the bundled dataset.
	DatasetPath string `json:"dataset_path,omitempty" env:"BESTIARY_DATASET_PATH"`

	// ImageBaseURL is the directory image locators are built from ({base}/{id}.png).
	ImageBaseURL string `json:"image_base_url,omitempty" env:"BESTIARY_IMAGE_BASE_URL"`

	// FavoritesFlushDelayMS is the delay between a favorite toggle and its durable write.
	FavoritesFlushDelayMS int `json:"favorites_flush_delay_ms" env:"BESTIARY_FAVORITES_FLUSH_DELAY_MS"`

	// SearchDebounceMS is the quiet window applied to search text changes.
	SearchDebounceMS int `json:"search_debounce_ms" env:"BESTIARY_SEARCH_DEBOUNCE_MS"`

	// Bind is the interface the HTTP server listens on.
	Bind string `json:"bind,omitempty" env:"BESTIARY_BIND"`

	// Port is the HTTP server port.
	Port int `json:"port,omitempty" env:"BESTIARY_PORT"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" env:"BESTIARY_LOG_LEVEL"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited). Only set if you experience contention.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" env:"BESTIARY_DB_MAX_OPEN_CONNS"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" env:"BESTIARY_DB_MAX_IDLE_CONNS"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty" env:"BESTIARY_DISABLED_TOOLS" envSeparator:","`

	// DisabledTypes is a list of type names to disable entirely.
	// Known types: "entity", "favorite", "note", "theme".
	DisabledTypes []string `json:"disabled_types,omitempty" env:"BESTIARY_DISABLED_TYPES" envSeparator:","`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		PageSize:              20,
		MaxPageSize:           100,
		ImageBaseURL:          DefaultImageBaseURL,
		FavoritesFlushDelayMS: 100,
		SearchDebounceMS:      300,
		Bind:                  "127.0.0.1",
		Port:                  8151,
		LogLevel:              "info",
	}
}

// FavoritesFlushDelay returns FavoritesFlushDelayMS as a duration.
func (c *Config) FavoritesFlushDelay() time.Duration {
	return time.Duration(c.FavoritesFlushDelayMS) * time.Millisecond
}

// SearchDebounce returns SearchDebounceMS as a duration.
func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMS) * time.Millisecond
}

// Load loads configuration from baseDir/config.json, then applies environment overrides.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.bestiary.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return ApplyEnv(cfg)
}

// LoadWithRepo loads configuration from both global (~/.bestiary) and repo (.bestiary) directories.
// Repo config is found by walking upward from startDir to find the nearest .bestiary/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Environment variables are applied last.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return ApplyEnv(Merge(Merge(DefaultConfig(), global), repo))
}

// ApplyEnv overlays BESTIARY_* environment variables onto cfg.
// Unset variables leave the corresponding field untouched.
func ApplyEnv(cfg *Config) (*Config, error) {
	overlay := &Config{}
	if err := env.Parse(overlay); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return Merge(cfg, overlay), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .bestiary/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".bestiary", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	return &Config{
		PageSize:              pickInt(overlay.PageSize, base.PageSize),
		MaxPageSize:           pickInt(overlay.MaxPageSize, base.MaxPageSize),
		DatasetPath:           pickString(overlay.DatasetPath, base.DatasetPath),
		ImageBaseURL:          pickString(overlay.ImageBaseURL, base.ImageBaseURL),
		FavoritesFlushDelayMS: pickInt(overlay.FavoritesFlushDelayMS, base.FavoritesFlushDelayMS),
		SearchDebounceMS:      pickInt(overlay.SearchDebounceMS, base.SearchDebounceMS),
		Bind:                  pickString(overlay.Bind, base.Bind),
		Port:                  pickInt(overlay.Port, base.Port),
		LogLevel:              pickString(overlay.LogLevel, base.LogLevel),
		DBMaxOpenConns:        pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:        pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
		DisabledTools:         mergeStringSlice(base.DisabledTools, overlay.DisabledTools),
		DisabledTypes:         mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes),
	}
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

func pickString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
