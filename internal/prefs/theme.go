package prefs

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hpungsan/bestiary/internal/errors"
)

// Theme is the color scheme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// DefaultTheme is used when nothing valid is persisted.
const DefaultTheme = ThemeLight

// ParseTheme validates s.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, nil
	}
	return "", errors.NewValidation("theme", "theme must be one of light, dark, system")
}

// Resolve turns t into a concrete scheme. system follows the ambient
// preference ("dark" or "light"); anything other than dark reads as light.
func Resolve(t Theme, ambient string) Theme {
	switch t {
	case ThemeLight, ThemeDark:
		return t
	}
	if strings.EqualFold(strings.TrimSpace(ambient), string(ThemeDark)) {
		return ThemeDark
	}
	return ThemeLight
}

// Themes holds the persisted theme. The stored value is the raw theme string.
type Themes struct {
	storage Storage
	logger  *zap.Logger

	mu      sync.Mutex
	current Theme

	writeMu sync.Mutex
}

// NewThemes creates a theme store reading DefaultTheme. Call Load to read
// the persisted value.
func NewThemes(storage Storage, logger *zap.Logger) *Themes {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Themes{storage: storage, logger: logger, current: DefaultTheme}
}

// Load reads the persisted theme. A JSON-quoted value is accepted.
// A missing, unreadable or unknown value yields DefaultTheme.
func (t *Themes) Load(ctx context.Context) {
	theme := DefaultTheme

	raw, ok, err := t.storage.GetItem(ctx, ThemeKey)
	switch {
	case err != nil:
		t.logger.Warn("theme load failed", zap.String("key", ThemeKey), zap.Error(err))
	case ok:
		value := strings.TrimSpace(raw)
		var quoted string
		if json.Unmarshal([]byte(value), &quoted) == nil {
			value = quoted
		}
		if parsed, err := ParseTheme(value); err == nil {
			theme = parsed
		} else {
			t.logger.Warn("theme value is corrupt", zap.String("key", ThemeKey), zap.String("value", raw))
		}
	}

	t.mu.Lock()
	t.current = theme
	t.mu.Unlock()
}

// Current returns the stored preference, which may be system.
func (t *Themes) Current() Theme {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Resolved returns the concrete scheme for the stored preference.
func (t *Themes) Resolved(ambient string) Theme {
	return Resolve(t.Current(), ambient)
}

// Set stores theme. An unknown theme is rejected with VALIDATION. A failed
// write is logged; the in-memory value still changes.
func (t *Themes) Set(ctx context.Context, theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.mu.Lock()
	t.current = theme
	t.mu.Unlock()

	if err := t.storage.SetItem(ctx, ThemeKey, string(theme)); err != nil {
		t.logger.Warn("theme write failed", zap.String("key", ThemeKey), zap.Error(err))
	}
	return nil
}
