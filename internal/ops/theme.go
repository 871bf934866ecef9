package ops

import (
	"context"

	"github.com/hpungsan/bestiary/internal/prefs"
)

// ThemeOutput is the stored theme and its resolution against the ambient
// color scheme.
type ThemeOutput struct {
	Theme    prefs.Theme `json:"theme"`
	Resolved prefs.Theme `json:"resolved"`
}

// GetTheme reads the theme. ambient is the caller's color-scheme signal
// ("dark" or "light"); it only matters when the theme is system.
func GetTheme(ctx context.Context, themes *prefs.Themes, ambient string) (*ThemeOutput, error) {
	current := themes.Current()
	return &ThemeOutput{Theme: current, Resolved: prefs.Resolve(current, ambient)}, nil
}

// SetThemeInput contains parameters for the SetTheme operation.
type SetThemeInput struct {
	Theme   string
	Ambient string
}

// SetTheme validates and stores a theme.
func SetTheme(ctx context.Context, themes *prefs.Themes, input SetThemeInput) (*ThemeOutput, error) {
	theme, err := prefs.ParseTheme(input.Theme)
	if err != nil {
		return nil, err
	}
	if err := themes.Set(ctx, theme); err != nil {
		return nil, err
	}
	return GetTheme(ctx, themes, input.Ambient)
}
