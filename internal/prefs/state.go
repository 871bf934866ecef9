package prefs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/bestiary/internal/sched"
)

// State bundles the three stores. It is built once at startup and passed to
// whatever needs it.
type State struct {
	Favorites *Favorites
	Notes     *Notes
	Theme     *Themes
}

// Options configures Open.
type Options struct {
	Clock      sched.Clock
	FlushDelay time.Duration
	Logger     *zap.Logger
}

// Open creates all stores over storage and loads them.
func Open(ctx context.Context, storage Storage, opts Options) *State {
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = DefaultFlushDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &State{
		Favorites: NewFavorites(storage, opts.Clock, opts.FlushDelay, logger.Named("favorites")),
		Notes:     NewNotes(storage, logger.Named("notes")),
		Theme:     NewThemes(storage, logger.Named("theme")),
	}
	s.Favorites.Load(ctx)
	s.Notes.Load(ctx)
	s.Theme.Load(ctx)
	return s
}

// Close flushes pending favorite changes.
func (s *State) Close(ctx context.Context) error {
	return s.Favorites.Flush(ctx)
}
