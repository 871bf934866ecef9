// Package browse drives the list view from a navigation location: it decodes
// the location, fetches the matching page, and keeps only the response for
// the most recent request.
package browse

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/bestiary/internal/catalog"
	"github.com/hpungsan/bestiary/internal/client"
	"github.com/hpungsan/bestiary/internal/errors"
	"github.com/hpungsan/bestiary/internal/ops"
	"github.com/hpungsan/bestiary/internal/sched"
	"github.com/hpungsan/bestiary/internal/urlstate"
)

// DefaultSearchDebounce is the quiet window applied to search text.
const DefaultSearchDebounce = 300 * time.Millisecond

// Fetcher loads catalog data. *client.Client satisfies it.
type Fetcher interface {
	ListEntities(ctx context.Context, p client.ListParams) (*ops.ListOutput, error)
	GetEntity(ctx context.Context, id int) (*catalog.Entity, error)
}

// Status is the lifecycle state of a view.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusLoading  Status = "loading"
	StatusReady    Status = "ready"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
)

// View is what the list screen shows. Version increases with every change.
type View struct {
	Version    uint64                  `json:"version"`
	Tag        string                  `json:"tag"`
	State      catalog.FilterSortState `json:"state"`
	Location   string                  `json:"location"`
	Status     Status                  `json:"status"`
	Count      int                     `json:"count"`
	Results    []catalog.Summary       `json:"results"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	TotalPages int                     `json:"totalPages"`
	// Error is set with StatusError; Retry re-issues the fetch.
	Error string `json:"error,omitempty"`
}

// Options configures a Controller.
type Options struct {
	Fetcher Fetcher

	// IsFavorite backs the favorites-only filter. Nil keeps every item.
	IsFavorite func(id int) bool

	Clock          sched.Clock
	SearchDebounce time.Duration
	PageSize       int
	Logger         *zap.Logger

	// OnChange receives every view change in Version order. It must not call
	// Navigate, Update, SetSearch, Reset or Retry synchronously.
	OnChange func(View)
}

// Controller owns the current location and view.
type Controller struct {
	fetcher    Fetcher
	isFavorite func(id int) bool
	pageSize   int
	logger     *zap.Logger
	onChange   func(View)
	search     *sched.Debouncer

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu       sync.Mutex
	location url.Values
	view     View
	latest   string
	cancel   context.CancelFunc
	closed   bool

	emitMu      sync.Mutex
	lastEmitted uint64
}

// New creates a Controller. Fetches run under ctx; Close cancels them.
func New(ctx context.Context, opts Options) *Controller {
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = DefaultSearchDebounce
	}
	if opts.PageSize <= 0 {
		opts.PageSize = ops.DefaultListLimit
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	ctx, stop := context.WithCancel(ctx)
	return &Controller{
		fetcher:    opts.Fetcher,
		isFavorite: opts.IsFavorite,
		pageSize:   opts.PageSize,
		logger:     opts.Logger,
		onChange:   opts.OnChange,
		search:     sched.NewDebouncer(opts.Clock, opts.SearchDebounce),
		ctx:        ctx,
		stop:       stop,
		location:   url.Values{},
		view:       View{Status: StatusIdle, State: catalog.DefaultState(), Results: []catalog.Summary{}},
	}
}

// Navigate replaces the location with raw and fetches it. A pending
// debounced search is dropped.
func (c *Controller) Navigate(raw string) {
	c.search.Cancel()
	c.navigate(urlstate.ParseQuery(raw))
}

// Update applies a partial state change to the current location.
func (c *Controller) Update(u urlstate.Update) {
	c.mu.Lock()
	next := urlstate.Apply(c.location, u)
	c.mu.Unlock()
	c.navigate(next)
}

// SetSearch records search text. Only the last text of a burst is applied,
// once the debounce window has passed without another call.
func (c *Controller) SetSearch(text string) {
	c.search.Call(func() {
		c.Update(urlstate.Update{Search: &text})
	})
}

// Reset clears every parameter in one navigation.
func (c *Controller) Reset() {
	c.search.Cancel()
	c.navigate(urlstate.Reset())
}

// Retry re-issues the fetch for the current location after a failure.
// It does nothing unless the view is in StatusError.
func (c *Controller) Retry() {
	c.mu.Lock()
	if c.view.Status != StatusError {
		c.mu.Unlock()
		return
	}
	loc := c.location
	c.mu.Unlock()
	c.navigate(loc)
}

// Location returns the encoded current location.
func (c *Controller) Location() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location.Encode()
}

// View returns the current view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Wait blocks until every started fetch has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels pending work and waits for in-flight fetches to return.
func (c *Controller) Close() {
	c.search.Cancel()
	c.mu.Lock()
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.stop()
	c.wg.Wait()
}

func (c *Controller) navigate(loc url.Values) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	state := urlstate.Decode(loc)
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	tag := ulid.Make().String()

	c.location = loc
	c.latest = tag
	c.cancel = cancel
	c.view = View{
		Version:  c.view.Version + 1,
		Tag:      tag,
		State:    state,
		Location: loc.Encode(),
		Status:   StatusLoading,
		Count:    c.view.Count,
		Results:  c.view.Results,
		Page:     state.Page,
		Limit:    c.pageSize,
	}
	view := c.view
	c.wg.Add(1)
	c.mu.Unlock()

	c.emit(view)
	go c.fetch(ctx, cancel, tag, state)
}

func (c *Controller) fetch(ctx context.Context, cancel context.CancelFunc, tag string, state catalog.FilterSortState) {
	defer c.wg.Done()
	defer cancel()

	out, err := c.fetcher.ListEntities(ctx, client.ListParams{
		Page:      state.Page,
		Limit:     c.pageSize,
		Search:    state.Search,
		Type:      state.Category,
		SortBy:    string(state.SortBy),
		SortOrder: string(state.SortOrder),
	})

	c.mu.Lock()
	if tag != c.latest {
		c.mu.Unlock()
		c.logger.Debug("dropped stale result", zap.String("tag", tag))
		return
	}
	if ctx.Err() != nil || errors.Is(err, errors.ErrAborted) {
		c.mu.Unlock()
		c.logger.Debug("fetch aborted", zap.String("tag", tag))
		return
	}

	next := c.view
	next.Version++
	switch {
	case err == nil:
		results := out.Results
		if state.ShowFavoritesOnly && c.isFavorite != nil {
			results = catalog.FilterFavorites(results, c.isFavorite)
		}
		next.Status = StatusReady
		next.Count = out.Count
		next.Results = results
		next.Page = out.Page
		next.Limit = out.Limit
		next.TotalPages = catalog.TotalPages(out.Count, out.Limit)
		next.Error = ""
	case errors.Is(err, errors.ErrNotFound):
		next.Status = StatusNotFound
		next.Count = 0
		next.Results = []catalog.Summary{}
		next.TotalPages = 0
	default:
		next.Status = StatusError
		next.Error = errors.As(err).Message
		c.logger.Warn("fetch failed", zap.String("tag", tag), zap.Error(err))
	}
	c.view = next
	c.cancel = nil
	c.mu.Unlock()

	c.emit(next)
}

// emit delivers v unless a newer view was already delivered.
func (c *Controller) emit(v View) {
	if c.onChange == nil {
		return
	}
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	if v.Version <= c.lastEmitted {
		return
	}
	c.lastEmitted = v.Version
	c.onChange(v)
}

// DetailView is the state of a single-entity screen.
type DetailView struct {
	Status Status          `json:"status"`
	Entity *catalog.Entity `json:"entity,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Detail fetches one entity. A missing id yields StatusNotFound; a
// cancelled fetch yields StatusIdle.
func (c *Controller) Detail(ctx context.Context, id int) DetailView {
	e, err := c.fetcher.GetEntity(ctx, id)
	switch {
	case err == nil:
		return DetailView{Status: StatusReady, Entity: e}
	case errors.Is(err, errors.ErrNotFound):
		return DetailView{Status: StatusNotFound}
	case ctx.Err() != nil || errors.Is(err, errors.ErrAborted):
		return DetailView{Status: StatusIdle}
	default:
		c.logger.Warn("detail fetch failed", zap.Int("id", id), zap.Error(err))
		return DetailView{Status: StatusError, Error: errors.As(err).Message}
	}
}
