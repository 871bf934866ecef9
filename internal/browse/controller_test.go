package browse

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/hpungsan/bestiary/internal/catalog"
	"github.com/hpungsan/bestiary/internal/client"
	"github.com/hpungsan/bestiary/internal/config"
	"github.com/hpungsan/bestiary/internal/errors"
	"github.com/hpungsan/bestiary/internal/ops"
	"github.com/hpungsan/bestiary/internal/sched"
	"github.com/hpungsan/bestiary/internal/urlstate"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeFetcher serves the bundled catalog through ops.List. Searches listed in
// late block until released and then answer regardless of cancellation;
// searches listed in slow block until their context ends.
type fakeFetcher struct {
	store *catalog.Store
	cfg   *config.Config

	mu    sync.Mutex
	calls []client.ListParams
	err   error
	late  map[string]chan struct{}
	slow  map[string]bool
}

func newFakeFetcher(t *testing.T) *fakeFetcher {
	t.Helper()
	store, err := catalog.Open("", config.DefaultImageBaseURL)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	return &fakeFetcher{
		store: store,
		cfg:   config.DefaultConfig(),
		late:  map[string]chan struct{}{},
		slow:  map[string]bool{},
	}
}

func (f *fakeFetcher) ListEntities(ctx context.Context, p client.ListParams) (*ops.ListOutput, error) {
	f.mu.Lock()
	f.calls = append(f.calls, p)
	gate := f.late[p.Search]
	slow := f.slow[p.Search]
	err := f.err
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if slow {
		<-ctx.Done()
		return nil, errors.NewAborted(ctx.Err())
	}
	if err != nil {
		return nil, err
	}
	return ops.List(ctx, f.store, f.cfg, ops.ListInput{
		Page:      p.Page,
		Limit:     p.Limit,
		Search:    p.Search,
		Type:      p.Type,
		SortBy:    p.SortBy,
		SortOrder: p.SortOrder,
	})
}

func (f *fakeFetcher) GetEntity(ctx context.Context, id int) (*catalog.Entity, error) {
	return f.store.Get(id)
}

func (f *fakeFetcher) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) lastCall() client.ListParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func newController(t *testing.T, f *fakeFetcher, mod func(*Options)) *Controller {
	t.Helper()
	opts := Options{Fetcher: f, Clock: sched.NewFakeClock(time.Unix(0, 0))}
	if mod != nil {
		mod(&opts)
	}
	c := New(context.Background(), opts)
	t.Cleanup(c.Close)
	return c
}

func resultIDs(items []catalog.Summary) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestNavigate_DecodesAndFetches(t *testing.T) {
	f := newFakeFetcher(t)
	c := newController(t, f, nil)

	c.Navigate("?type=fire&sortBy=weight&sortOrder=desc&utm=x")
	c.Wait()

	v := c.View()
	if v.Status != StatusReady {
		t.Fatalf("Status = %q, want ready", v.Status)
	}
	if v.Count != 12 || v.TotalPages != 1 {
		t.Errorf("Count/TotalPages = %d/%d, want 12/1", v.Count, v.TotalPages)
	}
	if v.Results[0].ID != 59 {
		t.Errorf("first id = %d, want 59", v.Results[0].ID)
	}
	if c.Location() != "sortBy=weight&sortOrder=desc&type=fire&utm=x" {
		t.Errorf("Location() = %q", c.Location())
	}

	want := client.ListParams{Page: 1, Limit: 20, Type: "fire", SortBy: "weight", SortOrder: "desc"}
	if diff := cmp.Diff(want, f.lastCall()); diff != "" {
		t.Errorf("fetch params mismatch (-want +got):\n%s", diff)
	}
}

func TestNavigate_LateResponseForSupersededRequestIsDropped(t *testing.T) {
	f := newFakeFetcher(t)
	gate := make(chan struct{})
	f.late["bulba"] = gate

	var mu sync.Mutex
	var seen []View
	c := newController(t, f, func(o *Options) {
		o.OnChange = func(v View) {
			mu.Lock()
			seen = append(seen, v)
			mu.Unlock()
		}
	})

	c.Navigate("?q=bulba")
	c.Navigate("?q=char")
	close(gate)
	c.Wait()

	v := c.View()
	if v.State.Search != "char" || v.Status != StatusReady {
		t.Fatalf("view = %+v, want ready char results", v)
	}
	if diff := cmp.Diff([]int{4, 5, 6}, resultIDs(v.Results)); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}

	mu.Lock()
	defer mu.Unlock()
	var last uint64
	for _, sv := range seen {
		if sv.State.Search == "bulba" && sv.Status == StatusReady {
			t.Error("superseded response reached OnChange")
		}
		if sv.Version <= last {
			t.Errorf("OnChange versions out of order: %d after %d", sv.Version, last)
		}
		last = sv.Version
	}
}

func TestNavigate_CancelsPreviousFetch(t *testing.T) {
	f := newFakeFetcher(t)
	f.slow["slow"] = true
	c := newController(t, f, nil)

	c.Navigate("?q=slow")
	c.Navigate("?q=char")
	c.Wait()

	v := c.View()
	if v.Status != StatusReady || v.Error != "" {
		t.Errorf("view = %+v, want ready without error", v)
	}
	if v.Count != 3 {
		t.Errorf("Count = %d, want 3", v.Count)
	}
}

func TestTransportErrorThenRetry(t *testing.T) {
	f := newFakeFetcher(t)
	f.setErr(errors.NewTransport(503, nil))
	c := newController(t, f, nil)

	c.Navigate("?q=char")
	c.Wait()

	v := c.View()
	if v.Status != StatusError {
		t.Fatalf("Status = %q, want error", v.Status)
	}
	if v.Error != "HTTP error! status: 503" {
		t.Errorf("Error = %q", v.Error)
	}

	f.setErr(nil)
	c.Retry()
	c.Wait()

	v = c.View()
	if v.Status != StatusReady || v.Error != "" || v.Count != 3 {
		t.Errorf("after retry view = %+v", v)
	}
	if f.callCount() != 2 {
		t.Errorf("calls = %d, want 2", f.callCount())
	}

	// Retry outside the error state is a no-op
	c.Retry()
	c.Wait()
	if f.callCount() != 2 {
		t.Errorf("calls = %d, want 2", f.callCount())
	}
}

func TestNotFoundIsDistinctState(t *testing.T) {
	f := newFakeFetcher(t)
	f.setErr(errors.NewNotFound("/entities"))
	c := newController(t, f, nil)

	c.Navigate("")
	c.Wait()

	v := c.View()
	if v.Status != StatusNotFound || v.Error != "" || len(v.Results) != 0 {
		t.Errorf("view = %+v, want empty not_found", v)
	}
}

func TestSetSearch_DebouncesToLastValue(t *testing.T) {
	f := newFakeFetcher(t)
	clock := sched.NewFakeClock(time.Unix(0, 0))
	c := newController(t, f, func(o *Options) { o.Clock = clock })

	c.Navigate("?page=3")
	c.Wait()

	c.SetSearch("c")
	clock.Advance(100 * time.Millisecond)
	c.SetSearch("ch")
	clock.Advance(100 * time.Millisecond)
	c.SetSearch("char")
	clock.Advance(299 * time.Millisecond)
	c.Wait()
	if f.callCount() != 1 {
		t.Fatalf("calls = %d before the quiet window passed, want 1", f.callCount())
	}

	clock.Advance(time.Millisecond)
	c.Wait()
	if f.callCount() != 2 {
		t.Fatalf("calls = %d, want 2", f.callCount())
	}
	if got := f.lastCall(); got.Search != "char" || got.Page != 1 {
		t.Errorf("fetch = %+v, want search char on page 1", got)
	}
	if c.Location() != "q=char" {
		t.Errorf("Location() = %q, want q=char", c.Location())
	}
}

func TestNavigate_DropsPendingSearch(t *testing.T) {
	f := newFakeFetcher(t)
	clock := sched.NewFakeClock(time.Unix(0, 0))
	c := newController(t, f, func(o *Options) { o.Clock = clock })

	c.SetSearch("char")
	c.Navigate("?type=water")
	clock.Advance(time.Second)
	c.Wait()

	if f.callCount() != 1 {
		t.Errorf("calls = %d, want 1", f.callCount())
	}
	if c.Location() != "type=water" {
		t.Errorf("Location() = %q", c.Location())
	}
}

func TestUpdate_SortResetsPage(t *testing.T) {
	f := newFakeFetcher(t)
	c := newController(t, f, nil)

	c.Navigate("?page=2")
	c.Wait()
	if v := c.View(); v.Page != 2 {
		t.Fatalf("Page = %d, want 2", v.Page)
	}

	by := catalog.SortByName
	c.Update(urlstate.Update{SortBy: &by})
	c.Wait()

	if c.Location() != "sortBy=name" {
		t.Errorf("Location() = %q, want sortBy=name", c.Location())
	}
	if v := c.View(); v.Page != 1 || v.Results[0].Name != "arbok" {
		t.Errorf("view page=%d first=%q, want page 1 first arbok", v.Page, v.Results[0].Name)
	}
}

func TestFavoritesOnly_FiltersPageKeepsCount(t *testing.T) {
	f := newFakeFetcher(t)
	favs := map[int]bool{4: true, 6: true, 7: true}
	c := newController(t, f, func(o *Options) {
		o.IsFavorite = func(id int) bool { return favs[id] }
	})

	c.Navigate("?type=fire&favorites=true")
	c.Wait()

	v := c.View()
	if diff := cmp.Diff([]int{4, 6}, resultIDs(v.Results)); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if v.Count != 12 {
		t.Errorf("Count = %d, want unfiltered 12", v.Count)
	}
}

func TestReset(t *testing.T) {
	f := newFakeFetcher(t)
	c := newController(t, f, nil)

	c.Navigate("?q=char&type=fire&page=2&utm=x")
	c.Wait()
	c.Reset()
	c.Wait()

	if c.Location() != "" {
		t.Errorf("Location() = %q, want empty", c.Location())
	}
	if diff := cmp.Diff(catalog.DefaultState(), c.View().State); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestDetail(t *testing.T) {
	f := newFakeFetcher(t)
	c := newController(t, f, nil)
	ctx := context.Background()

	if d := c.Detail(ctx, 25); d.Status != StatusReady || d.Entity.Name != "entity-25" {
		t.Errorf("Detail(25) = %+v", d)
	}
	if d := c.Detail(ctx, 999); d.Status != StatusNotFound || d.Entity != nil {
		t.Errorf("Detail(999) = %+v, want not_found", d)
	}
}

func TestClose_CancelsInFlightFetch(t *testing.T) {
	f := newFakeFetcher(t)
	f.slow["slow"] = true
	c := New(context.Background(), Options{Fetcher: f, Clock: sched.NewFakeClock(time.Unix(0, 0))})

	c.Navigate("?q=slow")
	c.Close()

	if v := c.View(); v.Status != StatusLoading {
		t.Errorf("Status = %q, want loading (aborted fetch applies nothing)", v.Status)
	}

	// Navigation after Close is ignored
	c.Navigate("?q=char")
	c.Wait()
	if f.callCount() != 1 {
		t.Errorf("calls = %d, want 1", f.callCount())
	}
}
