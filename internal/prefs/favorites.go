package prefs

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/bestiary/internal/errors"
	"github.com/hpungsan/bestiary/internal/sched"
)

// DefaultFlushDelay is the delay between a membership change and its durable write.
const DefaultFlushDelay = 100 * time.Millisecond

// Favorites is the set of favorite entity ids. Membership changes apply in
// memory at once; the durable write happens after a delay and always carries
// the set as it stands when the write starts.
type Favorites struct {
	storage Storage
	clock   sched.Clock
	delay   time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	set     map[int]struct{}
	journal []int // ids flipped since the last flush snapshot, in order
	timer   sched.Timer

	// writeMu serializes durable writes. A flush takes its snapshot only
	// after acquiring it, so a later flush can never be overwritten by an
	// earlier one.
	writeMu sync.Mutex
}

// NewFavorites creates an empty favorites store. Call Load to read the
// persisted set.
func NewFavorites(storage Storage, clock sched.Clock, delay time.Duration, logger *zap.Logger) *Favorites {
	if clock == nil {
		clock = sched.RealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Favorites{
		storage: storage,
		clock:   clock,
		delay:   delay,
		logger:  logger,
		set:     make(map[int]struct{}),
	}
}

// Load replaces the in-memory set with the persisted one. A missing,
// unreadable or corrupt value yields the empty set.
func (f *Favorites) Load(ctx context.Context) {
	set := make(map[int]struct{})

	raw, ok, err := f.storage.GetItem(ctx, FavoritesKey)
	switch {
	case err != nil:
		f.logger.Warn("favorites load failed", zap.String("key", FavoritesKey), zap.Error(err))
	case ok:
		var ids []int
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			f.logger.Warn("favorites value is corrupt", zap.String("key", FavoritesKey), zap.Error(err))
		} else {
			for _, id := range ids {
				set[id] = struct{}{}
			}
		}
	}

	f.mu.Lock()
	f.set = set
	f.journal = nil
	f.mu.Unlock()
}

// Toggle flips membership of id and reports whether it is now a favorite.
func (f *Favorites) Toggle(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.flip(id)
	f.journal = append(f.journal, id)
	f.armLocked()
	_, member := f.set[id]
	return member
}

// Add makes id a favorite. It reports whether membership changed.
func (f *Favorites) Add(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.set[id]; ok {
		return false
	}
	f.flip(id)
	f.journal = append(f.journal, id)
	f.armLocked()
	return true
}

// Remove drops id from the favorites. It reports whether membership changed.
func (f *Favorites) Remove(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.set[id]; !ok {
		return false
	}
	f.flip(id)
	f.journal = append(f.journal, id)
	f.armLocked()
	return true
}

// Has reports whether id is a favorite.
func (f *Favorites) Has(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.set[id]
	return ok
}

// IDs returns the favorite ids in ascending order.
func (f *Favorites) IDs() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sortedLocked()
}

// Pending reports whether changes are waiting to be written.
func (f *Favorites) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.journal) > 0
}

// Flush writes pending changes now instead of waiting for the delay. On
// write failure the changes included in this flush are reverted in memory
// and a PERSISTENCE error is returned. Flush with nothing pending is a no-op.
func (f *Favorites) Flush(ctx context.Context) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	f.mu.Lock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	journal := f.journal
	f.journal = nil
	if len(journal) == 0 {
		f.mu.Unlock()
		return nil
	}
	ids := f.sortedLocked()
	f.mu.Unlock()

	payload, err := json.Marshal(ids)
	if err != nil {
		return errors.NewInternal(err)
	}

	if err := f.storage.SetItem(ctx, FavoritesKey, string(payload)); err != nil {
		f.mu.Lock()
		// Flips commute, so undoing this flush's journal leaves any newer
		// changes in place.
		for i := len(journal) - 1; i >= 0; i-- {
			f.flip(journal[i])
		}
		f.mu.Unlock()
		f.logger.Warn("favorites write failed, reverted",
			zap.String("key", FavoritesKey),
			zap.Ints("ids", journal),
			zap.Error(err))
		return errors.NewPersistence(FavoritesKey, err)
	}

	f.logger.Debug("favorites flushed", zap.Int("count", len(ids)))
	return nil
}

// armLocked schedules a flush if none is pending. Caller holds f.mu.
func (f *Favorites) armLocked() {
	if f.timer != nil {
		return
	}
	f.timer = f.clock.AfterFunc(f.delay, func() {
		// Errors are logged and reverted by Flush.
		_ = f.Flush(context.Background())
	})
}

// flip toggles id in the set. Caller holds f.mu.
func (f *Favorites) flip(id int) {
	if _, ok := f.set[id]; ok {
		delete(f.set, id)
	} else {
		f.set[id] = struct{}{}
	}
}

func (f *Favorites) sortedLocked() []int {
	ids := make([]int, 0, len(f.set))
	for id := range f.set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
