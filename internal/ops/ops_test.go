package ops

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/bestiary/internal/catalog"
	"github.com/hpungsan/bestiary/internal/config"
	"github.com/hpungsan/bestiary/internal/db"
	"github.com/hpungsan/bestiary/internal/errors"
	"github.com/hpungsan/bestiary/internal/prefs"
	"github.com/hpungsan/bestiary/internal/sched"
)

type fixture struct {
	store   *catalog.Store
	cfg     *config.Config
	prefs   *prefs.State
	clock   *sched.FakeClock
	storage prefs.Storage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store, err := catalog.Open("", config.DefaultImageBaseURL)
	if err != nil {
		t.Fatalf("catalog.Open failed: %v", err)
	}

	clock := sched.NewFakeClock(time.Unix(0, 0))
	storage := db.NewLocalStorage(database)
	return &fixture{
		store:   store,
		cfg:     config.DefaultConfig(),
		prefs:   prefs.Open(context.Background(), storage, prefs.Options{Clock: clock, Logger: zap.NewNop()}),
		clock:   clock,
		storage: storage,
	}
}

func TestParseID(t *testing.T) {
	if id, err := ParseID(" 25 "); err != nil || id != 25 {
		t.Errorf("ParseID(25) = (%d, %v)", id, err)
	}
	for _, raw := range []string{"abc", "", "1.5"} {
		if _, err := ParseID(raw); !errors.Is(err, errors.ErrNotFound) {
			t.Errorf("ParseID(%q) error = %v, want NOT_FOUND", raw, err)
		}
	}
}

func TestResolveLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	tests := []struct{ in, want int }{
		{0, 20},
		{-5, 20},
		{7, 7},
		{100, 100},
		{500, 100},
	}
	for _, tt := range tests {
		if got := resolveLimit(tt.in, cfg); got != tt.want {
			t.Errorf("resolveLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if got := resolveLimit(0, nil); got != DefaultListLimit {
		t.Errorf("resolveLimit(0, nil) = %d", got)
	}
}
