// Package prefs holds the client state that survives restarts: favorites,
// notes and the color theme. Each store owns its in-memory copy and persists
// it through a string key/value Storage.
package prefs

import (
	"context"
	"sync"
)

// Storage keys.
const (
	FavoritesKey = "bestiary-favorites"
	NotesKey     = "bestiary-notes"
	ThemeKey     = "theme"
)

// Storage is a string key/value store. db.LocalStorage is the durable
// implementation; MemoryStorage serves tests and ephemeral sessions.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// MemoryStorage is an in-process Storage. Writes can be made to fail for
// exercising the absorb and revert paths.
type MemoryStorage struct {
	mu      sync.Mutex
	items   map[string]string
	failErr error
	writes  int
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (m *MemoryStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryStorage) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.writes++
	m.items[key] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.writes++
	delete(m.items, key)
	return nil
}

// FailWrites makes every subsequent SetItem and RemoveItem return err.
// A nil err restores normal writes.
func (m *MemoryStorage) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

// Writes returns the number of successful writes.
func (m *MemoryStorage) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
