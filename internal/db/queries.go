package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/bestiary/internal/errors"
)

// GetItem returns the value stored under key. ok is false when the key is absent.
func GetItem(ctx context.Context, db *sql.DB, key string) (value string, ok bool, err error) {
	row := db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, errors.NewPersistence(key, err)
	}
	return value, true, nil
}

// SetItem stores value under key, replacing any previous value.
func SetItem(ctx context.Context, db *sql.DB, key, value string) error {
	query := `
		INSERT INTO local_storage (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, key, value, time.Now().Unix()); err != nil {
		return errors.NewPersistence(key, err)
	}
	return nil
}

// RemoveItem deletes key. Removing an absent key is not an error.
func RemoveItem(ctx context.Context, db *sql.DB, key string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, key); err != nil {
		return errors.NewPersistence(key, err)
	}
	return nil
}

// LocalStorage adapts the local_storage table to the string key/value
// storage interface preferences are persisted through.
type LocalStorage struct {
	db *sql.DB
}

// NewLocalStorage wraps an initialized database.
func NewLocalStorage(db *sql.DB) *LocalStorage {
	return &LocalStorage{db: db}
}

func (s *LocalStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	return GetItem(ctx, s.db, key)
}

func (s *LocalStorage) SetItem(ctx context.Context, key, value string) error {
	return SetItem(ctx, s.db, key, value)
}

func (s *LocalStorage) RemoveItem(ctx context.Context, key string) error {
	return RemoveItem(ctx, s.db, key)
}
