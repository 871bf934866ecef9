package ops

import (
	"strconv"
	"strings"

	"github.com/hpungsan/bestiary/internal/catalog"
	"github.com/hpungsan/bestiary/internal/config"
	"github.com/hpungsan/bestiary/internal/errors"
)

// Pagination limits
const (
	DefaultListLimit = catalog.DefaultPageSize
	MaxListLimit     = 100
	SearchLimit      = 50
)

// ParseID reads an entity id from a path segment or argument. Anything that
// is not an integer cannot name an entity, so it is reported as NOT_FOUND.
func ParseID(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewNotFound(raw)
	}
	return id, nil
}

// resolveLimit applies the configured default and cap to a requested limit.
func resolveLimit(limit int, cfg *config.Config) int {
	def, maxLimit := DefaultListLimit, MaxListLimit
	if cfg != nil {
		if cfg.PageSize > 0 {
			def = cfg.PageSize
		}
		if cfg.MaxPageSize > 0 {
			maxLimit = cfg.MaxPageSize
		}
	}
	if limit <= 0 {
		limit = def
	}
	return min(limit, maxLimit)
}

// requireEntity returns NOT_FOUND unless the store resolves id.
func requireEntity(store *catalog.Store, id int) error {
	if !store.Has(id) {
		return errors.NewNotFound(strconv.Itoa(id))
	}
	return nil
}
