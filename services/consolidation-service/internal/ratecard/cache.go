// services/consolidation-service/internal/ratecard/cache.go
package ratecard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Tanmoy095/VaultShip/pkg/logger"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/models"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/shiperrors"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/slab"
)

// Source loads one destination's rate table. Implementations: the HTTP
// pricing client and the Postgres rate_card_tiers table.
type Source interface {
	Fetch(ctx context.Context, country string) (models.RateTable, error)
}

// Cache memoizes rate tables by destination for as long as it lives.
// Entries are never invalidated. Failed fetches and tables without a
// usable tier are never stored.
type Cache struct {
	source Source
	log    *logger.Logger

	mu     sync.RWMutex
	tables map[string]models.RateTable

	// sf collapses concurrent misses for the same country into one fetch.
	sf singleflight.Group
}

func NewCache(source Source, log *logger.Logger) *Cache {
	return &Cache{
		source: source,
		log:    logger.OrNop(log),
		tables: make(map[string]models.RateTable),
	}
}

// Key is the cache key for a user-typed country code.
func Key(country string) string {
	return strings.ToUpper(strings.TrimSpace(country))
}

// Get returns the table for country, fetching it on a miss.
func (c *Cache) Get(ctx context.Context, country string) (models.RateTable, error) {
	key := Key(country)
	if key == "" {
		return models.RateTable{}, shiperrors.ErrEmptyCountry
	}
	if table, ok := c.lookup(key); ok {
		return table, nil
	}

	v, err, shared := c.sf.Do(key, func() (interface{}, error) {
		// A fetch that finished between lookup and Do already stored the table.
		if table, ok := c.lookup(key); ok {
			return table, nil
		}
		table, err := c.source.Fetch(ctx, key)
		if err != nil {
			return nil, err
		}
		if len(slab.Tiers(table)) == 0 {
			return nil, fmt.Errorf("rate table for %s: %w", key, shiperrors.ErrNoTiers)
		}
		if table.Country == "" {
			table.Country = key
		}
		c.mu.Lock()
		c.tables[key] = table
		c.mu.Unlock()
		c.log.Debug("rate table cached", "country", key, "tiers", len(table.Prices))
		return table, nil
	})
	if err != nil {
		c.log.Warn("rate table fetch failed", "country", key, "shared", shared, "error", err)
		return models.RateTable{}, err
	}
	return v.(models.RateTable), nil
}

// Len reports how many destinations are cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

func (c *Cache) lookup(key string) (models.RateTable, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	table, ok := c.tables[key]
	return table, ok
}
