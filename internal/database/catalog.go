package database

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	itemKeyPrefix = "item:"
	tomestonesKey = "tomestones"
)

// Source is the backing store a Catalog loads from.
type Source interface {
	ListItems(ctx context.Context) ([]Item, error)
	ListTomestones(ctx context.Context) (Tomestones, error)
}

// Catalog serves item and tomestone lookups from memory so that subject
// resolution never touches the database. It is safe for concurrent use: the
// refresh loop writes while the event loop reads.
type Catalog struct {
	source Source
	cache  *cache.Cache
}

// NewCatalog creates an empty catalog backed by source. Call Load before use.
func NewCatalog(source Source) *Catalog {
	return &Catalog{
		source: source,
		cache:  cache.New(cache.NoExpiration, 0),
	}
}

// Load replaces the cached catalog with the current contents of the source.
// Items removed from the source are dropped. On error the previous contents
// are kept.
func (c *Catalog) Load(ctx context.Context) error {
	items, err := c.source.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to load item catalog: %w", err)
	}
	tomestones, err := c.source.ListTomestones(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tomestone catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		key := itemKey(item.ItemID)
		seen[key] = struct{}{}
		c.cache.Set(key, item, cache.NoExpiration)
	}
	for key := range c.cache.Items() {
		if key == tomestonesKey {
			continue
		}
		if _, ok := seen[key]; !ok {
			c.cache.Delete(key)
		}
	}
	c.cache.Set(tomestonesKey, tomestones, cache.NoExpiration)

	slog.Info("Item catalog loaded",
		"items", len(items),
		"limited_tomestone", tomestones.Limited,
		"weekly_limit", tomestones.WeeklyLimit,
	)
	return nil
}

// Item returns the cached catalog entry for itemID.
func (c *Catalog) Item(itemID uint32) (Item, bool) {
	v, found := c.cache.Get(itemKey(itemID))
	if !found {
		return Item{}, false
	}
	return v.(Item), true
}

// Tomestones returns the cached tomestone roles, or the zero value before the
// first successful Load.
func (c *Catalog) Tomestones() Tomestones {
	v, found := c.cache.Get(tomestonesKey)
	if !found {
		return Tomestones{}
	}
	return v.(Tomestones)
}

// Len returns the number of cached items.
func (c *Catalog) Len() int {
	n := c.cache.ItemCount()
	if _, found := c.cache.Get(tomestonesKey); found {
		n--
	}
	return n
}

// Run reloads the catalog every interval until ctx is cancelled. Failures are
// logged and the stale catalog stays in service.
func (c *Catalog) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Load(ctx); err != nil {
				slog.Error("Failed to refresh item catalog", "error", err)
			}
		}
	}
}

func itemKey(itemID uint32) string {
	return itemKeyPrefix + strconv.FormatUint(uint64(itemID), 10)
}
