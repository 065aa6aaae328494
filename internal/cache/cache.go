// Package cache stores the fetched feed and its last-refresh marker as two rows
// of the plugin key/value table. It never expires anything itself.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/acrylian/flickrfeed/internal/model"
	"github.com/acrylian/flickrfeed/internal/storage"
)

const (
	// Type is the plugin_storage type tag every flickrfeed row is stored under.
	Type = "flickrfeed"

	FeedName    = "flickrfeed_cache"
	LastModName = "flickrfeed_lastmod"
)

type KeyValueStorage interface {
	Get(ctx context.Context, typ, aux string) (string, error)
	Upsert(ctx context.Context, typ, aux, data string) error
}

type FeedCache struct {
	storage KeyValueStorage
}

func New(storage KeyValueStorage) *FeedCache {
	return &FeedCache{storage: storage}
}

// Get returns the cached items for name. ok is false when no row exists.
// A cleared cache is present with zero items.
func (c *FeedCache) Get(ctx context.Context, name string) (items []model.FeedItem, ok bool, err error) {
	data, err := c.storage.Get(ctx, Type, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	items = []model.FeedItem{}
	if data == "" {
		return items, true, nil
	}

	if err := json.Unmarshal([]byte(data), &items); err != nil {
		// An undecodable row counts as absent so the next call refetches.
		log.Printf("[ERROR] failed to decode %s, ignoring cached row: %v", name, err)
		return nil, false, nil
	}

	return items, true, nil
}

// Put upserts the items for name. An empty list is stored as an explicit clear.
func (c *FeedCache) Put(ctx context.Context, name string, items []model.FeedItem) error {
	if len(items) == 0 {
		return c.storage.Upsert(ctx, Type, name, "")
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	return c.storage.Upsert(ctx, Type, name, string(data))
}

func (c *FeedCache) Timestamp(ctx context.Context, name string) (time.Time, bool, error) {
	data, err := c.storage.Get(ctx, Type, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}

	sec, err := strconv.ParseInt(data, 10, 64)
	if err != nil {
		// Garbage in the row is treated like a missing marker so the next call refreshes.
		return time.Time{}, false, nil
	}

	return time.Unix(sec, 0), true, nil
}

// PutTimestamp stores t with one-second resolution.
func (c *FeedCache) PutTimestamp(ctx context.Context, name string, t time.Time) error {
	return c.storage.Upsert(ctx, Type, name, strconv.FormatInt(t.Unix(), 10))
}
