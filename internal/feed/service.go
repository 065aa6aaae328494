// Package feed decides when the Flickr feed is refetched, serves it from the
// cache otherwise, and renders the thumbnail list.
package feed

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/acrylian/flickrfeed/internal/cache"
	"github.com/acrylian/flickrfeed/internal/model"
	"github.com/acrylian/flickrfeed/internal/options"
	"github.com/acrylian/flickrfeed/internal/source"
)

type FeedCache interface {
	Get(ctx context.Context, name string) ([]model.FeedItem, bool, error)
	Put(ctx context.Context, name string, items []model.FeedItem) error
	Timestamp(ctx context.Context, name string) (time.Time, bool, error)
	PutTimestamp(ctx context.Context, name string, t time.Time) error
}

type OptionProvider interface {
	UserID(ctx context.Context) (string, error)
	CacheTTL(ctx context.Context) (time.Duration, error)
	AllowClear() bool
	Set(ctx context.Context, key, value string) error
}

type Retriever interface {
	Retrieve(ctx context.Context, feedURL string) ([]model.FeedItem, error)
}

type Reporter interface {
	Notify(msg string)
}

type Service struct {
	cache     FeedCache
	options   OptionProvider
	retriever Retriever
	reporter  Reporter

	endpoint string
	now      func() time.Time

	refreshes singleflight.Group
}

func New(
	cache FeedCache,
	options OptionProvider,
	retriever Retriever,
	reporter Reporter,
	endpoint string,
	now func() time.Time,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		cache:     cache,
		options:   options,
		retriever: retriever,
		reporter:  reporter,
		endpoint:  endpoint,
		now:       now,
	}
}

// GetFeed returns the feed items, refetching them when the cache is missing or
// older than the configured cache time. When the refetch fails the previously
// cached items are returned together with the error.
func (s *Service) GetFeed(ctx context.Context) ([]model.FeedItem, error) {
	userID, err := s.options.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return []model.FeedItem{}, nil
	}

	items, cached, err := s.cache.Get(ctx, cache.FeedName)
	if err != nil {
		return nil, err
	}

	lastMod, stamped, err := s.cache.Timestamp(ctx, cache.LastModName)
	if err != nil {
		return nil, err
	}

	ttl, err := s.options.CacheTTL(ctx)
	if err != nil {
		return nil, err
	}

	if cached && stamped && !expired(s.now(), lastMod, ttl) {
		return items, nil
	}

	// The refresh is shared by every caller waiting on userID, so it must not
	// end with the first caller's request. The retriever bounds it with its own timeout.
	refreshCtx := context.WithoutCancel(ctx)
	fresh, err, _ := s.refreshes.Do(userID, func() (any, error) {
		return s.refresh(refreshCtx, userID)
	})
	if err != nil {
		if items == nil {
			items = []model.FeedItem{}
		}
		return items, fmt.Errorf("refreshing feed for %s: %w", userID, err)
	}

	return fresh.([]model.FeedItem), nil
}

// expired compares in whole seconds, the resolution the timestamp is stored with.
func expired(now, lastMod time.Time, ttl time.Duration) bool {
	return now.Unix()-lastMod.Unix() > int64(ttl/time.Second)
}

func (s *Service) refresh(ctx context.Context, userID string) ([]model.FeedItem, error) {
	items, err := s.retriever.Retrieve(ctx, source.FeedURL(s.endpoint, userID))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.FeedItem{}
	}

	if err := s.cache.Put(ctx, cache.FeedName, items); err != nil {
		return nil, err
	}
	if err := s.cache.PutTimestamp(ctx, cache.LastModName, s.now()); err != nil {
		return nil, err
	}

	log.Printf("[INFO] fetched %d items for %s", len(items), userID)
	return items, nil
}

// ClearCache empties the cached feed and restarts the freshness clock.
func (s *Service) ClearCache(ctx context.Context) error {
	if err := s.cache.Put(ctx, cache.FeedName, nil); err != nil {
		return err
	}
	if err := s.cache.PutTimestamp(ctx, cache.LastModName, s.now()); err != nil {
		return err
	}

	log.Printf("[INFO] feed cache cleared")
	return nil
}

// HandleOptionSave runs after the admin saved the plugin options. A requested
// clear is applied and the checkbox is reset.
func (s *Service) HandleOptionSave(ctx context.Context, clearRequested bool) error {
	if !clearRequested || !s.options.AllowClear() {
		return nil
	}

	if err := s.ClearCache(ctx); err != nil {
		return err
	}

	return s.options.Set(ctx, options.KeyCacheClear, "0")
}

func (s *Service) report(err error) {
	log.Printf("[ERROR] failed to refresh feed: %v", err)
	if s.reporter != nil {
		s.reporter.Notify(fmt.Sprintf("flickrfeed: %v", err))
	}
}
