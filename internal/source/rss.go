package source

import (
	"context"
	"strings"
	"time"

	"github.com/SlyMarbo/rss"
	"github.com/samber/lo"

	"github.com/acrylian/flickrfeed/internal/model"
)

type RSSRetriever struct {
	timeout time.Duration
}

func NewRSSRetriever(timeout time.Duration) RSSRetriever {
	return RSSRetriever{timeout: timeout}
}

func (r RSSRetriever) Retrieve(ctx context.Context, feedURL string) ([]model.FeedItem, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	client, transport := newFetchClient(ctx)

	feed, err := rss.FetchByClient(feedURL, client)
	if err != nil {
		return nil, classify(transport, err)
	}

	return lo.Map(feed.Items, func(item *rss.Item, _ int) model.FeedItem {
		return model.FeedItem{
			Title:       item.Title,
			Link:        item.Link,
			PublishedAt: item.Date,
			Description: itemText(item),
		}
	}), nil
}

// itemText returns the HTML description Flickr puts in <description>.
// Content is only consulted when the summary is missing.
func itemText(item *rss.Item) string {
	if s := strings.TrimSpace(item.Summary); s != "" {
		return s
	}
	return strings.TrimSpace(item.Content)
}
