package source

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"

	"github.com/acrylian/flickrfeed/internal/model"
)

type GofeedRetriever struct {
	timeout time.Duration
}

func NewGofeedRetriever(timeout time.Duration) GofeedRetriever {
	return GofeedRetriever{timeout: timeout}
}

func (r GofeedRetriever) Retrieve(ctx context.Context, feedURL string) ([]model.FeedItem, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	client, transport := newFetchClient(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		transport.err = err
		return nil, classify(transport, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		transport.err = err
		return nil, classify(transport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		transport.err = err
		return nil, classify(transport, err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, classify(transport, err)
	}

	return lo.Map(feed.Items, func(item *gofeed.Item, _ int) model.FeedItem {
		return model.FeedItem{
			Title:       item.Title,
			Link:        item.Link,
			PublishedAt: published(item),
			Description: strings.TrimSpace(lo.Ternary(item.Description != "", item.Description, item.Content)),
		}
	}), nil
}

func published(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}
