// Package source retrieves the public Flickr photo feed and maps its entries to model.FeedItem.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/acrylian/flickrfeed/internal/model"
)

const (
	DefaultEndpoint = "https://www.flickr.com/services/feeds/photos_public.gne"
	DefaultTimeout  = 10 * time.Second
)

var (
	ErrFetchFailed = errors.New("fetch failed")
	ErrParseFailed = errors.New("parse failed")
)

type Retriever interface {
	Retrieve(ctx context.Context, feedURL string) ([]model.FeedItem, error)
}

// New returns the retriever for the named parser: "rss" or "gofeed".
func New(parser string, timeout time.Duration) (Retriever, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	switch parser {
	case "", "rss":
		return NewRSSRetriever(timeout), nil
	case "gofeed":
		return NewGofeedRetriever(timeout), nil
	default:
		return nil, fmt.Errorf("unknown feed parser %q (valid: rss, gofeed)", parser)
	}
}

// FeedURL builds the rss2 feed address for a Flickr account id.
func FeedURL(endpoint, userID string) string {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return endpoint + "?id=" + url.QueryEscape(userID) + "&format=rss2"
}

// fetchTransport injects a context into every outgoing request and remembers
// transport-level failures, so a failed download can be told apart from a
// body the parser rejected.
type fetchTransport struct {
	ctx  context.Context
	base http.RoundTripper
	err  error
}

func (t *fetchTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req.WithContext(t.ctx))
	if err != nil {
		t.err = err
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		t.err = fmt.Errorf("unexpected status %s", resp.Status)
		return nil, t.err
	}

	resp.Body = &recordingBody{ReadCloser: resp.Body, t: t}
	return resp, nil
}

type recordingBody struct {
	io.ReadCloser
	t *fetchTransport
}

func (b *recordingBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		b.t.err = err
	}
	return n, err
}

func newFetchClient(ctx context.Context) (*http.Client, *fetchTransport) {
	t := &fetchTransport{ctx: ctx, base: http.DefaultTransport}
	return &http.Client{Transport: t}, t
}

// classify wraps err with ErrFetchFailed when the transport saw a failure and
// with ErrParseFailed otherwise.
func classify(t *fetchTransport, err error) error {
	if t.err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, t.err)
	}
	return fmt.Errorf("%w: %v", ErrParseFailed, err)
}
