package feed

import (
	"errors"

	"github.com/acrylian/flickrfeed/internal/source"
)

var (
	// ErrConfigMissing means no Flickr user id is configured. GetFeed treats
	// this as "feature disabled" and returns an empty list instead.
	ErrConfigMissing = errors.New("flickr user id is not configured")

	ErrFetchFailed = source.ErrFetchFailed
	ErrParseFailed = source.ErrParseFailed
)

// recoverable reports whether err leaves the cache usable.
func recoverable(err error) bool {
	return errors.Is(err, ErrFetchFailed) || errors.Is(err, ErrParseFailed)
}
