// Package options exposes the plugin's user-configurable settings on top of the
// host option table. Values are read from storage on every call.
package options

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/acrylian/flickrfeed/internal/model"
	"github.com/acrylian/flickrfeed/internal/storage"
)

const (
	KeyUserID     = "flickrfeed_userid"
	KeyCacheTime  = "flickrfeed_cachetime"
	KeyCacheClear = "flickrfeed_cacheclear"
	KeyDateFormat = "date_format"

	DefaultCacheTime  = 86400
	DefaultDateFormat = "January 2, 2006"
)

// legacyKeys were used by early plugin versions to keep the cache in the option table.
var legacyKeys = []string{"flickrfeed_cache", "flickrfeed_lastmod"}

type OptionStorage interface {
	Get(ctx context.Context, name string) (string, error)
	Set(ctx context.Context, name, value string) error
	SetDefault(ctx context.Context, name, value string) error
	Delete(ctx context.Context, name string) error
}

type Options struct {
	storage    OptionStorage
	allowClear bool
}

// New returns the plugin options. allowClear controls whether the manual
// clear-cache checkbox is offered.
func New(storage OptionStorage, allowClear bool) *Options {
	return &Options{storage: storage, allowClear: allowClear}
}

// Init applies defaults and drops keys left behind by older plugin versions.
func (o *Options) Init(ctx context.Context) error {
	if err := o.storage.SetDefault(ctx, KeyCacheTime, strconv.Itoa(DefaultCacheTime)); err != nil {
		return err
	}
	if err := o.storage.SetDefault(ctx, KeyDateFormat, DefaultDateFormat); err != nil {
		return err
	}
	for _, key := range legacyKeys {
		if err := o.storage.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (o *Options) AllowClear() bool {
	return o.allowClear
}

// Supported lists the settings shown on the admin page.
func (o *Options) Supported() []model.Option {
	opts := []model.Option{
		{
			Label: "Flickr User ID",
			Key:   KeyUserID,
			Type:  model.OptionTypeTextbox,
			Order: 1,
			Desc: `The user ID of your Flickr account to fetch. NOTE: Not an username! Flickr ID has a format of "XXXXXXXX@N00".` +
				` To find yours, log in to Flickr and check the flickr.people.getPublicPhotos API explorer page; your user ID is listed under "Useful Values".`,
		},
		{
			Label: "Cache time",
			Key:   KeyCacheTime,
			Type:  model.OptionTypeTextbox,
			Order: 2,
			Desc:  "The time in seconds the cache is kept until the data is fetched freshly.",
		},
	}

	if o.allowClear {
		opts = append(opts, model.Option{
			Label: "Clear cache",
			Key:   KeyCacheClear,
			Type:  model.OptionTypeCheckbox,
			Order: 3,
			Desc:  "Check and save options to clear the cache on force.",
		})
	}

	return opts
}

// Get returns the raw option value; a missing option reads as "".
func (o *Options) Get(ctx context.Context, key string) (string, error) {
	v, err := o.storage.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (o *Options) Set(ctx context.Context, key, value string) error {
	return o.storage.Set(ctx, key, value)
}

func (o *Options) SetDefault(ctx context.Context, key, value string) error {
	return o.storage.SetDefault(ctx, key, value)
}

// UserID returns the configured Flickr account id, trimmed.
func (o *Options) UserID(ctx context.Context) (string, error) {
	v, err := o.Get(ctx, KeyUserID)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

// CacheTTL falls back to the default when the stored value is not an integer.
func (o *Options) CacheTTL(ctx context.Context) (time.Duration, error) {
	v, err := o.Get(ctx, KeyCacheTime)
	if err != nil {
		return 0, err
	}

	sec, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		sec = DefaultCacheTime
	}

	return time.Duration(sec) * time.Second, nil
}

func (o *Options) DateFormat(ctx context.Context) (string, error) {
	v, err := o.Get(ctx, KeyDateFormat)
	if err != nil {
		return "", err
	}
	if v == "" {
		return DefaultDateFormat, nil
	}
	return v, nil
}
