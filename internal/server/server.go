// Package server exposes the rendered feed fragment and the plugin option page over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/acrylian/flickrfeed/internal/feed"
	"github.com/acrylian/flickrfeed/internal/model"
	"github.com/acrylian/flickrfeed/internal/options"
)

type FeedRenderer interface {
	Render(ctx context.Context, maxCount int, cssClass string) (string, error)
	HandleOptionSave(ctx context.Context, clearRequested bool) error
}

type OptionStore interface {
	Supported() []model.Option
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type Server struct {
	feed    FeedRenderer
	options OptionStore
}

func New(feed FeedRenderer, options OptionStore) *Server {
	return &Server{feed: feed, options: options}
}

func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/flickrfeed", s.render)

	admin := r.Group("/admin")
	admin.GET("/options", s.listOptions)
	admin.POST("/options", s.saveOptions)

	return r
}

func (s *Server) render(c *gin.Context) {
	count := feed.DefaultCount
	if v := c.Query("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			AbortJSONError(c, http.StatusBadRequest, ErrorCodeValidation, "count must be a positive integer")
			return
		}
		count = n
	}

	class := c.DefaultQuery("class", feed.DefaultClass)

	out, err := s.feed.Render(c.Request.Context(), count, class)
	if err != nil {
		log.Printf("[ERROR] failed to render feed: %v", err)
		AbortJSONError(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to render feed")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(out))
}

type optionView struct {
	model.Option
	Value string `json:"value"`
}

func (s *Server) listOptions(c *gin.Context) {
	views, err := s.optionViews(c.Request.Context())
	if err != nil {
		log.Printf("[ERROR] failed to read options: %v", err)
		AbortJSONError(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to read options")
		return
	}

	c.JSON(http.StatusOK, gin.H{"options": views})
}

func (s *Server) optionViews(ctx context.Context) ([]optionView, error) {
	supported := s.options.Supported()
	views := make([]optionView, 0, len(supported))
	for _, opt := range supported {
		v, err := s.options.Get(ctx, opt.Key)
		if err != nil {
			return nil, err
		}
		views = append(views, optionView{Option: opt, Value: v})
	}
	return views, nil
}

// saveOptions stores the submitted text options and then runs the save hook,
// which clears the cache when the clear checkbox was ticked.
func (s *Server) saveOptions(c *gin.Context) {
	ctx := c.Request.Context()

	values, err := submittedOptions(c)
	if err != nil {
		AbortJSONError(c, http.StatusBadRequest, ErrorCodeValidation, "malformed request body")
		return
	}

	if v, ok := values[options.KeyCacheTime]; ok {
		if sec, err := strconv.Atoi(strings.TrimSpace(v)); err != nil || sec < 0 {
			AbortJSONError(c, http.StatusBadRequest, ErrorCodeValidation, "cache time must be a non-negative number of seconds")
			return
		}
	}

	for _, key := range []string{options.KeyUserID, options.KeyCacheTime} {
		v, ok := values[key]
		if !ok {
			continue
		}
		if err := s.options.Set(ctx, key, strings.TrimSpace(v)); err != nil {
			log.Printf("[ERROR] failed to save option %s: %v", key, err)
			AbortJSONError(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to save options")
			return
		}
	}

	if err := s.feed.HandleOptionSave(ctx, checked(values[options.KeyCacheClear])); err != nil {
		log.Printf("[ERROR] failed to clear cache: %v", err)
		AbortJSONError(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to clear cache")
		return
	}

	s.listOptions(c)
}

// submittedOptions reads the option values from a JSON object or a form body.
// JSON numbers and booleans are kept in their literal form; nulls are dropped.
func submittedOptions(c *gin.Context) (map[string]string, error) {
	if c.ContentType() == gin.MIMEJSON {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil, err
		}

		body = lo.PickBy(body, func(_ string, v any) bool { return v != nil })
		return lo.MapValues(body, func(v any, _ string) string {
			if n, ok := v.(float64); ok {
				return strconv.FormatFloat(n, 'f', -1, 64)
			}
			return fmt.Sprint(v)
		}), nil
	}

	values := map[string]string{}
	for _, key := range []string{options.KeyUserID, options.KeyCacheTime, options.KeyCacheClear} {
		if v, ok := c.GetPostForm(key); ok {
			values[key] = v
		}
	}
	return values, nil
}

func checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
