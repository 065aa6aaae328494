package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acrylian/flickrfeed/internal/model"
	"github.com/acrylian/flickrfeed/internal/options"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRenderer struct {
	out     string
	err     error
	count   int
	class   string
	cleared []bool
}

func (r *fakeRenderer) Render(_ context.Context, maxCount int, cssClass string) (string, error) {
	r.count, r.class = maxCount, cssClass
	return r.out, r.err
}

func (r *fakeRenderer) HandleOptionSave(_ context.Context, clearRequested bool) error {
	r.cleared = append(r.cleared, clearRequested)
	return nil
}

type fakeOptions map[string]string

func (o fakeOptions) Supported() []model.Option {
	return []model.Option{
		{Label: "Flickr User ID", Key: options.KeyUserID, Type: model.OptionTypeTextbox, Order: 1},
		{Label: "Cache time", Key: options.KeyCacheTime, Type: model.OptionTypeTextbox, Order: 2},
	}
}

func (o fakeOptions) Get(_ context.Context, key string) (string, error) { return o[key], nil }

func (o fakeOptions) Set(_ context.Context, key, value string) error {
	o[key] = value
	return nil
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	s := New(&fakeRenderer{}, fakeOptions{})
	w := do(t, s.Routes(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRenderDefaults(t *testing.T) {
	r := &fakeRenderer{out: `<ul class="flickrfeed"><li>x</li></ul>`}
	s := New(r, fakeOptions{})

	w := do(t, s.Routes(), httptest.NewRequest(http.MethodGet, "/flickrfeed", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, r.out, w.Body.String())
	assert.Equal(t, 4, r.count)
	assert.Equal(t, "flickrfeed", r.class)
}

func TestRenderQuery(t *testing.T) {
	r := &fakeRenderer{}
	s := New(r, fakeOptions{})

	w := do(t, s.Routes(), httptest.NewRequest(http.MethodGet, "/flickrfeed?count=2&class=gallery", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, 2, r.count)
	assert.Equal(t, "gallery", r.class)
}

func TestRenderBadCount(t *testing.T) {
	s := New(&fakeRenderer{}, fakeOptions{})

	w := do(t, s.Routes(), httptest.NewRequest(http.MethodGet, "/flickrfeed?count=many", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), ErrorCodeValidation)
}

func TestRenderError(t *testing.T) {
	s := New(&fakeRenderer{err: errors.New("database is locked")}, fakeOptions{})

	w := do(t, s.Routes(), httptest.NewRequest(http.MethodGet, "/flickrfeed", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "locked")
}

func TestListOptions(t *testing.T) {
	s := New(&fakeRenderer{}, fakeOptions{options.KeyUserID: "12345678@N00"})

	w := do(t, s.Routes(), httptest.NewRequest(http.MethodGet, "/admin/options", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Options []struct {
			Key   string `json:"key"`
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"options"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Options, 2)
	assert.Equal(t, options.KeyUserID, body.Options[0].Key)
	assert.Equal(t, "textbox", body.Options[0].Type)
	assert.Equal(t, "12345678@N00", body.Options[0].Value)
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/admin/options", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestSaveOptions(t *testing.T) {
	r := &fakeRenderer{}
	opts := fakeOptions{}
	s := New(r, opts)

	w := do(t, s.Routes(), postForm(url.Values{
		options.KeyUserID:     {" 12345678@N00 "},
		options.KeyCacheTime:  {"3600"},
		options.KeyCacheClear: {"on"},
	}))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "12345678@N00", opts[options.KeyUserID])
	assert.Equal(t, "3600", opts[options.KeyCacheTime])
	assert.Equal(t, []bool{true}, r.cleared)
}

func TestSaveOptionsWithoutClear(t *testing.T) {
	r := &fakeRenderer{}
	s := New(r, fakeOptions{})

	w := do(t, s.Routes(), postForm(url.Values{options.KeyUserID: {"x"}}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []bool{false}, r.cleared)
}

func TestSaveOptionsRejectsBadCacheTime(t *testing.T) {
	r := &fakeRenderer{}
	opts := fakeOptions{options.KeyCacheTime: "86400"}
	s := New(r, opts)

	w := do(t, s.Routes(), postForm(url.Values{options.KeyCacheTime: {"a day"}}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "86400", opts[options.KeyCacheTime])
	assert.Empty(t, r.cleared)
}

func postJSON(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/admin/options", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSaveOptionsJSON(t *testing.T) {
	r := &fakeRenderer{}
	opts := fakeOptions{}
	s := New(r, opts)

	w := do(t, s.Routes(), postJSON(`{"flickrfeed_userid":" 12345678@N00 ","flickrfeed_cachetime":3600,"flickrfeed_cacheclear":true}`))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "12345678@N00", opts[options.KeyUserID])
	assert.Equal(t, "3600", opts[options.KeyCacheTime])
	assert.Equal(t, []bool{true}, r.cleared)
}

func TestSaveOptionsJSONRejects(t *testing.T) {
	tests := map[string]string{
		"malformed":      `{"flickrfeed_userid":`,
		"fractional ttl": `{"flickrfeed_cachetime":1.5}`,
		"negative ttl":   `{"flickrfeed_cachetime":"-1"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			r := &fakeRenderer{}
			opts := fakeOptions{options.KeyCacheTime: "86400"}
			s := New(r, opts)

			w := do(t, s.Routes(), postJSON(body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), ErrorCodeValidation)
			assert.Equal(t, "86400", opts[options.KeyCacheTime])
			assert.Empty(t, r.cleared)
		})
	}
}
