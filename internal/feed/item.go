package feed

import (
	"strings"

	"github.com/go-shiori/go-readability"

	"github.com/acrylian/flickrfeed/internal/model"
)

const (
	thumbnailSegment   = 2
	descriptionSegment = 3
)

// segment returns the n-th chunk following a "<p>" in the item description,
// with closing paragraph tags removed. Text before the first "<p>" is not a segment.
func segment(item model.FeedItem, n int) (string, bool) {
	parts := strings.Split(item.Description, "<p>")[1:]
	if len(parts) <= n {
		return "", false
	}

	s := strings.TrimSpace(strings.ReplaceAll(parts[n], "</p>", ""))
	return s, s != ""
}

// ItemThumbnail returns the <a><img></a> markup of the item's thumbnail.
func ItemThumbnail(item model.FeedItem) (string, bool) {
	return segment(item, thumbnailSegment)
}

// ItemDescription returns the photo's own description text, if any.
func ItemDescription(item model.FeedItem) (string, bool) {
	return segment(item, descriptionSegment)
}

func ItemURL(item model.FeedItem) string {
	return item.Link
}

func ItemTitle(item model.FeedItem) string {
	return item.Title
}

// ItemDate formats the publication time with the host date layout.
func ItemDate(item model.FeedItem, layout string) string {
	return item.PublishedAt.Format(layout)
}

// ItemText returns the description fragment as plain text.
func ItemText(item model.FeedItem) string {
	desc, ok := ItemDescription(item)
	if !ok {
		return ""
	}

	doc, err := readability.FromReader(strings.NewReader("<html><body><p>"+desc+"</p></body></html>"), nil)
	if err != nil || strings.TrimSpace(doc.TextContent) == "" {
		return desc
	}

	return strings.Join(strings.Fields(doc.TextContent), " ")
}
