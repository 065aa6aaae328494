package feed

import (
	"context"
	"html/template"
	"strings"

	"github.com/samber/lo"

	"github.com/acrylian/flickrfeed/internal/model"
)

const (
	DefaultCount = 4
	DefaultClass = "flickrfeed"
)

var listTemplate = template.Must(template.New("flickrfeed").Parse(
	`<ul class="{{.Class}}">{{range .Thumbs}}<li>{{.}}</li>{{end}}</ul>`,
))

// Render returns an unordered list with the thumbnails of the first maxCount
// items that have one. Nothing is rendered when the feed is empty. A failed
// refresh is reported and the last cached items are rendered instead.
func (s *Service) Render(ctx context.Context, maxCount int, cssClass string) (string, error) {
	items, err := s.GetFeed(ctx)
	if err != nil {
		if !recoverable(err) {
			return "", err
		}
		s.report(err)
	}

	return renderList(items, maxCount, cssClass)
}

func renderList(items []model.FeedItem, maxCount int, cssClass string) (string, error) {
	if len(items) == 0 || maxCount < 1 {
		return "", nil
	}

	thumbs := lo.FilterMap(items, func(item model.FeedItem, _ int) (template.HTML, bool) {
		thumb, ok := ItemThumbnail(item)
		return template.HTML(thumb), ok //nolint:gosec // markup comes from the feed provider
	})
	if len(thumbs) > maxCount {
		thumbs = thumbs[:maxCount]
	}

	var b strings.Builder
	err := listTemplate.Execute(&b, struct {
		Class  string
		Thumbs []template.HTML
	}{
		Class:  cssClass,
		Thumbs: thumbs,
	})
	if err != nil {
		return "", err
	}

	return b.String(), nil
}
