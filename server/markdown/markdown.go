// Package markdown renders event descriptions to HTML.
package markdown

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/hrygo/eventdesk/store"
	"github.com/hrygo/eventdesk/store/cache"
)

// Service renders markdown and keeps the HTML of each event in the cache.
// Raw HTML in the source is dropped.
type Service struct {
	md    goldmark.Markdown
	cache *cache.Store
}

func NewService(c *cache.Store) *Service {
	return &Service{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		cache: c,
	}
}

// Render converts source to HTML.
func (s *Service) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(source), &buf); err != nil {
		return "", errors.Wrap(err, "failed to render markdown")
	}
	return buf.String(), nil
}

// RenderEvent returns the HTML of the event's description. The result is
// cached under the events namespace, so any event write drops it.
func (s *Service) RenderEvent(ctx context.Context, event *store.Event) (string, error) {
	key := cache.Key("events", "html", event.UID)
	return cache.MemoizeAs(ctx, s.cache, key, 0, func(context.Context) (string, error) {
		return s.Render(event.Description)
	})
}
