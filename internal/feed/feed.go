// Package feed turns an RSS/Atom feed into capture candidates.
package feed

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Item is one feed entry worth capturing.
type Item struct {
	Title string
	URL   string
}

type Reader struct {
	parser *gofeed.Parser
}

func NewReader() *Reader {
	return &Reader{parser: gofeed.NewParser()}
}

// Items fetches the feed and returns up to limit item links in feed order.
// Entries without a link are skipped; repeated links are returned once.
// limit <= 0 means no limit.
func (r *Reader) Items(ctx context.Context, feedURL string, limit int) ([]Item, error) {
	f, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	seen := make(map[string]struct{}, len(f.Items))
	items := make([]Item, 0, len(f.Items))
	for _, it := range f.Items {
		link := strings.TrimSpace(it.Link)
		if link == "" {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		items = append(items, Item{Title: strings.TrimSpace(it.Title), URL: link})
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items, nil
}
