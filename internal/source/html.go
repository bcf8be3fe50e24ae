package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultSelector = "#chapter_list .lchx a"
)

// DefaultStrip is removed from scraped chapter labels.
var DefaultStrip = []string{"Bahasa Indonesia"}

// HTMLSource scrapes the first element matching Selector.
type HTMLSource struct {
	fetcher
	selector string
	strip    []string
}

func NewHTMLSource(log *slog.Logger, client *http.Client, selector string, strip []string) *HTMLSource {
	if selector == "" {
		selector = DefaultSelector
	}
	if strip == nil {
		strip = DefaultStrip
	}
	return &HTMLSource{
		fetcher:  fetcher{log: log, client: client, now: time.Now},
		selector: selector,
		strip:    strip,
	}
}

func (s *HTMLSource) LatestChapter(ctx context.Context, pageURL string) (string, error) {
	body, err := s.get(ctx, pageURL)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("cannot parse html: %w", err)
	}
	chapter := cleanChapter(doc.Find(s.selector).First().Text(), s.strip)
	if chapter == "" {
		return "", ErrChapterNotFound
	}
	return chapter, nil
}
