package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"comicnotifier/internal/config"
)

// Resolver dispatches a comic URL to the source configured for its host.
// Hosts without configuration are scraped with the default HTML source.
type Resolver struct {
	byHost   map[string]Source
	fallback Source
}

func NewResolver(log *slog.Logger, client *http.Client, sources []config.SourceConfig) (*Resolver, error) {
	r := &Resolver{
		byHost:   make(map[string]Source, len(sources)),
		fallback: NewHTMLSource(log, client, "", nil),
	}
	for _, sc := range sources {
		host := strings.ToLower(sc.Host)
		switch sc.Kind {
		case "html":
			r.byHost[host] = NewHTMLSource(log, client, sc.Selector, sc.Strip)
		case "json":
			r.byHost[host] = NewJSONSource(log, client, sc.Path, sc.Format)
		default:
			return nil, fmt.Errorf("source %s: unknown kind %q", sc.Host, sc.Kind)
		}
	}
	return r, nil
}

func (r *Resolver) LatestChapter(ctx context.Context, pageURL string) (string, error) {
	src, err := r.For(pageURL)
	if err != nil {
		return "", err
	}
	return src.LatestChapter(ctx, pageURL)
}

func (r *Resolver) For(pageURL string) (Source, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedURL, pageURL)
	}
	if src, ok := r.byHost[strings.ToLower(u.Hostname())]; ok {
		return src, nil
	}
	return r.fallback, nil
}
