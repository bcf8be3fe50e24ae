package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrChapterNotFound = errors.New("chapter not found on page")
	ErrUnsupportedURL  = errors.New("unsupported comic url")
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Source reads the newest chapter label a comic page advertises.
type Source interface {
	LatestChapter(ctx context.Context, pageURL string) (string, error)
}

type fetcher struct {
	log    *slog.Logger
	client *http.Client
	now    func() time.Time
}

// get fetches pageURL bypassing caches: a timestamp query parameter plus
// no-cache headers, the way the comic sites have to be polled.
func (f *fetcher) get(ctx context.Context, pageURL string) ([]byte, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedURL, pageURL)
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(f.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot get %s: %w", u.Host, err)
	}
	defer f.closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, u.Host)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("cannot read body: %w", err)
	}
	return body, nil
}

func (f *fetcher) closeBody(body io.Closer) {
	if err := body.Close(); err != nil {
		f.log.Warn("failed to close response body", "error", err)
	}
}

func cleanChapter(raw string, strip []string) string {
	for _, s := range strip {
		raw = strings.ReplaceAll(raw, s, "")
	}
	return strings.Join(strings.Fields(raw), " ")
}
