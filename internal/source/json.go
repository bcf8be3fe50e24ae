package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	DefaultJSONPath   = "data.latest_chapter_number"
	DefaultJSONFormat = "Chapter %s"
)

// JSONSource reads the chapter from a JSON API response at a gjson path.
type JSONSource struct {
	fetcher
	path   string
	format string
}

func NewJSONSource(log *slog.Logger, client *http.Client, path, format string) *JSONSource {
	if path == "" {
		path = DefaultJSONPath
	}
	if format == "" {
		format = DefaultJSONFormat
	}
	return &JSONSource{
		fetcher: fetcher{log: log, client: client, now: time.Now},
		path:    path,
		format:  format,
	}
}

func (s *JSONSource) LatestChapter(ctx context.Context, apiURL string) (string, error) {
	body, err := s.get(ctx, apiURL)
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("cannot decode reply: invalid json")
	}
	res := gjson.GetBytes(body, s.path)
	value := strings.TrimSpace(res.String())
	if !res.Exists() || value == "" {
		return "", ErrChapterNotFound
	}
	return fmt.Sprintf(s.format, value), nil
}
