package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"comicnotifier/pkg/models"
)

const embedColor = 5763719

var ErrDelivery = errors.New("webhook delivery failed")

// Payload is the Discord-compatible webhook body.
type Payload struct {
	Username string  `json:"username,omitempty"`
	Content  string  `json:"content"`
	Embeds   []Embed `json:"embeds,omitempty"`
}

type Embed struct {
	Title       string       `json:"title"`
	URL         string       `json:"url,omitempty"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

type WebhookOptions struct {
	BotName string
	// SiteURL is linked from the embed title; the comic url is used when empty.
	SiteURL         string
	MaxElapsed      time.Duration
	InitialInterval time.Duration
}

type WebhookClient struct {
	log    *slog.Logger
	client *http.Client
	opts   WebhookOptions
}

func NewWebhookClient(log *slog.Logger, client *http.Client, opts WebhookOptions) *WebhookClient {
	if opts.MaxElapsed <= 0 {
		opts.MaxElapsed = 30 * time.Second
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = 500 * time.Millisecond
	}
	return &WebhookClient{log: log, client: client, opts: opts}
}

func (c *WebhookClient) ChapterPayload(u models.ChapterUpdate) Payload {
	link := c.opts.SiteURL
	if link == "" {
		link = u.URL
	}
	return Payload{
		Username: c.opts.BotName,
		Content:  fmt.Sprintf("**%s** has a new chapter!", u.Title),
		Embeds: []Embed{{
			Title:       u.Title,
			URL:         link,
			Description: fmt.Sprintf("New chapter: **%s** is out!", u.Chapter),
			Color:       embedColor,
			Footer:      &EmbedFooter{Text: "Read it before the spoilers hit!"},
			Timestamp:   time.Unix(u.Timestamp, 0).UTC().Format(time.RFC3339),
		}},
	}
}

// SendChapter delivers a chapter notification to webhookURL.
func (c *WebhookClient) SendChapter(ctx context.Context, webhookURL string, u models.ChapterUpdate) error {
	return c.Send(ctx, webhookURL, c.ChapterPayload(u))
}

// SendTest checks that webhookURL accepts messages.
func (c *WebhookClient) SendTest(ctx context.Context, webhookURL string) error {
	return c.Send(ctx, webhookURL, Payload{
		Username: c.opts.BotName,
		Content:  "Hello! This is a test from Comic Notifier. If you can read this, notifications work.",
	})
}

// Send posts the payload, retrying with exponential backoff on network
// errors, 429 and 5xx. Other 4xx answers are final.
func (c *WebhookClient) Send(ctx context.Context, webhookURL string, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.InitialInterval
	b.MaxElapsedTime = c.opts.MaxElapsed

	attempt := 0
	op := func() error {
		attempt++
		err := c.post(ctx, webhookURL, body)
		if err != nil {
			c.log.Debug("webhook attempt failed", "attempt", attempt, "error", err)
		}
		return err
	}
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return fmt.Errorf("%w after %d attempt(s): %w", ErrDelivery, attempt, err)
	}
	return nil
}

func (c *WebhookClient) post(ctx context.Context, webhookURL string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("cannot create request: %w", withoutURL(err)))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", withoutURL(err))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Warn("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	statusErr := fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return statusErr
	}
	return backoff.Permanent(statusErr)
}

// withoutURL drops the request url from err; a webhook url carries its token.
func withoutURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
