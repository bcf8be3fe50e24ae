package logging

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

var sensitiveFields = map[string]struct{}{
	"password":    {},
	"token":       {},
	"secret":      {},
	"jwt_secret":  {},
	"webhook_url": {},
	"webhook":     {},
}

// webhookToken matches the token segment of a Discord-style webhook path
// wherever it shows up inside a string or error value.
var webhookToken = regexp.MustCompile(`(/api/webhooks/[^/\s"]+/)[^/\s"?]+`)

// RedactingHandler masks attributes that carry credentials. Webhook URLs
// count: a Discord webhook URL is its own bearer token.
type RedactingHandler struct {
	inner slog.Handler
}

func NewRedactingHandler(inner slog.Handler) *RedactingHandler {
	return &RedactingHandler{inner: inner}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	out := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(redactAttr(attr))
		return true
	})
	return h.inner.Handle(ctx, out)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, redactAttr(attr))
	}
	return &RedactingHandler{inner: h.inner.WithAttrs(out)}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{inner: h.inner.WithGroup(name)}
}

func redactAttr(attr slog.Attr) slog.Attr {
	if _, ok := sensitiveFields[strings.ToLower(attr.Key)]; ok {
		return slog.String(attr.Key, redacted)
	}
	if attr.Value.Kind() == slog.KindGroup {
		group := attr.Value.Group()
		out := make([]any, 0, len(group))
		for _, a := range group {
			out = append(out, redactAttr(a))
		}
		return slog.Group(attr.Key, out...)
	}
	switch attr.Value.Kind() {
	case slog.KindString:
		return slog.String(attr.Key, maskWebhookTokens(attr.Value.String()))
	case slog.KindAny:
		if err, ok := attr.Value.Any().(error); ok {
			return slog.String(attr.Key, maskWebhookTokens(err.Error()))
		}
	}
	return attr
}

func maskWebhookTokens(s string) string {
	if !strings.Contains(s, "/api/webhooks/") {
		return s
	}
	return webhookToken.ReplaceAllString(s, "${1}"+redacted)
}
