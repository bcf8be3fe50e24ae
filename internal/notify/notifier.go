package notify

import (
	"context"
	"log/slog"

	"comicnotifier/pkg/models"
)

// Broadcaster receives every chapter update on a best-effort basis.
type Broadcaster interface {
	Broadcast(u models.ChapterUpdate)
}

type WebhookSender interface {
	SendChapter(ctx context.Context, webhookURL string, u models.ChapterUpdate) error
}

// Fanout delivers an update to the owner's webhook and copies it to every
// broadcaster. Only the webhook result is reported back.
type Fanout struct {
	log          *slog.Logger
	webhook      WebhookSender
	broadcasters []Broadcaster
}

func NewFanout(log *slog.Logger, webhook WebhookSender, broadcasters ...Broadcaster) *Fanout {
	return &Fanout{log: log, webhook: webhook, broadcasters: broadcasters}
}

func (f *Fanout) Notify(ctx context.Context, w models.WatchedFavorite, u models.ChapterUpdate) error {
	for _, b := range f.broadcasters {
		b.Broadcast(u)
	}
	if err := f.webhook.SendChapter(ctx, w.WebhookURL, u); err != nil {
		f.log.Warn("webhook delivery failed", "favorite_id", w.ID, "user", w.Username, "error", err)
		return err
	}
	f.log.Info("chapter notification delivered", "favorite_id", w.ID, "title", w.Title, "chapter", u.Chapter)
	return nil
}
