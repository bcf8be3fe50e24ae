package checker

import (
	"context"

	"comicnotifier/pkg/models"
)

//go:generate mockgen -source=ports.go -destination=mocks.go -package=checker

type Store interface {
	Watched(ctx context.Context) ([]models.WatchedFavorite, error)
	RecordChapter(ctx context.Context, favoriteID int64, previous, chapter string) (int64, bool, error)
	MarkNotification(ctx context.Context, id int64, status models.NotificationStatus, deliveryErr error) error
	FailedNotifications(ctx context.Context, maxAttempts int) ([]models.Redelivery, error)
}

type Source interface {
	LatestChapter(ctx context.Context, pageURL string) (string, error)
}

type Notifier interface {
	Notify(ctx context.Context, w models.WatchedFavorite, u models.ChapterUpdate) error
}

type Runner interface {
	Run(ctx context.Context) (Report, error)
}
