package favorite

import (
	"context"
	"database/sql"

	"comicnotifier/pkg/models"
)

// Store binds the package functions to one database for callers that
// depend on an interface.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Watched(ctx context.Context) ([]models.WatchedFavorite, error) {
	return Watched(ctx, s.db)
}

func (s *Store) RecordChapter(ctx context.Context, favoriteID int64, previous, chapter string) (int64, bool, error) {
	return RecordChapter(ctx, s.db, favoriteID, previous, chapter)
}

func (s *Store) MarkNotification(ctx context.Context, id int64, status models.NotificationStatus, deliveryErr error) error {
	return MarkNotification(ctx, s.db, id, status, deliveryErr)
}

func (s *Store) FailedNotifications(ctx context.Context, maxAttempts int) ([]models.Redelivery, error) {
	return FailedNotifications(ctx, s.db, maxAttempts)
}
