package favorite

import (
	"context"
	"database/sql"
	"fmt"

	"comicnotifier/pkg/models"
)

// RecordChapter moves a favorite from previous to chapter and opens a
// pending notification for it, in one transaction. It reports fresh=false
// when the row no longer holds previous (another run got there first) or
// when this chapter was already notified for the favorite.
func RecordChapter(ctx context.Context, db *sql.DB, favoriteID int64, previous, chapter string) (notificationID int64, fresh bool, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE favorites SET last_chapter = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND last_chapter = ?`, chapter, favoriteID, previous)
	if err != nil {
		return 0, false, fmt.Errorf("update last chapter: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return 0, false, nil
	}

	res, err = tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO notifications(favorite_id, chapter, previous_chapter, status) VALUES(?,?,?,?)`,
		favoriteID, chapter, previous, models.NotificationPending)
	if err != nil {
		return 0, false, fmt.Errorf("insert notification: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff > 0 {
		notificationID, err = res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("notification id: %w", err)
		}
		fresh = true
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit tx: %w", err)
	}
	return notificationID, fresh, nil
}

// MarkNotification records one delivery attempt.
func MarkNotification(ctx context.Context, db *sql.DB, id int64, status models.NotificationStatus, deliveryErr error) error {
	var lastError any
	if deliveryErr != nil {
		lastError = deliveryErr.Error()
	}
	res, err := db.ExecContext(ctx, `
		UPDATE notifications
		SET status = ?, attempts = attempts + 1, last_error = ?,
		    delivered_at = CASE WHEN ? = 'delivered' THEN CURRENT_TIMESTAMP ELSE delivered_at END
		WHERE id = ?`, status, lastError, status, id)
	if err != nil {
		return fmt.Errorf("update notification: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrNotFound
	}
	return nil
}

// FailedNotifications lists failed notifications that are still worth
// retrying: fewer than maxAttempts tries, the chapter is still the
// favorite's latest and the owner has a webhook.
func FailedNotifications(ctx context.Context, db *sql.DB, maxAttempts int) ([]models.Redelivery, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT n.id, n.attempts, n.previous_chapter, n.chapter,
		       f.id, f.user_id, f.title, f.url, f.last_chapter, f.created_at, f.updated_at,
		       u.username, u.webhook_url
		FROM notifications n
		JOIN favorites f ON f.id = n.favorite_id
		JOIN users u ON u.id = f.user_id
		WHERE n.status = ? AND n.attempts < ? AND n.chapter = f.last_chapter
		  AND u.webhook_url IS NOT NULL AND u.webhook_url <> ''
		ORDER BY n.id`, models.NotificationFailed, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("select failed notifications: %w", err)
	}
	defer rows.Close()

	var res []models.Redelivery
	for rows.Next() {
		var r models.Redelivery
		w := &r.Watched
		if err := rows.Scan(&r.NotificationID, &r.Attempts, &r.PreviousChapter, &r.Chapter,
			&w.ID, &w.UserID, &w.Title, &w.URL, &w.LastChapter, &w.CreatedAt, &w.UpdatedAt,
			&w.Username, &w.WebhookURL); err != nil {
			return nil, fmt.Errorf("scan failed notification: %w", err)
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

// ListNotifications returns the delivery history of a favorite owned by userID, newest first.
func ListNotifications(ctx context.Context, db *sql.DB, userID, favoriteID int64) ([]models.Notification, error) {
	if _, err := Get(ctx, db, userID, favoriteID); err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, favorite_id, chapter, status, attempts, COALESCE(last_error, ''), created_at, delivered_at
		FROM notifications WHERE favorite_id = ? ORDER BY id DESC`, favoriteID)
	if err != nil {
		return nil, fmt.Errorf("select notifications: %w", err)
	}
	defer rows.Close()

	res := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var delivered sql.NullTime
		if err := rows.Scan(&n.ID, &n.FavoriteID, &n.Chapter, &n.Status, &n.Attempts, &n.LastError, &n.CreatedAt, &delivered); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if delivered.Valid {
			t := delivered.Time
			n.DeliveredAt = &t
		}
		res = append(res, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
