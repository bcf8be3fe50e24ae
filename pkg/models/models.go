package models

import "time"

// NoChapter is stored in favorites.last_chapter until a check records a real chapter.
const NoChapter = "Belum ada"

// users table
type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Password   string    `json:"-"` // bcrypt hash
	WebhookURL string    `json:"webhook_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// favorites table
type Favorite struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	LastChapter string    `json:"last_chapter"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WatchedFavorite is a favorite joined with the owner's webhook, the unit of a check run.
type WatchedFavorite struct {
	Favorite
	Username   string `json:"username"`
	WebhookURL string `json:"webhook_url"`
}

// ChapterUpdate is broadcast to every notification channel when a new chapter shows up.
type ChapterUpdate struct {
	UserID          int64  `json:"user_id"`
	FavoriteID      int64  `json:"favorite_id"`
	Title           string `json:"title"`
	URL             string `json:"url"`
	PreviousChapter string `json:"previous_chapter"`
	Chapter         string `json:"chapter"`
	Timestamp       int64  `json:"timestamp"`
}

// Redelivery is a failed notification of the chapter a favorite currently
// holds, retried while the owner still has a webhook.
type Redelivery struct {
	NotificationID  int64
	Attempts        int
	PreviousChapter string
	Chapter         string
	Watched         WatchedFavorite
}

type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationDelivered NotificationStatus = "delivered"
	NotificationFailed    NotificationStatus = "failed"
)

// notifications table
type Notification struct {
	ID          int64              `json:"id"`
	FavoriteID  int64              `json:"favorite_id"`
	Chapter     string             `json:"chapter"`
	Status      NotificationStatus `json:"status"`
	Attempts    int                `json:"attempts"`
	LastError   string             `json:"last_error,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	DeliveredAt *time.Time         `json:"delivered_at,omitempty"`
}
