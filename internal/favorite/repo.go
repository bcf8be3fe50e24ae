package favorite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"comicnotifier/pkg/models"
)

var (
	ErrNotFound      = errors.New("favorite not found")
	ErrDuplicate     = errors.New("comic already in favorites")
	ErrUserNotFound  = errors.New("favorite owner does not exist")
	ErrMissingFields = errors.New("title/url required")
)

const selectFavorite = `SELECT id, user_id, title, url, last_chapter, created_at, updated_at FROM favorites`

// Add stores a comic for userID. An empty lastChapter keeps the "Belum ada" sentinel.
func Add(ctx context.Context, db *sql.DB, userID int64, title, url, lastChapter string) (models.Favorite, error) {
	title, url = strings.TrimSpace(title), strings.TrimSpace(url)
	if title == "" || url == "" {
		return models.Favorite{}, ErrMissingFields
	}
	lastChapter = strings.TrimSpace(lastChapter)
	if lastChapter == "" {
		lastChapter = models.NoChapter
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO favorites(title, url, last_chapter, user_id) VALUES(?,?,?,?)`,
		title, url, lastChapter, userID)
	if err != nil {
		return models.Favorite{}, mapConstraint(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Favorite{}, fmt.Errorf("favorite id: %w", err)
	}
	return Get(ctx, db, userID, id)
}

// Get returns the favorite only when it belongs to userID.
func Get(ctx context.Context, db *sql.DB, userID, id int64) (models.Favorite, error) {
	f, err := scanFavorite(db.QueryRowContext(ctx, selectFavorite+` WHERE id = ? AND user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Favorite{}, ErrNotFound
	}
	return f, err
}

// ListByUser returns the user's favorites, newest first.
func ListByUser(ctx context.Context, db *sql.DB, userID int64) ([]models.Favorite, error) {
	rows, err := db.QueryContext(ctx, selectFavorite+` WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("select favorites: %w", err)
	}
	defer rows.Close()

	res := []models.Favorite{}
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, f)
	}
	return res, rows.Err()
}

func Delete(ctx context.Context, db *sql.DB, userID, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM favorites WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrNotFound
	}
	return nil
}

// Watched lists every favorite whose owner has a webhook configured.
func Watched(ctx context.Context, db *sql.DB) ([]models.WatchedFavorite, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT f.id, f.user_id, f.title, f.url, f.last_chapter, f.created_at, f.updated_at,
		       u.username, u.webhook_url
		FROM favorites f
		JOIN users u ON u.id = f.user_id
		WHERE u.webhook_url IS NOT NULL AND u.webhook_url <> ''
		ORDER BY f.id`)
	if err != nil {
		return nil, fmt.Errorf("select watched favorites: %w", err)
	}
	defer rows.Close()

	var res []models.WatchedFavorite
	for rows.Next() {
		var w models.WatchedFavorite
		if err := rows.Scan(&w.ID, &w.UserID, &w.Title, &w.URL, &w.LastChapter, &w.CreatedAt, &w.UpdatedAt,
			&w.Username, &w.WebhookURL); err != nil {
			return nil, fmt.Errorf("scan watched favorite: %w", err)
		}
		res = append(res, w)
	}
	return res, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFavorite(row scanner) (models.Favorite, error) {
	var f models.Favorite
	err := row.Scan(&f.ID, &f.UserID, &f.Title, &f.URL, &f.LastChapter, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Favorite{}, err
		}
		return models.Favorite{}, fmt.Errorf("scan favorite: %w", err)
	}
	return f, nil
}

func mapConstraint(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique:
			return ErrDuplicate
		case sqlite3.ErrConstraintForeignKey:
			return ErrUserNotFound
		}
	}
	return fmt.Errorf("insert favorite: %w", err)
}
