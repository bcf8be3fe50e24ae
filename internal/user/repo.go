package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"comicnotifier/pkg/models"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidWebhook     = errors.New("webhook url must be an absolute http(s) url")
	ErrMissingFields      = errors.New("username/password required")
)

func CreateUser(ctx context.Context, db *sql.DB, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.User{}, ErrMissingFields
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	res, err := db.ExecContext(ctx, `INSERT INTO users(username, password) VALUES(?,?)`, username, string(hash))
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("user id: %w", err)
	}
	return GetByID(ctx, db, id)
}

func VerifyLogin(ctx context.Context, db *sql.DB, username, password string) (models.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx, selectUser+` WHERE username = ?`, username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func GetByID(ctx context.Context, db *sql.DB, id int64) (models.User, error) {
	return scanUser(db.QueryRowContext(ctx, selectUser+` WHERE id = ?`, id))
}

// SetWebhook stores the destination for chapter notifications. An empty
// url clears it.
func SetWebhook(ctx context.Context, db *sql.DB, id int64, webhookURL string) error {
	webhookURL = strings.TrimSpace(webhookURL)
	var value any
	if webhookURL != "" {
		if err := ValidateWebhookURL(webhookURL); err != nil {
			return err
		}
		value = webhookURL
	}
	res, err := db.ExecContext(ctx, `UPDATE users SET webhook_url = ? WHERE id = ?`, value, id)
	if err != nil {
		return fmt.Errorf("update webhook: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes the account; its favorites go with it.
func DeleteUser(ctx context.Context, db *sql.DB, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrNotFound
	}
	return nil
}

func ValidateWebhookURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidWebhook
	}
	return nil
}

const selectUser = `SELECT id, username, password, COALESCE(webhook_url, ''), created_at FROM users`

func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.WebhookURL, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
