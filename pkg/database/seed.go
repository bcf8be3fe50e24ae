package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"comicnotifier/pkg/models"
)

var hashPassword = bcrypt.GenerateFromPassword

// SeedUser is one entry of the seed file: an account and the comics it watches.
type SeedUser struct {
	Username   string         `json:"username"`
	Password   string         `json:"password"`
	WebhookURL string         `json:"webhook_url"`
	Favorites  []SeedFavorite `json:"favorites"`
}

type SeedFavorite struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	LastChapter string `json:"last_chapter"`
}

func LoadSeedFromJSON(jsonPath string) ([]SeedUser, error) {
	b, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read seed json: %w", err)
	}

	var list []SeedUser
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("unmarshal seed json: %w", err)
	}

	return list, nil
}

// Seed inserts users and favorites that are not present yet and returns
// how many favorites were added. Existing usernames keep their password
// and are not hashed again.
func Seed(db *sql.DB, users []SeedUser) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	userStmt, err := tx.Prepare(`INSERT INTO users (username, password, webhook_url) VALUES (?, ?, ?);`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert user: %w", err)
	}
	defer userStmt.Close()

	favStmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO favorites (title, url, last_chapter, user_id)
		VALUES (?, ?, ?, ?);
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert favorite: %w", err)
	}
	defer favStmt.Close()

	inserted := 0
	for _, u := range users {
		if u.Username == "" || u.Password == "" {
			return 0, fmt.Errorf("seed user %q: username and password required", u.Username)
		}

		var userID int64
		err := tx.QueryRow(`SELECT id FROM users WHERE username = ?`, u.Username).Scan(&userID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			userID, err = insertSeedUser(userStmt, u)
			if err != nil {
				return 0, err
			}
		case err != nil:
			return 0, fmt.Errorf("lookup user %s: %w", u.Username, err)
		}

		for _, f := range u.Favorites {
			last := f.LastChapter
			if last == "" {
				last = models.NoChapter
			}
			res, err := favStmt.Exec(f.Title, f.URL, last, userID)
			if err != nil {
				return 0, fmt.Errorf("insert favorite %s for %s: %w", f.URL, u.Username, err)
			}

			aff, _ := res.RowsAffected()
			if aff > 0 {
				inserted++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return inserted, nil
}

func insertSeedUser(stmt *sql.Stmt, u SeedUser) (int64, error) {
	hash, err := hashPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password for %s: %w", u.Username, err)
	}
	var webhook any
	if u.WebhookURL != "" {
		webhook = u.WebhookURL
	}
	res, err := stmt.Exec(u.Username, string(hash), webhook)
	if err != nil {
		return 0, fmt.Errorf("insert user %s: %w", u.Username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user id %s: %w", u.Username, err)
	}
	return id, nil
}
