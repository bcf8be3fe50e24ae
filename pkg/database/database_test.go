package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestMigrateCreatesTables(t *testing.T) {
	db := openTestDB(t)
	for _, table := range []string{"users", "favorites", "notifications"} {
		require.Truef(t, tableExists(t, db, table), "expected table %s to exist", table)
	}
}

func TestMigrateTwiceKeepsData(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO users (username, password) VALUES ('rex', 'hash')`)
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	require.Equal(t, 1, n)
}

func TestMigrateAddsPreviousChapter(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "old.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		favorite_id INTEGER NOT NULL,
		chapter TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		attempts INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		delivered_at TIMESTAMP,
		UNIQUE (favorite_id, chapter)
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO notifications (favorite_id, chapter) VALUES (1, 'Chapter 1')`)
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	var previous string
	require.NoError(t, db.QueryRow(`SELECT previous_chapter FROM notifications`).Scan(&previous))
	require.Empty(t, previous)
}

func TestUsernameUnique(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO users (username, password) VALUES ('rex', 'a')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (username, password) VALUES ('rex', 'b')`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "UNIQUE")
}

func TestFavoriteRequiresExistingUser(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO favorites (title, url, user_id) VALUES ('One Piece', 'https://example.com/op', 42)`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "FOREIGN KEY")
}

func TestFavoriteDefaultsAndCascade(t *testing.T) {
	db := openTestDB(t)

	res, err := db.Exec(`INSERT INTO users (username, password) VALUES ('rex', 'a')`)
	require.NoError(t, err)
	uid, err := res.LastInsertId()
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO favorites (title, url, user_id) VALUES ('One Piece', 'https://example.com/op', ?)`, uid)
	require.NoError(t, err)

	var last string
	require.NoError(t, db.QueryRow(`SELECT last_chapter FROM favorites WHERE user_id = ?`, uid).Scan(&last))
	require.Equal(t, "Belum ada", last)

	_, err = db.Exec(`DELETE FROM users WHERE id = ?`, uid)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM favorites`).Scan(&n))
	require.Zero(t, n)
}

func TestSeed(t *testing.T) {
	db := openTestDB(t)

	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"username": "rex", "password": "pw", "webhook_url": "https://discord.example/hook",
		 "favorites": [
			{"title": "One Piece", "url": "https://example.com/op"},
			{"title": "Naruto", "url": "https://example.com/naruto", "last_chapter": "Chapter 700"}
		 ]}
	]`), 0o644))

	users, err := LoadSeedFromJSON(path)
	require.NoError(t, err)
	require.Len(t, users, 1)

	hashed := 0
	orig := hashPassword
	hashPassword = func(password []byte, cost int) ([]byte, error) {
		hashed++
		return orig(password, bcrypt.MinCost)
	}
	t.Cleanup(func() { hashPassword = orig })

	n, err := Seed(db, users)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 1, hashed)

	var hash string
	require.NoError(t, db.QueryRow(`SELECT password FROM users WHERE username = 'rex'`).Scan(&hash))
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")))

	// second run inserts nothing and leaves the stored password alone
	users[0].Password = "changed"
	n, err = Seed(db, users)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Equal(t, 1, hashed)

	var again string
	require.NoError(t, db.QueryRow(`SELECT password FROM users WHERE username = 'rex'`).Scan(&again))
	require.Equal(t, hash, again)
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}
