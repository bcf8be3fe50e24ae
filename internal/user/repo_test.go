package user

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"comicnotifier/pkg/database"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestCreateUserHashesPassword(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	u, err := CreateUser(ctx, db, "rex", "secret")
	require.NoError(t, err)
	require.Positive(t, u.ID)
	require.Equal(t, "rex", u.Username)
	require.NotEqual(t, "secret", u.Password)
	require.Empty(t, u.WebhookURL)
}

func TestCreateUserDuplicate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := CreateUser(ctx, db, "rex", "secret")
	require.NoError(t, err)

	_, err = CreateUser(ctx, db, "rex", "other")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestCreateUserMissingFields(t *testing.T) {
	db := openTestDB(t)
	_, err := CreateUser(context.Background(), db, "  ", "secret")
	require.ErrorIs(t, err, ErrMissingFields)
}

func TestVerifyLogin(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	created, err := CreateUser(ctx, db, "rex", "secret")
	require.NoError(t, err)

	testCases := []struct {
		desc     string
		username string
		password string
		wantErr  error
	}{
		{desc: "success", username: "rex", password: "secret"},
		{desc: "wrong password", username: "rex", password: "nope", wantErr: ErrInvalidCredentials},
		{desc: "unknown user", username: "ghost", password: "secret", wantErr: ErrInvalidCredentials},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			u, err := VerifyLogin(ctx, db, tc.username, tc.password)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, created.ID, u.ID)
		})
	}
}

func TestSetWebhook(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	u, err := CreateUser(ctx, db, "rex", "secret")
	require.NoError(t, err)

	require.NoError(t, SetWebhook(ctx, db, u.ID, "https://discord.example/api/webhooks/1/x"))
	got, err := GetByID(ctx, db, u.ID)
	require.NoError(t, err)
	require.Equal(t, "https://discord.example/api/webhooks/1/x", got.WebhookURL)

	require.ErrorIs(t, SetWebhook(ctx, db, u.ID, "ftp://nope"), ErrInvalidWebhook)
	require.ErrorIs(t, SetWebhook(ctx, db, u.ID, "not a url"), ErrInvalidWebhook)

	require.NoError(t, SetWebhook(ctx, db, u.ID, ""))
	got, err = GetByID(ctx, db, u.ID)
	require.NoError(t, err)
	require.Empty(t, got.WebhookURL)

	var isNull bool
	require.NoError(t, db.QueryRow(`SELECT webhook_url IS NULL FROM users WHERE id = ?`, u.ID).Scan(&isNull))
	require.True(t, isNull)

	require.ErrorIs(t, SetWebhook(ctx, db, 999, ""), ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	u, err := CreateUser(ctx, db, "rex", "secret")
	require.NoError(t, err)

	require.NoError(t, DeleteUser(ctx, db, u.ID))
	_, err = GetByID(ctx, db, u.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, DeleteUser(ctx, db, u.ID), ErrNotFound)
}
