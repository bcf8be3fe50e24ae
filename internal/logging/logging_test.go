package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func logSingleField(t *testing.T, key string, value any) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(NewRedactingHandler(slog.NewJSONHandler(&buf, nil)))
	logger.Info("test", key, value)

	out := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestRedactionPasswordField(t *testing.T) {
	out := logSingleField(t, "password", "hunter2")
	require.Equal(t, redacted, out["password"])
}

func TestRedactionWebhookField(t *testing.T) {
	out := logSingleField(t, "webhook_url", "https://discord.com/api/webhooks/1/abc")
	require.Equal(t, redacted, out["webhook_url"])
}

func TestRedactionMasksWebhookTokenInErrors(t *testing.T) {
	err := fmt.Errorf("post webhook: %w", errors.New(`Post "http://127.0.0.1:1/api/webhooks/123/SECRET-TOKEN": dial tcp`))
	out := logSingleField(t, "error", err)
	require.Equal(t, `post webhook: Post "http://127.0.0.1:1/api/webhooks/123/[REDACTED]": dial tcp`, out["error"])

	out = logSingleField(t, "detail", "see https://discord.com/api/webhooks/9/abc?wait=true")
	require.Equal(t, "see https://discord.com/api/webhooks/9/[REDACTED]?wait=true", out["detail"])
}

func TestRedactionKeepsOtherFields(t *testing.T) {
	out := logSingleField(t, "title", "One Piece")
	require.Equal(t, "One Piece", out["title"])
}

func TestRedactionInsideGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewRedactingHandler(slog.NewJSONHandler(&buf, nil)))
	logger.Info("test", slog.Group("user", slog.String("name", "rex"), slog.String("token", "abc")))

	out := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	group, ok := out["user"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "rex", group["name"])
	require.Equal(t, redacted, group["token"])
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "DEBUG", want: slog.LevelDebug},
		{in: "info", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
		{in: "WARN", want: slog.LevelWarn},
		{in: "ERROR", want: slog.LevelError},
		{in: "LOUD", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseLevel(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNewWithFile(t *testing.T) {
	logger, closer, err := New(Options{Level: "INFO", File: filepath.Join(t.TempDir(), "logs", "app.log")})
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Info("hello")
	require.NoError(t, closer.Close())
}
