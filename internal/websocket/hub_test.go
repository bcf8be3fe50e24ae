package websocket

import (
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"comicnotifier/internal/auth"
	"comicnotifier/pkg/models"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", auth.RequireJWT([]byte("s")), HandleWebSocket(hub))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, userID int64) *websocket.Conn {
	t.Helper()
	token, err := auth.SignJWT([]byte("s"), userID, "u", time.Hour)
	require.NoError(t, err)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestBroadcastReachesOnlyOwner(t *testing.T) {
	hub := NewHub(slog.Default())
	srv := newTestServer(t, hub)

	owner := dial(t, srv, 1)
	other := dial(t, srv, 2)
	require.Eventually(t, func() bool { return hub.Count(1) == 1 && hub.Count(2) == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(models.ChapterUpdate{UserID: 1, FavoriteID: 9, Title: "One Piece", Chapter: "Chapter 1101"})

	var got models.ChapterUpdate
	require.NoError(t, owner.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, owner.ReadJSON(&got))
	require.Equal(t, int64(9), got.FavoriteID)
	require.Equal(t, "Chapter 1101", got.Chapter)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	require.Error(t, err)
}

func TestDisconnectUnregisters(t *testing.T) {
	hub := NewHub(slog.Default())
	srv := newTestServer(t, hub)

	conn := dial(t, srv, 5)
	require.Eventually(t, func() bool { return hub.Count(5) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Count(5) == 0 }, time.Second, 10*time.Millisecond)
}

func TestRejectsUnauthenticated(t *testing.T) {
	hub := NewHub(slog.Default())
	srv := newTestServer(t, hub)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, 401, resp.StatusCode)
}
