package tcpsync

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"comicnotifier/pkg/models"
)

func TestBroadcastStreamsNDJSON(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s := New(slog.Default())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.Count() == 1 }, time.Second, 10*time.Millisecond)

	s.Broadcast(models.ChapterUpdate{UserID: 1, FavoriteID: 2, Title: "Solo Leveling", Chapter: "Chapter 200"})
	s.Broadcast(models.ChapterUpdate{UserID: 1, FavoriteID: 3, Title: "Blue Lock", Chapter: "Chapter 300"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	sc := bufio.NewScanner(conn)

	var got models.ChapterUpdate
	require.True(t, sc.Scan())
	require.NoError(t, json.Unmarshal(sc.Bytes(), &got))
	require.Equal(t, "Chapter 200", got.Chapter)

	require.True(t, sc.Scan())
	require.NoError(t, json.Unmarshal(sc.Bytes(), &got))
	require.Equal(t, int64(3), got.FavoriteID)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("serve did not stop")
	}
	require.Equal(t, 0, s.Count())
}

func TestClientDisconnectIsRemoved(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := New(slog.Default())
	go func() { _ = s.Serve(ctx, ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.Count() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return s.Count() == 0 }, time.Second, 10*time.Millisecond)
}
