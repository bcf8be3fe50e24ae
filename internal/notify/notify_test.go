package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"comicnotifier/pkg/models"
)

func newClient(srv *httptest.Server) *WebhookClient {
	return NewWebhookClient(slog.Default(), srv.Client(), WebhookOptions{
		BotName:         "Spidey",
		MaxElapsed:      2 * time.Second,
		InitialInterval: 10 * time.Millisecond,
	})
}

var update = models.ChapterUpdate{
	UserID:          1,
	FavoriteID:      2,
	Title:           "One Piece",
	URL:             "https://komik.example/one-piece",
	PreviousChapter: "Chapter 1100",
	Chapter:         "Chapter 1101",
	Timestamp:       1700000000,
}

func TestSendChapterPayload(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, newClient(srv).SendChapter(context.Background(), srv.URL, update))

	require.Equal(t, "Spidey", got.Username)
	require.Contains(t, got.Content, "One Piece")
	require.Len(t, got.Embeds, 1)
	require.Equal(t, "One Piece", got.Embeds[0].Title)
	require.Equal(t, update.URL, got.Embeds[0].URL)
	require.Contains(t, got.Embeds[0].Description, "Chapter 1101")
	require.Equal(t, embedColor, got.Embeds[0].Color)
	require.Equal(t, "2023-11-14T22:13:20Z", got.Embeds[0].Timestamp)
}

func TestSendRetries(t *testing.T) {
	testCases := []struct {
		desc      string
		statuses  []int
		wantErr   bool
		wantCalls int32
	}{
		{desc: "success - first try", statuses: []int{200}, wantCalls: 1},
		{desc: "success - after server errors", statuses: []int{500, 503, 204}, wantCalls: 3},
		{desc: "success - after rate limit", statuses: []int{429, 200}, wantCalls: 2},
		{desc: "error - client error is final", statuses: []int{404}, wantErr: true, wantCalls: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := calls.Add(1)
				w.WriteHeader(tc.statuses[int(n)-1])
			}))
			defer srv.Close()

			err := newClient(srv).SendTest(context.Background(), srv.URL)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrDelivery)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tc.wantCalls, calls.Load())
		})
	}
}

func TestSendGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewWebhookClient(slog.Default(), srv.Client(), WebhookOptions{
		MaxElapsed:      100 * time.Millisecond,
		InitialInterval: 10 * time.Millisecond,
	})
	err := client.SendTest(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrDelivery)
}

func TestSendErrorOmitsWebhookURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	hookURL := srv.URL + "/api/webhooks/123/SECRET-TOKEN"
	srv.Close()

	client := NewWebhookClient(slog.Default(), http.DefaultClient, WebhookOptions{
		MaxElapsed:      50 * time.Millisecond,
		InitialInterval: 10 * time.Millisecond,
	})
	err := client.SendChapter(context.Background(), hookURL, update)
	require.ErrorIs(t, err, ErrDelivery)
	require.NotContains(t, err.Error(), "SECRET-TOKEN")
	require.NotContains(t, err.Error(), "/api/webhooks")

	// unparsable url fails before any request is made
	err = client.SendChapter(context.Background(), "http://discord.example/api/webhooks/1/SECRET-TOKEN\x7f", update)
	require.ErrorIs(t, err, ErrDelivery)
	require.NotContains(t, err.Error(), "SECRET-TOKEN")
}

type recordingBroadcaster struct {
	mu      sync.Mutex
	updates []models.ChapterUpdate
}

func (r *recordingBroadcaster) Broadcast(u models.ChapterUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

type stubSender struct {
	err error
	url string
}

func (s *stubSender) SendChapter(ctx context.Context, webhookURL string, u models.ChapterUpdate) error {
	s.url = webhookURL
	return s.err
}

func TestFanout(t *testing.T) {
	w := models.WatchedFavorite{
		Favorite:   models.Favorite{ID: 2, Title: "One Piece"},
		WebhookURL: "https://discord.example/hook",
	}

	b1, b2 := &recordingBroadcaster{}, &recordingBroadcaster{}
	sender := &stubSender{}
	f := NewFanout(slog.Default(), sender, b1, b2)

	require.NoError(t, f.Notify(context.Background(), w, update))
	require.Equal(t, w.WebhookURL, sender.url)
	require.Len(t, b1.updates, 1)
	require.Len(t, b2.updates, 1)

	sender.err = errors.New("down")
	require.Error(t, f.Notify(context.Background(), w, update))
	// broadcasters still got the update
	require.Len(t, b1.updates, 2)
}
