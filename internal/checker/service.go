package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"comicnotifier/pkg/models"
)

var ErrAlreadyRunning = errors.New("chapter check already running")

type Status string

const (
	StatusRunning Status = "running"
	StatusIdle    Status = "idle"
)

// MaxDeliveryAttempts bounds how often one notification is sent.
const MaxDeliveryAttempts = 5

// Report summarizes one check run.
type Report struct {
	Duration    time.Duration `json:"-"`
	Elapsed     string        `json:"duration"`
	Checked     int           `json:"checked"`
	Updates     int           `json:"updates_found"`
	Redelivered int           `json:"redelivered"`
	Errors      int           `json:"errors"`
	Logs        []string      `json:"logs"`

	lines []reportLine
}

type reportLine struct {
	userID int64
	text   string
}

// ForUser keeps the counts and only the log lines about userID's favorites.
func (r Report) ForUser(userID int64) Report {
	scoped := r
	scoped.Logs = []string{}
	for _, l := range r.lines {
		if l.userID == userID {
			scoped.Logs = append(scoped.Logs, l.text)
		}
	}
	scoped.lines = nil
	return scoped
}

func (r *Report) addLine(userID int64, text string) {
	r.lines = append(r.lines, reportLine{userID: userID, text: text})
	r.Logs = append(r.Logs, text)
}

type outcome int

const (
	outcomeUnchanged outcome = iota
	outcomeUpdated
	outcomeRedelivered
	outcomeFailed
)

type result struct {
	outcome outcome
	userID  int64
	log     string
}

type Service struct {
	log         *slog.Logger
	store       Store
	source      Source
	notifier    Notifier
	concurrency int
	timeout     time.Duration
	now         func() time.Time
	inProgress  atomic.Bool
}

func NewService(log *slog.Logger, store Store, source Source, notifier Notifier, concurrency int, timeout time.Duration) (*Service, error) {
	if concurrency < 1 {
		return nil, fmt.Errorf("wrong concurrency specified: %d", concurrency)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("fetch timeout must be positive")
	}
	return &Service{
		log:         log,
		store:       store,
		source:      source,
		notifier:    notifier,
		concurrency: concurrency,
		timeout:     timeout,
		now:         time.Now,
	}, nil
}

func (s *Service) Status() Status {
	if s.inProgress.Load() {
		return StatusRunning
	}
	return StatusIdle
}

// Run checks every watched favorite once. A failing favorite is reported
// and never stops the others; only failing to list favorites fails the run.
func (s *Service) Run(ctx context.Context) (Report, error) {
	if !s.inProgress.CompareAndSwap(false, true) {
		return Report{}, ErrAlreadyRunning
	}
	defer s.inProgress.Store(false)

	start := s.now()
	s.log.Info("chapter check started")

	watched, err := s.store.Watched(ctx)
	if err != nil {
		s.log.Error("failed to list watched favorites", "error", err)
		return Report{}, fmt.Errorf("failed to list watched favorites: %w", err)
	}
	report := Report{Checked: len(watched), Logs: []string{}}

	// earlier failures first, so a delivery failing in this run is not retried right away
	retried, err := s.redeliver(ctx)
	if err != nil {
		s.log.Error("failed to list failed notifications", "error", err)
		report.Errors++
	}

	s.log.Debug("checking favorites in parallel", "count", len(watched), "concurrency", s.concurrency)

	results := make([]result, len(watched))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, w := range watched {
		i, w := i, w
		g.Go(func() error {
			results[i] = s.checkOne(ctx, w)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range append(retried, results...) {
		switch r.outcome {
		case outcomeUpdated:
			report.Updates++
		case outcomeRedelivered:
			report.Redelivered++
		case outcomeFailed:
			report.Errors++
		}
		if r.log != "" {
			report.addLine(r.userID, r.log)
		}
	}
	report.Duration = s.now().Sub(start)
	report.Elapsed = fmt.Sprintf("%.2fs", report.Duration.Seconds())

	s.log.Info("chapter check finished",
		"duration", report.Duration, "checked", report.Checked, "updates", report.Updates,
		"redelivered", report.Redelivered, "errors", report.Errors)
	return report, nil
}

func (s *Service) checkOne(ctx context.Context, w models.WatchedFavorite) result {
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	chapter, err := s.source.LatestChapter(fetchCtx, w.URL)
	cancel()
	if err != nil {
		s.log.Warn("failed to fetch latest chapter", "favorite_id", w.ID, "title", w.Title, "error", err)
		return result{outcome: outcomeFailed, userID: w.UserID, log: fmt.Sprintf("ERROR [%s]: %v", w.Title, err)}
	}
	if chapter == w.LastChapter {
		return result{outcome: outcomeUnchanged}
	}

	notificationID, fresh, err := s.store.RecordChapter(ctx, w.ID, w.LastChapter, chapter)
	if err != nil {
		s.log.Error("failed to record chapter", "favorite_id", w.ID, "error", err)
		return result{outcome: outcomeFailed, userID: w.UserID, log: fmt.Sprintf("ERROR [%s]: %v", w.Title, err)}
	}
	if !fresh {
		s.log.Debug("chapter already handled", "favorite_id", w.ID, "chapter", chapter)
		return result{outcome: outcomeUnchanged}
	}
	s.log.Info("new chapter found", "favorite_id", w.ID, "title", w.Title, "chapter", chapter)

	update := models.ChapterUpdate{
		UserID:          w.UserID,
		FavoriteID:      w.ID,
		Title:           w.Title,
		URL:             w.URL,
		PreviousChapter: w.LastChapter,
		Chapter:         chapter,
		Timestamp:       s.now().Unix(),
	}
	line := fmt.Sprintf("UPDATE [%s]: %s -> %s", w.Title, w.LastChapter, chapter)

	if err := s.deliver(ctx, notificationID, w, update); err != nil {
		line += fmt.Sprintf(" (notification failed: %v)", err)
	}
	return result{outcome: outcomeUpdated, userID: w.UserID, log: line}
}

// redeliver retries notifications that failed in earlier runs.
func (s *Service) redeliver(ctx context.Context) ([]result, error) {
	failed, err := s.store.FailedNotifications(ctx, MaxDeliveryAttempts)
	if err != nil {
		return nil, err
	}

	results := make([]result, 0, len(failed))
	for _, r := range failed {
		update := models.ChapterUpdate{
			UserID:          r.Watched.UserID,
			FavoriteID:      r.Watched.ID,
			Title:           r.Watched.Title,
			URL:             r.Watched.URL,
			PreviousChapter: r.PreviousChapter,
			Chapter:         r.Chapter,
			Timestamp:       s.now().Unix(),
		}
		res := result{userID: r.Watched.UserID}
		if err := s.deliver(ctx, r.NotificationID, r.Watched, update); err != nil {
			res.log = fmt.Sprintf("RETRY [%s]: %s (attempt %d, notification failed: %v)", r.Watched.Title, r.Chapter, r.Attempts+1, err)
		} else {
			res.outcome = outcomeRedelivered
			res.log = fmt.Sprintf("RETRY [%s]: %s delivered", r.Watched.Title, r.Chapter)
		}
		results = append(results, res)
	}
	return results, nil
}

// deliver sends the update and records the attempt on the notification.
func (s *Service) deliver(ctx context.Context, notificationID int64, w models.WatchedFavorite, u models.ChapterUpdate) error {
	status := models.NotificationDelivered
	deliveryErr := s.notifier.Notify(ctx, w, u)
	if deliveryErr != nil {
		status = models.NotificationFailed
	}
	if err := s.store.MarkNotification(ctx, notificationID, status, deliveryErr); err != nil {
		s.log.Error("failed to mark notification", "notification_id", notificationID, "error", err)
	}
	return deliveryErr
}
