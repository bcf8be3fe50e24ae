package api

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"comicnotifier/internal/auth"
	"comicnotifier/internal/checker"
	"comicnotifier/internal/websocket"
)

// IndexHTML is the fixed landing page served at GET /.
const IndexHTML = "<h1>Sistem Comic Notifier Siap! Database sudah aktif.</h1>"

type WebhookTester interface {
	SendTest(ctx context.Context, webhookURL string) error
}

type Checker interface {
	Run(ctx context.Context) (checker.Report, error)
	Status() checker.Status
}

type Options struct {
	JWTSecret []byte
	TokenTTL  time.Duration
	RateLimit int // requests per second, 0 disables
	Webhook   WebhookTester
	Checker   Checker
	Hub       *websocket.Hub
}

type server struct {
	log  *slog.Logger
	db   *sql.DB
	opts Options
}

func NewRouter(log *slog.Logger, db *sql.DB, opts Options) *gin.Engine {
	s := &server{log: log, db: db, opts: opts}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(log), RateLimit(opts.RateLimit))

	r.GET("/", s.handleIndex)
	r.GET("/ping", s.handlePing)
	r.GET("/health", s.handleHealth)

	r.POST("/auth/register", s.handleRegister)
	r.POST("/auth/login", s.handleLogin)

	authed := r.Group("/")
	authed.Use(auth.RequireJWT(opts.JWTSecret))

	authed.GET("/user/webhook", s.handleGetWebhook)
	authed.PUT("/user/webhook", s.handlePutWebhook)
	authed.POST("/user/webhook/test", s.handleTestWebhook)
	authed.DELETE("/user", s.handleDeleteUser)

	authed.GET("/favorites", s.handleListFavorites)
	authed.POST("/favorites", s.handleAddFavorite)
	authed.DELETE("/favorites/:id", s.handleDeleteFavorite)
	authed.GET("/favorites/:id/notifications", s.handleListNotifications)

	authed.POST("/check", s.handleRunCheck)
	authed.GET("/check/status", s.handleCheckStatus)

	if opts.Hub != nil {
		authed.GET("/ws", websocket.HandleWebSocket(opts.Hub))
	}

	return r
}
