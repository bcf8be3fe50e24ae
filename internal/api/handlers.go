package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"comicnotifier/internal/auth"
	"comicnotifier/internal/checker"
	"comicnotifier/internal/favorite"
	"comicnotifier/internal/user"
)

func (s *server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(IndexHTML))
}

func (s *server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "pong",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *server) handleHealth(c *gin.Context) {
	if err := s.db.PingContext(c.Request.Context()); err != nil {
		s.log.Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *server) handleRegister(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	u, err := user.CreateUser(c.Request.Context(), s.db, req.Username, req.Password)
	switch {
	case errors.Is(err, user.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, user.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		s.internalError(c, "create user", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "user": u})
}

func (s *server) handleLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	u, err := user.VerifyLogin(c.Request.Context(), s.db, req.Username, req.Password)
	if errors.Is(err, user.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		s.internalError(c, "verify login", err)
		return
	}

	token, err := auth.SignJWT(s.opts.JWTSecret, u.ID, u.Username, s.opts.TokenTTL)
	if err != nil {
		s.internalError(c, "sign token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *server) handleGetWebhook(c *gin.Context) {
	u, err := user.GetByID(c.Request.Context(), s.db, auth.UserID(c))
	if err != nil {
		s.userError(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"webhook_url": u.WebhookURL})
}

func (s *server) handlePutWebhook(c *gin.Context) {
	var req struct {
		WebhookURL string `json:"webhook_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	err := user.SetWebhook(c.Request.Context(), s.db, auth.UserID(c), req.WebhookURL)
	if errors.Is(err, user.ErrInvalidWebhook) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.userError(c, "set webhook", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *server) handleTestWebhook(c *gin.Context) {
	u, err := user.GetByID(c.Request.Context(), s.db, auth.UserID(c))
	if err != nil {
		s.userError(c, "get user", err)
		return
	}
	if u.WebhookURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no webhook url configured"})
		return
	}
	if err := s.opts.Webhook.SendTest(c.Request.Context(), u.WebhookURL); err != nil {
		s.log.Warn("test webhook failed", "user_id", u.ID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "webhook delivery failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *server) handleDeleteUser(c *gin.Context) {
	if err := user.DeleteUser(c.Request.Context(), s.db, auth.UserID(c)); err != nil {
		s.userError(c, "delete user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *server) handleListFavorites(c *gin.Context) {
	res, err := favorite.ListByUser(c.Request.Context(), s.db, auth.UserID(c))
	if err != nil {
		s.internalError(c, "list favorites", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": res})
}

func (s *server) handleAddFavorite(c *gin.Context) {
	var req struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		LastChapter string `json:"last_chapter"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	f, err := favorite.Add(c.Request.Context(), s.db, auth.UserID(c), req.Title, req.URL, req.LastChapter)
	switch {
	case errors.Is(err, favorite.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, favorite.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, favorite.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	case err != nil:
		s.internalError(c, "add favorite", err)
		return
	}

	c.JSON(http.StatusCreated, f)
}

func (s *server) handleDeleteFavorite(c *gin.Context) {
	id, ok := favoriteID(c)
	if !ok {
		return
	}
	err := favorite.Delete(c.Request.Context(), s.db, auth.UserID(c), id)
	if errors.Is(err, favorite.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.internalError(c, "delete favorite", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *server) handleListNotifications(c *gin.Context) {
	id, ok := favoriteID(c)
	if !ok {
		return
	}
	res, err := favorite.ListNotifications(c.Request.Context(), s.db, auth.UserID(c), id)
	if errors.Is(err, favorite.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.internalError(c, "list notifications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": res})
}

func (s *server) handleRunCheck(c *gin.Context) {
	// the run outlives a client that hangs up so notifications stay consistent
	report, err := s.opts.Checker.Run(context.WithoutCancel(c.Request.Context()))
	if errors.Is(err, checker.ErrAlreadyRunning) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.internalError(c, "run check", err)
		return
	}
	// counts are global, log lines only cover the caller's favorites
	c.JSON(http.StatusOK, report.ForUser(auth.UserID(c)))
}

func (s *server) handleCheckStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": s.opts.Checker.Status()})
}

func favoriteID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid favorite id"})
		return 0, false
	}
	return id, true
}

// userError handles lookups of the authenticated user, whose account may
// have been deleted while the token is still valid.
func (s *server) userError(c *gin.Context, op string, err error) {
	if errors.Is(err, user.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	s.internalError(c, op, err)
}

func (s *server) internalError(c *gin.Context, op string, err error) {
	s.log.Error(op+" failed", "error", err, "request_id", c.GetString(ctxRequestIDKey))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
