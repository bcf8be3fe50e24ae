package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"comicnotifier/internal/api"
	"comicnotifier/internal/checker"
	"comicnotifier/internal/config"
	"comicnotifier/internal/favorite"
	"comicnotifier/internal/logging"
	"comicnotifier/internal/notify"
	"comicnotifier/internal/source"
	"comicnotifier/internal/tcpsync"
	"comicnotifier/internal/udpnotify"
	"comicnotifier/internal/websocket"
	"comicnotifier/pkg/database"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "server configuration file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("cannot build logger: %s", err)
	}
	defer closer.Close()

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	log.Info("starting comic notifier")
	log.Debug("debug messages are enabled")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := database.Open(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("cannot open database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("cannot migrate database: %w", err)
	}
	log.Info("database is ready", "path", cfg.DB.Path)

	if err := seed(cfg.DB.SeedFile, db, log); err != nil {
		return err
	}

	// Notification channels
	hub := websocket.NewHub(log)
	broadcasters := []notify.Broadcaster{hub}

	if cfg.Stream.TCPAddress != "" {
		tcpServer := tcpsync.New(log)
		broadcasters = append(broadcasters, tcpServer)
		go func() {
			if err := tcpServer.ListenAndServe(ctx, cfg.Stream.TCPAddress); err != nil {
				log.Error("tcp stream stopped", "error", err)
			}
		}()
	}
	if cfg.Stream.UDPAddress != "" {
		udpServer := udpnotify.New(log)
		broadcasters = append(broadcasters, udpServer)
		go func() {
			if err := udpServer.ListenAndServe(ctx, cfg.Stream.UDPAddress); err != nil {
				log.Error("udp notify stopped", "error", err)
			}
		}()
	}
	if cfg.Broker.Address != "" {
		publisher, err := notify.NewNatsPublisher(cfg.Broker.Address, cfg.Broker.Subject, log)
		if err != nil {
			return fmt.Errorf("cannot init publisher: %w", err)
		}
		defer publisher.Close()
		broadcasters = append(broadcasters, publisher)
	}

	webhook := notify.NewWebhookClient(log, &http.Client{Timeout: cfg.Webhook.Timeout}, notify.WebhookOptions{
		BotName:    cfg.Webhook.BotName,
		SiteURL:    cfg.Webhook.SiteURL,
		MaxElapsed: cfg.Webhook.MaxElapsed,
	})

	// Chapter check
	resolver, err := source.NewResolver(log, &http.Client{Timeout: cfg.Checker.Timeout}, cfg.Sources)
	if err != nil {
		return fmt.Errorf("cannot init sources: %w", err)
	}
	service, err := checker.NewService(log, favorite.NewStore(db), resolver,
		notify.NewFanout(log, webhook, broadcasters...), cfg.Checker.Concurrency, cfg.Checker.Timeout)
	if err != nil {
		return fmt.Errorf("cannot init checker: %w", err)
	}
	checker.NewScheduler(log, service, cfg.Checker.Interval, cfg.Checker.RunOnStart).Start(ctx)

	// HTTP API
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(log, db, api.Options{
		JWTSecret: []byte(cfg.JWTSecret),
		TokenTTL:  cfg.TokenTTL,
		RateLimit: cfg.RateLimit,
		Webhook:   webhook,
		Checker:   service,
		Hub:       hub,
	})
	server := http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Debug("shutting down http server...")

		ctxTimeout, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxTimeout); err != nil {
			log.Error("erroneous shutdown", "error", err)
			return
		}
		log.Debug("http server stopped gracefully")
	}()

	log.Info("http api listening", "address", cfg.HTTPAddress)
	if err := server.ListenAndServe(); err != nil {
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server closed unexpectedly: %w", err)
		}
	}
	return nil
}

func seed(seedFile string, db *sql.DB, log *slog.Logger) error {
	if seedFile == "" {
		return nil
	}
	if _, err := os.Stat(seedFile); err != nil {
		log.Warn("seed file not found, skip seeding", "file", seedFile, "error", err)
		return nil
	}
	users, err := database.LoadSeedFromJSON(seedFile)
	if err != nil {
		return fmt.Errorf("cannot load seed: %w", err)
	}
	n, err := database.Seed(db, users)
	if err != nil {
		return fmt.Errorf("cannot seed database: %w", err)
	}
	log.Info("seeded favorites", "count", n, "file", seedFile)
	return nil
}
