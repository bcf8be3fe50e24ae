package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"comicnotifier/internal/config"
	"comicnotifier/internal/source"
	"comicnotifier/pkg/database"
)

// titleFromURL turns ".../manga/solo-leveling/" into "Solo Leveling".
func titleFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	slug := path.Base(strings.TrimRight(u.Path, "/"))
	if slug == "." || slug == "/" || slug == "" {
		return u.Host
	}
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	if len(words) == 0 {
		return u.Host
	}
	return strings.Join(words, " ")
}

func main() {
	configPath := flag.String("config", "config.yaml", "server configuration file (for sources)")
	outPath := flag.String("out", "", "write a seed json for -user instead of printing")
	username := flag.String("user", "reader", "seed user name")
	password := flag.String("password", "change-me", "seed user password")
	webhook := flag.String("webhook", "", "seed user webhook url")
	timeout := flag.Duration("timeout", 15*time.Second, "per comic timeout")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: check_comic [flags] <comic url>...")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	resolver, err := source.NewResolver(log, &http.Client{Timeout: *timeout}, cfg.Sources)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sources:", err)
		os.Exit(1)
	}

	seedUser := database.SeedUser{Username: *username, Password: *password, WebhookURL: *webhook}
	failed := 0
	for _, comicURL := range flag.Args() {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		chapter, err := resolver.LatestChapter(ctx, comicURL)
		cancel()
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "ERROR %s: %v\n", comicURL, err)
			continue
		}
		title := titleFromURL(comicURL)
		fmt.Printf("%s\t%s\t%s\n", title, chapter, comicURL)
		seedUser.Favorites = append(seedUser.Favorites, database.SeedFavorite{
			Title:       title,
			URL:         comicURL,
			LastChapter: chapter,
		})
	}

	if *outPath != "" {
		if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
			panic(err)
		}
		b, err := json.MarshalIndent([]database.SeedUser{seedUser}, "", "  ")
		if err != nil {
			panic(err)
		}
		if err := os.WriteFile(*outPath, b, 0o644); err != nil {
			panic(err)
		}
		fmt.Printf("Wrote %d favorites to %s\n", len(seedUser.Favorites), *outPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
