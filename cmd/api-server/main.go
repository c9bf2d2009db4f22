package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"adaptrack-server/internal/config"
	"adaptrack-server/internal/jobs"
	"adaptrack-server/internal/lists"
	"adaptrack-server/internal/match"
	"adaptrack-server/internal/migrate"
	"adaptrack-server/internal/notify"
	"adaptrack-server/internal/recommend"
	"adaptrack-server/internal/repos"
	"adaptrack-server/internal/server"
	"adaptrack-server/pkg/cache"
	pkgdb "adaptrack-server/pkg/db"
	"adaptrack-server/pkg/gbooks"
	"adaptrack-server/pkg/session"
	"adaptrack-server/pkg/tmdb"
)

func main() {
	_ = godotenv.Load() // best-effort
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pkgdb.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer pool.Close()

	if err := migrate.Up(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	var c cache.Cache
	if addr := cfg.ValkeyAddr; addr != "" {
		vc, err := cache.NewValkey(addr, cfg.ValkeyPassword)
		if err != nil {
			log.Error().Err(err).Msg("valkey connect failed, using in-memory cache")
			c = cache.NewInMemory()
		} else {
			c = vc
		}
	} else {
		c = cache.NewInMemory()
	}

	repository := repos.New(pool)
	sessions := session.NewHMAC(cfg.SessionSecret, cfg.SessionTTL, c)

	tmdbClient := tmdb.New(cfg.TMDBAPIKey, cfg.TMDBLanguage)
	gbooksClient := gbooks.New(cfg.GoogleBooksAPIKey)

	registry := notify.NewRegistry()
	dispatcher := notify.NewDispatcher(registry, repository.Lists, repository.Users, cfg.NotifyWithoutPrefs)
	go dispatcher.Run(ctx)

	matcher := match.New(tmdbClient, gbooksClient, repository.Adaptations, dispatcher)
	listSvc := lists.New(repository.Lists, repository.Movies, repository.Books, c)
	recSvc := recommend.New(repository.Lists, repository.Reviews, repository.Movies, c)

	api := server.New(repository, c, sessions, matcher, listSvc, recSvc, registry, cfg.CORSAllowedOrigins)

	refresher := jobs.NewRefresher(repository.Movies, tmdbClient, dispatcher, cfg.RefreshInterval)
	go refresher.Run(ctx)

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		if err := server.StartHTTP(ctx, addr, api.Router()); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	dispatcher.Wait()
	_, _ = fmt.Fprintln(os.Stderr, "shutting down...")
	time.Sleep(200 * time.Millisecond)
}
