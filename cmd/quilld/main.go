// SPDX-License-Identifier: MIT

// Command quilld runs the blog API server: the post index, the role-dispatched
// pages and the QR/avatar image endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/quillhq/quill/internal/api"
	"github.com/quillhq/quill/internal/avatar"
	"github.com/quillhq/quill/internal/cache"
	"github.com/quillhq/quill/internal/config"
	"github.com/quillhq/quill/internal/health"
	"github.com/quillhq/quill/internal/identity"
	"github.com/quillhq/quill/internal/log"
	"github.com/quillhq/quill/internal/persistence/sqlite"
	"github.com/quillhq/quill/internal/post"
	"github.com/quillhq/quill/internal/ratelimit"
	"github.com/quillhq/quill/internal/telemetry"
	"github.com/quillhq/quill/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "quilld: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to the YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("quilld %s (%s, %s)\n", version.Version, version.Commit, version.Date)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log.Configure(log.Config{Level: cfg.LogLevel, Service: "quill"})
	logger := log.WithComponent("main")
	logger.Info().
		Str("version", version.Version).
		Str("listen_addr", cfg.ListenAddr).
		Str("cache_backend", string(cfg.Cache.Backend)).
		Msg("starting quilld")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	db, err := sqlite.Open(filepath.Join(cfg.DataDir, "quill.db"), sqlite.DefaultConfig())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	posts, err := post.NewStore(db)
	if err != nil {
		return err
	}
	identities, err := identity.NewStore(db)
	if err != nil {
		return err
	}

	healthMgr := health.NewManager(version.Version)
	healthMgr.RegisterChecker(health.NewDBChecker("sqlite", db))

	images, closeCache, err := buildImageCache(cfg, healthMgr)
	if err != nil {
		return err
	}
	defer closeCache()

	avatarDisk, err := avatar.NewDiskCache(filepath.Join(cfg.DataDir, "avatars"))
	if err != nil {
		return fmt.Errorf("avatar disk cache: %w", err)
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(ratelimit.Config{
			GlobalRate:      rate.Limit(cfg.RateLimit.GenerateRPS * 10),
			GlobalBurst:     cfg.RateLimit.GenerateBurst * 10,
			PerIPRate:       rate.Limit(cfg.RateLimit.GenerateRPS),
			PerIPBurst:      cfg.RateLimit.GenerateBurst,
			CleanupInterval: 5 * time.Minute,
		})
	}

	tracer, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    "quill",
		ServiceVersion: version.Version,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	indexer := post.NewIndexer(cfg.PostsDir, posts, log.WithComponent("indexer"))
	if err := indexer.Reindex(ctx); err != nil {
		return fmt.Errorf("initial post index: %w", err)
	}
	watcher := post.NewWatcher(indexer, 500*time.Millisecond, log.WithComponent("watcher"))

	server, err := api.New(api.Options{
		Config:     cfg,
		Posts:      posts,
		Identities: identities,
		Images:     images,
		AvatarDisk: avatarDisk,
		Limiter:    limiter,
		Health:     healthMgr,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("post watcher: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				n, err := identities.PurgeExpiredSessions(ctx)
				if err != nil {
					logger.Warn().Err(err).Msg("session purge failed")
					continue
				}
				if n > 0 {
					logger.Info().Int64("purged", n).Msg("expired sessions removed")
				}
			}
		}
	})

	g.Go(func() error {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildImageCache constructs the configured cache backend and, where the
// backend has external state, registers its health check.
func buildImageCache(cfg config.Config, healthMgr *health.Manager) (cache.Cache, func(), error) {
	noop := func() {}

	switch cfg.Cache.Backend {
	case config.CacheMemory:
		return cache.NewMemoryCache(5 * time.Minute), noop, nil

	case config.CacheRedis:
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
		}, log.WithComponent("cache"))
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		healthMgr.RegisterChecker(health.NewCacheChecker("redis", rc.HealthCheck))
		return rc, func() { _ = rc.Close() }, nil

	case config.CacheBadger:
		dir := cfg.Cache.BadgerDir
		if dir == "" {
			dir = filepath.Join(cfg.DataDir, "badger")
		}
		bc, err := cache.NewBadgerCache(dir, log.WithComponent("cache"))
		if err != nil {
			return nil, nil, fmt.Errorf("badger cache: %w", err)
		}
		return bc, func() { _ = bc.Close() }, nil

	case config.CacheNone:
		return cache.NewNoOpCache(), noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
