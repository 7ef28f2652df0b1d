package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"postsummarizer/internal/bot"
	"postsummarizer/internal/cache"
	"postsummarizer/internal/config"
	"postsummarizer/internal/database"
	"postsummarizer/internal/feed"
	"postsummarizer/internal/logger"
	"postsummarizer/internal/provider"
	"postsummarizer/internal/scheduler"
	"postsummarizer/internal/settings"
	"postsummarizer/internal/summarizer"
)

func main() {
	cfg := config.LoadConfig()

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize db",
			"error", err,
			"dbPath", cfg.DBPath)

		return
	}
	defer func() {
		if err = db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	summaryCache := initCache(ctx, cfg, log)
	defer func() {
		if err = summaryCache.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close cache",
				"error", err,
				"backend", cfg.CacheBackend)
		}
	}()

	defaults := cfg.DefaultSettings()
	if err = defaults.Validate(); err != nil {
		log.WarnContext(ctx, "Default settings are incomplete, chats must configure them",
			"error", err,
			"provider", defaults.Provider,
			"model", defaults.Model)
	}

	svc := summarizer.New(
		func(s settings.Settings) (provider.Provider, error) {
			return provider.New(s,
				provider.WithLogger(log),
				provider.WithReferer(cfg.AppURL))
		},
		log,
		summarizer.WithCache(summaryCache, cfg.CacheTTL),
		summarizer.WithTimeout(cfg.SummarizeTimeout),
	)

	fetcher := feed.NewFetcher(log)

	botInst, err := bot.New(cfg.Token, db, svc, fetcher, defaults, cfg.AllowedUsers, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize bot",
			"error", err,
			"allowedUsersCount", len(cfg.AllowedUsers))

		return
	}
	defer func() {
		botInst.Stop()
		log.InfoContext(ctx, "Bot is stopped",
			"uptimeSeconds", time.Since(start).Seconds())
	}()
	log.InfoContext(ctx, "Bot is initialized",
		"allowedUsersCount", len(cfg.AllowedUsers))

	sched := scheduler.New(ctx, cfg.WatchSpec, db, fetcher, botInst, log)

	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"spec", cfg.WatchSpec,
			"timezone", scheduler.Timezone)

		return
	}
	defer sched.Stop()
	log.InfoContext(ctx, "Scheduler is started",
		"spec", cfg.WatchSpec,
		"timezone", scheduler.Timezone)

	go func() {
		botInst.Start(ctx)
	}()
	log.InfoContext(ctx, "Bot is started",
		"provider", defaults.Provider,
		"model", defaults.Model)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	sig := <-c
	log.InfoContext(ctx, "Shutdown signal is received",
		"signal", sig.String())
	cancel()

	log.InfoContext(ctx, "Exiting...",
		"signal", sig.String(),
		"uptimeSeconds", time.Since(start).Seconds())
}

func initCache(ctx context.Context, cfg config.Config, log *slog.Logger) cache.Cache {
	switch strings.ToLower(strings.TrimSpace(cfg.CacheBackend)) {
	case "redis":
		c, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.ErrorContext(ctx, "Failed to connect to redis so memory cache will be used",
				"error", err,
				"redisAddr", cfg.RedisAddr)

			return cache.NewMemory(cfg.CacheSize)
		}

		log.InfoContext(ctx, "Redis cache is initialized",
			"redisAddr", cfg.RedisAddr)

		return c
	case "none", "off":
		log.InfoContext(ctx, "Summary cache is disabled")

		return cache.Noop{}
	default:
		log.InfoContext(ctx, "Memory cache is initialized",
			"maxEntries", cfg.CacheSize)

		return cache.NewMemory(cfg.CacheSize)
	}
}
