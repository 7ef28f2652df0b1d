// Package scheduler polls watched feeds on a cron schedule and hands new posts to the bot.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"postsummarizer/internal/domain"
)

const (
	DefaultSpec           = "*/15 * * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0

	pollTimeout     = 10 * time.Minute
	fetchTimeout    = time.Minute
	lookback        = 24 * time.Hour
	seenRetention   = 7 * 24 * time.Hour
	pollConcurrency = 4
)

type store interface {
	GetAllFeeds(ctx context.Context) ([]domain.ChatFeed, error)
	UpdateFeedTitle(ctx context.Context, feedID int64, feedTitle string) error
	MarkSeen(ctx context.Context, feedID int64, postURL string) (bool, error)
	PruneSeen(ctx context.Context, before time.Time) (int64, error)
}

type fetcher interface {
	Fetch(ctx context.Context, feed domain.ChatFeed, since time.Time) (string, []domain.Item, error)
}

type sender interface {
	SendFeedItem(ctx context.Context, chatID int64, item domain.Item) error
}

type Scheduler struct {
	ctx     context.Context
	cron    *cron.Cron
	spec    string
	store   store
	fetcher fetcher
	sender  sender
	now     func() time.Time
	log     *slog.Logger
}

func New(
	ctx context.Context,
	spec string,
	st store,
	f fetcher,
	s sender,
	log *slog.Logger,
) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}

	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:     ctx,
		cron:    c,
		spec:    spec,
		store:   st,
		fetcher: f,
		sender:  s,
		now:     time.Now,
		log:     log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.checkFeeds); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

// Stop stops the schedule and waits for a running poll to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) checkFeeds() {
	ctx, cancel := context.WithTimeout(s.ctx, pollTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	s.Poll(ctx)
}

// Poll checks every watched feed once and sends the posts not seen before.
func (s *Scheduler) Poll(ctx context.Context) {
	start := s.now()

	feeds, err := s.store.GetAllFeeds(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to get feeds",
			"error", err)

		return
	}

	var g errgroup.Group
	g.SetLimit(pollConcurrency)

	for _, f := range feeds {
		g.Go(func() error {
			s.pollFeed(ctx, f, start.Add(-lookback))
			return nil
		})
	}

	_ = g.Wait()

	pruned, err := s.store.PruneSeen(ctx, start.Add(-seenRetention))
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to prune seen posts",
			"error", err)
	}

	s.log.InfoContext(ctx, "Feeds are polled",
		"feedCount", len(feeds),
		"prunedSeen", pruned,
		"durationSeconds", s.now().Sub(start).Seconds())
}

func (s *Scheduler) pollFeed(ctx context.Context, f domain.ChatFeed, since time.Time) {
	if ctx.Err() != nil {
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	title, items, err := s.fetcher.Fetch(fetchCtx, f, since)
	cancel()
	if err != nil {
		s.log.WarnContext(ctx, "Failed to fetch feed",
			"error", err,
			"feedID", f.ID,
			"chatID", f.ChatID,
			"url", f.URL)

		return
	}

	if title != "" && title != f.Title {
		if err = s.store.UpdateFeedTitle(ctx, f.ID, title); err != nil {
			s.log.ErrorContext(ctx, "Failed to update feed title",
				"error", err,
				"feedID", f.ID,
				"title", title)
		}
	}

	sent := 0
	for _, item := range items {
		if item.URL == "" {
			continue
		}

		isNew, err := s.store.MarkSeen(ctx, f.ID, item.URL)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to mark post as seen",
				"error", err,
				"feedID", f.ID,
				"url", item.URL)

			continue
		}
		if !isNew {
			continue
		}

		if err = s.sender.SendFeedItem(ctx, f.ChatID, item); err != nil {
			s.log.ErrorContext(ctx, "Failed to send feed item",
				"error", err,
				"feedID", f.ID,
				"chatID", f.ChatID,
				"url", item.URL)

			continue
		}

		sent++
	}

	if sent > 0 {
		s.log.DebugContext(ctx, "Feed items are sent",
			"feedID", f.ID,
			"chatID", f.ChatID,
			"count", sent)
	}
}
