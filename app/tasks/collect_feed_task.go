package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/CyberPrince-glitch/TechPlus/app/database"
	"github.com/CyberPrince-glitch/TechPlus/app/feed"
)

// CollectFeedTask fetches one feed and ingests its entries into the article
// store. One task per feed keeps feeds independent: a failing feed never
// aborts the batch, and distinct feeds collect concurrently across workers.
type CollectFeedTask struct {
	Task
	Feed     database.Feed
	fetcher  *feed.Fetcher
	ingester *feed.Ingester
	feedRepo database.FeedRepository
	timeout  time.Duration
}

func NewCollectFeedTask(f database.Feed, fetcher *feed.Fetcher, ingester *feed.Ingester,
	feedRepo database.FeedRepository, timeout time.Duration) *CollectFeedTask {
	return &CollectFeedTask{
		Task:     NewTask(TaskTypeCollectFeed, f.Title),
		Feed:     f,
		fetcher:  fetcher,
		ingester: ingester,
		feedRepo: feedRepo,
		timeout:  timeout,
	}
}

func (t *CollectFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fetchCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	entries, err := t.fetcher.Fetch(fetchCtx, t.Feed.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	result, err := t.ingester.Ingest(ctx, t.Feed, entries)
	if err != nil {
		return fmt.Errorf("failed to ingest entries: %w", err)
	}

	if err := t.feedRepo.UpdateLastFetched(ctx, t.Feed.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to update last fetched time: %w", err)
	}

	slog.Info("Task completed",
		"type", "CollectFeed",
		"feed", t.Feed.Title,
		"duration", t.GetDuration(),
		"total", len(entries),
		"accepted", result.Accepted,
		"duplicates", result.Duplicates)

	return nil
}
