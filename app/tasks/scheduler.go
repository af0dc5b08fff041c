package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/CyberPrince-glitch/TechPlus/app/cfg"
	"github.com/CyberPrince-glitch/TechPlus/app/database"
	"github.com/CyberPrince-glitch/TechPlus/app/feed"
	"github.com/CyberPrince-glitch/TechPlus/app/quota"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	feedRepo     database.FeedRepository
	fetcher      *feed.Fetcher
	ingester     *feed.Ingester
	ledger       *quota.Ledger
	fetchTimeout time.Duration
	interval     time.Duration
	workerCount  int
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	taskQueue    chan TaskInterface
}

func NewScheduler(feedRepo database.FeedRepository, fetcher *feed.Fetcher,
	ingester *feed.Ingester, ledger *quota.Ledger) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		feedRepo:     feedRepo,
		fetcher:      fetcher,
		ingester:     ingester,
		ledger:       ledger,
		fetchTimeout: 30 * time.Second,
		interval:     time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:  cfg.WorkerCount,
		ctx:          ctx,
		cancel:       cancel,
		taskQueue:    make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

// Stop cancels all workers and waits for them, including any retry waits
// still pending. The queue channel stays open so a racing enqueue can never
// hit a closed channel; workers drain out via the context instead.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// EnqueueCollectAll schedules a collection task for every active feed and
// returns how many were enqueued. Used by the collect endpoint so the caller
// is not blocked for the full fan-out duration.
func (s *Scheduler) EnqueueCollectAll() (int, error) {
	feeds, err := s.feedRepo.GetActiveFeeds(s.ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active feeds: %w", err)
	}

	enqueued := 0
	for _, f := range feeds {
		task := NewCollectFeedTask(f, s.fetcher, s.ingester, s.feedRepo, s.fetchTimeout)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue CollectFeedTask", "feed", f.Title, "error", err)
			continue
		}
		enqueued++
	}
	return enqueued, nil
}

// enqueueTasks runs once per tick: the idempotent quota rollover plus a
// collection task for every active feed that is due for a refresh.
func (s *Scheduler) enqueueTasks() {
	if err := s.EnqueueTask(NewResetUsageTask(s.ledger)); err != nil {
		slog.Warn("Failed to enqueue ResetUsageTask", "error", err)
	}

	feeds, err := s.feedRepo.GetActiveFeeds(s.ctx)
	if err != nil {
		slog.Warn("Failed to list active feeds", "error", err)
		return
	}
	if len(feeds) == 0 {
		slog.Debug("No active feeds found")
		return
	}

	now := time.Now().UTC()
	for _, f := range feeds {
		if f.LastFetchedAt != nil && now.Sub(*f.LastFetchedAt) < s.interval {
			slog.Debug("Feed not due for refresh yet", "feed", f.Title, "last_fetched_at", f.LastFetchedAt)
			continue
		}

		task := NewCollectFeedTask(f, s.fetcher, s.ingester, s.feedRepo, s.fetchTimeout)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue CollectFeedTask", "feed", f.Title, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "subject", task.GetSubject(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()

				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				case <-time.After(retryDelay):
				}

				if retryErr := s.EnqueueTask(task); retryErr != nil {
					slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
