package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/ticker-sentiment/app/metrics"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	watchlist   *Watchlist
	runner      ReportRunner
	interval    time.Duration
	workerCount int
	taskTimeout time.Duration
	now         func() time.Time
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
	mu          sync.Mutex
	nextRunAt   map[string]time.Time
}

func NewScheduler(watchlist *Watchlist, runner ReportRunner, interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	if workerCount < 1 {
		workerCount = 1
	}

	return &Scheduler{
		watchlist:   watchlist,
		runner:      runner,
		interval:    interval,
		workerCount: workerCount,
		taskTimeout: 5 * time.Minute,
		now:         time.Now,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
		nextRunAt:   make(map[string]time.Time),
	}
}

func (s *Scheduler) Start() {
	slog.Info("Starting scheduler", "workers", s.workerCount, "interval", s.interval.String(), "tickers", s.watchlist.GetCount())

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

// Stop cancels running tasks and waits for the workers to exit.
// The queue stays open so pending retries fail on the cancelled context instead of panicking.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// enqueueTasks queues a refresh for every watchlist ticker that is due.
func (s *Scheduler) enqueueTasks() {
	entries := s.watchlist.GetEntries()
	if len(entries) == 0 {
		slog.Debug("No watchlist tickers found")
		return
	}

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range entries {
		if next, ok := s.nextRunAt[entry.Symbol]; ok && next.After(now) {
			slog.Debug("Ticker not due for refresh yet", "ticker", entry.Symbol, "next_run_at", next)
			continue
		}

		if err := s.EnqueueTask(NewRefreshTickerTask(entry.Symbol, s.runner)); err != nil {
			slog.Warn("Failed to enqueue RefreshTickerTask", "ticker", entry.Symbol, "error", err)
			continue
		}

		s.nextRunAt[entry.Symbol] = now.Add(entry.Interval())
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

	taskCtx, cancel := context.WithTimeout(s.ctx, s.taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	metrics.RecordTaskRun(string(task.GetType()), err)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "ticker", task.GetTicker(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "ticker", task.GetTicker(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	delay := retryDelay(task.GetRetryCount())

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "ticker", task.GetTicker(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", delay.String())

	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-timer.C:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}
