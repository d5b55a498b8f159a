package tasks

import (
	"context"

	"github.com/lysyi3m/ticker-sentiment/app/report"
)

// TaskSchedulerInterface defines the interface for background task scheduling.
// Example usage:
//
//	scheduler := NewScheduler(watchlist, builder, time.Minute, 2)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewRefreshTickerTask("AAPL", builder))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// ReportRunner builds a sentiment report for a ticker; *report.Builder satisfies it.
type ReportRunner interface {
	Run(ctx context.Context, ticker string) (*report.Report, error)
}
