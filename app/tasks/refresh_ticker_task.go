package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type RefreshTickerTask struct {
	Task
	runner ReportRunner
}

func NewRefreshTickerTask(ticker string, runner ReportRunner) *RefreshTickerTask {
	return &RefreshTickerTask{
		Task:   NewTask(TaskTypeRefreshTicker, ticker),
		runner: runner,
	}
}

func (t *RefreshTickerTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r, err := t.runner.Run(ctx, t.Ticker)
	if err != nil {
		return fmt.Errorf("failed to refresh %s: %w", t.Ticker, err)
	}

	summary := r.Summary()
	attrs := []any{
		"type", string(t.Type),
		"ticker", t.Ticker,
		"headlines", summary.Count,
		"positive", summary.Positive,
		"negative", summary.Negative,
		"duration", t.GetDuration(),
	}
	if summary.Mean != nil {
		attrs = append(attrs, "mean", *summary.Mean)
	}
	slog.Info("Task completed", attrs...)

	return nil
}
