package api

import (
	"context"
	"time"

	"github.com/lysyi3m/ticker-sentiment/app/database"
	"github.com/lysyi3m/ticker-sentiment/app/feed"
	"github.com/lysyi3m/ticker-sentiment/app/report"
	"github.com/lysyi3m/ticker-sentiment/app/tasks"
)

type ReportBuilder interface {
	Run(ctx context.Context, ticker string) (*report.Report, error)
	SourceName() string
}

var _ ReportBuilder = (*report.Builder)(nil)

type HistoryReader interface {
	GetHeadlines(ticker string, since time.Time, limit int) ([]database.HeadlineRow, error)
	GetTickerStats(ticker string) (*database.TickerStats, error)
	ListTickers() ([]string, error)
}

var _ HistoryReader = (database.HeadlineRepository)(nil)

type CacheHealth interface {
	Health(ctx context.Context) map[string]interface{}
}

// Handler serves the HTML pages and the JSON API. History, cache and
// watchlist are optional and nil when disabled.
type GeneratorInterface interface {
	Run(ticker string, rows []database.HeadlineRow) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type Handler struct {
	builder     ReportBuilder
	generator   GeneratorInterface
	history     HistoryReader
	cache       CacheHealth
	watchlist   *tasks.Watchlist
	lexiconSize int
	version     string
	startedAt   time.Time
}
