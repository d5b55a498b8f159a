package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/lysyi3m/ticker-sentiment/app/database"
	"github.com/lysyi3m/ticker-sentiment/app/metrics"
	"github.com/lysyi3m/ticker-sentiment/app/news"
	"github.com/lysyi3m/ticker-sentiment/app/sentiment"
	"github.com/lysyi3m/ticker-sentiment/app/series"
)

var ErrInvalidTicker = errors.New("invalid ticker")

var tickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// NormalizeTicker upper-cases and trims a ticker symbol and checks its shape.
func NormalizeTicker(raw string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if !tickerPattern.MatchString(ticker) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTicker, raw)
	}
	return ticker, nil
}

// Store persists scored headlines; the history repository satisfies it.
type Store interface {
	UpsertHeadlines(ticker string, rows []database.HeadlineRow) (int, error)
}

type Builder struct {
	source news.Source
	scorer *sentiment.Scorer
	store  Store
	now    func() time.Time
}

func NewBuilder(source news.Source, scorer *sentiment.Scorer) *Builder {
	return &Builder{source: source, scorer: scorer, now: time.Now}
}

// WithStore enables persisting every built report.
func (b *Builder) WithStore(store Store) *Builder {
	b.store = store
	return b
}

func (b *Builder) SourceName() string {
	return b.source.Name()
}

// Run fetches, scores and resamples headlines for ticker.
func (b *Builder) Run(ctx context.Context, rawTicker string) (*Report, error) {
	ticker, err := NormalizeTicker(rawTicker)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	headlines, err := b.source.Headlines(ctx, ticker)
	if err != nil {
		metrics.RecordReport(b.source.Name(), metrics.StatusError, 0, time.Since(started).Seconds())
		return nil, err
	}

	scored := b.scorer.Run(headlines)
	points := series.Points(scored)

	r := &Report{
		Ticker:      ticker,
		Source:      b.source.Name(),
		GeneratedAt: b.now(),
		Headlines:   scored,
		Hourly:      series.Resample(points, series.Hourly),
		Daily:       series.Resample(points, series.Daily),
	}

	metrics.RecordReport(r.Source, metrics.StatusSuccess, len(scored), time.Since(started).Seconds())

	slog.Debug("Report built", "ticker", ticker, "source", r.Source,
		"headlines", len(scored), "hourly_buckets", len(r.Hourly), "daily_buckets", len(r.Daily))

	if b.store != nil && len(scored) > 0 {
		inserted, err := b.store.UpsertHeadlines(ticker, HistoryRows(ticker, scored))
		if err != nil {
			slog.Warn("Failed to store headline history", "ticker", ticker, "error", err)
		} else {
			metrics.RecordHistoryInserted(inserted)
			slog.Debug("Headline history stored", "ticker", ticker, "new", inserted)
		}
	}

	return r, nil
}

// HistoryRows converts scored headlines into history rows.
func HistoryRows(ticker string, scored []sentiment.Scored) []database.HeadlineRow {
	rows := make([]database.HeadlineRow, 0, len(scored))
	for _, s := range scored {
		rows = append(rows, database.HeadlineRow{
			Ticker:         ticker,
			PublishedAt:    s.Time,
			Title:          s.Title,
			Link:           s.Link,
			Source:         s.Source,
			Negative:       s.Negative,
			Neutral:        s.Neutral,
			Positive:       s.Positive,
			SentimentScore: s.SentimentScore(),
			ContentHash:    database.ContentHash(ticker, s.Time, s.Title),
		})
	}
	return rows
}
