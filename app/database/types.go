package database

import (
	"time"
)

type HeadlineRow struct {
	ID             int64
	Ticker         string
	PublishedAt    time.Time
	Title          string
	Link           string
	Source         string
	Negative       float64
	Neutral        float64
	Positive       float64
	SentimentScore float64
	ContentHash    string
	CreatedAt      time.Time
}

type TickerStats struct {
	Ticker        string
	Headlines     int
	FirstSeen     *time.Time
	LastSeen      *time.Time
	MeanSentiment *float64
}

type HeadlineRepository interface {
	UpsertHeadlines(ticker string, rows []HeadlineRow) (int, error)
	GetHeadlines(ticker string, since time.Time, limit int) ([]HeadlineRow, error)
	GetTickerStats(ticker string) (*TickerStats, error)
	ListTickers() ([]string, error)
}
