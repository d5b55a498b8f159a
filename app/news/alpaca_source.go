package news

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

const (
	AlpacaSourceName      = "alpaca"
	DefaultAlpacaLookback = 7 * 24 * time.Hour
	defaultAlpacaLimit    = 100
)

// NewsClient is the part of the Alpaca market data client used for headlines.
type NewsClient interface {
	GetNews(req marketdata.GetNewsRequest) ([]marketdata.News, error)
}

var _ Source = (*AlpacaSource)(nil)

// AlpacaSource reads ticker headlines from the Alpaca news API.
type AlpacaSource struct {
	client   NewsClient
	lookback time.Duration
	limit    int
	location *time.Location
	now      func() time.Time
}

func NewAlpacaSource(client NewsClient, lookback time.Duration, location *time.Location) *AlpacaSource {
	if lookback <= 0 {
		lookback = DefaultAlpacaLookback
	}
	if location == nil {
		location = time.UTC
	}
	return &AlpacaSource{
		client:   client,
		lookback: lookback,
		limit:    defaultAlpacaLimit,
		location: location,
		now:      time.Now,
	}
}

func (s *AlpacaSource) Name() string {
	return AlpacaSourceName
}

func (s *AlpacaSource) Headlines(ctx context.Context, ticker string) ([]Headline, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	end := s.now()
	items, err := s.client.GetNews(marketdata.GetNewsRequest{
		Symbols:    []string{ticker},
		Start:      end.Add(-s.lookback),
		End:        end,
		TotalLimit: s.limit,
		Sort:       marketdata.SortDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: alpaca news for %s: %w", ErrFetchFailed, ticker, err)
	}

	headlines := make([]Headline, 0, len(items))
	for _, item := range items {
		title := cleanTitle(item.Headline)
		if title == "" || item.CreatedAt.IsZero() {
			continue
		}
		headlines = append(headlines, Headline{
			Time:   item.CreatedAt.In(s.location),
			Title:  title,
			Link:   item.URL,
			Source: AlpacaSourceName,
		})
	}

	return headlines, nil
}
