package news

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lysyi3m/ticker-sentiment/app/metrics"
)

// PageCache stores raw pages keyed by URL.
type PageCache interface {
	GetPage(ctx context.Context, pageURL string) ([]byte, bool, error)
	SetPage(ctx context.Context, pageURL string, data []byte, ttl time.Duration) error
}

var _ PageFetcher = (*CachedFetcher)(nil)

// CachedFetcher serves pages from cache and falls through to the wrapped fetcher.
// Concurrent misses for the same URL share one upstream request.
// Cache failures are logged and never fail a fetch.
type CachedFetcher struct {
	fetcher PageFetcher
	cache   PageCache
	ttl     time.Duration
	group   singleflight.Group
}

func NewCachedFetcher(fetcher PageFetcher, cache PageCache, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{fetcher: fetcher, cache: cache, ttl: ttl}
}

func (f *CachedFetcher) URL(ticker string) string {
	return f.fetcher.URL(ticker)
}

func (f *CachedFetcher) Fetch(ctx context.Context, ticker string) ([]byte, error) {
	pageURL := f.fetcher.URL(ticker)

	data, ok := f.lookup(ctx, ticker, pageURL)
	metrics.RecordCacheLookup(ok)
	if ok {
		return data, nil
	}

	v, err, shared := f.group.Do(pageURL, func() (interface{}, error) {
		// a flight that just finished may have filled the cache
		if data, ok := f.lookup(ctx, ticker, pageURL); ok {
			return data, nil
		}

		data, err := f.fetcher.Fetch(ctx, ticker)
		if err != nil {
			return nil, err
		}

		if err := f.cache.SetPage(ctx, pageURL, data, f.ttl); err != nil {
			slog.Warn("Page cache write failed", "ticker", ticker, "error", err)
		}

		return data, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		slog.Debug("Page fetch shared", "ticker", ticker)
	}

	return v.([]byte), nil
}

func (f *CachedFetcher) lookup(ctx context.Context, ticker, pageURL string) ([]byte, bool) {
	data, ok, err := f.cache.GetPage(ctx, pageURL)
	if err != nil {
		slog.Warn("Page cache read failed", "ticker", ticker, "error", err)
		return nil, false
	}
	if ok {
		slog.Debug("Page served from cache", "ticker", ticker, "bytes", len(data))
	}
	return data, ok
}
