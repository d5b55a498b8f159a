package news

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// maxPageSize caps how much of a response body is read.
const maxPageSize = 8 << 20

// DefaultTickerParam is the query parameter carrying the ticker.
const DefaultTickerParam = "t"

type PageFetcher interface {
	Fetch(ctx context.Context, ticker string) ([]byte, error)
	URL(ticker string) string
}

var _ PageFetcher = (*Fetcher)(nil)

type Fetcher struct {
	httpClient *http.Client
	baseURL    string
	param      string
	userAgent  string
	timeout    time.Duration
	limiter    *rate.Limiter
}

// NewFetcher builds a fetcher for <baseURL>?t=<TICKER>. A zero interval disables rate limiting.
func NewFetcher(httpClient *http.Client, baseURL, userAgent string, timeout, interval time.Duration) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}

	return &Fetcher{
		httpClient: httpClient,
		baseURL:    baseURL,
		param:      DefaultTickerParam,
		userAgent:  userAgent,
		timeout:    timeout,
		limiter:    limiter,
	}
}

// WithTickerParam changes the query parameter carrying the ticker.
func (f *Fetcher) WithTickerParam(param string) *Fetcher {
	f.param = param
	return f
}

func (f *Fetcher) URL(ticker string) string {
	sep := "?"
	if strings.Contains(f.baseURL, "?") {
		sep = "&"
	}
	return f.baseURL + sep + f.param + "=" + url.QueryEscape(ticker)
}

func (f *Fetcher) Fetch(ctx context.Context, ticker string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	pageURL := f.URL(ticker)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrFetchFailed, err)
	}

	slog.Debug("Page fetched", "ticker", ticker, "url", pageURL, "bytes", len(data), "duration", time.Since(start))

	return data, nil
}
