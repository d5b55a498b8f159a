package cfg

import (
	"strings"
	"time"
)

type Cfg struct {
	// Server configuration
	Host         string
	Port         string
	BaseURL      string
	Debug        bool
	APIAccessKey string

	// News source configuration
	Source         string
	SourceURL      string
	RSSURL         string
	RSSTickerParam string
	UserAgent      string
	FetchTimeout   int // seconds
	FetchInterval  int // milliseconds
	Timezone       string
	Location       *time.Location

	// Alpaca news API
	AlpacaAPIKey    string
	AlpacaAPISecret string
	AlpacaDataURL   string
	AlpacaLookback  int // hours

	// Scoring
	LexiconPath string

	// Optional history, caching and background refresh
	DBPath            string
	RedisAddr         string
	MemoryCacheSize   int
	CacheTTL          int // seconds
	WatchlistPath     string
	WorkerCount       int
	SchedulerInterval int // seconds

	Version string
}

func (c *Cfg) Addr() string {
	return c.Host + ":" + c.Port
}

// GetBaseURL falls back to localhost on the configured port.
func (c *Cfg) GetBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return "http://localhost:" + c.Port
}

func (c *Cfg) GetFetchTimeout() time.Duration {
	if c.FetchTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.FetchTimeout) * time.Second
}

func (c *Cfg) GetFetchInterval() time.Duration {
	if c.FetchInterval < 0 {
		return 0
	}
	return time.Duration(c.FetchInterval) * time.Millisecond
}

func (c *Cfg) GetCacheTTL() time.Duration {
	if c.CacheTTL <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.CacheTTL) * time.Second
}

func (c *Cfg) GetSchedulerInterval() time.Duration {
	if c.SchedulerInterval <= 0 {
		return time.Minute
	}
	return time.Duration(c.SchedulerInterval) * time.Second
}

func (c *Cfg) GetAlpacaLookback() time.Duration {
	if c.AlpacaLookback <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(c.AlpacaLookback) * time.Hour
}
