package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

const (
	SourceFinviz = "finviz"
	SourceRSS    = "rss"
	SourceAlpaca = "alpaca"
)

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Server configuration
	Host         string `long:"host" env:"HOST" default:"" description:"HTTP server host"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseURL      string `long:"base-url" env:"BASE_URL" description:"Public base URL used in feed self links"`
	Debug        bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for the JSON API (optional, API disabled when empty)"`

	// News source configuration
	Source         string `long:"source" env:"NEWS_SOURCE" default:"finviz" choice:"finviz" choice:"rss" choice:"alpaca" description:"Headline source"`
	SourceURL      string `long:"source-url" env:"SOURCE_URL" default:"https://finviz.com/quote.ashx" description:"Base URL of the quote page holding the news table"`
	RSSURL         string `long:"rss-url" env:"RSS_URL" default:"https://feeds.finance.yahoo.com/rss/2.0/headline?region=US&lang=en-US" description:"Base URL of the RSS headline feed"`
	RSSTickerParam string `long:"rss-ticker-param" env:"RSS_TICKER_PARAM" default:"s" description:"Query parameter carrying the ticker in RSS feed requests"`
	UserAgent      string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0" description:"User agent string for outbound requests"`
	FetchTimeout   int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Outbound request timeout in seconds"`
	FetchInterval  int    `long:"fetch-interval" env:"FETCH_INTERVAL" default:"1000" description:"Minimum delay between outbound requests in milliseconds"`
	Timezone       string `long:"timezone" env:"TZ" default:"America/New_York" description:"Timezone of the source's timestamps"`

	// Alpaca news API
	AlpacaAPIKey    string `long:"alpaca-api-key" env:"APCA_API_KEY_ID" description:"Alpaca API key ID (alpaca source only)"`
	AlpacaAPISecret string `long:"alpaca-api-secret" env:"APCA_API_SECRET_KEY" description:"Alpaca API secret key (alpaca source only)"`
	AlpacaDataURL   string `long:"alpaca-data-url" env:"APCA_API_DATA_URL" description:"Alpaca market data base URL override"`
	AlpacaLookback  int    `long:"alpaca-lookback" env:"ALPACA_LOOKBACK" default:"168" description:"Hours of Alpaca news to request"`

	// Scoring
	LexiconPath string `long:"lexicon" env:"LEXICON_PATH" description:"VADER-format lexicon file replacing the bundled lexicon"`

	// Optional history, caching and background refresh
	DBPath            string `long:"db-path" env:"DB_PATH" description:"SQLite file for headline history (history disabled when empty)"`
	RedisAddr         string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for page caching (caching disabled when empty)"`
	MemoryCacheSize   int    `long:"memory-cache-size" env:"MEMORY_CACHE_SIZE" default:"0" description:"Pages kept in an in-process cache when Redis is not configured (disabled when 0)"`
	CacheTTL          int    `long:"cache-ttl" env:"CACHE_TTL" default:"300" description:"Seconds a fetched page stays cached"`
	WatchlistPath     string `long:"watchlist" env:"WATCHLIST_PATH" description:"YAML watchlist for background refresh (disabled when empty)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background refresh workers"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler interval in seconds"`
}

var globalCfg *Cfg

// Load reads an optional .env file from the working directory and then
// parses flags and environment variables.
func Load() (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments instead of os.Args when args is non-nil.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Host:              raw.Host,
		Port:              raw.Port,
		BaseURL:           raw.BaseURL,
		Debug:             raw.Debug,
		APIAccessKey:      raw.APIAccessKey,
		Source:            raw.Source,
		SourceURL:         raw.SourceURL,
		RSSURL:            raw.RSSURL,
		RSSTickerParam:    raw.RSSTickerParam,
		UserAgent:         raw.UserAgent,
		FetchTimeout:      raw.FetchTimeout,
		FetchInterval:     raw.FetchInterval,
		Timezone:          raw.Timezone,
		AlpacaAPIKey:      raw.AlpacaAPIKey,
		AlpacaAPISecret:   raw.AlpacaAPISecret,
		AlpacaDataURL:     raw.AlpacaDataURL,
		AlpacaLookback:    raw.AlpacaLookback,
		LexiconPath:       raw.LexiconPath,
		DBPath:            raw.DBPath,
		RedisAddr:         raw.RedisAddr,
		MemoryCacheSize:   raw.MemoryCacheSize,
		CacheTTL:          raw.CacheTTL,
		WatchlistPath:     raw.WatchlistPath,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		Version:           GetVersion(),
	}

	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using UTC: %v\n", cfg.Timezone, err)
		loc = time.UTC
	}
	cfg.Location = loc

	if cfg.Source == SourceAlpaca && (cfg.AlpacaAPIKey == "" || cfg.AlpacaAPISecret == "") {
		return nil, fmt.Errorf("alpaca source requires --alpaca-api-key and --alpaca-api-secret")
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func loadLocation(timezone string) (*time.Location, error) {
	if timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(timezone)
}
