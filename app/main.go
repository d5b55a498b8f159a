package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/lysyi3m/ticker-sentiment/app/api"
	"github.com/lysyi3m/ticker-sentiment/app/cache"
	"github.com/lysyi3m/ticker-sentiment/app/cfg"
	"github.com/lysyi3m/ticker-sentiment/app/database"
	"github.com/lysyi3m/ticker-sentiment/app/feed"
	"github.com/lysyi3m/ticker-sentiment/app/news"
	"github.com/lysyi3m/ticker-sentiment/app/report"
	"github.com/lysyi3m/ticker-sentiment/app/sentiment"
	"github.com/lysyi3m/ticker-sentiment/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Ticker Sentiment", "version", appCfg.Version, "source", appCfg.Source, "timezone", appCfg.Location.String())

	if err := run(appCfg); err != nil {
		slog.Error("Ticker Sentiment stopped", "error", err)
		os.Exit(1)
	}
}

// run owns every resource opened at startup so that deferred closes run on
// both failure and shutdown paths.
func run(appCfg *cfg.Cfg) error {
	lexicon, err := loadLexicon(appCfg.LexiconPath)
	if err != nil {
		return fmt.Errorf("failed to load lexicon %s: %w", appCfg.LexiconPath, err)
	}
	analyzer := sentiment.NewAnalyzer(lexicon)
	slog.Info("Sentiment analyzer ready", "lexicon_size", analyzer.LexiconSize())

	httpClient := &http.Client{}

	baseFetcher := news.NewFetcher(httpClient, appCfg.SourceURL, appCfg.UserAgent, appCfg.GetFetchTimeout(), appCfg.GetFetchInterval())
	if appCfg.Source == cfg.SourceRSS {
		baseFetcher = news.NewFetcher(httpClient, appCfg.RSSURL, appCfg.UserAgent, appCfg.GetFetchTimeout(), appCfg.GetFetchInterval()).
			WithTickerParam(appCfg.RSSTickerParam)
	}
	var fetcher news.PageFetcher = baseFetcher

	var cacheHealth api.CacheHealth
	if appCfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := cache.NewRedisCache(ctx, appCfg.RedisAddr)
		cancel()
		if err != nil {
			slog.Warn("Page cache disabled", "addr", appCfg.RedisAddr, "error", err)
		} else {
			defer redisCache.Close()
			fetcher = news.NewCachedFetcher(fetcher, redisCache, appCfg.GetCacheTTL())
			cacheHealth = redisCache
			slog.Info("Page cache enabled", "type", "redis", "ttl", appCfg.GetCacheTTL().String())
		}
	}
	if cacheHealth == nil && appCfg.MemoryCacheSize > 0 {
		memoryCache := cache.NewMemoryCache(appCfg.MemoryCacheSize, appCfg.GetCacheTTL())
		fetcher = news.NewCachedFetcher(fetcher, memoryCache, appCfg.GetCacheTTL())
		cacheHealth = memoryCache
		slog.Info("Page cache enabled", "type", "memory", "size", appCfg.MemoryCacheSize, "ttl", appCfg.GetCacheTTL().String())
	}

	var source news.Source
	switch appCfg.Source {
	case cfg.SourceRSS:
		source = news.NewFeedSource(fetcher, news.NewFeedParser(appCfg.Location))
	case cfg.SourceAlpaca:
		client := marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    appCfg.AlpacaAPIKey,
			APISecret: appCfg.AlpacaAPISecret,
			BaseURL:   appCfg.AlpacaDataURL,
		})
		source = news.NewAlpacaSource(client, appCfg.GetAlpacaLookback(), appCfg.Location)
	default:
		source = news.NewTableSource(fetcher, news.NewTableParser(appCfg.Location))
	}

	builder := report.NewBuilder(source, sentiment.NewScorer(analyzer))

	var history api.HistoryReader
	if appCfg.DBPath != "" {
		db, err := database.NewConnection(appCfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open history database %s: %w", appCfg.DBPath, err)
		}
		defer db.Close()

		repo := database.NewHeadlineRepository(db)
		builder.WithStore(repo)
		history = repo
		slog.Info("Headline history enabled", "path", appCfg.DBPath)
	}

	var watchlist *tasks.Watchlist
	if appCfg.WatchlistPath != "" {
		watchlist = tasks.NewWatchlist(appCfg.WatchlistPath)
		if err := watchlist.Run(); err != nil {
			return fmt.Errorf("failed to load watchlist %s: %w", appCfg.WatchlistPath, err)
		}

		scheduler := tasks.NewScheduler(watchlist, builder, appCfg.GetSchedulerInterval(), appCfg.WorkerCount)
		scheduler.Start()
		defer scheduler.Stop()
	}

	generator := feed.NewGenerator(appCfg.GetBaseURL(), appCfg.Version)
	handler := api.NewHandler(builder, generator, history, cacheHealth, watchlist, analyzer.LexiconSize(), appCfg.Version)
	server := api.NewServer(handler, appCfg.APIAccessKey, appCfg.Debug)

	httpServer := &http.Server{
		Addr:         appCfg.Addr(),
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2*appCfg.GetFetchTimeout() + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", appCfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		return err
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	slog.Info("HTTP server stopped")
	return nil
}

func loadLexicon(path string) (sentiment.Lexicon, error) {
	if path == "" {
		return sentiment.BundledLexicon()
	}
	return sentiment.LoadLexicon(path)
}
