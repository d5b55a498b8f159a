package api

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/ticker-sentiment/app/chart"
	"github.com/lysyi3m/ticker-sentiment/app/news"
	"github.com/lysyi3m/ticker-sentiment/app/report"
	"github.com/lysyi3m/ticker-sentiment/app/series"
	"github.com/lysyi3m/ticker-sentiment/app/tasks"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

func NewHandler(builder ReportBuilder, generator GeneratorInterface, history HistoryReader,
	cache CacheHealth, watchlist *tasks.Watchlist, lexiconSize int, version string) *Handler {
	return &Handler{
		builder:     builder,
		generator:   generator,
		history:     history,
		cache:       cache,
		watchlist:   watchlist,
		lexiconSize: lexiconSize,
		version:     version,
		startedAt:   time.Now(),
	}
}

func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Source":  h.builder.SourceName(),
		"Version": h.version,
	})
}

type sentimentForm struct {
	Ticker string `form:"ticker" binding:"required,max=16"`
}

func (h *Handler) Sentiment(c *gin.Context) {
	var form sentimentForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("Sentiment form rejected", "error", err)
		h.renderError(c, http.StatusBadRequest, errorMessage(http.StatusBadRequest, c.PostForm("ticker")))
		return
	}
	ticker := form.Ticker

	r, err := h.builder.Run(c.Request.Context(), ticker)
	if err != nil {
		status := errorStatus(err)
		slog.Error("Sentiment report failed", "ticker", ticker, "status", status, "error", err)
		h.renderError(c, status, errorMessage(status, ticker))
		return
	}

	page, err := newSentimentPage(r)
	if err != nil {
		slog.Error("Sentiment page rendering failed", "ticker", r.Ticker, "error", err)
		h.renderError(c, http.StatusInternalServerError, errorMessage(http.StatusInternalServerError, r.Ticker))
		return
	}

	c.HTML(http.StatusOK, "sentiment.html", page)
}

type sentimentPage struct {
	Ticker      string
	Header      string
	Description string
	Summary     report.Summary
	HourlyJSON  template.JS
	DailyJSON   template.JS
	Table       template.HTML
}

func newSentimentPage(r *report.Report) (*sentimentPage, error) {
	hourly, err := chart.NewBarFigure(r.Ticker, series.Hourly, r.Hourly).JSON()
	if err != nil {
		return nil, err
	}

	daily, err := chart.NewBarFigure(r.Ticker, series.Daily, r.Daily).JSON()
	if err != nil {
		return nil, err
	}

	table, err := chart.NewTable(r.Headlines).HTML()
	if err != nil {
		return nil, err
	}

	return &sentimentPage{
		Ticker: r.Ticker,
		Header: fmt.Sprintf("Hourly and Daily Sentiment of %s Stock", r.Ticker),
		Description: "The charts show the mean sentiment score of the latest news headlines, grouped by hour and by day. " +
			"Scores range from -1 (most negative) to 1 (most positive); empty periods have no bar. " +
			"The table lists every headline with its negative, neutral, positive and compound scores.",
		Summary:    r.Summary(),
		HourlyJSON: template.JS(hourly),
		DailyJSON:  template.JS(daily),
		Table:      table,
	}, nil
}

func (h *Handler) renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "error.html", gin.H{"Message": message})
}

// errorStatus maps pipeline failures to HTTP statuses.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, report.ErrInvalidTicker):
		return http.StatusBadRequest
	case errors.Is(err, news.ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, news.ErrUnexpectedStatus), errors.Is(err, news.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(status int, ticker string) string {
	switch status {
	case http.StatusBadRequest:
		return fmt.Sprintf("%q is not a valid ticker symbol.", ticker)
	case http.StatusNotFound:
		return fmt.Sprintf("No news found for %s.", ticker)
	case http.StatusBadGateway:
		return "The news source could not be reached. Please try again later."
	default:
		return "The sentiment analysis failed. Please try again later."
	}
}

// GetFeed serves the stored history of a ticker as RSS.
func (h *Handler) GetFeed(c *gin.Context) {
	if h.history == nil {
		c.Status(http.StatusNotFound)
		return
	}

	ticker, err := report.NormalizeTicker(c.Param("ticker"))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	rows, err := h.history.GetHeadlines(ticker, time.Time{}, defaultHistoryLimit)
	if err != nil {
		slog.Error("Database error", "operation", "get_headlines", "ticker", ticker, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if len(rows) == 0 {
		c.Status(http.StatusNotFound)
		return
	}

	rss, err := h.generator.Run(ticker, rows)
	if err != nil {
		slog.Error("RSS generation error", "ticker", ticker, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(rows)))
	c.Header("X-Feed-Ticker", ticker)
	c.Header("X-Last-Updated", rows[0].PublishedAt.Format(time.RFC3339))

	c.String(http.StatusOK, rss)
}

func (h *Handler) Health(c *gin.Context) {
	health := map[string]interface{}{
		"status":       "healthy",
		"timestamp":    time.Now().In(time.Local).Format(time.RFC3339),
		"version":      h.version,
		"source":       h.builder.SourceName(),
		"lexicon_size": h.lexiconSize,
		"uptime":       time.Since(h.startedAt).Round(time.Second).String(),
	}

	if h.history != nil {
		if tickers, err := h.history.ListTickers(); err == nil {
			health["history_tickers"] = len(tickers)
		} else {
			slog.Error("Database error", "operation", "list_tickers", "error", err)
			health["status"] = "degraded"
		}
	}

	if h.cache != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		cacheHealth := h.cache.Health(ctx)
		health["cache"] = cacheHealth
		if cacheHealth["status"] != "healthy" {
			health["status"] = "degraded"
		}
	}

	if h.watchlist != nil {
		health["watchlist_tickers"] = h.watchlist.GetCount()
	}

	c.JSON(http.StatusOK, health)
}

type headlineJSON struct {
	Time           time.Time `json:"datetime"`
	Headline       string    `json:"headline"`
	Link           string    `json:"link,omitempty"`
	Source         string    `json:"source,omitempty"`
	Negative       float64   `json:"neg"`
	Neutral        float64   `json:"neu"`
	Positive       float64   `json:"pos"`
	SentimentScore float64   `json:"sentiment_score"`
}

func (h *Handler) APIGetSentiment(c *gin.Context) {
	ticker := c.Param("ticker")

	r, err := h.builder.Run(c.Request.Context(), ticker)
	if err != nil {
		status := errorStatus(err)
		slog.Error("Sentiment report failed", "ticker", ticker, "status", status, "error", err)
		c.JSON(status, gin.H{"error": errorMessage(status, ticker)})
		return
	}

	headlines := make([]headlineJSON, 0, len(r.Headlines))
	for _, s := range r.Headlines {
		headlines = append(headlines, headlineJSON{
			Time:           s.Time,
			Headline:       s.Title,
			Link:           s.Link,
			Source:         s.Source,
			Negative:       s.Negative,
			Neutral:        s.Neutral,
			Positive:       s.Positive,
			SentimentScore: s.SentimentScore(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"ticker":       r.Ticker,
		"source":       r.Source,
		"generated_at": r.GeneratedAt.Format(time.RFC3339),
		"summary":      r.Summary(),
		"hourly":       r.Hourly,
		"daily":        r.Daily,
		"headlines":    headlines,
	})
}

func (h *Handler) APIGetHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "History is disabled"})
		return
	}

	ticker, err := report.NormalizeTicker(c.Param("ticker"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(limit, maxHistoryLimit)
	}

	var since time.Time
	if raw := c.Query("since"); raw != "" {
		since, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be an RFC 3339 timestamp"})
			return
		}
	}

	rows, err := h.history.GetHeadlines(ticker, since, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_headlines", "ticker", ticker, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	stats, err := h.history.GetTickerStats(ticker)
	if err != nil {
		slog.Error("Database error", "operation", "get_ticker_stats", "ticker", ticker, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	headlines := make([]headlineJSON, 0, len(rows))
	for _, row := range rows {
		headlines = append(headlines, headlineJSON{
			Time:           row.PublishedAt,
			Headline:       row.Title,
			Link:           row.Link,
			Source:         row.Source,
			Negative:       row.Negative,
			Neutral:        row.Neutral,
			Positive:       row.Positive,
			SentimentScore: row.SentimentScore,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"ticker": ticker,
		"stats": gin.H{
			"headlines":      stats.Headlines,
			"first_seen":     stats.FirstSeen,
			"last_seen":      stats.LastSeen,
			"mean_sentiment": stats.MeanSentiment,
		},
		"headlines": headlines,
		"total":     len(headlines),
	})
}
