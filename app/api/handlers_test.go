package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/ticker-sentiment/app/database"
	"github.com/lysyi3m/ticker-sentiment/app/feed"
	"github.com/lysyi3m/ticker-sentiment/app/news"
	"github.com/lysyi3m/ticker-sentiment/app/report"
	"github.com/lysyi3m/ticker-sentiment/app/sentiment"
)

const testAPIKey = "secret"

type fakeSource struct {
	headlines []news.Headline
	err       error
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) Headlines(ctx context.Context, ticker string) ([]news.Headline, error) {
	return s.headlines, s.err
}

type fakeHistory struct {
	rows  []database.HeadlineRow
	err   error
	since time.Time
	limit int
}

func (h *fakeHistory) GetHeadlines(ticker string, since time.Time, limit int) ([]database.HeadlineRow, error) {
	h.since = since
	h.limit = limit
	return h.rows, h.err
}

func (h *fakeHistory) GetTickerStats(ticker string) (*database.TickerStats, error) {
	if h.err != nil {
		return nil, h.err
	}
	return &database.TickerStats{Ticker: ticker, Headlines: len(h.rows)}, nil
}

func (h *fakeHistory) ListTickers() ([]string, error) {
	return []string{"AAPL"}, h.err
}

type fakeCache struct {
	status string
}

func (c *fakeCache) Health(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{"status": c.status, "type": "redis"}
}

func testHeadlines() []news.Headline {
	return []news.Headline{
		{Time: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), Title: "Company beats earnings expectations", Link: "https://example.com/1", Source: "fake"},
		{Time: time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC), Title: "Company misses targets, shares plunge", Source: "fake"},
	}
}

func newTestServer(t *testing.T, source news.Source, history HistoryReader, cache CacheHealth) *gin.Engine {
	t.Helper()

	lexicon, err := sentiment.BundledLexicon()
	if err != nil {
		t.Fatal(err)
	}
	builder := report.NewBuilder(source, sentiment.NewScorer(sentiment.NewAnalyzer(lexicon)))

	handler := NewHandler(builder, feed.NewGenerator("http://localhost:8080", "test"), history, cache, nil, len(lexicon), "test")
	return NewServer(handler, testAPIKey, false)
}

func postTicker(server *gin.Engine, ticker string) *httptest.ResponseRecorder {
	form := url.Values{"ticker": {ticker}}
	req := httptest.NewRequest(http.MethodPost, "/sentiment", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func apiRequest(server *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestIndex(t *testing.T) {
	server := newTestServer(t, &fakeSource{}, nil, nil)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `action="/sentiment"`) || !strings.Contains(body, `name="ticker"`) {
		t.Errorf("Expected ticker form, got %s", body)
	}
}

func TestSentimentPage(t *testing.T) {
	server := newTestServer(t, &fakeSource{headlines: testHeadlines()}, nil, nil)

	w := postTicker(server, "aapl")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := w.Body.String()
	for _, want := range []string{
		"Hourly and Daily Sentiment of AAPL Stock",
		"AAPL Hourly Sentiment Scores",
		"AAPL Daily Sentiment Scores",
		`<table class="data">`,
		"Company beats earnings expectations",
		`"type":"bar"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}
}

func TestSentimentPageEmptyTable(t *testing.T) {
	server := newTestServer(t, &fakeSource{headlines: []news.Headline{}}, nil, nil)

	w := postTicker(server, "AAPL")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for an empty news table, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"x":[],"y":[]`) {
		t.Errorf("Expected empty chart data, got %s", w.Body.String())
	}
}

func TestSentimentPageErrors(t *testing.T) {
	tests := []struct {
		name   string
		ticker string
		err    error
		want   int
	}{
		{"invalid ticker", "not a ticker", nil, http.StatusBadRequest},
		{"empty ticker", "", nil, http.StatusBadRequest},
		{"oversized ticker", strings.Repeat("A", 40), nil, http.StatusBadRequest},
		{"missing table", "AAPL", fmt.Errorf("failed to parse: %w", news.ErrTableNotFound), http.StatusNotFound},
		{"upstream status", "AAPL", fmt.Errorf("failed to fetch: %w", news.ErrUnexpectedStatus), http.StatusBadGateway},
		{"upstream transport", "AAPL", fmt.Errorf("%w: refused", news.ErrFetchFailed), http.StatusBadGateway},
		{"other", "AAPL", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, &fakeSource{err: tt.err}, nil, nil)

			w := postTicker(server, tt.ticker)
			if w.Code != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, w.Code)
			}
			if !strings.Contains(w.Body.String(), "Something went wrong") {
				t.Errorf("Expected error page, got %s", w.Body.String())
			}
		})
	}
}

func TestHealth(t *testing.T) {
	server := newTestServer(t, &fakeSource{}, &fakeHistory{}, &fakeCache{status: "healthy"})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var health map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "healthy" || health["source"] != "fake" || health["version"] != "test" {
		t.Errorf("Unexpected health: %v", health)
	}
	if health["history_tickers"] != float64(1) {
		t.Errorf("Expected 1 history ticker, got %v", health["history_tickers"])
	}
}

func TestHealthDegradedCache(t *testing.T) {
	server := newTestServer(t, &fakeSource{}, nil, &fakeCache{status: "unhealthy"})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var health map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "degraded" {
		t.Errorf("Expected degraded status, got %v", health["status"])
	}
}

func TestAPIAuth(t *testing.T) {
	server := newTestServer(t, &fakeSource{headlines: testHeadlines()}, nil, nil)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sentiment/AAPL", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without key, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sentiment/AAPL", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with wrong key, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/sentiment/AAPL", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	w = httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with bearer key, got %d", w.Code)
	}
}

func TestAPIDisabledWithoutKey(t *testing.T) {
	lexicon, err := sentiment.BundledLexicon()
	if err != nil {
		t.Fatal(err)
	}
	builder := report.NewBuilder(&fakeSource{}, sentiment.NewScorer(sentiment.NewAnalyzer(lexicon)))
	server := NewServer(NewHandler(builder, feed.NewGenerator("http://localhost:8080", "test"), nil, nil, nil, len(lexicon), "test"), "", false)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sentiment/AAPL", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 with API disabled, got %d", w.Code)
	}
}

func TestAPIGetSentiment(t *testing.T) {
	server := newTestServer(t, &fakeSource{headlines: testHeadlines()}, nil, nil)

	w := apiRequest(server, "/api/sentiment/aapl")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Ticker  string `json:"ticker"`
		Summary struct {
			Count    int      `json:"count"`
			Mean     *float64 `json:"mean"`
			Positive int      `json:"positive"`
			Negative int      `json:"negative"`
		} `json:"summary"`
		Hourly []struct {
			Start time.Time `json:"start"`
			Mean  *float64  `json:"mean"`
			Count int       `json:"count"`
		} `json:"hourly"`
		Daily     []json.RawMessage `json:"daily"`
		Headlines []struct {
			Headline       string  `json:"headline"`
			SentimentScore float64 `json:"sentiment_score"`
		} `json:"headlines"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	if resp.Ticker != "AAPL" {
		t.Errorf("Expected AAPL, got %s", resp.Ticker)
	}
	if resp.Summary.Count != 2 || resp.Summary.Positive != 1 || resp.Summary.Negative != 1 {
		t.Errorf("Unexpected summary: %+v", resp.Summary)
	}
	if len(resp.Hourly) != 2 || len(resp.Daily) != 1 || len(resp.Headlines) != 2 {
		t.Errorf("Unexpected sizes: hourly=%d daily=%d headlines=%d", len(resp.Hourly), len(resp.Daily), len(resp.Headlines))
	}
	if resp.Headlines[0].SentimentScore <= 0 || resp.Headlines[1].SentimentScore >= 0 {
		t.Errorf("Unexpected score signs: %+v", resp.Headlines)
	}
}

func TestAPIGetSentimentError(t *testing.T) {
	server := newTestServer(t, &fakeSource{err: news.ErrTableNotFound}, nil, nil)

	w := apiRequest(server, "/api/sentiment/AAPL")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["error"] == "" {
		t.Error("Expected error message")
	}
}

func TestAPIGetHistory(t *testing.T) {
	history := &fakeHistory{rows: []database.HeadlineRow{
		{Ticker: "AAPL", PublishedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), Title: "Stored headline", SentimentScore: 0.4},
	}}
	server := newTestServer(t, &fakeSource{}, history, nil)

	w := apiRequest(server, "/api/history/aapl?limit=5000&since=2024-01-01T00:00:00Z")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if history.limit != maxHistoryLimit {
		t.Errorf("Expected limit capped at %d, got %d", maxHistoryLimit, history.limit)
	}
	if !history.since.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected since %v", history.since)
	}

	var resp struct {
		Ticker    string `json:"ticker"`
		Total     int    `json:"total"`
		Headlines []struct {
			Headline string `json:"headline"`
		} `json:"headlines"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Ticker != "AAPL" || resp.Total != 1 || resp.Headlines[0].Headline != "Stored headline" {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestAPIGetHistoryErrors(t *testing.T) {
	server := newTestServer(t, &fakeSource{}, &fakeHistory{}, nil)

	for path, want := range map[string]int{
		"/api/history/AAPL?limit=0":        http.StatusBadRequest,
		"/api/history/AAPL?limit=abc":      http.StatusBadRequest,
		"/api/history/AAPL?since=tomorrow": http.StatusBadRequest,
		"/api/history/1BAD":                http.StatusBadRequest,
	} {
		if w := apiRequest(server, path); w.Code != want {
			t.Errorf("%s: expected %d, got %d", path, want, w.Code)
		}
	}

	disabled := newTestServer(t, &fakeSource{}, nil, nil)
	if w := apiRequest(disabled, "/api/history/AAPL"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 with history disabled, got %d", w.Code)
	}

	failing := newTestServer(t, &fakeSource{}, &fakeHistory{err: errors.New("db down")}, nil)
	if w := apiRequest(failing, "/api/history/AAPL"); w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 on database error, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	server := newTestServer(t, &fakeSource{}, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/sentiment/AAPL", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS header")
	}
}

func TestGetFeed(t *testing.T) {
	history := &fakeHistory{rows: []database.HeadlineRow{
		{Ticker: "AAPL", PublishedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), Title: "Stored headline", SentimentScore: 0.4, ContentHash: "h1"},
	}}
	server := newTestServer(t, &fakeSource{}, history, nil)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/feeds/aapl", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("Expected XML content type, got %s", ct)
	}
	if w.Header().Get("X-Feed-Items") != "1" || w.Header().Get("X-Feed-Ticker") != "AAPL" {
		t.Errorf("Unexpected feed headers: %v", w.Header())
	}
	if !strings.Contains(w.Body.String(), "<title>Stored headline</title>") {
		t.Errorf("Expected stored headline in feed, got %s", w.Body.String())
	}
}

func TestGetFeedNotFound(t *testing.T) {
	for name, history := range map[string]HistoryReader{
		"history disabled": nil,
		"no headlines":     &fakeHistory{},
	} {
		server := newTestServer(t, &fakeSource{}, history, nil)

		w := httptest.NewRecorder()
		server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/feeds/AAPL", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", name, w.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t, &fakeSource{headlines: testHeadlines()}, nil, nil)

	if w := postTicker(server, "AAPL"); w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `ticker_sentiment_reports_total{source="fake",status="success"}`) {
		t.Errorf("Expected report counter for fake source, got %s", w.Body.String())
	}
}
