package tasks

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/ticker-sentiment/app/report"
)

const DefaultRefreshInterval = 900

type WatchlistEntry struct {
	Symbol          string `yaml:"symbol"`
	RefreshInterval int    `yaml:"refresh_interval"`
}

// Interval is the refresh period of the entry.
func (e WatchlistEntry) Interval() time.Duration {
	return time.Duration(e.RefreshInterval) * time.Second
}

type watchlistFile struct {
	RefreshInterval int              `yaml:"refresh_interval"`
	Tickers         []WatchlistEntry `yaml:"tickers"`
}

// Watchlist holds the tickers refreshed in the background, loaded from a YAML file.
type Watchlist struct {
	path    string
	entries map[string]WatchlistEntry
	mu      sync.RWMutex
}

func NewWatchlist(path string) *Watchlist {
	return &Watchlist{
		path:    path,
		entries: make(map[string]WatchlistEntry),
	}
}

// Run loads the watchlist file, replacing any previously loaded entries.
// A missing file leaves the watchlist empty.
func (w *Watchlist) Run() error {
	if _, err := os.Stat(w.path); os.IsNotExist(err) {
		slog.Warn("Watchlist file not found", "path", w.path)
		return nil
	}

	entries, err := w.parse()
	if err != nil {
		return fmt.Errorf("error loading %s: %w", w.path, err)
	}

	w.mu.Lock()
	w.entries = entries
	w.mu.Unlock()

	for _, entry := range entries {
		slog.Debug("Watchlist entry loaded", "ticker", entry.Symbol, "refresh_interval", entry.RefreshInterval)
	}

	return nil
}

func (w *Watchlist) parse() (map[string]WatchlistEntry, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var file watchlistFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if file.RefreshInterval < 0 {
		return nil, fmt.Errorf("refresh interval must be non-negative")
	}
	if file.RefreshInterval == 0 {
		file.RefreshInterval = DefaultRefreshInterval
	}

	entries := make(map[string]WatchlistEntry, len(file.Tickers))
	for i, entry := range file.Tickers {
		symbol, err := report.NormalizeTicker(entry.Symbol)
		if err != nil {
			return nil, fmt.Errorf("ticker at index %d: %w", i, err)
		}
		if _, ok := entries[symbol]; ok {
			return nil, fmt.Errorf("duplicate ticker %s at index %d", symbol, i)
		}
		if entry.RefreshInterval < 0 {
			return nil, fmt.Errorf("refresh interval of %s must be non-negative", symbol)
		}
		if entry.RefreshInterval == 0 {
			entry.RefreshInterval = file.RefreshInterval
		}
		entry.Symbol = symbol
		entries[symbol] = entry
	}

	return entries, nil
}

// GetEntries returns the entries sorted by symbol.
func (w *Watchlist) GetEntries() []WatchlistEntry {
	w.mu.RLock()
	defer w.mu.RUnlock()

	entries := make([]WatchlistEntry, 0, len(w.entries))
	for _, entry := range w.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Symbol < entries[j].Symbol })
	return entries
}

func (w *Watchlist) GetEntry(symbol string) (WatchlistEntry, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	entry, ok := w.entries[symbol]
	return entry, ok
}

func (w *Watchlist) GetCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entries)
}
