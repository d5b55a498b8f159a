package database

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// SQLiteHeadlineRepository stores scored headlines per ticker
type SQLiteHeadlineRepository struct {
	db  *DB
	now func() time.Time
}

var _ HeadlineRepository = (*SQLiteHeadlineRepository)(nil)

func NewHeadlineRepository(db *DB) *SQLiteHeadlineRepository {
	return &SQLiteHeadlineRepository{db: db, now: time.Now}
}

// ContentHash identifies a headline independently of when it was stored.
func ContentHash(ticker string, publishedAt time.Time, title string) string {
	h := sha256.New()
	h.Write([]byte(ticker))
	h.Write([]byte{'|'})
	h.Write([]byte(strconv.FormatInt(publishedAt.Unix(), 10)))
	h.Write([]byte{'|'})
	h.Write([]byte(title))
	return hex.EncodeToString(h.Sum(nil))
}

// UpsertHeadlines inserts rows not already stored for ticker and returns how many were new
func (r *SQLiteHeadlineRepository) UpsertHeadlines(ticker string, rows []HeadlineRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO headlines (
			ticker, published_at, title, link, source,
			neg, neu, pos, sentiment_score, content_hash, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (ticker, content_hash) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	createdAt := r.now().Unix()
	inserted := 0
	for _, row := range rows {
		hash := row.ContentHash
		if hash == "" {
			hash = ContentHash(ticker, row.PublishedAt, row.Title)
		}

		res, err := stmt.Exec(ticker, row.PublishedAt.Unix(), row.Title, row.Link, row.Source,
			row.Negative, row.Neutral, row.Positive, row.SentimentScore, hash, createdAt)
		if err != nil {
			return 0, fmt.Errorf("failed to store headline: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read affected rows: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit headlines: %w", err)
	}

	return inserted, nil
}

// GetHeadlines returns stored headlines for ticker published at or after since, newest first.
// A non-positive limit returns everything.
func (r *SQLiteHeadlineRepository) GetHeadlines(ticker string, since time.Time, limit int) ([]HeadlineRow, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(`
		SELECT id, ticker, published_at, title, link, source,
		       neg, neu, pos, sentiment_score, content_hash, created_at
		FROM headlines
		WHERE ticker = ? AND published_at >= ?
		ORDER BY published_at DESC, id ASC
		LIMIT ?
	`, ticker, since.Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get headlines: %w", err)
	}
	defer rows.Close()

	headlines := []HeadlineRow{}
	for rows.Next() {
		var h HeadlineRow
		var publishedAt, createdAt int64
		err := rows.Scan(
			&h.ID, &h.Ticker, &publishedAt, &h.Title, &h.Link, &h.Source,
			&h.Negative, &h.Neutral, &h.Positive, &h.SentimentScore,
			&h.ContentHash, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan headline row: %w", err)
		}
		h.PublishedAt = time.Unix(publishedAt, 0).UTC()
		h.CreatedAt = time.Unix(createdAt, 0).UTC()
		headlines = append(headlines, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating headline rows: %w", err)
	}

	return headlines, nil
}

// GetTickerStats summarizes the stored history of a ticker
func (r *SQLiteHeadlineRepository) GetTickerStats(ticker string) (*TickerStats, error) {
	var count int
	var first, last sql.NullInt64
	var mean sql.NullFloat64

	err := r.db.QueryRow(`
		SELECT COUNT(*), MIN(published_at), MAX(published_at), AVG(sentiment_score)
		FROM headlines
		WHERE ticker = ?
	`, ticker).Scan(&count, &first, &last, &mean)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticker stats: %w", err)
	}

	stats := &TickerStats{Ticker: ticker, Headlines: count}
	if first.Valid {
		t := time.Unix(first.Int64, 0).UTC()
		stats.FirstSeen = &t
	}
	if last.Valid {
		t := time.Unix(last.Int64, 0).UTC()
		stats.LastSeen = &t
	}
	if mean.Valid {
		m := mean.Float64
		stats.MeanSentiment = &m
	}

	return stats, nil
}

// ListTickers returns every ticker with stored headlines
func (r *SQLiteHeadlineRepository) ListTickers() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT ticker FROM headlines ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickers: %w", err)
	}
	defer rows.Close()

	tickers := []string{}
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, ticker)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickers: %w", err)
	}

	return tickers, nil
}
