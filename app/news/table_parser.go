package news

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

const (
	NewsTableID     = "news-table"
	TableSourceName = "finviz"

	dateLayout = "Jan-02-06"
	timeLayout = "3:04PM"
)

// TableParser extracts headlines from the quote page's news table.
type TableParser struct {
	location *time.Location
	now      func() time.Time
}

func NewTableParser(location *time.Location) *TableParser {
	if location == nil {
		location = time.UTC
	}
	return &TableParser{
		location: location,
		now:      time.Now,
	}
}

// WithClock replaces the clock used to resolve time-only rows to today's date.
func (p *TableParser) WithClock(now func() time.Time) *TableParser {
	p.now = now
	return p
}

func (p *TableParser) Run(data []byte) ([]Headline, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	table := doc.Find("#" + NewsTableID).First()
	if table.Length() == 0 {
		return nil, ErrTableNotFound
	}

	today := p.now().In(p.location)
	headlines := make([]Headline, 0)
	skipped := 0

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		headline, err := p.parseRow(row, today)
		if err != nil {
			skipped++
			slog.Warn("Skipping news table row", "row", i, "error", err)
			return
		}
		headlines = append(headlines, headline)
	})

	slog.Debug("News table parsed", "headlines", len(headlines), "skipped", skipped)

	return headlines, nil
}

func (p *TableParser) parseRow(row *goquery.Selection, today time.Time) (Headline, error) {
	anchor := row.Find("a").First()
	if anchor.Length() == 0 {
		return Headline{}, fmt.Errorf("row has no headline link")
	}

	cell := row.Find("td").First()
	if cell.Length() == 0 {
		return Headline{}, fmt.Errorf("row has no date cell")
	}

	timestamp, err := p.parseTimestamp(strings.Fields(cell.Text()), today)
	if err != nil {
		return Headline{}, err
	}

	link, _ := anchor.Attr("href")

	return Headline{
		Time:   timestamp,
		Title:  cleanTitle(anchor.Text()),
		Link:   strings.TrimSpace(link),
		Source: TableSourceName,
	}, nil
}

// parseTimestamp applies the row date policy: a single token is a time of day
// on today's date, two tokens are a date and a time.
func (p *TableParser) parseTimestamp(tokens []string, today time.Time) (time.Time, error) {
	var dateToken, timeToken string

	switch len(tokens) {
	case 1:
		timeToken = tokens[0]
	case 2:
		dateToken, timeToken = tokens[0], tokens[1]
	default:
		return time.Time{}, fmt.Errorf("unexpected date/time cell %q: %d tokens", strings.Join(tokens, " "), len(tokens))
	}

	clock, err := time.Parse(timeLayout, strings.ToUpper(timeToken))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", timeToken, err)
	}

	day := today
	if dateToken != "" && !strings.EqualFold(dateToken, "today") {
		day, err = time.ParseInLocation(dateLayout, dateToken, p.location)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", dateToken, err)
		}
	}

	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, p.location), nil
}

func cleanTitle(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}
