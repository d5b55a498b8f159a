package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"time"

	"github.com/lysyi3m/ticker-sentiment/app/database"
	"github.com/lysyi3m/ticker-sentiment/app/report"
)

// Generator renders stored headline history as an RSS 2.0 feed, one item per
// headline with its sentiment in the description and polarity as category.
type Generator struct {
	baseURL string
	version string
}

func NewGenerator(baseURL, version string) *Generator {
	return &Generator{baseURL: baseURL, version: version}
}

func (g *Generator) SelfLink(ticker string) string {
	return fmt.Sprintf("%s/feeds/%s", g.baseURL, ticker)
}

// Run expects rows newest first.
func (g *Generator) Run(ticker string, rows []database.HeadlineRow) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", fmt.Sprintf("%s News Sentiment", ticker), 4)
	g.writeElement(&buf, "link", g.baseURL+"/", 4)
	g.writeElement(&buf, "description", fmt.Sprintf("Scored news headlines for %s", ticker), 4)

	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(g.SelfLink(ticker))))

	lastBuildDate := time.Now().In(time.Local)
	if len(rows) > 0 {
		lastBuildDate = rows[0].PublishedAt
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Ticker-Sentiment/%s", g.version), 4)
	g.writeElement(&buf, "language", "en", 4)

	for _, row := range rows {
		g.writeItem(&buf, row)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, row database.HeadlineRow) {
	buf.WriteString("    <item>\n")

	if row.ContentHash != "" {
		buf.WriteString("      <guid isPermaLink=\"false\">")
		xml.EscapeText(buf, []byte(row.ContentHash))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", row.Title, 6)
	g.writeElement(buf, "link", row.Link, 6)
	g.writeElement(buf, "description", describe(row), 6)
	g.writeElement(buf, "pubDate", row.PublishedAt.Format(time.RFC1123Z), 6)
	g.writeElement(buf, "category", report.Polarity(row.SentimentScore), 6)

	if site := sourceSite(row.Link); row.Source != "" && site != "" {
		buf.WriteString("      <source url=\"")
		xml.EscapeText(buf, []byte(site))
		buf.WriteString("\">")
		xml.EscapeText(buf, []byte(row.Source))
		buf.WriteString("</source>\n")
	}

	buf.WriteString("    </item>\n")
}

// sourceSite reduces a headline link to its origin, which RSS requires as the
// url attribute of <source>.
func sourceSite(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/"
}

func describe(row database.HeadlineRow) string {
	return fmt.Sprintf("Sentiment score %s (neg %s, neu %s, pos %s)",
		formatScore(row.SentimentScore), formatScore(row.Negative),
		formatScore(row.Neutral), formatScore(row.Positive))
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
