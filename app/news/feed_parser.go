package news

import (
	"bytes"
	"cmp"
	"fmt"
	"html"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

const FeedSourceName = "rss"

// FeedParser turns an RSS/Atom headline feed into headlines.
type FeedParser struct {
	gofeedParser *gofeed.Parser
	policy       *bluemonday.Policy
	location     *time.Location
}

func NewFeedParser(location *time.Location) *FeedParser {
	if location == nil {
		location = time.UTC
	}
	return &FeedParser{
		gofeedParser: gofeed.NewParser(),
		policy:       bluemonday.StrictPolicy(),
		location:     location,
	}
}

func (p *FeedParser) Run(data []byte) ([]Headline, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	headlines := make([]Headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		title := p.plainText(item.Title)
		if title == "" {
			continue
		}

		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}
		if published == nil {
			continue
		}

		headlines = append(headlines, Headline{
			Time:   published.In(p.location),
			Title:  title,
			Link:   cmp.Or(item.Link, item.GUID),
			Source: FeedSourceName,
		})
	}

	return headlines, nil
}

// plainText strips markup some feeds leave in titles.
func (p *FeedParser) plainText(s string) string {
	return cleanTitle(html.UnescapeString(p.policy.Sanitize(s)))
}
