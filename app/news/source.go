package news

import (
	"context"
	"fmt"
)

type Source interface {
	Headlines(ctx context.Context, ticker string) ([]Headline, error)
	Name() string
}

type pageParser interface {
	Run(data []byte) ([]Headline, error)
}

var (
	_ Source     = (*PageSource)(nil)
	_ pageParser = (*TableParser)(nil)
	_ pageParser = (*FeedParser)(nil)
)

// PageSource fetches one page per ticker and parses it into headlines.
type PageSource struct {
	name    string
	fetcher PageFetcher
	parser  pageParser
}

func NewTableSource(fetcher PageFetcher, parser *TableParser) *PageSource {
	return &PageSource{name: TableSourceName, fetcher: fetcher, parser: parser}
}

func NewFeedSource(fetcher PageFetcher, parser *FeedParser) *PageSource {
	return &PageSource{name: FeedSourceName, fetcher: fetcher, parser: parser}
}

func (s *PageSource) Name() string {
	return s.name
}

func (s *PageSource) Headlines(ctx context.Context, ticker string) ([]Headline, error) {
	data, err := s.fetcher.Fetch(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", ticker, err)
	}

	headlines, err := s.parser.Run(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s page for %s: %w", s.name, ticker, err)
	}

	return headlines, nil
}
