package news

import (
	"errors"
	"time"
)

var (
	ErrTableNotFound    = errors.New("news table not found")
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
	ErrFetchFailed      = errors.New("page fetch failed")
)

// Headline is one dated headline scraped from a source, in the source's order.
type Headline struct {
	Time   time.Time
	Title  string
	Link   string
	Source string
}
