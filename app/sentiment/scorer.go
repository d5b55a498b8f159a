package sentiment

import (
	"github.com/lysyi3m/ticker-sentiment/app/news"
)

// Scored is a headline with its polarity scores.
type Scored struct {
	news.Headline
	Scores
}

// SentimentScore is the compound score under its domain name.
func (s Scored) SentimentScore() float64 {
	return s.Compound
}

type Scorer struct {
	analyzer *Analyzer
}

func NewScorer(analyzer *Analyzer) *Scorer {
	return &Scorer{analyzer: analyzer}
}

// Run scores every headline, keeping input order and duplicate timestamps.
func (s *Scorer) Run(headlines []news.Headline) []Scored {
	scored := make([]Scored, 0, len(headlines))
	for _, h := range headlines {
		scored = append(scored, Scored{
			Headline: h,
			Scores:   s.analyzer.PolarityScores(h.Title),
		})
	}
	return scored
}
