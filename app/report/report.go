package report

import (
	"time"

	"github.com/lysyi3m/ticker-sentiment/app/sentiment"
	"github.com/lysyi3m/ticker-sentiment/app/series"
)

// Polarity thresholds on the compound score.
const (
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

const (
	PolarityPositive = "positive"
	PolarityNegative = "negative"
	PolarityNeutral  = "neutral"
)

// Polarity classifies a compound score.
func Polarity(score float64) string {
	switch {
	case score >= PositiveThreshold:
		return PolarityPositive
	case score <= NegativeThreshold:
		return PolarityNegative
	default:
		return PolarityNeutral
	}
}

type Report struct {
	Ticker      string             `json:"ticker"`
	Source      string             `json:"source"`
	GeneratedAt time.Time          `json:"generated_at"`
	Headlines   []sentiment.Scored `json:"-"`
	Hourly      []series.Bucket    `json:"hourly"`
	Daily       []series.Bucket    `json:"daily"`
}

type Summary struct {
	Count    int      `json:"count"`
	Mean     *float64 `json:"mean"`
	Positive int      `json:"positive"`
	Negative int      `json:"negative"`
	Neutral  int      `json:"neutral"`
}

func (r *Report) Summary() Summary {
	s := Summary{Count: len(r.Headlines)}
	if s.Count == 0 {
		return s
	}

	var sum float64
	for _, h := range r.Headlines {
		score := h.SentimentScore()
		sum += score
		switch Polarity(score) {
		case PolarityPositive:
			s.Positive++
		case PolarityNegative:
			s.Negative++
		default:
			s.Neutral++
		}
	}

	mean := sum / float64(s.Count)
	s.Mean = &mean
	return s
}

// Buckets returns the series for freq.
func (r *Report) Buckets(freq series.Frequency) []series.Bucket {
	if freq == series.Daily {
		return r.Daily
	}
	return r.Hourly
}
