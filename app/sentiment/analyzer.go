package sentiment

import (
	"strings"

	"github.com/jonreiter/govader"
)

// Scores are VADER polarity scores: neg/neu/pos proportions and the
// normalised compound score in [-1, 1].
type Scores struct {
	Negative float64 `json:"neg"`
	Neutral  float64 `json:"neu"`
	Positive float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

// Analyzer scores text with the VADER rules over the stock VADER lexicon
// with domain overrides merged on top.
type Analyzer struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewAnalyzer layers overrides on the stock lexicon. An override with a
// valence of 0 removes the token.
func NewAnalyzer(overrides Lexicon) *Analyzer {
	sia := govader.NewSentimentIntensityAnalyzer()

	merged := make(map[string]float64, len(sia.Lexicon)+len(overrides))
	for token, valence := range sia.Lexicon {
		merged[token] = valence
	}
	for token, valence := range overrides {
		if valence == 0 {
			delete(merged, token)
			continue
		}
		merged[token] = valence
	}
	sia.Lexicon = merged

	return &Analyzer{sia: sia}
}

func (a *Analyzer) LexiconSize() int {
	return len(a.sia.Lexicon)
}

func (a *Analyzer) PolarityScores(text string) Scores {
	if strings.TrimSpace(text) == "" {
		return Scores{}
	}

	s := a.sia.PolarityScores(text)
	return Scores{
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Positive: s.Positive,
		Compound: s.Compound,
	}
}
