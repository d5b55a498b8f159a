package sentiment

import (
	"strings"
	"testing"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	lexicon, err := BundledLexicon()
	if err != nil {
		t.Fatal(err)
	}
	return NewAnalyzer(lexicon)
}

func TestAnalyzer_SignDirection(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	positive := analyzer.PolarityScores("Company beats earnings expectations")
	if positive.Compound <= 0 {
		t.Errorf("Expected positive compound score, got %f", positive.Compound)
	}

	negative := analyzer.PolarityScores("Company misses targets, shares plunge")
	if negative.Compound >= 0 {
		t.Errorf("Expected negative compound score, got %f", negative.Compound)
	}
}

func TestAnalyzer_CompoundRange(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	texts := []string{
		"",
		"Stock rises",
		"SURGE SURGE SURGE soaring rally record gains best excellent outstanding!!!!",
		"crash plunge collapse disaster crisis bankruptcy fraud scandal worst!!!!",
		"Analysts are not sure, but the outlook is very weak???",
		strings.Repeat("great ", 200),
		strings.Repeat("terrible awful bad worst ", 200),
	}

	for _, text := range texts {
		scores := analyzer.PolarityScores(text)
		if scores.Compound < -1 || scores.Compound > 1 {
			t.Errorf("Compound score %f out of range for %q", scores.Compound, text)
		}
		for name, v := range map[string]float64{"neg": scores.Negative, "neu": scores.Neutral, "pos": scores.Positive} {
			if v < 0 || v > 1 {
				t.Errorf("%s proportion %f out of range for %q", name, v, text)
			}
		}
	}
}

func TestAnalyzer_ProportionsSumToOne(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	scores := analyzer.PolarityScores("Company beats earnings expectations")
	sum := scores.Negative + scores.Neutral + scores.Positive
	if sum < 0.998 || sum > 1.002 {
		t.Errorf("Expected proportions to sum to 1, got %f", sum)
	}
	if scores.Negative != 0 {
		t.Errorf("Expected no negative proportion, got %f", scores.Negative)
	}
}

func TestAnalyzer_EmptyAndNeutralText(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	if scores := analyzer.PolarityScores(""); scores != (Scores{}) {
		t.Errorf("Expected zero scores for empty text, got %+v", scores)
	}

	scores := analyzer.PolarityScores("Company schedules quarterly call")
	if scores.Compound != 0 {
		t.Errorf("Expected neutral compound, got %f", scores.Compound)
	}
	if scores.Neutral != 1 {
		t.Errorf("Expected neutral proportion 1, got %f", scores.Neutral)
	}
}

func TestAnalyzer_Negation(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	plain := analyzer.PolarityScores("Shares rise")
	negated := analyzer.PolarityScores("Shares do not rise")

	if plain.Compound <= 0 {
		t.Fatalf("Expected positive baseline, got %f", plain.Compound)
	}
	if negated.Compound >= 0 {
		t.Errorf("Expected negation to flip sign, got %f", negated.Compound)
	}

	contracted := analyzer.PolarityScores("Shares didn't rise")
	if contracted.Compound >= 0 {
		t.Errorf("Expected contracted negation to flip sign, got %f", contracted.Compound)
	}
}

func TestAnalyzer_Boosters(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	plain := analyzer.PolarityScores("Strong quarter")
	boosted := analyzer.PolarityScores("Very strong quarter")
	dampened := analyzer.PolarityScores("Slightly strong quarter")

	if boosted.Compound <= plain.Compound {
		t.Errorf("Expected booster to increase score: %f <= %f", boosted.Compound, plain.Compound)
	}
	if dampened.Compound >= plain.Compound {
		t.Errorf("Expected dampener to decrease score: %f >= %f", dampened.Compound, plain.Compound)
	}

	negPlain := analyzer.PolarityScores("Weak quarter")
	negBoosted := analyzer.PolarityScores("Very weak quarter")
	if negBoosted.Compound >= negPlain.Compound {
		t.Errorf("Expected booster to intensify negative score: %f >= %f", negBoosted.Compound, negPlain.Compound)
	}
}

func TestAnalyzer_ButShiftsWeight(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	scores := analyzer.PolarityScores("Revenue strong but outlook weak")
	if scores.Compound >= 0 {
		t.Errorf("Expected clause after 'but' to dominate, got %f", scores.Compound)
	}

	scores = analyzer.PolarityScores("Revenue weak but outlook strong")
	if scores.Compound <= 0 {
		t.Errorf("Expected clause after 'but' to dominate, got %f", scores.Compound)
	}
}

func TestAnalyzer_Emphasis(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	plain := analyzer.PolarityScores("Stock surges today")
	caps := analyzer.PolarityScores("Stock SURGES today")
	exclaimed := analyzer.PolarityScores("Stock surges today!!")

	if caps.Compound <= plain.Compound {
		t.Errorf("Expected capitalisation to increase score: %f <= %f", caps.Compound, plain.Compound)
	}
	if exclaimed.Compound <= plain.Compound {
		t.Errorf("Expected exclamation marks to increase score: %f <= %f", exclaimed.Compound, plain.Compound)
	}
}

func TestAnalyzer_GeneralVocabulary(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	for _, text := range []string{
		"Analysts call quarter terrible as CEO admits mistakes",
		"Factory fire kills two workers",
	} {
		if scores := analyzer.PolarityScores(text); scores.Compound >= 0 {
			t.Errorf("Expected negative compound for %q, got %f", text, scores.Compound)
		}
	}

	if size := analyzer.LexiconSize(); size < 7000 {
		t.Errorf("Expected the full VADER lexicon, got %d entries", size)
	}
}

func TestAnalyzer_Overrides(t *testing.T) {
	stock := NewAnalyzer(nil)
	if stock.PolarityScores("Shares edge higher").Compound <= 0 {
		t.Fatal("Expected stock lexicon to read 'shares' as positive")
	}

	analyzer := NewAnalyzer(Lexicon{"shares": 0, "rebound": 2.0})

	if scores := analyzer.PolarityScores("Shares edge higher"); scores.Compound != 0 {
		t.Errorf("Expected zero override to remove 'shares', got %f", scores.Compound)
	}
	if scores := analyzer.PolarityScores("Stock rebound"); scores.Compound <= 0 {
		t.Errorf("Expected override to add 'rebound', got %f", scores.Compound)
	}
	// one token removed, one added
	if analyzer.LexiconSize() != stock.LexiconSize() {
		t.Errorf("Expected lexicon size %d, got %d", stock.LexiconSize(), analyzer.LexiconSize())
	}
}
