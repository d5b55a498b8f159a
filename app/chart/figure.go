package chart

import (
	"encoding/json"
	"fmt"

	"github.com/lysyi3m/ticker-sentiment/app/series"
)

const timeLayout = "2006-01-02 15:04:05"

// Figure is a plotly.js figure: plotly.newPlot(el, fig.data, fig.layout).
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type          string     `json:"type"`
	Name          string     `json:"name,omitempty"`
	X             []string   `json:"x"`
	Y             []*float64 `json:"y"`
	HoverTemplate string     `json:"hovertemplate,omitempty"`
}

type Layout struct {
	Title   Title  `json:"title"`
	XAxis   Axis   `json:"xaxis"`
	YAxis   Axis   `json:"yaxis"`
	BarMode string `json:"barmode,omitempty"`
}

type Axis struct {
	Title Title  `json:"title"`
	Type  string `json:"type,omitempty"`
}

type Title struct {
	Text string `json:"text"`
}

// NewBarFigure charts bucket means over bucket starts. Buckets without a mean
// are kept on the x axis with a null y so the chart shows a gap.
func NewBarFigure(ticker string, freq series.Frequency, buckets []series.Bucket) Figure {
	x := make([]string, 0, len(buckets))
	y := make([]*float64, 0, len(buckets))
	for _, b := range buckets {
		x = append(x, b.Start.Format(timeLayout))
		y = append(y, b.MeanOrNil())
	}

	return Figure{
		Data: []Trace{{
			Type:          "bar",
			Name:          "sentiment_score",
			X:             x,
			Y:             y,
			HoverTemplate: "datetime=%{x}<br>sentiment_score=%{y}<extra></extra>",
		}},
		Layout: Layout{
			Title:   Title{Text: FigureTitle(ticker, freq)},
			XAxis:   Axis{Title: Title{Text: "datetime"}, Type: "date"},
			YAxis:   Axis{Title: Title{Text: "sentiment_score"}},
			BarMode: "relative",
		},
	}
}

func FigureTitle(ticker string, freq series.Frequency) string {
	return fmt.Sprintf("%s %s Sentiment Scores", ticker, freq.Label())
}

func (f Figure) JSON() (string, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("failed to encode figure: %w", err)
	}
	return string(data), nil
}
