package chart

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/lysyi3m/ticker-sentiment/app/sentiment"
)

var tableTemplate = template.Must(template.New("table").Parse(`<table class="{{.Class}}">
  <thead>
    <tr>
      <th>datetime</th>
      <th>headline</th>
      <th>neg</th>
      <th>neu</th>
      <th>pos</th>
      <th>sentiment_score</th>
    </tr>
  </thead>
  <tbody>
{{- range .Rows}}
    <tr>
      <td>{{.Time}}</td>
      <td>{{if .Link}}<a href="{{.Link}}" rel="noopener noreferrer" target="_blank">{{.Headline}}</a>{{else}}{{.Headline}}{{end}}</td>
      <td>{{.Negative}}</td>
      <td>{{.Neutral}}</td>
      <td>{{.Positive}}</td>
      <td>{{.SentimentScore}}</td>
    </tr>
{{- end}}
  </tbody>
</table>`))

type Row struct {
	Time           string `json:"datetime"`
	Headline       string `json:"headline"`
	Link           string `json:"link,omitempty"`
	Negative       string `json:"neg"`
	Neutral        string `json:"neu"`
	Positive       string `json:"pos"`
	SentimentScore string `json:"sentiment_score"`
}

// Table is the tabular rendering of every scored headline, in input order.
type Table struct {
	Class string
	Rows  []Row
}

func NewTable(scored []sentiment.Scored) Table {
	rows := make([]Row, 0, len(scored))
	for _, s := range scored {
		rows = append(rows, Row{
			Time:           s.Time.Format(timeLayout),
			Headline:       s.Title,
			Link:           s.Link,
			Negative:       formatScore(s.Negative),
			Neutral:        formatScore(s.Neutral),
			Positive:       formatScore(s.Positive),
			SentimentScore: formatScore(s.SentimentScore()),
		})
	}
	return Table{Class: "data", Rows: rows}
}

func (t Table) HTML() (template.HTML, error) {
	var buf bytes.Buffer
	if err := tableTemplate.Execute(&buf, t); err != nil {
		return "", fmt.Errorf("failed to render table: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
