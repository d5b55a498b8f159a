package series

import (
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/lysyi3m/ticker-sentiment/app/sentiment"
)

// MaxBuckets bounds the span of a resampled series. Points older than
// MaxBuckets buckets before the newest point are dropped.
const MaxBuckets = 10000

type Point struct {
	Time  time.Time
	Value float64
}

// Bucket is one resampled interval [Start, next Start). Mean is only
// meaningful when Valid is set; empty buckets have no mean.
type Bucket struct {
	Start time.Time
	Mean  float64
	Count int
	Valid bool
}

func (b Bucket) MeanOrNil() *float64 {
	if !b.Valid {
		return nil
	}
	mean := b.Mean
	return &mean
}

func (b Bucket) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start time.Time `json:"start"`
		Mean  *float64  `json:"mean"`
		Count int       `json:"count"`
	}{
		Start: b.Start,
		Mean:  b.MeanOrNil(),
		Count: b.Count,
	})
}

// Points maps scored headlines to (time, sentiment score) points.
func Points(scored []sentiment.Scored) []Point {
	points := make([]Point, 0, len(scored))
	for _, s := range scored {
		points = append(points, Point{Time: s.Time, Value: s.SentimentScore()})
	}
	return points
}

// Resample groups points into consecutive buckets of the given frequency
// spanning the earliest to the latest point and averages each bucket. All
// points are placed in the location of the earliest point. The span is capped
// at MaxBuckets counted back from the newest point.
func Resample(points []Point, freq Frequency) []Bucket {
	if len(points) == 0 {
		return []Bucket{}
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	loc := sorted[0].Time.Location()
	last := freq.Floor(sorted[len(sorted)-1].Time.In(loc))

	cutoff := freq.Back(last, MaxBuckets-1)
	kept := sort.Search(len(sorted), func(i int) bool {
		return !freq.Floor(sorted[i].Time.In(loc)).Before(cutoff)
	})
	if kept > 0 {
		slog.Warn("Dropping points outside the resample span",
			"frequency", freq.Label(), "dropped", kept, "cutoff", cutoff)
		sorted = sorted[kept:]
	}

	first := freq.Floor(sorted[0].Time.In(loc))

	buckets := make([]Bucket, 0)
	index := make(map[int64]int)
	for start := first; !start.After(last); start = freq.Next(start) {
		index[start.UnixNano()] = len(buckets)
		buckets = append(buckets, Bucket{Start: start})
	}

	sums := make([]float64, len(buckets))
	for _, p := range sorted {
		start := freq.Floor(p.Time.In(loc))
		i, ok := index[start.UnixNano()]
		if !ok {
			slog.Warn("Point has no bucket", "frequency", freq.Label(), "time", p.Time, "bucket", start)
			continue
		}
		sums[i] += p.Value
		buckets[i].Count++
	}

	for i := range buckets {
		if buckets[i].Count > 0 {
			buckets[i].Mean = sums[i] / float64(buckets[i].Count)
			buckets[i].Valid = true
		}
	}

	return buckets
}
