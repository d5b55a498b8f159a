package series

import (
	"fmt"
	"strings"
	"time"
)

type Frequency string

const (
	Hourly Frequency = "H"
	Daily  Frequency = "D"
)

func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "1h", "hour", "hourly":
		return Hourly, nil
	case "d", "1d", "day", "daily":
		return Daily, nil
	}
	return "", fmt.Errorf("unknown frequency %q", s)
}

func (f Frequency) Label() string {
	switch f {
	case Hourly:
		return "Hourly"
	case Daily:
		return "Daily"
	}
	return string(f)
}

// Floor returns the start of the bucket containing t, in t's location.
func (f Frequency) Floor(t time.Time) time.Time {
	switch f {
	case Hourly:
		return t.Add(-time.Duration(t.Minute())*time.Minute -
			time.Duration(t.Second())*time.Second -
			time.Duration(t.Nanosecond()))
	case Daily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	panic(fmt.Sprintf("series: unknown frequency %q", string(f)))
}

// Next returns the start of the bucket following the one starting at start.
func (f Frequency) Next(start time.Time) time.Time {
	switch f {
	case Hourly:
		return start.Add(time.Hour)
	case Daily:
		return time.Date(start.Year(), start.Month(), start.Day()+1, 0, 0, 0, 0, start.Location())
	}
	panic(fmt.Sprintf("series: unknown frequency %q", string(f)))
}

// Back returns the start of the bucket n buckets before the one starting at start.
func (f Frequency) Back(start time.Time, n int) time.Time {
	switch f {
	case Hourly:
		return start.Add(-time.Duration(n) * time.Hour)
	case Daily:
		return time.Date(start.Year(), start.Month(), start.Day()-n, 0, 0, 0, 0, start.Location())
	}
	panic(fmt.Sprintf("series: unknown frequency %q", string(f)))
}
