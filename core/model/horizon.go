package model

import (
	"fmt"
	"time"
)

// Horizon selects the calendar dates covered by one solve: either an
// explicit start date plus a number of weeks, or a year/month expanded to
// whole Monday-aligned weeks.
type Horizon struct {
	Start time.Time `json:"start,omitempty"`
	Weeks int       `json:"weeks,omitempty"`

	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
}

// Validate checks that exactly one horizon form is present.
func (h Horizon) Validate() error {
	explicit := !h.Start.IsZero()
	monthly := h.Year != 0 || h.Month != 0
	switch {
	case explicit && monthly:
		return fmt.Errorf("horizon: specify either start+weeks or year+month, not both")
	case explicit:
		if h.Weeks <= 0 {
			return fmt.Errorf("horizon: weeks must be positive")
		}
	case monthly:
		if h.Month < 1 || h.Month > 12 {
			return fmt.Errorf("horizon: month %d out of range", h.Month)
		}
		if h.Year < 1 {
			return fmt.Errorf("horizon: year %d out of range", h.Year)
		}
	default:
		return fmt.Errorf("horizon: empty")
	}
	return nil
}

// Dates expands the horizon into its ordered calendar dates, normalized to
// UTC midnight. Month horizons are padded to whole weeks: from the Monday on
// or before the first of the month through the Sunday on or after its last
// day. The result length is always a multiple of seven.
func (h Horizon) Dates() ([]time.Time, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	var first, last time.Time
	if !h.Start.IsZero() {
		first = Midnight(h.Start)
		last = first.AddDate(0, 0, h.Weeks*7-1)
	} else {
		monthStart := time.Date(h.Year, time.Month(h.Month), 1, 0, 0, 0, 0, time.UTC)
		monthEnd := monthStart.AddDate(0, 1, -1)
		first = monthStart.AddDate(0, 0, -Weekday(monthStart))
		last = monthEnd.AddDate(0, 0, 6-Weekday(monthEnd))
	}
	var dates []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates, nil
}

// Midnight normalizes t to UTC midnight of the same calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekChunks splits dates into consecutive 7-day windows. A trailing partial
// window, possible only with malformed input, is returned as-is; weekly
// constraints apply to complete windows only.
func WeekChunks(dates []time.Time) [][]time.Time {
	var chunks [][]time.Time
	for i := 0; i < len(dates); i += 7 {
		end := min(i+7, len(dates))
		chunks = append(chunks, dates[i:end])
	}
	return chunks
}
