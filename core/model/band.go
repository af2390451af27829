package model

import "fmt"

// Band is one fixed time interval within a day, the atomic scheduling unit.
// StartHour and EndHour are clock hours on a half-open interval [Start, End).
type Band struct {
	Index     int    `json:"index"`
	Label     string `json:"label"`
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
	// Opening marks bands that require a minimum permanent-worker presence.
	Opening bool `json:"opening"`
}

// Hours returns the band duration in whole hours.
func (b Band) Hours() int { return b.EndHour - b.StartHour }

// BandTable is the ordered, non-overlapping set of bands covering the
// working day. Bands are contiguous: band i ends where band i+1 starts.
type BandTable []Band

// Validate checks the table shape before any model construction.
func (t BandTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("band table is empty")
	}
	for i, b := range t {
		if b.Index != i {
			return fmt.Errorf("band %d: index %d out of order", i, b.Index)
		}
		if b.Hours() <= 0 {
			return fmt.Errorf("band %d (%s): non-positive duration", i, b.Label)
		}
		if i > 0 && t[i-1].EndHour != b.StartHour {
			return fmt.Errorf("band %d (%s): not contiguous with previous band", i, b.Label)
		}
	}
	return nil
}

// TotalHours returns the summed duration of all bands.
func (t BandTable) TotalHours() int {
	total := 0
	for _, b := range t {
		total += b.Hours()
	}
	return total
}

// Morning reports whether the band counts as a morning shift for rotation
// purposes. Bands starting before 17:00 are morning, the rest evening.
func (b Band) Morning() bool { return b.StartHour < 17 }

// DefaultBands returns the six-band 12:00-24:00 table used by default
// deployments. Callers may supply any valid table instead.
func DefaultBands() BandTable {
	return BandTable{
		{Index: 0, Label: "12-13", StartHour: 12, EndHour: 13, Opening: true},
		{Index: 1, Label: "13-16", StartHour: 13, EndHour: 16},
		{Index: 2, Label: "16-17", StartHour: 16, EndHour: 17},
		{Index: 3, Label: "17-19", StartHour: 17, EndHour: 19},
		{Index: 4, Label: "19-20", StartHour: 19, EndHour: 20},
		{Index: 5, Label: "20-24", StartHour: 20, EndHour: 24},
	}
}
