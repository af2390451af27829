// Package demand computes the required headcount per (date, band) from the
// weekly base table plus event-driven overrides. Floor-replacing overrides
// are applied before additive ones so a later increment never silently
// erases a floor.
package demand

import (
	"fmt"
	"time"

	"rosterd/core/model"
)

// Table holds the base weekly demand, indexed day-of-week (Monday = 0) then
// band index.
type Table [7][]int

// Validate checks the table shape against the band table.
func (t Table) Validate(bands model.BandTable) error {
	for day, row := range t {
		if len(row) != len(bands) {
			return fmt.Errorf("demand table day %d: %d entries for %d bands", day, len(row), len(bands))
		}
		for b, v := range row {
			if v < 0 {
				return fmt.Errorf("demand table day %d band %d: negative demand %d", day, b, v)
			}
		}
	}
	return nil
}

// DefaultTable returns the base weekly demand used by default deployments.
func DefaultTable() Table {
	return Table{
		{3, 4, 3, 2, 3, 5}, // Monday
		{3, 4, 3, 2, 3, 5},
		{3, 4, 3, 2, 3, 5},
		{3, 4, 3, 2, 3, 6},
		{3, 5, 5, 3, 4, 8},
		{3, 7, 7, 4, 4, 8},
		{3, 5, 5, 3, 3, 5}, // Sunday
	}
}

// EventRules binds event categories to their demand effect. All values are
// deployment configuration, not engine constants.
type EventRules struct {
	// DerbyFloor replaces demand on bands overlapped by a derby window.
	DerbyFloor int `json:"derby_floor"`
	// DerbyPre/DerbyPost are the margin hours around a derby kickoff.
	DerbyPre  int `json:"derby_pre"`
	DerbyPost int `json:"derby_post"`
	// HighExtra is added on bands overlapped by a high-importance event.
	HighExtra int `json:"high_extra"`
	HighPre   int `json:"high_pre"`
	HighPost  int `json:"high_post"`
}

// SetDefaults applies the standard rule values.
func (r *EventRules) SetDefaults() {
	if r.DerbyFloor == 0 {
		r.DerbyFloor = 11
	}
	if r.DerbyPre == 0 {
		r.DerbyPre = 2
	}
	if r.DerbyPost == 0 {
		r.DerbyPost = 3
	}
	if r.HighExtra == 0 {
		r.HighExtra = 2
	}
	if r.HighPost == 0 {
		r.HighPost = 2
	}
}

// Requirement is the resolved staffing need for one (date, band) cell.
type Requirement struct {
	Needed int
	// Mandatory marks bands where every available on-call worker must be
	// scheduled.
	Mandatory bool
}

// Day carries the resolved requirements and active event labels for a date.
type Day struct {
	Date         time.Time
	Requirements []Requirement
	Labels       []string
}

// Resolver turns a horizon and an event list into per-day requirements.
type Resolver struct {
	Bands model.BandTable
	Base  Table
	Rules EventRules
}

// Resolve computes requirements for every date. Events on other dates are
// ignored; replace-type overrides are evaluated before additive ones, and
// several replacing events take the maximum floor.
func (r Resolver) Resolve(dates []time.Time, events []model.Event) ([]Day, error) {
	days := make([]Day, 0, len(dates))
	for _, date := range dates {
		day := Day{Date: date, Requirements: make([]Requirement, len(r.Bands))}
		weekday := model.Weekday(date)
		var todays []model.Event
		for _, ev := range events {
			if model.SameDate(ev.Date, date) {
				todays = append(todays, ev)
				day.Labels = append(day.Labels, ev.DisplayLabel())
			}
		}
		for bi, band := range r.Bands {
			needed := r.Base[weekday][bi]
			mandatory := false
			// Replace pass: floors win over the base, max across floors.
			for _, ev := range todays {
				if ev.Kind != model.KindDerby {
					continue
				}
				if r.overlapsBand(band, ev.KickoffHour-r.Rules.DerbyPre, ev.KickoffHour+r.Rules.DerbyPost) {
					needed = max(needed, r.Rules.DerbyFloor)
					mandatory = true
				}
			}
			// Additive pass, cumulative across matches.
			for _, ev := range todays {
				switch ev.Kind {
				case model.KindHighAttendance:
					if ev.HighImportance && r.overlapsBand(band, ev.KickoffHour-r.Rules.HighPre, ev.KickoffHour+r.Rules.HighPost) {
						needed += r.Rules.HighExtra
					}
				case model.KindManual:
					if r.overlapsBand(band, ev.StartHour, ev.StartHour+ev.DurationHours) {
						needed += ev.ExtraHeadcount
					}
				}
			}
			day.Requirements[bi] = Requirement{Needed: needed, Mandatory: mandatory}
		}
		days = append(days, day)
	}
	return days, nil
}

func (r Resolver) overlapsBand(band model.Band, start, end int) bool {
	return model.Overlaps(band.StartHour, band.EndHour, start, end)
}
