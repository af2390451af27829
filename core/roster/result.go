package roster

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"rosterd/core/cp"
	"rosterd/core/model"
)

// PlaceholderVacant marks an unfilled headcount slot in a materialized shift.
const PlaceholderVacant = "VACANTE"

// Shift is one staffed band of one day: the ordered worker names (permanents
// before on-call, each in request order) padded with vacancy placeholders up
// to the realized headcount.
type Shift struct {
	Band      model.Band `json:"band"`
	Workers   []string   `json:"workers"`
	Required  int        `json:"required"`
	Assigned  int        `json:"assigned"`
	Shortfall int        `json:"shortfall"`
}

// DaySchedule is one calendar day with its event labels and shifts.
type DaySchedule struct {
	Date   time.Time `json:"date"`
	Events []string  `json:"events,omitempty"`
	Shifts []Shift   `json:"shifts"`
}

// Week groups seven consecutive days.
type Week struct {
	Days []DaySchedule `json:"days"`
}

// Schedule is the materialized roster for one horizon.
type Schedule struct {
	Weeks []Week `json:"weeks"`

	// WorkerHours is the total scheduled hours per worker name.
	WorkerHours map[string]int `json:"worker_hours"`

	TotalShortfall int `json:"total_shortfall"`
	ScheduledHours int `json:"scheduled_hours"`

	// Fairness scores how evenly hours spread across the pool, 0-100.
	Fairness float64 `json:"fairness"`
}

// materialize reads a solved assignment back into a schedule.
func materialize(b *builtModel, res cp.Result, bands model.BandTable) *Schedule {
	s := &Schedule{WorkerHours: make(map[string]int, len(b.pol))}
	for _, wp := range b.pol {
		s.WorkerHours[wp.worker.Name] = wp.worker.CarriedHours
	}

	var week Week
	for di, date := range b.dates {
		day := DaySchedule{Date: date, Events: b.days[di].Labels}
		for bi, band := range bands {
			shift := Shift{Band: band, Required: b.days[di].Requirements[bi].Needed}
			for _, permanentPass := range []bool{true, false} {
				for wi, wp := range b.pol {
					if wp.permanent() != permanentPass {
						continue
					}
					if res.BoolValue(b.assign[wi][di][bi]) {
						shift.Workers = append(shift.Workers, wp.worker.Name)
						s.WorkerHours[wp.worker.Name] += band.Hours()
						s.ScheduledHours += band.Hours()
					}
				}
			}
			shift.Assigned = len(shift.Workers)
			shift.Shortfall = res.Value(b.short[di][bi])
			for i := 0; i < shift.Shortfall; i++ {
				shift.Workers = append(shift.Workers, PlaceholderVacant)
			}
			s.TotalShortfall += shift.Shortfall
			day.Shifts = append(day.Shifts, shift)
		}
		week.Days = append(week.Days, day)
		if len(week.Days) == 7 {
			s.Weeks = append(s.Weeks, week)
			week = Week{}
		}
	}
	if len(week.Days) > 0 {
		s.Weeks = append(s.Weeks, week)
	}
	s.Fairness = fairnessScore(s.WorkerHours)
	return s
}

// fairnessScore maps the spread of per-worker hours onto 0-100, where 100 is
// a perfectly even split. An empty or idle pool scores 100.
func fairnessScore(hours map[string]int) float64 {
	if len(hours) < 2 {
		return 100
	}
	values := make([]float64, 0, len(hours))
	for _, h := range hours {
		values = append(values, float64(h))
	}
	mean := stat.Mean(values, nil)
	if mean <= 0 {
		return 100
	}
	sd := stat.StdDev(values, nil)
	score := (1 - sd/mean) * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
