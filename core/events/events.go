// Package events defines the notification types published on the internal
// bus after each solve. Subscribers (metrics collectors, audit sinks) consume
// them asynchronously; delivery is best-effort and never blocks the engine.
package events

import "time"

// SolveEvent summarizes one completed solve.
type SolveEvent struct {
	SolveID  string
	Outcome  string
	Status   string
	Reason   string
	Start    time.Time
	Duration time.Duration

	Workers int
	Days    int

	Objective      int
	TotalShortfall int
	ScheduledHours int
	Nodes          int64
}
