// Package metrics defines the observability sink the engine side publishes
// into. Implementations live in infra/metrics.
package metrics

import "time"

// SolveRecord is one completed solve to record.
type SolveRecord struct {
	Outcome        string
	Status         string
	Workers        int
	Days           int
	TotalShortfall int
	ScheduledHours int
	Nodes          int64
	Duration       time.Duration
}

// Sink records solve results for observability purposes.
type Sink interface {
	RecordSolve(rec SolveRecord) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveRecord) error { return nil }
