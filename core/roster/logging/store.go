// Package logging persists one audit record per solve so operators can
// review what was requested, what came out and how long it took.
package logging

import (
	"context"
	"time"
)

// Record captures one solve decision and its result summary.
type Record struct {
	SolveID   string    `json:"solve_id"`
	Timestamp time.Time `json:"timestamp"`
	Outcome   string    `json:"outcome"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`

	Workers int `json:"workers"`
	Days    int `json:"days"`
	Events  int `json:"events"`

	Objective      int   `json:"objective"`
	TotalShortfall int   `json:"total_shortfall"`
	ScheduledHours int   `json:"scheduled_hours"`
	Nodes          int64 `json:"nodes"`

	DurationMS int64 `json:"duration_ms"`
}

// Query defines filters for retrieving records.
type Query struct {
	Start   time.Time
	End     time.Time
	Outcome string
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards every record.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
