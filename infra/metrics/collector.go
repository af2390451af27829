package metrics

import (
	"context"

	"rosterd/core/events"
	coremetrics "rosterd/core/metrics"
	"rosterd/internal/eventbus"
)

// StartCollector subscribes to the event bus and records metrics for every
// solve event. It stops when the context is canceled or the bus closes.
func StartCollector(ctx context.Context, bus *eventbus.Bus[events.SolveEvent], sink coremetrics.Sink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				_ = sink.RecordSolve(coremetrics.SolveRecord{
					Outcome:        ev.Outcome,
					Status:         ev.Status,
					Workers:        ev.Workers,
					Days:           ev.Days,
					TotalShortfall: ev.TotalShortfall,
					ScheduledHours: ev.ScheduledHours,
					Nodes:          ev.Nodes,
					Duration:       ev.Duration,
				})
			}
		}
	}()
}
