package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"rosterd/core/events"
	coremetrics "rosterd/core/metrics"
	"rosterd/internal/eventbus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestPromSinkRecordsSolves(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSink(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordSolve(coremetrics.SolveRecord{
		Outcome: "scheduled", Status: "optimal",
		TotalShortfall: 3, ScheduledHours: 120,
		Duration: 200 * time.Millisecond,
	}))
	require.NoError(t, sink.RecordSolve(coremetrics.SolveRecord{
		Outcome: "infeasible", Status: "infeasible",
	}))

	require.Equal(t, 2.0, counterValue(t, reg, "roster_solves_total"))
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPromSink(reg)
	require.NoError(t, err)
	_, err = NewPromSink(reg)
	require.NoError(t, err)
}

func TestCollectorRecordsBusEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSink(reg)
	require.NoError(t, err)

	bus := eventbus.New[events.SolveEvent]()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartCollector(ctx, bus, sink)

	bus.Publish(events.SolveEvent{Outcome: "scheduled", Status: "optimal"})

	require.Eventually(t, func() bool {
		return counterValue(t, reg, "roster_solves_total") == 1.0
	}, 2*time.Second, 10*time.Millisecond)
}
