package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "rosterd/core/metrics"
)

// PromSink records solve results in Prometheus metrics.
type PromSink struct {
	solves    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	shortfall prometheus.Gauge
	hours     prometheus.Gauge
}

// NewPromSink registers solve metrics on the provided Prometheus registerer.
// If reg is nil, the default registerer is used. If the collectors are already
// registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_solves_total",
		Help: "Total number of solves by outcome",
	}, []string{"outcome", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roster_solve_duration_seconds",
		Help:    "Wall-clock time spent per solve",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	shortfall := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roster_last_shortfall",
		Help: "Total unfilled headcount of the last schedule produced",
	})
	hours := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roster_last_scheduled_hours",
		Help: "Total scheduled hours of the last schedule produced",
	})

	s := &PromSink{solves: solves, duration: duration, shortfall: shortfall, hours: hours}
	if err := reg.Register(solves); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			s.solves = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			s.duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(shortfall); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			s.shortfall = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(hours); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			s.hours = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	return s, nil
}

// RecordSolve updates the counters, histograms and gauges for one solve.
func (s *PromSink) RecordSolve(rec coremetrics.SolveRecord) error {
	s.solves.WithLabelValues(rec.Outcome, rec.Status).Inc()
	s.duration.WithLabelValues(rec.Outcome).Observe(rec.Duration.Seconds())
	if rec.Outcome == "scheduled" {
		s.shortfall.Set(float64(rec.TotalShortfall))
		s.hours.Set(float64(rec.ScheduledHours))
	}
	return nil
}
