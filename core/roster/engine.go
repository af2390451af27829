// Package roster is the constraint-optimization engine: it turns a worker
// pool, a horizon and a calendar of events into a band-level schedule by
// building a constraint model, searching it under a wall-clock budget and
// materializing the best assignment found.
package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rosterd/core/cp"
	"rosterd/core/demand"
	"rosterd/core/events"
	"rosterd/core/logger"
	"rosterd/core/model"
	rosterlog "rosterd/core/roster/logging"
	"rosterd/internal/eventbus"
)

// Outcome classifies a solve for callers.
type Outcome int

const (
	// OutcomeScheduled means a schedule was produced, optimal or best-effort.
	OutcomeScheduled Outcome = iota
	// OutcomeInfeasible means the hard constraints admit no assignment.
	OutcomeInfeasible
	// OutcomeTimeout means the budget expired before any solution was found.
	OutcomeTimeout
	// OutcomeConfigError means the request itself was rejected.
	OutcomeConfigError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeScheduled:
		return "scheduled"
	case OutcomeInfeasible:
		return "infeasible"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "config_error"
	}
}

// Request is one solve: the horizon, the worker pool, the event calendar and
// optional per-worker overrides.
type Request struct {
	Horizon   model.Horizon          `json:"horizon"`
	Workers   []model.Worker         `json:"workers"`
	Events    []model.Event          `json:"events,omitempty"`
	Overrides []model.WorkerOverride `json:"overrides,omitempty"`
}

// Stats carries search diagnostics.
type Stats struct {
	Status      cp.Status
	Nodes       int64
	Variables   int
	Constraints int
	Duration    time.Duration
}

// Result is the typed outcome of one solve. Schedule is non-nil only for
// OutcomeScheduled.
type Result struct {
	SolveID   string
	Outcome   Outcome
	Reason    string
	Objective int
	Weights   Weights
	Schedule  *Schedule
	Stats     Stats
}

// Engine owns the static configuration and runs solves against it. It is
// safe for concurrent use: each solve builds its own model.
type Engine struct {
	cfg   Config
	bus   *eventbus.Bus[events.SolveEvent]
	store rosterlog.Store
	log   logger.Logger
}

// New validates the configuration and returns a ready engine. The bus and
// store may be nil; the logger falls back to a no-op.
func New(cfg Config, bus *eventbus.Bus[events.SolveEvent], store rosterlog.Store, log logger.Logger) (*Engine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if store == nil {
		store = rosterlog.NopStore{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Engine{cfg: cfg, bus: bus, store: store, log: log}, nil
}

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Solve runs one complete solve: demand resolution, model construction,
// bounded search and materialization. It never returns an error; failures
// are encoded in the result outcome so callers always get the diagnostics.
func (e *Engine) Solve(ctx context.Context, req Request) Result {
	start := time.Now()
	res := Result{SolveID: uuid.New().String()}

	dates, err := req.Horizon.Dates()
	if err != nil {
		return e.finish(ctx, start, req, e.reject(res, err))
	}
	for _, ev := range req.Events {
		if err := ev.Validate(); err != nil {
			return e.finish(ctx, start, req, e.reject(res, err))
		}
	}
	pol, err := resolvePolicies(e.cfg.Policy, req.Workers, req.Overrides)
	if err != nil {
		return e.finish(ctx, start, req, e.reject(res, err))
	}
	e.warnUnknownOverrides(req)

	resolver := demand.Resolver{Bands: e.cfg.Bands, Base: e.cfg.Demand, Rules: e.cfg.Events}
	days, err := resolver.Resolve(dates, req.Events)
	if err != nil {
		return e.finish(ctx, start, req, e.reject(res, err))
	}

	built := buildModel(&e.cfg, pol, dates, days, req.Events)
	res.Weights = built.weights
	e.log.Debugw("model built", map[string]any{
		"solve_id":    res.SolveID,
		"days":        len(dates),
		"workers":     len(pol),
		"variables":   built.m.NumVars(),
		"constraints": built.m.NumConstraints(),
	})

	solveCtx, cancel := context.WithTimeout(ctx, e.cfg.Solver.Timeout())
	defer cancel()
	solver := cp.Solver{CheckInterval: e.cfg.Solver.CheckInterval}
	sr := solver.Solve(solveCtx, built.m)

	res.Stats = Stats{
		Status:      sr.Status,
		Nodes:       sr.Nodes,
		Variables:   built.m.NumVars(),
		Constraints: built.m.NumConstraints(),
	}
	res.Objective = sr.Objective

	switch sr.Status {
	case cp.StatusOptimal, cp.StatusFeasible:
		res.Outcome = OutcomeScheduled
		res.Schedule = materialize(built, sr, e.cfg.Bands)
		if sr.Status == cp.StatusFeasible {
			res.Reason = "budget expired before optimality was proven; returning best schedule found"
		}
	case cp.StatusInfeasible:
		res.Outcome = OutcomeInfeasible
		res.Reason = e.infeasibleReason(days)
	default:
		res.Outcome = OutcomeTimeout
		res.Reason = fmt.Sprintf("no schedule found within %s", e.cfg.Solver.Timeout())
	}
	return e.finish(ctx, start, req, res)
}

func (e *Engine) reject(res Result, err error) Result {
	res.Outcome = OutcomeConfigError
	res.Reason = err.Error()
	return res
}

func (e *Engine) warnUnknownOverrides(req Request) {
	known := make(map[string]bool, len(req.Workers))
	for _, w := range req.Workers {
		known[w.Name] = true
	}
	for _, o := range req.Overrides {
		if !known[o.Name] {
			e.log.Warnf("override for unknown worker %q ignored", o.Name)
		}
	}
}

// infeasibleReason summarizes why no assignment exists, so the caller sees
// which knob to loosen instead of a bare status.
func (e *Engine) infeasibleReason(days []demand.Day) string {
	peak, mandatory := 0, 0
	for _, day := range days {
		for _, req := range day.Requirements {
			if req.Needed > peak {
				peak = req.Needed
			}
			if req.Mandatory {
				mandatory++
			}
		}
	}
	return fmt.Sprintf(
		"hard constraints admit no assignment (coverage=%s, peak demand %d, mandatory bands %d); check pool size, hour windows and opening floors",
		e.cfg.Policy.Coverage(), peak, mandatory)
}

// finish stamps the duration, writes the audit record and publishes the
// solve event. Audit failures are logged, never surfaced.
func (e *Engine) finish(ctx context.Context, start time.Time, req Request, res Result) Result {
	res.Stats.Duration = time.Since(start)

	shortfall, hours := 0, 0
	if res.Schedule != nil {
		shortfall = res.Schedule.TotalShortfall
		hours = res.Schedule.ScheduledHours
	}
	days := 0
	if dates, err := req.Horizon.Dates(); err == nil {
		days = len(dates)
	}
	rec := rosterlog.Record{
		SolveID:        res.SolveID,
		Timestamp:      start,
		Outcome:        res.Outcome.String(),
		Status:         res.Stats.Status.String(),
		Reason:         res.Reason,
		Workers:        len(req.Workers),
		Days:           days,
		Events:         len(req.Events),
		Objective:      res.Objective,
		TotalShortfall: shortfall,
		ScheduledHours: hours,
		Nodes:          res.Stats.Nodes,
		DurationMS:     res.Stats.Duration.Milliseconds(),
	}
	if err := e.store.Append(ctx, rec); err != nil {
		e.log.Errorf("audit append failed: %v", err)
	}
	if e.bus != nil {
		e.bus.Publish(events.SolveEvent{
			SolveID:        res.SolveID,
			Outcome:        res.Outcome.String(),
			Status:         res.Stats.Status.String(),
			Reason:         res.Reason,
			Start:          start,
			Duration:       res.Stats.Duration,
			Workers:        len(req.Workers),
			Days:           rec.Days,
			Objective:      res.Objective,
			TotalShortfall: shortfall,
			ScheduledHours: hours,
			Nodes:          res.Stats.Nodes,
		})
	}
	e.log.Infof("solve %s: %s in %s (status=%s nodes=%d shortfall=%d)",
		res.SolveID, res.Outcome, res.Stats.Duration.Round(time.Millisecond),
		res.Stats.Status, res.Stats.Nodes, shortfall)
	return res
}
