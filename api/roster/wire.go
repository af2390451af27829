package roster

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"rosterd/core/model"
	engine "rosterd/core/roster"
)

// ParseRequest decodes a JSON plan request into an engine request. It is the
// same decoding the plan handler applies, exposed for the CLI.
func ParseRequest(data []byte) (engine.Request, error) {
	var wire planRequest
	if err := json.Unmarshal(data, &wire); err != nil {
		return engine.Request{}, err
	}
	return wire.toRequest()
}

// EncodeResult writes a solve result in the same JSON shape the plan handler
// returns, indented for terminal output.
func EncodeResult(w io.Writer, res engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toResponse(res))
}

const dateLayout = "2006-01-02"

// planRequest is the wire shape of POST /api/roster/plan. All closed variants
// travel as string tags and are resolved before the engine sees them.
type planRequest struct {
	Horizon   wireHorizon    `json:"horizon"`
	Workers   []wireWorker   `json:"workers"`
	Events    []wireEvent    `json:"events"`
	Overrides []wireOverride `json:"overrides"`
}

type wireHorizon struct {
	Start string `json:"start"`
	Weeks int    `json:"weeks"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
}

type wireWorker struct {
	Name             string   `json:"name"`
	Role             string   `json:"role"`
	MinWeekHours     int      `json:"min_week_hours"`
	MaxWeekHours     int      `json:"max_week_hours"`
	UnavailableDates []string `json:"unavailable_dates"`
	UnavailableDays  []string `json:"unavailable_days"`
	Pattern          string   `json:"pattern"`
	Specialization   string   `json:"specialization"`
	LastShift        string   `json:"last_shift"`
	CarriedHours     int      `json:"carried_hours"`
}

type wireEvent struct {
	Kind        string `json:"kind"`
	Date        string `json:"date"`
	KickoffHour int    `json:"kickoff_hour"`
	// HighImportance defaults to true when omitted; only an explicit false
	// downgrades a high-attendance event to a demand no-op.
	HighImportance *bool  `json:"high_importance"`
	StartHour      int    `json:"start_hour"`
	DurationHours  int    `json:"duration_hours"`
	ExtraHeadcount int    `json:"extra_headcount"`
	Label          string `json:"label"`
}

type wireOverride struct {
	Name             string   `json:"name"`
	Pattern          string   `json:"pattern"`
	BannedEventKinds []string `json:"banned_event_kinds"`
}

func (r planRequest) toRequest() (engine.Request, error) {
	var req engine.Request
	var err error
	if req.Horizon, err = r.Horizon.toHorizon(); err != nil {
		return req, err
	}
	for _, w := range r.Workers {
		worker, err := w.toWorker()
		if err != nil {
			return req, err
		}
		req.Workers = append(req.Workers, worker)
	}
	for _, e := range r.Events {
		ev, err := e.toEvent()
		if err != nil {
			return req, err
		}
		req.Events = append(req.Events, ev)
	}
	for _, o := range r.Overrides {
		ov, err := o.toOverride()
		if err != nil {
			return req, err
		}
		req.Overrides = append(req.Overrides, ov)
	}
	return req, nil
}

func (h wireHorizon) toHorizon() (model.Horizon, error) {
	out := model.Horizon{Weeks: h.Weeks, Year: h.Year, Month: h.Month}
	if h.Start != "" {
		t, err := time.Parse(dateLayout, h.Start)
		if err != nil {
			return out, fmt.Errorf("horizon start: %w", err)
		}
		out.Start = t
	}
	return out, nil
}

func (w wireWorker) toWorker() (model.Worker, error) {
	out := model.Worker{
		Name:         w.Name,
		MinWeekHours: w.MinWeekHours,
		MaxWeekHours: w.MaxWeekHours,
		CarriedHours: w.CarriedHours,
	}
	var err error
	if out.Role, err = model.ParseRole(w.Role); err != nil {
		return out, fmt.Errorf("worker %s: %w", w.Name, err)
	}
	if out.Pattern, err = model.ParsePattern(w.Pattern); err != nil {
		return out, fmt.Errorf("worker %s: %w", w.Name, err)
	}
	if out.Specialization, err = model.ParseSpecialization(w.Specialization); err != nil {
		return out, fmt.Errorf("worker %s: %w", w.Name, err)
	}
	if out.LastShift, err = model.ParseShiftType(w.LastShift); err != nil {
		return out, fmt.Errorf("worker %s: %w", w.Name, err)
	}
	for _, d := range w.UnavailableDates {
		t, err := time.Parse(dateLayout, d)
		if err != nil {
			return out, fmt.Errorf("worker %s: unavailable date: %w", w.Name, err)
		}
		out.UnavailableDates = append(out.UnavailableDates, t)
	}
	for _, d := range w.UnavailableDays {
		idx, err := model.ParseDayCode(d)
		if err != nil {
			return out, fmt.Errorf("worker %s: %w", w.Name, err)
		}
		out.UnavailableDays = append(out.UnavailableDays, idx)
	}
	return out, nil
}

func (e wireEvent) toEvent() (model.Event, error) {
	out := model.Event{
		KickoffHour:    e.KickoffHour,
		HighImportance: e.HighImportance == nil || *e.HighImportance,
		StartHour:      e.StartHour,
		DurationHours:  e.DurationHours,
		ExtraHeadcount: e.ExtraHeadcount,
		Label:          e.Label,
	}
	var err error
	if out.Kind, err = model.ParseEventKind(e.Kind); err != nil {
		return out, err
	}
	if out.Date, err = time.Parse(dateLayout, e.Date); err != nil {
		return out, fmt.Errorf("event date: %w", err)
	}
	return out, nil
}

func (o wireOverride) toOverride() (model.WorkerOverride, error) {
	out := model.WorkerOverride{Name: o.Name}
	if o.Pattern != "" {
		p, err := model.ParsePattern(o.Pattern)
		if err != nil {
			return out, fmt.Errorf("override %s: %w", o.Name, err)
		}
		out.Pattern = &p
	}
	for _, k := range o.BannedEventKinds {
		kind, err := model.ParseEventKind(k)
		if err != nil {
			return out, fmt.Errorf("override %s: %w", o.Name, err)
		}
		out.BannedEventKinds = append(out.BannedEventKinds, kind)
	}
	return out, nil
}

// planResponse is the wire shape of a solve result.
type planResponse struct {
	SolveID   string           `json:"solve_id"`
	Outcome   string           `json:"outcome"`
	Reason    string           `json:"reason,omitempty"`
	Objective int              `json:"objective"`
	Schedule  *engine.Schedule `json:"schedule,omitempty"`
	Stats     planStats        `json:"stats"`
}

type planStats struct {
	Status      string `json:"status"`
	Nodes       int64  `json:"nodes"`
	Variables   int    `json:"variables"`
	Constraints int    `json:"constraints"`
	DurationMS  int64  `json:"duration_ms"`
}

func toResponse(res engine.Result) planResponse {
	return planResponse{
		SolveID:   res.SolveID,
		Outcome:   res.Outcome.String(),
		Reason:    res.Reason,
		Objective: res.Objective,
		Schedule:  res.Schedule,
		Stats: planStats{
			Status:      res.Stats.Status.String(),
			Nodes:       res.Stats.Nodes,
			Variables:   res.Stats.Variables,
			Constraints: res.Stats.Constraints,
			DurationMS:  res.Stats.Duration.Milliseconds(),
		},
	}
}
