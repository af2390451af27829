package roster

import (
	"fmt"
	"strings"
	"time"

	"rosterd/core/demand"
	"rosterd/core/model"
)

// CoverageMode selects how assigned workers plus shortfall relate to demand.
type CoverageMode int

const (
	// CoverageExact requires assigned + shortfall == demand: shortfall is
	// pure slack and surplus staffing is forbidden.
	CoverageExact CoverageMode = iota
	// CoverageMinimum requires assigned + shortfall >= demand, tolerating
	// surplus workers.
	CoverageMinimum
)

func (m CoverageMode) String() string {
	if m == CoverageMinimum {
		return "minimum"
	}
	return "exact"
}

// ParseCoverageMode converts a configuration tag.
func ParseCoverageMode(s string) (CoverageMode, error) {
	switch strings.ToLower(s) {
	case "", "exact":
		return CoverageExact, nil
	case "minimum":
		return CoverageMinimum, nil
	default:
		return 0, fmt.Errorf("unknown coverage mode %q", s)
	}
}

// OpeningPolicy selects the permanent-presence floor rule.
type OpeningPolicy int

const (
	// OpeningRelative requires min(2, permanents available that day)
	// permanents on opening-flagged bands; it self-relaxes and never forces
	// infeasibility on its own.
	OpeningRelative OpeningPolicy = iota
	// OpeningGlobal requires 2 permanents on every band as a hard floor.
	OpeningGlobal
)

func (p OpeningPolicy) String() string {
	if p == OpeningGlobal {
		return "global"
	}
	return "opening-relative"
}

// ParseOpeningPolicy converts a configuration tag.
func ParseOpeningPolicy(s string) (OpeningPolicy, error) {
	switch strings.ToLower(s) {
	case "", "opening-relative", "relative":
		return OpeningRelative, nil
	case "global":
		return OpeningGlobal, nil
	default:
		return 0, fmt.Errorf("unknown opening policy %q", s)
	}
}

// Policy bundles the deployment-level scheduling rules. Zero values are
// replaced by SetDefaults with the standard deployment's behavior.
type Policy struct {
	CoverageMode  string `json:"coverage_mode"`
	OpeningPolicy string `json:"opening_policy"`

	// Daily hour windows applied on days a worker works at all.
	PermanentDailyMin int `json:"permanent_daily_min"`
	PermanentDailyMax int `json:"permanent_daily_max"`
	OnCallDailyMin    int `json:"on_call_daily_min"`
	OnCallDailyMax    int `json:"on_call_daily_max"`

	// Permanent weekly hours: target with a tolerance band, capped by the
	// ceiling regardless of target.
	PermanentWeekTarget    int `json:"permanent_week_target"`
	PermanentWeekTolerance int `json:"permanent_week_tolerance"`
	PermanentWeekCeiling   int `json:"permanent_week_ceiling"`

	// OnCallWeekMax is the weekly ceiling used when a worker record leaves
	// its own maximum unset. A worker minimum of zero means no minimum.
	OnCallWeekMax int `json:"on_call_week_max"`

	// OnCallRestricted forbids on-call work Monday-Thursday and restricts
	// Friday to bands starting at or after OnCallEveningStart.
	OnCallRestricted   bool `json:"on_call_restricted"`
	OnCallEveningStart int  `json:"on_call_evening_start"`

	// ThinBandMaxHours bounds the band widths subject to the isolated
	// fragment rule for split-pattern workers.
	ThinBandMaxHours int `json:"thin_band_max_hours"`

	// RotationWeight enables the soft rotation preference when positive.
	RotationWeight int `json:"rotation_weight"`
	// OvershootPenalty charges weekly hours above the permanent target
	// within the tolerance band.
	OvershootPenalty bool `json:"overshoot_penalty"`

	// ShortfallCap bounds every shortfall variable. It is a configuration
	// constant chosen above any legitimate demand value, not derived.
	ShortfallCap int `json:"shortfall_cap"`

	coverage CoverageMode
	opening  OpeningPolicy
}

// SetDefaults applies the standard deployment policy.
func (p *Policy) SetDefaults() {
	if p.PermanentDailyMin == 0 {
		p.PermanentDailyMin = 4
	}
	if p.PermanentDailyMax == 0 {
		p.PermanentDailyMax = 12
	}
	if p.OnCallDailyMin == 0 {
		p.OnCallDailyMin = 4
	}
	if p.OnCallDailyMax == 0 {
		p.OnCallDailyMax = 12
	}
	if p.PermanentWeekTarget == 0 {
		p.PermanentWeekTarget = 40
	}
	if p.PermanentWeekCeiling == 0 {
		p.PermanentWeekCeiling = 48
	}
	if p.OnCallWeekMax == 0 {
		p.OnCallWeekMax = 40
	}
	if p.OnCallEveningStart == 0 {
		p.OnCallEveningStart = 19
	}
	if p.ThinBandMaxHours == 0 {
		p.ThinBandMaxHours = 2
	}
	if p.ShortfallCap == 0 {
		p.ShortfallCap = 10
	}
}

// Validate resolves the named policies and checks the windows.
func (p *Policy) Validate() error {
	var err error
	if p.coverage, err = ParseCoverageMode(p.CoverageMode); err != nil {
		return err
	}
	if p.opening, err = ParseOpeningPolicy(p.OpeningPolicy); err != nil {
		return err
	}
	if p.PermanentDailyMin > p.PermanentDailyMax {
		return fmt.Errorf("permanent daily window inverted: %d > %d", p.PermanentDailyMin, p.PermanentDailyMax)
	}
	if p.OnCallDailyMin > p.OnCallDailyMax {
		return fmt.Errorf("on-call daily window inverted: %d > %d", p.OnCallDailyMin, p.OnCallDailyMax)
	}
	if p.PermanentWeekTolerance < 0 {
		return fmt.Errorf("negative week tolerance")
	}
	if p.ShortfallCap < 1 {
		return fmt.Errorf("shortfall cap must be positive")
	}
	return nil
}

// Coverage returns the resolved coverage mode.
func (p Policy) Coverage() CoverageMode { return p.coverage }

// Opening returns the resolved opening policy.
func (p Policy) Opening() OpeningPolicy { return p.opening }

// SolverConfig bounds the search.
type SolverConfig struct {
	TimeoutSeconds int `json:"timeout_seconds"`
	// CheckInterval is the node count between deadline checks.
	CheckInterval int64 `json:"check_interval"`
}

// SetDefaults applies the standard 45-second budget.
func (c *SolverConfig) SetDefaults() {
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 45
	}
}

// Validate checks the budget.
func (c SolverConfig) Validate() error {
	if c.TimeoutSeconds < 1 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// Timeout returns the wall-clock search budget.
func (c SolverConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Config is the engine's full static configuration: band shapes, base
// demand, event rules, deployment policy and search budget. It is passed in
// at construction, never read from package state.
type Config struct {
	Bands  model.BandTable   `json:"bands"`
	Demand demand.Table      `json:"demand"`
	Events demand.EventRules `json:"event_rules"`
	Policy Policy            `json:"policy"`
	Solver SolverConfig      `json:"solver"`
}

// SetDefaults fills every unset section with the standard deployment.
func (c *Config) SetDefaults() {
	if len(c.Bands) == 0 {
		c.Bands = model.DefaultBands()
	}
	empty := true
	for _, row := range c.Demand {
		if row != nil {
			empty = false
			break
		}
	}
	if empty {
		c.Demand = demand.DefaultTable()
	}
	c.Events.SetDefaults()
	c.Policy.SetDefaults()
	c.Solver.SetDefaults()
}

// Validate checks the configuration before any model construction.
func (c *Config) Validate() error {
	if err := c.Bands.Validate(); err != nil {
		return err
	}
	if err := c.Demand.Validate(c.Bands); err != nil {
		return err
	}
	if err := c.Policy.Validate(); err != nil {
		return err
	}
	return c.Solver.Validate()
}

// workerPolicy is a worker with every string-keyed rule resolved once at
// model-build time.
type workerPolicy struct {
	worker  model.Worker
	index   int
	pattern model.Pattern
	banned  []model.EventKind

	dailyMin, dailyMax int
	weekMin, weekMax   int
}

func (wp workerPolicy) permanent() bool { return wp.worker.Role == model.RolePermanent }

// bannedOn reports whether an override bans the worker on the date because
// of a listed event kind.
func (wp workerPolicy) bannedOn(date time.Time, events []model.Event) bool {
	for _, kind := range wp.banned {
		for _, ev := range events {
			if ev.Kind == kind && model.SameDate(ev.Date, date) {
				return true
			}
		}
	}
	return false
}

// resolvePolicies builds one policy record per worker, applying named-worker
// overrides from the request.
func resolvePolicies(p Policy, workers []model.Worker, overrides []model.WorkerOverride) ([]workerPolicy, error) {
	byName := make(map[string]model.WorkerOverride, len(overrides))
	for _, o := range overrides {
		byName[o.Name] = o
	}
	seen := make(map[string]bool, len(workers))
	out := make([]workerPolicy, 0, len(workers))
	for i, w := range workers {
		if err := w.Validate(); err != nil {
			return nil, err
		}
		if seen[w.Name] {
			return nil, fmt.Errorf("duplicate worker name %q", w.Name)
		}
		seen[w.Name] = true

		wp := workerPolicy{worker: w, index: i, pattern: w.Pattern}
		if o, ok := byName[w.Name]; ok {
			if o.Pattern != nil {
				wp.pattern = *o.Pattern
			}
			wp.banned = o.BannedEventKinds
		}
		if w.Role == model.RolePermanent {
			wp.dailyMin, wp.dailyMax = p.PermanentDailyMin, p.PermanentDailyMax
			wp.weekMin = p.PermanentWeekTarget - p.PermanentWeekTolerance
			wp.weekMax = min(p.PermanentWeekTarget+p.PermanentWeekTolerance, p.PermanentWeekCeiling)
			if w.MaxWeekHours > 0 {
				wp.weekMax = min(wp.weekMax, w.MaxWeekHours)
			}
		} else {
			wp.dailyMin, wp.dailyMax = p.OnCallDailyMin, p.OnCallDailyMax
			wp.weekMin, wp.weekMax = w.MinWeekHours, w.MaxWeekHours
			if wp.weekMax == 0 {
				wp.weekMax = p.OnCallWeekMax
			}
		}
		out = append(out, wp)
	}
	return out, nil
}
