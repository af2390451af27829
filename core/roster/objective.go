package roster

import (
	"rosterd/core/cp"
	"rosterd/core/model"
)

// Weights are the lexicographic tier multipliers folded into the single
// linear objective. Shortfall strictly dominates hours, hours strictly
// dominate the soft preferences: one unit of a higher tier outweighs the
// largest possible total of everything below it.
type Weights struct {
	Shortfall int
	Hours     int
	Soft      int
}

// minShortfallWeight keeps the top tier large even on tiny models, matching
// the historical fixed weight.
const minShortfallWeight = 100000

// postObjective assembles the minimized objective. Under exact coverage the
// assigned headcount per band is demand minus shortfall, so the hour tier is
// rewritten onto the shortfall variables alone; that gives the search an
// exact objective bound the moment the shortfall variables are fixed, instead
// of only at a full assignment. Under minimum coverage the hour tier stays on
// the assignment variables.
func (b *builtModel) postObjective(cfg *Config, softTerms cp.LinExpr, _ [][]cp.LinExpr) {
	softMax := 0
	for range softTerms.Terms {
		softMax += cfg.Policy.PermanentWeekTolerance
	}

	rotUnit := cfg.Policy.RotationWeight
	if rotUnit > 0 {
		for wi, wp := range b.pol {
			last := wp.worker.LastShift
			if last == model.ShiftNone {
				continue
			}
			for di := range b.dates {
				for bi, band := range cfg.Bands {
					same := band.Morning() == (last == model.ShiftMorning)
					if same {
						softTerms.Add(b.assign[wi][di][bi], rotUnit)
						softMax += rotUnit
					}
				}
			}
		}
	}

	maxHours := len(b.pol) * len(b.dates) * cfg.Bands.TotalHours()
	// Hours stays strictly above the soft unit even with no soft terms.
	w := Weights{Soft: 1, Hours: softMax + 2}
	w.Shortfall = w.Hours*maxHours + softMax + 1
	if w.Shortfall < minShortfallWeight {
		w.Shortfall = minShortfallWeight
	}
	b.weights = w

	var obj cp.LinExpr
	if cfg.Policy.Coverage() == CoverageExact {
		for di, day := range b.days {
			for bi, req := range day.Requirements {
				dur := cfg.Bands[bi].Hours()
				obj.Offset += w.Hours * dur * req.Needed
				obj.Add(b.short[di][bi], w.Shortfall-w.Hours*dur)
			}
		}
	} else {
		for di := range b.days {
			for bi, band := range cfg.Bands {
				obj.Add(b.short[di][bi], w.Shortfall)
				for wi := range b.pol {
					obj.Add(b.assign[wi][di][bi], w.Hours*band.Hours())
				}
			}
		}
	}
	obj.AddExpr(softTerms, 1)
	b.m.Minimize(obj)
}
