package roster

import (
	"fmt"
	"time"

	"rosterd/core/cp"
	"rosterd/core/demand"
	"rosterd/core/model"
)

// builtModel carries the constraint model together with every variable handle
// the result materializer needs to read a solution back out.
type builtModel struct {
	m   *cp.Model
	pol []workerPolicy

	dates []time.Time
	days  []demand.Day

	// assign[w][d][b] is 1 when worker w staffs band b on date d.
	assign [][][]cp.IntVar
	// short[d][b] counts unfilled headcount.
	short [][]cp.IntVar
	// works[w][d] is 1 when worker w works any band on date d.
	works [][]cp.IntVar

	eligible [][][]bool

	weights Weights
}

// buildModel translates one solve request into a constraint model. Variable
// creation order doubles as branching order: per date, the shortfall variable
// first (smallest value first), then the assignment booleans (largest first),
// so the search dives toward fully staffed days before conceding vacancies.
func buildModel(cfg *Config, pol []workerPolicy, dates []time.Time, days []demand.Day, events []model.Event) *builtModel {
	b := &builtModel{
		m:     cp.NewModel(),
		pol:   pol,
		dates: dates,
		days:  days,
	}
	nb := len(cfg.Bands)

	b.eligible = make([][][]bool, len(pol))
	for wi, wp := range pol {
		b.eligible[wi] = make([][]bool, len(dates))
		for di, date := range dates {
			b.eligible[wi][di] = make([]bool, nb)
			if wp.worker.UnavailableOn(date) || wp.bannedOn(date, events) {
				continue
			}
			for bi := range cfg.Bands {
				b.eligible[wi][di][bi] = onCallWindowOpen(cfg.Policy, wp, date, cfg.Bands[bi])
			}
		}
	}

	b.short = make([][]cp.IntVar, len(dates))
	b.assign = make([][][]cp.IntVar, len(pol))
	for wi := range pol {
		b.assign[wi] = make([][]cp.IntVar, len(dates))
		for di := range dates {
			b.assign[wi][di] = make([]cp.IntVar, nb)
		}
	}
	for di := range dates {
		b.short[di] = make([]cp.IntVar, nb)
		for bi := range cfg.Bands {
			b.short[di][bi] = b.m.NewInt(0, cfg.Policy.ShortfallCap, fmt.Sprintf("short_d%d_b%d", di, bi))
			for wi := range pol {
				v := b.m.NewBool(fmt.Sprintf("x_w%d_d%d_b%d", wi, di, bi))
				b.m.BranchHighFirst(v)
				b.assign[wi][di][bi] = v
				if !b.eligible[wi][di][bi] {
					b.m.Fix(v, 0)
				}
			}
		}
	}

	b.fixMandatory()
	b.postCoverage(cfg)
	b.postDailyHours(cfg)
	b.postPatterns(cfg)
	b.postSpecializations(cfg)
	b.postOpeningFloors(cfg)
	weekExprs, softTerms := b.postWeekly(cfg)
	b.postObjective(cfg, softTerms, weekExprs)
	return b
}

// onCallWindowOpen applies the restricted on-call calendar: no work Monday
// through Thursday, Friday only from the evening start hour. Permanents and
// unrestricted deployments are always open.
func onCallWindowOpen(p Policy, wp workerPolicy, date time.Time, band model.Band) bool {
	if wp.permanent() || !p.OnCallRestricted {
		return true
	}
	switch wd := model.Weekday(date); {
	case wd <= 3:
		return false
	case wd == 4:
		return band.StartHour >= p.OnCallEveningStart
	default:
		return true
	}
}

// fixMandatory pins every eligible on-call worker onto bands flagged
// mandatory by the demand resolver.
func (b *builtModel) fixMandatory() {
	for di, day := range b.days {
		for bi, req := range day.Requirements {
			if !req.Mandatory {
				continue
			}
			for wi, wp := range b.pol {
				if !wp.permanent() && b.eligible[wi][di][bi] {
					b.m.Fix(b.assign[wi][di][bi], 1)
				}
			}
		}
	}
}

func (b *builtModel) postCoverage(cfg *Config) {
	exact := cfg.Policy.Coverage() == CoverageExact
	for di, day := range b.days {
		for bi, req := range day.Requirements {
			var cover cp.LinExpr
			for wi := range b.pol {
				cover.Add(b.assign[wi][di][bi], 1)
			}
			cover.Add(b.short[di][bi], 1)
			if exact {
				b.m.AddEq(cover, req.Needed)
			} else {
				b.m.AddGe(cover, req.Needed)
			}
		}
	}
}

// postDailyHours introduces the works-today indicator per worker and day and
// ties it to the daily hour window: zero hours when off, at least the daily
// minimum and at most the maximum when on.
func (b *builtModel) postDailyHours(cfg *Config) {
	b.works = make([][]cp.IntVar, len(b.pol))
	for wi, wp := range b.pol {
		b.works[wi] = make([]cp.IntVar, len(b.dates))
		for di := range b.dates {
			tr := b.m.NewBool(fmt.Sprintf("works_w%d_d%d", wi, di))
			b.works[wi][di] = tr
			hours := b.dayHours(cfg, wi, di)
			b.m.AddGe(hours, wp.dailyMin, tr.IsTrue())
			b.m.AddLe(hours, 0, tr.IsFalse())
			b.m.AddLe(hours, wp.dailyMax)
		}
	}
}

// dayHours is the duration-weighted sum of one worker's assignments on one
// date.
func (b *builtModel) dayHours(cfg *Config, wi, di int) cp.LinExpr {
	var e cp.LinExpr
	for bi, band := range cfg.Bands {
		e.Add(b.assign[wi][di][bi], band.Hours())
	}
	return e
}

// postPatterns encodes the per-day band arrangement rules. Contiguous workers
// get a transition count capped at two (one run). Everyone else gets the
// split rules: a thin band cannot be worked in isolation, and a one-band gap
// between two worked bands is closed by forcing the band in between.
func (b *builtModel) postPatterns(cfg *Config) {
	nb := len(cfg.Bands)
	for wi, wp := range b.pol {
		for di := range b.dates {
			row := b.assign[wi][di]
			if wp.pattern == model.PatternContiguous {
				trans := make([]cp.IntVar, 0, nb+1)
				for e := 0; e <= nb; e++ {
					t := b.m.NewBool(fmt.Sprintf("tr_w%d_d%d_e%d", wi, di, e))
					trans = append(trans, t)
					var rise cp.LinExpr
					rise.Add(t, 1)
					switch {
					case e == 0:
						rise.Add(row[0], -1)
						b.m.AddGe(rise, 0)
					case e == nb:
						rise.Add(row[nb-1], -1)
						b.m.AddGe(rise, 0)
					default:
						rise.Add(row[e], -1)
						rise.Add(row[e-1], 1)
						b.m.AddGe(rise, 0)
						var fall cp.LinExpr
						fall.Add(t, 1)
						fall.Add(row[e-1], -1)
						fall.Add(row[e], 1)
						b.m.AddGe(fall, 0)
					}
				}
				b.m.AddLe(cp.Sum(trans...), 2)
				continue
			}

			for bi, band := range cfg.Bands {
				if band.Hours() <= cfg.Policy.ThinBandMaxHours {
					var neighbors []cp.Lit
					if bi > 0 {
						neighbors = append(neighbors, row[bi-1].IsTrue())
					}
					if bi < nb-1 {
						neighbors = append(neighbors, row[bi+1].IsTrue())
					}
					if len(neighbors) > 0 {
						b.m.AddBoolOr(neighbors, row[bi].IsTrue())
					}
				}
			}
			for bi := 1; bi < nb-1; bi++ {
				b.m.AddBoolOr([]cp.Lit{row[bi].IsTrue()}, row[bi-1].IsTrue(), row[bi+1].IsTrue())
			}
		}
	}
}

// postSpecializations forces openers onto the first band and closers onto the
// last band on every day they work at all.
func (b *builtModel) postSpecializations(cfg *Config) {
	nb := len(cfg.Bands)
	for wi, wp := range b.pol {
		var bi int
		switch wp.worker.Specialization {
		case model.SpecOpener:
			bi = 0
		case model.SpecCloser:
			bi = nb - 1
		default:
			continue
		}
		for di := range b.dates {
			b.m.AddImplication(b.works[wi][di].IsTrue(), b.assign[wi][di][bi].IsTrue())
		}
	}
}

// postOpeningFloors posts the permanent-presence minimum. The relative policy
// floors opening-flagged bands at min(2, permanents available that day), so a
// thin roster relaxes the floor instead of going infeasible. The global
// policy is the hard two-permanents-everywhere rule.
func (b *builtModel) postOpeningFloors(cfg *Config) {
	global := cfg.Policy.Opening() == OpeningGlobal
	for di := range b.dates {
		var avail []int
		for wi, wp := range b.pol {
			if !wp.permanent() {
				continue
			}
			for bi := range cfg.Bands {
				if b.eligible[wi][di][bi] {
					avail = append(avail, wi)
					break
				}
			}
		}
		for bi, band := range cfg.Bands {
			if global {
				var perms cp.LinExpr
				for wi, wp := range b.pol {
					if wp.permanent() {
						perms.Add(b.assign[wi][di][bi], 1)
					}
				}
				b.m.AddGe(perms, 2)
				continue
			}
			if !band.Opening {
				continue
			}
			// The floor self-relaxes to the available pool. Under exact
			// coverage it is further capped by the band's demand, which
			// bounds the headcount the band may hold; minimum coverage
			// tolerates surplus, so the full floor applies there.
			floor := min(2, len(avail))
			if cfg.Policy.Coverage() == CoverageExact {
				floor = min(floor, b.days[di].Requirements[bi].Needed)
			}
			if floor == 0 {
				continue
			}
			var perms cp.LinExpr
			for _, wi := range avail {
				perms.Add(b.assign[wi][di][bi], 1)
			}
			b.m.AddGe(perms, floor)
		}
	}
}

// postWeekly posts per-chunk hour windows and the permanent rest rule (at
// least one pair of consecutive days off per complete week). It returns the
// weekly hour expressions per worker and chunk, plus the soft objective
// terms accumulated for overshoot.
func (b *builtModel) postWeekly(cfg *Config) (weekExprs [][]cp.LinExpr, softTerms cp.LinExpr) {
	chunks := model.WeekChunks(b.dates)
	weekExprs = make([][]cp.LinExpr, len(b.pol))
	for wi, wp := range b.pol {
		weekExprs[wi] = make([]cp.LinExpr, len(chunks))
		for ci, chunk := range chunks {
			var hours cp.LinExpr
			if ci == 0 {
				hours.Offset = wp.worker.CarriedHours
			}
			for dj := range chunk {
				di := ci*7 + dj
				hours.AddExpr(b.dayHours(cfg, wi, di), 1)
			}
			weekExprs[wi][ci] = hours
			if len(chunk) < 7 {
				continue
			}
			if wp.weekMax > 0 {
				b.m.AddLe(hours, wp.weekMax)
			}
			if wp.weekMin > 0 {
				b.m.AddGe(hours, wp.weekMin)
			}
			if wp.permanent() {
				if cfg.Policy.OvershootPenalty && cfg.Policy.PermanentWeekTolerance > 0 {
					o := b.m.NewInt(0, cfg.Policy.PermanentWeekTolerance,
						fmt.Sprintf("over_w%d_c%d", wi, ci))
					var oe cp.LinExpr
					oe.Add(o, 1)
					oe.AddExpr(hours, -1)
					b.m.AddGe(oe, -cfg.Policy.PermanentWeekTarget)
					softTerms.Add(o, 1)
				}

				doffs := make([]cp.IntVar, 0, 6)
				for dj := 0; dj < 6; dj++ {
					di := ci*7 + dj
					doff := b.m.NewBool(fmt.Sprintf("doff_w%d_d%d", wi, di))
					b.m.AddImplication(doff.IsTrue(), b.works[wi][di].IsFalse())
					b.m.AddImplication(doff.IsTrue(), b.works[wi][di+1].IsFalse())
					doffs = append(doffs, doff)
				}
				b.m.AddGe(cp.Sum(doffs...), 1)
			}
		}
	}
	return weekExprs, softTerms
}
