package cp

import (
	"context"
	"errors"
	"time"
)

// Status classifies a solve outcome.
type Status int

const (
	// StatusUnknown means no solution was found before the deadline and
	// infeasibility was not proven.
	StatusUnknown Status = iota
	// StatusOptimal means the returned solution's objective is proven
	// minimal.
	StatusOptimal
	// StatusFeasible means a valid solution was found but the search was
	// cut off before proving optimality.
	StatusFeasible
	// StatusInfeasible means no assignment satisfies the constraints.
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// Solved reports whether the result carries a usable assignment.
func (s Status) Solved() bool { return s == StatusOptimal || s == StatusFeasible }

// Result carries the outcome of one search.
type Result struct {
	Status    Status
	Objective int
	Nodes     int64
	values    []int
}

// Value returns the solved value of v, or 0 when the result holds no
// solution.
func (r Result) Value(v IntVar) int {
	if r.values == nil {
		return 0
	}
	return r.values[v]
}

// BoolValue returns the solved value of a boolean variable.
func (r Result) BoolValue(v IntVar) bool { return r.Value(v) == 1 }

// Solver runs a deterministic depth-first branch-and-bound over a model.
// The search is single-threaded so identical models reproduce identical
// objectives; the context deadline is the only cancellation mechanism.
type Solver struct {
	// CheckInterval is the node count between deadline checks.
	CheckInterval int64
}

var (
	errDeadline = errors.New("cp: deadline reached")
	errDone     = errors.New("cp: search done")
)

type search struct {
	m  *Model
	lo []int
	hi []int

	trail []saved

	queue   []int32
	inQueue []bool

	ctx           context.Context
	deadline      time.Time
	hasDeadline   bool
	checkInterval int64
	nodes         int64

	objCons    *constraint
	objConsIdx int32

	best    []int
	bestObj int
	hasBest bool
}

type saved struct {
	v      int32
	lo, hi int
}

// Solve runs the search until optimality is proven, infeasibility is proven,
// or the context deadline expires. It never returns an error: the outcome is
// encoded in the result status.
func (s *Solver) Solve(ctx context.Context, m *Model) Result {
	if m.infeasible {
		return Result{Status: StatusInfeasible}
	}
	st := &search{
		m:             m,
		lo:            append([]int(nil), m.lo...),
		hi:            append([]int(nil), m.hi...),
		inQueue:       make([]bool, len(m.cons)+1),
		ctx:           ctx,
		checkInterval: s.CheckInterval,
		bestObj:       objBound(),
	}
	if st.checkInterval <= 0 {
		st.checkInterval = 512
	}
	if dl, ok := ctx.Deadline(); ok {
		st.deadline = dl
		st.hasDeadline = true
	}
	if m.hasObj {
		st.installObjective()
	}

	st.enqueueAll()
	if !st.propagate() {
		return Result{Status: StatusInfeasible, Nodes: st.nodes}
	}

	err := st.branch(0)

	res := Result{Nodes: st.nodes}
	switch {
	case err == nil || errors.Is(err, errDone):
		if st.hasBest {
			res.Status = StatusOptimal
		} else {
			res.Status = StatusInfeasible
		}
	default: // deadline
		if st.hasBest {
			res.Status = StatusFeasible
		} else {
			res.Status = StatusUnknown
		}
	}
	if st.hasBest {
		res.values = st.best
		res.Objective = st.bestObj
	}
	return res
}

// installObjective posts the branch-and-bound cap obj <= bestObj-1 as a
// regular constraint whose right-hand side tightens on every incumbent.
// Re-solving the same model reuses and resets the cap constraint.
func (st *search) installObjective() {
	m := st.m
	if m.objCons != nil {
		m.objCons.rhs = objBound()
		st.objCons = m.objCons
		st.objConsIdx = m.objConsIdx
		return
	}
	st.objCons = &constraint{terms: m.obj.Terms, op: opLE, rhs: objBound()}
	st.objConsIdx = int32(len(m.cons))
	m.cons = append(m.cons, st.objCons)
	m.objCons = st.objCons
	m.objConsIdx = st.objConsIdx
	seen := map[IntVar]bool{}
	for _, t := range st.objCons.terms {
		if !seen[t.Var] {
			seen[t.Var] = true
			m.watch[t.Var] = append(m.watch[t.Var], st.objConsIdx)
		}
	}
	if int(st.objConsIdx) >= len(st.inQueue) {
		st.inQueue = append(st.inQueue, false)
	}
}

func (st *search) enqueueAll() {
	for ci := range st.m.cons {
		st.enqueue(int32(ci))
	}
}

func (st *search) enqueue(ci int32) {
	if !st.inQueue[ci] {
		st.inQueue[ci] = true
		st.queue = append(st.queue, ci)
	}
}

func (st *search) enqueueWatchers(v int32) {
	for _, ci := range st.m.watch[v] {
		st.enqueue(ci)
	}
}

func (st *search) setLo(v IntVar, val int) bool {
	if val <= st.lo[v] {
		return true
	}
	if val > st.hi[v] {
		return false
	}
	st.trail = append(st.trail, saved{v: int32(v), lo: st.lo[v], hi: st.hi[v]})
	st.lo[v] = val
	st.enqueueWatchers(int32(v))
	return true
}

func (st *search) setHi(v IntVar, val int) bool {
	if val >= st.hi[v] {
		return true
	}
	if val < st.lo[v] {
		return false
	}
	st.trail = append(st.trail, saved{v: int32(v), lo: st.lo[v], hi: st.hi[v]})
	st.hi[v] = val
	st.enqueueWatchers(int32(v))
	return true
}

// litState returns +1 when the literal is entailed, -1 when falsified and 0
// while undecided.
func (st *search) litState(l Lit) int {
	lo, hi := st.lo[l.Var], st.hi[l.Var]
	if lo == hi {
		truth := lo == 1
		if l.Neg {
			truth = !truth
		}
		if truth {
			return 1
		}
		return -1
	}
	return 0
}

// falsify forces the literal to not hold.
func (st *search) falsify(l Lit) bool {
	if l.Neg {
		return st.setLo(l.Var, 1)
	}
	return st.setHi(l.Var, 0)
}

func (st *search) propagate() bool {
	for len(st.queue) > 0 {
		ci := st.queue[len(st.queue)-1]
		st.queue = st.queue[:len(st.queue)-1]
		st.inQueue[ci] = false
		if !st.propagateCons(st.m.cons[ci]) {
			for _, qi := range st.queue {
				st.inQueue[qi] = false
			}
			st.queue = st.queue[:0]
			return false
		}
	}
	return true
}

func (st *search) propagateCons(c *constraint) bool {
	undecided := -1
	undecCount := 0
	for i, l := range c.enf {
		switch st.litState(l) {
		case -1:
			return true // constraint inactive
		case 0:
			undecCount++
			undecided = i
		}
	}

	minSum, maxSum := 0, 0
	for _, t := range c.terms {
		if t.Coef >= 0 {
			minSum += t.Coef * st.lo[t.Var]
			maxSum += t.Coef * st.hi[t.Var]
		} else {
			minSum += t.Coef * st.hi[t.Var]
			maxSum += t.Coef * st.lo[t.Var]
		}
	}

	violated := false
	switch c.op {
	case opLE:
		violated = minSum > c.rhs
	case opGE:
		violated = maxSum < c.rhs
	case opEQ:
		violated = minSum > c.rhs || maxSum < c.rhs
	}

	if undecCount > 0 {
		// Not yet enforced: the only sound inference is to falsify the
		// last open enforcement literal once the body cannot hold.
		if violated && undecCount == 1 {
			return st.falsify(c.enf[undecided])
		}
		return true
	}
	if violated {
		return false
	}

	if c.op == opLE || c.op == opEQ {
		slack := c.rhs - minSum
		for _, t := range c.terms {
			if t.Coef > 0 {
				if !st.setHi(t.Var, st.lo[t.Var]+slack/t.Coef) {
					return false
				}
			} else if t.Coef < 0 {
				if !st.setLo(t.Var, st.hi[t.Var]-slack/(-t.Coef)) {
					return false
				}
			}
		}
	}
	if c.op == opGE || c.op == opEQ {
		surplus := maxSum - c.rhs
		for _, t := range c.terms {
			if t.Coef > 0 {
				if !st.setLo(t.Var, st.hi[t.Var]-surplus/t.Coef) {
					return false
				}
			} else if t.Coef < 0 {
				if !st.setHi(t.Var, st.lo[t.Var]+surplus/(-t.Coef)) {
					return false
				}
			}
		}
	}
	return true
}

func (st *search) mark() int { return len(st.trail) }

func (st *search) undo(mark int) {
	for i := len(st.trail) - 1; i >= mark; i-- {
		e := st.trail[i]
		st.lo[e.v] = e.lo
		st.hi[e.v] = e.hi
	}
	st.trail = st.trail[:mark]
	for _, qi := range st.queue {
		st.inQueue[qi] = false
	}
	st.queue = st.queue[:0]
}

func (st *search) outOfTime() bool {
	if st.nodes%st.checkInterval != 0 {
		return false
	}
	select {
	case <-st.ctx.Done():
		return true
	default:
	}
	return st.hasDeadline && !time.Now().Before(st.deadline)
}

// branch explores assignments for variables from index start on. Variables
// below start are already fixed and stay fixed in this subtree.
func (st *search) branch(start int) error {
	st.nodes++
	if st.outOfTime() {
		return errDeadline
	}

	v := -1
	for i := start; i < len(st.lo); i++ {
		if st.lo[i] < st.hi[i] {
			v = i
			break
		}
	}
	if v == -1 {
		return st.recordSolution()
	}

	lo, hi := st.lo[v], st.hi[v]
	for k := 0; k <= hi-lo; k++ {
		val := lo + k
		if st.m.highFirst[v] {
			val = hi - k
		}
		m := st.mark()
		ok := st.setLo(IntVar(v), val) && st.setHi(IntVar(v), val)
		if ok && st.objCons != nil {
			st.enqueue(st.objConsIdx)
		}
		if ok && st.propagate() {
			if err := st.branch(v); err != nil {
				st.undo(m)
				return err
			}
		}
		st.undo(m)
	}
	return nil
}

func (st *search) recordSolution() error {
	obj := 0
	if st.m.hasObj {
		obj = st.m.obj.Offset
		for _, t := range st.m.obj.Terms {
			obj += t.Coef * st.lo[t.Var]
		}
	}
	if !st.hasBest || obj < st.bestObj {
		st.best = append([]int(nil), st.lo...)
		st.bestObj = obj
		st.hasBest = true
	}
	if !st.m.hasObj {
		return errDone
	}
	// Tighten the cap so only strictly better solutions remain reachable.
	st.objCons.rhs = obj - 1 - st.m.obj.Offset
	return nil
}
