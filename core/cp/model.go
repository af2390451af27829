// Package cp implements a small constraint-programming core: boolean and
// bounded-integer variables, linear constraints with enforcement literals,
// and a deadline-bounded branch-and-bound search minimizing a single linear
// objective. Models are built per solve and discarded; nothing is shared
// between solves.
package cp

import "math"

// IntVar is a handle to a model variable. Booleans are integers with
// domain [0, 1].
type IntVar int32

// Lit is a boolean literal: the variable equals 1, or 0 when negated.
type Lit struct {
	Var IntVar
	Neg bool
}

// IsTrue returns the positive literal for v.
func (v IntVar) IsTrue() Lit { return Lit{Var: v} }

// IsFalse returns the negated literal for v.
func (v IntVar) IsFalse() Lit { return Lit{Var: v, Neg: true} }

// Not returns the opposite literal.
func (l Lit) Not() Lit { return Lit{Var: l.Var, Neg: !l.Neg} }

// Term is one weighted variable of a linear expression.
type Term struct {
	Var  IntVar
	Coef int
}

// LinExpr is a linear expression sum(Coef*Var) + Offset.
type LinExpr struct {
	Terms  []Term
	Offset int
}

// Add appends a weighted variable to the expression.
func (e *LinExpr) Add(v IntVar, coef int) {
	e.Terms = append(e.Terms, Term{Var: v, Coef: coef})
}

// AddExpr appends every term of o, scaled by coef, to the expression.
func (e *LinExpr) AddExpr(o LinExpr, coef int) {
	for _, t := range o.Terms {
		e.Terms = append(e.Terms, Term{Var: t.Var, Coef: t.Coef * coef})
	}
	e.Offset += o.Offset * coef
}

// Sum builds an unweighted sum over the given variables.
func Sum(vars ...IntVar) LinExpr {
	e := LinExpr{Terms: make([]Term, 0, len(vars))}
	for _, v := range vars {
		e.Add(v, 1)
	}
	return e
}

type cmpOp int

const (
	opLE cmpOp = iota
	opGE
	opEQ
)

// constraint is sum(terms) op rhs, active only while every enforcement
// literal holds.
type constraint struct {
	terms []Term
	op    cmpOp
	rhs   int
	enf   []Lit
}

// Model is a variable/constraint graph under construction.
type Model struct {
	lo, hi    []int
	names     []string
	highFirst []bool

	cons  []*constraint
	watch [][]int32

	obj    LinExpr
	hasObj bool

	objCons    *constraint
	objConsIdx int32

	// infeasible is set when a Fix contradicts a domain before search.
	infeasible bool
}

// NewModel returns an empty model.
func NewModel() *Model { return &Model{} }

// NewBool allocates a boolean variable.
func (m *Model) NewBool(name string) IntVar { return m.NewInt(0, 1, name) }

// NewInt allocates an integer variable with inclusive bounds [lo, hi].
func (m *Model) NewInt(lo, hi int, name string) IntVar {
	v := IntVar(len(m.lo))
	m.lo = append(m.lo, lo)
	m.hi = append(m.hi, hi)
	m.names = append(m.names, name)
	m.highFirst = append(m.highFirst, false)
	m.watch = append(m.watch, nil)
	if lo > hi {
		m.infeasible = true
	}
	return v
}

// BranchHighFirst makes the search try the largest domain value first when
// branching on v. The default is smallest first.
func (m *Model) BranchHighFirst(v IntVar) { m.highFirst[v] = true }

// Name returns the variable's name.
func (m *Model) Name(v IntVar) string { return m.names[v] }

// NumVars returns the number of allocated variables.
func (m *Model) NumVars() int { return len(m.lo) }

// NumConstraints returns the number of posted constraints.
func (m *Model) NumConstraints() int { return len(m.cons) }

// Fix pins a variable to a value before search.
func (m *Model) Fix(v IntVar, val int) {
	if val < m.lo[v] || val > m.hi[v] {
		m.infeasible = true
		return
	}
	m.lo[v], m.hi[v] = val, val
}

func (m *Model) post(e LinExpr, op cmpOp, rhs int, enf []Lit) {
	c := &constraint{terms: e.Terms, op: op, rhs: rhs - e.Offset, enf: enf}
	ci := int32(len(m.cons))
	m.cons = append(m.cons, c)
	seen := map[IntVar]bool{}
	for _, t := range c.terms {
		if !seen[t.Var] {
			seen[t.Var] = true
			m.watch[t.Var] = append(m.watch[t.Var], ci)
		}
	}
	for _, l := range c.enf {
		if !seen[l.Var] {
			seen[l.Var] = true
			m.watch[l.Var] = append(m.watch[l.Var], ci)
		}
	}
}

// AddLe posts e <= rhs, enforced only while every literal in enf holds.
func (m *Model) AddLe(e LinExpr, rhs int, enf ...Lit) { m.post(e, opLE, rhs, enf) }

// AddGe posts e >= rhs, enforced only while every literal in enf holds.
func (m *Model) AddGe(e LinExpr, rhs int, enf ...Lit) { m.post(e, opGE, rhs, enf) }

// AddEq posts e == rhs, enforced only while every literal in enf holds.
func (m *Model) AddEq(e LinExpr, rhs int, enf ...Lit) { m.post(e, opEQ, rhs, enf) }

// AddBoolOr posts that at least one literal holds, under enforcement enf.
func (m *Model) AddBoolOr(lits []Lit, enf ...Lit) {
	var e LinExpr
	for _, l := range lits {
		if l.Neg {
			e.Add(l.Var, -1)
			e.Offset++
		} else {
			e.Add(l.Var, 1)
		}
	}
	m.post(e, opGE, 1, enf)
}

// AddImplication posts a -> b.
func (m *Model) AddImplication(a, b Lit) {
	m.AddBoolOr([]Lit{b}, a)
}

// Minimize sets the linear objective. Only one objective is supported; a
// second call replaces the first.
func (m *Model) Minimize(e LinExpr) {
	m.obj = e
	m.hasObj = true
}

// objBound returns the largest objective value representable without the
// offset, used as the initial branch-and-bound cap.
func objBound() int { return math.MaxInt / 4 }
