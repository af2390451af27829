package cp

import (
	"context"
	"testing"
	"time"
)

func solve(t *testing.T, m *Model) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var s Solver
	return s.Solve(ctx, m)
}

func TestSatisfyLinearEquality(t *testing.T) {
	m := NewModel()
	a := m.NewBool("a")
	b := m.NewBool("b")
	c := m.NewBool("c")
	m.AddEq(Sum(a, b, c), 2)
	m.Fix(a, 0)

	res := solve(t, m)
	if !res.Status.Solved() {
		t.Fatalf("status %v", res.Status)
	}
	if res.Value(a) != 0 || res.Value(b) != 1 || res.Value(c) != 1 {
		t.Fatalf("got a=%d b=%d c=%d", res.Value(a), res.Value(b), res.Value(c))
	}
}

func TestInfeasible(t *testing.T) {
	m := NewModel()
	a := m.NewBool("a")
	b := m.NewBool("b")
	m.AddGe(Sum(a, b), 3)
	res := solve(t, m)
	if res.Status != StatusInfeasible {
		t.Fatalf("expected infeasible got %v", res.Status)
	}
}

func TestFixConflict(t *testing.T) {
	m := NewModel()
	a := m.NewBool("a")
	m.Fix(a, 2)
	res := solve(t, m)
	if res.Status != StatusInfeasible {
		t.Fatalf("expected infeasible got %v", res.Status)
	}
}

func TestImplicationChain(t *testing.T) {
	m := NewModel()
	a := m.NewBool("a")
	b := m.NewBool("b")
	c := m.NewBool("c")
	m.AddImplication(a.IsTrue(), b.IsTrue())
	m.AddImplication(b.IsTrue(), c.IsTrue())
	m.Fix(a, 1)
	m.Fix(c, 0)
	res := solve(t, m)
	if res.Status != StatusInfeasible {
		t.Fatalf("expected infeasible got %v", res.Status)
	}
}

func TestBoolOrUnderEnforcement(t *testing.T) {
	m := NewModel()
	thin := m.NewBool("thin")
	left := m.NewBool("left")
	right := m.NewBool("right")
	m.AddBoolOr([]Lit{left.IsTrue(), right.IsTrue()}, thin.IsTrue())
	m.Fix(thin, 1)
	m.Fix(left, 0)
	res := solve(t, m)
	if !res.Status.Solved() {
		t.Fatalf("status %v", res.Status)
	}
	if res.Value(right) != 1 {
		t.Fatalf("expected right forced true")
	}
}

func TestReifiedWorksToday(t *testing.T) {
	// hours == 0 iff the indicator is false; hours >= 4 when it is true.
	m := NewModel()
	x1 := m.NewBool("x1") // 3 hours
	x2 := m.NewBool("x2") // 2 hours
	tr := m.NewBool("tr")
	var hours LinExpr
	hours.Add(x1, 3)
	hours.Add(x2, 2)
	m.AddGe(hours, 4, tr.IsTrue())
	m.AddLe(hours, 0, tr.IsFalse())

	m.Fix(x1, 1)
	m.Fix(x2, 0)
	res := solve(t, m)
	// 3 hours worked: the indicator must be true, which violates the
	// 4-hour daily minimum.
	if res.Status != StatusInfeasible {
		t.Fatalf("expected infeasible got %v", res.Status)
	}

	m2 := NewModel()
	y1 := m2.NewBool("y1")
	y2 := m2.NewBool("y2")
	tr2 := m2.NewBool("tr")
	var h2 LinExpr
	h2.Add(y1, 3)
	h2.Add(y2, 2)
	m2.AddGe(h2, 4, tr2.IsTrue())
	m2.AddLe(h2, 0, tr2.IsFalse())
	m2.Fix(y1, 1)
	m2.Fix(y2, 1)
	res = solve(t, m2)
	if !res.Status.Solved() {
		t.Fatalf("status %v", res.Status)
	}
	if res.Value(tr2) != 1 {
		t.Fatalf("indicator not derived from worked hours")
	}
}

func TestMinimizeProvesOptimal(t *testing.T) {
	m := NewModel()
	short := m.NewInt(0, 10, "short")
	a := m.NewBool("a")
	b := m.NewBool("b")
	var cover LinExpr
	cover.Add(a, 1)
	cover.Add(b, 1)
	cover.Add(short, 1)
	m.AddEq(cover, 2)

	var obj LinExpr
	obj.Add(short, 1000)
	obj.Add(a, 1)
	obj.Add(b, 1)
	m.Minimize(obj)

	res := solve(t, m)
	if res.Status != StatusOptimal {
		t.Fatalf("expected optimal got %v", res.Status)
	}
	if res.Value(short) != 0 {
		t.Fatalf("shortfall should be driven to zero, got %d", res.Value(short))
	}
	if res.Objective != 2 {
		t.Fatalf("objective %d want 2", res.Objective)
	}
}

func TestMinimizePrefersCheaper(t *testing.T) {
	m := NewModel()
	a := m.NewBool("a")
	b := m.NewBool("b")
	m.AddGe(Sum(a, b), 1)
	var obj LinExpr
	obj.Add(a, 5)
	obj.Add(b, 2)
	m.Minimize(obj)
	res := solve(t, m)
	if res.Status != StatusOptimal {
		t.Fatalf("status %v", res.Status)
	}
	if res.Value(a) != 0 || res.Value(b) != 1 {
		t.Fatalf("expected the cheap literal, got a=%d b=%d", res.Value(a), res.Value(b))
	}
}

func TestResolveSameModelReproducesObjective(t *testing.T) {
	m := NewModel()
	vars := make([]IntVar, 6)
	for i := range vars {
		vars[i] = m.NewBool("v")
	}
	m.AddGe(Sum(vars...), 3)
	var obj LinExpr
	for i, v := range vars {
		obj.Add(v, i+1)
	}
	m.Minimize(obj)

	first := solve(t, m)
	second := solve(t, m)
	if first.Status != StatusOptimal || second.Status != StatusOptimal {
		t.Fatalf("statuses %v %v", first.Status, second.Status)
	}
	if first.Objective != second.Objective {
		t.Fatalf("objective not reproducible: %d vs %d", first.Objective, second.Objective)
	}
	if first.Objective != 6 { // 1+2+3
		t.Fatalf("objective %d want 6", first.Objective)
	}
}

func TestDeadlineReturnsUnknown(t *testing.T) {
	m := NewModel()
	// A model large enough that an expired deadline halts before any leaf.
	vars := make([]IntVar, 64)
	for i := range vars {
		vars[i] = m.NewBool("v")
	}
	m.AddGe(Sum(vars...), 32)
	var obj LinExpr
	for _, v := range vars {
		obj.Add(v, 1)
	}
	m.Minimize(obj)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := Solver{CheckInterval: 1}
	res := s.Solve(ctx, m)
	if res.Status != StatusUnknown {
		t.Fatalf("expected unknown on expired context, got %v", res.Status)
	}
}

func TestBranchHighFirstChangesValueOrder(t *testing.T) {
	m := NewModel()
	a := m.NewBool("a")
	b := m.NewBool("b")
	m.BranchHighFirst(a)
	m.AddLe(Sum(a, b), 1)
	res := solve(t, m)
	if !res.Status.Solved() {
		t.Fatalf("status %v", res.Status)
	}
	// Without an objective the first solution wins: a explored high first.
	if res.Value(a) != 1 || res.Value(b) != 0 {
		t.Fatalf("got a=%d b=%d", res.Value(a), res.Value(b))
	}
}

func TestIntBoundsPropagation(t *testing.T) {
	m := NewModel()
	x := m.NewInt(0, 10, "x")
	y := m.NewInt(0, 10, "y")
	var e LinExpr
	e.Add(x, 2)
	e.Add(y, 3)
	m.AddLe(e, 7)
	m.AddGe(Sum(x), 2)
	res := solve(t, m)
	if !res.Status.Solved() {
		t.Fatalf("status %v", res.Status)
	}
	if 2*res.Value(x)+3*res.Value(y) > 7 || res.Value(x) < 2 {
		t.Fatalf("solution violates bounds: x=%d y=%d", res.Value(x), res.Value(y))
	}
}

func TestValueOnUnsolvedResult(t *testing.T) {
	m := NewModel()
	a := m.NewBool("a")
	m.AddGe(Sum(a), 2)
	res := solve(t, m)
	if res.Status != StatusInfeasible {
		t.Fatalf("status %v", res.Status)
	}
	if res.Value(a) != 0 || res.BoolValue(a) {
		t.Fatalf("unsolved result must return zero values")
	}
}
