package plan

import (
	"strings"
	"testing"

	"github.com/bzczb/wut/cond"
)

type fakeIndex string

func (f fakeIndex) String() string { return string(f) }
func (f fakeIndex) Match(cond.BinOp, cond.Condition) (Plan, bool) { return nil, false }

func TestPlannerLowersAndOr(t *testing.T) {
	p := NewPlanner()

	a := cond.Attribute{Name: "a"}
	eq0 := cond.BinOp{Op: cond.Eq, Left: a, Right: cond.Literal{Value: 0}}
	b := cond.Attribute{Name: "b"}
	eq1 := cond.BinOp{Op: cond.Eq, Left: b, Right: cond.Literal{Value: 1}}

	got := p.Plan(cond.BinOp{Op: cond.And, Left: eq0, Right: eq1})
	so, ok := got.(SetOp)
	if !ok || so.Kind != KindIntersect {
		t.Fatalf("expected Intersect, got %#v", got)
	}
	if len(so.Inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %d", len(so.Inputs))
	}

	got = p.Plan(cond.BinOp{Op: cond.Or, Left: eq0, Right: eq1})
	so, ok = got.(SetOp)
	if !ok || so.Kind != KindUnion {
		t.Fatalf("expected Union, got %#v", got)
	}
}

func TestPlannerDoesNotLowerNotToDifference(t *testing.T) {
	p := NewPlanner()
	a := cond.Attribute{Name: "a"}
	notEq := cond.UnaryOp{Op: cond.Not, Operand: cond.BinOp{Op: cond.Eq, Left: a, Right: cond.Literal{Value: 0}}}

	got := p.Plan(notEq)
	sf, ok := got.(ScanFilter)
	if !ok {
		t.Fatalf("expected ScanFilter for NOT, got %#v", got)
	}
	if sf.Condition.String() != "NOT a = 0" {
		t.Fatalf("unexpected condition string: %s", sf.Condition)
	}
}

func TestPlanStringFormat(t *testing.T) {
	p := Intersect(
		IndexLookup{Index: fakeIndex("HashIndex(a)"), Value: 1},
		IndexRange{
			Index: fakeIndex("RangeIndex(b)"),
			Range: Range{Left: NewBound(0, true), Right: NewBound(10, false)},
		},
	)
	want := "Intersect\n  - IndexLookup: HashIndex(a) = 1\n  - IndexRange: 0 <= RangeIndex(b) < 10"
	if got := Render(p); got != want {
		t.Fatalf("plan string mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestTransformIsBottomUp(t *testing.T) {
	var order []string
	p := Intersect(
		ScanFilter{Condition: cond.Literal{Value: true}},
		Union(ScanFilter{Condition: cond.Literal{Value: false}}),
	)

	Transform(p, func(n Plan) Plan {
		s := n.String()
		if len(s) > 3 {
			s = s[:3]
		}
		order = append(order, s)
		return n
	})

	// children are visited (and thus recorded) before their SetOp parents.
	if !strings.HasPrefix(order[len(order)-1], "Int") {
		t.Fatalf("expected outermost Intersect to be transformed last, order=%v", order)
	}
}
