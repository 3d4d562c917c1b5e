package index

import (
	"testing"

	"github.com/bzczb/wut/cond"
	"github.com/bzczb/wut/plan"
)

func TestRangeIndexRangeQueries(t *testing.T) {
	ctx := rowContext{}
	r := NewRangeIndex(Params{Name: "x", KeyType: KeyInt})

	rows := []*row{
		{id: 1, x: int64(0)},
		{id: 2, x: int64(5)},
		{id: 3, x: int64(10)},
		{id: 4, x: int64(15)},
	}
	for _, row := range rows {
		if _, err := r.Add(row.id, ctx, row, nil); err != nil {
			t.Fatalf("Add(%d): %v", row.id, err)
		}
	}

	// 0 <= x < 10
	rng := plan.Range{Left: plan.NewBound(int64(0), true), Right: plan.NewBound(int64(10), false)}
	got := r.Range(rng)
	if got.Size() != 2 || !got.Contains(1) || !got.Contains(2) {
		t.Fatalf("Range[0,10) = %v, want {1,2}", got.ToSlice())
	}

	// x > 5
	rng = plan.Range{Left: plan.NewBound(int64(5), false)}
	got = r.Range(rng)
	if got.Size() != 2 || !got.Contains(3) || !got.Contains(4) {
		t.Fatalf("Range(5,) = %v, want {3,4}", got.ToSlice())
	}

	// x <= 5
	rng = plan.Range{Right: plan.NewBound(int64(5), true)}
	got = r.Range(rng)
	if got.Size() != 2 || !got.Contains(1) || !got.Contains(2) {
		t.Fatalf("Range(,5] = %v, want {1,2}", got.ToSlice())
	}
}

func TestRangeIndexMatchInvertsForAttrOnRight(t *testing.T) {
	r := NewRangeIndex(Params{Name: "x", KeyType: KeyInt})

	// literal < attr  ==  attr > literal
	c := cond.BinOp{Op: cond.Lt, Left: cond.Literal{Value: int64(5)}, Right: cond.Attribute{Name: "x"}}
	p, ok := r.Match(c, cond.Literal{Value: int64(5)})
	if !ok {
		t.Fatalf("Match(literal < attr) = false, want true")
	}
	ir, ok := p.(plan.IndexRange)
	if !ok {
		t.Fatalf("Match(literal < attr) did not produce an IndexRange: %T", p)
	}
	left, set := ir.Range.Left.Get()
	if !set || left.Value != int64(5) || left.Inclusive {
		t.Fatalf("Range.Left = %+v, set=%v, want (5, exclusive)", left, set)
	}
}

func TestRangeIndexMatchEqAndIn(t *testing.T) {
	r := NewRangeIndex(Params{Name: "x", KeyType: KeyInt})

	eqCond := cond.BinOp{Op: cond.Eq, Left: cond.Attribute{Name: "x"}, Right: cond.Literal{Value: int64(5)}}
	if _, ok := r.Match(eqCond, cond.Literal{Value: int64(5)}); !ok {
		t.Fatalf("Match(eq) = false, want true")
	}

	arr := cond.Array{Items: []cond.Condition{cond.Literal{Value: int64(1)}, cond.Literal{Value: int64(2)}}}
	inCond := cond.BinOp{Op: cond.In, Left: cond.Attribute{Name: "x"}, Right: arr}
	if _, ok := r.Match(inCond, arr); !ok {
		t.Fatalf("Match(in) = false, want true")
	}
}
