package optimize

import (
	"testing"

	"github.com/bzczb/wut/cond"
	"github.com/bzczb/wut/plan"
)

// fakeIndex is a minimal plan.Index used to exercise UseIndex without
// depending on the concrete index package.
type fakeIndex struct {
	name string
}

func (f *fakeIndex) String() string { return "FakeIndex(" + f.name + ")" }

func (f *fakeIndex) Match(condition cond.BinOp, operand cond.Condition) (plan.Plan, bool) {
	attr, ok := condition.Left.(cond.Attribute)
	if !ok || attr.Name != f.name || condition.Op != cond.Eq {
		return nil, false
	}
	lit, ok := operand.(cond.Literal)
	if !ok {
		return nil, false
	}
	return plan.IndexLookup{Index: f, Value: lit.Value}, true
}

type fakeCtx struct {
	byName map[string][]plan.Index
}

func (c fakeCtx) Indexes(name string) []plan.Index { return c.byName[name] }

func TestMergeSetOpsFlattensSameKind(t *testing.T) {
	inner := plan.Intersect(plan.ScanFilter{Condition: cond.Literal{Value: true}})
	outer := plan.Intersect(inner, plan.ScanFilter{Condition: cond.Literal{Value: false}})

	got := MergeSetOps(outer, fakeCtx{})
	so, ok := got.(plan.SetOp)
	if !ok || len(so.Inputs) != 2 {
		t.Fatalf("MergeSetOps result = %#v, want a flat 2-input SetOp", got)
	}
}

func TestMergeSetOpsDoesNotMergeDifferentKinds(t *testing.T) {
	inner := plan.Union(plan.ScanFilter{Condition: cond.Literal{Value: true}})
	outer := plan.Intersect(inner, plan.ScanFilter{Condition: cond.Literal{Value: false}})

	got := MergeSetOps(outer, fakeCtx{})
	so, ok := got.(plan.SetOp)
	if !ok || len(so.Inputs) != 2 {
		t.Fatalf("MergeSetOps result = %#v, want 2 inputs (union kept nested)", got)
	}
	if _, ok := so.Inputs[0].(plan.SetOp); !ok {
		t.Fatalf("MergeSetOps flattened a different-kind SetOp")
	}
}

func TestUseIndexReplacesScanFilter(t *testing.T) {
	idx := &fakeIndex{name: "x"}
	ctx := fakeCtx{byName: map[string][]plan.Index{"x": {idx}}}

	sf := plan.ScanFilter{Condition: cond.BinOp{Op: cond.Eq, Left: cond.Attribute{Name: "x"}, Right: cond.Literal{Value: 1}}}
	got := UseIndex(sf, ctx)

	if _, ok := got.(plan.IndexLookup); !ok {
		t.Fatalf("UseIndex result = %#v, want plan.IndexLookup", got)
	}
}

func TestUseIndexLeavesUnmatchedScanFilter(t *testing.T) {
	ctx := fakeCtx{byName: map[string][]plan.Index{}}
	sf := plan.ScanFilter{Condition: cond.BinOp{Op: cond.Eq, Left: cond.Attribute{Name: "y"}, Right: cond.Literal{Value: 1}}}
	got := UseIndex(sf, ctx)
	if _, ok := got.(plan.ScanFilter); !ok {
		t.Fatalf("UseIndex result = %#v, want unchanged ScanFilter", got)
	}
}

func TestCombineRangesMergesSameIndex(t *testing.T) {
	idx := &fakeIndex{name: "x"}
	r1 := plan.IndexRange{Index: idx, Range: plan.Range{Left: plan.NewBound(int64(0), true)}}
	r2 := plan.IndexRange{Index: idx, Range: plan.Range{Right: plan.NewBound(int64(10), false)}}

	intersect := plan.Intersect(r1, r2)
	got := CombineRanges(intersect, fakeCtx{})

	ir, ok := got.(plan.IndexRange)
	if !ok {
		t.Fatalf("CombineRanges result = %#v, want a single IndexRange", got)
	}
	left, lok := ir.Range.Left.Get()
	right, rok := ir.Range.Right.Get()
	if !lok || !rok || left.Value != int64(0) || right.Value != int64(10) {
		t.Fatalf("CombineRanges range = %+v, want [0, 10)", ir.Range)
	}
}

func TestCombineRangesEmptyOnImpossibleRange(t *testing.T) {
	idx := &fakeIndex{name: "x"}
	r1 := plan.IndexRange{Index: idx, Range: plan.Range{Left: plan.NewBound(int64(10), true)}}
	r2 := plan.IndexRange{Index: idx, Range: plan.Range{Right: plan.NewBound(int64(5), false)}}

	got := CombineRanges(plan.Intersect(r1, r2), fakeCtx{})
	if _, ok := got.(plan.Empty); !ok {
		t.Fatalf("CombineRanges result = %#v, want Empty", got)
	}
}

func TestCombineFiltersMergesIntoSingleCondition(t *testing.T) {
	f1 := plan.ScanFilter{Condition: cond.Attr("x").Eq(1).Cond()}
	f2 := plan.ScanFilter{Condition: cond.Attr("y").Eq(2).Cond()}

	got := CombineFilters(plan.Intersect(f1, f2), fakeCtx{})
	sf, ok := got.(plan.ScanFilter)
	if !ok {
		t.Fatalf("CombineFilters result = %#v, want a single ScanFilter", got)
	}
	if _, ok := sf.Condition.(cond.BinOp); !ok {
		t.Fatalf("CombineFilters condition = %#v, want an AND BinOp", sf.Condition)
	}
}

func TestCombineFiltersKeepsNonFilterInputAsBase(t *testing.T) {
	idx := &fakeIndex{name: "x"}
	lookup := plan.IndexLookup{Index: idx, Value: 1}
	f1 := plan.ScanFilter{Condition: cond.Attr("y").Eq(2).Cond()}

	got := CombineFilters(plan.Intersect(lookup, f1), fakeCtx{})
	filter, ok := got.(plan.Filter)
	if !ok {
		t.Fatalf("CombineFilters result = %#v, want a Filter wrapping the lookup", got)
	}
	if filter.Input != plan.Plan(lookup) {
		t.Fatalf("CombineFilters base = %#v, want the IndexLookup", filter.Input)
	}
}

func TestDefaultChainLowersAndUsesIndex(t *testing.T) {
	idx := &fakeIndex{name: "x"}
	ctx := fakeCtx{byName: map[string][]plan.Index{"x": {idx}}}

	p := plan.Intersect(
		plan.ScanFilter{Condition: cond.Attr("x").Eq(1).Cond()},
		plan.ScanFilter{Condition: cond.Attr("z").Eq(2).Cond()},
	)
	chain := NewChain()
	got := chain.Run(p, ctx)

	filter, ok := got.(plan.Filter)
	if !ok {
		t.Fatalf("chain result = %#v, want a Filter (index lookup + remaining scan)", got)
	}
	if _, ok := filter.Input.(plan.IndexLookup); !ok {
		t.Fatalf("chain result base = %#v, want the IndexLookup", filter.Input)
	}
}
