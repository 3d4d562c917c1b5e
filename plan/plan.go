// Package plan implements the plan IR: a tagged tree of plan nodes produced
// by lowering a cond.Condition (the Planner) and rewritten by the optimize
// package before being interpreted by the executor.
package plan

import (
	"strings"

	"github.com/bzczb/wut/cond"
)

// Index is the view of an index the plan IR needs: something it can render
// in a plan string and ask to serve a binary condition. The index package's
// concrete index types implement this; plan itself has no notion of hash
// tables, ordered maps or row-id sets.
type Index interface {
	// String renders the index for plan-string output, e.g. "HashIndex(a)".
	String() string
	// Match determines whether this index can serve condition, given which
	// side of the binary operator is not the attribute. It returns (nil,
	// false) if it cannot.
	Match(condition cond.BinOp, operand cond.Condition) (Plan, bool)
}

// Transformer rewrites a single plan node. Plan.Transform applies it
// bottom-up: children are transformed first, then the (possibly already
// rewritten) node itself is passed to the transformer.
type Transformer func(Plan) Plan

// Plan is the sealed interface implemented by every plan node.
type Plan interface {
	// String renders the plan using the deterministic, indented format
	// described in spec.md §6 ("Plan string format").
	String() string

	// transformInputs rewrites this node's children in place by recursing
	// Transform into them. Leaf nodes are no-ops.
	transformInputs(t Transformer) Plan
}

// Transform recursively rewrites p bottom-up: children are transformed
// first via transformInputs, then t is applied to the (possibly new) node
// produced from that rewrite.
func Transform(p Plan, t Transformer) Plan {
	p = p.transformInputs(t)
	return t(p)
}

func indent(depth int) string { return strings.Repeat("  ", depth) }

// depthStringer is implemented by plan nodes with children (Filter, SetOp),
// which render at a given indentation depth; leaf nodes do not implement it.
type depthStringer interface {
	stringAtDepth(depth int) string
}

// stringRoot renders the root of a plan tree.
func stringRoot(p Plan) string {
	if ds, ok := p.(depthStringer); ok {
		return ds.stringAtDepth(0)
	}
	return p.String()
}

// Render renders a plan tree using the deterministic plan-string format.
func Render(p Plan) string { return stringRoot(p) }

// Empty always yields an empty result set.
type Empty struct{}

func (Empty) String() string                         { return "Empty" }
func (e Empty) transformInputs(Transformer) Plan      { return e }

// ScanFilter iterates every row-id in the collection, keeping those that
// satisfy Condition.
type ScanFilter struct {
	Condition cond.Condition
}

func (s ScanFilter) String() string                    { return "ScanFilter: " + s.Condition.String() }
func (s ScanFilter) transformInputs(Transformer) Plan   { return s }

// Filter evaluates Input, then keeps results satisfying Condition.
type Filter struct {
	Condition cond.Condition
	Input     Plan
}

func (f Filter) String() string { return f.stringAtDepth(0) }

func (f Filter) stringAtDepth(depth int) string {
	inputStr := f.Input.String()
	if ds, ok := f.Input.(depthStringer); ok {
		inputStr = ds.stringAtDepth(depth + 1)
	}
	return "Filter: " + f.Condition.String() + "\n" + indent(depth+1) + "- " + inputStr
}

func (f Filter) transformInputs(t Transformer) Plan {
	f.Input = Transform(f.Input, t)
	return f
}

// SetOpKind distinguishes the n-ary set operations.
type SetOpKind int

const (
	KindIntersect SetOpKind = iota
	KindUnion
	KindDifference
)

func (k SetOpKind) String() string {
	switch k {
	case KindIntersect:
		return "Intersect"
	case KindUnion:
		return "Union"
	case KindDifference:
		return "Difference"
	default:
		return "SetOp"
	}
}

// SetOp is the shared shape of Intersect, Union and Difference: an n-ary set
// operation over child plans. The three constructors below are the only
// supported Kind values; Kind is exported so the optimizer can group and
// compare operation types structurally (MergeSetOps splices same-kind
// children into their parent).
type SetOp struct {
	Kind   SetOpKind
	Inputs []Plan
}

func Intersect(inputs ...Plan) SetOp  { return SetOp{Kind: KindIntersect, Inputs: inputs} }
func Union(inputs ...Plan) SetOp      { return SetOp{Kind: KindUnion, Inputs: inputs} }
func Difference(inputs ...Plan) SetOp { return SetOp{Kind: KindDifference, Inputs: inputs} }

func (s SetOp) String() string { return s.stringAtDepth(0) }

func (s SetOp) stringAtDepth(depth int) string {
	var b strings.Builder
	b.WriteString(s.Kind.String())
	for _, in := range s.Inputs {
		childStr := in.String()
		if ds, ok := in.(depthStringer); ok {
			childStr = ds.stringAtDepth(depth + 1)
		}
		b.WriteString("\n")
		b.WriteString(indent(depth + 1))
		b.WriteString("- ")
		b.WriteString(childStr)
	}
	return b.String()
}

func (s SetOp) transformInputs(t Transformer) Plan {
	newInputs := make([]Plan, len(s.Inputs))
	for i, in := range s.Inputs {
		newInputs[i] = Transform(in, t)
	}
	s.Inputs = newInputs
	return s
}

// IndexLookup returns objects found by an equality probe into Index.
type IndexLookup struct {
	Index Index
	Value any
}

func (l IndexLookup) String() string {
	return "IndexLookup: " + l.Index.String() + " = " + cond.Literal{Value: l.Value}.String()
}
func (l IndexLookup) transformInputs(Transformer) Plan { return l }

// IndexRange returns objects found by an ordered range scan into Index.
type IndexRange struct {
	Index Index
	Range Range
}

func (r IndexRange) String() string {
	left, hasLeft := r.Range.Left.Get()
	right, hasRight := r.Range.Right.Get()
	switch {
	case !hasLeft && hasRight:
		return "IndexRange: " + r.Index.String() + " " + right.Symbol() + " " + cond.Literal{Value: right.Value}.String()
	case hasLeft && !hasRight:
		return "IndexRange: " + cond.Literal{Value: left.Value}.String() + " " + left.Symbol() + " " + r.Index.String()
	case hasLeft && hasRight:
		return "IndexRange: " + cond.Literal{Value: left.Value}.String() + " " + left.Symbol() + " " +
			r.Index.String() + " " + right.Symbol() + " " + cond.Literal{Value: right.Value}.String()
	default:
		return "IndexRange: " + r.Index.String()
	}
}
func (r IndexRange) transformInputs(Transformer) Plan { return r }
