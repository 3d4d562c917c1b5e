package index

import (
	"github.com/bzczb/wut/cond"
	"github.com/bzczb/wut/plan"
)

// RangeIndex extends HashIndex with ordered range queries: `attr < literal`,
// `attr <= literal`, `attr > literal`, `attr >= literal`, in addition to the
// equality and membership predicates HashIndex already serves. It is the
// port of utwutwb.index.RangeIndex(HashIndex).
type RangeIndex struct {
	base
}

// NewRangeIndex builds a RangeIndex over params. A KeyObj-keyed RangeIndex
// must supply Params.Compare; KeyInt/KeyUint order numerically without one.
func NewRangeIndex(params Params) *RangeIndex {
	r := &RangeIndex{}
	r.base = newBase("RangeIndex", params, r.extractOne)
	return r
}

func (r *RangeIndex) extractOne(ctx Context, obj any) ([]any, error) {
	v, err := ctx.GetAttr(obj, r.params.Name)
	if err != nil {
		return nil, err
	}
	return []any{v}, nil
}

// Lookup returns the row-ids whose attribute equals value.
func (r *RangeIndex) Lookup(value any) RowSet {
	return r.lookup(value)
}

// RangeCompare exposes this index's own key ordering so the optimizer's
// CombineRanges rule can merge two Range bounds on this index correctly,
// including for a KeyObj index with a caller-supplied Params.Compare.
func (r *RangeIndex) RangeCompare() plan.CompareFunc {
	return plan.CompareFunc(r.params.compareFunc())
}

// Range returns the union of every bucket whose key falls within rng,
// evaluated against this index's own CompareFunc.
func (r *RangeIndex) Range(rng plan.Range) RowSet {
	lo, hi := 0, r.buckets.Len()
	if left, ok := rng.Left.Get(); ok {
		nv, err := normalize(r.params.KeyType, left.Value)
		if err != nil {
			return Empty
		}
		lo = r.buckets.boundIndex(nv, left.Inclusive, true)
	}
	if right, ok := rng.Right.Get(); ok {
		nv, err := normalize(r.params.KeyType, right.Value)
		if err != nil {
			return Empty
		}
		hi = r.buckets.boundIndex(nv, right.Inclusive, false)
	}
	buckets := r.buckets.Slice(lo, hi)
	if len(buckets) == 0 {
		return Empty
	}
	return Union(buckets...)
}

// Match serves equality, membership and ordered comparisons on this index's
// attribute. For `literal < attr` style conditions (attribute on the right)
// the comparison is inverted so the resulting Range always reads as bounds
// on the attribute's value.
func (r *RangeIndex) Match(condition cond.BinOp, operand cond.Condition) (plan.Plan, bool) {
	if !r.isOwnAttr(condition) {
		return nil, false
	}

	op := condition.Op
	attrOnRight := false
	if _, ok := condition.Right.(cond.Attribute); ok {
		attrOnRight = true
	}
	if attrOnRight {
		op = op.Inverse()
	}

	switch op {
	case cond.Eq:
		lit, ok := operand.(cond.Literal)
		if !ok {
			return nil, false
		}
		return plan.IndexLookup{Index: r, Value: lit.Value}, true
	case cond.In:
		// Only `attr IN [...]` (this index's attribute on the left, operand
		// the array on the right) is served here; `literal IN attr` puts the
		// collection-valued attribute on the right and is an InvertedIndex's
		// concern instead.
		if attrOnRight {
			return nil, false
		}
		arr, ok := operand.(cond.Array)
		if !ok {
			return nil, false
		}
		values := make([]plan.Plan, 0, len(arr.Items))
		for _, item := range arr.Items {
			lit, ok := item.(cond.Literal)
			if !ok {
				return nil, false
			}
			values = append(values, plan.IndexLookup{Index: r, Value: lit.Value})
		}
		return plan.Union(values...), true
	case cond.Lt, cond.Le, cond.Gt, cond.Ge:
		lit, ok := operand.(cond.Literal)
		if !ok {
			return nil, false
		}
		rng := rangeFromOp(op, lit.Value)
		return plan.IndexRange{Index: r, Range: rng}, true
	default:
		return nil, false
	}
}

// rangeFromOp builds the Range corresponding to `attr <op> value`.
func rangeFromOp(op cond.BinOpKind, value any) plan.Range {
	switch op {
	case cond.Lt:
		return plan.Range{Right: plan.NewBound(value, false)}
	case cond.Le:
		return plan.Range{Right: plan.NewBound(value, true)}
	case cond.Gt:
		return plan.Range{Left: plan.NewBound(value, false)}
	case cond.Ge:
		return plan.Range{Left: plan.NewBound(value, true)}
	default:
		return plan.Range{}
	}
}
