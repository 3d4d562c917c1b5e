package index

import (
	"github.com/bzczb/wut/cond"
	"github.com/bzczb/wut/plan"
)

// HashIndex answers equality and membership predicates on a single scalar
// attribute: `attr = literal` and `attr IN (literal, ...)`. It is the direct
// port of utwutwb.index.HashIndex.
type HashIndex struct {
	base
}

// NewHashIndex builds a HashIndex over params, reading the attribute value
// directly off each object via ctx.GetAttr.
func NewHashIndex(params Params) *HashIndex {
	h := &HashIndex{}
	h.base = newBase("HashIndex", params, h.extractOne)
	return h
}

func (h *HashIndex) extractOne(ctx Context, obj any) ([]any, error) {
	v, err := ctx.GetAttr(obj, h.params.Name)
	if err != nil {
		return nil, err
	}
	return []any{v}, nil
}

// Lookup returns the row-ids whose attribute equals value.
func (h *HashIndex) Lookup(value any) RowSet {
	return h.lookup(value)
}

// Match reports whether this index can answer condition directly, returning
// the resulting Plan if so. It matches `attr = literal` and `attr IN
// array-of-literals` where attr is this index's attribute and operand is
// whichever side of the comparison is not the attribute.
func (h *HashIndex) Match(condition cond.BinOp, operand cond.Condition) (plan.Plan, bool) {
	if !h.isOwnAttr(condition) {
		return nil, false
	}
	switch condition.Op {
	case cond.Eq:
		lit, ok := operand.(cond.Literal)
		if !ok {
			return nil, false
		}
		return plan.IndexLookup{Index: h, Value: lit.Value}, true
	case cond.In:
		// Only `attr IN [...]` (this index's attribute on the left, operand
		// the array on the right) is served here; `literal IN attr` puts the
		// collection-valued attribute on the right and is an InvertedIndex's
		// concern instead.
		if _, ok := condition.Left.(cond.Attribute); !ok {
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
			values = append(values, plan.IndexLookup{Index: h, Value: lit.Value})
		}
		return plan.Union(values...), true
	default:
		return nil, false
	}
}
