package index

import (
	"fmt"
	"reflect"

	"github.com/bzczb/wut/cond"
	"github.com/bzczb/wut/plan"
)

// InvertedIndex indexes a collection-valued attribute, storing one key per
// element of the collection rather than one key per object, so it can serve
// `literal IN attr` where attr is the collection-valued side. It is the
// port of utwutwb.index.InvertedIndex(HashIndex).
type InvertedIndex struct {
	base
}

// NewInvertedIndex builds an InvertedIndex over params. The attribute is
// expected to yield a Go slice, array or map (keys used as elements) value;
// each element becomes its own key.
func NewInvertedIndex(params Params) *InvertedIndex {
	inv := &InvertedIndex{}
	inv.base = newBase("InvertedIndex", params, inv.extractElems)
	return inv
}

func (inv *InvertedIndex) extractElems(ctx Context, obj any) ([]any, error) {
	v, err := ctx.GetAttr(obj, inv.params.Name)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return []any{nil}, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		n := rv.Len()
		out := make([]any, n)
		for i := 0; i < n; i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	case reflect.Map:
		keys := rv.MapKeys()
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = k.Interface()
		}
		return out, nil
	default:
		return nil, fmt.Errorf("index: attribute %q is not a collection (got %T)", inv.params.Name, v)
	}
}

// Lookup returns the row-ids whose collection attribute contains value.
func (inv *InvertedIndex) Lookup(value any) RowSet {
	return inv.lookup(value)
}

// Match serves `literal IN attr`, where attr is this index's collection
// attribute.
func (inv *InvertedIndex) Match(condition cond.BinOp, operand cond.Condition) (plan.Plan, bool) {
	if condition.Op != cond.In {
		return nil, false
	}
	attr, ok := condition.Right.(cond.Attribute)
	if !ok || attr.Name != inv.params.Name {
		return nil, false
	}
	lit, ok := operand.(cond.Literal)
	if !ok {
		return nil, false
	}
	return plan.IndexLookup{Index: inv, Value: lit.Value}, true
}
