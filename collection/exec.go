package collection

import (
	"math"
	"reflect"

	"github.com/bzczb/wut/cond"
	"github.com/bzczb/wut/index"
	"github.com/bzczb/wut/plan"
	"github.com/bzczb/wut/werr"
)

// execute interprets an optimized plan tree against this collection's
// indexes, dispatching per spec.md §4.6.
func (c *Collection[T]) execute(p plan.Plan) (index.RowSet, error) {
	switch n := p.(type) {
	case plan.Empty:
		return index.Empty, nil
	case plan.IndexLookup:
		l, ok := n.Index.(index.Lookupable)
		if !ok {
			return index.Empty, werr.New(werr.Internal, "index %s does not support lookup", n.Index)
		}
		return l.Lookup(n.Value), nil
	case plan.IndexRange:
		r, ok := n.Index.(index.Rangeable)
		if !ok {
			return index.Empty, werr.New(werr.Internal, "index %s does not support range queries", n.Index)
		}
		return r.Range(n.Range), nil
	case plan.SetOp:
		return c.executeSetOp(n)
	case plan.ScanFilter:
		return c.scanFilter(n.Condition)
	case plan.Filter:
		input, err := c.execute(n.Input)
		if err != nil {
			return index.Empty, err
		}
		return c.filterRowSet(input, n.Condition)
	default:
		return index.Empty, werr.New(werr.UnsupportedPlan, "executor: unsupported plan node %T", p)
	}
}

func (c *Collection[T]) executeSetOp(n plan.SetOp) (index.RowSet, error) {
	results := make([]index.RowSet, 0, len(n.Inputs))
	for _, in := range n.Inputs {
		r, err := c.execute(in)
		if err != nil {
			return index.Empty, err
		}
		if n.Kind == plan.KindIntersect && r.IsEmpty() {
			return index.Empty, nil
		}
		results = append(results, r)
	}
	switch n.Kind {
	case plan.KindIntersect:
		return index.Intersect(results...), nil
	case plan.KindUnion:
		return index.Union(results...), nil
	case plan.KindDifference:
		if len(results) == 0 {
			return index.Empty, nil
		}
		return index.Difference(results[0], results[1:]...), nil
	default:
		return index.Empty, werr.New(werr.UnsupportedPlan, "executor: unsupported set op kind %v", n.Kind)
	}
}

func (c *Collection[T]) scanFilter(condition cond.Condition) (index.RowSet, error) {
	result := index.Empty
	for _, pk := range c.sortedPKs() {
		ok, err := c.matchBool(condition, c.boxes[pk])
		if err != nil {
			return index.Empty, err
		}
		if ok {
			result = result.Add(pk)
		}
	}
	return result, nil
}

func (c *Collection[T]) filterRowSet(input index.RowSet, condition cond.Condition) (index.RowSet, error) {
	result := index.Empty
	var outerErr error
	input.Iterate(func(pk int64) bool {
		ok, err := c.matchBool(condition, c.boxes[pk])
		if err != nil {
			outerErr = err
			return false
		}
		if ok {
			result = result.Add(pk)
		}
		return true
	})
	if outerErr != nil {
		return index.Empty, outerErr
	}
	return result, nil
}

func (c *Collection[T]) matchBool(condition cond.Condition, b *box[T]) (bool, error) {
	v, err := c.match(condition, b)
	if err != nil {
		return false, err
	}
	truthy, ok := v.(bool)
	if !ok {
		return false, werr.New(werr.PredicateType, "predicate did not evaluate to a boolean: %v (%T)", v, v)
	}
	return truthy, nil
}

// match interprets condition against b, per spec.md §4.6.
func (c *Collection[T]) match(condition cond.Condition, b *box[T]) (any, error) {
	switch n := condition.(type) {
	case cond.Literal:
		return n.Value, nil
	case cond.Attribute:
		return c.attrValue(n.Name, b)
	case cond.Array:
		items := make([]any, len(n.Items))
		for i, it := range n.Items {
			v, err := c.match(it, b)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	case cond.UnaryOp:
		return c.matchUnary(n, b)
	case cond.BinOp:
		return c.matchBinOp(n, b)
	default:
		return nil, werr.New(werr.UnsupportedCondition, "executor: unsupported condition node %T", condition)
	}
}

// attrValue resolves an attribute reference, reading from the memorised
// index value instead of the object when name is the key of a memorising
// index (spec.md §4.6). An inverted index's memorised collection is always
// returned as a []any, whatever its length; for other indexes a single-key
// memorised value unwraps to the scalar.
func (c *Collection[T]) attrValue(name string, b *box[T]) (any, error) {
	if pos, ok := c.memPos[name]; ok {
		keys := b.indexMem[pos]
		if _, inverted := c.indexes[c.memIndexPos[pos]].(*index.InvertedIndex); inverted {
			return keys, nil
		}
		switch len(keys) {
		case 0:
			return nil, nil
		case 1:
			return keys[0], nil
		default:
			return keys, nil
		}
	}
	return c.getAttr(b.obj, name)
}

func (c *Collection[T]) matchUnary(n cond.UnaryOp, b *box[T]) (any, error) {
	v, err := c.match(n.Operand, b)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case cond.Not:
		bv, ok := v.(bool)
		if !ok {
			return nil, werr.New(werr.PredicateType, "NOT operand is not boolean: %v (%T)", v, v)
		}
		return !bv, nil
	case cond.Invert:
		iv, ok := toInt(v)
		if !ok {
			return nil, werr.New(werr.PredicateType, "~ operand is not an integer: %v (%T)", v, v)
		}
		return ^iv, nil
	default:
		return nil, werr.New(werr.UnsupportedCondition, "executor: unsupported unary operator %s", n.Op)
	}
}

func (c *Collection[T]) matchBinOp(n cond.BinOp, b *box[T]) (any, error) {
	switch n.Op {
	case cond.And:
		return c.matchLogical(n, b, true)
	case cond.Or:
		return c.matchLogical(n, b, false)
	}

	left, err := c.match(n.Left, b)
	if err != nil {
		return nil, err
	}
	right, err := c.match(n.Right, b)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case cond.Eq, cond.Is:
		return valuesEqual(left, right), nil
	case cond.Ne:
		return !valuesEqual(left, right), nil
	case cond.Lt, cond.Le, cond.Gt, cond.Ge:
		return compareValues(n.Op, left, right)
	case cond.In:
		return membershipTest(left, right)
	default:
		return arithmetic(n.Op, left, right)
	}
}

func (c *Collection[T]) matchLogical(n cond.BinOp, b *box[T], isAnd bool) (any, error) {
	left, err := c.match(n.Left, b)
	if err != nil {
		return nil, err
	}
	lb, ok := left.(bool)
	if !ok {
		return nil, werr.New(werr.PredicateType, "left operand of %s is not boolean: %v (%T)", n.Op, left, left)
	}
	if isAnd && !lb {
		return false, nil
	}
	if !isAnd && lb {
		return true, nil
	}
	right, err := c.match(n.Right, b)
	if err != nil {
		return nil, err
	}
	rb, ok := right.(bool)
	if !ok {
		return nil, werr.New(werr.PredicateType, "right operand of %s is not boolean: %v (%T)", n.Op, right, right)
	}
	return rb, nil
}

// membershipTest implements `IN`: needle may be a literal, haystack either a
// matched Array ([]any) or a raw collection-valued attribute.
func membershipTest(needle, haystack any) (any, error) {
	if items, ok := haystack.([]any); ok {
		for _, it := range items {
			if valuesEqual(needle, it) {
				return true, nil
			}
		}
		return false, nil
	}
	rv := reflect.ValueOf(haystack)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if valuesEqual(needle, rv.Index(i).Interface()) {
				return true, nil
			}
		}
		return false, nil
	case reflect.Map:
		for _, k := range rv.MapKeys() {
			if valuesEqual(needle, k.Interface()) {
				return true, nil
			}
		}
		return false, nil
	default:
		return nil, werr.New(werr.PredicateType, "IN operand is not a collection: %v (%T)", haystack, haystack)
	}
}

func valuesEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	return reflect.DeepEqual(a, b)
}

func compareValues(op cond.BinOpKind, left, right any) (any, error) {
	if lf, lok := toFloat(left); lok {
		if rf, rok := toFloat(right); rok {
			return compareOrdered(op, lf, rf), nil
		}
	}
	if ls, lok := left.(string); lok {
		if rs, rok := right.(string); rok {
			return compareOrdered(op, ls, rs), nil
		}
	}
	return nil, werr.New(werr.PredicateType, "cannot compare %v (%T) and %v (%T)", left, left, right, right)
}

func compareOrdered[V int | float64 | string](op cond.BinOpKind, l, r V) bool {
	switch op {
	case cond.Lt:
		return l < r
	case cond.Le:
		return l <= r
	case cond.Gt:
		return l > r
	case cond.Ge:
		return l >= r
	default:
		return false
	}
}

func arithmetic(op cond.BinOpKind, left, right any) (any, error) {
	switch op {
	case cond.BitAnd, cond.BitOr, cond.Xor, cond.Lshift, cond.Rshift:
		li, lok := toInt(left)
		ri, rok := toInt(right)
		if !lok || !rok {
			return nil, werr.New(werr.PredicateType,
				"operator %s requires integer operands, got %v (%T) and %v (%T)", op, left, left, right, right)
		}
		switch op {
		case cond.BitAnd:
			return li & ri, nil
		case cond.BitOr:
			return li | ri, nil
		case cond.Xor:
			return li ^ ri, nil
		case cond.Lshift:
			return li << uint(ri), nil
		default:
			return li >> uint(ri), nil
		}
	}

	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if !lok || !rok {
		return nil, werr.New(werr.PredicateType,
			"operator %s requires numeric operands, got %v (%T) and %v (%T)", op, left, left, right, right)
	}
	li, lIsInt := toInt(left)
	ri, rIsInt := toInt(right)
	bothInt := lIsInt && rIsInt

	switch op {
	case cond.Add:
		if bothInt {
			return li + ri, nil
		}
		return lf + rf, nil
	case cond.Sub:
		if bothInt {
			return li - ri, nil
		}
		return lf - rf, nil
	case cond.Mul:
		if bothInt {
			return li * ri, nil
		}
		return lf * rf, nil
	case cond.Div:
		return lf / rf, nil
	case cond.FloorDiv:
		return math.Floor(lf / rf), nil
	case cond.Mod:
		if bothInt {
			return li % ri, nil
		}
		return math.Mod(lf, rf), nil
	case cond.Pow:
		return math.Pow(lf, rf), nil
	default:
		return nil, werr.New(werr.UnsupportedCondition, "executor: unsupported binary operator %s", op)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}
