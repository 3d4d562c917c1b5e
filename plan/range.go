package plan

import "fmt"

// Bound is one side of a Range: a value plus whether it is inclusive.
type Bound struct {
	Value      any
	Inclusive  bool
}

// Symbol renders the comparator symbol for plan-string output.
func (b Bound) Symbol() string {
	if b.Inclusive {
		return "<="
	}
	return "<"
}

// OptionalBound is a Bound that may be unset (an open end of the range).
type OptionalBound struct {
	bound Bound
	set   bool
}

// Unbounded is the zero OptionalBound: no constraint on this side.
var Unbounded = OptionalBound{}

// NewBound returns a set OptionalBound.
func NewBound(value any, inclusive bool) OptionalBound {
	return OptionalBound{bound: Bound{Value: value, Inclusive: inclusive}, set: true}
}

// Get returns the underlying Bound and whether it is set.
func (b OptionalBound) Get() (Bound, bool) { return b.bound, b.set }

// IsSet reports whether this side of the range is constrained.
func (b OptionalBound) IsSet() bool { return b.set }

// Range is a half-open or closed interval over an ordered index's keys.
// Either side may be Unbounded.
type Range struct {
	Left  OptionalBound
	Right OptionalBound
}

// CompareFunc compares two values the same way the underlying ordered
// index does; it is supplied by the caller of Combine because plan itself
// is agnostic to the concrete comparison (int64, uint64, or a user
// comparator for 'obj' keyed range indexes).
type CompareFunc func(a, b any) int

// Combine merges two ranges on the same index into their intersection. It
// returns (Range{}, false) if the combined range can never hold: left is
// past right, or left equals right while either bound is exclusive,
// matching spec.md §4.4's CombineRanges rule.
func (r Range) Combine(other Range, cmp CompareFunc) (Range, bool) {
	left := combineBound(r.Left, other.Left, cmp, true)
	right := combineBound(r.Right, other.Right, cmp, false)

	if lb, lok := left.Get(); lok {
		if rb, rok := right.Get(); rok {
			c := cmp(lb.Value, rb.Value)
			if lb.Inclusive && rb.Inclusive {
				if c > 0 {
					return Range{}, false
				}
			} else if c >= 0 {
				return Range{}, false
			}
		}
	}

	return Range{Left: left, Right: right}, true
}

// combineBound picks the tighter of two optional bounds. isLeft selects
// "larger value wins" (left/lower bound semantics) vs. "smaller value
// wins" (right/upper bound semantics); ties combine the inclusivity flags
// with logical AND, matching spec.md: "the combined left is the tighter of
// the two (larger value, or inclusive-AND if equal values); symmetric on
// the right."
func combineBound(a, b OptionalBound, cmp CompareFunc, isLeft bool) OptionalBound {
	ab, aok := a.Get()
	bb, bok := b.Get()
	if !aok {
		return b
	}
	if !bok {
		return a
	}
	c := cmp(ab.Value, bb.Value)
	if c == 0 {
		return NewBound(ab.Value, ab.Inclusive && bb.Inclusive)
	}
	tighter := c > 0
	if !isLeft {
		tighter = c < 0
	}
	if tighter {
		return a
	}
	return b
}

func (r Range) String() string {
	left, hasLeft := r.Left.Get()
	right, hasRight := r.Right.Get()
	switch {
	case hasLeft && hasRight:
		return fmt.Sprintf("%v %s x %s %v", left.Value, left.Symbol(), right.Symbol(), right.Value)
	case hasLeft:
		return fmt.Sprintf("%v %s x", left.Value, left.Symbol())
	case hasRight:
		return fmt.Sprintf("x %s %v", right.Symbol(), right.Value)
	default:
		return "(unbounded)"
	}
}
