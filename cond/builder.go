package cond

// E is a fluent wrapper around a Condition. Builders return E so calls
// chain: Attr("x").Eq(1).And(Attr("y").In(Arr(Lit(1), Lit(2)))).
//
// E is equivalent to constructing the tree by hand; Cond() unwraps it for
// code that consumes plain Condition values (the planner, the optimizer).
type E struct {
	c Condition
}

// Cond unwraps the fluent builder into a plain Condition.
func (e E) Cond() Condition { return e.c }

func (e E) condition() {}
func (e E) String() string { return e.c.String() }

func wrap(c Condition) E { return E{c: c} }

// Attr starts a fluent chain on an attribute reference.
func Attr(name string) E { return wrap(Attribute{Name: name}) }

// Lit wraps a literal value.
func Lit(v any) E { return wrap(Literal{Value: v}) }

// Arr builds an Array condition from fluent operands.
func Arr(items ...E) E {
	cs := make([]Condition, len(items))
	for i, it := range items {
		cs[i] = it.c
	}
	return wrap(Array{Items: cs})
}

// LitArr builds an Array of literals directly from Go values, which is the
// common case for `attr IN (1,2,3)`.
func LitArr(vals ...any) E {
	cs := make([]Condition, len(vals))
	for i, v := range vals {
		cs[i] = Literal{Value: v}
	}
	return wrap(Array{Items: cs})
}

func binOp(op BinOpKind, l, r E) E { return wrap(BinOp{Op: op, Left: l.c, Right: r.c}) }

func (e E) Add(o E) E      { return binOp(Add, e, o) }
func (e E) Sub(o E) E      { return binOp(Sub, e, o) }
func (e E) Mul(o E) E      { return binOp(Mul, e, o) }
func (e E) Div(o E) E      { return binOp(Div, e, o) }
func (e E) FloorDiv(o E) E { return binOp(FloorDiv, e, o) }
func (e E) Mod(o E) E      { return binOp(Mod, e, o) }
func (e E) Pow(o E) E      { return binOp(Pow, e, o) }
func (e E) BitAnd(o E) E   { return binOp(BitAnd, e, o) }
func (e E) BitOr(o E) E    { return binOp(BitOr, e, o) }
func (e E) Xor(o E) E      { return binOp(Xor, e, o) }
func (e E) Lshift(o E) E   { return binOp(Lshift, e, o) }
func (e E) Rshift(o E) E   { return binOp(Rshift, e, o) }
func (e E) Is(o E) E       { return binOp(Is, e, o) }
func (e E) Eq(o any) E     { return binOp(Eq, e, Lit(o)) }
func (e E) Ne(o any) E     { return binOp(Ne, e, Lit(o)) }
func (e E) Lt(o any) E     { return binOp(Lt, e, Lit(o)) }
func (e E) Le(o any) E     { return binOp(Le, e, Lit(o)) }
func (e E) Gt(o any) E     { return binOp(Gt, e, Lit(o)) }
func (e E) Ge(o any) E     { return binOp(Ge, e, Lit(o)) }
func (e E) And(o E) E      { return binOp(And, e, o) }
func (e E) Or(o E) E       { return binOp(Or, e, o) }

// In builds `e IN o`, e.g. Attr("x").In(LitArr(1,2,3)) for membership in a
// literal array, or Lit(1).In(Attr("tags")) for membership in a collection
// attribute (matched by inverted indexes).
func (e E) In(o E) E { return binOp(In, e, o) }

// Not negates the wrapped condition.
func (e E) Not() E { return wrap(UnaryOp{Op: Not, Operand: e.c}) }

// Invert applies bitwise complement.
func (e E) Invert() E { return wrap(UnaryOp{Op: Invert, Operand: e.c}) }

// And_ and Or_ combine two plain Conditions without the fluent wrapper,
// used by the optimizer when folding n filters into one.
func And_(conds ...Condition) Condition {
	if len(conds) == 0 {
		return Literal{Value: true}
	}
	result := conds[0]
	for _, c := range conds[1:] {
		result = BinOp{Op: And, Left: result, Right: c}
	}
	return result
}

// Or_ combines conditions with OR, left-associatively.
func Or_(conds ...Condition) Condition {
	if len(conds) == 0 {
		return Literal{Value: false}
	}
	result := conds[0]
	for _, c := range conds[1:] {
		result = BinOp{Op: Or, Left: result, Right: c}
	}
	return result
}
