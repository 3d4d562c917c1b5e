// Package cond implements the condition IR: a tagged tree of literals,
// attribute references, arrays, and unary/binary operators, produced either
// by the sqlfilter string parser or by the fluent builders in this package.
package cond

import (
	"fmt"
	"strconv"
	"strings"
)

// Condition is the sealed interface implemented by every condition node.
// It intentionally has no behavior beyond identification: the planner,
// optimizer and executor all operate on it via type switches, mirroring the
// tagged-variant design called out in spec.md's design notes.
type Condition interface {
	condition()
	String() string
}

// Literal wraps a constant value.
type Literal struct {
	Value any
}

func (Literal) condition() {}
func (l Literal) String() string { return reprValue(l.Value) }

// Attribute is a reference to an object's attribute. Names beginning with a
// back-tick denote computed attributes resolved through a caller-supplied
// function map instead of direct field access.
type Attribute struct {
	Name string
}

func (Attribute) condition() {}
func (a Attribute) String() string { return a.Name }

// Computed reports whether this attribute is resolved via the computed
// attribute map rather than direct access.
func (a Attribute) Computed() bool { return strings.HasPrefix(a.Name, "`") }

// Array is a literal collection of sub-conditions, used on the right-hand
// side of IN expressions and as the direct operand of builders like Arr.
type Array struct {
	Items []Condition
}

func (Array) condition() {}
func (a Array) String() string {
	parts := make([]string, len(a.Items))
	for i, it := range a.Items {
		parts[i] = it.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// BinOpKind enumerates binary operators.
type BinOpKind int

const (
	Add BinOpKind = iota
	Sub
	Mul
	Div
	FloorDiv
	Mod
	Pow
	BitAnd
	BitOr
	Xor
	Lshift
	Rshift
	Is
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	And
	Or
	In
)

var binOpSymbols = map[BinOpKind]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", FloorDiv: "//", Mod: "%", Pow: "**",
	BitAnd: "&", BitOr: "|", Xor: "^", Lshift: "<<", Rshift: ">>",
	Is: "IS", Eq: "=", Ne: "!=", Lt: "<", Le: "<=", Gt: ">", Ge: ">=",
	And: "AND", Or: "OR", In: "IN",
}

func (k BinOpKind) String() string {
	if s, ok := binOpSymbols[k]; ok {
		return s
	}
	return fmt.Sprintf("BinOp(%d)", int(k))
}

// Commutative reports whether swapping the operands yields an equivalent
// condition. Used nowhere in the optimizer directly, but documents why the
// UseIndex rule only needs to try one attribute-side orientation.
func (k BinOpKind) Commutative() bool {
	switch k {
	case Add, Mul, BitAnd, BitOr, Xor, Eq, Ne, And, Or:
		return true
	default:
		return false
	}
}

// Inverse returns the comparator that holds when the operands are swapped,
// e.g. `v < attr` is equivalent to `attr > v`. Only meaningful for ordering
// comparators; returns k unchanged for anything else.
func (k BinOpKind) Inverse() BinOpKind {
	switch k {
	case Lt:
		return Gt
	case Gt:
		return Lt
	case Le:
		return Ge
	case Ge:
		return Le
	default:
		return k
	}
}

// BinOp is a binary operator node. In distinguishes `x IN [a,b,c]` (left is
// the Attribute/value, right is the Array) from `a IN attr` (left is the
// literal being tested for membership, right is the collection attribute).
type BinOp struct {
	Op    BinOpKind
	Left  Condition
	Right Condition
}

func (BinOp) condition() {}
func (b BinOp) String() string {
	return fmt.Sprintf("%s %s %s", b.Left, b.Op, b.Right)
}

// UnaryOpKind enumerates unary operators.
type UnaryOpKind int

const (
	Not UnaryOpKind = iota
	Invert
)

func (k UnaryOpKind) String() string {
	if k == Invert {
		return "~"
	}
	return "NOT"
}

// UnaryOp is a unary operator node.
type UnaryOp struct {
	Op      UnaryOpKind
	Operand Condition
}

func (UnaryOp) condition() {}
func (u UnaryOp) String() string {
	if u.Op == Invert {
		return fmt.Sprintf("~%s", u.Operand)
	}
	return fmt.Sprintf("NOT %s", u.Operand)
}

func reprValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case bool:
		if t {
			return "True"
		}
		return "False"
	case string:
		return strconv.Quote(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
