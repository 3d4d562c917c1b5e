package sqlfilter

import (
	"testing"

	"github.com/bzczb/wut/cond"
	"github.com/bzczb/wut/werr"
)

func parse(t *testing.T, s string) cond.Condition {
	t.Helper()
	c, err := NewParser().Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return c
}

func TestParseSimpleComparison(t *testing.T) {
	got := parse(t, "x = 1")
	want := cond.Attr("x").Eq(int64(1)).Cond()
	if got.String() != want.String() {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseLiteralLeftComparison(t *testing.T) {
	got := parse(t, "1 < x")
	want := cond.BinOp{Op: cond.Lt, Left: cond.Literal{Value: int64(1)}, Right: cond.Attribute{Name: "x"}}
	if got.String() != want.String() {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseInWithArrayLiteral(t *testing.T) {
	got := parse(t, "x IN [1, 2, 3]")
	want := cond.Attr("x").In(cond.LitArr(int64(1), int64(2), int64(3))).Cond()
	if got.String() != want.String() {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseLiteralInAttr(t *testing.T) {
	got := parse(t, "'a' IN tags")
	bo, ok := got.(cond.BinOp)
	if !ok || bo.Op != cond.In {
		t.Fatalf("got %#v, want BinOp{Op: In}", got)
	}
	if _, ok := bo.Left.(cond.Literal); !ok {
		t.Fatalf("left should be a literal, got %#v", bo.Left)
	}
	if attr, ok := bo.Right.(cond.Attribute); !ok || attr.Name != "tags" {
		t.Fatalf("right should be attribute tags, got %#v", bo.Right)
	}
}

func TestParseAndOrPrecedence(t *testing.T) {
	got := parse(t, "x = 1 OR y = 2 AND z = 3")
	// AND binds tighter than OR: x=1 OR (y=2 AND z=3)
	bo, ok := got.(cond.BinOp)
	if !ok || bo.Op != cond.Or {
		t.Fatalf("top-level op should be OR, got %#v", got)
	}
	right, ok := bo.Right.(cond.BinOp)
	if !ok || right.Op != cond.And {
		t.Fatalf("right side of OR should be AND, got %#v", bo.Right)
	}
}

func TestParseNotBindsTighterThanAnd(t *testing.T) {
	got := parse(t, "NOT x = 1 AND y = 2")
	bo, ok := got.(cond.BinOp)
	if !ok || bo.Op != cond.And {
		t.Fatalf("top-level op should be AND, got %#v", got)
	}
	if _, ok := bo.Left.(cond.UnaryOp); !ok {
		t.Fatalf("left side of AND should be NOT, got %#v", bo.Left)
	}
}

func TestParseParentheses(t *testing.T) {
	got := parse(t, "(x = 1 OR y = 2) AND z = 3")
	bo, ok := got.(cond.BinOp)
	if !ok || bo.Op != cond.And {
		t.Fatalf("top-level op should be AND, got %#v", got)
	}
	if left, ok := bo.Left.(cond.BinOp); !ok || left.Op != cond.Or {
		t.Fatalf("left side of AND should be the parenthesised OR, got %#v", bo.Left)
	}
}

func TestParseBacktickComputedAttribute(t *testing.T) {
	got := parse(t, "`full_name` = 'a'")
	bo, ok := got.(cond.BinOp)
	if !ok {
		t.Fatalf("got %#v, want BinOp", got)
	}
	attr, ok := bo.Left.(cond.Attribute)
	if !ok || !attr.Computed() {
		t.Fatalf("left should be a computed attribute, got %#v", bo.Left)
	}
}

func TestParseStringAndNumberLiterals(t *testing.T) {
	got := parse(t, "x = 1.5")
	bo := got.(cond.BinOp)
	lit, ok := bo.Right.(cond.Literal)
	if !ok {
		t.Fatalf("right should be a literal, got %#v", bo.Right)
	}
	if f, ok := lit.Value.(float64); !ok || f != 1.5 {
		t.Fatalf("expected float64(1.5), got %#v", lit.Value)
	}

	got = parse(t, `name = "bob"`)
	bo = got.(cond.BinOp)
	lit = bo.Right.(cond.Literal)
	if lit.Value != "bob" {
		t.Fatalf("expected \"bob\", got %#v", lit.Value)
	}
}

func TestParseBooleanAndNullLiterals(t *testing.T) {
	got := parse(t, "active = TRUE")
	bo := got.(cond.BinOp)
	if bo.Right.(cond.Literal).Value != true {
		t.Fatalf("expected true, got %#v", bo.Right)
	}

	got = parse(t, "deleted_at IS NULL")
	bo = got.(cond.BinOp)
	if bo.Op != cond.Is {
		t.Fatalf("expected IS, got %s", bo.Op)
	}
	if bo.Right.(cond.Literal).Value != nil {
		t.Fatalf("expected nil, got %#v", bo.Right)
	}
}

func TestParseErrorUnterminatedString(t *testing.T) {
	_, err := NewParser().Parse(`x = "unterminated`)
	if werr.CodeOf(err) != werr.PredicateType {
		t.Fatalf("expected PredicateType error, got %v", err)
	}
}

func TestParseErrorUnterminatedBacktick(t *testing.T) {
	_, err := NewParser().Parse("`oops = 1")
	if werr.CodeOf(err) != werr.PredicateType {
		t.Fatalf("expected PredicateType error, got %v", err)
	}
}

func TestParseErrorUnexpectedCharacter(t *testing.T) {
	_, err := NewParser().Parse("x = 1 @ y")
	if werr.CodeOf(err) != werr.PredicateType {
		t.Fatalf("expected PredicateType error, got %v", err)
	}
}

func TestParseErrorTrailingGarbage(t *testing.T) {
	_, err := NewParser().Parse("x = 1 y = 2")
	if err == nil {
		t.Fatal("expected an error for trailing garbage")
	}
}
