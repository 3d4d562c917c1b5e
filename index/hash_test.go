package index

import (
	"testing"

	"github.com/bzczb/wut/cond"
	"github.com/bzczb/wut/werr"
)

// row is a tiny test fixture object with a scalar and a collection field.
type row struct {
	id   int64
	x    any
	tags []string
}

type rowContext struct{}

func (rowContext) GetAttr(obj any, name string) (any, error) {
	r := obj.(*row)
	switch name {
	case "x":
		return r.x, nil
	case "tags":
		return r.tags, nil
	default:
		return nil, werr.New(werr.NotFound, "no such attribute %q", name)
	}
}

func TestHashIndexAddLookupDiscard(t *testing.T) {
	ctx := rowContext{}
	h := NewHashIndex(Params{Name: "x", KeyType: KeyObj, NoneAllowed: true, Memorize: true})

	r1 := &row{id: 1, x: "a"}
	r2 := &row{id: 2, x: "a"}
	r3 := &row{id: 3, x: "b"}

	for _, r := range []*row{r1, r2, r3} {
		if _, err := h.Add(r.id, ctx, r, nil); err != nil {
			t.Fatalf("Add(%d): %v", r.id, err)
		}
	}

	got := h.Lookup("a")
	if got.Size() != 2 || !got.Contains(1) || !got.Contains(2) {
		t.Fatalf("Lookup(a) = %v, want {1,2}", got.ToSlice())
	}
	if got := h.Lookup("b"); got.Size() != 1 || !got.Contains(3) {
		t.Fatalf("Lookup(b) = %v, want {3}", got.ToSlice())
	}
	if got := h.Lookup("c"); !got.IsEmpty() {
		t.Fatalf("Lookup(c) = %v, want empty", got.ToSlice())
	}

	if err := h.Remove(1, ctx, r1, []any{"a"}); err != nil {
		t.Fatalf("Remove(1): %v", err)
	}
	if got := h.Lookup("a"); got.Size() != 1 || !got.Contains(2) {
		t.Fatalf("after remove, Lookup(a) = %v, want {2}", got.ToSlice())
	}
}

func TestHashIndexUniqueViolation(t *testing.T) {
	ctx := rowContext{}
	h := NewHashIndex(Params{Name: "x", KeyType: KeyObj, Unique: true})

	r1 := &row{id: 1, x: "a"}
	r2 := &row{id: 2, x: "a"}

	if _, err := h.Add(r1.id, ctx, r1, nil); err != nil {
		t.Fatalf("Add(1): %v", err)
	}
	_, err := h.Add(r2.id, ctx, r2, nil)
	if werr.CodeOf(err) != werr.UniqueViolation {
		t.Fatalf("Add(2) err = %v, want UniqueViolation", err)
	}
	// the failed add must not have partially inserted anything.
	if got := h.Lookup("a"); got.Size() != 1 || !got.Contains(1) {
		t.Fatalf("Lookup(a) after failed unique add = %v, want {1}", got.ToSlice())
	}
}

func TestHashIndexNullKeys(t *testing.T) {
	ctx := rowContext{}
	h := NewHashIndex(Params{Name: "x", KeyType: KeyObj, NoneAllowed: true})
	r1 := &row{id: 1, x: nil}

	if _, err := h.Add(r1.id, ctx, r1, nil); err != nil {
		t.Fatalf("Add(1): %v", err)
	}
	if got := h.Lookup(nil); got.Size() != 1 || !got.Contains(1) {
		t.Fatalf("Lookup(nil) = %v, want {1}", got.ToSlice())
	}

	hNoNull := NewHashIndex(Params{Name: "x", KeyType: KeyObj, NoneAllowed: false})
	if _, err := hNoNull.Add(r1.id, ctx, r1, nil); err == nil {
		t.Fatalf("Add of null key with NoneAllowed=false should fail")
	}
}

func TestHashIndexRefresh(t *testing.T) {
	ctx := rowContext{}
	h := NewHashIndex(Params{Name: "x", KeyType: KeyObj, Memorize: true})
	r := &row{id: 1, x: "a"}

	oldVal, err := h.Add(r.id, ctx, r, nil)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	r.x = "b"
	newVal, err := h.Refresh(r.id, ctx, r, oldVal, nil)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(newVal) != 1 || newVal[0] != "b" {
		t.Fatalf("Refresh returned %v, want [b]", newVal)
	}
	if got := h.Lookup("a"); !got.IsEmpty() {
		t.Fatalf("Lookup(a) after refresh = %v, want empty", got.ToSlice())
	}
	if got := h.Lookup("b"); got.Size() != 1 || !got.Contains(1) {
		t.Fatalf("Lookup(b) after refresh = %v, want {1}", got.ToSlice())
	}
}

func TestHashIndexMatchEqAndIn(t *testing.T) {
	h := NewHashIndex(Params{Name: "x", KeyType: KeyObj})

	eqCond := cond.BinOp{Op: cond.Eq, Left: cond.Attribute{Name: "x"}, Right: cond.Literal{Value: "a"}}
	p, ok := h.Match(eqCond, cond.Literal{Value: "a"})
	if !ok {
		t.Fatalf("Match(eq) = false, want true")
	}
	if lookup, ok := p.(interface{ String() string }); !ok || lookup.String() != "IndexLookup: HashIndex(x) = \"a\"" {
		t.Fatalf("Match(eq) plan = %v", p)
	}

	arr := cond.Array{Items: []cond.Condition{cond.Literal{Value: "a"}, cond.Literal{Value: "b"}}}
	inCond := cond.BinOp{Op: cond.In, Left: cond.Attribute{Name: "x"}, Right: arr}
	p, ok = h.Match(inCond, arr)
	if !ok {
		t.Fatalf("Match(in) = false, want true")
	}
	if p.String() == "" {
		t.Fatalf("Match(in) produced empty plan string")
	}

	wrongAttr := cond.BinOp{Op: cond.Eq, Left: cond.Attribute{Name: "y"}, Right: cond.Literal{Value: "a"}}
	if _, ok := h.Match(wrongAttr, cond.Literal{Value: "a"}); ok {
		t.Fatalf("Match matched an unrelated attribute")
	}
}
