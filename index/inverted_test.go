package index

import (
	"testing"

	"github.com/bzczb/wut/cond"
)

func TestInvertedIndexAddLookupDiscard(t *testing.T) {
	ctx := rowContext{}
	inv := NewInvertedIndex(Params{Name: "tags", KeyType: KeyObj, Memorize: true})

	r1 := &row{id: 1, tags: []string{"red", "blue"}}
	r2 := &row{id: 2, tags: []string{"blue", "green"}}

	val1, err := inv.Add(r1.id, ctx, r1, nil)
	if err != nil {
		t.Fatalf("Add(1): %v", err)
	}
	if _, err := inv.Add(r2.id, ctx, r2, nil); err != nil {
		t.Fatalf("Add(2): %v", err)
	}

	if got := inv.Lookup("blue"); got.Size() != 2 || !got.Contains(1) || !got.Contains(2) {
		t.Fatalf("Lookup(blue) = %v, want {1,2}", got.ToSlice())
	}
	if got := inv.Lookup("red"); got.Size() != 1 || !got.Contains(1) {
		t.Fatalf("Lookup(red) = %v, want {1}", got.ToSlice())
	}

	if err := inv.Remove(r1.id, ctx, r1, val1); err != nil {
		t.Fatalf("Remove(1): %v", err)
	}
	if got := inv.Lookup("red"); !got.IsEmpty() {
		t.Fatalf("Lookup(red) after remove = %v, want empty", got.ToSlice())
	}
	if got := inv.Lookup("blue"); got.Size() != 1 || !got.Contains(2) {
		t.Fatalf("Lookup(blue) after remove = %v, want {2}", got.ToSlice())
	}
}

func TestInvertedIndexMatchLiteralIn(t *testing.T) {
	inv := NewInvertedIndex(Params{Name: "tags", KeyType: KeyObj})

	c := cond.BinOp{Op: cond.In, Left: cond.Literal{Value: "red"}, Right: cond.Attribute{Name: "tags"}}
	p, ok := inv.Match(c, cond.Literal{Value: "red"})
	if !ok {
		t.Fatalf("Match(literal IN attr) = false, want true")
	}
	if p.String() == "" {
		t.Fatalf("Match produced empty plan string")
	}

	// the attribute on the left of IN should not match an inverted index
	// (`attr IN array` is HashIndex's shape).
	arrCond := cond.BinOp{Op: cond.In, Left: cond.Attribute{Name: "tags"}, Right: cond.Literal{Value: "red"}}
	if _, ok := inv.Match(arrCond, cond.Literal{Value: "red"}); ok {
		t.Fatalf("Match matched attr-on-left IN, want false")
	}
}
