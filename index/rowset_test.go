package index

import "testing"

func TestRowSetAddUpgradesAtArrayMax(t *testing.T) {
	r := Empty
	for i := int64(0); i < arrayMax; i++ {
		r = r.Add(i)
	}
	if r.kind != kindArray {
		t.Fatalf("kind = %v after %d adds, want kindArray", r.kind, arrayMax)
	}
	r = r.Add(arrayMax)
	if r.kind != kindSet {
		t.Fatalf("kind = %v after exceeding arrayMax, want kindSet", r.kind)
	}
	if r.Size() != arrayMax+1 {
		t.Fatalf("Size() = %d, want %d", r.Size(), arrayMax+1)
	}
}

func TestRowSetDiscardDowngradesBelowSetMin(t *testing.T) {
	r := Empty
	for i := int64(0); i < arrayMax+1; i++ {
		r = r.Add(i)
	}
	if r.kind != kindSet {
		t.Fatalf("setup: kind = %v, want kindSet", r.kind)
	}
	for r.Size() >= setMin {
		var next int64 = -1
		r.Iterate(func(id int64) bool { next = id; return false })
		r = r.Discard(next)
	}
	if r.kind != kindArray {
		t.Fatalf("kind = %v once below setMin, want kindArray", r.kind)
	}
}

func TestRowSetAddDiscardDoNotMutateShared(t *testing.T) {
	base := Single(1)
	added := base.Add(2)
	if base.Contains(2) {
		t.Fatalf("Add mutated the receiver")
	}
	if !added.Contains(1) || !added.Contains(2) {
		t.Fatalf("added = %v, want {1,2}", added.ToSlice())
	}

	discarded := added.Discard(1)
	if !added.Contains(1) {
		t.Fatalf("Discard mutated its receiver")
	}
	if discarded.Contains(1) || !discarded.Contains(2) {
		t.Fatalf("discarded = %v, want {2}", discarded.ToSlice())
	}
}

func TestRowSetSetAlgebra(t *testing.T) {
	a := FromSlice([]int64{1, 2, 3})
	b := FromSlice([]int64{2, 3, 4})

	if u := Union(a, b); u.Size() != 4 {
		t.Fatalf("Union size = %d, want 4", u.Size())
	}
	if i := Intersect(a, b); i.Size() != 2 || !i.Contains(2) || !i.Contains(3) {
		t.Fatalf("Intersect = %v, want {2,3}", i.ToSlice())
	}
	if d := Difference(a, b); d.Size() != 1 || !d.Contains(1) {
		t.Fatalf("Difference = %v, want {1}", d.ToSlice())
	}
	if sd := SymmetricDifference(a, b); sd.Size() != 2 || !sd.Contains(1) || !sd.Contains(4) {
		t.Fatalf("SymmetricDifference = %v, want {1,4}", sd.ToSlice())
	}
}

func TestIntersectEmptyOperandShortCircuits(t *testing.T) {
	a := FromSlice([]int64{1, 2, 3})
	if got := Intersect(a, Empty); !got.IsEmpty() {
		t.Fatalf("Intersect with an empty operand = %v, want empty", got.ToSlice())
	}
}
