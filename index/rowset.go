// Package index implements the index subsystem: the adaptive row-id result
// set and the hash, range and inverted indexes built on top of it.
package index

// arrayMax (A) is the size at which a small array representation upgrades
// to a hash-set on Add.
const arrayMax = 32

// setMin (S) is the size at which a hash-set downgrades to a small array on
// Discard. S < A gives the representation hysteresis spec.md §3 calls for,
// so an add/discard pair straddling a single threshold can't oscillate.
const setMin = 16

type rowSetKind uint8

const (
	kindEmpty rowSetKind = iota
	kindSingle
	kindArray
	kindSet
)

// RowSet is the adaptive result-set described in spec.md §4.7: a collection
// of row-ids whose physical representation is chosen by size. Every
// operation here — Add, Discard, and the set-algebra helpers below — is
// pure: it returns either the receiver unchanged or a freshly allocated
// RowSet, and never mutates storage another RowSet might still reference.
// The original (Python, reference-counted, mutation-friendly) adaptive set
// reuses the same array/hash-set object in place when doing so is safe and
// only re-stores on the caller's tree when the identity changes; Go slices
// and maps alias too easily for that trick to be safe by accident, so this
// port always copies on write instead. At A≈32 elements that copy is noise
// next to the cost of a map or tree operation.
type RowSet struct {
	kind rowSetKind
	one  int64
	arr  []int64
	set  map[int64]struct{}
}

// Empty is the zero-value RowSet: no elements.
var Empty = RowSet{kind: kindEmpty}

// Single returns a RowSet containing exactly one row-id.
func Single(id int64) RowSet { return RowSet{kind: kindSingle, one: id} }

// FromSlice builds a RowSet from a slice of row-ids, deduplicating and
// picking the right representation for the resulting size.
func FromSlice(ids []int64) RowSet {
	r := Empty
	for _, id := range ids {
		r = r.Add(id)
	}
	return r
}

// Size returns the number of elements.
func (r RowSet) Size() int {
	switch r.kind {
	case kindEmpty:
		return 0
	case kindSingle:
		return 1
	case kindArray:
		return len(r.arr)
	case kindSet:
		return len(r.set)
	default:
		return 0
	}
}

// IsEmpty reports whether the set has no elements.
func (r RowSet) IsEmpty() bool { return r.kind == kindEmpty }

// Contains reports whether id is a member.
func (r RowSet) Contains(id int64) bool {
	switch r.kind {
	case kindEmpty:
		return false
	case kindSingle:
		return r.one == id
	case kindArray:
		for _, v := range r.arr {
			if v == id {
				return true
			}
		}
		return false
	case kindSet:
		_, ok := r.set[id]
		return ok
	default:
		return false
	}
}

// Iterate calls yield for every member, stopping early if yield returns
// false.
func (r RowSet) Iterate(yield func(int64) bool) {
	switch r.kind {
	case kindEmpty:
		return
	case kindSingle:
		yield(r.one)
	case kindArray:
		for _, v := range r.arr {
			if !yield(v) {
				return
			}
		}
	case kindSet:
		for v := range r.set {
			if !yield(v) {
				return
			}
		}
	}
}

// ToSlice materialises the set as a slice. The order is not significant;
// callers that need deterministic output sort it themselves (see the
// collection package's SortIDs).
func (r RowSet) ToSlice() []int64 {
	out := make([]int64, 0, r.Size())
	r.Iterate(func(id int64) bool {
		out = append(out, id)
		return true
	})
	return out
}

// Copy returns a RowSet with no storage aliasing with r. Since every
// operation on RowSet already avoids aliasing, this is mostly useful to
// callers who want an explicit, self-documenting defensive copy.
func (r RowSet) Copy() RowSet {
	switch r.kind {
	case kindArray:
		cp := make([]int64, len(r.arr))
		copy(cp, r.arr)
		return RowSet{kind: kindArray, arr: cp}
	case kindSet:
		cp := make(map[int64]struct{}, len(r.set))
		for k := range r.set {
			cp[k] = struct{}{}
		}
		return RowSet{kind: kindSet, set: cp}
	default:
		return r
	}
}

// Add returns a RowSet containing r's elements plus id.
func (r RowSet) Add(id int64) RowSet {
	switch r.kind {
	case kindEmpty:
		return Single(id)
	case kindSingle:
		if r.one == id {
			return r
		}
		return RowSet{kind: kindArray, arr: []int64{r.one, id}}
	case kindArray:
		if r.Contains(id) {
			return r
		}
		if len(r.arr) >= arrayMax {
			set := make(map[int64]struct{}, len(r.arr)+1)
			for _, v := range r.arr {
				set[v] = struct{}{}
			}
			set[id] = struct{}{}
			return RowSet{kind: kindSet, set: set}
		}
		arr := make([]int64, len(r.arr)+1)
		copy(arr, r.arr)
		arr[len(r.arr)] = id
		return RowSet{kind: kindArray, arr: arr}
	case kindSet:
		if _, ok := r.set[id]; ok {
			return r
		}
		set := make(map[int64]struct{}, len(r.set)+1)
		for k := range r.set {
			set[k] = struct{}{}
		}
		set[id] = struct{}{}
		return RowSet{kind: kindSet, set: set}
	default:
		return Single(id)
	}
}

// Discard returns a RowSet with id removed, or r unchanged if id was not a
// member.
func (r RowSet) Discard(id int64) RowSet {
	switch r.kind {
	case kindEmpty:
		return r
	case kindSingle:
		if r.one == id {
			return Empty
		}
		return r
	case kindArray:
		idx := -1
		for i, v := range r.arr {
			if v == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return r
		}
		if len(r.arr) == 1 {
			return Empty
		}
		if len(r.arr) == 2 {
			other := r.arr[1-idx]
			return Single(other)
		}
		arr := make([]int64, 0, len(r.arr)-1)
		for i, v := range r.arr {
			if i != idx {
				arr = append(arr, v)
			}
		}
		return RowSet{kind: kindArray, arr: arr}
	case kindSet:
		if _, ok := r.set[id]; !ok {
			return r
		}
		newSize := len(r.set) - 1
		if newSize < setMin {
			arr := make([]int64, 0, newSize)
			for k := range r.set {
				if k != id {
					arr = append(arr, k)
				}
			}
			return RowSet{kind: kindArray, arr: arr}
		}
		set := make(map[int64]struct{}, newSize)
		for k := range r.set {
			if k != id {
				set[k] = struct{}{}
			}
		}
		return RowSet{kind: kindSet, set: set}
	default:
		return r
	}
}

// Union returns the union of all given sets.
func Union(sets ...RowSet) RowSet {
	result := Empty
	for _, s := range sets {
		s.Iterate(func(id int64) bool {
			result = result.Add(id)
			return true
		})
	}
	return result
}

// Intersect returns the intersection of all given sets, short-circuiting
// to Empty as soon as any operand is empty.
func Intersect(sets ...RowSet) RowSet {
	if len(sets) == 0 {
		return Empty
	}
	smallest := sets[0]
	for _, s := range sets[1:] {
		if s.IsEmpty() {
			return Empty
		}
		if s.Size() < smallest.Size() {
			smallest = s
		}
	}
	if smallest.IsEmpty() {
		return Empty
	}

	result := Empty
	smallest.Iterate(func(id int64) bool {
		for _, s := range sets {
			if !s.Contains(id) {
				return true
			}
		}
		result = result.Add(id)
		return true
	})
	return result
}

// Difference returns a minus the union of the rest.
func Difference(a RowSet, rest ...RowSet) RowSet {
	if a.IsEmpty() || len(rest) == 0 {
		return a
	}
	result := Empty
	a.Iterate(func(id int64) bool {
		for _, s := range rest {
			if s.Contains(id) {
				return true
			}
		}
		result = result.Add(id)
		return true
	})
	return result
}

// SymmetricDifference returns elements in exactly one of a or b.
func SymmetricDifference(a, b RowSet) RowSet {
	result := Empty
	a.Iterate(func(id int64) bool {
		if !b.Contains(id) {
			result = result.Add(id)
		}
		return true
	})
	b.Iterate(func(id int64) bool {
		if !a.Contains(id) {
			result = result.Add(id)
		}
		return true
	})
	return result
}
