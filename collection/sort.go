package collection

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/bzczb/wut/werr"
)

// SortKey names one term of an ordering passed to sortIDs / SortIDs.
type SortKey struct {
	Attr       string
	Descending bool
}

// sortIDs orders ids by a lexicographic comparison over the memorised
// values of ordering's attributes, tiebreaking on row-id. Per spec.md §9's
// corrected design-note behaviour, the tiebreak is descending iff the last
// ordering term is descending, and ascending when ordering is empty: the
// row-id comparison always uses the final term's direction, never a
// separately-tracked "last seen" variable (the bug the design note flags in
// the source drafts).
func (c *Collection[T]) sortIDs(ids []int64, ordering []SortKey) ([]int64, error) {
	slots := make([]int, len(ordering))
	for i, k := range ordering {
		pos, ok := c.memPos[k.Attr]
		if !ok {
			return nil, werr.New(werr.Internal, "sort: attribute %q has no memorising index", k.Attr)
		}
		slots[i] = pos
	}

	tiebreakDescending := false
	if len(ordering) > 0 {
		tiebreakDescending = ordering[len(ordering)-1].Descending
	}

	out := make([]int64, len(ids))
	copy(out, ids)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := c.boxes[out[i]], c.boxes[out[j]]
		for k, pos := range slots {
			av := memScalar(a.indexMem[pos])
			bv := memScalar(b.indexMem[pos])
			cmp := compareNormalized(av, bv)
			if cmp == 0 {
				continue
			}
			if ordering[k].Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		if tiebreakDescending {
			return out[i] > out[j]
		}
		return out[i] < out[j]
	})
	return out, nil
}

// memScalar unwraps a memorised keys slice to the single value sortIDs
// compares against; an inverted index's multi-element memory sorts by its
// first key in extraction order, which is not necessarily its smallest.
func memScalar(keys []any) any {
	if len(keys) == 0 {
		return nil
	}
	return keys[0]
}

// compareNormalized orders two memorised attribute values: nil sorts first,
// numeric, string and bool values compare natively, and anything else falls
// back to a formatted-string comparison so the result is always a total
// order even across mixed types.
func compareNormalized(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			switch {
			case as < bs:
				return -1
			case as > bs:
				return 1
			default:
				return 0
			}
		}
	}
	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch {
			case ab == bb:
				return 0
			case !ab && bb:
				return -1
			default:
				return 1
			}
		}
	}
	if reflect.DeepEqual(a, b) {
		return 0
	}
	sa, sb := formatForCompare(a), formatForCompare(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

func formatForCompare(v any) string {
	type stringer interface{ String() string }
	if s, ok := v.(stringer); ok {
		return s.String()
	}
	return reflect.TypeOf(v).String() + ":" + fmt.Sprintf("%#v", v)
}
