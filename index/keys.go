package index

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// KeyType selects the ordered-map flavour an index uses for its non-null
// keys, matching spec.md §3's Index entity (`key_type` ∈ {obj, int, uint}).
type KeyType int

const (
	// KeyObj stores keys as opaque, caller-comparable Go values, ordered by
	// Params.Compare (required for range queries) or, absent that, by a
	// stable hash-derived total order sufficient for equality indexing.
	KeyObj KeyType = iota
	// KeyInt normalises keys to a signed 64-bit integer.
	KeyInt
	// KeyUint normalises keys to an unsigned 64-bit integer.
	KeyUint
)

// CompareFunc orders two normalised keys: negative if a<b, zero if equal,
// positive if a>b.
type CompareFunc func(a, b any) int

func intCompare(a, b any) int {
	av, bv := a.(int64), b.(int64)
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

func uintCompare(a, b any) int {
	av, bv := a.(uint64), b.(uint64)
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

// defaultObjCompare gives arbitrary comparable Go values a stable total
// order by hashing their canonical representation with xxhash. It has no
// notion of numeric or lexical ordering between unlike values — it exists
// so that a KeyObj index can be stored and looked up (binary search) even
// when the caller never supplies a domain-specific Compare, which is the
// common case for an index that is only ever probed by equality. A KeyObj
// index used with range predicates must supply Params.Compare explicitly;
// see RangeIndex.
func defaultObjCompare(a, b any) int {
	if a == b {
		return 0
	}
	ha := xxhash.Sum64String(fmt.Sprintf("%#v", a))
	hb := xxhash.Sum64String(fmt.Sprintf("%#v", b))
	switch {
	case ha < hb:
		return -1
	case ha > hb:
		return 1
	default:
		// Hash collision between unequal values: fall back to the
		// formatted representation so ordering stays a total order.
		sa, sb := fmt.Sprintf("%#v", a), fmt.Sprintf("%#v", b)
		if sa < sb {
			return -1
		}
		return 1
	}
}

// normalize converts an extracted attribute value into the canonical form
// its KeyType stores, e.g. any Go integer kind becomes int64 for KeyInt.
func normalize(kt KeyType, v any) (any, error) {
	switch kt {
	case KeyInt:
		return toInt64(v)
	case KeyUint:
		return toUint64(v)
	default:
		return v, nil
	}
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case uint:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case float32:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("index: value %v (%T) is not convertible to an int64 key", v, v)
	}
}

func toUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case uint:
		return uint64(n), nil
	case uint32:
		return uint64(n), nil
	case int:
		if n < 0 {
			return 0, fmt.Errorf("index: negative value %v is not convertible to a uint64 key", v)
		}
		return uint64(n), nil
	case int64:
		if n < 0 {
			return 0, fmt.Errorf("index: negative value %v is not convertible to a uint64 key", v)
		}
		return uint64(n), nil
	case float64:
		if n < 0 {
			return 0, fmt.Errorf("index: negative value %v is not convertible to a uint64 key", v)
		}
		return uint64(n), nil
	default:
		return 0, fmt.Errorf("index: value %v (%T) is not convertible to a uint64 key", v, v)
	}
}

// bucketMap is the ordered map from a normalised key to an adaptive row-id
// RowSet, backed by a slice kept sorted by cmp. Lookup and range scans are
// O(log n) via binary search; insert and delete are O(n) for the slice
// shift. No B-tree or immutable-radix-tree library was present in the
// grounding corpus (see DESIGN.md), and index cardinalities in this domain
// (distinct attribute values, not row counts) are expected to be modest, so
// a sorted slice is the straightforward, dependency-free choice here.
type bucketMap struct {
	cmp     CompareFunc
	keys    []any
	buckets []RowSet
}

func newBucketMap(cmp CompareFunc) *bucketMap {
	return &bucketMap{cmp: cmp}
}

func (m *bucketMap) search(key any) (int, bool) {
	i := sort.Search(len(m.keys), func(i int) bool {
		return m.cmp(m.keys[i], key) >= 0
	})
	if i < len(m.keys) && m.cmp(m.keys[i], key) == 0 {
		return i, true
	}
	return i, false
}

// Get returns the bucket at key, if any.
func (m *bucketMap) Get(key any) (RowSet, bool) {
	i, ok := m.search(key)
	if !ok {
		return Empty, false
	}
	return m.buckets[i], true
}

// Set inserts or replaces the bucket at key.
func (m *bucketMap) Set(key any, bucket RowSet) {
	i, ok := m.search(key)
	if ok {
		m.buckets[i] = bucket
		return
	}
	m.keys = append(m.keys, nil)
	copy(m.keys[i+1:], m.keys[i:])
	m.keys[i] = key

	m.buckets = append(m.buckets, RowSet{})
	copy(m.buckets[i+1:], m.buckets[i:])
	m.buckets[i] = bucket
}

// Delete removes the bucket at key, if present.
func (m *bucketMap) Delete(key any) {
	i, ok := m.search(key)
	if !ok {
		return
	}
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.buckets = append(m.buckets[:i], m.buckets[i+1:]...)
}

// Len returns the number of distinct keys.
func (m *bucketMap) Len() int { return len(m.keys) }

// Clear empties the map.
func (m *bucketMap) Clear() {
	m.keys = nil
	m.buckets = nil
}

// RangeAsc iterates every bucket in ascending key order, stopping early if
// yield returns false. Bounded range scans go through boundIndex and Slice
// instead (see RangeIndex.Range).
func (m *bucketMap) RangeAsc(yield func(bucket RowSet) bool) {
	for _, b := range m.buckets {
		if !yield(b) {
			return
		}
	}
}

// boundIndex returns the slice index where iteration should start (for a
// left/lower bound) or stop (exclusive, for a right/upper bound).
func (m *bucketMap) boundIndex(value any, inclusive, isLeft bool) int {
	i := sort.Search(len(m.keys), func(i int) bool {
		return m.cmp(m.keys[i], value) >= 0
	})
	if isLeft {
		if i < len(m.keys) && !inclusive && m.cmp(m.keys[i], value) == 0 {
			return i + 1
		}
		return i
	}
	// right bound: stop before the first key >= value (exclusive bound) or
	// before the first key > value, keeping an equal key (inclusive bound).
	if i < len(m.keys) && inclusive && m.cmp(m.keys[i], value) == 0 {
		return i + 1
	}
	return i
}

// Slice returns the buckets in [lo, hi) ascending.
func (m *bucketMap) Slice(lo, hi int) []RowSet {
	if lo < 0 {
		lo = 0
	}
	if hi > len(m.buckets) {
		hi = len(m.buckets)
	}
	if lo >= hi {
		return nil
	}
	return m.buckets[lo:hi]
}
