package index

import (
	"fmt"

	"github.com/bzczb/wut/cond"
	"github.com/bzczb/wut/werr"
)

// extractor computes the set of raw (pre-normalisation) keys an object
// contributes to this index: a single-element slice for a scalar index, or
// one element per item of a collection attribute for an inverted index.
type extractor func(ctx Context, obj any) ([]any, error)

// base implements the shared add/remove/refresh/clear machinery described
// in spec.md §4.5, parameterised by how keys are extracted from an object.
// HashIndex, RangeIndex and InvertedIndex each embed a base configured with
// their own extractor and Match.
type base struct {
	kindName string
	params   Params
	buckets  *bucketMap
	nullSet  RowSet
	extract  extractor
}

func newBase(kindName string, params Params, extract extractor) base {
	return base{
		kindName: kindName,
		params:   params,
		buckets:  newBucketMap(params.compareFunc()),
		extract:  extract,
	}
}

func (b *base) Params() Params { return b.params }

// isOwnAttr reports whether either side of condition is an Attribute
// matching this index's name, i.e. whether the optimizer's UseIndex rule
// found this index's attribute on one side of condition.
func (b *base) isOwnAttr(condition cond.BinOp) bool {
	if attr, ok := condition.Left.(cond.Attribute); ok && attr.Name == b.params.Name {
		return true
	}
	if attr, ok := condition.Right.(cond.Attribute); ok && attr.Name == b.params.Name {
		return true
	}
	return false
}

func (b *base) String() string {
	return fmt.Sprintf("%s(%s)", b.kindName, b.params.Name)
}

// rawKeys extracts and normalises the keys for obj, using a memorised value
// when the caller supplies one instead of re-reading the attribute.
func (b *base) rawKeys(ctx Context, obj any, val []any) ([]any, error) {
	var raw []any
	var err error
	if val != nil {
		raw = val
	} else {
		raw, err = b.extract(ctx, obj)
		if err != nil {
			return nil, err
		}
	}
	out := make([]any, len(raw))
	for i, v := range raw {
		if v == nil {
			out[i] = nil
			continue
		}
		nv, err := normalize(b.params.KeyType, v)
		if err != nil {
			return nil, err
		}
		out[i] = nv
	}
	return out, nil
}

// MakeVal computes the storable value for obj without mutating the index.
func (b *base) MakeVal(ctx Context, obj any) ([]any, error) {
	return b.rawKeys(ctx, obj, nil)
}

// add inserts pk under each of keys, honoring Unique and NoneAllowed.
// Validation happens before any mutation so a unique violation never
// leaves the index partially updated (spec.md §7 atomicity).
func (b *base) add(pk int64, keys []any) error {
	if b.params.Unique {
		for _, k := range keys {
			if k == nil {
				continue
			}
			if existing, ok := b.buckets.Get(k); ok && !existing.IsEmpty() {
				return werr.New(werr.UniqueViolation,
					"unique constraint violation on index %q: value %v already present", b.params.Name, k)
			}
		}
	}
	for _, k := range keys {
		if k == nil {
			if !b.params.NoneAllowed {
				return werr.New(werr.UnsupportedCondition, "index %q does not allow null keys", b.params.Name)
			}
			b.nullSet = b.nullSet.Add(pk)
			continue
		}
		existing, _ := b.buckets.Get(k)
		b.buckets.Set(k, existing.Add(pk))
	}
	return nil
}

// Add extracts obj's keys (or uses val if supplied), inserts pk, and
// returns the value to memorise.
func (b *base) Add(pk int64, ctx Context, obj any, val []any) ([]any, error) {
	keys, err := b.rawKeys(ctx, obj, val)
	if err != nil {
		return nil, err
	}
	if err := b.add(pk, keys); err != nil {
		return nil, err
	}
	return keys, nil
}

func (b *base) discard(pk int64, keys []any) {
	for _, k := range keys {
		if k == nil {
			b.nullSet = b.nullSet.Discard(pk)
			continue
		}
		existing, ok := b.buckets.Get(k)
		if !ok {
			continue
		}
		updated := existing.Discard(pk)
		if updated.IsEmpty() {
			b.buckets.Delete(k)
		} else {
			b.buckets.Set(k, updated)
		}
	}
}

// Remove removes pk from the index. val, when non-nil, is the memorised
// value from the object's box; otherwise the value is re-extracted from
// obj (only valid for non-memorising indexes, since a memorising index
// relies on the remembered value to find the right bucket after obj may
// have already changed).
func (b *base) Remove(pk int64, ctx Context, obj any, val []any) error {
	keys, err := b.rawKeys(ctx, obj, val)
	if err != nil {
		return err
	}
	b.discard(pk, keys)
	return nil
}

// Refresh computes added = new-old and removed = old-new, then applies
// discard for removed keys and add for added keys.
func (b *base) Refresh(pk int64, ctx Context, obj any, oldVal, newVal []any) ([]any, error) {
	var newKeys []any
	var err error
	if newVal != nil {
		newKeys, err = b.rawKeys(ctx, obj, newVal)
	} else {
		newKeys, err = b.rawKeys(ctx, obj, nil)
	}
	if err != nil {
		return nil, err
	}

	oldSet := map[any]bool{}
	for _, k := range oldVal {
		oldSet[k] = true
	}
	newSet := map[any]bool{}
	for _, k := range newKeys {
		newSet[k] = true
	}

	var added, removed []any
	for k := range newSet {
		if !oldSet[k] {
			added = append(added, k)
		}
	}
	for k := range oldSet {
		if !newSet[k] {
			removed = append(removed, k)
		}
	}

	if err := b.add(pk, added); err != nil {
		return nil, err
	}
	b.discard(pk, removed)

	return newKeys, nil
}

// Clear removes every entry from the index.
func (b *base) Clear() {
	b.buckets.Clear()
	b.nullSet = Empty
}

// lookup returns the bucket for a normalised value (nil looks up the null
// set).
func (b *base) lookup(value any) RowSet {
	if value == nil {
		return b.nullSet
	}
	nv, err := normalize(b.params.KeyType, value)
	if err != nil {
		return Empty
	}
	bucket, ok := b.buckets.Get(nv)
	if !ok {
		return Empty
	}
	return bucket
}
