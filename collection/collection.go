// Package collection implements the in-memory indexed object collection:
// the box/row-id storage, the executor, and the convenience query surface
// tying the cond/plan/optimize/index/sqlfilter packages together. It is the
// Go analogue of utwutwb.collection.Collection.
package collection

import (
	"fmt"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bzczb/wut/index"
	"github.com/bzczb/wut/logging"
	"github.com/bzczb/wut/plan"
	"github.com/bzczb/wut/werr"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/bzczb/wut/optimize"
	"github.com/bzczb/wut/sqlfilter"
)

// Collection owns a set of objects of type T, assigns each a stable row-id,
// and maintains the indexes, planner, optimizer and executor needed to
// answer predicate queries against them. It is single-writer/multiple-
// reader within one goroutine; see spec.md §5 — there is no internal
// locking over mutable state.
type Collection[T any] struct {
	id string

	boxes    map[int64]*box[T]
	identity map[any]int64
	nextPK   int64

	indexes       []index.Index
	indexesByName map[string][]plan.Index
	memPos        map[string]int // attribute name -> indexMem slot
	memSlotOf     []int          // parallel to indexes: indexMem slot, or -1 if not memorising
	memIndexPos   []int          // indexMem slot -> position into indexes
	numMemorising int

	identityFn func(T) any
	attrs      map[string]func(T) any

	parser      sqlfilter.Parser
	planner     *plan.Planner
	optimizerCh optimize.Chain
	planCache   *lru.Cache[string, plan.Plan]

	logger logging.Logger
}

// New builds a Collection, applies opts, and bulk-loads objs. Index
// population for objs runs across a bounded worker pool, one goroutine per
// index: indexes share no state with each other, so this partition needs no
// synchronization at all between workers, unlike partitioning by object
// (which could race two workers into the same bucket of the same index).
// Construction owns the collection exclusively until New returns, so this
// does not contradict the single-writer model of spec.md §5.
func New[T any](objs []T, opts ...Opt[T]) (*Collection[T], error) {
	o := defaultOptions[T]()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Collection[T]{
		id:            uuid.NewString(),
		boxes:         make(map[int64]*box[T], len(objs)),
		identity:      make(map[any]int64, len(objs)),
		indexesByName: make(map[string][]plan.Index),
		memPos:        make(map[string]int),
		identityFn:    o.identity,
		attrs:         o.attrs,
		parser:        o.parser,
		planner:       o.planner,
		optimizerCh:   o.optimizerCh,
		planCache:     newPlanCache(o.planCacheLen),
		logger:        o.logger,
	}
	if c.identityFn == nil {
		c.identityFn = func(v T) any { return any(v) }
	}

	c.memSlotOf = make([]int, len(o.indexes))
	numMemorising := 0
	for i, idx := range o.indexes {
		c.indexes = append(c.indexes, idx)
		name := idx.Params().Name
		c.indexesByName[name] = append(c.indexesByName[name], idx)
		if idx.Params().Memorize {
			c.memPos[name] = numMemorising
			c.memSlotOf[i] = numMemorising
			c.memIndexPos = append(c.memIndexPos, i)
			numMemorising++
		} else {
			c.memSlotOf[i] = -1
		}
	}
	c.numMemorising = numMemorising

	if len(objs) == 0 {
		return c, nil
	}

	boxes := make([]*box[T], len(objs))
	for i, obj := range objs {
		pk := c.nextPK
		c.nextPK++
		boxes[i] = &box[T]{obj: obj, pk: pk, indexMem: make([][]any, c.numMemorising)}
	}

	if err := c.bulkIndex(boxes); err != nil {
		return nil, err
	}

	for _, b := range boxes {
		c.boxes[b.pk] = b
		c.identity[c.identityFn(b.obj)] = b.pk
	}

	c.logger.Debug("collection built", logging.Fields{
		"collection_id": c.id, "objects": len(objs), "indexes": len(c.indexes),
	})
	return c, nil
}

// bulkIndex populates every index over boxes concurrently, one goroutine
// per index.
func (c *Collection[T]) bulkIndex(boxes []*box[T]) error {
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, idx := range c.indexes {
		i, idx := i, idx
		g.Go(func() error {
			pos := c.memSlotOf[i]
			for _, b := range boxes {
				keys, err := idx.Add(b.pk, c, b.obj, nil)
				if err != nil {
					return err
				}
				if pos >= 0 {
					b.indexMem[pos] = keys
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Add inserts obj. A no-op if an object with the same identity is already
// present (spec.md §7's idempotent no-op). Indexes are updated in
// declaration order; if one rejects obj (e.g. a unique-constraint
// violation), the indexes already updated are unwound (see unwindAdd) so
// none is left holding the new row.
func (c *Collection[T]) Add(obj T) error {
	key := c.identityFn(obj)
	if _, ok := c.identity[key]; ok {
		return nil
	}

	pk := c.nextPK
	b := &box[T]{obj: obj, pk: pk, indexMem: make([][]any, c.numMemorising)}

	applied := 0
	for i, idx := range c.indexes {
		keys, err := idx.Add(pk, c, obj, nil)
		if err != nil {
			c.unwindAdd(pk, obj, applied)
			return err
		}
		if pos := c.memSlotOf[i]; pos >= 0 {
			b.indexMem[pos] = keys
		}
		applied++
	}

	c.nextPK++
	c.boxes[pk] = b
	c.identity[key] = pk
	c.logger.Debug("add", logging.Fields{"collection_id": c.id, "row_id": pk})
	return nil
}

// unwindAdd removes pk from the first n indexes, used when Add fails partway
// through the index list so no index is left holding a box that was never
// fully committed. Each already-applied index re-extracts its own keys from
// obj rather than relying on a memorised value, since the box was never
// stored.
func (c *Collection[T]) unwindAdd(pk int64, obj T, n int) {
	for i := 0; i < n; i++ {
		_ = c.indexes[i].Remove(pk, c, obj, nil)
	}
}

// Discard removes obj. A no-op if obj is not present (spec.md §7).
func (c *Collection[T]) Discard(obj T) error {
	key := c.identityFn(obj)
	pk, ok := c.identity[key]
	if !ok {
		return nil
	}
	return c.discardPK(pk, key)
}

func (c *Collection[T]) discardPK(pk int64, key any) error {
	b := c.boxes[pk]
	for i, idx := range c.indexes {
		var val []any
		if pos := c.memSlotOf[i]; pos >= 0 {
			val = b.indexMem[pos]
		}
		if err := idx.Remove(pk, c, b.obj, val); err != nil {
			return err
		}
	}
	delete(c.boxes, pk)
	delete(c.identity, key)
	c.logger.Debug("discard", logging.Fields{"collection_id": c.id, "row_id": pk})
	return nil
}

// Refresh re-derives every memorising index's value for obj and applies the
// difference. Non-memorising indexes are never touched by Refresh — spec.md
// §4.8 treats their value as constant for the object's lifetime. Returns a
// werr.NotFound error if obj is not present.
func (c *Collection[T]) Refresh(obj T) error {
	key := c.identityFn(obj)
	pk, ok := c.identity[key]
	if !ok {
		return werr.New(werr.NotFound, "collection: refresh of an object not present in the collection")
	}
	b := c.boxes[pk]
	b.obj = obj

	for pos, i := range c.memIndexPos {
		idx := c.indexes[i]
		oldVal := b.indexMem[pos]
		newVal, err := idx.MakeVal(c, obj)
		if err != nil {
			return err
		}
		if sameKeys(oldVal, newVal) {
			continue
		}
		refreshed, err := idx.Refresh(pk, c, obj, oldVal, newVal)
		if err != nil {
			return err
		}
		b.indexMem[pos] = refreshed
	}
	c.logger.Debug("refresh", logging.Fields{"collection_id": c.id, "row_id": pk})
	return nil
}

func sameKeys(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clear empties every index and drops every box. The row-id counter is
// never reset: spec.md §4.8 requires monotonic row-ids for the lifetime of
// the collection, so default iteration order stays reproducible even across
// a clear.
func (c *Collection[T]) Clear() {
	for _, idx := range c.indexes {
		idx.Clear()
	}
	c.boxes = make(map[int64]*box[T])
	c.identity = make(map[any]int64)
	c.logger.Debug("clear", logging.Fields{"collection_id": c.id})
}

// Contains reports whether obj (by identity) is present.
func (c *Collection[T]) Contains(obj T) bool {
	_, ok := c.identity[c.identityFn(obj)]
	return ok
}

// Len returns the number of objects currently stored.
func (c *Collection[T]) Len() int { return len(c.boxes) }

// All iterates every (row-id, object) pair, in ascending row-id order,
// matching spec.md §3's "row-ids define the deterministic default iteration
// order".
func (c *Collection[T]) All() func(func(int64, T) bool) {
	return func(yield func(int64, T) bool) {
		for _, pk := range c.sortedPKs() {
			if !yield(pk, c.boxes[pk].obj) {
				return
			}
		}
	}
}

func (c *Collection[T]) sortedPKs() []int64 {
	pks := make([]int64, 0, len(c.boxes))
	for pk := range c.boxes {
		pks = append(pks, pk)
	}
	sort.Slice(pks, func(i, j int) bool { return pks[i] < pks[j] })
	return pks
}

// Update adds every object produced by iter, in order; equivalent to
// calling Add in a loop.
func (c *Collection[T]) Update(iter func(func(T) bool)) error {
	var firstErr error
	iter(func(obj T) bool {
		if err := c.Add(obj); err != nil {
			firstErr = err
			return false
		}
		return true
	})
	return firstErr
}

// String renders a short identifying summary, useful in log lines and
// REPL prompts.
func (c *Collection[T]) String() string {
	return fmt.Sprintf("Collection[%T](id=%s, objects=%d, indexes=%d)", *new(T), c.id, len(c.boxes), len(c.indexes))
}
