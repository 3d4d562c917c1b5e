package collection

import (
	"github.com/bzczb/wut/cond"
	"github.com/bzczb/wut/index"
	"github.com/bzczb/wut/plan"
	"github.com/bzczb/wut/werr"
)

// Plan lowers condition into an unoptimized plan tree.
func (c *Collection[T]) Plan(condition cond.Condition) plan.Plan {
	return c.planner.Plan(condition)
}

// Optimize runs the configured rule chain over p.
func (c *Collection[T]) Optimize(p plan.Plan) plan.Plan {
	return c.optimizerCh.Run(p, c)
}

// Execute interprets an optimized plan against the collection's current
// state.
func (c *Collection[T]) Execute(p plan.Plan) (index.RowSet, error) {
	return c.execute(p)
}

// Filter is the convenience form of plan+optimize+execute (spec.md §6).
// predicate is either a cond.Condition or a string parsed by the
// sqlfilter adapter; a string predicate's compiled-and-optimized plan is
// cached by raw string (see WithPlanCacheSize).
func (c *Collection[T]) Filter(predicate any) (index.RowSet, error) {
	var condition cond.Condition
	switch p := predicate.(type) {
	case cond.Condition:
		condition = p
	case string:
		cached, err := c.planFromString(p)
		if err != nil {
			return index.Empty, err
		}
		return c.execute(cached)
	default:
		return index.Empty, werr.New(werr.PredicateType, "filter: predicate must be a cond.Condition or string, got %T", predicate)
	}

	return c.execute(c.Optimize(c.Plan(condition)))
}

func (c *Collection[T]) planFromString(s string) (plan.Plan, error) {
	if c.planCache != nil {
		if p, ok := c.planCache.Get(s); ok {
			return p, nil
		}
	}
	condition, err := c.parser.Parse(s)
	if err != nil {
		return nil, err
	}
	p := c.Optimize(c.Plan(condition))
	if c.planCache != nil {
		c.planCache.Add(s, p)
	}
	return p, nil
}

// Objects iterates the objects named by ids, in the order given.
func (c *Collection[T]) Objects(ids []int64) func(func(T) bool) {
	return func(yield func(T) bool) {
		for _, id := range ids {
			b, ok := c.boxes[id]
			if !ok {
				continue
			}
			if !yield(b.obj) {
				return
			}
		}
	}
}

// ListObjects materialises Objects(ids) into a slice.
func (c *Collection[T]) ListObjects(ids []int64) []T {
	out := make([]T, 0, len(ids))
	c.Objects(ids)(func(obj T) bool {
		out = append(out, obj)
		return true
	})
	return out
}

// SortIDs orders ids per ordering; see sortIDs for the exact tiebreak rule.
func (c *Collection[T]) SortIDs(ids []int64, ordering []SortKey) ([]int64, error) {
	return c.sortIDs(ids, ordering)
}

// SortedObjects sorts ids then materialises the resulting objects.
func (c *Collection[T]) SortedObjects(ids []int64, ordering []SortKey) ([]T, error) {
	sorted, err := c.sortIDs(ids, ordering)
	if err != nil {
		return nil, err
	}
	return c.ListObjects(sorted), nil
}
