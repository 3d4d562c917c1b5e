package index

import "github.com/bzczb/wut/plan"

// Index is the full surface the collection package drives: every concrete
// index type (HashIndex, RangeIndex, InvertedIndex) satisfies it via the
// embedded base plus its own Match. It is a superset of plan.Index (String +
// Match), which is all the plan/optimize packages need.
type Index interface {
	plan.Index

	Params() Params
	MakeVal(ctx Context, obj any) ([]any, error)
	Add(pk int64, ctx Context, obj any, val []any) ([]any, error)
	Remove(pk int64, ctx Context, obj any, val []any) error
	Refresh(pk int64, ctx Context, obj any, oldVal, newVal []any) ([]any, error)
	Clear()
}

// Lookupable is implemented by indexes that can answer an equality probe
// directly (all of them). The executor type-asserts plan.IndexLookup.Index
// to this to avoid importing the concrete index types.
type Lookupable interface {
	Lookup(value any) RowSet
}

// Rangeable is implemented by indexes that can answer an ordered range scan
// (RangeIndex). The executor type-asserts plan.IndexRange.Index to this.
type Rangeable interface {
	Range(r plan.Range) RowSet
}
