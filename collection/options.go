package collection

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bzczb/wut/index"
	"github.com/bzczb/wut/logging"
	"github.com/bzczb/wut/optimize"
	"github.com/bzczb/wut/plan"
	"github.com/bzczb/wut/sqlfilter"
)

// options holds the construction-time configuration for a Collection,
// populated by applying a sequence of Opt functions. It follows the same
// shape as the teacher's storage/inmem options: an unexported struct only
// ever mutated through With* functions, never exposed directly.
type options[T any] struct {
	indexes      []index.Index
	attrs        map[string]func(T) any
	identity     func(T) any
	parser       sqlfilter.Parser
	planner      *plan.Planner
	optimizerCh  optimize.Chain
	logger       logging.Logger
	planCacheLen int
}

func defaultOptions[T any]() options[T] {
	return options[T]{
		attrs:        map[string]func(T) any{},
		parser:       sqlfilter.NewParser(),
		planner:      plan.NewPlanner(),
		optimizerCh:  optimize.NewChain(),
		logger:       logging.NoOp(),
		planCacheLen: 128,
	}
}

// Opt configures a Collection at construction time.
type Opt[T any] func(*options[T])

// WithIndexes declares the indexes a Collection maintains, in order. Each
// argument is an already-constructed concrete index (index.NewHashIndex,
// index.NewRangeIndex or index.NewInvertedIndex) so the caller picks the
// kind explicitly rather than the collection inferring it from Params.
// Duplicate attribute names are allowed: the optimizer's UseIndex rule
// tries every index bound to an attribute, in declaration order, and uses
// the first that matches.
func WithIndexes[T any](idxs ...index.Index) Opt[T] {
	return func(o *options[T]) { o.indexes = append(o.indexes, idxs...) }
}

// WithAttrs registers computed attributes (names beginning with a
// back-tick) resolved through the given functions instead of direct field
// access.
func WithAttrs[T any](attrs map[string]func(T) any) Opt[T] {
	return func(o *options[T]) {
		for k, v := range attrs {
			o.attrs[k] = v
		}
	}
}

// WithIdentity supplies the object-identity function used by Add/Discard/
// Contains to detect whether an object is already present, for T shapes
// that are not directly comparable (see Identity in identity.go).
func WithIdentity[T any](identity func(T) any) Opt[T] {
	return func(o *options[T]) { o.identity = identity }
}

// WithParser overrides the default string-predicate parser.
func WithParser[T any](p sqlfilter.Parser) Opt[T] {
	return func(o *options[T]) { o.parser = p }
}

// WithPlanner overrides the default condition-to-plan lowering.
func WithPlanner[T any](p *plan.Planner) Opt[T] {
	return func(o *options[T]) { o.planner = p }
}

// WithOptimizer overrides the default optimizer rule chain.
func WithOptimizer[T any](c optimize.Chain) Opt[T] {
	return func(o *options[T]) { o.optimizerCh = c }
}

// WithLogger attaches a structured logger; the default is logging.NoOp.
func WithLogger[T any](l logging.Logger) Opt[T] {
	return func(o *options[T]) { o.logger = l }
}

// WithPlanCacheSize sets the capacity of the LRU cache mapping a string
// predicate to its compiled-and-optimized plan. A size of 0 disables the
// cache.
func WithPlanCacheSize[T any](n int) Opt[T] {
	return func(o *options[T]) { o.planCacheLen = n }
}

func newPlanCache(size int) *lru.Cache[string, plan.Plan] {
	if size <= 0 {
		return nil
	}
	c, err := lru.New[string, plan.Plan](size)
	if err != nil {
		// only possible when size <= 0, already excluded above.
		panic(err)
	}
	return c
}
