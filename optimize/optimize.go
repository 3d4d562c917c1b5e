// Package optimize implements the rule-based query optimizer: a fixed chain
// of rewrite rules applied to a plan.Plan before it reaches the executor.
// It mirrors utwutwb.optimize, translating each Python TransformerRule into
// a Go function built on plan.Transform.
package optimize

import (
	"github.com/bzczb/wut/cond"
	"github.com/bzczb/wut/plan"
)

// Context supplies the indexes available for a given attribute name. The
// collection package implements this; optimize has no notion of the
// concrete index types, only plan.Index.
type Context interface {
	Indexes(name string) []plan.Index
}

// Rule rewrites a plan once, given the indexes available through ctx.
type Rule func(p plan.Plan, ctx Context) plan.Plan

// transformRule adapts a bottom-up node rewrite (the shape every rule here
// happens to have) into a Rule via plan.Transform, mirroring
// utwutwb.optimize.TransformerRule.
func transformRule(nodeRewrite func(plan.Plan, Context) plan.Plan) Rule {
	return func(p plan.Plan, ctx Context) plan.Plan {
		return plan.Transform(p, func(node plan.Plan) plan.Plan {
			return nodeRewrite(node, ctx)
		})
	}
}

// MergeSetOps flattens a SetOp whose child is a SetOp of the same kind into
// one flat SetOp, e.g. Intersect(Intersect(a, b), c) -> Intersect(a, b, c).
var MergeSetOps Rule = transformRule(mergeSetOps)

func mergeSetOps(p plan.Plan, _ Context) plan.Plan {
	so, ok := p.(plan.SetOp)
	if !ok {
		return p
	}
	newInputs := make([]plan.Plan, 0, len(so.Inputs))
	for _, input := range so.Inputs {
		if child, ok := input.(plan.SetOp); ok && child.Kind == so.Kind {
			newInputs = append(newInputs, child.Inputs...)
		} else {
			newInputs = append(newInputs, input)
		}
	}
	so.Inputs = newInputs
	return so
}

// UseIndex replaces a ScanFilter whose condition is a binary comparison
// between an attribute and a value with an index lookup or range, when a
// matching index is available.
var UseIndex Rule = transformRule(useIndex)

func useIndex(p plan.Plan, ctx Context) plan.Plan {
	sf, ok := p.(plan.ScanFilter)
	if !ok {
		return p
	}
	binOp, ok := sf.Condition.(cond.BinOp)
	if !ok {
		return p
	}

	l, r := binOp.Left, binOp.Right
	_, lIsAttr := l.(cond.Attribute)
	_, rIsAttr := r.(cond.Attribute)

	var name string
	var operand cond.Condition
	switch {
	case lIsAttr && !rIsAttr:
		name, operand = l.(cond.Attribute).Name, r
	case rIsAttr && !lIsAttr:
		name, operand = r.(cond.Attribute).Name, l
	default:
		return p
	}

	for _, idx := range ctx.Indexes(name) {
		if matched, ok := idx.Match(binOp, operand); ok {
			return matched
		}
	}
	return p
}

// CombineRanges merges multiple IndexRange inputs of an Intersect that
// target the same index into a single, tighter IndexRange, collapsing to
// Empty if the combined range can never match anything.
var CombineRanges Rule = transformRule(combineRanges)

func combineRanges(p plan.Plan, _ Context) plan.Plan {
	so, ok := p.(plan.SetOp)
	if !ok || so.Kind != plan.KindIntersect {
		return p
	}

	type indexRanges struct {
		index  plan.Index
		ranges []plan.IndexRange
	}
	byIndex := map[plan.Index]*indexRanges{}
	var order []plan.Index
	var others []plan.Plan

	for _, input := range so.Inputs {
		ir, ok := input.(plan.IndexRange)
		if !ok {
			others = append(others, input)
			continue
		}
		group, seen := byIndex[ir.Index]
		if !seen {
			group = &indexRanges{index: ir.Index}
			byIndex[ir.Index] = group
			order = append(order, ir.Index)
		}
		group.ranges = append(group.ranges, ir)
	}

	var inputs []plan.Plan
	for _, idx := range order {
		group := byIndex[idx]
		if len(group.ranges) == 1 {
			inputs = append(inputs, group.ranges[0])
			continue
		}

		combinedRange := group.ranges[0].Range
		cmp := indexCompareFunc(idx)
		ok := true
		for _, next := range group.ranges[1:] {
			var combinedOk bool
			combinedRange, combinedOk = combinedRange.Combine(next.Range, cmp)
			if !combinedOk {
				ok = false
				break
			}
		}
		if !ok {
			return plan.Empty{}
		}
		inputs = append(inputs, plan.IndexRange{Index: idx, Range: combinedRange})
	}
	inputs = append(inputs, others...)

	if len(inputs) == 1 {
		return inputs[0]
	}
	return plan.SetOp{Kind: plan.KindIntersect, Inputs: inputs}
}

// indexCompareFunc returns the comparator used to order two IndexRange
// bound values for the same index. An index exposing RangeCompare supplies
// its own key ordering. Otherwise the fallback orders int64, uint64 and
// float64 values numerically (both values must have the same type); for any
// other type it only distinguishes equal (0) from unequal (1), which is not
// an ordering.
func indexCompareFunc(idx plan.Index) plan.CompareFunc {
	if cmp, ok := idx.(interface{ RangeCompare() plan.CompareFunc }); ok {
		return cmp.RangeCompare()
	}
	return func(a, b any) int {
		switch av := a.(type) {
		case int64:
			bv := b.(int64)
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		case uint64:
			bv := b.(uint64)
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		case float64:
			bv := b.(float64)
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		default:
			if a == b {
				return 0
			}
			return 1
		}
	}
}

// CombineFilters merges the ScanFilter inputs of an Intersect into a single
// ANDed condition, applied as a Filter over the remaining non-filter inputs
// (or as a bare ScanFilter if nothing else survives).
var CombineFilters Rule = transformRule(combineFilters)

func combineFilters(p plan.Plan, _ Context) plan.Plan {
	so, ok := p.(plan.SetOp)
	if !ok || so.Kind != plan.KindIntersect {
		return p
	}

	var others []plan.Plan
	var filters []plan.ScanFilter
	for _, input := range so.Inputs {
		if sf, ok := input.(plan.ScanFilter); ok {
			filters = append(filters, sf)
		} else {
			others = append(others, input)
		}
	}
	if len(filters) == 0 {
		return p
	}

	conds := make([]cond.Condition, len(filters))
	for i, f := range filters {
		conds[i] = f.Condition
	}
	combined := cond.And_(conds...)

	if len(others) == 0 {
		return plan.ScanFilter{Condition: combined}
	}
	var base plan.Plan
	if len(others) == 1 {
		base = others[0]
	} else {
		base = plan.SetOp{Kind: plan.KindIntersect, Inputs: others}
	}
	return plan.Filter{Condition: combined, Input: base}
}

// Chain runs a fixed sequence of rules over a plan, in order.
type Chain struct {
	Rules []Rule
}

// DefaultRules is the optimizer's standard rule order, matching
// utwutwb.optimize.Chain.DEFAULT_RULES.
var DefaultRules = []Rule{MergeSetOps, UseIndex, CombineRanges, CombineFilters}

// NewChain builds a Chain running DefaultRules. Pass rules explicitly to
// run a different or partial sequence (tests do this to isolate one rule).
func NewChain(rules ...Rule) Chain {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return Chain{Rules: rules}
}

// Run applies every rule in the chain in order, threading the rewritten
// plan from one rule into the next.
func (c Chain) Run(p plan.Plan, ctx Context) plan.Plan {
	for _, rule := range c.Rules {
		p = rule(p, ctx)
	}
	return p
}
