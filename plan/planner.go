package plan

import "github.com/bzczb/wut/cond"

// Planner lowers a condition tree into a plan tree. Lowering is syntactic
// and local: And/Or become Intersect/Union of their lowered operands;
// everything else, including Not, becomes a ScanFilter to be evaluated by
// the matcher. A later optimizer pass may specialise ScanFilter nodes if a
// matching index exists, but Not is never turned into Difference here.
type Planner struct{}

// NewPlanner returns the default Planner. There is currently no
// configuration; it is a struct (rather than a function) so that a plan
// cache keyed on *Planner identity, or a future pluggable planner, has a
// stable type to hang off of.
func NewPlanner() *Planner { return &Planner{} }

// Plan lowers condition into a plan tree.
func (p *Planner) Plan(condition cond.Condition) Plan {
	if b, ok := condition.(cond.BinOp); ok {
		switch b.Op {
		case cond.And:
			return Intersect(p.Plan(b.Left), p.Plan(b.Right))
		case cond.Or:
			return Union(p.Plan(b.Left), p.Plan(b.Right))
		}
	}
	return ScanFilter{Condition: condition}
}
