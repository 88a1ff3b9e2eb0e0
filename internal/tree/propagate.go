package tree

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrUnresolvedCycles is returned when propagation is requested against a
// tree whose validation report still carries circular-reference errors.
var ErrUnresolvedCycles = errors.New("propagation refused: tree has unresolved circular references")

// Propagate performs the bottom-up cost aggregation in a single post-order
// pass: each node is visited exactly once.
//
//	own(node)       = unit price x measured quantity for quantity-bearing
//	                  concepts with measurements, else the price alone
//	aggregate(node) = own(node) + sum of child aggregates
//
// Rounding policy: the own amount is rounded to 2 decimal places exactly
// once, when computed; aggregates are exact sums of the rounded owns. This
// keeps results stable across runs for identical input.
//
// The caller must have validated the tree first; rep must show zero cycles
// or the call is refused. Only Own, Aggregate and Meta.Total are written.
func Propagate(t *Tree, rep *Report) error {
	if rep == nil {
		return fmt.Errorf("%w: no validation report", ErrUnresolvedCycles)
	}
	if rep.Stats.Cycles > 0 {
		return fmt.Errorf("%w: %d found", ErrUnresolvedCycles, rep.Stats.Cycles)
	}

	for _, code := range t.order {
		n := t.Nodes[code]
		n.Own = ownAmount(n)
	}

	visited := make(map[string]bool, len(t.Nodes))
	var aggregate func(code string) decimal.Decimal
	aggregate = func(code string) decimal.Decimal {
		n := t.Nodes[code]
		if visited[code] {
			return n.Aggregate
		}
		visited[code] = true
		total := n.Own
		for _, child := range n.Children {
			total = total.Add(aggregate(child))
		}
		n.Aggregate = total
		return total
	}

	budget := decimal.Zero
	for _, root := range t.Roots {
		budget = budget.Add(aggregate(root))
	}
	// Orphan subtrees get aggregates too; they just never count toward the
	// budget total.
	for _, code := range t.order {
		if !visited[code] {
			aggregate(code)
		}
	}
	t.Meta.Total = budget

	return nil
}

func ownAmount(n *Node) decimal.Decimal {
	if n.Tier.QuantityBearing() && len(n.Measurements) > 0 {
		return n.Concept.Price.Mul(n.MeasurementTotal()).Round(2)
	}
	return n.Concept.Price.Round(2)
}
