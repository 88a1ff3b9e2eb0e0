package tree

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jmoralo/bc3tree/internal/records"
)

// Edge is one candidate parent link for a concept. Factor and Yield are kept
// from the decomposition entry for cost weighting; heuristic edges carry
// neither.
type Edge struct {
	Parent            string
	Factor            decimal.Decimal
	Yield             decimal.Decimal
	FromDecomposition bool
}

// Resolution is the outcome of hierarchy resolution: at most one candidate
// parent edge per concept code, plus the accumulated warnings. Concepts
// absent from Edges become roots.
type Resolution struct {
	Edges    map[string]Edge
	Warnings []Issue
}

// Resolve infers parent edges for every concept. Explicit decomposition
// entries are the primary signal and always win; concepts without one fall
// back to a tier heuristic: the parent is the nearest preceding concept (in
// declaration order) of a strictly higher tier, subject to the depth bound.
// When the two signals disagree a hierarchy-conflict warning is recorded.
//
// A decomposition naming an unknown parent still produces edges toward that
// code: the children surface later as orphans instead of aborting the
// import. Components with no matching concept are dropped with a
// dangling-reference warning.
func Resolve(concepts []records.Concept, decomps []records.Decomposition, cfg Config) Resolution {
	res := Resolution{Edges: make(map[string]Edge)}

	index := make(map[string]int, len(concepts))
	for i, c := range concepts {
		if _, seen := index[c.Code]; !seen {
			index[c.Code] = i
		}
	}

	// Primary signal: explicit decompositions, in input order.
	for _, d := range decomps {
		if _, ok := index[d.ParentCode]; !ok {
			res.warn(Issue{
				Kind:    IssueDanglingReference,
				Codes:   []string{d.ParentCode},
				Message: fmt.Sprintf("decomposition parent %q has no matching concept", d.ParentCode),
			})
			// Edges are still recorded below so the children become orphan
			// candidates rather than silently turning into roots.
		}
		for _, comp := range d.Components {
			if _, ok := index[comp.Code]; !ok {
				res.warn(Issue{
					Kind:    IssueDanglingReference,
					Codes:   []string{comp.Code, d.ParentCode},
					Message: fmt.Sprintf("component %q of %q has no matching concept", comp.Code, d.ParentCode),
				})
				continue
			}
			if prev, claimed := res.Edges[comp.Code]; claimed {
				if prev.Parent != d.ParentCode {
					res.warn(Issue{
						Kind:    IssueDuplicateParent,
						Codes:   []string{comp.Code, prev.Parent, d.ParentCode},
						Message: fmt.Sprintf("concept %q already decomposed under %q, claim by %q ignored", comp.Code, prev.Parent, d.ParentCode),
					})
				}
				continue
			}
			res.Edges[comp.Code] = Edge{
				Parent:            d.ParentCode,
				Factor:            comp.Factor,
				Yield:             comp.Yield,
				FromDecomposition: true,
			}
		}
	}

	// Fallback heuristic, and conflict detection against the primary signal.
	tiers := make([]records.Tier, len(concepts))
	for i, c := range concepts {
		tiers[i] = cfg.Classification.Classify(c.Type)
	}
	// Implied level of each heuristic parent chain, used to honor the depth
	// bound without building the tree.
	implied := make(map[string]int, len(concepts))

	for i, c := range concepts {
		if index[c.Code] != i {
			continue // duplicate code, the builder aborts on these
		}
		candidate := precedingHigherTier(concepts, tiers, i)

		if edge, ok := res.Edges[c.Code]; ok {
			if candidate != "" && candidate != edge.Parent {
				res.warn(Issue{
					Kind:    IssueHierarchyConflict,
					Codes:   []string{c.Code, edge.Parent, candidate},
					Message: fmt.Sprintf("decomposition places %q under %q but tier heuristic suggests %q; decomposition wins", c.Code, edge.Parent, candidate),
				})
			}
			continue
		}
		if candidate == "" {
			continue // root
		}
		level := implied[candidate] + 1
		if cfg.MaxDepth > 0 && level >= cfg.MaxDepth {
			continue // edge would breach the depth bound, keep as root
		}
		implied[c.Code] = level
		res.Edges[c.Code] = Edge{Parent: candidate}
	}

	return res
}

// precedingHigherTier finds the nearest concept before position i that sits
// strictly higher in the hierarchy than concepts[i].
func precedingHigherTier(concepts []records.Concept, tiers []records.Tier, i int) string {
	own := tiers[i]
	for j := i - 1; j >= 0; j-- {
		if tiers[j].Above(own) {
			return concepts[j].Code
		}
	}
	return ""
}

func (r *Resolution) warn(i Issue) {
	r.Warnings = append(r.Warnings, i)
}
