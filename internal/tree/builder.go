package tree

import (
	"fmt"

	"github.com/jmoralo/bc3tree/internal/records"
)

// Build assembles concepts and resolved edges into an indexed tree with
// attached measurements. It either returns a complete tree or fails fast
// with a fatal error; no partial tree is ever handed downstream.
//
// Fatal conditions: a duplicate concept code (ConstructionError) and a node
// landing at or beyond cfg.MaxDepth while levels are assigned
// (StructuralLimitError). Measurements naming unknown codes are dropped into
// the warning list instead.
func Build(source string, concepts []records.Concept, res Resolution, measurements []records.Measurement, cfg Config) (*Tree, []Issue, error) {
	t := newTree(source)
	var warnings []Issue

	for _, c := range concepts {
		n := &Node{
			Concept: c,
			Tier:    cfg.Classification.Classify(c.Type),
		}
		if err := t.add(n); err != nil {
			return nil, nil, err
		}
	}

	// Attach edges in node declaration order so child lists are
	// deterministic regardless of decomposition order.
	for _, code := range t.order {
		edge, ok := res.Edges[code]
		if !ok {
			continue
		}
		child := t.Nodes[code]
		child.Parent = edge.Parent
		if parent, known := t.Nodes[edge.Parent]; known {
			parent.Children = append(parent.Children, code)
		}
		// An unknown parent code stays recorded on the child: the validator
		// classifies it as an orphan, distinct from a root.
	}

	for _, code := range t.order {
		if t.Nodes[code].IsRoot() {
			t.Roots = append(t.Roots, code)
		}
	}

	if err := t.assignLevels(cfg.MaxDepth); err != nil {
		return nil, nil, err
	}

	warnings = append(warnings, t.attachMeasurements(measurements)...)

	return t, warnings, nil
}

// assignLevels walks breadth-first from the declared roots, setting each
// node's level and ancestor path. Nodes unreachable from any root (orphans,
// cycle members) keep level 0 until the validator looks at them.
func (t *Tree) assignLevels(maxDepth int) error {
	queue := append([]string{}, t.Roots...)
	for len(queue) > 0 {
		code := queue[0]
		queue = queue[1:]
		n := t.Nodes[code]
		if n.Level > t.Meta.MaxDepth {
			t.Meta.MaxDepth = n.Level
		}
		for _, childCode := range n.Children {
			child := t.Nodes[childCode]
			child.Level = n.Level + 1
			child.Path = append(append([]string{}, n.Path...), code)
			if maxDepth > 0 && child.Level >= maxDepth {
				return &StructuralLimitError{Code: childCode, Level: child.Level, Limit: maxDepth}
			}
			queue = append(queue, childCode)
		}
	}
	return nil
}

// attachMeasurements groups measurements by (parent, child) pair and hangs
// them on the child node. Unknown codes discard the measurement with a
// dangling-reference warning.
func (t *Tree) attachMeasurements(measurements []records.Measurement) []Issue {
	var warnings []Issue
	for _, m := range measurements {
		child, ok := t.Nodes[m.ChildCode]
		if !ok {
			warnings = append(warnings, Issue{
				Kind:    IssueDanglingReference,
				Codes:   []string{m.ChildCode, m.ParentCode},
				Message: fmt.Sprintf("measurement for unknown concept %q dropped", m.ChildCode),
			})
			continue
		}
		if m.ParentCode != "" {
			if _, ok := t.Nodes[m.ParentCode]; !ok {
				warnings = append(warnings, Issue{
					Kind:    IssueDanglingReference,
					Codes:   []string{m.ParentCode, m.ChildCode},
					Message: fmt.Sprintf("measurement references unknown parent %q, dropped", m.ParentCode),
				})
				continue
			}
		}
		child.Measurements = append(child.Measurements, m)
	}
	return warnings
}
