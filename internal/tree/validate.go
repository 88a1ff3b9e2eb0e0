package tree

import "fmt"

// ReportStats summarizes a validation run.
type ReportStats struct {
	NodesValidated     int `json:"nodes_validated"`
	Cycles             int `json:"cycles"`
	Orphans            int `json:"orphans"`
	InconsistentLevels int `json:"inconsistent_levels"`
}

// Report is the structured outcome of validating one tree. Error and
// warning ordering is stable for identical input: codes appear in
// first-encounter traversal order over roots in declared order, then over
// remaining nodes in input order.
type Report struct {
	Valid    bool        `json:"valid"`
	Errors   []Issue     `json:"errors"`
	Warnings []Issue     `json:"warnings"`
	Stats    ReportStats `json:"stats"`
}

// Validate checks a raw tree for cycles, orphans and level inconsistencies.
// It never mutates structural edges; the only permitted mutation is
// correcting cached levels and ancestor paths, which is recorded as a
// warning rather than failing the import. A tree with cycle errors must not
// be propagated.
func Validate(t *Tree) *Report {
	rep := &Report{Stats: ReportStats{NodesValidated: len(t.Nodes)}}

	t.detectCycles(rep)
	t.detectOrphans(rep)
	t.normalizeLevels(rep)

	rep.Valid = len(rep.Errors) == 0
	return rep
}

// Traversal colors for cycle detection.
const (
	unvisited = iota
	inProgress
	done
)

// detectCycles runs a three-state depth-first traversal seeded from every
// unvisited node, not only from declared roots: a cycle can live among
// nodes never reachable from any root.
func (t *Tree) detectCycles(rep *Report) {
	state := make(map[string]int, len(t.Nodes))

	var stack []string
	var visit func(code string)
	visit = func(code string) {
		state[code] = inProgress
		stack = append(stack, code)

		for _, child := range t.Nodes[code].Children {
			switch state[child] {
			case inProgress:
				// Back-edge: the cycle is the stack segment from the first
				// occurrence of child, closed with child itself.
				start := 0
				for i, c := range stack {
					if c == child {
						start = i
						break
					}
				}
				path := append(append([]string{}, stack[start:]...), child)
				rep.Errors = append(rep.Errors, Issue{
					Kind:    IssueCircularReference,
					Codes:   append([]string{}, stack[start:]...),
					Path:    path,
					Message: fmt.Sprintf("circular reference involving %q", child),
				})
				rep.Stats.Cycles++
			case unvisited:
				visit(child)
			}
		}

		stack = stack[:len(stack)-1]
		state[code] = done
	}

	for _, root := range t.Roots {
		if state[root] == unvisited {
			visit(root)
		}
	}
	for _, code := range t.order {
		if state[code] == unvisited {
			visit(code)
		}
	}
}

// detectOrphans flags nodes whose stored parent code resolves to no known
// node. Roots carry an explicitly empty parent and are not orphans.
func (t *Tree) detectOrphans(rep *Report) {
	for _, code := range t.order {
		n := t.Nodes[code]
		if n.Parent == "" {
			continue
		}
		if _, ok := t.Nodes[n.Parent]; !ok {
			rep.Warnings = append(rep.Warnings, Issue{
				Kind:    IssueOrphan,
				Codes:   []string{code, n.Parent},
				Message: fmt.Sprintf("concept %q references unknown parent %q", code, n.Parent),
			})
			rep.Stats.Orphans++
		}
	}
}

// normalizeLevels recomputes levels by traversal from each declared root and
// corrects cached values that disagree, warning per mismatch.
func (t *Tree) normalizeLevels(rep *Report) {
	seen := make(map[string]bool, len(t.Nodes))

	type frame struct {
		code  string
		level int
		path  []string
	}
	for _, root := range t.Roots {
		queue := []frame{{code: root, level: 0}}
		for len(queue) > 0 {
			f := queue[0]
			queue = queue[1:]
			if seen[f.code] {
				continue // cycle guard: levels are meaningless inside cycles
			}
			seen[f.code] = true

			n := t.Nodes[f.code]
			if n.Level != f.level {
				rep.Warnings = append(rep.Warnings, Issue{
					Kind:    IssueLevelInconsistency,
					Codes:   []string{f.code, n.Parent},
					Message: fmt.Sprintf("concept %q cached level %d, expected %d; corrected", f.code, n.Level, f.level),
				})
				rep.Stats.InconsistentLevels++
				n.Level = f.level
				n.Path = f.path
			}
			childPath := append(append([]string{}, f.path...), f.code)
			for _, child := range n.Children {
				queue = append(queue, frame{code: child, level: f.level + 1, path: childPath})
			}
		}
	}
}
