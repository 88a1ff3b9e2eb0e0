package tree

import (
	"fmt"
	"strings"
)

// ConstructionError aborts an import: the same concept code appeared twice
// in one file, so no unambiguous tree can be built.
type ConstructionError struct {
	Code string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("duplicate concept code %q", e.Code)
}

// StructuralLimitError aborts an import: attaching an edge placed a node at
// or beyond the configured depth bound.
type StructuralLimitError struct {
	Code  string
	Level int
	Limit int
}

func (e *StructuralLimitError) Error() string {
	return fmt.Sprintf("depth limit exceeded at %q: level %d, limit %d", e.Code, e.Level, e.Limit)
}

// IssueKind labels a diagnostic produced during resolution, construction or
// validation.
type IssueKind string

const (
	IssueDanglingReference  IssueKind = "dangling_reference"
	IssueDuplicateParent    IssueKind = "duplicate_parent"
	IssueHierarchyConflict  IssueKind = "hierarchy_conflict"
	IssueCircularReference  IssueKind = "circular_reference"
	IssueOrphan             IssueKind = "orphan"
	IssueLevelInconsistency IssueKind = "level_inconsistency"
)

// Issue is one accumulated diagnostic. Codes carries the affected concept
// codes; Path carries the full ordered cycle for circular references.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Codes   []string  `json:"codes,omitempty"`
	Path    []string  `json:"path,omitempty"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	if len(i.Path) > 0 {
		return fmt.Sprintf("%s: %s [%s]", i.Kind, i.Message, strings.Join(i.Path, " -> "))
	}
	return fmt.Sprintf("%s: %s", i.Kind, i.Message)
}
