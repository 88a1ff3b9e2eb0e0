// Package tree turns flat BC3 records into a validated concept hierarchy:
// hierarchy resolution, tree construction, integrity validation, bottom-up
// amount propagation and nested export.
//
// Parent/child relationships are code references into the tree's own node
// map, never object links: the tree exclusively owns every node, and cycle
// detection stays a pure traversal over keys. A tree is built once per
// imported file and is not mutated after the pipeline hands it to the
// exporter.
package tree

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jmoralo/bc3tree/internal/records"
)

// Config carries the immutable per-import settings. It is passed explicitly
// into each pipeline call; the engine keeps no ambient state.
type Config struct {
	// MaxDepth is the number of hierarchy levels allowed. A node assigned
	// level >= MaxDepth aborts construction.
	MaxDepth       int
	Classification records.Classification
}

// Node wraps one concept inside a tree. Parent is empty for roots; a
// non-empty parent code that resolves to no known node makes the node an
// orphan, which is a distinct condition from being a root.
type Node struct {
	Concept records.Concept
	Tier    records.Tier

	Parent   string
	Children []string // child codes in attachment order
	Level    int      // root = 0
	Path     []string // ancestor codes, root first, excluding this node

	Measurements []records.Measurement

	// Set by Propagate.
	Own       decimal.Decimal
	Aggregate decimal.Decimal
}

// IsRoot reports whether the node has no parent by design.
func (n *Node) IsRoot() bool { return n.Parent == "" }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// MeasurementTotal sums the totals of the attached measurements.
func (n *Node) MeasurementTotal() decimal.Decimal {
	total := decimal.Zero
	for _, m := range n.Measurements {
		total = total.Add(m.Total)
	}
	return total
}

// PathString renders the ancestor path including the node itself.
func (n *Node) PathString(sep string) string {
	if len(n.Path) == 0 {
		return n.Concept.Code
	}
	return strings.Join(append(append([]string{}, n.Path...), n.Concept.Code), sep)
}

// Meta is the tree-level bookkeeping carried alongside the node map.
type Meta struct {
	Source    string
	NodeCount int
	MaxDepth  int // deepest level observed
	Total     decimal.Decimal
}

// Tree is the complete concept hierarchy of one imported file. Codes are
// unique per tree; Roots preserves declaration order.
type Tree struct {
	Nodes map[string]*Node
	Roots []string
	Meta  Meta

	order []string // insertion order, for deterministic traversal
}

func newTree(source string) *Tree {
	return &Tree{
		Nodes: make(map[string]*Node),
		Meta:  Meta{Source: source},
	}
}

func (t *Tree) add(n *Node) error {
	code := n.Concept.Code
	if _, dup := t.Nodes[code]; dup {
		return &ConstructionError{Code: code}
	}
	t.Nodes[code] = n
	t.order = append(t.order, code)
	t.Meta.NodeCount = len(t.Nodes)
	return nil
}

// Codes returns the node codes in insertion order.
func (t *Tree) Codes() []string {
	return append([]string{}, t.order...)
}

// Stats summarizes the constructed structure for logging and job progress.
type Stats struct {
	Nodes             int `json:"nodes"`
	Roots             int `json:"roots"`
	Leaves            int `json:"leaves"`
	Relations         int `json:"relations"`
	MaxLevel          int `json:"max_level"`
	WithMeasurements  int `json:"nodes_with_measurements"`
	TotalMeasurements int `json:"total_measurements"`
}

// Stats walks the node map once and counts.
func (t *Tree) Stats() Stats {
	s := Stats{Nodes: len(t.Nodes), Roots: len(t.Roots), MaxLevel: t.Meta.MaxDepth}
	for _, code := range t.order {
		n := t.Nodes[code]
		if n.IsLeaf() {
			s.Leaves++
		}
		s.Relations += len(n.Children)
		if len(n.Measurements) > 0 {
			s.WithMeasurements++
		}
		s.TotalMeasurements += len(n.Measurements)
	}
	return s
}
