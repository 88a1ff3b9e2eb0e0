package tree

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/jmoralo/bc3tree/internal/records"
)

func propagatedFixture(t *testing.T) *Tree {
	t.Helper()
	tr := mustBuild(t,
		[]records.Concept{
			concept("R", "0", 5),
			concept("CAP2", "0", 0),
			concept("A", "2", 10), concept("B", "2", 20),
			concept("MAT", "4", 2),
		},
		[]records.Decomposition{decomp("R", "A", "B"), decomp("A", "MAT")},
		nil,
	)
	if err := Propagate(tr, Validate(tr)); err != nil {
		t.Fatalf("propagate failed: %v", err)
	}
	return tr
}

func TestExport_PreservesOrderAndAmounts(t *testing.T) {
	tr := propagatedFixture(t)
	out := tr.Export()

	if out.RootCount != 2 || len(out.Roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(out.Roots))
	}
	if out.Roots[0].Code != "R" || out.Roots[1].Code != "CAP2" {
		t.Errorf("root order must follow declaration order, got %s, %s", out.Roots[0].Code, out.Roots[1].Code)
	}

	r := out.Roots[0]
	if len(r.Children) != 2 || r.Children[0].Code != "A" || r.Children[1].Code != "B" {
		t.Fatalf("expected children [A B], got %v", r.Children)
	}
	// 5 + (10+2) + 20
	if !r.Aggregate.Equal(decimal.NewFromInt(37)) {
		t.Errorf("expected aggregate 37, got %s", r.Aggregate)
	}
	if mat := r.Children[0].Children[0]; mat.Code != "MAT" || mat.Level != 2 || mat.Path != "R > A > MAT" {
		t.Errorf("unexpected leaf entry: %+v", mat)
	}
}

func TestExport_RoundTripReproducesAdjacency(t *testing.T) {
	tr := propagatedFixture(t)
	out := tr.Export()

	// Flatten the nested export back into a parent -> children map.
	flat := make(map[string][]string)
	var walk func(parent string, nodes []*ExportNode)
	walk = func(parent string, nodes []*ExportNode) {
		for _, n := range nodes {
			flat[parent] = append(flat[parent], n.Code)
			walk(n.Code, n.Children)
		}
	}
	walk("", out.Roots)

	// Roots.
	if got := flat[""]; len(got) != len(tr.Roots) {
		t.Fatalf("root mismatch: %v vs %v", got, tr.Roots)
	}
	for i, r := range tr.Roots {
		if flat[""][i] != r {
			t.Fatalf("root mismatch: %v vs %v", flat[""], tr.Roots)
		}
	}
	// Every node's child list, in order.
	for _, code := range tr.Codes() {
		want := tr.Nodes[code].Children
		got := flat[code]
		if len(got) != len(want) {
			t.Fatalf("%s: children %v vs %v", code, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: children %v vs %v", code, got, want)
			}
		}
	}
}

func TestExport_DoesNotMutateTree(t *testing.T) {
	tr := propagatedFixture(t)
	before := tr.Stats()
	_ = tr.Export()
	after := tr.Stats()
	if before != after {
		t.Errorf("export must be side-effect free: %+v vs %+v", before, after)
	}
}
