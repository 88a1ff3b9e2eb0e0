package tree

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/jmoralo/bc3tree/internal/records"
)

func TestBuild_RootCountIsNodesMinusEdges(t *testing.T) {
	// 6 concepts, 3 acyclic edges -> exactly 3 roots.
	concepts := []records.Concept{
		concept("R1", "0", 0), concept("R2", "0", 0), concept("R3", "0", 0),
		concept("A", "2", 1), concept("B", "2", 2), concept("C", "2", 3),
	}
	decomps := []records.Decomposition{decomp("R1", "A"), decomp("R2", "B"), decomp("R3", "C")}

	tr := mustBuild(t, concepts, decomps, nil)
	if len(tr.Roots) != 3 {
		t.Errorf("expected 6-3=3 roots, got %d (%v)", len(tr.Roots), tr.Roots)
	}
}

func TestBuild_DuplicateCodeIsFatal(t *testing.T) {
	concepts := []records.Concept{concept("A", "2", 1), concept("A", "2", 2)}
	cfg := testConfig()
	res := Resolve(concepts, nil, cfg)

	tr, _, err := Build("dup.bc3", concepts, res, nil, cfg)
	if tr != nil {
		t.Fatal("no tree may be returned on duplicate code")
	}
	var ce *ConstructionError
	if !errors.As(err, &ce) || ce.Code != "A" {
		t.Fatalf("expected ConstructionError for A, got %v", err)
	}
}

func TestBuild_DepthLimitIsFatal(t *testing.T) {
	// An 11-deep linear chain with max depth 10 must abort with no tree.
	var concepts []records.Concept
	var decomps []records.Decomposition
	for i := 0; i < 11; i++ {
		concepts = append(concepts, concept(fmt.Sprintf("N%02d", i), "0", 0))
		if i > 0 {
			decomps = append(decomps, decomp(fmt.Sprintf("N%02d", i-1), fmt.Sprintf("N%02d", i)))
		}
	}

	cfg := testConfig() // MaxDepth 10
	res := Resolve(concepts, decomps, cfg)
	tr, _, err := Build("deep.bc3", concepts, res, nil, cfg)
	if tr != nil {
		t.Fatal("no tree may be returned on depth breach")
	}
	var sle *StructuralLimitError
	if !errors.As(err, &sle) {
		t.Fatalf("expected StructuralLimitError, got %v", err)
	}
	if sle.Limit != 10 {
		t.Errorf("expected limit 10 in error, got %d", sle.Limit)
	}
}

func TestBuild_TenDeepChainWithinLimit(t *testing.T) {
	var concepts []records.Concept
	var decomps []records.Decomposition
	for i := 0; i < 10; i++ {
		concepts = append(concepts, concept(fmt.Sprintf("N%02d", i), "0", 0))
		if i > 0 {
			decomps = append(decomps, decomp(fmt.Sprintf("N%02d", i-1), fmt.Sprintf("N%02d", i)))
		}
	}

	tr := mustBuild(t, concepts, decomps, nil)
	if tr.Meta.MaxDepth != 9 {
		t.Errorf("expected max level 9, got %d", tr.Meta.MaxDepth)
	}
}

func TestBuild_LevelsAndPaths(t *testing.T) {
	tr := mustBuild(t,
		[]records.Concept{concept("R", "0", 0), concept("A", "1", 0), concept("P", "2", 5)},
		[]records.Decomposition{decomp("R", "A"), decomp("A", "P")},
		nil,
	)

	for code, want := range map[string]int{"R": 0, "A": 1, "P": 2} {
		if got := tr.Nodes[code].Level; got != want {
			t.Errorf("%s: expected level %d, got %d", code, want, got)
		}
	}
	p := tr.Nodes["P"]
	if len(p.Path) != 2 || p.Path[0] != "R" || p.Path[1] != "A" {
		t.Errorf("expected path [R A], got %v", p.Path)
	}
}

func TestBuild_MeasurementsAttachToChild(t *testing.T) {
	m := records.Measurement{
		ParentCode: "R",
		ChildCode:  "A",
		Lines:      []records.MeasureLine{{Kind: records.LineKindNormal, Units: decimal.NewFromInt(3)}},
	}
	m.ComputeLines()

	tr := mustBuild(t,
		[]records.Concept{concept("R", "0", 0), concept("A", "2", 10)},
		[]records.Decomposition{decomp("R", "A")},
		[]records.Measurement{m},
	)

	a := tr.Nodes["A"]
	if len(a.Measurements) != 1 {
		t.Fatalf("expected 1 measurement on A, got %d", len(a.Measurements))
	}
	if !a.MeasurementTotal().Equal(decimal.NewFromInt(3)) {
		t.Errorf("expected measurement total 3, got %s", a.MeasurementTotal())
	}
}

func TestBuild_MeasurementWithUnknownCodesWarns(t *testing.T) {
	concepts := []records.Concept{concept("R", "0", 0)}
	measurements := []records.Measurement{
		{ParentCode: "R", ChildCode: "NOPE"},
		{ParentCode: "GHOST", ChildCode: "R"},
	}

	cfg := testConfig()
	res := Resolve(concepts, nil, cfg)
	tr, warnings, err := Build("m.bc3", concepts, res, measurements, cfg)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 dangling warnings, got %v", warnings)
	}
	for _, w := range warnings {
		if w.Kind != IssueDanglingReference {
			t.Errorf("expected dangling-reference kind, got %s", w.Kind)
		}
	}
	if len(tr.Nodes["R"].Measurements) != 0 {
		t.Error("measurements with unknown codes must be discarded")
	}
}

func TestBuild_CycleDoesNotTriggerDepthLimit(t *testing.T) {
	// Cycle members are unreachable from any root; level assignment must
	// not spin or misreport a depth breach. The validator owns this case.
	concepts := []records.Concept{concept("A", "0", 0), concept("B", "0", 0), concept("C", "0", 0)}
	decomps := []records.Decomposition{decomp("A", "B"), decomp("B", "C"), decomp("C", "A")}

	tr := mustBuild(t, concepts, decomps, nil)
	if len(tr.Roots) != 0 {
		t.Errorf("cycle members are not roots, got %v", tr.Roots)
	}
}
