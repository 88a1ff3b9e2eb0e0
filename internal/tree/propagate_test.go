package tree

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/jmoralo/bc3tree/internal/records"
)

func TestPropagate_AggregatesBottomUp(t *testing.T) {
	// Three leaves with own amounts 10, 20, 30 under one root with own
	// amount 5: root aggregate is 65.
	tr := mustBuild(t,
		[]records.Concept{
			concept("R", "0", 5),
			concept("A", "4", 10), concept("B", "4", 20), concept("C", "4", 30),
		},
		[]records.Decomposition{decomp("R", "A", "B", "C")},
		nil,
	)

	rep := Validate(tr)
	if err := Propagate(tr, rep); err != nil {
		t.Fatalf("propagate failed: %v", err)
	}

	root := tr.Nodes["R"]
	if !root.Aggregate.Equal(decimal.NewFromInt(65)) {
		t.Errorf("expected root aggregate 65, got %s", root.Aggregate)
	}
	if !root.Own.Equal(decimal.NewFromInt(5)) {
		t.Errorf("expected root own 5, got %s", root.Own)
	}
	if !tr.Meta.Total.Equal(decimal.NewFromInt(65)) {
		t.Errorf("expected budget total 65, got %s", tr.Meta.Total)
	}
}

func TestPropagate_QuantityBearingUsesMeasurementTotal(t *testing.T) {
	m := records.Measurement{
		ParentCode: "R",
		ChildCode:  "P",
		Lines: []records.MeasureLine{
			{Kind: records.LineKindNormal, Units: decimal.NewFromInt(2), Length: decimal.RequireFromString("1.5")},
			{Kind: records.LineKindNormal, Units: decimal.RequireFromString("0.5")},
		},
	}
	m.ComputeLines() // 2*1.5 + 0.5 = 3.5

	tr := mustBuild(t,
		[]records.Concept{concept("R", "0", 0), concept("P", "2", 2)},
		[]records.Decomposition{decomp("R", "P")},
		[]records.Measurement{m},
	)

	if err := Propagate(tr, Validate(tr)); err != nil {
		t.Fatalf("propagate failed: %v", err)
	}
	// own = 2 (price) * 3.5 (measured quantity), rounded once to 2dp.
	if got := tr.Nodes["P"].Own; !got.Equal(decimal.RequireFromString("7")) {
		t.Errorf("expected own 7, got %s", got)
	}
}

func TestPropagate_NonQuantityBearingIgnoresMeasurements(t *testing.T) {
	m := records.Measurement{ChildCode: "M", Lines: []records.MeasureLine{{Kind: records.LineKindNormal, Units: decimal.NewFromInt(9)}}}
	m.ComputeLines()

	tr := mustBuild(t,
		[]records.Concept{concept("M", "4", 3)},
		nil,
		[]records.Measurement{m},
	)

	if err := Propagate(tr, Validate(tr)); err != nil {
		t.Fatalf("propagate failed: %v", err)
	}
	if got := tr.Nodes["M"].Own; !got.Equal(decimal.NewFromInt(3)) {
		t.Errorf("material own must be the bare price, got %s", got)
	}
}

func TestPropagate_RefusedOnCycles(t *testing.T) {
	tr := mustBuild(t,
		[]records.Concept{concept("A", "0", 1), concept("B", "0", 2)},
		[]records.Decomposition{decomp("A", "B"), decomp("B", "A")},
		nil,
	)

	rep := Validate(tr)
	if rep.Valid {
		t.Fatal("fixture must be cyclic")
	}
	err := Propagate(tr, rep)
	if !errors.Is(err, ErrUnresolvedCycles) {
		t.Fatalf("expected ErrUnresolvedCycles, got %v", err)
	}
}

func TestPropagate_RefusedWithoutReport(t *testing.T) {
	tr := mustBuild(t, []records.Concept{concept("A", "0", 1)}, nil, nil)
	if err := Propagate(tr, nil); !errors.Is(err, ErrUnresolvedCycles) {
		t.Fatalf("expected refusal without a report, got %v", err)
	}
}

func TestPropagate_RoundingIsStable(t *testing.T) {
	m := records.Measurement{ChildCode: "P", ParentCode: "R",
		Lines: []records.MeasureLine{{Kind: records.LineKindNormal, Units: decimal.RequireFromString("3.333")}}}
	m.ComputeLines()

	build := func() decimal.Decimal {
		tr := mustBuild(t,
			[]records.Concept{concept("R", "0", 0), concept("P", "2", 7)},
			[]records.Decomposition{decomp("R", "P")},
			[]records.Measurement{m},
		)
		if err := Propagate(tr, Validate(tr)); err != nil {
			t.Fatalf("propagate failed: %v", err)
		}
		return tr.Meta.Total
	}

	first, second := build(), build()
	if !first.Equal(second) {
		t.Errorf("totals differ across runs: %s vs %s", first, second)
	}
	// 7 * 3.333 = 23.331, rounded once at own computation.
	if !first.Equal(decimal.RequireFromString("23.33")) {
		t.Errorf("expected 23.33, got %s", first)
	}
}
