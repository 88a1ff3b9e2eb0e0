// Package records holds the flat, typed records produced by the BC3 parser
// and consumed by the tree engine. These are plain data carriers: all
// structure (parent/child links, levels, amounts) lives in the tree package.
package records

import "github.com/shopspring/decimal"

// Concept is one cost-budget entry (~C record): a chapter, a work item or a
// base material, identified by a code unique within one import.
type Concept struct {
	Code    string          `json:"code"`
	Unit    string          `json:"unit,omitempty"`
	Summary string          `json:"summary,omitempty"`
	Price   decimal.Decimal `json:"price"`
	Date    string          `json:"date,omitempty"`
	Type    string          `json:"type,omitempty"` // raw BC3 type digit, classified via Classification
}

// Component is one entry of a decomposition: a child code with its
// conversion factor and yield.
type Component struct {
	Code   string          `json:"code"`
	Factor decimal.Decimal `json:"factor"`
	Yield  decimal.Decimal `json:"yield"`
}

// Decomposition is an explicit parent→components relationship (~D record).
type Decomposition struct {
	ParentCode string      `json:"parent_code"`
	Components []Component `json:"components"`
}

// MeasureLine is a single quantity line of a measurement. For normal lines
// (Kind 1) Partial is the product of the dimension columns, absent
// dimensions counting as 1.
type MeasureLine struct {
	Kind    int             `json:"kind"`
	Comment string          `json:"comment,omitempty"`
	Units   decimal.Decimal `json:"units"`
	Length  decimal.Decimal `json:"length"`
	Width   decimal.Decimal `json:"width"`
	Height  decimal.Decimal `json:"height"`
	Partial decimal.Decimal `json:"partial"`
}

// Measurement attaches quantity lines to a parent–child concept pair
// (~M record). Total is the sum of the partials of the normal lines.
type Measurement struct {
	ParentCode string          `json:"parent_code"`
	ChildCode  string          `json:"child_code"`
	Position   int             `json:"position,omitempty"`
	Lines      []MeasureLine   `json:"lines"`
	Total      decimal.Decimal `json:"total"`
}

// ComputeLines fills in the partial of each normal line and the measurement
// total. Dimension columns left at zero are treated as 1, matching how BC3
// writers omit unused dimensions.
func (m *Measurement) ComputeLines() {
	one := decimal.NewFromInt(1)
	total := decimal.Zero
	for i := range m.Lines {
		ln := &m.Lines[i]
		if ln.Kind != LineKindNormal {
			continue
		}
		p := one
		for _, d := range []decimal.Decimal{ln.Units, ln.Length, ln.Width, ln.Height} {
			if !d.IsZero() {
				p = p.Mul(d)
			}
		}
		ln.Partial = p
		total = total.Add(p)
	}
	m.Total = total
}

// Line kinds as written in the measurement-line field.
const (
	LineKindNormal     = 1
	LineKindSubtotal   = 2
	LineKindExpression = 3
)
