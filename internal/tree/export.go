package tree

import "github.com/shopspring/decimal"

// ExportNode is one entry of the nested export: the node's summary fields,
// its computed amounts, and its children in attachment order.
type ExportNode struct {
	Code             string          `json:"code"`
	Summary          string          `json:"summary,omitempty"`
	Unit             string          `json:"unit,omitempty"`
	Tier             string          `json:"tier"`
	Level            int             `json:"level"`
	Price            decimal.Decimal `json:"price"`
	MeasurementTotal decimal.Decimal `json:"measurement_total"`
	Own              decimal.Decimal `json:"own_amount"`
	Aggregate        decimal.Decimal `json:"aggregate_amount"`
	Path             string          `json:"path"`
	Children         []*ExportNode   `json:"children"`
}

// Export is the order-preserving nested rendering of a validated, propagated
// tree, ready for the persistence collaborator.
type Export struct {
	Source    string          `json:"source"`
	NodeCount int             `json:"node_count"`
	MaxDepth  int             `json:"max_depth"`
	RootCount int             `json:"root_count"`
	Total     decimal.Decimal `json:"total_amount"`
	Roots     []*ExportNode   `json:"roots"`
}

// Export renders the tree as an ordered nested structure. It is a pure
// transformation: no validation, no mutation.
func (t *Tree) Export() *Export {
	out := &Export{
		Source:    t.Meta.Source,
		NodeCount: t.Meta.NodeCount,
		MaxDepth:  t.Meta.MaxDepth,
		RootCount: len(t.Roots),
		Total:     t.Meta.Total,
	}
	for _, root := range t.Roots {
		out.Roots = append(out.Roots, t.exportNode(root))
	}
	return out
}

func (t *Tree) exportNode(code string) *ExportNode {
	n := t.Nodes[code]
	en := &ExportNode{
		Code:             code,
		Summary:          n.Concept.Summary,
		Unit:             n.Concept.Unit,
		Tier:             n.Tier.String(),
		Level:            n.Level,
		Price:            n.Concept.Price,
		MeasurementTotal: n.MeasurementTotal(),
		Own:              n.Own,
		Aggregate:        n.Aggregate,
		Path:             n.PathString(" > "),
		Children:         []*ExportNode{},
	}
	for _, child := range n.Children {
		en.Children = append(en.Children, t.exportNode(child))
	}
	return en
}
