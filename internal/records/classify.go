package records

// Tier is the hierarchy classification of a concept. The hierarchy heuristic
// in the tree package relies on tiers being ordered: a chapter can parent an
// item, an item can parent a material. Concepts whose type digit appears in
// none of the configured groups classify as TierUnknown and take no part in
// the heuristic.
type Tier int

const (
	TierUnknown Tier = iota
	TierChapter
	TierItem
	TierMaterial
)

func (t Tier) String() string {
	switch t {
	case TierChapter:
		return "chapter"
	case TierItem:
		return "item"
	case TierMaterial:
		return "material"
	default:
		return "unknown"
	}
}

// Above reports whether t sits strictly higher in the hierarchy than other.
// TierUnknown is never above or below anything.
func (t Tier) Above(other Tier) bool {
	if t == TierUnknown || other == TierUnknown {
		return false
	}
	return t < other
}

// QuantityBearing reports whether concepts of this tier carry measured
// quantities. Only work items do: chapters aggregate and materials are
// priced per unit through decomposition factors.
func (t Tier) QuantityBearing() bool {
	return t == TierItem
}

// Classification maps raw BC3 type digits onto tiers. The groups come from
// configuration so that files from non-standard generators can be
// reclassified without touching code.
type Classification struct {
	ChapterTypes  []string `yaml:"chapter_types"`
	ItemTypes     []string `yaml:"item_types"`
	MaterialTypes []string `yaml:"material_types"`
}

// DefaultClassification covers the standard FIEBDC-3 type digits:
// 0/1 chapters, 2/3 work items, 4/5 base materials.
func DefaultClassification() Classification {
	return Classification{
		ChapterTypes:  []string{"0", "1"},
		ItemTypes:     []string{"2", "3"},
		MaterialTypes: []string{"4", "5"},
	}
}

// Classify returns the tier for a raw type digit.
func (c Classification) Classify(typeCode string) Tier {
	for _, t := range c.ChapterTypes {
		if t == typeCode {
			return TierChapter
		}
	}
	for _, t := range c.ItemTypes {
		if t == typeCode {
			return TierItem
		}
	}
	for _, t := range c.MaterialTypes {
		if t == typeCode {
			return TierMaterial
		}
	}
	return TierUnknown
}
