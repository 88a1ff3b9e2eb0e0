package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jmoralo/bc3tree/internal/records"
)

// LoadClassification fills Config.Classification from the optional YAML
// file. Files from non-standard generators sometimes use their own type
// digits; the file lets operators remap them without a rebuild:
//
//	chapter_types: ["0", "1"]
//	item_types: ["2", "3"]
//	material_types: ["4", "5"]
//
// Groups missing from the file keep their standard defaults.
func (c *Config) LoadClassification() error {
	if c.ClassificationPath == "" {
		return nil
	}
	data, err := os.ReadFile(c.ClassificationPath)
	if err != nil {
		return fmt.Errorf("read classification file: %w", err)
	}

	cls := records.DefaultClassification()
	if err := yaml.Unmarshal(data, &cls); err != nil {
		return fmt.Errorf("parse classification file: %w", err)
	}
	applyClassificationDefaults(&cls)
	c.Classification = cls
	return nil
}

func applyClassificationDefaults(cls *records.Classification) {
	def := records.DefaultClassification()
	if len(cls.ChapterTypes) == 0 {
		cls.ChapterTypes = def.ChapterTypes
	}
	if len(cls.ItemTypes) == 0 {
		cls.ItemTypes = def.ItemTypes
	}
	if len(cls.MaterialTypes) == 0 {
		cls.MaterialTypes = def.MaterialTypes
	}
}
