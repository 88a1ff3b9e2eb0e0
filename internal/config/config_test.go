package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoralo/bc3tree/internal/records"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.Port == "" || cfg.WorkerCount <= 0 || cfg.MaxTreeDepth <= 0 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Classification.Classify("2") != records.TierItem {
		t.Error("default classification missing")
	}
}

func TestValidate_RequiresAPIKey(t *testing.T) {
	cfg := Load()
	cfg.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error without api key")
	}
	cfg.APIKey = "k"
	cfg.DatabasePath = "x.db"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoadClassification_OverridesGroups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classification.yaml")
	content := "chapter_types: [\"10\"]\nitem_types: [\"20\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	cfg.ClassificationPath = path
	if err := cfg.LoadClassification(); err != nil {
		t.Fatalf("load classification: %v", err)
	}

	if cfg.Classification.Classify("10") != records.TierChapter {
		t.Error("chapter override not applied")
	}
	if cfg.Classification.Classify("20") != records.TierItem {
		t.Error("item override not applied")
	}
	// Unspecified groups keep the standard digits.
	if cfg.Classification.Classify("4") != records.TierMaterial {
		t.Error("material defaults lost")
	}
	// Standard chapter digits were replaced.
	if cfg.Classification.Classify("0") == records.TierChapter {
		t.Error("expected chapter group to be replaced, not merged")
	}
}

func TestLoadClassification_NoPathIsNoop(t *testing.T) {
	cfg := Load()
	cfg.ClassificationPath = ""
	if err := cfg.LoadClassification(); err != nil {
		t.Errorf("empty path must be a no-op, got %v", err)
	}
}
