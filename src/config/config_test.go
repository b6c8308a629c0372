package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if _, err := Default().Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
}

func TestLoadOverridesSelectively(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("policy: LAPA\nmax_total_pages: 64\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Policy != "LAPA" || cfg.MaxTotalPages != 64 {
		t.Fatalf("overridden fields wrong: %+v", cfg)
	}
	// Fields absent from the file keep Default()'s values.
	def := Default()
	if cfg.MaxPsycPages != def.MaxPsycPages || cfg.SwapDir != def.SwapDir {
		t.Fatalf("un-overridden fields drifted from defaults: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error reading a missing config file")
	}
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	os.WriteFile(path, []byte("policy: BOGUS\n"), 0644)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestValidateRejectsPsycExceedingTotal(t *testing.T) {
	c := Default()
	c.MaxPsycPages = c.MaxTotalPages + 1
	if _, err := c.Validate(); err == nil {
		t.Fatalf("expected error when max_psyc_pages exceeds max_total_pages")
	}
}

func TestValidateRejectsNonPositiveCapacities(t *testing.T) {
	c := Default()
	c.MaxTotalPages = 0
	if _, err := c.Validate(); err == nil {
		t.Fatalf("expected error for zero max_total_pages")
	}
}
