// Package config loads the build-time configuration a paging-core
// binary is started with: which replacement policy is active (section
// 6, "exactly one of {SCFIFO, NFUA, LAPA, AQ, NONE}"), the capacity
// constants, and where swap files live. The teacher's kernel picks its
// equivalent knobs with conditional compilation; this package reaches
// for the same YAML-plus-struct-tags loading the wider example pack
// uses for its own fixture configuration, so the choice is a runtime
// value instead of a build tag.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// / Config_t is the full set of tunables a paging-core process is
// / constructed with.
type Config_t struct {
	// / Policy names the active replacement strategy: SCFIFO, NFUA,
	// / LAPA, AQ, or NONE.
	Policy string `yaml:"policy"`
	// / MaxTotalPages bounds the page-descriptor table
	// / (MAX_TOTAL_PAGES).
	MaxTotalPages int `yaml:"max_total_pages"`
	// / MaxPsycPages bounds the residency queue (MAX_PSYC_PAGES).
	MaxPsycPages int `yaml:"max_psyc_pages"`
	// / DefaultProcesses is the highest reserved PID exempt from
	// / swapping (init and shell).
	DefaultProcesses int `yaml:"default_processes"`
	// / SwapDir is the directory swap files are created under.
	SwapDir string `yaml:"swap_dir"`
}

// / Default returns the configuration used when no file is supplied:
// / SCFIFO with the capacities from the source's param.h defaults.
func Default() Config_t {
	return Config_t{
		Policy:           "SCFIFO",
		MaxTotalPages:    30,
		MaxPsycPages:     15,
		DefaultProcesses: 2,
		SwapDir:          os.TempDir(),
	}
}

// / Load reads and validates a YAML configuration file, filling in
// / Default()'s values for any field the file leaves zero.
func Load(path string) (Config_t, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return Config_t{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var parsed Config_t
	if err := yaml.Unmarshal(b, &parsed); err != nil {
		return Config_t{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if parsed.Policy != "" {
		cfg.Policy = parsed.Policy
	}
	if parsed.MaxTotalPages != 0 {
		cfg.MaxTotalPages = parsed.MaxTotalPages
	}
	if parsed.MaxPsycPages != 0 {
		cfg.MaxPsycPages = parsed.MaxPsycPages
	}
	if parsed.DefaultProcesses != 0 {
		cfg.DefaultProcesses = parsed.DefaultProcesses
	}
	if parsed.SwapDir != "" {
		cfg.SwapDir = parsed.SwapDir
	}
	return cfg.Validate()
}

// / Validate checks that the configuration names a real policy and has
// / sane, non-contradictory capacities.
func (c Config_t) Validate() (Config_t, error) {
	switch c.Policy {
	case "SCFIFO", "NFUA", "LAPA", "AQ", "NONE":
	default:
		return Config_t{}, fmt.Errorf("config: unknown policy %q", c.Policy)
	}
	if c.MaxPsycPages <= 0 || c.MaxTotalPages <= 0 {
		return Config_t{}, fmt.Errorf("config: capacities must be positive")
	}
	if c.MaxPsycPages > c.MaxTotalPages {
		return Config_t{}, fmt.Errorf("config: max_psyc_pages (%d) exceeds max_total_pages (%d)", c.MaxPsycPages, c.MaxTotalPages)
	}
	return c, nil
}
