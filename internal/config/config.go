// Package config loads the generator Options a shadefuzz run should use from
// a JSON file, so a project can pin its own corpus shape (struct counts,
// enabled builtins, a preset, ...) instead of passing every flag on the CLI
// each time.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/shadefuzz/shadefuzz/internal/builtins"
	"github.com/shadefuzz/shadefuzz/internal/generator"
)

func builtinFn(name string) builtins.Fn {
	return builtins.Fn(name)
}

// Config represents the configuration file structure.
// All fields are optional and will use Defaults() values if not specified.
type Config struct {
	Seed *uint64 `json:"seed,omitempty"`

	EnabledFns []string `json:"enabledFns,omitempty"`

	EnablePointers    *bool `json:"enablePointers,omitempty"`
	SkipPointerChecks *bool `json:"skipPointerChecks,omitempty"`

	FnMinStmts *uint32 `json:"fnMinStmts,omitempty"`
	FnMaxStmts *uint32 `json:"fnMaxStmts,omitempty"`

	BlockMinStmts *uint32 `json:"blockMinStmts,omitempty"`
	BlockMaxStmts *uint32 `json:"blockMaxStmts,omitempty"`

	MaxBlockDepth *uint32 `json:"maxBlockDepth,omitempty"`

	MaxFns *uint32 `json:"maxFns,omitempty"`

	MinStructs *uint32 `json:"minStructs,omitempty"`
	MaxStructs *uint32 `json:"maxStructs,omitempty"`

	MinStructMembers *uint32 `json:"minStructMembers,omitempty"`
	MaxStructMembers *uint32 `json:"maxStructMembers,omitempty"`

	Preset *string `json:"preset,omitempty"`

	Recondition *bool `json:"recondition,omitempty"`
}

// ConfigFileNames are the names searched for config files, in order of preference.
var ConfigFileNames = []string{
	"shadefuzz.json",
	".shadefuzzrc",
	".shadefuzzrc.json",
}

// Load walks upward from startDir, checking each directory in turn for one
// of ConfigFileNames, and loads the first one it finds. A nil Config with no
// error means the walk reached the filesystem root without finding one —
// callers fall back to generator.Defaults() in that case.
func Load(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				cfg, err := LoadFile(candidate)
				return cfg, candidate, err
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil // hit the root with nothing found
		}
		dir = parent
	}
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ToOptions converts a Config to generator.Options, using generator.Defaults()
// for unset fields.
func (c *Config) ToOptions() generator.Options {
	opts := generator.Defaults()

	if c.Seed != nil {
		opts.Seed = c.Seed
	}
	for _, name := range c.EnabledFns {
		opts.EnabledFns = append(opts.EnabledFns, builtinFn(name))
	}
	if c.EnablePointers != nil {
		opts.EnablePointers = *c.EnablePointers
	}
	if c.SkipPointerChecks != nil {
		opts.SkipPointerChecks = *c.SkipPointerChecks
	}
	if c.FnMinStmts != nil {
		opts.FnMinStmts = *c.FnMinStmts
	}
	if c.FnMaxStmts != nil {
		opts.FnMaxStmts = *c.FnMaxStmts
	}
	if c.BlockMinStmts != nil {
		opts.BlockMinStmts = *c.BlockMinStmts
	}
	if c.BlockMaxStmts != nil {
		opts.BlockMaxStmts = *c.BlockMaxStmts
	}
	if c.MaxBlockDepth != nil {
		opts.MaxBlockDepth = *c.MaxBlockDepth
	}
	if c.MaxFns != nil {
		opts.MaxFns = *c.MaxFns
	}
	if c.MinStructs != nil {
		opts.MinStructs = *c.MinStructs
	}
	if c.MaxStructs != nil {
		opts.MaxStructs = *c.MaxStructs
	}
	if c.MinStructMembers != nil {
		opts.MinStructMembers = *c.MinStructMembers
	}
	if c.MaxStructMembers != nil {
		opts.MaxStructMembers = *c.MaxStructMembers
	}
	if c.Preset != nil {
		preset := generator.Preset(*c.Preset)
		opts.Preset = &preset
	}
	if c.Recondition != nil {
		opts.Recondition = *c.Recondition
	}

	return opts
}

// MergeOptions carries CLI flag overrides (nil means not specified on CLI).
// CLI options take precedence over config file options.
type MergeOptions struct {
	Seed              *uint64
	EnablePointers    *bool
	SkipPointerChecks *bool
	MaxFns            *uint32
	MinStructs        *uint32
	MaxStructs        *uint32
	Preset            *string
	Recondition       *bool
	KeepEnabledFns    []string // appended to the config's EnabledFns, not replacing it
}

// Merge merges CLI options with config file options.
// CLI options override config file options when specified.
func (c *Config) Merge(cli MergeOptions) generator.Options {
	opts := c.ToOptions()

	if cli.Seed != nil {
		opts.Seed = cli.Seed
	}
	if cli.EnablePointers != nil {
		opts.EnablePointers = *cli.EnablePointers
	}
	if cli.SkipPointerChecks != nil {
		opts.SkipPointerChecks = *cli.SkipPointerChecks
	}
	if cli.MaxFns != nil {
		opts.MaxFns = *cli.MaxFns
	}
	if cli.MinStructs != nil {
		opts.MinStructs = *cli.MinStructs
	}
	if cli.MaxStructs != nil {
		opts.MaxStructs = *cli.MaxStructs
	}
	if cli.Preset != nil {
		preset := generator.Preset(*cli.Preset)
		opts.Preset = &preset
	}
	if cli.Recondition != nil {
		opts.Recondition = *cli.Recondition
	}
	for _, name := range cli.KeepEnabledFns {
		opts.EnabledFns = append(opts.EnabledFns, builtinFn(name))
	}

	return opts
}
