package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shadefuzz/shadefuzz/internal/config"
	"github.com/shadefuzz/shadefuzz/pkg/api"
	"github.com/spf13/cobra"
)

var genFlags struct {
	seed              int64
	enablePointers    bool
	skipPointerChecks bool
	maxFns            uint32
	minStructs        uint32
	maxStructs        uint32
	preset            string
	recondition       bool
	outDir            string
	enabledFns        []string
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one shader test case",
	Long: `Runs the full pipeline (generate -> concretize -> [recondition] ->
[alias check]) and writes the shader source plus its ShaderMetadata/inputs
JSON artifacts to the --out directory; when --out is omitted, only the
shader source is written, to stdout.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	f := generateCmd.Flags()
	f.Int64Var(&genFlags.seed, "seed", 0, "PRNG seed (0 means draw one)")
	f.BoolVar(&genFlags.enablePointers, "enable-pointers", false, "admit pointer/reference types")
	f.BoolVar(&genFlags.skipPointerChecks, "skip-pointer-checks", false, "bypass alias analysis even with pointers enabled")
	f.Uint32Var(&genFlags.maxFns, "max-fns", 0, "cap on synthesized functions (0 means use config/preset default)")
	f.Uint32Var(&genFlags.minStructs, "min-structs", 0, "minimum struct pool size (0 means use config/preset default)")
	f.Uint32Var(&genFlags.maxStructs, "max-structs", 0, "maximum struct pool size (0 means use config/preset default)")
	f.StringVar(&genFlags.preset, "preset", "", "named option bundle, e.g. \"tint\"")
	f.BoolVar(&genFlags.recondition, "recondition", false, "run the reconditioner before emitting the shader")
	f.StringVar(&genFlags.outDir, "out", "", "directory to write shader.wgsl/inputs.json to (stdout if omitted)")
	f.StringSliceVar(&genFlags.enabledFns, "enabled-fns", nil, "additional builtin function names to admit, appended to config/preset")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	opts, _, err := loadOptions()
	if err != nil {
		return err
	}

	result, err := api.Generate(opts)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if verbose && result.Diagnostics.Count() > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), result.Diagnostics.Format())
	}
	if !result.Accepted {
		fmt.Fprintf(cmd.ErrOrStderr(), "rejected: seed %d produced a potentially aliased module\n", result.Seed)
	}

	inputsJSON, err := json.MarshalIndent(result.Inputs, "", "  ")
	if err != nil {
		return fmt.Errorf("generate: marshal inputs: %w", err)
	}

	if genFlags.outDir == "" {
		fmt.Fprintln(cmd.OutOrStdout(), result.Source)
		return nil
	}

	if err := os.MkdirAll(genFlags.outDir, 0o755); err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	if err := os.WriteFile(filepath.Join(genFlags.outDir, "shader.wgsl"), []byte(result.Source), 0o644); err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	if err := os.WriteFile(filepath.Join(genFlags.outDir, "inputs.json"), inputsJSON, 0o644); err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	return nil
}

// loadOptions builds generator.Options from any discovered config file
// merged with this command's CLI flags, CLI flags taking precedence.
func loadOptions() (api.Options, string, error) {
	cfg, path, err := config.Load(".")
	if err != nil {
		return api.Options{}, "", fmt.Errorf("config: %w", err)
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	merge := config.MergeOptions{}
	if genFlags.seed != 0 {
		seed := uint64(genFlags.seed)
		merge.Seed = &seed
	}
	if generateCmd.Flags().Changed("enable-pointers") {
		merge.EnablePointers = &genFlags.enablePointers
	}
	if generateCmd.Flags().Changed("skip-pointer-checks") {
		merge.SkipPointerChecks = &genFlags.skipPointerChecks
	}
	if genFlags.maxFns != 0 {
		merge.MaxFns = &genFlags.maxFns
	}
	if genFlags.minStructs != 0 {
		merge.MinStructs = &genFlags.minStructs
	}
	if genFlags.maxStructs != 0 {
		merge.MaxStructs = &genFlags.maxStructs
	}
	if genFlags.preset != "" {
		merge.Preset = &genFlags.preset
	}
	if generateCmd.Flags().Changed("recondition") {
		merge.Recondition = &genFlags.recondition
	}
	if len(genFlags.enabledFns) > 0 {
		merge.KeepEnabledFns = genFlags.enabledFns
	}

	return cfg.Merge(merge), path, nil
}
