package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shadefuzz/shadefuzz/pkg/api"
	"github.com/spf13/cobra"
)

var batchFlags struct {
	count     int
	startSeed int64
	outDir    string
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate a corpus of shader test cases",
	Long: `Repeatedly invokes the generate pipeline with sequential seeds
(startSeed, startSeed+1, ...), writing each accepted test case to its own
numbered subdirectory of --out.`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	f := batchCmd.Flags()
	f.IntVar(&batchFlags.count, "count", 10, "number of test cases to generate")
	f.Int64Var(&batchFlags.startSeed, "start-seed", 1, "first seed in the sequential run")
	f.StringVar(&batchFlags.outDir, "out", "corpus", "directory to write numbered test case subdirectories to")
}

func runBatch(cmd *cobra.Command, args []string) error {
	opts, _, err := loadOptions()
	if err != nil {
		return err
	}

	rejected := 0
	for i := 0; i < batchFlags.count; i++ {
		seed := uint64(batchFlags.startSeed) + uint64(i)
		opts.Seed = &seed

		result, err := api.Generate(opts)
		if err != nil {
			return fmt.Errorf("batch: seed %d: %w", seed, err)
		}
		if !result.Accepted {
			rejected++
			continue
		}

		caseDir := filepath.Join(batchFlags.outDir, fmt.Sprintf("%06d", i))
		if err := os.MkdirAll(caseDir, 0o755); err != nil {
			return fmt.Errorf("batch: %w", err)
		}
		if err := os.WriteFile(filepath.Join(caseDir, "shader.wgsl"), []byte(result.Source), 0o644); err != nil {
			return fmt.Errorf("batch: %w", err)
		}
		inputsJSON, err := json.MarshalIndent(result.Inputs, "", "  ")
		if err != nil {
			return fmt.Errorf("batch: marshal inputs: %w", err)
		}
		if err := os.WriteFile(filepath.Join(caseDir, "inputs.json"), inputsJSON, 0o644); err != nil {
			return fmt.Errorf("batch: %w", err)
		}
	}

	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d test cases, rejected %d\n", batchFlags.count-rejected, rejected)
	}
	return nil
}
