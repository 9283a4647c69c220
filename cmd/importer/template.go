package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/daffodeal/marketplace/internal/ingest"
)

func newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Short:   "Write a sample import file",
		Example: "  importer template --out catalog.xlsx --rows 50",
		Args:    cobra.NoArgs,
		RunE:    runTemplate,
	}
	cmd.Flags().String("out", "", "Output path; the extension selects CSV or XLSX")
	cmd.Flags().Int("rows", 10, "Number of sample products")
	cmd.Flags().Uint64("seed", 1, "Seed for the generated rows")
	return cmd
}

func runTemplate(cmd *cobra.Command, _ []string) error {
	path, err := requireFlag(cmd, "out")
	if err != nil {
		return err
	}
	rows, _ := cmd.Flags().GetInt("rows")
	seed, _ := cmd.Flags().GetUint64("seed")
	if rows < 0 {
		return fmt.Errorf("--rows must not be negative, got %d", rows)
	}

	format, err := ingest.FormatFromFilename(path)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	if err := ingest.WriteTemplate(f, format, ingest.SampleRows(rows, seed)); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close template: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d sample products to %s\n", rows, path)
	return nil
}
