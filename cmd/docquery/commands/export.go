// ABOUTME: CLI command to export the indexed documents and chunks
// ABOUTME: Writes the index contents as YAML or markdown
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"docquery/internal/index"
)

var (
	exportFormat string
	exportOutput string
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export indexed documents and chunks",
		Long: `Write every indexed document and its chunks to a file.

Chunks are grouped by source document in insertion order.

Examples:
  docquery export
  docquery export --export-format markdown --output corpus.md`,
		RunE: runExport,
	}

	// Not named --format, which is the persistent output-format flag
	cmd.Flags().StringVar(&exportFormat, "export-format", "yaml", "Export file format (yaml, markdown)")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default docquery-export.<ext>)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "yaml" && exportFormat != "markdown" {
		return fmt.Errorf("unsupported export format %q (yaml, markdown)", exportFormat)
	}

	system, cleanup, err := newSystem()
	if err != nil {
		return err
	}
	defer cleanup()

	data := index.Export(system.Store())
	if data.TotalVectors == 0 && !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "Index is empty, exporting anyway")
	}

	output := exportOutput
	if output == "" {
		if exportFormat == "markdown" {
			output = "docquery-export.md"
		} else {
			output = "docquery-export.yaml"
		}
	}

	if exportFormat == "markdown" {
		err = data.WriteMarkdown(output)
	} else {
		err = data.WriteYAML(output)
	}
	if err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d documents (%d chunks) to %s\n",
			len(data.Documents), data.TotalVectors, output)
	}
	return nil
}
