// ABOUTME: CLI command to ingest documents into the vector index
// ABOUTME: Chunks, embeds and persists every supported file in a directory
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"docquery/internal/models"
)

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [directory]",
		Short: "Index documents from a directory",
		Long: `Chunk, embed and index every supported document in a directory.

Uses the configured documents directory when no argument is given.
Re-ingesting the same directory appends duplicate vectors for
unchanged documents.

Examples:
  docquery ingest
  docquery ingest ./docs
  docquery ingest ./docs --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runIngest,
	}

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	system, cleanup, err := newSystem()
	if err != nil {
		return err
	}
	defer cleanup()

	dir := ""
	if len(args) > 0 {
		dir = args[0]
	}

	report, err := system.Ingest(dir)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if format == "json" {
		encoded, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
		return nil
	}

	if report.Status != models.StatusSuccess {
		return fmt.Errorf("%s", report.Message)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks (%d vectors total)\n",
			report.ChunksProcessed, report.TotalVectors)
		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "Batch: %s\n", report.BatchID)
		}
	}
	return nil
}
