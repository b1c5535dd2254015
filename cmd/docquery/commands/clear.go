// ABOUTME: CLI command to reset the vector index
// ABOUTME: Discards all vectors and metadata and persists the empty state
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearForce bool

// NewClearCmd creates the clear command
func NewClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the vector index",
		Long: `Discard all indexed vectors and metadata.

The reset is persisted immediately. Documents on disk are untouched
and can be re-ingested afterward.`,
		RunE: runClear,
	}

	cmd.Flags().BoolVarP(&clearForce, "force", "f", false, "Skip the confirmation prompt")

	return cmd
}

func runClear(cmd *cobra.Command, args []string) error {
	system, cleanup, err := newSystem()
	if err != nil {
		return err
	}
	defer cleanup()

	total := system.TotalVectors()
	if total == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "Index is already empty")
		}
		return nil
	}

	if !clearForce {
		fmt.Fprintf(cmd.OutOrStdout(), "Delete %d indexed vectors? [y/N]: ", total)
		var answer string
		fmt.Fscanln(cmd.InOrStdin(), &answer)
		if answer != "y" && answer != "Y" {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
			return nil
		}
	}

	if err := system.ClearIndex(); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d vectors\n", total)
	}
	return nil
}
