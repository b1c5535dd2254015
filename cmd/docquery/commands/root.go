// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Entry point for all docquery CLI operations
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
	format  string
)

const banner = `
██████╗  ██████╗  ██████╗ ██████╗ ██╗   ██╗███████╗██████╗ ██╗   ██╗
██╔══██╗██╔═══██╗██╔════╝██╔═══██╗██║   ██║██╔════╝██╔══██╗╚██╗ ██╔╝
██║  ██║██║   ██║██║     ██║   ██║██║   ██║█████╗  ██████╔╝ ╚████╔╝
██║  ██║██║   ██║██║     ██║▄▄ ██║██║   ██║██╔══╝  ██╔══██╗  ╚██╔╝
██████╔╝╚██████╔╝╚██████╗╚██████╔╝╚██████╔╝███████╗██║  ██║   ██║
╚═════╝  ╚═════╝  ╚═════╝ ╚══▀▀═╝  ╚═════╝ ╚══════╝╚═╝  ╚═╝   ╚═╝
`

// NewRootCmd creates the root command with all subcommands
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docquery",
		Short: "Question answering over your documents",
		Long: banner + `
Docquery indexes local documents into an exact-search vector store and
answers questions grounded in the most relevant chunks, with source
attribution. Works against OpenAI or a local Ollama endpoint.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&format, "format", "auto", "Output format (auto, text, json)")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// Subcommands
	rootCmd.AddCommand(NewIngestCmd())
	rootCmd.AddCommand(NewQueryCmd())
	rootCmd.AddCommand(NewClearCmd())
	rootCmd.AddCommand(NewExportCmd())
	rootCmd.AddCommand(NewMCPCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
