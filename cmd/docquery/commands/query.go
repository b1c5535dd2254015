// ABOUTME: CLI command to ask questions over the indexed documents
// ABOUTME: Supports free-text answers and JSON-schema-constrained answers
package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"docquery/internal/models"
)

var (
	queryTopK   int
	querySchema string
)

// NewQueryCmd creates the query command
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [question]",
		Short: "Ask a question over the indexed documents",
		Long: `Answer a question grounded in the most relevant indexed chunks.

With --schema, the answer is constrained to a JSON schema read from
a file (or inline JSON starting with '{'). If the model output is
not valid JSON the answer degrades to raw text with an error marker.

Examples:
  docquery query "What is the refund policy?"
  docquery query "List the steps" --top-k 5
  docquery query "Summarize" --schema answer_schema.json --format json`,
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "Number of chunks to retrieve (default from configuration)")
	cmd.Flags().StringVar(&querySchema, "schema", "", "JSON schema file or inline JSON for structured answers")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := args[0]
	if queryTopK != 0 {
		if err := validatePositiveInt(queryTopK, "top-k"); err != nil {
			return err
		}
	}

	var responseFormat map[string]interface{}
	if querySchema != "" {
		schemaJSON := []byte(querySchema)
		if !strings.HasPrefix(strings.TrimSpace(querySchema), "{") {
			data, err := os.ReadFile(querySchema)
			if err != nil {
				return fmt.Errorf("reading schema file: %w", err)
			}
			schemaJSON = data
		}
		if err := json.Unmarshal(schemaJSON, &responseFormat); err != nil {
			return fmt.Errorf("schema is not valid JSON: %w", err)
		}
	}

	system, cleanup, err := newSystem()
	if err != nil {
		return err
	}
	defer cleanup()

	var response models.QueryResponse
	if responseFormat != nil {
		response, err = system.QueryStructured(question, responseFormat, queryTopK)
	} else {
		response, err = system.Query(question, queryTopK)
	}
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	return printQueryResponse(cmd, response)
}

func printQueryResponse(cmd *cobra.Command, response models.QueryResponse) error {
	if format == "json" {
		encoded, err := json.MarshalIndent(response, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding response: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
		return nil
	}

	switch answer := response.Answer.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), answer)
	default:
		encoded, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding answer: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	}

	if quiet || len(response.Sources) == 0 {
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "\nSources:")
	for _, src := range response.Sources {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s (score %.2f)\n", src.Document, src.Score)
		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", truncate(src.Text, 120))
		}
	}
	return nil
}
