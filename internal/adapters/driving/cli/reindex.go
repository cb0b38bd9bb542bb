package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the vector index from stored chunks",
	Long: `Refits the vocabulary over every completed document and rebuilds
the vector index. Run this after deleting documents or to give a grown
corpus full vocabulary resolution.`,
	Args: cobra.NoArgs,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	if err := ingestService.Reindex(cmd.Context()); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	cmd.Println("Reindex complete.")
	return nil
}
