package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show knowledge base statistics",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	stats, err := askService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	cmd.Println("Knowledge base:")
	cmd.Printf("  Documents:   %d (%d completed)\n", stats.DocumentCount, stats.CompletedDocuments)
	cmd.Printf("  Chunks:      %d\n", stats.ChunkCount)
	cmd.Printf("  Vocabulary:  %d terms\n", stats.VocabularySize)
	cmd.Printf("  Index dim:   %d\n", stats.IndexDimension)
	if stats.Model != "" {
		cmd.Printf("  Model:       %s\n", stats.Model)
	}
	cmd.Println()
	cmd.Println("Configuration:")
	cmd.Printf("  top_k:                 %d\n", stats.Config.TopK)
	cmd.Printf("  temperature:           %.2f\n", stats.Config.Temperature)
	cmd.Printf("  max_tokens:            %d\n", stats.Config.MaxTokens)
	cmd.Printf("  chunk_size:            %d\n", stats.Config.ChunkSize)
	cmd.Printf("  chunk_overlap:         %d\n", stats.Config.ChunkOverlap)
	cmd.Printf("  similarity_threshold:  %.2f\n", stats.Config.SimilarityThreshold)
	return nil
}
