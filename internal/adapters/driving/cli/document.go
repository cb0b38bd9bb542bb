package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage ingested documents",
	Long:  `List, inspect or delete ingested documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its indexed chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every document and its indexed chunks",
	Args:  cobra.NoArgs,
	RunE:  runDocumentClear,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentClearCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("document service not configured")
	}

	docs, err := ingestService.ListDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested yet.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for _, doc := range docs {
		cmd.Printf("  %s\n", doc.ID)
		cmd.Printf("    Name:    %s\n", doc.Filename)
		cmd.Printf("    Status:  %s\n", doc.Status)
		if doc.Status == domain.StatusCompleted {
			cmd.Printf("    Chunks:  %d\n", doc.ChunkCount)
		}
		if doc.ErrorMessage != "" {
			cmd.Printf("    Error:   %s\n", doc.ErrorMessage)
		}
		cmd.Println()
	}
	cmd.Printf("Total: %d document(s)\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("document service not configured")
	}

	doc, err := ingestService.GetDocument(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Name:     %s\n", doc.Filename)
	cmd.Printf("  Format:   %s\n", doc.Format)
	cmd.Printf("  Size:     %d bytes\n", doc.Size)
	cmd.Printf("  Status:   %s\n", doc.Status)
	cmd.Printf("  Text:     %d characters\n", doc.TextLength)
	cmd.Printf("  Chunks:   %d\n", doc.ChunkCount)
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:  %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	if doc.ErrorMessage != "" {
		cmd.Printf("  Error:    %s\n", doc.ErrorMessage)
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("document service not configured")
	}

	if err := ingestService.DeleteDocument(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	cmd.Printf("Document %s deleted.\n", args[0])
	return nil
}

func runDocumentClear(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("document service not configured")
	}

	docs, err := ingestService.ListDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	for _, doc := range docs {
		if err := ingestService.DeleteDocument(cmd.Context(), doc.ID); err != nil {
			return fmt.Errorf("failed to delete %s: %w", doc.ID, err)
		}
	}
	cmd.Printf("Deleted %d document(s).\n", len(docs))
	return nil
}
