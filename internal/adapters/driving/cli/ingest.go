package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quaystone-labs/ragkit/internal/adapters/driving/watch"
)

var watchDir string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest documents into the knowledge base",
	Long: `Extracts text from the given files, splits it into chunks and
indexes them for retrieval. Supported formats: .txt, .md, .csv.

With --watch, ingests files as they appear in a directory instead of
taking paths as arguments. Watch mode runs until interrupted.`,
	Args: cobra.ArbitraryArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&watchDir, "watch", "w", "", "watch a directory and ingest new files")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	if watchDir != "" {
		return runWatch(cmd, watchDir)
	}

	if len(args) == 0 {
		return errors.New("no files given; pass file paths or --watch a directory")
	}

	ctx := cmd.Context()
	failures := 0
	for _, path := range args {
		doc, err := ingestService.IngestFile(ctx, path)
		if err != nil {
			failures++
			cmd.PrintErrf("  %s: %v\n", path, err)
			continue
		}
		cmd.Printf("  %s: %d chunks (%s)\n", doc.Filename, doc.ChunkCount, doc.ID)
	}

	if failures > 0 {
		return errors.New("some files failed to ingest")
	}
	cmd.Printf("Ingested %d file(s).\n", len(args))
	return nil
}

func runWatch(cmd *cobra.Command, dir string) error {
	if supportsFile == nil {
		return errors.New("ingest service not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s, press Ctrl-C to stop.\n", dir)

	watcher := watch.New(ingestService, supportsFile)
	if err := watcher.Run(ctx, dir); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
