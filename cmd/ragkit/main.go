// Command ragkit is a local retrieval-augmented question answering
// tool: ingest documents, search them, and ask questions answered by a
// language model grounded in the retrieved passages.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	configfile "github.com/quaystone-labs/ragkit/internal/adapters/driven/config/file"
	"github.com/quaystone-labs/ragkit/internal/adapters/driven/extract"
	"github.com/quaystone-labs/ragkit/internal/adapters/driven/generation/openai"
	"github.com/quaystone-labs/ragkit/internal/adapters/driven/storage/sqlite"
	usagefile "github.com/quaystone-labs/ragkit/internal/adapters/driven/usage/file"
	"github.com/quaystone-labs/ragkit/internal/adapters/driving/cli"
	"github.com/quaystone-labs/ragkit/internal/chunker"
	"github.com/quaystone-labs/ragkit/internal/core/ports/driven"
	"github.com/quaystone-labs/ragkit/internal/core/services"
	"github.com/quaystone-labs/ragkit/internal/index/flat"
	"github.com/quaystone-labs/ragkit/internal/logger"
	"github.com/quaystone-labs/ragkit/internal/vectorizer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath, dataDir := cli.GlobalPaths(os.Args[1:])

	if cfgPath == "" {
		var err error
		cfgPath, err = configfile.DefaultPath()
		if err != nil {
			return err
		}
	}
	cfg, err := configfile.Load(cfgPath)
	if err != nil {
		return err
	}

	if dataDir == "" {
		dataDir = cfg.Storage.DataDir
	}
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragkit", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	docStore, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}
	defer docStore.Close()

	index, err := flat.Open(filepath.Join(dataDir, "index"))
	if err != nil {
		return fmt.Errorf("opening vector index: %w", err)
	}
	defer index.Close()

	retrieval := services.NewRetrievalService(vectorizer.New(), index)

	splitter, err := chunker.New(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("configuring chunker: %w", err)
	}

	extractors := extract.NewDefaultRegistry()
	ingestion := services.NewIngestionService(docStore, extractors, splitter, retrieval,
		services.WithMaxFileSize(cfg.Storage.MaxFileSizeBytes))

	usageStore, err := usagefile.NewStore(filepath.Join(dataDir, "token_usage.json"))
	if err != nil {
		return fmt.Errorf("opening usage ledger: %w", err)
	}
	ledger := services.NewUsageLedger(usageStore, cfg.Usage.DailyTokenLimit)

	var generation driven.GenerationService
	if cfg.Generation.APIKey != "" {
		client, err := openai.NewClient(openai.Config{
			APIKey:            cfg.Generation.APIKey,
			BaseURL:           cfg.Generation.BaseURL,
			Model:             cfg.Generation.Model,
			Timeout:           time.Duration(cfg.Generation.TimeoutSeconds) * time.Second,
			RequestsPerMinute: cfg.Generation.RequestsPerMinute,
		})
		if err != nil {
			return fmt.Errorf("configuring generation client: %w", err)
		}
		defer client.Close()
		generation = client
	} else {
		logger.Warn("no API key configured, ask and health are unavailable")
	}

	rag := services.NewRAGService(retrieval, generation, ledger, docStore,
		services.WithConfig(cfg.RAGConfig()),
		services.WithGenerationTimeout(time.Duration(cfg.Generation.TimeoutSeconds)*time.Second),
		services.WithStreaming(cfg.Generation.Stream))

	cli.Wire(cli.Services{
		Ingestor:     ingestion,
		Orchestrator: rag,
		Searcher:     rag,
		Usage:        ledger,
		SupportsFile: ingestion.Supports,
		ConfigPath:   cfgPath,
	})

	return cli.Execute()
}
