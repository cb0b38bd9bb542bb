package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	configfile "github.com/quaystone-labs/ragkit/internal/adapters/driven/config/file"
	"github.com/quaystone-labs/ragkit/internal/logger"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or change retrieval settings",
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the active settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Changes a retrieval or generation setting, validated against its
allowed range. Settable keys: top_k, temperature, max_tokens,
chunk_size, chunk_overlap, similarity_threshold.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, _ []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	cfg := askService.Config()
	cmd.Printf("top_k                 = %d\n", cfg.TopK)
	cmd.Printf("temperature           = %g\n", cfg.Temperature)
	cmd.Printf("max_tokens            = %d\n", cfg.MaxTokens)
	cmd.Printf("chunk_size            = %d\n", cfg.ChunkSize)
	cmd.Printf("chunk_overlap         = %d\n", cfg.ChunkOverlap)
	cmd.Printf("similarity_threshold  = %g\n", cfg.SimilarityThreshold)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	key := args[0]
	value, err := parseConfigValue(args[1])
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	result := askService.UpdateConfig(map[string]any{key: value})
	if reason, rejected := result.Rejected[key]; rejected {
		return fmt.Errorf("%s rejected: %s", key, reason)
	}

	cmd.Printf("%s set to %v\n", key, value)
	persistConfig(cmd)
	return nil
}

// parseConfigValue interprets the CLI argument as an int where
// possible, falling back to float.
func parseConfigValue(raw string) (any, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f, nil
	}
	return nil, fmt.Errorf("expected a number, got %q", raw)
}

// persistConfig writes the active runtime settings back to the config
// file so they survive restarts. Best effort: a write failure leaves
// the in-memory change applied.
func persistConfig(cmd *cobra.Command) {
	if configPath == "" {
		return
	}

	appCfg, err := configfile.Load(configPath)
	if err != nil {
		logger.Warn("reload config for persist: %v", err)
		return
	}

	cfg := askService.Config()
	appCfg.Retrieval.TopK = cfg.TopK
	appCfg.Retrieval.Temperature = cfg.Temperature
	appCfg.Retrieval.MaxTokens = cfg.MaxTokens
	appCfg.Retrieval.ChunkSize = cfg.ChunkSize
	appCfg.Retrieval.ChunkOverlap = cfg.ChunkOverlap
	appCfg.Retrieval.SimilarityThreshold = cfg.SimilarityThreshold

	if err := configfile.Save(configPath, appCfg); err != nil {
		logger.Warn("persist config: %v", err)
		return
	}
	cmd.Printf("Saved to %s\n", configPath)
}
