package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
)

var (
	askJSON        bool
	askTopK        int
	askTemperature float64
	askMaxTokens   int
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question over the knowledge base",
	Long: `Retrieves the most relevant chunks for the question and asks the
configured language model for an answer grounded in them. Sources are
listed with each answer.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.Flags().IntVar(&askTopK, "top-k", 0, "override the number of chunks retrieved")
	askCmd.Flags().Float64Var(&askTemperature, "temperature", -1, "override the generation temperature")
	askCmd.Flags().IntVar(&askMaxTokens, "max-tokens", 0, "override the answer token cap")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	if err := applyAskOverrides(cmd); err != nil {
		return err
	}

	answer, err := askService.Ask(cmd.Context(), args[0], nil)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	return outputAnswerText(cmd, answer)
}

// applyAskOverrides pushes flag overrides through the validated config
// update path before asking.
func applyAskOverrides(cmd *cobra.Command) error {
	updates := make(map[string]any)
	if cmd.Flags().Changed("top-k") {
		updates["top_k"] = askTopK
	}
	if cmd.Flags().Changed("temperature") {
		updates["temperature"] = askTemperature
	}
	if cmd.Flags().Changed("max-tokens") {
		updates["max_tokens"] = askMaxTokens
	}
	if len(updates) == 0 {
		return nil
	}

	result := askService.UpdateConfig(updates)
	for field, reason := range result.Rejected {
		return fmt.Errorf("%s rejected: %s", field, reason)
	}
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer *domain.Answer) error {
	cmd.Println(answer.Text)

	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, src := range answer.Sources {
			cmd.Printf("  [%d] %s, chunk %d (%.2f)\n", src.Index, src.DocumentName, src.ChunkIndex+1, src.Score)
		}
	}

	if answer.ContextUsed {
		cmd.Println()
		cmd.Printf("Model: %s, tokens: %d, retrieval: %s, generation: %s\n",
			answer.Model,
			answer.TokensUsed,
			answer.RetrievalTime.Round(time.Millisecond),
			answer.GenerationTime.Round(time.Millisecond))
	}
	return nil
}
