package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the generation provider",
	Long:  `Sends a minimal request to the configured provider to verify the endpoint and credentials.`,
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	if err := askService.CheckHealth(cmd.Context()); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	cmd.Println("Generation provider is reachable.")
	return nil
}
