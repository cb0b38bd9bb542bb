package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var usageHistory bool

var usageCmd = &cobra.Command{
	Use:   "usage [reset]",
	Short: "Show or reset daily token usage",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUsage,
}

func init() {
	usageCmd.Flags().BoolVar(&usageHistory, "history", false, "include past days")
	rootCmd.AddCommand(usageCmd)
}

func runUsage(cmd *cobra.Command, args []string) error {
	if usageService == nil {
		return errors.New("usage service not configured")
	}

	if len(args) == 1 {
		if args[0] != "reset" {
			return fmt.Errorf("unknown usage action %q", args[0])
		}
		if err := usageService.Reset(); err != nil {
			return fmt.Errorf("failed to reset usage: %w", err)
		}
		cmd.Println("Token usage reset.")
		return nil
	}

	snapshot, err := usageService.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to read usage: %w", err)
	}

	cmd.Printf("Token usage for %s:\n", snapshot.LastResetDate)
	cmd.Printf("  Used:       %d\n", snapshot.CurrentUsage)
	cmd.Printf("  Limit:      %d\n", snapshot.DailyLimit)
	cmd.Printf("  Remaining:  %d (%.1f%% used)\n", snapshot.Remaining, snapshot.UsagePercent)

	if !usageHistory {
		return nil
	}

	history, err := usageService.History()
	if err != nil {
		return fmt.Errorf("failed to read usage history: %w", err)
	}
	if len(history) == 0 {
		cmd.Println("\nNo usage history yet.")
		return nil
	}

	dates := make([]string, 0, len(history))
	for date := range history {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	cmd.Println("\nHistory:")
	for _, date := range dates {
		cmd.Printf("  %s  %d\n", date, history[date])
	}
	return nil
}
