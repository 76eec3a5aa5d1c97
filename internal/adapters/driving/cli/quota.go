package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show translation provider usage",
	Long: `Reports how much of the translation character quota the current
billing period has consumed.`,
	RunE: runQuota,
}

func init() {
	rootCmd.AddCommand(quotaCmd)
}

func runQuota(cmd *cobra.Command, _ []string) error {
	if usageProvider == nil {
		return errors.New("translation provider not configured")
	}

	usage, err := usageProvider.Usage(context.Background())
	if err != nil {
		return fmt.Errorf("fetch usage: %w", err)
	}

	cmd.Printf("Characters used: %d of %d\n", usage.CharacterCount, usage.CharacterLimit)
	if usage.CharacterLimit > 0 {
		percent := float64(usage.CharacterCount) / float64(usage.CharacterLimit) * 100
		cmd.Printf("Quota consumed: %.1f%%\n", percent)
	}
	return nil
}
