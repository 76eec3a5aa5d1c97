package cli

import (
	"github.com/spf13/cobra"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages",
	RunE:  runLanguages,
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}

func runLanguages(cmd *cobra.Command, _ []string) error {
	cmd.Println("Supported languages:")
	cmd.Println()
	for _, profile := range supportedLanguages() {
		role := "translated"
		switch {
		case profile.IsSource():
			role = "source"
		case !profile.Translatable:
			role = "disabled"
		}
		cmd.Printf("  %-6s %-12s %s\n", profile.Code, profile.DisplayName, role)
	}
	return nil
}
