package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var detectFlagForeign bool

var detectCmd = &cobra.Command{
	Use:   "detect [text]",
	Short: "Detect the language of a text",
	Long: `Classifies a text against the supported languages. The local
classifier answers confident cases; ambiguous ones are escalated to the
configured LLM backend when one is set.

With --flag-foreign the cheap moderation path is used instead: local
classification only, and source-language text is reported as requiring
no action.`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().BoolVar(&detectFlagForeign, "flag-foreign", false, "moderation path: local only, source language means no action")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	if detectService == nil {
		return errors.New("detection service not configured")
	}

	ctx := context.Background()
	text := args[0]

	var (
		code string
		err  error
	)
	if detectFlagForeign {
		code, err = detectService.FlagForeign(ctx, text)
	} else {
		code, err = detectService.GuessLanguage(ctx, text)
	}
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	if code == "" {
		if detectFlagForeign {
			cmd.Println("No action needed.")
		} else {
			cmd.Println("Language could not be determined.")
		}
		return nil
	}

	cmd.Printf("Detected language: %s\n", code)
	return nil
}
