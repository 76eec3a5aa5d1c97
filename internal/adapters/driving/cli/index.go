package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	indexLang   string
	indexAll    bool
	unindexLang string
)

var indexCmd = &cobra.Command{
	Use:   "index [entry-id]",
	Short: "Translate and index entries",
	Long: `Translates an entry into every enabled language and writes the
records into the per-language indexes. With --lang only that language
is refreshed; with --all every known entry is reindexed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

var unindexCmd = &cobra.Command{
	Use:   "unindex [entry-id]",
	Short: "Remove an entry from the indexes",
	Long: `Removes every record of an entry from the per-language indexes.
With --lang only that language's namespace is touched. Records that are
already gone count as removed.`,
	Args: cobra.ExactArgs(1),
	RunE: runUnindex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexLang, "lang", "l", "", "reindex a single language")
	indexCmd.Flags().BoolVar(&indexAll, "all", false, "reindex every known entry")
	unindexCmd.Flags().StringVarP(&unindexLang, "lang", "l", "", "unindex a single language")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(unindexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if coordinator == nil {
		return errors.New("reindex coordinator not configured")
	}

	ctx := context.Background()

	if indexAll {
		if len(args) > 0 {
			return errors.New("--all cannot be combined with an entry id")
		}
		return indexAllEntries(ctx, cmd)
	}

	if len(args) == 0 {
		return errors.New("an entry id or --all is required")
	}
	entryID := args[0]

	if contentPlatform == nil {
		return errors.New("content platform not configured")
	}
	entry, err := contentPlatform.GetEntry(ctx, entryID)
	if err != nil {
		return fmt.Errorf("load entry %s: %w", entryID, err)
	}

	if indexLang != "" {
		if err := coordinator.TranslateAndIndexEntry(ctx, entry, indexLang); err != nil {
			return err
		}
		cmd.Printf("Indexed %s into %s\n", entryID, indexLang)
		return nil
	}

	if err := coordinator.TranslateAndIndexEntryAllLanguages(ctx, entry); err != nil {
		return err
	}
	cmd.Printf("Indexed %s into all languages\n", entryID)
	return nil
}

func indexAllEntries(ctx context.Context, cmd *cobra.Command) error {
	if contentPlatform == nil {
		return errors.New("content platform not configured")
	}

	entries, err := contentPlatform.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}

	var failed int
	for i := range entries {
		if err := coordinator.TranslateAndIndexEntryAllLanguages(ctx, &entries[i]); err != nil {
			cmd.PrintErrf("Entry %s: %v\n", entries[i].ID, err)
			failed++
		}
	}

	cmd.Printf("Indexed %d of %d entries\n", len(entries)-failed, len(entries))
	if failed > 0 {
		return fmt.Errorf("%d of %d entries failed", failed, len(entries))
	}
	return nil
}

func runUnindex(cmd *cobra.Command, args []string) error {
	if coordinator == nil {
		return errors.New("reindex coordinator not configured")
	}

	entryID := args[0]
	ctx := context.Background()

	if unindexLang != "" {
		if err := coordinator.UnindexEntry(ctx, entryID, unindexLang); err != nil {
			return err
		}
		cmd.Printf("Removed %s from %s\n", entryID, unindexLang)
		return nil
	}

	if err := coordinator.UnindexEntryAllLanguages(ctx, entryID); err != nil {
		return err
	}
	cmd.Printf("Removed %s from all languages\n", entryID)
	return nil
}
