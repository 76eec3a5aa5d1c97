package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/babelkb/babelkb/internal/core/domain"
)

var (
	searchMode  string
	searchLang  string
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the knowledge base",
	Long: `Searches one language's index for entries matching the query.
Vector mode runs semantic search with reranking and falls back to fuzzy
title matching when the vector backend is unavailable. Fuzzy mode
matches titles only.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchMode, "mode", "vector", "search mode: vector or fuzzy")
	searchCmd.Flags().StringVarP(&searchLang, "lang", "l", domain.SourceLanguage, "language code to search in")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	mode, err := domain.ParseSearchMode(searchMode)
	if err != nil {
		return err
	}

	response, err := searchService.Search(context.Background(), query, mode, searchLang, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, response)
	}

	return outputSearchTable(cmd, response)
}

func outputSearchJSON(cmd *cobra.Command, response domain.SearchResponse) error {
	data, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, response domain.SearchResponse) error {
	if len(response.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results for %q:\n", response.Query)
	cmd.Println()
	for i, result := range response.Results {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, result.Question, result.Score)
		if result.Answer != "" {
			cmd.Printf("      %s\n", snippet(result.Answer, 120))
		}
		if result.SourceURL != "" {
			cmd.Printf("      Source: %s\n", result.SourceURL)
		}
		cmd.Println()
	}

	return nil
}

// snippet truncates text on a rune boundary.
func snippet(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
