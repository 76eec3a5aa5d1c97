package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/babelkb/babelkb/internal/core/domain"
	"github.com/babelkb/babelkb/internal/core/ports/driven"
)

var glossaryLang string

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Manage translation glossaries",
}

var glossarySyncCmd = &cobra.Command{
	Use:   "sync [terms.tsv]",
	Short: "Replace a language's glossary from a TSV file",
	Long: `Reads tab-separated source/target term pairs from a file and
replaces the target language's glossary with them. Terms with template
placeholders, line breaks, empty sides or oversized text are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runGlossarySync,
}

func init() {
	glossarySyncCmd.Flags().StringVarP(&glossaryLang, "lang", "l", "", "target language code (required)")
	_ = glossarySyncCmd.MarkFlagRequired("lang")
	glossaryCmd.AddCommand(glossarySyncCmd)
	rootCmd.AddCommand(glossaryCmd)
}

func runGlossarySync(cmd *cobra.Command, args []string) error {
	if translation == nil {
		return errors.New("translation service not configured")
	}

	profile, err := profileForCode(glossaryLang)
	if err != nil {
		return err
	}

	terms, err := readGlossaryTSV(args[0])
	if err != nil {
		return err
	}
	if len(terms) == 0 {
		return fmt.Errorf("%w: no terms in %s", domain.ErrInvalidInput, args[0])
	}

	kept := translation.FilterGlossaryTerms(terms)
	if err := translation.UpdateGlossary(context.Background(), kept, profile); err != nil {
		return fmt.Errorf("update glossary: %w", err)
	}

	cmd.Printf("Glossary for %s updated: %d terms (%d skipped)\n",
		profile.Code, len(kept), len(terms)-len(kept))
	return nil
}

func profileForCode(code string) (domain.LanguageProfile, error) {
	for _, p := range supportedLanguages() {
		if p.Code == code {
			return p, nil
		}
	}
	return domain.LanguageProfile{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedLanguage, code)
}

// readGlossaryTSV parses source<TAB>target pairs, one per line. Blank
// lines and lines starting with # are skipped.
func readGlossaryTSV(path string) ([]driven.GlossaryTerm, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open glossary file: %w", err)
	}
	defer file.Close() //nolint:errcheck // Read-only file

	var terms []driven.GlossaryTerm
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		source, target, found := strings.Cut(line, "\t")
		if !found {
			return nil, fmt.Errorf("%w: line %q has no tab separator", domain.ErrInvalidInput, line)
		}
		terms = append(terms, driven.GlossaryTerm{
			Source: strings.TrimSpace(source),
			Target: strings.TrimSpace(target),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read glossary file: %w", err)
	}
	return terms, nil
}
