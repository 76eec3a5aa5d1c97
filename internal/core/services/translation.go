package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/babelkb/babelkb/internal/core/domain"
	"github.com/babelkb/babelkb/internal/core/ports/driven"
	"github.com/babelkb/babelkb/internal/logger"
)

// glossaryTermMaxLen is the provider's per-term length ceiling.
const glossaryTermMaxLen = 1024

// templateToken matches unresolved template variables. Term pairs still
// carrying one are not valid glossary material.
var templateToken = regexp.MustCompile(`\{\{[^}]*\}\}|\{[A-Za-z_][A-Za-z0-9_]*\}`)

// TranslatedEntry is the output of translating an entry's text fields.
type TranslatedEntry struct {
	// Title is the translated entry title.
	Title string

	// Parts holds the translated part bodies, in entry part order.
	Parts []string
}

// Translation translates an entry's text fields into a target language.
// It batches single-part entries into one combined request, fans out
// per part for multi-part entries, and chunks text by line so the
// provider cannot collapse line breaks in list content.
type Translation struct {
	provider driven.TranslationProvider
	settings driven.SettingsStore
	retrier  *Retrier
	profiles []domain.LanguageProfile
}

// NewTranslation creates the translation pipeline.
func NewTranslation(
	provider driven.TranslationProvider,
	settings driven.SettingsStore,
	retrier *Retrier,
	profiles []domain.LanguageProfile,
) (*Translation, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: translation provider", domain.ErrMissingConfig)
	}

	return &Translation{
		provider: provider,
		settings: settings,
		retrier:  retrier,
		profiles: profiles,
	}, nil
}

// Translate converts an entry's title and parts into the target
// language. It fails with domain.ErrTranslationDisabled when the
// administrative kill-switch is set, and with the provider's error
// after retry exhaustion.
func (t *Translation) Translate(ctx context.Context, entry *domain.Entry, target domain.LanguageProfile) (*TranslatedEntry, error) {
	if err := t.checkEnabled(); err != nil {
		return nil, err
	}
	if target.IsSource() {
		return nil, fmt.Errorf("%w: cannot translate into the source language", domain.ErrInvalidInput)
	}
	if !target.Translatable {
		return nil, fmt.Errorf("%w: %s has no translation memory", domain.ErrUnsupportedLanguage, target.Code)
	}

	if len(entry.Parts) <= 1 {
		return t.translateCombined(ctx, entry, target)
	}
	return t.translateParts(ctx, entry, target)
}

// EstimateCost returns the monetary cost of translating charCount
// characters into languageCount languages at the configured
// per-character price.
func (t *Translation) EstimateCost(charCount, languageCount int) float64 {
	unitCost := 0.0
	if t.settings != nil {
		unitCost = t.settings.GetFloat(driven.SettingUnitCost)
	}
	return float64(charCount) * float64(languageCount) * unitCost
}

// FilterGlossaryTerms drops term pairs that are not valid glossary
// material: unresolved template variables on either side, terms over
// the provider length ceiling, or terms containing line breaks.
// Dropped pairs are logged, not fatal.
func (t *Translation) FilterGlossaryTerms(terms []driven.GlossaryTerm) []driven.GlossaryTerm {
	kept := make([]driven.GlossaryTerm, 0, len(terms))
	for _, term := range terms {
		if err := validateGlossaryTerm(term); err != nil {
			logger.Warn("Skipping glossary term %q: %v", term.Source, err)
			continue
		}
		kept = append(kept, term)
	}
	return kept
}

// UpdateGlossary filters the given term pairs and pushes the valid ones
// to the provider's glossary for every translatable profile.
func (t *Translation) UpdateGlossary(ctx context.Context, terms []driven.GlossaryTerm, target domain.LanguageProfile) error {
	if err := t.checkEnabled(); err != nil {
		return err
	}

	valid := t.FilterGlossaryTerms(terms)
	if len(valid) == 0 {
		logger.Info("No valid glossary terms for %s", target.Code)
		return nil
	}

	return t.retrier.Do(ctx, "update glossary", func(ctx context.Context) error {
		return t.provider.UpdateGlossary(ctx, target.BackendCode, valid)
	})
}

// checkEnabled consults the kill-switch before every provider call.
func (t *Translation) checkEnabled() error {
	if t.settings == nil {
		return nil
	}
	if v, ok := t.settings.Get(driven.SettingTranslationEnabled); ok {
		if enabled, isBool := v.(bool); isBool && !enabled {
			return domain.ErrTranslationDisabled
		}
	}
	return nil
}

// translateCombined handles zero- or single-part entries with one
// combined request: the title rides along as the first chunk of the
// body call, and the response is split back afterwards. This halves
// round trips for the common single-part case.
func (t *Translation) translateCombined(ctx context.Context, entry *domain.Entry, target domain.LanguageProfile) (*TranslatedEntry, error) {
	body := ""
	if len(entry.Parts) == 1 {
		body = entry.Parts[0].Body
	}

	translated, err := t.translateText(ctx, entry.Title+"\n"+body, target)
	if err != nil {
		return nil, fmt.Errorf("translate entry %s: %w", entry.ID, err)
	}

	title, translatedBody, _ := strings.Cut(translated, "\n")
	result := &TranslatedEntry{Title: title}
	if len(entry.Parts) == 1 {
		result.Parts = []string{translatedBody}
	}
	return result, nil
}

// translateParts handles multi-part entries with one concurrent request
// per part plus one for the title.
func (t *Translation) translateParts(ctx context.Context, entry *domain.Entry, target domain.LanguageProfile) (*TranslatedEntry, error) {
	result := &TranslatedEntry{
		Parts: make([]string, len(entry.Parts)),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		title, err := t.translateText(ctx, entry.Title, target)
		if err != nil {
			return fmt.Errorf("title: %w", err)
		}
		result.Title = title
		return nil
	})

	for i, part := range entry.Parts {
		g.Go(func() error {
			body, err := t.translateText(ctx, part.Body, target)
			if err != nil {
				return fmt.Errorf("part %s: %w", part.ID, err)
			}
			result.Parts[i] = body
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("translate entry %s: %w", entry.ID, err)
	}
	return result, nil
}

// translateText submits one text, chunked by line, and rejoins the
// translated chunks with line breaks.
func (t *Translation) translateText(ctx context.Context, text string, target domain.LanguageProfile) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	lines := strings.Split(text, "\n")
	chunks := make([]string, 0, len(lines))
	// Blank lines are not submitted; the provider rejects empty chunks.
	// Their positions are remembered so the shape survives.
	positions := make([]int, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			chunks = append(chunks, line)
			positions = append(positions, i)
		}
	}
	if len(chunks) == 0 {
		return text, nil
	}

	source := domain.SourceLanguage
	var translated []string
	err := t.retrier.Do(ctx, "translate", func(ctx context.Context) error {
		out, err := t.provider.Translate(ctx, chunks, source, target.BackendCode)
		if err != nil {
			return err
		}
		if len(out) != len(chunks) {
			return &domain.UpstreamError{
				Provider: "translation",
				Err:      fmt.Errorf("chunk count mismatch: sent %d, got %d", len(chunks), len(out)),
			}
		}
		translated = out
		return nil
	})
	if err != nil {
		return "", err
	}

	out := make([]string, len(lines))
	copy(out, lines)
	for i, pos := range positions {
		out[pos] = translated[i]
	}
	return strings.Join(out, "\n"), nil
}

// validateGlossaryTerm applies provider term-validity constraints.
func validateGlossaryTerm(term driven.GlossaryTerm) error {
	for _, side := range []string{term.Source, term.Target} {
		if strings.TrimSpace(side) == "" {
			return fmt.Errorf("%w: empty side", domain.ErrInvalidTerm)
		}
		if templateToken.MatchString(side) {
			return fmt.Errorf("%w: unresolved template variable", domain.ErrInvalidTerm)
		}
		if len(side) > glossaryTermMaxLen {
			return fmt.Errorf("%w: exceeds %d bytes", domain.ErrInvalidTerm, glossaryTermMaxLen)
		}
		if strings.ContainsAny(side, "\r\n") {
			return fmt.Errorf("%w: contains line break", domain.ErrInvalidTerm)
		}
	}
	return nil
}
