package driven

import "context"

// TranslationProvider translates text between languages (e.g., DeepL).
// Chunks are translated independently; providers tend to collapse line
// breaks, so callers split multi-line text into per-line chunks first.
type TranslationProvider interface {
	// Translate converts chunks from sourceLang to targetLang, both in
	// provider backend codes. The result preserves chunk order and count.
	Translate(ctx context.Context, chunks []string, sourceLang, targetLang string) ([]string, error)

	// UpdateGlossary replaces the glossary dictionary for a target
	// language with the given term pairs.
	UpdateGlossary(ctx context.Context, targetLang string, terms []GlossaryTerm) error

	// Usage reports consumed and allowed characters for the current
	// billing period.
	Usage(ctx context.Context) (Usage, error)
}

// GlossaryTerm is one canonical source→target term pair.
type GlossaryTerm struct {
	// Source is the term in the source language.
	Source string

	// Target is the fixed translation.
	Target string
}

// Usage is a provider quota snapshot.
type Usage struct {
	// CharacterCount is the number of characters consumed.
	CharacterCount int64

	// CharacterLimit is the number of characters allowed.
	CharacterLimit int64
}
