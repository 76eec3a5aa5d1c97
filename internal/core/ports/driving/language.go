package driving

import "context"

// LanguageGuesser resolves the language of arbitrary short text.
type LanguageGuesser interface {
	// GuessLanguage returns a supported language code, or empty when no
	// confident classification exists. Callers must treat empty as
	// "do not act", never as "assume source language".
	GuessLanguage(ctx context.Context, text string) (string, error)

	// FlagForeign is the cost-sensitive moderation path: local
	// classification only, and a source-language guess is reported as
	// empty ("no action needed").
	FlagForeign(ctx context.Context, text string) (string, error)
}
