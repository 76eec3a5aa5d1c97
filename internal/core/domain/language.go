package domain

// SourceLanguage is the language entries are authored in.
// The source profile is always present and is never translated into itself.
const SourceLanguage = "en"

// LanguageUnknown is the sentinel returned by classifiers that could not
// determine a language. Consumers must treat it as "do not act", never as
// "assume source language".
const LanguageUnknown = ""

// LanguageProfile describes a supported target language.
type LanguageProfile struct {
	// Code is the internal language identifier (e.g., "es", "pt-br").
	Code string

	// DisplayName is the human-readable language name.
	DisplayName string

	// BackendCode is the code the translation provider expects.
	// It may differ from Code (e.g., internal "pt-br" vs provider "PT-BR").
	BackendCode string

	// Translatable reports whether this language has a live translation
	// memory/glossary and may be targeted by the translation pipeline.
	Translatable bool
}

// IsSource reports whether this profile is the source language.
func (p LanguageProfile) IsSource() bool {
	return p.Code == SourceLanguage
}
