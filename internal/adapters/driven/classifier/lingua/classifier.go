// Package lingua provides a local statistical language classifier
// built on the lingua-go n-gram models. Classification runs in-process
// with no network access, which keeps the cheap first detection stage
// cheap.
package lingua

import (
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/babelkb/babelkb/internal/core/domain"
	"github.com/babelkb/babelkb/internal/core/ports/driven"
)

// Ensure Classifier implements the interface.
var _ driven.LanguageClassifier = (*Classifier)(nil)

// Classifier guesses the language of short text among a fixed set of
// candidate languages.
type Classifier struct {
	detector lingua.LanguageDetector
	codes    map[lingua.Language]string
}

// NewClassifier creates a classifier restricted to the given profiles.
// Restricting the candidate set sharpens confidence values on short
// text compared to detecting among every known language.
func NewClassifier(profiles []domain.LanguageProfile) (*Classifier, error) {
	codes := make(map[lingua.Language]string, len(profiles))
	languages := make([]lingua.Language, 0, len(profiles))
	for _, profile := range profiles {
		lang, ok := languageForCode(profile.Code)
		if !ok {
			return nil, fmt.Errorf("%w: no classifier model for %q", domain.ErrUnsupportedLanguage, profile.Code)
		}
		languages = append(languages, lang)
		codes[lang] = profile.Code
	}
	if len(languages) < 2 {
		return nil, fmt.Errorf("%w: classifier needs at least two candidate languages", domain.ErrMissingConfig)
	}

	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		WithPreloadedLanguageModels().
		Build()

	return &Classifier{detector: detector, codes: codes}, nil
}

// Classify guesses the language of text. It returns the profile code
// of the most probable candidate and its confidence in [0, 1], or an
// empty code when the models produce no signal at all.
func (c *Classifier) Classify(text string) (string, float64) {
	values := c.detector.ComputeLanguageConfidenceValues(text)
	if len(values) == 0 {
		return "", 0
	}

	best := values[0]
	code, ok := c.codes[best.Language()]
	if !ok || best.Value() == 0 {
		return "", 0
	}
	return code, best.Value()
}

// languageForCode maps an ISO 639-1 code to its lingua model.
func languageForCode(code string) (lingua.Language, bool) {
	for _, lang := range lingua.AllLanguages() {
		if strings.EqualFold(lang.IsoCode639_1().String(), code) {
			return lang, true
		}
	}
	return lingua.Unknown, false
}
