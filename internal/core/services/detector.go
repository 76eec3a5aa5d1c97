package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/babelkb/babelkb/internal/core/domain"
	"github.com/babelkb/babelkb/internal/core/ports/driven"
	"github.com/babelkb/babelkb/internal/core/ports/driving"
	"github.com/babelkb/babelkb/internal/logger"
)

// Ensure Detector implements the interface.
var _ driving.LanguageGuesser = (*Detector)(nil)

// LocalConfidenceThreshold is the minimum probability required to
// accept a local classification before falling back to the LLM.
const LocalConfidenceThreshold = 0.95

// llmUnsupported is the sentinel the LLM is instructed to return for
// text outside the supported set.
const llmUnsupported = "unsupported"

// urlPattern matches URLs, which skew classification toward whatever
// language the link host implies.
var urlPattern = regexp.MustCompile(`https?://\S+|www\.\S+`)

// informalTokens expands single-letter informal tokens that collide
// with short words in unrelated languages. "u" on its own is the
// English "you", not a one-letter word elsewhere.
var informalTokens = map[string]string{
	"u":   "you",
	"r":   "are",
	"ur":  "your",
	"pls": "please",
}

// Detector resolves the language of arbitrary short text using a cheap
// local classifier with an LLM fallback. The policy favours false
// negatives: an empty result means "do not act".
type Detector struct {
	classifier driven.LanguageClassifier
	llm        driven.LLMService
	settings   driven.SettingsStore
	profiles   []domain.LanguageProfile
}

// NewDetector creates a language detector.
// The llm parameter is optional (can be nil); without it detection
// stops after the local classifier.
func NewDetector(
	classifier driven.LanguageClassifier,
	llm driven.LLMService,
	settings driven.SettingsStore,
	profiles []domain.LanguageProfile,
) *Detector {
	return &Detector{
		classifier: classifier,
		llm:        llm,
		settings:   settings,
		profiles:   profiles,
	}
}

// GuessLanguage classifies text for the query-answering path: local
// stage first, LLM fallback second, any confident result accepted.
func (d *Detector) GuessLanguage(ctx context.Context, text string) (string, error) {
	normalised := normaliseForDetection(text)
	if normalised == "" {
		return domain.LanguageUnknown, nil
	}

	if code := d.classifyLocal(normalised); code != domain.LanguageUnknown {
		return code, nil
	}

	return d.classifyRemote(ctx, normalised)
}

// FlagForeign classifies community content for moderation. It is a
// high-volume call site, so only the local stage runs, and a
// source-language guess means "no action needed".
func (d *Detector) FlagForeign(_ context.Context, text string) (string, error) {
	normalised := normaliseForDetection(text)
	if normalised == "" {
		return domain.LanguageUnknown, nil
	}

	code := d.classifyLocal(normalised)
	if code == domain.SourceLanguage {
		return domain.LanguageUnknown, nil
	}
	return code, nil
}

// classifyLocal runs the statistical classifier and applies the
// confidence gate.
func (d *Detector) classifyLocal(text string) string {
	code, confidence := d.classifier.Classify(text)
	logger.Debug("Local classification: code=%q confidence=%.3f", code, confidence)

	if code == domain.LanguageUnknown || confidence < LocalConfidenceThreshold {
		return domain.LanguageUnknown
	}
	if !d.supported(code) {
		return domain.LanguageUnknown
	}
	return code
}

// classifyRemote asks the LLM for a constrained classification.
func (d *Detector) classifyRemote(ctx context.Context, text string) (string, error) {
	if d.llm == nil {
		return domain.LanguageUnknown, nil
	}
	if d.settings != nil {
		if v, ok := d.settings.Get(driven.SettingClassifierEnabled); ok {
			if enabled, isBool := v.(bool); isBool && !enabled {
				return domain.LanguageUnknown, domain.ErrClassificationDisabled
			}
		}
	}

	reply, err := d.llm.Complete(ctx, d.systemInstruction(), text)
	if err != nil {
		return domain.LanguageUnknown, fmt.Errorf("llm classification: %w", err)
	}

	code := strings.ToLower(strings.TrimSpace(reply))
	if code == llmUnsupported {
		logger.Debug("LLM classification: unsupported text")
		return domain.LanguageUnknown, nil
	}
	if !d.supported(code) {
		// Out-of-vocabulary reply. Prefer a false negative over acting
		// on a hallucinated code.
		logger.Warn("LLM classification: out-of-vocabulary reply %q", reply)
		return domain.LanguageUnknown, nil
	}

	logger.Debug("LLM classification: code=%q", code)
	return code, nil
}

// systemInstruction builds the constrained-vocabulary instruction.
func (d *Detector) systemInstruction() string {
	codes := make([]string, 0, len(d.profiles))
	for _, p := range d.profiles {
		codes = append(codes, p.Code)
	}
	return fmt.Sprintf(
		"Identify the language of the user's message. Reply with exactly one of: %s. "+
			"If the language is none of these, reply %q. Reply with the code only.",
		strings.Join(codes, ", "), llmUnsupported,
	)
}

// supported reports whether code belongs to a configured profile.
func (d *Detector) supported(code string) bool {
	for _, p := range d.profiles {
		if p.Code == code {
			return true
		}
	}
	return false
}

// normaliseForDetection strips URLs and expands informal single-letter
// tokens before classification.
func normaliseForDetection(text string) string {
	text = urlPattern.ReplaceAllString(text, " ")

	fields := strings.Fields(text)
	for i, f := range fields {
		key := strings.ToLower(strings.Trim(f, ".,!?;:"))
		if expanded, ok := informalTokens[key]; ok {
			fields[i] = expanded
		}
	}
	return strings.Join(fields, " ")
}
