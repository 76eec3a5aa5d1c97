package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babelkb/babelkb/internal/core/domain"
	"github.com/babelkb/babelkb/internal/core/ports/driven"
)

func testRetrier() *Retrier {
	return NewRetrier(WithMaxAttempts(3), WithInitialInterval(time.Millisecond))
}

func newTestTranslation(t *testing.T, provider driven.TranslationProvider, settings driven.SettingsStore) *Translation {
	t.Helper()
	tr, err := NewTranslation(provider, settings, testRetrier(), testProfiles())
	require.NoError(t, err)
	return tr
}

// TestTranslation_SinglePartCombined tests the combined title+body request
func TestTranslation_SinglePartCombined(t *testing.T) {
	provider := newMockTranslator()
	tr := newTestTranslation(t, provider, newMockSettings())

	entry := &domain.Entry{
		ID:    "t1",
		Title: "How do I reset?",
		Parts: []domain.EntryPart{{ID: "p0", Body: "Hold the button."}},
	}

	out, err := tr.Translate(context.Background(), entry, testProfiles()[1])
	require.NoError(t, err)

	assert.Equal(t, "[ES] How do I reset?", out.Title)
	require.Len(t, out.Parts, 1)
	assert.Equal(t, "[ES] Hold the button.", out.Parts[0])
	assert.Equal(t, 1, provider.calls, "single-part entries use one combined request")
}

// TestTranslation_MultiPartConcurrent tests per-part fan-out
func TestTranslation_MultiPartConcurrent(t *testing.T) {
	provider := newMockTranslator()
	tr := newTestTranslation(t, provider, newMockSettings())

	entry := &domain.Entry{
		ID:    "t1",
		Title: "Setup guide",
		Parts: []domain.EntryPart{
			{ID: "p0", Body: "Step one."},
			{ID: "p1", Body: "Step two."},
			{ID: "p2", Body: "Step three."},
		},
	}

	out, err := tr.Translate(context.Background(), entry, testProfiles()[2])
	require.NoError(t, err)

	assert.Equal(t, "[FR] Setup guide", out.Title)
	require.Len(t, out.Parts, 3)
	assert.Equal(t, "[FR] Step one.", out.Parts[0])
	assert.Equal(t, "[FR] Step three.", out.Parts[2])
	assert.Equal(t, 4, provider.calls, "one request per part plus one for the title")
}

// TestTranslation_LineChunking tests that line breaks survive translation
func TestTranslation_LineChunking(t *testing.T) {
	provider := newMockTranslator()
	tr := newTestTranslation(t, provider, newMockSettings())

	entry := &domain.Entry{
		ID:    "t1",
		Title: "List",
		Parts: []domain.EntryPart{
			{ID: "p0", Body: "- first\n- second"},
			{ID: "p1", Body: "tail"},
		},
	}

	out, err := tr.Translate(context.Background(), entry, testProfiles()[1])
	require.NoError(t, err)
	assert.Equal(t, "[ES] - first\n[ES] - second", out.Parts[0],
		"each line is translated independently and rejoined")
}

// TestTranslation_Disabled tests the administrative kill-switch
func TestTranslation_Disabled(t *testing.T) {
	settings := newMockSettings()
	require.NoError(t, settings.Set("translation.enabled", false))
	tr := newTestTranslation(t, newMockTranslator(), settings)

	entry := &domain.Entry{ID: "t1", Title: "Q", Parts: []domain.EntryPart{{ID: "p0", Body: "A"}}}
	_, err := tr.Translate(context.Background(), entry, testProfiles()[1])
	assert.ErrorIs(t, err, domain.ErrTranslationDisabled)
}

// TestTranslation_SourceLanguageRejected tests the self-translation guard
func TestTranslation_SourceLanguageRejected(t *testing.T) {
	tr := newTestTranslation(t, newMockTranslator(), newMockSettings())

	entry := &domain.Entry{ID: "t1", Title: "Q"}
	_, err := tr.Translate(context.Background(), entry, testProfiles()[0])
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestTranslation_RetriesTransient tests retry of transient provider failures
func TestTranslation_RetriesTransient(t *testing.T) {
	provider := newMockTranslator()
	provider.translateErr = &domain.UpstreamError{Provider: "deepl", Status: 503, Err: assert.AnError}
	provider.failures = 2
	tr := newTestTranslation(t, provider, newMockSettings())

	entry := &domain.Entry{ID: "t1", Title: "Q", Parts: []domain.EntryPart{{ID: "p0", Body: "A"}}}
	out, err := tr.Translate(context.Background(), entry, testProfiles()[1])
	require.NoError(t, err)
	assert.Equal(t, "[ES] Q", out.Title)
	assert.Equal(t, 3, provider.calls)
}

// TestTranslation_ExhaustedRetriesPropagate tests the original error surfaces
func TestTranslation_ExhaustedRetriesPropagate(t *testing.T) {
	provider := newMockTranslator()
	provider.translateErr = &domain.UpstreamError{Provider: "deepl", Status: 500, Err: assert.AnError}
	tr := newTestTranslation(t, provider, newMockSettings())

	entry := &domain.Entry{ID: "t1", Title: "Q", Parts: []domain.EntryPart{{ID: "p0", Body: "A"}}}
	_, err := tr.Translate(context.Background(), entry, testProfiles()[1])
	require.Error(t, err)

	var ue *domain.UpstreamError
	assert.ErrorAs(t, err, &ue)
}

// TestTranslation_FilterGlossaryTerms tests term-validity filtering
func TestTranslation_FilterGlossaryTerms(t *testing.T) {
	tr := newTestTranslation(t, newMockTranslator(), newMockSettings())

	long := make([]byte, 1100)
	for i := range long {
		long[i] = 'a'
	}

	terms := []driven.GlossaryTerm{
		{Source: "giveaway", Target: "sorteo"},
		{Source: "hello {{user}}", Target: "hola"},
		{Source: "prize", Target: "premio {n}"},
		{Source: "ok", Target: string(long)},
		{Source: "line", Target: "br\neak"},
		{Source: "", Target: "vacío"},
		{Source: "reset", Target: "reinicio"},
	}

	kept := tr.FilterGlossaryTerms(terms)
	require.Len(t, kept, 2)
	assert.Equal(t, "giveaway", kept[0].Source)
	assert.Equal(t, "reset", kept[1].Source)
}

// TestTranslation_EstimateCost tests the confirmation-gate arithmetic
func TestTranslation_EstimateCost(t *testing.T) {
	settings := newMockSettings()
	require.NoError(t, settings.Set("translation.unit_cost", 0.000025))
	tr := newTestTranslation(t, newMockTranslator(), settings)

	assert.InDelta(t, 0.5, tr.EstimateCost(1000, 20), 1e-9)
}
