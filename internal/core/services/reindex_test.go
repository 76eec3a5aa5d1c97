package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babelkb/babelkb/internal/core/domain"
)

type reindexFixture struct {
	coordinator *Reindex
	vector      *mockVector
	fuzzy       *mockFuzzy
	catalog     *mockCatalog
	translator  *mockTranslator
	settings    *mockSettings
	alerts      *mockAlerts
}

func newReindexFixture(t *testing.T) *reindexFixture {
	t.Helper()

	f := &reindexFixture{
		vector:     newMockVector(),
		fuzzy:      newMockFuzzy(),
		catalog:    newMockCatalog(),
		translator: newMockTranslator(),
		settings:   newMockSettings(),
		alerts:     &mockAlerts{},
	}

	translation, err := NewTranslation(f.translator, f.settings, testRetrier(), testProfiles())
	require.NoError(t, err)
	index, err := NewIndex(f.vector, f.fuzzy, f.catalog, testRetrier(), "test-")
	require.NoError(t, err)
	f.coordinator, err = NewReindex(translation, index, f.catalog, f.settings, f.alerts, testProfiles())
	require.NoError(t, err)

	return f
}

func sampleEntry() *domain.Entry {
	return &domain.Entry{
		ID:    "t1",
		Title: "How do I reset?",
		Parts: []domain.EntryPart{
			{ID: "p0", Body: "Hold the button."},
			{ID: "p1", Body: "Wait ten seconds."},
		},
		Tags:      []string{"hardware"},
		SourceURL: "https://kb.example/t1",
	}
}

// TestReindex_Created_FansOutAllLanguages tests the full fan-out
func TestReindex_Created_FansOutAllLanguages(t *testing.T) {
	f := newReindexFixture(t)

	err := f.coordinator.HandleEvent(context.Background(), domain.EntryEvent{
		Kind:    domain.EventCreated,
		EntryID: "t1",
		Entry:   sampleEntry(),
	})
	require.NoError(t, err)

	// Source plus the two translatable targets, two parts each.
	for _, ns := range []string{"test-en", "test-es", "test-fr"} {
		assert.Equal(t, []string{"entry#t1", "entry#t1#p1"}, f.vector.ids(ns), ns)
	}

	// Source language passes through untouched.
	assert.Equal(t, "How do I reset?\nHold the button.", f.vector.records["test-en"]["entry#t1"].ChunkText)
	// Targets carry translated text.
	assert.Equal(t, "[ES] How do I reset?\n[ES] Hold the button.", f.vector.records["test-es"]["entry#t1"].ChunkText)
}

// TestReindex_LanguageFailureIsolated tests isolate-and-continue
func TestReindex_LanguageFailureIsolated(t *testing.T) {
	f := newReindexFixture(t)
	f.translator.translateErr = &domain.UpstreamError{Provider: "deepl", Status: 500, Err: assert.AnError}

	err := f.coordinator.TranslateAndIndexEntryAllLanguages(context.Background(), sampleEntry())
	require.Error(t, err, "translated languages failed")

	// The source language needs no translation and must still be indexed.
	assert.Equal(t, []string{"entry#t1", "entry#t1#p1"}, f.vector.ids("test-en"))
	assert.Empty(t, f.vector.ids("test-es"))

	// Each failed language raised an alert with context attached.
	assert.Equal(t, 2, f.alerts.count())
}

// TestReindex_Deleted_RemovesAllPopulated tests deterministic delete
func TestReindex_Deleted_RemovesAllPopulated(t *testing.T) {
	f := newReindexFixture(t)

	require.NoError(t, f.coordinator.TranslateAndIndexEntryAllLanguages(context.Background(), sampleEntry()))

	err := f.coordinator.HandleEvent(context.Background(), domain.EntryEvent{
		Kind:    domain.EventDeleted,
		EntryID: "t1",
	})
	require.NoError(t, err)

	for _, ns := range []string{"test-en", "test-es", "test-fr"} {
		assert.Empty(t, f.vector.ids(ns), ns)
	}

	namespaces, err := f.catalog.PopulatedNamespaces(context.Background(), "t1")
	require.NoError(t, err)
	assert.Empty(t, namespaces)
}

// TestReindex_NoOpUpdateIgnored tests updates that change nothing indexed
func TestReindex_NoOpUpdateIgnored(t *testing.T) {
	f := newReindexFixture(t)

	err := f.coordinator.HandleEvent(context.Background(), domain.EntryEvent{
		Kind:    domain.EventUpdated,
		EntryID: "t1",
		Entry:   sampleEntry(),
	})
	require.NoError(t, err)
	assert.Empty(t, f.vector.upserts)
}

// TestReindex_GateDisabled_IndexesImmediately tests the ungated edit path
func TestReindex_GateDisabled_IndexesImmediately(t *testing.T) {
	f := newReindexFixture(t)

	err := f.coordinator.HandleEvent(context.Background(), domain.EntryEvent{
		Kind:           domain.EventUpdated,
		EntryID:        "t1",
		Entry:          sampleEntry(),
		ContentChanged: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, f.vector.upserts, "without the gate, edits reindex immediately")
}

// TestReindex_GateEnabled_WaitsForAccept tests the confirmation gate
func TestReindex_GateEnabled_WaitsForAccept(t *testing.T) {
	f := newReindexFixture(t)
	require.NoError(t, f.settings.Set("reindex.confirm", true))
	require.NoError(t, f.settings.Set("translation.unit_cost", 0.000025))

	entry := sampleEntry()
	previous := sampleEntry()
	previous.Parts = previous.Parts[:1]

	err := f.coordinator.HandleEvent(context.Background(), domain.EntryEvent{
		Kind:           domain.EventUpdated,
		EntryID:        "t1",
		Entry:          entry,
		Previous:       previous,
		ContentChanged: true,
	})
	require.NoError(t, err)

	assert.Empty(t, f.vector.upserts, "gated edits must not touch the index")

	pending, err := f.coordinator.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)

	estimate := pending[0].Estimate
	assert.Equal(t, "t1", estimate.EntryID)
	assert.Equal(t, []string{"es", "fr"}, estimate.Languages)
	assert.Equal(t, entry.CharCount(), estimate.CharCount)
	assert.InDelta(t, float64(entry.CharCount())*2*0.000025, estimate.Cost, 1e-9)
	assert.Contains(t, estimate.Diff, "1 parts -> 2 parts")

	// Accept runs the same fan-out as the ungated path.
	f.coordinator.SetEntryLoader(func(_ context.Context, entryID string) (*domain.Entry, error) {
		assert.Equal(t, "t1", entryID)
		return entry, nil
	})
	require.NoError(t, f.coordinator.Accept(context.Background(), pending[0].ID))

	assert.Equal(t, []string{"entry#t1", "entry#t1#p1"}, f.vector.ids("test-es"))

	pending, err = f.coordinator.Pending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

// TestReindex_GateEnabled_Skip tests the skip decision
func TestReindex_GateEnabled_Skip(t *testing.T) {
	f := newReindexFixture(t)
	require.NoError(t, f.settings.Set("reindex.confirm", true))

	err := f.coordinator.HandleEvent(context.Background(), domain.EntryEvent{
		Kind:           domain.EventUpdated,
		EntryID:        "t1",
		Entry:          sampleEntry(),
		ContentChanged: true,
	})
	require.NoError(t, err)

	pending, err := f.coordinator.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, f.coordinator.Skip(context.Background(), pending[0].ID))
	assert.Empty(t, f.vector.upserts, "skip leaves the index stale")

	// A resolved approval cannot be accepted afterwards.
	err = f.coordinator.Accept(context.Background(), pending[0].ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestReindex_Created_GateDoesNotApply tests that creation is never gated
func TestReindex_Created_GateDoesNotApply(t *testing.T) {
	f := newReindexFixture(t)
	require.NoError(t, f.settings.Set("reindex.confirm", true))

	err := f.coordinator.HandleEvent(context.Background(), domain.EntryEvent{
		Kind:    domain.EventCreated,
		EntryID: "t1",
		Entry:   sampleEntry(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, f.vector.upserts, "the gate applies to edits, not creation")
}

// TestReindex_UnindexSingleLanguage tests the one-language path
func TestReindex_UnindexSingleLanguage(t *testing.T) {
	f := newReindexFixture(t)

	require.NoError(t, f.coordinator.TranslateAndIndexEntryAllLanguages(context.Background(), sampleEntry()))
	require.NoError(t, f.coordinator.UnindexEntry(context.Background(), "t1", "es"))

	assert.Empty(t, f.vector.ids("test-es"))
	assert.NotEmpty(t, f.vector.ids("test-fr"), "other namespaces are untouched")
}

// TestReindex_UnsupportedLanguage tests language validation
func TestReindex_UnsupportedLanguage(t *testing.T) {
	f := newReindexFixture(t)

	err := f.coordinator.TranslateAndIndexEntry(context.Background(), sampleEntry(), "de")
	assert.ErrorIs(t, err, domain.ErrUnsupportedLanguage)
}
