package cli

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/babelkb/babelkb/internal/adapters/driven/content/dir"
	fuzzymemory "github.com/babelkb/babelkb/internal/adapters/driven/fuzzy/memory"
	storagememory "github.com/babelkb/babelkb/internal/adapters/driven/storage/memory"
	"github.com/babelkb/babelkb/internal/core/domain"
	"github.com/babelkb/babelkb/internal/core/ports/driven"
	"github.com/babelkb/babelkb/internal/core/services"
)

// --- Mock implementations shared across CLI tests ---

// mockSearcher implements driving.Searcher with canned results.
type mockSearcher struct {
	response domain.SearchResponse
	err      error
	queries  []string
	modes    []domain.SearchMode
	langs    []string
	limits   []int
}

func (m *mockSearcher) Search(_ context.Context, query string, mode domain.SearchMode, languageCode string, limit int) (domain.SearchResponse, error) {
	m.queries = append(m.queries, query)
	m.modes = append(m.modes, mode)
	m.langs = append(m.langs, languageCode)
	m.limits = append(m.limits, limit)
	if m.err != nil {
		return domain.SearchResponse{}, m.err
	}
	return m.response, nil
}

// mockGuesser implements driving.LanguageGuesser.
type mockGuesser struct {
	guess   string
	flagged string
	err     error
}

func (m *mockGuesser) GuessLanguage(_ context.Context, _ string) (string, error) {
	return m.guess, m.err
}

func (m *mockGuesser) FlagForeign(_ context.Context, _ string) (string, error) {
	return m.flagged, m.err
}

// mockVector implements driven.VectorSearchProvider without a backend.
type mockVector struct {
	mu      sync.Mutex
	upserts int
	deletes int
}

func (m *mockVector) UpsertRecords(_ context.Context, _ string, _ []domain.IndexRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	return nil
}

func (m *mockVector) DeleteByPrefix(_ context.Context, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	return nil
}

func (m *mockVector) SearchRecords(_ context.Context, _, _ string, _, _ int) ([]driven.VectorHit, error) {
	return nil, nil
}

// mockTranslator implements driven.TranslationProvider by prefixing
// chunks with the target language code.
type mockTranslator struct {
	usage    driven.Usage
	usageErr error
}

func (m *mockTranslator) Translate(_ context.Context, chunks []string, _, targetLang string) ([]string, error) {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = "[" + targetLang + "] " + c
	}
	return out, nil
}

func (m *mockTranslator) UpdateGlossary(_ context.Context, _ string, _ []driven.GlossaryTerm) error {
	return nil
}

func (m *mockTranslator) Usage(_ context.Context) (driven.Usage, error) {
	if m.usageErr != nil {
		return driven.Usage{}, m.usageErr
	}
	return m.usage, nil
}

// mockSettings implements driven.SettingsStore in memory.
type mockSettings struct {
	values map[string]any
}

func newMockSettings() *mockSettings {
	return &mockSettings{values: make(map[string]any)}
}

func (m *mockSettings) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockSettings) GetString(key string) string {
	s, _ := m.values[key].(string)
	return s
}

func (m *mockSettings) GetBool(key string) bool {
	b, _ := m.values[key].(bool)
	return b
}

func (m *mockSettings) GetFloat(key string) float64 {
	f, _ := m.values[key].(float64)
	return f
}

func (m *mockSettings) Set(key string, value any) error {
	m.values[key] = value
	return nil
}

func (m *mockSettings) Load() error { return nil }

func (m *mockSettings) Path() string { return "" }

// mockSearchServiceError always fails.
type mockSearchServiceError struct{}

func (m *mockSearchServiceError) Search(_ context.Context, _ string, _ domain.SearchMode, _ string, _ int) (domain.SearchResponse, error) {
	return domain.SearchResponse{}, errors.New("backend exploded")
}

// testContentDir is where setupTestServices roots the content platform,
// so tests can drop entry files into it.
var testContentDir string

// setupTestServices wires the package-level services with in-memory
// fakes and returns a cleanup that restores the previous wiring.
func setupTestServices() func() {
	prevSettings := settings
	prevSearch := searchService
	prevDetect := detectService
	prevCoordinator := coordinator
	prevTranslation := translation
	prevUsage := usageProvider
	prevPlatform := contentPlatform
	prevWired := wired

	testSettings := newMockSettings()
	settings = testSettings

	searchService = &mockSearcher{
		response: domain.SearchResponse{
			Query: "test query",
			Results: []domain.SearchResult{
				{
					ID:        "entry#t1",
					Score:     0.95,
					Question:  "How do I reset?",
					Answer:    "Hold the button for ten seconds.",
					SourceURL: "https://kb.example/t1",
				},
			},
		},
	}
	detectService = &mockGuesser{guess: "es", flagged: "es"}

	provider := &mockTranslator{usage: driven.Usage{CharacterCount: 12345, CharacterLimit: 500000}}
	usageProvider = provider

	profiles := supportedLanguages()
	retrier := services.NewRetrier(services.WithMaxAttempts(1))
	catalog := storagememory.NewCatalogStore()

	// Constructors only fail on nil dependencies, which the fakes rule out.
	translation, _ = services.NewTranslation(provider, testSettings, retrier, profiles)
	index, _ := services.NewIndex(&mockVector{}, fuzzymemory.NewIndex(), catalog, retrier, "test-")
	coordinator, _ = services.NewReindex(translation, index, catalog, testSettings, nil, profiles)

	contentDir, _ := os.MkdirTemp("", "babelkb-cli-test")
	testContentDir = contentDir
	platform, _ := dir.NewPlatform(contentDir)
	contentPlatform = platform
	coordinator.SetEntryLoader(platform.GetEntry)

	wired = true

	return func() {
		settings = prevSettings
		searchService = prevSearch
		detectService = prevDetect
		coordinator = prevCoordinator
		translation = prevTranslation
		usageProvider = prevUsage
		contentPlatform = prevPlatform
		wired = prevWired
		_ = os.RemoveAll(contentDir)
	}
}
