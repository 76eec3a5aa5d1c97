package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/babelkb/babelkb/internal/core/domain"
	"github.com/babelkb/babelkb/internal/core/ports/driven"
)

// --- Mock implementations shared across service tests ---

// mockVector implements driven.VectorSearchProvider for testing.
// Records are stored per namespace so upsert/delete semantics can be
// asserted end to end.
type mockVector struct {
	mu         sync.Mutex
	records    map[string]map[string]domain.IndexRecord // namespace -> id -> record
	hits       []driven.VectorHit
	searchErr  error
	upsertErr  error
	deleteErr  error
	upserts    [][]domain.IndexRecord
	searchMade int
}

func newMockVector() *mockVector {
	return &mockVector{records: make(map[string]map[string]domain.IndexRecord)}
}

func (m *mockVector) UpsertRecords(_ context.Context, namespace string, records []domain.IndexRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records[namespace] == nil {
		m.records[namespace] = make(map[string]domain.IndexRecord)
	}
	for _, r := range records {
		m.records[namespace][r.ID] = r
	}
	m.upserts = append(m.upserts, records)
	return nil
}

func (m *mockVector) DeleteByPrefix(_ context.Context, namespace, prefix string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.records[namespace] {
		if id == prefix || strings.HasPrefix(id, prefix+"#") {
			delete(m.records[namespace], id)
		}
	}
	return nil
}

func (m *mockVector) SearchRecords(_ context.Context, _, _ string, topK, _ int) ([]driven.VectorHit, error) {
	m.mu.Lock()
	m.searchMade++
	m.mu.Unlock()
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if topK < len(m.hits) {
		return m.hits[:topK], nil
	}
	return m.hits, nil
}

func (m *mockVector) ids(namespace string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.records[namespace]))
	for id := range m.records[namespace] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// mockFuzzy implements driven.FuzzyIndex for testing.
type mockFuzzy struct {
	mu        sync.Mutex
	titles    map[string]map[string]string // namespace -> id -> title
	hits      map[string][]driven.FuzzyHit // keyword -> hits
	searchErr error
}

func newMockFuzzy() *mockFuzzy {
	return &mockFuzzy{
		titles: make(map[string]map[string]string),
		hits:   make(map[string][]driven.FuzzyHit),
	}
}

func (m *mockFuzzy) Upsert(_ context.Context, namespace, id, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.titles[namespace] == nil {
		m.titles[namespace] = make(map[string]string)
	}
	m.titles[namespace][id] = title
	return nil
}

func (m *mockFuzzy) DeleteByPrefix(_ context.Context, namespace, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.titles[namespace] {
		if id == prefix || strings.HasPrefix(id, prefix+"#") {
			delete(m.titles[namespace], id)
		}
	}
	return nil
}

func (m *mockFuzzy) Search(_ context.Context, _, keyword string, limit int) ([]driven.FuzzyHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	hits := m.hits[keyword]
	if limit < len(hits) {
		return hits[:limit], nil
	}
	return hits, nil
}

// mockCatalog implements driven.CatalogStore for testing.
type mockCatalog struct {
	mu         sync.Mutex
	namespaces map[string][]string // entryID -> namespaces
	approvals  map[string]domain.PendingApproval
	aliases    map[string]string
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		namespaces: make(map[string][]string),
		approvals:  make(map[string]domain.PendingApproval),
		aliases:    make(map[string]string),
	}
}

func (m *mockCatalog) MarkIndexed(_ context.Context, entryID, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ns := range m.namespaces[entryID] {
		if ns == namespace {
			return nil
		}
	}
	m.namespaces[entryID] = append(m.namespaces[entryID], namespace)
	return nil
}

func (m *mockCatalog) PopulatedNamespaces(_ context.Context, entryID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.namespaces[entryID]...), nil
}

func (m *mockCatalog) ClearIndexed(_ context.Context, entryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.namespaces, entryID)
	return nil
}

func (m *mockCatalog) SaveApproval(_ context.Context, approval domain.PendingApproval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approvals[approval.ID] = approval
	return nil
}

func (m *mockCatalog) GetApproval(_ context.Context, id string) (*domain.PendingApproval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	approval, ok := m.approvals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &approval, nil
}

func (m *mockCatalog) ListPendingApprovals(_ context.Context) ([]domain.PendingApproval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []domain.PendingApproval
	for _, a := range m.approvals {
		if a.Status == domain.ApprovalPending {
			pending = append(pending, a)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	return pending, nil
}

func (m *mockCatalog) ResolveApproval(_ context.Context, id string, status domain.ApprovalStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	approval, ok := m.approvals[id]
	if !ok {
		return domain.ErrNotFound
	}
	approval.Status = status
	m.approvals[id] = approval
	return nil
}

func (m *mockCatalog) LookupAlias(_ context.Context, keyword string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aliases[keyword], nil
}

func (m *mockCatalog) SaveAlias(_ context.Context, keyword, canonical string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aliases[keyword] = canonical
	return nil
}

// mockTranslator implements driven.TranslationProvider for testing.
// By default it "translates" by prefixing each chunk with the target
// language code.
type mockTranslator struct {
	mu           sync.Mutex
	translateErr error
	failures     int // fail this many calls before succeeding
	calls        int
	glossaries   map[string][]driven.GlossaryTerm
}

func newMockTranslator() *mockTranslator {
	return &mockTranslator{glossaries: make(map[string][]driven.GlossaryTerm)}
}

func (m *mockTranslator) Translate(_ context.Context, chunks []string, _, targetLang string) ([]string, error) {
	m.mu.Lock()
	m.calls++
	calls := m.calls
	m.mu.Unlock()
	if m.translateErr != nil && (m.failures == 0 || calls <= m.failures) {
		return nil, m.translateErr
	}
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = "[" + targetLang + "] " + c
	}
	return out, nil
}

func (m *mockTranslator) UpdateGlossary(_ context.Context, targetLang string, terms []driven.GlossaryTerm) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.glossaries[targetLang] = terms
	return nil
}

func (m *mockTranslator) Usage(_ context.Context) (driven.Usage, error) {
	return driven.Usage{CharacterCount: 100, CharacterLimit: 500000}, nil
}

// mockClassifier implements driven.LanguageClassifier for testing.
type mockClassifier struct {
	code       string
	confidence float64
	classified []string
}

func (m *mockClassifier) Classify(text string) (string, float64) {
	m.classified = append(m.classified, text)
	return m.code, m.confidence
}

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	reply    string
	err      error
	prompts  []string
	systems  []string
}

func (m *mockLLM) Complete(_ context.Context, system, prompt string) (string, error) {
	m.systems = append(m.systems, system)
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

// mockSettings implements driven.SettingsStore for testing.
type mockSettings struct {
	mu     sync.Mutex
	values map[string]any
}

func newMockSettings() *mockSettings {
	return &mockSettings{values: make(map[string]any)}
}

func (m *mockSettings) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *mockSettings) GetString(key string) string {
	v, _ := m.Get(key)
	s, _ := v.(string)
	return s
}

func (m *mockSettings) GetBool(key string) bool {
	v, _ := m.Get(key)
	b, _ := v.(bool)
	return b
}

func (m *mockSettings) GetFloat(key string) float64 {
	v, _ := m.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func (m *mockSettings) Set(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *mockSettings) Load() error { return nil }

func (m *mockSettings) Path() string { return "" }

// mockAlerts implements driven.AlertSink for testing.
type mockAlerts struct {
	mu     sync.Mutex
	alerts []string
}

func (m *mockAlerts) Alert(_ context.Context, message string, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, message)
}

func (m *mockAlerts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.alerts)
}
