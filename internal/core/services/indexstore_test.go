package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babelkb/babelkb/internal/core/domain"
)

func newTestIndex(t *testing.T, vector *mockVector, fuzzy *mockFuzzy, catalog *mockCatalog) *Index {
	t.Helper()
	idx, err := NewIndex(vector, fuzzy, catalog, testRetrier(), "test-")
	require.NoError(t, err)
	return idx
}

func sampleRecords(entryID string, n int) []domain.IndexRecord {
	records := make([]domain.IndexRecord, n)
	for i := range records {
		partID := fmt.Sprintf("p%d", i)
		records[i] = domain.IndexRecord{
			ID:         domain.RecordID(entryID, i, partID),
			ChunkText:  "Question?\nAnswer " + partID,
			AnswerText: "Answer " + partID,
			IndexedAt:  time.Now(),
		}
	}
	return records
}

// TestIndex_Namespace tests the environment prefix scheme
func TestIndex_Namespace(t *testing.T) {
	idx := newTestIndex(t, newMockVector(), newMockFuzzy(), newMockCatalog())
	assert.Equal(t, "test-es", idx.Namespace("es"))
}

// TestIndex_Upsert_Batching tests the fixed-size batch rule
func TestIndex_Upsert_Batching(t *testing.T) {
	vector := newMockVector()
	idx := newTestIndex(t, vector, newMockFuzzy(), newMockCatalog())

	records := sampleRecords("t1", 200)
	require.NoError(t, idx.Upsert(context.Background(), "es", records))

	// 200 records -> batches of 90, 90, 20; order preserved, input drained.
	require.Len(t, vector.upserts, 3)
	assert.Len(t, vector.upserts[0], 90)
	assert.Len(t, vector.upserts[1], 90)
	assert.Len(t, vector.upserts[2], 20)
	assert.Equal(t, records[0].ID, vector.upserts[0][0].ID)
	assert.Equal(t, records[90].ID, vector.upserts[1][0].ID)
	assert.Equal(t, records[199].ID, vector.upserts[2][19].ID)
	assert.Len(t, vector.records["test-es"], 200)
}

// TestIndex_Upsert_Idempotent tests overwrite-in-place semantics
func TestIndex_Upsert_Idempotent(t *testing.T) {
	vector := newMockVector()
	idx := newTestIndex(t, vector, newMockFuzzy(), newMockCatalog())

	records := sampleRecords("t1", 1)
	require.NoError(t, idx.Upsert(context.Background(), "es", records))
	require.NoError(t, idx.Upsert(context.Background(), "es", records))

	assert.Equal(t, []string{"entry#t1"}, vector.ids("test-es"),
		"indexing the same part twice produces exactly one record")
}

// TestIndex_Upsert_MirrorsTitles tests the fuzzy title mirror
func TestIndex_Upsert_MirrorsTitles(t *testing.T) {
	fuzzy := newMockFuzzy()
	idx := newTestIndex(t, newMockVector(), fuzzy, newMockCatalog())

	require.NoError(t, idx.Upsert(context.Background(), "es", sampleRecords("t1", 2)))

	assert.Equal(t, "Question?", fuzzy.titles["test-es"]["entry#t1"])
	assert.Equal(t, "Question?", fuzzy.titles["test-es"]["entry#t1#p1"])
}

// TestIndex_Upsert_MarksCatalog tests namespace bookkeeping
func TestIndex_Upsert_MarksCatalog(t *testing.T) {
	catalog := newMockCatalog()
	idx := newTestIndex(t, newMockVector(), newMockFuzzy(), catalog)

	require.NoError(t, idx.Upsert(context.Background(), "es", sampleRecords("t1", 1)))

	namespaces, err := catalog.PopulatedNamespaces(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"test-es"}, namespaces)
}

// TestIndex_DeleteByEntryID tests prefix deletion across parts
func TestIndex_DeleteByEntryID(t *testing.T) {
	vector := newMockVector()
	fuzzy := newMockFuzzy()
	idx := newTestIndex(t, vector, fuzzy, newMockCatalog())

	require.NoError(t, idx.Upsert(context.Background(), "es", sampleRecords("t1", 3)))
	require.NoError(t, idx.Upsert(context.Background(), "es", sampleRecords("t10", 1)))

	require.NoError(t, idx.DeleteByEntryID(context.Background(), "t1", "es"))

	assert.Equal(t, []string{"entry#t10"}, vector.ids("test-es"),
		"only records of the deleted entry are removed")
	assert.Empty(t, fuzzy.titles["test-es"]["entry#t1"])
}

// TestIndex_DeleteByEntryID_NotFound tests idempotent delete
func TestIndex_DeleteByEntryID_NotFound(t *testing.T) {
	vector := newMockVector()
	vector.deleteErr = domain.ErrNotFound
	idx := newTestIndex(t, vector, newMockFuzzy(), newMockCatalog())

	assert.NoError(t, idx.DeleteByEntryID(context.Background(), "missing", "es"),
		"a resource-not-found response is treated as success")
}

// TestIndex_Upsert_Empty tests the no-op path
func TestIndex_Upsert_Empty(t *testing.T) {
	vector := newMockVector()
	idx := newTestIndex(t, vector, newMockFuzzy(), newMockCatalog())

	require.NoError(t, idx.Upsert(context.Background(), "es", nil))
	assert.Empty(t, vector.upserts)
}
