package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/babelkb/babelkb/internal/core/domain"
	"github.com/babelkb/babelkb/internal/core/ports/driven"
	"github.com/babelkb/babelkb/internal/logger"
)

// UpsertBatchSize is the maximum records per upsert request, bounded by
// the vector provider's payload limit.
const UpsertBatchSize = 90

// Index adapts the namespaced vector-search provider and the local
// fuzzy title index behind one write/query surface. It owns the
// per-language partitioning scheme: one namespace per language code,
// prefixed with the deployment environment.
type Index struct {
	vector    driven.VectorSearchProvider
	fuzzy     driven.FuzzyIndex
	catalog   driven.CatalogStore
	retrier   *Retrier
	envPrefix string
}

// NewIndex creates the index store.
func NewIndex(
	vector driven.VectorSearchProvider,
	fuzzy driven.FuzzyIndex,
	catalog driven.CatalogStore,
	retrier *Retrier,
	envPrefix string,
) (*Index, error) {
	if vector == nil {
		return nil, fmt.Errorf("%w: vector search provider", domain.ErrMissingConfig)
	}
	if fuzzy == nil {
		return nil, fmt.Errorf("%w: fuzzy index", domain.ErrMissingConfig)
	}

	return &Index{
		vector:    vector,
		fuzzy:     fuzzy,
		catalog:   catalog,
		retrier:   retrier,
		envPrefix: envPrefix,
	}, nil
}

// Namespace maps a language code to its index namespace. The
// environment prefix keeps test and production deployments from
// sharing index state.
func (s *Index) Namespace(languageCode string) string {
	return s.envPrefix + languageCode
}

// Upsert writes records into a language namespace in fixed-size
// batches. Batches are sent sequentially, never reordered, and the
// input is fully drained before returning. Titles are mirrored into
// the fuzzy index.
func (s *Index) Upsert(ctx context.Context, languageCode string, records []domain.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}
	namespace := s.Namespace(languageCode)

	for start := 0; start < len(records); start += UpsertBatchSize {
		end := min(start+UpsertBatchSize, len(records))
		batch := records[start:end]

		err := s.retrier.Do(ctx, "upsert batch", func(ctx context.Context) error {
			return s.vector.UpsertRecords(ctx, namespace, batch)
		})
		if err != nil {
			return fmt.Errorf("upsert %d records into %s: %w", len(batch), namespace, err)
		}
		logger.Debug("Upserted batch of %d into %s", len(batch), namespace)
	}

	for _, record := range records {
		title, _, _ := cutChunkTitle(record.ChunkText)
		if err := s.fuzzy.Upsert(ctx, namespace, record.ID, title); err != nil {
			return fmt.Errorf("mirror title for %s: %w", record.ID, err)
		}
	}

	if s.catalog != nil && len(records) > 0 {
		entryID := entryIDFromRecord(records[0].ID)
		if err := s.catalog.MarkIndexed(ctx, entryID, namespace); err != nil {
			return fmt.Errorf("mark indexed: %w", err)
		}
	}

	return nil
}

// DeleteByEntryID removes every record of an entry from a language
// namespace using the deterministic id prefix, so one call covers all
// parts of a multi-part entry. A missing entry is a successful no-op.
func (s *Index) DeleteByEntryID(ctx context.Context, entryID, languageCode string) error {
	namespace := s.Namespace(languageCode)
	prefix := domain.RecordPrefix(entryID)

	err := s.retrier.Do(ctx, "delete by prefix", func(ctx context.Context) error {
		return s.vector.DeleteByPrefix(ctx, namespace, prefix)
	})
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete %s from %s: %w", prefix, namespace, err)
	}

	if err := s.fuzzy.DeleteByPrefix(ctx, namespace, prefix); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete titles %s from %s: %w", prefix, namespace, err)
	}

	return nil
}

// SearchVector queries the vector backend for a namespace.
func (s *Index) SearchVector(ctx context.Context, languageCode, query string, topK, rerankTopN int) ([]driven.VectorHit, error) {
	return s.vector.SearchRecords(ctx, s.Namespace(languageCode), query, topK, rerankTopN)
}

// SearchFuzzy queries the title index for a namespace.
func (s *Index) SearchFuzzy(ctx context.Context, languageCode, keyword string, limit int) ([]driven.FuzzyHit, error) {
	return s.fuzzy.Search(ctx, s.Namespace(languageCode), keyword, limit)
}

// cutChunkTitle splits a record's chunk text back into title and body.
func cutChunkTitle(chunkText string) (title, body string, found bool) {
	return strings.Cut(chunkText, "\n")
}

// entryIDFromRecord recovers the entry id from a record id.
func entryIDFromRecord(recordID string) string {
	rest := strings.TrimPrefix(recordID, domain.RecordPrefix(""))
	entryID, _, _ := strings.Cut(rest, "#")
	return entryID
}
