package driven

import (
	"context"

	"github.com/babelkb/babelkb/internal/core/domain"
)

// VectorSearchProvider is a namespaced vector-search backend
// (e.g., Pinecone). Namespaces are disjoint per-language partitions.
type VectorSearchProvider interface {
	// UpsertRecords writes records into a namespace. Writing the same
	// record id twice overwrites in place.
	UpsertRecords(ctx context.Context, namespace string, records []domain.IndexRecord) error

	// DeleteByPrefix removes every record whose id starts with prefix.
	// A missing namespace or record is not an error.
	DeleteByPrefix(ctx context.Context, namespace, prefix string) error

	// SearchRecords runs a semantic query with a second-pass rerank over
	// the top rerankTopN candidates. Scores are backend-specific and not
	// comparable to other providers.
	SearchRecords(ctx context.Context, namespace, query string, topK, rerankTopN int) ([]VectorHit, error)
}

// VectorHit is one raw result from the vector backend.
type VectorHit struct {
	// ID is the matched record id.
	ID string

	// Score is the raw rerank relevance score (higher is better).
	Score float64

	// Fields carries the stored record payload.
	Fields domain.IndexRecord
}
