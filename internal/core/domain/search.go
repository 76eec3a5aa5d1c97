package domain

import (
	"fmt"
	"time"
)

// SearchMode selects the retrieval backend.
type SearchMode string

const (
	// SearchModeVector uses semantic vector search with reranking.
	// On provider failure it falls back to SearchModeFuzzy.
	SearchModeVector SearchMode = "vector"

	// SearchModeFuzzy uses lexical approximate matching against entry
	// titles only. Body text is unavailable in this mode.
	SearchModeFuzzy SearchMode = "fuzzy"
)

// ParseSearchMode converts a string into a SearchMode.
func ParseSearchMode(s string) (SearchMode, error) {
	switch SearchMode(s) {
	case SearchModeVector:
		return SearchModeVector, nil
	case SearchModeFuzzy:
		return SearchModeFuzzy, nil
	default:
		return "", fmt.Errorf("%w: unknown search mode %q", ErrInvalidInput, s)
	}
}

// Relevance thresholds. The two scoring systems are not on the same
// scale: vector/rerank scores are "higher is better", fuzzy distances
// are "lower is better". Filtering happens before normalisation, since
// normalisation remaps the fuzzy scale.
const (
	// MinVectorScore is the minimum rerank score a vector hit must
	// exceed to be kept.
	MinVectorScore = 0.3

	// MaxFuzzyDistance is the maximum normalised edit distance a fuzzy
	// hit may have to be kept.
	MaxFuzzyDistance = 0.65
)

// SearchResult is the normalised output shape regardless of backend.
type SearchResult struct {
	// ID is the matched record identifier.
	ID string

	// Score is the normalised relevance score. Raw backend scores are
	// not comparable across backends; fuzzy scores are normalised as
	// 1 - distance before they end up here.
	Score float64

	// Question is the matched title/chunk heading.
	Question string

	// Answer is the answer text. Fuzzy results synthesise an empty
	// answer because the title-only index carries no body text.
	Answer string

	// Tags carries the entry tags.
	Tags []string

	// SourceURL links back to the canonical entry.
	SourceURL string

	// IndexedAt is when the matched record was last written.
	IndexedAt time.Time
}

// SearchResponse is the result of one retrieval call.
type SearchResponse struct {
	// Query is the keyword that actually produced the results. When the
	// fuzzy path matched via a curated alias, this is the aliased term,
	// not the original input.
	Query string

	// Results holds the ranked, filtered hits.
	Results []SearchResult
}
