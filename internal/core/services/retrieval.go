package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/babelkb/babelkb/internal/core/domain"
	"github.com/babelkb/babelkb/internal/core/ports/driven"
	"github.com/babelkb/babelkb/internal/core/ports/driving"
	"github.com/babelkb/babelkb/internal/logger"
)

// Ensure Retrieval implements the interface.
var _ driving.Searcher = (*Retrieval)(nil)

// Over-fetch bounds for the vector path.
const (
	// vectorOverFetch is the minimum candidate count requested from the
	// vector backend before reranking.
	vectorOverFetch = 20

	// rerankCap is the minimum size of the reranked candidate set.
	rerankCap = 5
)

// Retrieval is the hybrid query path: semantic vector search with
// reranking, falling back to lexical fuzzy matching on provider
// failure. Results from both backends are normalised into one shape.
type Retrieval struct {
	index   *Index
	catalog driven.CatalogStore
}

// NewRetrieval creates the retrieval engine.
func NewRetrieval(index *Index, catalog driven.CatalogStore) (*Retrieval, error) {
	if index == nil {
		return nil, fmt.Errorf("%w: index store", domain.ErrMissingConfig)
	}
	return &Retrieval{index: index, catalog: catalog}, nil
}

// Search runs a query against one language namespace.
func (r *Retrieval) Search(
	ctx context.Context, query string, mode domain.SearchMode, languageCode string, limit int,
) (domain.SearchResponse, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q mode=%s language=%s limit=%d", query, mode, languageCode, limit)

	query = strings.TrimSpace(query)
	if query == "" {
		return domain.SearchResponse{Query: query, Results: []domain.SearchResult{}}, nil
	}
	if limit <= 0 {
		limit = 1
	}

	switch mode {
	case domain.SearchModeVector:
		return r.vectorSearch(ctx, query, languageCode, limit)
	case domain.SearchModeFuzzy:
		return r.fuzzySearch(ctx, query, languageCode, limit)
	default:
		return domain.SearchResponse{}, fmt.Errorf("%w: search mode %q", domain.ErrInvalidInput, mode)
	}
}

// vectorSearch over-fetches candidates, reranks a capped set and
// truncates to limit. Any provider failure falls back to fuzzy search
// with the same query, namespace and limit. A successful-but-empty
// vector response does NOT fall back.
func (r *Retrieval) vectorSearch(
	ctx context.Context, query, languageCode string, limit int,
) (domain.SearchResponse, error) {
	topK := max(vectorOverFetch, limit)
	rerankTopN := max(rerankCap, limit)

	hits, err := r.index.SearchVector(ctx, languageCode, query, topK, rerankTopN)
	if err != nil {
		logger.Warn("Vector search failed, falling back to fuzzy: %v", err)
		return r.fuzzySearch(ctx, query, languageCode, limit)
	}

	logger.Debug("Vector search: %d raw hits", len(hits))

	// Relevance filter runs on raw backend scores, before
	// normalisation remaps the scale.
	results := make([]domain.SearchResult, 0, limit)
	for _, hit := range hits {
		if hit.Score <= domain.MinVectorScore {
			continue
		}
		results = append(results, normaliseVectorHit(hit))
		if len(results) == limit {
			break
		}
	}

	logger.Info("Vector search: %d results after filtering", len(results))
	return domain.SearchResponse{Query: query, Results: results}, nil
}

// fuzzySearch matches entry titles lexically. When the primary pass
// yields nothing, the curated alias table is consulted and the primary
// pass retried with the aliased keyword; the response reports whichever
// keyword actually produced results.
func (r *Retrieval) fuzzySearch(
	ctx context.Context, query, languageCode string, limit int,
) (domain.SearchResponse, error) {
	results, err := r.fuzzyPass(ctx, query, languageCode, limit)
	if err != nil {
		return domain.SearchResponse{}, err
	}
	keyword := query

	if len(results) == 0 && r.catalog != nil {
		alias, err := r.catalog.LookupAlias(ctx, strings.ToLower(query))
		if err != nil {
			return domain.SearchResponse{}, fmt.Errorf("alias lookup: %w", err)
		}
		if alias != "" {
			logger.Debug("Fuzzy search: retrying with alias %q", alias)
			results, err = r.fuzzyPass(ctx, alias, languageCode, limit)
			if err != nil {
				return domain.SearchResponse{}, err
			}
			if len(results) > 0 {
				keyword = alias
			}
		}
	}

	logger.Info("Fuzzy search: %d results for %q", len(results), keyword)
	return domain.SearchResponse{Query: keyword, Results: results}, nil
}

// fuzzyPass runs one title pass with the distance filter applied before
// normalisation.
func (r *Retrieval) fuzzyPass(
	ctx context.Context, keyword, languageCode string, limit int,
) ([]domain.SearchResult, error) {
	hits, err := r.index.SearchFuzzy(ctx, languageCode, keyword, limit)
	if err != nil {
		return nil, fmt.Errorf("fuzzy search: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		if hit.Distance > domain.MaxFuzzyDistance {
			continue
		}
		results = append(results, normaliseFuzzyHit(hit))
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

// normaliseVectorHit maps a raw vector hit into the common shape.
func normaliseVectorHit(hit driven.VectorHit) domain.SearchResult {
	question, _, _ := cutChunkTitle(hit.Fields.ChunkText)
	return domain.SearchResult{
		ID:        hit.ID,
		Score:     hit.Score,
		Question:  question,
		Answer:    hit.Fields.AnswerText,
		Tags:      hit.Fields.Tags,
		SourceURL: hit.Fields.SourceURL,
		IndexedAt: hit.Fields.IndexedAt,
	}
}

// normaliseFuzzyHit maps a title match into the common shape. The
// title-only index carries no body text, so the answer is synthesised
// empty and the distance inverted into a score.
func normaliseFuzzyHit(hit driven.FuzzyHit) domain.SearchResult {
	return domain.SearchResult{
		ID:       hit.ID,
		Score:    1 - hit.Distance,
		Question: hit.Title,
		Answer:   "",
	}
}
