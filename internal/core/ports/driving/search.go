package driving

import (
	"context"

	"github.com/babelkb/babelkb/internal/core/domain"
)

// Searcher answers free-text queries against a language namespace.
type Searcher interface {
	// Search runs a query in the given mode. Vector mode falls back to
	// fuzzy mode automatically on provider failure.
	Search(ctx context.Context, query string, mode domain.SearchMode, languageCode string, limit int) (domain.SearchResponse, error)
}
