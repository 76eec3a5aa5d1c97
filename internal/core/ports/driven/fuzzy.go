package driven

import "context"

// FuzzyIndex is a lexical approximate-match structure over entry titles.
// It mirrors the vector index's namespace partitioning and id scheme and
// serves as the fallback when the vector provider fails.
type FuzzyIndex interface {
	// Upsert stores or replaces the title for a record id.
	Upsert(ctx context.Context, namespace, id, title string) error

	// DeleteByPrefix removes every title whose record id starts with prefix.
	DeleteByPrefix(ctx context.Context, namespace, prefix string) error

	// Search returns the closest titles to keyword, best first.
	Search(ctx context.Context, namespace, keyword string, limit int) ([]FuzzyHit, error)
}

// FuzzyHit is one approximate title match.
type FuzzyHit struct {
	// ID is the matched record id.
	ID string

	// Title is the stored title.
	Title string

	// Distance is the normalised edit distance in [0, 1];
	// lower is better.
	Distance float64
}
