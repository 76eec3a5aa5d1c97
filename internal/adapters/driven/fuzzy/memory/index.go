// Package memory provides an in-memory fuzzy title index using
// normalised Levenshtein distance. It is rebuilt alongside the vector
// index on every upsert, so process restarts repopulate it from the
// same reindex path.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/babelkb/babelkb/internal/core/domain"
	"github.com/babelkb/babelkb/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.FuzzyIndex = (*Index)(nil)

// Index holds per-namespace title tables guarded by one lock. Title
// counts are small (one per indexed part) so a linear scan per search
// is fine.
type Index struct {
	mu     sync.RWMutex
	titles map[string]map[string]string
}

// NewIndex creates an empty fuzzy index.
func NewIndex() *Index {
	return &Index{
		titles: make(map[string]map[string]string),
	}
}

// Upsert stores or replaces the title for a record id.
func (idx *Index) Upsert(_ context.Context, namespace, id, title string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	ns, ok := idx.titles[namespace]
	if !ok {
		ns = make(map[string]string)
		idx.titles[namespace] = ns
	}
	ns[id] = title
	return nil
}

// DeleteByPrefix removes every title belonging to the entry whose
// records share prefix. Matching is delimiter-aware, so deleting entry
// t1 leaves entry t10 untouched.
func (idx *Index) DeleteByPrefix(_ context.Context, namespace, prefix string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for id := range idx.titles[namespace] {
		if domain.MatchesPrefix(id, prefix) {
			delete(idx.titles[namespace], id)
		}
	}
	return nil
}

// Search returns the closest titles to keyword, best first.
func (idx *Index) Search(_ context.Context, namespace, keyword string, limit int) ([]driven.FuzzyHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return nil, nil
	}

	hits := make([]driven.FuzzyHit, 0, len(idx.titles[namespace]))
	for id, title := range idx.titles[namespace] {
		hits = append(hits, driven.FuzzyHit{
			ID:       id,
			Title:    title,
			Distance: distance(needle, strings.ToLower(title)),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ID < hits[j].ID
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// distance is the normalised edit distance between keyword and title in
// [0, 1]. A keyword rarely spans a whole title, so the title is also
// compared word by word and the best match wins; "reset" against
// "how do i reset?" scores near zero rather than near one.
func distance(keyword, title string) float64 {
	best := normalised(keyword, title)
	for _, word := range strings.Fields(title) {
		word = strings.Trim(word, ".,!?;:\"'")
		if word == "" {
			continue
		}
		if d := normalised(keyword, word); d < best {
			best = d
		}
	}
	return best
}

// normalised divides the raw edit distance by the longer length.
func normalised(a, b string) float64 {
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(longest)
}
