package driven

import (
	"context"

	"github.com/babelkb/babelkb/internal/core/domain"
)

// ContentPlatform supplies canonical entries and emits lifecycle
// notifications. The adapter owns the subscription list; events are a
// closed set of typed variants, not an implicit broadcast object.
type ContentPlatform interface {
	// GetEntry fetches an entry by id.
	// Returns domain.ErrNotFound if it does not exist.
	GetEntry(ctx context.Context, id string) (*domain.Entry, error)

	// ListEntries returns every known entry.
	ListEntries(ctx context.Context) ([]domain.Entry, error)

	// Subscribe registers a handler for lifecycle events. Handlers are
	// invoked sequentially in registration order.
	Subscribe(handler func(domain.EntryEvent))
}
