package driven

import (
	"context"

	"github.com/babelkb/babelkb/internal/core/domain"
)

// CatalogStore persists the subsystem's bookkeeping: which namespaces
// hold records for an entry, pending confirmation-gate approvals, and
// the curated search alias table.
type CatalogStore interface {
	// MarkIndexed records that entryID has records in namespace.
	MarkIndexed(ctx context.Context, entryID, namespace string) error

	// PopulatedNamespaces returns every namespace holding records for
	// entryID. Returns an empty slice for unknown entries.
	PopulatedNamespaces(ctx context.Context, entryID string) ([]string, error)

	// ClearIndexed forgets all namespace bookkeeping for entryID.
	ClearIndexed(ctx context.Context, entryID string) error

	// SaveApproval persists a confirmation-gate approval.
	SaveApproval(ctx context.Context, approval domain.PendingApproval) error

	// GetApproval retrieves an approval by id.
	// Returns domain.ErrNotFound if it does not exist.
	GetApproval(ctx context.Context, id string) (*domain.PendingApproval, error)

	// ListPendingApprovals returns unresolved approvals, oldest first.
	ListPendingApprovals(ctx context.Context) ([]domain.PendingApproval, error)

	// ResolveApproval marks an approval accepted or skipped.
	ResolveApproval(ctx context.Context, id string, status domain.ApprovalStatus) error

	// LookupAlias resolves an informal keyword to its canonical term.
	// Returns empty string when no alias exists.
	LookupAlias(ctx context.Context, keyword string) (string, error)

	// SaveAlias stores or replaces a keyword alias.
	SaveAlias(ctx context.Context, keyword, canonical string) error
}
