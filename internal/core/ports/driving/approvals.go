package driving

import (
	"context"

	"github.com/babelkb/babelkb/internal/core/domain"
)

// ApprovalService exposes the confirmation gate to operators.
type ApprovalService interface {
	// Pending lists unresolved reindex approvals, oldest first.
	Pending(ctx context.Context) ([]domain.PendingApproval, error)

	// Accept runs the reindex fan-out recorded in the approval.
	Accept(ctx context.Context, id string) error

	// Skip resolves the approval without reindexing, leaving the index
	// stale until the next edit.
	Skip(ctx context.Context, id string) error
}
