package domain

import "time"

// ReindexEstimate is the cost/impact summary presented to a human
// before a gated reindex proceeds.
type ReindexEstimate struct {
	// EntryID identifies the entry awaiting reindex.
	EntryID string

	// Title is the entry title at estimate time.
	Title string

	// Languages lists the target language codes the fan-out would hit.
	Languages []string

	// CharCount is the number of characters submitted per language.
	CharCount int

	// Cost is the estimated monetary cost of the fan-out.
	Cost float64

	// Diff is a human-readable summary of what changed.
	Diff string
}

// ApprovalStatus tracks the lifecycle of a pending reindex approval.
type ApprovalStatus string

const (
	// ApprovalPending awaits a human decision. There is no automatic
	// timeout: an unanswered approval leaves the index stale for that
	// entry until the next edit.
	ApprovalPending ApprovalStatus = "pending"
	// ApprovalAccepted ran the fan-out.
	ApprovalAccepted ApprovalStatus = "accepted"
	// ApprovalSkipped left the index stale.
	ApprovalSkipped ApprovalStatus = "skipped"
)

// PendingApproval is a persisted confirmation-gate record.
type PendingApproval struct {
	// ID is the approval identifier.
	ID string

	// Estimate is the cost/impact summary shown to the operator.
	Estimate ReindexEstimate

	// Status is the current approval state.
	Status ApprovalStatus

	// CreatedAt is when the approval was raised.
	CreatedAt time.Time

	// ResolvedAt is when the approval was accepted or skipped.
	ResolvedAt *time.Time
}
