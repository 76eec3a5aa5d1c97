package driven

import "context"

// AlertSink reports operator-visible failures with entry/language
// context attached. Failures above explicit not-found/validation no-ops
// are never silently swallowed.
type AlertSink interface {
	// Alert delivers one failure report. Delivery errors are the
	// sink's problem; callers fire and forget.
	Alert(ctx context.Context, message string, fields map[string]string)
}
