package domain

// EventKind identifies a content-platform lifecycle notification.
// The set is closed: no other external trigger re-enters the reindex
// state machine.
type EventKind string

const (
	// EventCreated signals a new entry.
	EventCreated EventKind = "created"
	// EventUpdated signals an edit to an existing entry.
	EventUpdated EventKind = "updated"
	// EventDeleted signals entry removal.
	EventDeleted EventKind = "deleted"
)

// EntryEvent is a typed lifecycle notification dispatched by the
// content-platform adapter to its subscribers.
type EntryEvent struct {
	// Kind is the event variant.
	Kind EventKind

	// EntryID identifies the affected entry. Always set, including for
	// deletes where Entry is nil.
	EntryID string

	// Entry is the post-change state. Nil for EventDeleted.
	Entry *Entry

	// Previous is the pre-change state when available. Nil for
	// EventCreated and for platforms that do not supply before-state.
	Previous *Entry

	// NameChanged reports whether an update changed the entry title.
	NameChanged bool

	// ContentChanged reports whether an update changed tags, parts or
	// other indexed content.
	ContentChanged bool
}

// RequiresReindex reports whether the event must drive the
// translate-and-index fan-out. Title changes require a reindex too,
// since the title participates in every record's chunk text.
func (e EntryEvent) RequiresReindex() bool {
	switch e.Kind {
	case EventCreated:
		return true
	case EventUpdated:
		return e.NameChanged || e.ContentChanged
	default:
		return false
	}
}
