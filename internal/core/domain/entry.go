package domain

import "time"

// Entry represents a canonical knowledge-base item.
// Entries are owned and mutated by the content platform; the core
// only reads them and reacts to change notifications.
type Entry struct {
	// ID is the stable identifier assigned by the content platform.
	ID string

	// Title is the question or heading of the entry.
	Title string

	// Parts holds the ordered answer parts. Most entries have a single
	// part; long answers are split into multiple parts so they can be
	// delivered as separate messages.
	Parts []EntryPart

	// Tags is a set of free-form labels attached to the entry.
	Tags []string

	// SourceURL links back to the authoritative copy of the entry.
	SourceURL string

	// CreatedAt is when the entry was created on the content platform.
	CreatedAt time.Time
}

// EntryPart is one ordered body segment of an Entry.
type EntryPart struct {
	// ID identifies the part within its entry.
	ID string

	// Body is the text content of this part.
	Body string
}

// CharCount returns the number of characters that a translation of the
// entry would submit to the provider (title plus every part body).
// It is the basis for reindex cost estimates.
func (e *Entry) CharCount() int {
	n := len([]rune(e.Title))
	for _, p := range e.Parts {
		n += len([]rune(p.Body))
	}
	return n
}

// Body returns the concatenated body text of all parts.
func (e *Entry) Body() string {
	if len(e.Parts) == 0 {
		return ""
	}
	out := e.Parts[0].Body
	for _, p := range e.Parts[1:] {
		out += "\n" + p.Body
	}
	return out
}
