package domain

import (
	"strings"
	"time"
)

// recordIDPrefix starts every index record identifier.
const recordIDPrefix = "entry#"

// IndexRecord is one retrievable unit per (entry, part, language).
// Records are partitioned into one namespace per language code;
// namespaces are disjoint, independently writable and queryable.
type IndexRecord struct {
	// ID is the deterministic record identifier. The first part of an
	// entry uses "entry#<entryID>", subsequent parts
	// "entry#<entryID>#<partID>". Re-indexing the same triple always
	// overwrites in place.
	ID string

	// ChunkText is the text used for embedding and lexical matching
	// (title plus part body).
	ChunkText string

	// AnswerText is the part body returned to the user.
	AnswerText string

	// Tags carries the entry tags.
	Tags []string

	// SourceURL links back to the canonical entry.
	SourceURL string

	// IndexedAt is when this record was last written.
	IndexedAt time.Time
}

// RecordID builds the deterministic identifier for a record.
// position is the zero-based part position within the entry.
func RecordID(entryID string, position int, partID string) string {
	if position == 0 {
		return recordIDPrefix + entryID
	}
	return recordIDPrefix + entryID + "#" + partID
}

// RecordPrefix returns the identifier prefix shared by every record of
// an entry. Deleting by this prefix removes all parts of a multi-part
// entry in a single call.
func RecordPrefix(entryID string) string {
	return recordIDPrefix + entryID
}

// MatchesPrefix reports whether a record identifier belongs to the
// entry whose records share prefix: the id is the prefix itself or
// extends it at a part delimiter. A plain string-prefix test is not
// enough, since "entry#t10" starts with the prefix of entry "t1" but
// belongs to a different entry.
func MatchesPrefix(recordID, prefix string) bool {
	return recordID == prefix || strings.HasPrefix(recordID, prefix+"#")
}

// MatchesEntry reports whether a record identifier belongs to the entry.
func MatchesEntry(recordID, entryID string) bool {
	return MatchesPrefix(recordID, RecordPrefix(entryID))
}

// RecordsForEntry derives the per-part index records for an entry using
// the given (possibly translated) title and part bodies.
func RecordsForEntry(entry *Entry, title string, bodies []string, now time.Time) []IndexRecord {
	records := make([]IndexRecord, 0, len(bodies))
	for i, body := range bodies {
		partID := ""
		if i < len(entry.Parts) {
			partID = entry.Parts[i].ID
		}
		records = append(records, IndexRecord{
			ID:         RecordID(entry.ID, i, partID),
			ChunkText:  title + "\n" + body,
			AnswerText: body,
			Tags:       entry.Tags,
			SourceURL:  entry.SourceURL,
			IndexedAt:  now,
		})
	}
	return records
}
