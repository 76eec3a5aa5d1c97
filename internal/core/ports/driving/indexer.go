package driving

import (
	"context"

	"github.com/babelkb/babelkb/internal/core/domain"
)

// Indexer keeps the per-language indexes consistent with canonical entries.
type Indexer interface {
	// TranslateAndIndexEntry translates entry into one language and
	// upserts the resulting records into that language's namespace.
	// The source language skips translation.
	TranslateAndIndexEntry(ctx context.Context, entry *domain.Entry, languageCode string) error

	// TranslateAndIndexEntryAllLanguages fans out over every enabled
	// language profile concurrently. One language's failure is reported
	// and does not block or roll back siblings.
	TranslateAndIndexEntryAllLanguages(ctx context.Context, entry *domain.Entry) error

	// UnindexEntry removes every record of an entry from one language
	// namespace. Missing records are a successful no-op.
	UnindexEntry(ctx context.Context, entryID, languageCode string) error

	// UnindexEntryAllLanguages removes the entry from every populated
	// namespace.
	UnindexEntryAllLanguages(ctx context.Context, entryID string) error
}
