// Package dir provides a content platform adapter backed by a
// directory of JSON entry files, one file per entry named <id>.json.
// A filesystem watcher turns file changes into entry lifecycle events,
// which makes local development and integration testing possible
// without the hosted platform.
package dir

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/babelkb/babelkb/internal/core/domain"
	"github.com/babelkb/babelkb/internal/core/ports/driven"
	"github.com/babelkb/babelkb/internal/logger"
)

// Ensure Platform implements the interface.
var _ driven.ContentPlatform = (*Platform)(nil)

// entryFile is the on-disk entry format.
type entryFile struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Parts     []entryFilePart `json:"parts"`
	Tags      []string        `json:"tags,omitempty"`
	SourceURL string          `json:"source_url,omitempty"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
}

type entryFilePart struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

// Platform serves entries from a directory and emits lifecycle events
// on file changes.
type Platform struct {
	dir string

	mu       sync.Mutex
	handlers []func(domain.EntryEvent)
	snapshot map[string]*domain.Entry
}

// NewPlatform creates a platform over the given directory.
func NewPlatform(dir string) (*Platform, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: content directory", domain.ErrMissingConfig)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("content directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	return &Platform{
		dir:      dir,
		snapshot: make(map[string]*domain.Entry),
	}, nil
}

// GetEntry fetches an entry by id.
func (p *Platform) GetEntry(_ context.Context, id string) (*domain.Entry, error) {
	return p.readEntry(filepath.Join(p.dir, id+".json"))
}

// ListEntries returns every entry in the directory.
func (p *Platform) ListEntries(_ context.Context) ([]domain.Entry, error) {
	files, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	var entries []domain.Entry
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		entry, err := p.readEntry(filepath.Join(p.dir, file.Name()))
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// Subscribe registers a handler for lifecycle events.
func (p *Platform) Subscribe(handler func(domain.EntryEvent)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, handler)
}

// Watch blocks, turning filesystem changes into lifecycle events until
// the context is cancelled. The starting state of the directory seeds
// the before-image used to diff updates.
func (p *Platform) Watch(ctx context.Context) error {
	if err := p.seedSnapshot(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(p.dir); err != nil {
		return fmt.Errorf("watch %s: %w", p.dir, err)
	}
	logger.Info("Watching %s for entry changes", p.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			p.handleFileEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// seedSnapshot loads the current directory contents.
func (p *Platform) seedSnapshot(ctx context.Context) error {
	entries, err := p.ListEntries(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot = make(map[string]*domain.Entry, len(entries))
	for i := range entries {
		p.snapshot[entries[i].ID] = &entries[i]
	}
	return nil
}

// handleFileEvent diffs one filesystem change against the snapshot and
// emits the matching lifecycle event.
func (p *Platform) handleFileEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".json") {
		return
	}
	id := strings.TrimSuffix(filepath.Base(event.Name), ".json")

	switch {
	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		p.emitDeleted(id)
	case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
		entry, err := p.readEntry(event.Name)
		if err != nil {
			logger.Warn("Skipping unreadable entry file %s: %v", event.Name, err)
			return
		}
		p.emitUpserted(entry)
	}
}

// emitUpserted raises a created or updated event depending on whether
// the entry was previously known, with change flags diffed against the
// before-image.
func (p *Platform) emitUpserted(entry *domain.Entry) {
	p.mu.Lock()
	previous := p.snapshot[entry.ID]
	p.snapshot[entry.ID] = entry
	handlers := p.handlers
	p.mu.Unlock()

	evt := domain.EntryEvent{
		Kind:    domain.EventCreated,
		EntryID: entry.ID,
		Entry:   entry,
	}
	if previous != nil {
		evt.Kind = domain.EventUpdated
		evt.Previous = previous
		evt.NameChanged = previous.Title != entry.Title
		evt.ContentChanged = contentChanged(previous, entry)
	}

	for _, handler := range handlers {
		handler(evt)
	}
}

// contentChanged reports whether an edit touched anything that ends up
// in an index record: part bodies, tags or the source URL. Title
// changes are reported separately via NameChanged.
func contentChanged(previous, entry *domain.Entry) bool {
	return previous.Body() != entry.Body() ||
		!slices.Equal(previous.Tags, entry.Tags) ||
		previous.SourceURL != entry.SourceURL
}

// emitDeleted raises a deleted event for a known entry.
func (p *Platform) emitDeleted(id string) {
	p.mu.Lock()
	previous, known := p.snapshot[id]
	delete(p.snapshot, id)
	handlers := p.handlers
	p.mu.Unlock()

	if !known {
		return
	}

	evt := domain.EntryEvent{
		Kind:     domain.EventDeleted,
		EntryID:  id,
		Previous: previous,
	}
	for _, handler := range handlers {
		handler(evt)
	}
}

// readEntry loads and validates one entry file.
func (p *Platform) readEntry(path string) (*domain.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read entry: %w", err)
	}

	var file entryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode entry %s: %w", filepath.Base(path), err)
	}

	id := strings.TrimSuffix(filepath.Base(path), ".json")
	if file.ID != "" && file.ID != id {
		return nil, fmt.Errorf("%w: entry id %q does not match filename %q", domain.ErrInvalidInput, file.ID, id)
	}

	entry := &domain.Entry{
		ID:        id,
		Title:     file.Title,
		Tags:      file.Tags,
		SourceURL: file.SourceURL,
		CreatedAt: file.CreatedAt,
	}
	for _, part := range file.Parts {
		entry.Parts = append(entry.Parts, domain.EntryPart{ID: part.ID, Body: part.Body})
	}
	return entry, nil
}
