package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/babelkb/babelkb/internal/core/domain"
	"github.com/babelkb/babelkb/internal/core/ports/driven"
	"github.com/babelkb/babelkb/internal/core/ports/driving"
	"github.com/babelkb/babelkb/internal/logger"
)

// Ensure Reindex implements the interfaces.
var (
	_ driving.Indexer         = (*Reindex)(nil)
	_ driving.ApprovalService = (*Reindex)(nil)
)

// Reindex reacts to entry lifecycle events and drives the translation
// pipeline and index store across all enabled languages. Each
// language's pipeline runs independently: one failure is alerted and
// does not block or roll back siblings. There is no cross-language
// atomicity; the system is eventually consistent per language.
type Reindex struct {
	translation *Translation
	index       *Index
	catalog     driven.CatalogStore
	settings    driven.SettingsStore
	alerts      driven.AlertSink
	profiles    []domain.LanguageProfile

	// entryLoader fetches the current entry state when an approval is
	// accepted, since the gated event's payload may be stale by then.
	entryLoader func(ctx context.Context, entryID string) (*domain.Entry, error)

	now func() time.Time
}

// NewReindex creates the reindex coordinator.
// The alerts parameter is optional (can be nil); failures are then
// logged only.
func NewReindex(
	translation *Translation,
	index *Index,
	catalog driven.CatalogStore,
	settings driven.SettingsStore,
	alerts driven.AlertSink,
	profiles []domain.LanguageProfile,
) (*Reindex, error) {
	if translation == nil {
		return nil, fmt.Errorf("%w: translation pipeline", domain.ErrMissingConfig)
	}
	if index == nil {
		return nil, fmt.Errorf("%w: index store", domain.ErrMissingConfig)
	}
	if catalog == nil {
		return nil, fmt.Errorf("%w: catalog store", domain.ErrMissingConfig)
	}

	return &Reindex{
		translation: translation,
		index:       index,
		catalog:     catalog,
		settings:    settings,
		alerts:      alerts,
		profiles:    profiles,
		now:         time.Now,
	}, nil
}

// HandleEvent is the single entry point of the reindex state machine.
// No other external trigger re-enters it.
func (r *Reindex) HandleEvent(ctx context.Context, event domain.EntryEvent) error {
	logger.Section("Entry Event")
	logger.Info("Event %s for entry %s", event.Kind, event.EntryID)

	switch event.Kind {
	case domain.EventCreated:
		return r.TranslateAndIndexEntryAllLanguages(ctx, event.Entry)

	case domain.EventUpdated:
		if !event.RequiresReindex() {
			logger.Debug("Update to %s changed nothing indexed, ignoring", event.EntryID)
			return nil
		}
		if r.gateEnabled() {
			return r.raiseApproval(ctx, event)
		}
		return r.TranslateAndIndexEntryAllLanguages(ctx, event.Entry)

	case domain.EventDeleted:
		return r.UnindexEntryAllLanguages(ctx, event.EntryID)

	default:
		return fmt.Errorf("%w: event kind %q", domain.ErrInvalidInput, event.Kind)
	}
}

// TranslateAndIndexEntry translates an entry into one language and
// upserts the records into that language's namespace. The source
// profile passes the entry through untouched.
func (r *Reindex) TranslateAndIndexEntry(ctx context.Context, entry *domain.Entry, languageCode string) error {
	profile, err := r.profile(languageCode)
	if err != nil {
		return err
	}

	title := entry.Title
	bodies := make([]string, len(entry.Parts))
	for i, p := range entry.Parts {
		bodies[i] = p.Body
	}

	if !profile.IsSource() {
		translated, err := r.translation.Translate(ctx, entry, profile)
		if err != nil {
			return fmt.Errorf("translate %s into %s: %w", entry.ID, profile.Code, err)
		}
		title = translated.Title
		bodies = translated.Parts
	}

	records := domain.RecordsForEntry(entry, title, bodies, r.now())
	if err := r.index.Upsert(ctx, profile.Code, records); err != nil {
		return fmt.Errorf("index %s into %s: %w", entry.ID, profile.Code, err)
	}

	logger.Info("Indexed %s (%d records) into %s", entry.ID, len(records), profile.Code)
	return nil
}

// TranslateAndIndexEntryAllLanguages fans out over every enabled
// profile concurrently. Failures are isolated per language: siblings
// proceed, the error is alerted, and the joined error is returned.
func (r *Reindex) TranslateAndIndexEntryAllLanguages(ctx context.Context, entry *domain.Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: nil entry", domain.ErrInvalidInput)
	}

	var g errgroup.Group
	errsByLang := make([]error, len(r.profiles))

	for i, profile := range r.profiles {
		if !profile.IsSource() && !profile.Translatable {
			continue
		}
		g.Go(func() error {
			if err := r.TranslateAndIndexEntry(ctx, entry, profile.Code); err != nil {
				errsByLang[i] = err
				r.alert(ctx, "reindex failed", map[string]string{
					"entry":    entry.ID,
					"language": profile.Code,
					"error":    err.Error(),
				})
			}
			// Never abort the group: sibling languages must finish.
			return nil
		})
	}

	_ = g.Wait()
	return errors.Join(errsByLang...)
}

// UnindexEntry removes an entry from one language namespace.
func (r *Reindex) UnindexEntry(ctx context.Context, entryID, languageCode string) error {
	if _, err := r.profile(languageCode); err != nil {
		return err
	}
	return r.index.DeleteByEntryID(ctx, entryID, languageCode)
}

// UnindexEntryAllLanguages removes an entry from every namespace the
// catalog knows to be populated. Not-found responses are success.
func (r *Reindex) UnindexEntryAllLanguages(ctx context.Context, entryID string) error {
	namespaces, err := r.catalog.PopulatedNamespaces(ctx, entryID)
	if err != nil {
		return fmt.Errorf("populated namespaces for %s: %w", entryID, err)
	}
	if len(namespaces) == 0 {
		// Nothing recorded; fall back to every enabled profile so a
		// lost catalog cannot leave stale records behind.
		for _, p := range r.profiles {
			namespaces = append(namespaces, r.index.Namespace(p.Code))
		}
	}

	var errs []error
	for _, namespace := range namespaces {
		languageCode := r.languageForNamespace(namespace)
		if err := r.index.DeleteByEntryID(ctx, entryID, languageCode); err != nil {
			errs = append(errs, fmt.Errorf("unindex %s from %s: %w", entryID, namespace, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if err := r.catalog.ClearIndexed(ctx, entryID); err != nil {
		return fmt.Errorf("clear catalog for %s: %w", entryID, err)
	}
	logger.Info("Unindexed %s from %d namespaces", entryID, len(namespaces))
	return nil
}

// Pending lists unresolved approvals, oldest first.
func (r *Reindex) Pending(ctx context.Context) ([]domain.PendingApproval, error) {
	return r.catalog.ListPendingApprovals(ctx)
}

// Accept runs the fan-out recorded in a pending approval.
func (r *Reindex) Accept(ctx context.Context, id string) error {
	approval, err := r.catalog.GetApproval(ctx, id)
	if err != nil {
		return fmt.Errorf("get approval %s: %w", id, err)
	}
	if approval.Status != domain.ApprovalPending {
		return fmt.Errorf("%w: approval %s already %s", domain.ErrInvalidInput, id, approval.Status)
	}

	entry, err := r.entryForApproval(ctx, approval)
	if err != nil {
		return err
	}

	if err := r.TranslateAndIndexEntryAllLanguages(ctx, entry); err != nil {
		return err
	}
	return r.catalog.ResolveApproval(ctx, id, domain.ApprovalAccepted)
}

// Skip resolves an approval without reindexing. The index stays stale
// for that entry until the next edit.
func (r *Reindex) Skip(ctx context.Context, id string) error {
	approval, err := r.catalog.GetApproval(ctx, id)
	if err != nil {
		return fmt.Errorf("get approval %s: %w", id, err)
	}
	if approval.Status != domain.ApprovalPending {
		return fmt.Errorf("%w: approval %s already %s", domain.ErrInvalidInput, id, approval.Status)
	}
	return r.catalog.ResolveApproval(ctx, id, domain.ApprovalSkipped)
}

// SetEntryLoader installs the entry fetch used when accepting stale
// approvals whose event payload is no longer available.
func (r *Reindex) SetEntryLoader(loader func(ctx context.Context, entryID string) (*domain.Entry, error)) {
	r.entryLoader = loader
}

// entryForApproval loads the entry an approval refers to.
func (r *Reindex) entryForApproval(ctx context.Context, approval *domain.PendingApproval) (*domain.Entry, error) {
	if r.entryLoader == nil {
		return nil, fmt.Errorf("%w: entry loader", domain.ErrMissingConfig)
	}
	entry, err := r.entryLoader(ctx, approval.Estimate.EntryID)
	if err != nil {
		return nil, fmt.Errorf("load entry %s: %w", approval.Estimate.EntryID, err)
	}
	return entry, nil
}

// raiseApproval computes the cost/impact estimate and persists it for
// a human decision. No indexing happens until an explicit accept.
func (r *Reindex) raiseApproval(ctx context.Context, event domain.EntryEvent) error {
	entry := event.Entry
	languages := r.targetLanguages()

	estimate := domain.ReindexEstimate{
		EntryID:   entry.ID,
		Title:     entry.Title,
		Languages: languages,
		CharCount: entry.CharCount(),
		Cost:      r.translation.EstimateCost(entry.CharCount(), len(languages)),
		Diff:      describeChange(event),
	}

	approval := domain.PendingApproval{
		ID:        uuid.NewString(),
		Estimate:  estimate,
		Status:    domain.ApprovalPending,
		CreatedAt: r.now(),
	}
	if err := r.catalog.SaveApproval(ctx, approval); err != nil {
		return fmt.Errorf("save approval: %w", err)
	}

	logger.Info("Reindex of %s gated: %d languages, %d chars, estimated cost %.4f (approval %s)",
		entry.ID, len(languages), estimate.CharCount, estimate.Cost, approval.ID)
	return nil
}

// gateEnabled reports whether edits wait for human confirmation.
func (r *Reindex) gateEnabled() bool {
	return r.settings != nil && r.settings.GetBool(driven.SettingConfirmReindex)
}

// alert forwards a failure to the sink when one is configured.
func (r *Reindex) alert(ctx context.Context, message string, fields map[string]string) {
	logger.Warn("%s: %v", message, fields)
	if r.alerts != nil {
		r.alerts.Alert(ctx, message, fields)
	}
}

// profile resolves a language code against the configured set.
func (r *Reindex) profile(code string) (domain.LanguageProfile, error) {
	for _, p := range r.profiles {
		if p.Code == code {
			return p, nil
		}
	}
	return domain.LanguageProfile{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedLanguage, code)
}

// targetLanguages lists the translated (non-source) fan-out targets.
func (r *Reindex) targetLanguages() []string {
	languages := make([]string, 0, len(r.profiles))
	for _, p := range r.profiles {
		if !p.IsSource() && p.Translatable {
			languages = append(languages, p.Code)
		}
	}
	return languages
}

// languageForNamespace strips the environment prefix back off.
func (r *Reindex) languageForNamespace(namespace string) string {
	for _, p := range r.profiles {
		if r.index.Namespace(p.Code) == namespace {
			return p.Code
		}
	}
	return namespace
}

// describeChange builds the human-readable diff shown in the
// confirmation gate.
func describeChange(event domain.EntryEvent) string {
	if event.Previous == nil || event.Entry == nil {
		return "entry edited"
	}

	diff := ""
	if event.NameChanged {
		diff += fmt.Sprintf("title: %q -> %q\n", event.Previous.Title, event.Entry.Title)
	}
	if event.ContentChanged {
		diff += fmt.Sprintf("content: %d chars -> %d chars, %d parts -> %d parts\n",
			event.Previous.CharCount(), event.Entry.CharCount(),
			len(event.Previous.Parts), len(event.Entry.Parts))
	}
	if diff == "" {
		diff = "entry edited"
	}
	return diff
}
