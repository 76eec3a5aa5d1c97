// Package memory provides in-memory store implementations for tests
// and ephemeral runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/babelkb/babelkb/internal/core/domain"
	"github.com/babelkb/babelkb/internal/core/ports/driven"
)

// Ensure CatalogStore implements the interface.
var _ driven.CatalogStore = (*CatalogStore)(nil)

// CatalogStore is an in-memory implementation of driven.CatalogStore.
type CatalogStore struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]bool
	approvals  map[string]domain.PendingApproval
	aliases    map[string]string
}

// NewCatalogStore creates a new in-memory catalog store.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		namespaces: make(map[string]map[string]bool),
		approvals:  make(map[string]domain.PendingApproval),
		aliases:    make(map[string]string),
	}
}

// MarkIndexed records that entryID has records in namespace.
func (s *CatalogStore) MarkIndexed(_ context.Context, entryID, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.namespaces[entryID] == nil {
		s.namespaces[entryID] = make(map[string]bool)
	}
	s.namespaces[entryID][namespace] = true
	return nil
}

// PopulatedNamespaces returns every namespace holding records for entryID.
func (s *CatalogStore) PopulatedNamespaces(_ context.Context, entryID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	namespaces := make([]string, 0, len(s.namespaces[entryID]))
	for namespace := range s.namespaces[entryID] {
		namespaces = append(namespaces, namespace)
	}
	sort.Strings(namespaces)
	return namespaces, nil
}

// ClearIndexed forgets all namespace bookkeeping for entryID.
func (s *CatalogStore) ClearIndexed(_ context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.namespaces, entryID)
	return nil
}

// SaveApproval persists a confirmation-gate approval.
func (s *CatalogStore) SaveApproval(_ context.Context, approval domain.PendingApproval) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approvals[approval.ID] = approval
	return nil
}

// GetApproval retrieves an approval by id.
func (s *CatalogStore) GetApproval(_ context.Context, id string) (*domain.PendingApproval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	approval, ok := s.approvals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &approval, nil
}

// ListPendingApprovals returns unresolved approvals, oldest first.
func (s *CatalogStore) ListPendingApprovals(_ context.Context) ([]domain.PendingApproval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []domain.PendingApproval
	for _, approval := range s.approvals {
		if approval.Status == domain.ApprovalPending {
			pending = append(pending, approval)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return pending, nil
}

// ResolveApproval marks an approval accepted or skipped.
func (s *CatalogStore) ResolveApproval(_ context.Context, id string, status domain.ApprovalStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	approval, ok := s.approvals[id]
	if !ok {
		return domain.ErrNotFound
	}
	approval.Status = status
	s.approvals[id] = approval
	return nil
}

// LookupAlias resolves an informal keyword to its canonical term.
func (s *CatalogStore) LookupAlias(_ context.Context, keyword string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aliases[keyword], nil
}

// SaveAlias stores or replaces a keyword alias.
func (s *CatalogStore) SaveAlias(_ context.Context, keyword, canonical string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aliases[keyword] = canonical
	return nil
}
