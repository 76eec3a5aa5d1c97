package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/babelkb/babelkb/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/babelkb/babelkb/internal/core/domain"
	"github.com/babelkb/babelkb/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CatalogStore = (*Store)(nil)

// Store is the SQLite-backed catalog store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.babelkb/data/catalog.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".babelkb", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "catalog.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// MarkIndexed records that entryID has records in namespace.
func (s *Store) MarkIndexed(ctx context.Context, entryID, namespace string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO indexed_namespaces (entry_id, namespace)
		VALUES (?, ?)
		ON CONFLICT(entry_id, namespace) DO UPDATE SET
			marked_at = CURRENT_TIMESTAMP
	`, entryID, namespace)
	if err != nil {
		return fmt.Errorf("marking indexed: %w", err)
	}
	return nil
}

// PopulatedNamespaces returns every namespace holding records for entryID.
func (s *Store) PopulatedNamespaces(ctx context.Context, entryID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT namespace FROM indexed_namespaces
		WHERE entry_id = ?
		ORDER BY namespace
	`, entryID)
	if err != nil {
		return nil, fmt.Errorf("querying namespaces: %w", err)
	}
	defer rows.Close()

	var namespaces []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var namespace string
		if err := rows.Scan(&namespace); err != nil {
			return nil, fmt.Errorf("scanning namespace: %w", err)
		}
		namespaces = append(namespaces, namespace)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating namespaces: %w", err)
	}
	return namespaces, nil
}

// ClearIndexed forgets all namespace bookkeeping for entryID.
func (s *Store) ClearIndexed(ctx context.Context, entryID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM indexed_namespaces WHERE entry_id = ?", entryID)
	if err != nil {
		return fmt.Errorf("clearing indexed: %w", err)
	}
	return nil
}

// SaveApproval persists a confirmation-gate approval.
func (s *Store) SaveApproval(ctx context.Context, approval domain.PendingApproval) error {
	estimateJSON, err := json.Marshal(approval.Estimate)
	if err != nil {
		return fmt.Errorf("marshalling estimate: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO approvals (id, estimate, status, created_at, resolved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			estimate = excluded.estimate,
			status = excluded.status,
			resolved_at = excluded.resolved_at
	`, approval.ID, string(estimateJSON), string(approval.Status),
		approval.CreatedAt, nullTime(approval.ResolvedAt))
	if err != nil {
		return fmt.Errorf("saving approval: %w", err)
	}
	return nil
}

// GetApproval retrieves an approval by id.
func (s *Store) GetApproval(ctx context.Context, id string) (*domain.PendingApproval, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, estimate, status, created_at, resolved_at
		FROM approvals WHERE id = ?
	`, id)

	return scanApproval(row.Scan)
}

// ListPendingApprovals returns unresolved approvals, oldest first.
func (s *Store) ListPendingApprovals(ctx context.Context) ([]domain.PendingApproval, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, estimate, status, created_at, resolved_at
		FROM approvals
		WHERE status = ?
		ORDER BY created_at
	`, string(domain.ApprovalPending))
	if err != nil {
		return nil, fmt.Errorf("querying approvals: %w", err)
	}
	defer rows.Close()

	var approvals []domain.PendingApproval //nolint:prealloc // size unknown from query
	for rows.Next() {
		approval, err := scanApproval(rows.Scan)
		if err != nil {
			return nil, err
		}
		approvals = append(approvals, *approval)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating approvals: %w", err)
	}
	return approvals, nil
}

// ResolveApproval marks an approval accepted or skipped.
func (s *Store) ResolveApproval(ctx context.Context, id string, status domain.ApprovalStatus) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE approvals SET status = ?, resolved_at = ? WHERE id = ?
	`, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("resolving approval: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolving approval: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// LookupAlias resolves an informal keyword to its canonical term.
func (s *Store) LookupAlias(ctx context.Context, keyword string) (string, error) {
	var canonical string
	err := s.db.QueryRowContext(ctx,
		"SELECT canonical FROM aliases WHERE keyword = ?", keyword).Scan(&canonical)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("looking up alias: %w", err)
	}
	return canonical, nil
}

// SaveAlias stores or replaces a keyword alias.
func (s *Store) SaveAlias(ctx context.Context, keyword, canonical string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO aliases (keyword, canonical)
		VALUES (?, ?)
		ON CONFLICT(keyword) DO UPDATE SET
			canonical = excluded.canonical
	`, keyword, canonical)
	if err != nil {
		return fmt.Errorf("saving alias: %w", err)
	}
	return nil
}

// scanApproval scans one approval row through the given scan function.
func scanApproval(scan func(dest ...any) error) (*domain.PendingApproval, error) {
	var approval domain.PendingApproval
	var estimateJSON, status string
	var resolvedAt sql.NullTime

	if err := scan(&approval.ID, &estimateJSON, &status, &approval.CreatedAt, &resolvedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning approval: %w", err)
	}

	if err := json.Unmarshal([]byte(estimateJSON), &approval.Estimate); err != nil {
		return nil, fmt.Errorf("unmarshalling estimate: %w", err)
	}

	approval.Status = domain.ApprovalStatus(status)
	if resolvedAt.Valid {
		approval.ResolvedAt = &resolvedAt.Time
	}
	return &approval, nil
}

// nullTime maps an optional time to its SQL representation.
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
