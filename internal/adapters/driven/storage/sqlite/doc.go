// Package sqlite provides SQLite-backed persistence for the index
// catalog: namespace bookkeeping, confirmation-gate approvals and the
// curated search alias table. The schema is managed through embedded
// versioned migrations.
package sqlite
