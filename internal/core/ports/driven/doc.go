// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the subsystem to function:
//
//   - VectorSearchProvider: Namespaced vector upsert/search/delete
//   - FuzzyIndex: Lexical title matching, the vector fallback path
//   - TranslationProvider: Chunked text translation and glossary upkeep
//   - CatalogStore: Namespace bookkeeping, approvals and aliases
//   - SettingsStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the subsystem degrades gracefully:
//
//   - LLMService: Remote language classification fallback. Without it,
//     only the local statistical classifier is consulted.
//   - AlertSink: Operator alerting. Without it, failures are logged only.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
