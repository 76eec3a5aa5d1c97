// Package driving defines the interfaces external actors use to call
// INTO the core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// Core services implement them; driving adapters (CLI, the surrounding
// application) consume them.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or service package
package driving
