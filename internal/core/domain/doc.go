// Package domain defines the core business entities for babelkb.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Entry: A canonical knowledge-base item owned by the content platform
//   - IndexRecord: One retrievable, language-specific unit derived from an Entry
//   - LanguageProfile: A supported target language
//   - EntryEvent: A content-platform lifecycle notification
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
