// Package file provides TOML-backed configuration storage under the
// babelkb config directory.
package file
