// Package store provides a content-addressed DynamoDB store for analyzed strings.
//
// Every entry is keyed by the SHA-256 of its value, and a second table holds
// one unique-constraint record per value. Both records are written in a single
// transaction, so two concurrent creates of the same value yield exactly one
// success and one conflict.
//
// # Tables
//
// The entries table uses "id" as its partition key. The unique-constraints
// table uses "pk" (partition) and "sk" (sort) string keys:
//
//	entries:            id (S)
//	unique constraints: pk (S), sk (S) = "CONSTRAINT"
//
// # Character containment
//
// [Store.Scan] evaluates contains_character with the mode set in
// [Config.ContainsMode]. The default, query.ContainsFrequency, tests the
// lowercased character as a key of the stored frequency map
// (attribute_exists on a map path). query.ContainsSubstring falls back to
// contains() on the raw value: case-sensitive, and less precise than the
// frequency lookup.
//
// # Configuration
//
// Use [DefaultConfig] for small tables (ScanSegments=1, one sequential scan).
// Increase ScanSegments to fan a scan out over parallel segments:
//
//	cfg := store.DefaultConfig()
//	cfg.ScanSegments = 8
//
// # Errors
//
//   - [ErrNotFound] - entry doesn't exist
//   - [ErrAlreadyExists] - an entry with the same key exists
//   - [ErrDuplicateValue] - the value's unique constraint is taken
//
// Both create errors match [ErrConflict] with errors.Is.
package store
