// Package learnbank implements the learned-pattern lifecycle: synthesis of
// candidate interaction patterns from a discovered application profile,
// deduplication of candidates that denote the same action, and
// confidence-weighted merging into the persistent learned-pattern store.
//
// # Core Concepts
//
// A DiscoveredPattern is a scored candidate produced by one synthesis pass
// from fixed templates (authentication, navigation, per-UI-library). It is
// created fresh each run, never mutated, and discarded once folded into the
// store. A LearnedPattern is the persisted unit of knowledge; at most one
// exists per (normalized text, primitive) key within a store.
//
// # Merge Semantics
//
// Merge never deletes or mutates existing entries. A new candidate key is
// appended; an existing key is replaced only when the candidate's confidence
// is strictly greater. Merging the same discovered set twice therefore
// yields the same store, and repeated runs from parallel processes converge
// on the same content.
//
// # Concurrency
//
// Pattern identifiers are random UUIDs so concurrent synthesis runs never
// collide, and all persistence goes through atomic file replacement so a
// reader never observes a partially written store.
package learnbank
