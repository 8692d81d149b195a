// Package repokit provides common types and helpers for repository implementations
package repokit

import (
	"outlier/internal/platform/store"
)

// Docs is the minimal document write surface repos bind to
type Docs = store.DocStore

type (
	// BulkAction is one queued index request
	BulkAction = store.BulkAction

	// BulkItem is the outcome of a single action in a bulk call
	BulkItem = store.BulkItem

	// BulkResult is the per-item outcome of a bulk call
	BulkResult = store.BulkResult

	// RefreshPolicy controls when a write becomes visible to readers
	RefreshPolicy = store.RefreshPolicy

	// WriteResult reports whether a write created or replaced a document
	WriteResult = store.WriteResult

	// WriteCallback receives the outcome of an async write exactly once
	WriteCallback = store.WriteCallback
)

// Refresh policies re-exported so repos never import the store package directly
const (
	RefreshNone      = store.RefreshNone
	RefreshWaitUntil = store.RefreshWaitUntil
	RefreshImmediate = store.RefreshImmediate
)

// Write results re-exported for the same reason
const (
	WriteCreated = store.WriteCreated
	WriteUpdated = store.WriteUpdated
	WriteNoop    = store.WriteNoop
)

// TargetMatches reports whether target is covered by pattern under family rules
func TargetMatches(pattern, target string) bool {
	return store.TargetMatches(pattern, target)
}
