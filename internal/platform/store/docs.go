package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RefreshPolicy controls when a single-document write becomes visible to readers
type RefreshPolicy uint8

const (
	// RefreshNone leaves visibility to the store's own refresh cadence
	RefreshNone RefreshPolicy = iota

	// RefreshWaitUntil blocks the write until a refresh has made it visible
	RefreshWaitUntil

	// RefreshImmediate forces a refresh as part of the write
	RefreshImmediate
)

// String returns the policy name as used in logs
func (p RefreshPolicy) String() string {
	switch p {
	case RefreshWaitUntil:
		return "wait_until"
	case RefreshImmediate:
		return "immediate"
	default:
		return "none"
	}
}

// WriteResult is the outcome of a single-document write
type WriteResult uint8

const (
	// WriteCreated means the document did not exist before
	WriteCreated WriteResult = iota

	// WriteUpdated means an existing document was replaced
	WriteUpdated

	// WriteNoop means nothing reached the store (degraded write)
	WriteNoop
)

// String returns the outcome name as used in logs and metrics
func (r WriteResult) String() string {
	switch r {
	case WriteCreated:
		return "created"
	case WriteUpdated:
		return "updated"
	default:
		return "noop"
	}
}

// WriteCallback receives the outcome of an async single-document write.
// It is invoked exactly once, never on the caller's goroutine
type WriteCallback func(WriteResult, error)

// BulkAction is one document write inside a bulk request.
// An empty ID asks the store to assign one; the assigned id is reported
// back on the matching BulkItem and must be treated as opaque
type BulkAction struct {
	Target string
	ID     string
	Body   []byte
}

// BulkItem is the per-action outcome of a bulk write
type BulkItem struct {
	ID     string
	Result WriteResult
	Cause  string
}

// Failed reports whether this action was rejected
func (it BulkItem) Failed() bool { return it.Cause != "" }

// BulkResult carries per-action outcomes in request order
type BulkResult struct {
	Items []BulkItem
}

// HasFailures reports whether any action was rejected
func (r BulkResult) HasFailures() bool {
	for _, it := range r.Items {
		if it.Failed() {
			return true
		}
	}
	return false
}

// Failures returns the rejected items only
func (r BulkResult) Failures() []BulkItem {
	var out []BulkItem
	for _, it := range r.Items {
		if it.Failed() {
			out = append(out, it)
		}
	}
	return out
}

// FailureMessage renders one line per rejected action for logging
func (r BulkResult) FailureMessage() string {
	var b strings.Builder
	b.WriteString("failure in bulk execution:")
	for i, it := range r.Items {
		if !it.Failed() {
			continue
		}
		fmt.Fprintf(&b, "\n[%d]: id [%s], message [%s]", i, it.ID, it.Cause)
	}
	return b.String()
}

// assignID keeps the caller's id or mints one when the store gets to choose
func assignID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// TargetMatches reports whether target belongs to the family named by pattern.
// A pattern may carry a trailing '*' glob; otherwise a target matches when it
// equals the pattern or extends it with a '-' suffix, which is how write
// aliases and rolled-over generations are named
func TargetMatches(pattern, target string) bool {
	if i := strings.IndexByte(pattern, '*'); i >= 0 {
		return strings.HasPrefix(target, pattern[:i])
	}
	return target == pattern || strings.HasPrefix(target, pattern+"-")
}
