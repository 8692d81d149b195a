// Package store provides a unified document store over optional backends
package store

import (
	"context"
	"errors"
	"fmt"

	"outlier/internal/platform/logger"
)

// Store is the facade for the configured backend
// zero value is safe but does nothing
type Store struct {
	// Log is the logger used by subclients
	// zero means a no op zerolog logger
	Log logger.Logger

	// Docs is the document seam, nil when the backend is off
	Docs DocStore
}

// DocStore is the write surface repos use for documents.
// Targets name logical document families; backends map them onto
// tables or buckets as they see fit
type DocStore interface {
	// BulkWrite upserts many documents in one request.
	// Per-action rejections come back on the BulkResult; the error
	// return is reserved for transport level failures
	BulkWrite(ctx context.Context, actions []BulkAction) (BulkResult, error)

	// Write upserts one document honoring the refresh policy
	Write(ctx context.Context, action BulkAction, policy RefreshPolicy) (WriteResult, error)

	// WriteAsync upserts one document off the caller's goroutine and
	// reports the outcome through done, which fires exactly once
	WriteAsync(ctx context.Context, action BulkAction, policy RefreshPolicy, done WriteCallback)

	// Refresh makes prior writes to the named target families visible.
	// Unknown targets are not an error
	Refresh(ctx context.Context, targets ...string) error

	// DeleteMatching removes documents in a target family whose body
	// contains every field of match, returning the count removed
	DeleteMatching(ctx context.Context, target string, match map[string]any) (int64, error)

	// Close releases the backend connection
	Close() error
}

// Pinger is any seam that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Open constructs a Store with the configured backend
// Backend "off" leaves Docs nil on the Store
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	// defaults for zero logger to avoid nil checks
	s.Log = s.Log.With().Logger()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case BackendPG:
		docs, err := openPG(ctx, cfg, s)
		if err != nil {
			return nil, err
		}
		s.Docs = docs
	case BackendCH:
		docs, err := openCH(ctx, cfg, s)
		if err != nil {
			return nil, err
		}
		s.Docs = docs
	case BackendBolt:
		docs, err := openBolt(ctx, cfg, s)
		if err != nil {
			return nil, err
		}
		s.Docs = docs
	case BackendOff, "":
		// nothing to open
	}

	return s, nil
}

// Guard verifies the configured seam is reachable
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	if s.Docs != nil {
		if p, ok := any(s.Docs).(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("docs: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes the initialized backend gracefully
// a nil seam is ignored
func (s *Store) Close(ctx context.Context) error {
	var errs []error

	if s.Docs != nil {
		if e := s.Docs.Close(); e != nil {
			errs = append(errs, e)
		}
	}

	return errors.Join(errs...)
}
