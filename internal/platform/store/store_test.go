package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	perr "outlier/internal/platform/errors"
)

// TestOpen_OffBackend_LeavesDocsNil exercises the do-nothing path from Open
func TestOpen_OffBackend_LeavesDocsNil(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	for _, backend := range []Backend{BackendOff, ""} {
		s, err := Open(ctx, Config{Backend: backend})
		if err != nil {
			t.Fatalf("Open(%q) returned error: %v", backend, err)
		}
		if s == nil {
			t.Fatalf("Open(%q) returned nil store", backend)
		}
		if s.Docs != nil {
			t.Fatalf("unexpected docs seam for backend %q: %T", backend, s.Docs)
		}
		if err := s.Close(ctx); err != nil {
			t.Fatalf("Close returned error: %v", err)
		}
	}
}

// TestOpen_UnknownBackend_FailsValidation covers the oneof tag
func TestOpen_UnknownBackend_FailsValidation(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), Config{Backend: "oracle"})
	if err == nil {
		t.Fatalf("expected validation error, got store=%#v", s)
	}
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("expected validation code, got %v", err)
	}
}

// TestOpen_PGWithoutURL_Rejected covers the per backend required check
func TestOpen_PGWithoutURL_Rejected(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), Config{Backend: BackendPG})
	if err == nil {
		t.Fatalf("expected error for pg backend without url")
	}
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("expected invalid argument code, got %v", err)
	}
}

// TestOpen_PGBadURL_BubblesError covers the PG error path
func TestOpen_PGBadURL_BubblesError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := Config{
		Backend: BackendPG,
		PG: PGConfig{
			URL:      "://bad", // parse error inside pg.Open
			MaxConns: 1,
		},
	}

	s, err := Open(ctx, cfg)
	if err == nil {
		t.Fatalf("expected Open error for bad PG URL, got store=%#v", s)
	}
	if s != nil {
		t.Fatalf("expected nil store on error, got %#v", s)
	}
}

// TestOpen_Bolt_RoundTrip walks the whole embedded path: open, guard,
// write twice, close
func TestOpen_Bolt_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := Config{
		Backend: BackendBolt,
		Bolt: BoltConfig{
			Path:   filepath.Join(t.TempDir(), "docs.db"),
			NoSync: true,
		},
	}

	s, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if s.Docs == nil {
		t.Fatalf("docs seam not initialized")
	}
	if err := s.Guard(ctx); err != nil {
		t.Fatalf("Guard returned error: %v", err)
	}

	act := BulkAction{Target: "anomalies-farequote", ID: "doc-1", Body: []byte(`{"job_id":"farequote"}`)}
	r, err := s.Docs.Write(ctx, act, RefreshWaitUntil)
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if r != WriteCreated {
		t.Fatalf("first write should create, got %s", r)
	}
	r, err = s.Docs.Write(ctx, act, RefreshNone)
	if err != nil {
		t.Fatalf("second Write returned error: %v", err)
	}
	if r != WriteUpdated {
		t.Fatalf("second write should update, got %s", r)
	}

	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

// TestOpen_OptionsApplied_NoPanicOnWithLogger exercises the WithLogger option path
func TestOpen_OptionsApplied_NoPanicOnWithLogger(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// Build a zero-value zerolog.Logger (valid, no-op)
	var zl zerolog.Logger

	s, err := Open(ctx, Config{}, WithLogger(zl))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if s == nil {
		t.Fatalf("Open returned nil store")
	}
	// Close on empty store should be fine
	if e := s.Close(ctx); e != nil {
		t.Fatalf("Close on empty store returned error: %v", e)
	}
}
