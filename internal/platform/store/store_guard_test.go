package store

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeDocsNoPing satisfies DocStore but not Pinger
type fakeDocsNoPing struct{}

func (f *fakeDocsNoPing) BulkWrite(context.Context, []BulkAction) (BulkResult, error) {
	return BulkResult{}, nil
}

func (f *fakeDocsNoPing) Write(context.Context, BulkAction, RefreshPolicy) (WriteResult, error) {
	return WriteCreated, nil
}

func (f *fakeDocsNoPing) WriteAsync(_ context.Context, _ BulkAction, _ RefreshPolicy, done WriteCallback) {
	if done != nil {
		go done(WriteCreated, nil)
	}
}

func (f *fakeDocsNoPing) Refresh(context.Context, ...string) error { return nil }

func (f *fakeDocsNoPing) DeleteMatching(context.Context, string, map[string]any) (int64, error) {
	return 0, nil
}

func (f *fakeDocsNoPing) Close() error { return nil }

// fakeDocsWithPing satisfies DocStore and Pinger
type fakeDocsWithPing struct {
	fakeDocsNoPing
	err error
}

func (f *fakeDocsWithPing) Ping(context.Context) error { return f.err }

func TestGuard_NilStore(t *testing.T) {
	t.Parallel()

	var s *Store = nil
	if err := s.Guard(context.Background()); err == nil {
		t.Fatalf("nil store should return error")
	}
}

func TestGuard_NoSeams(t *testing.T) {
	t.Parallel()

	s := &Store{}
	if err := s.Guard(context.Background()); err != nil {
		t.Fatalf("expected nil error when no seams are set, got %v", err)
	}
}

func TestGuard_Docs_NotPinger_Ignored(t *testing.T) {
	t.Parallel()

	s := &Store{Docs: &fakeDocsNoPing{}}
	if err := s.Guard(context.Background()); err != nil {
		t.Fatalf("expected nil error when Docs is not a Pinger, got %v", err)
	}
}

func TestGuard_Docs_PingOK(t *testing.T) {
	t.Parallel()

	s := &Store{Docs: &fakeDocsWithPing{err: nil}}
	if err := s.Guard(context.Background()); err != nil {
		t.Fatalf("expected nil error when Docs.Ping succeeds, got %v", err)
	}
}

func TestGuard_Docs_PingError_Wrapped(t *testing.T) {
	t.Parallel()

	s := &Store{Docs: &fakeDocsWithPing{err: errors.New("boom")}}
	err := s.Guard(context.Background())
	if err == nil {
		t.Fatalf("expected non-nil error when Docs.Ping fails")
	}
	// Guard prefixes docs errors with "docs: "
	if !strings.HasPrefix(err.Error(), "docs: ") {
		t.Fatalf("expected error to be prefixed with 'docs: ', got %q", err.Error())
	}
}
