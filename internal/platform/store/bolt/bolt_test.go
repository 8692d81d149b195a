package bolt

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	bbolt "go.etcd.io/bbolt"

	"outlier/internal/platform/testkit"
)

func TestOpenEmptyPathErrors(t *testing.T) {
	t.Parallel()

	if _, err := Open(Config{}); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestOpenCreatesFileAndRoundTrips(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "docs.db")
	b, err := Open(Config{Path: path, Timeout: 250 * time.Millisecond, NoSync: true})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.Close()

	if !b.DB.NoSync {
		t.Fatalf("expected NoSync to carry over from config")
	}

	if err := b.Update(func(tx *bbolt.Tx) error {
		bk, err := tx.CreateBucketIfNotExists([]byte("results"))
		if err != nil {
			return err
		}
		return bk.Put([]byte("doc-1"), []byte(`{"job_id":"farequote"}`))
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := b.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}

	var got []byte
	if err := b.View(func(tx *bbolt.Tx) error {
		got = tx.Bucket([]byte("results")).Get([]byte("doc-1"))
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	if !strings.Contains(string(got), "farequote") {
		t.Fatalf("unexpected stored value: %q", got)
	}
}

func TestOpenSeamFailureIsWrapped(t *testing.T) {
	testkit.Serial(t)
	testkit.Swap(t, &openFile, func(string, os.FileMode, *bbolt.Options) (*bbolt.DB, error) {
		return nil, errors.New("boom")
	})

	_, err := Open(Config{Path: "whatever.db"})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected wrapped open failure, got %v", err)
	}
}

func TestCloseNilSafe(t *testing.T) {
	t.Parallel()

	var b *Bolt
	if err := b.Close(); err != nil {
		t.Fatalf("nil receiver close: %v", err)
	}
	if err := (&Bolt{}).Close(); err != nil {
		t.Fatalf("nil db close: %v", err)
	}
}
