// Package bolt wraps the embedded bbolt file store
package bolt

import (
	"time"

	bbolt "go.etcd.io/bbolt"

	perr "outlier/internal/platform/errors"
)

// Config carries open settings for the bolt file
type Config struct {
	Path    string
	Timeout time.Duration
	NoSync  bool
}

// Bolt is a thin wrapper over a bbolt database handle
type Bolt struct {
	DB *bbolt.DB
}

// seam for tests
var openFile = bbolt.Open

// Open opens (or creates) the database file.
// The timeout keeps a file locked by another process from blocking boot forever
func Open(cfg Config) (*Bolt, error) {
	if cfg.Path == "" {
		return nil, perr.InvalidArgf("bolt: empty path")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}
	db, err := openFile(cfg.Path, 0o600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "bolt: open %s (file may be locked by another process)", cfg.Path)
	}
	// with NoSync set, durability waits for an explicit Sync
	db.NoSync = cfg.NoSync
	return &Bolt{DB: db}, nil
}

// Update runs fn in a read write transaction
func (b *Bolt) Update(fn func(*bbolt.Tx) error) error { return b.DB.Update(fn) }

// View runs fn in a read only transaction
func (b *Bolt) View(fn func(*bbolt.Tx) error) error { return b.DB.View(fn) }

// Sync forces the file to disk; meaningful only when NoSync is set
func (b *Bolt) Sync() error { return b.DB.Sync() }

// Close releases the file lock
// safe on a nil receiver
func (b *Bolt) Close() error {
	if b == nil || b.DB == nil {
		return nil
	}
	return b.DB.Close()
}
