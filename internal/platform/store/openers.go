package store

import (
	"context"
	"fmt"
	"time"

	"outlier/internal/platform/store/bolt"
	chx "outlier/internal/platform/store/ch"
	"outlier/internal/platform/store/pg"
)

const (
	backoffStart   = 150 * time.Millisecond
	backoffCeiling = 2 * time.Second
)

// openPG opens pg and wraps it with our document adapter
func openPG(ctx context.Context, cfg Config, s *Store) (DocStore, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, tracer, nil)
	if err != nil {
		return nil, err
	}

	retries := cfg.PG.ConnectRetries
	if retries <= 0 {
		retries = 6
	}
	pingTimeout := cfg.PG.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}

	// Connection guardrails: ping with retry/backoff using the *pool* directly
	var lastErr error
	backoff := backoffStart
	for i := 0; i <= retries; i++ {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = p.Pool.Ping(toCtx) // no adapter, no SQL trace line
		cancel()

		if lastErr == nil {
			a := newPGDocs(p, s.Log)
			if err := a.ensureSchema(ctx); err != nil {
				p.Close()
				return nil, err
			}
			s.Docs = a // publish adapter only after the pool is healthy
			return a, nil
		}
		if ctx.Err() != nil {
			p.Close() // close the pool we opened
			return nil, ctx.Err()
		}
		time.Sleep(backoff)
		if backoff < backoffCeiling {
			backoff *= 2
			if backoff > backoffCeiling {
				backoff = backoffCeiling
			}
		}
	}

	p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", retries+1, lastErr)
}

// openCH opens clickhouse and wraps it with our document adapter
func openCH(ctx context.Context, cfg Config, s *Store) (DocStore, error) {
	c, err := chx.Open(ctx, chx.Config{
		Addr:     cfg.CH.Addr,
		Database: cfg.CH.Database,
		Username: cfg.CH.Username,
		Password: cfg.CH.Password,
		Role:     "results",
	})
	if err != nil {
		return nil, err
	}

	retries := cfg.CH.ConnectRetries
	if retries <= 0 {
		retries = 6
	}
	pingTimeout := cfg.CH.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}

	// clickhouse.Open does not dial; the first ping does
	var lastErr error
	backoff := backoffStart
	for i := 0; i <= retries; i++ {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = c.Ping(toCtx)
		cancel()

		if lastErr == nil {
			a := newCHDocs(c, s.Log)
			if err := a.ensureSchema(ctx); err != nil {
				_ = c.Close()
				return nil, err
			}
			s.Docs = a
			return a, nil
		}
		if ctx.Err() != nil {
			_ = c.Close()
			return nil, ctx.Err()
		}
		time.Sleep(backoff)
		if backoff < backoffCeiling {
			backoff *= 2
			if backoff > backoffCeiling {
				backoff = backoffCeiling
			}
		}
	}

	_ = c.Close()
	return nil, fmt.Errorf("clickhouse ping failed after %d attempts: %w", retries+1, lastErr)
}

// openBolt opens the embedded file store; no dial, no retry loop
func openBolt(_ context.Context, cfg Config, s *Store) (DocStore, error) {
	b, err := bolt.Open(bolt.Config{
		Path:    cfg.Bolt.Path,
		Timeout: cfg.Bolt.Timeout,
		NoSync:  cfg.Bolt.NoSync,
	})
	if err != nil {
		return nil, err
	}
	return newBoltDocs(b, s.Log), nil
}
