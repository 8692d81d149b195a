// Package ch provides a clickhouse client over the native protocol
package ch

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config configures clickhouse connectivity
type Config struct {
	Addr     string
	Database string
	Username string
	Password string

	// Role tags the connection in ClickHouse client info (e.g. "results")
	Role string
}

// CH is a clickhouse client wrapping the native driver connection
type CH struct {
	Conn driver.Conn
}

var openConn = clickhouse.Open // seam

// Open builds the connection pool; no dial happens until first use
func Open(_ context.Context, cfg Config) (*CH, error) {
	user := cfg.Username
	if user == "" {
		user = "default"
	}
	conn, err := openConn(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: user,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		ClientInfo: BuildClientInfo(cfg.Role, ""),
	})
	if err != nil {
		return nil, err
	}
	return &CH{Conn: conn}, nil
}

// Exec runs a statement without result rows
func (c *CH) Exec(ctx context.Context, sql string, args ...any) error {
	return c.Conn.Exec(ctx, sql, args...)
}

// Query runs a query and returns driver rows
func (c *CH) Query(ctx context.Context, sql string, args ...any) (driver.Rows, error) {
	return c.Conn.Query(ctx, sql, args...)
}

// PrepareBatch opens a columnar insert batch for the given INSERT statement
func (c *CH) PrepareBatch(ctx context.Context, sql string) (driver.Batch, error) {
	return c.Conn.PrepareBatch(ctx, sql)
}

// AsyncInsert queues a server-side async insert; wait=true blocks until the
// server has flushed the row to the target table
func (c *CH) AsyncInsert(ctx context.Context, sql string, wait bool, args ...any) error {
	return c.Conn.AsyncInsert(ctx, sql, wait, args...)
}

// Ping verifies connectivity
func (c *CH) Ping(ctx context.Context) error {
	return c.Conn.Ping(ctx)
}

// Close closes the connection pool
func (c *CH) Close() error {
	if c == nil || c.Conn == nil {
		return nil
	}
	return c.Conn.Close()
}
