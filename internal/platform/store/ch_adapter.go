package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	perr "outlier/internal/platform/errors"
	"outlier/internal/platform/logger"
	chx "outlier/internal/platform/store/ch"
)

// ReplacingMergeTree collapses same-key rows at merge time, which is what
// makes blind upserts cheap here
const chDocsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	target     String,
	id         String,
	body       String,
	updated_at DateTime64(3) DEFAULT now64(3)
) ENGINE = ReplacingMergeTree(updated_at)
ORDER BY (target, id)`

const (
	chDocsInsert    = "INSERT INTO documents (target, id, body, updated_at)"
	chDocsInsertOne = "INSERT INTO documents (target, id, body, updated_at) VALUES (?, ?, ?, ?)"
)

// chBatch is the slice of driver.Batch the adapter uses
type chBatch interface {
	Append(v ...any) error
	Send() error
	Abort() error
}

// chRows is the slice of driver.Rows the adapter uses
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// chConn narrows the ch client so tests can stand in for it
type chConn interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (chRows, error)
	PrepareBatch(ctx context.Context, sql string) (chBatch, error)
	AsyncInsert(ctx context.Context, sql string, wait bool, args ...any) error
	Ping(ctx context.Context) error
	Close() error
}

// chClient adapts *chx.CH onto chConn
type chClient struct{ c *chx.CH }

func (w chClient) Exec(ctx context.Context, sql string, args ...any) error {
	return w.c.Exec(ctx, sql, args...)
}

func (w chClient) Query(ctx context.Context, sql string, args ...any) (chRows, error) {
	rows, err := w.c.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (w chClient) PrepareBatch(ctx context.Context, sql string) (chBatch, error) {
	b, err := w.c.PrepareBatch(ctx, sql)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (w chClient) AsyncInsert(ctx context.Context, sql string, wait bool, args ...any) error {
	return w.c.AsyncInsert(ctx, sql, wait, args...)
}

func (w chClient) Ping(ctx context.Context) error { return w.c.Ping(ctx) }
func (w chClient) Close() error                   { return w.c.Close() }

// chDocs implements DocStore over clickhouse
type chDocs struct {
	c   chConn
	log logger.Logger
}

func newCHDocs(c *chx.CH, log logger.Logger) *chDocs {
	return &chDocs{c: chClient{c: c}, log: log.With().Str("component", "docs").Str("backend", "ch").Logger()}
}

func (a *chDocs) ensureSchema(ctx context.Context) error {
	if err := a.c.Exec(ctx, chDocsSchema); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "ensure documents schema")
	}
	return nil
}

func (a *chDocs) BulkWrite(ctx context.Context, actions []BulkAction) (BulkResult, error) {
	batch, err := a.c.PrepareBatch(ctx, chDocsInsert)
	if err != nil {
		return BulkResult{}, perr.Wrapf(err, perr.ErrorCodeDB, "prepare documents batch")
	}

	res := BulkResult{Items: make([]BulkItem, 0, len(actions))}
	now := time.Now().UTC()
	appended := 0
	for _, act := range actions {
		id := assignID(act.ID)
		if err := batch.Append(act.Target, id, string(act.Body), now); err != nil {
			res.Items = append(res.Items, BulkItem{ID: id, Result: WriteNoop, Cause: err.Error()})
			continue
		}
		appended++
		// inserts cannot see prior rows; dedup happens at merge time
		res.Items = append(res.Items, BulkItem{ID: id, Result: WriteCreated})
	}

	if appended == 0 {
		_ = batch.Abort()
		return res, nil
	}
	if err := batch.Send(); err != nil {
		return res, perr.Wrapf(err, perr.ErrorCodeDB, "send batch of %d documents", appended)
	}
	a.log.Trace().Int("actions", len(actions)).Int("failed", len(res.Failures())).Msg("bulk write")
	return res, nil
}

// Write maps refresh policies onto server-side async inserts: none fires and
// forgets, anything stronger waits until the row reached the table
func (a *chDocs) Write(ctx context.Context, act BulkAction, policy RefreshPolicy) (WriteResult, error) {
	id := assignID(act.ID)
	wait := policy != RefreshNone
	err := a.c.AsyncInsert(ctx, chDocsInsertOne, wait, act.Target, id, string(act.Body), time.Now().UTC())
	if err != nil {
		return WriteNoop, perr.Wrapf(err, perr.ErrorCodeDB, "write document %s/%s", act.Target, id)
	}
	return WriteCreated, nil
}

func (a *chDocs) WriteAsync(ctx context.Context, act BulkAction, policy RefreshPolicy, done WriteCallback) {
	go func() {
		r, err := a.Write(ctx, act, policy)
		if done != nil {
			done(r, err)
		}
	}()
}

// Refresh forces a merge so replaced rows collapse for plain reads.
// The table is shared across target families, so one OPTIMIZE covers all
func (a *chDocs) Refresh(ctx context.Context, targets ...string) error {
	if err := a.c.Exec(ctx, "OPTIMIZE TABLE documents FINAL"); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "refresh %s", strings.Join(targets, ","))
	}
	a.log.Trace().Strs("targets", targets).Msg("refreshed")
	return nil
}

func (a *chDocs) DeleteMatching(ctx context.Context, target string, match map[string]any) (int64, error) {
	where, args, err := chMatchWhere(target, match)
	if err != nil {
		return 0, err
	}

	// lightweight deletes report nothing back, so count first
	rows, err := a.c.Query(ctx, "SELECT count() FROM documents WHERE "+where, args...)
	if err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodeDB, "count matching in %s", target)
	}
	var n uint64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			_ = rows.Close()
			return 0, perr.Wrapf(err, perr.ErrorCodeDB, "scan matching count")
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return 0, perr.Wrapf(err, perr.ErrorCodeDB, "count matching in %s", target)
	}
	_ = rows.Close()
	if n == 0 {
		return 0, nil
	}

	if err := a.c.Exec(ctx, "DELETE FROM documents WHERE "+where, args...); err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodeDB, "delete matching in %s", target)
	}
	a.log.Debug().Str("target", target).Uint64("deleted", n).Msg("documents deleted")
	return int64(n), nil
}

func (a *chDocs) Ping(ctx context.Context) error { return a.c.Ping(ctx) }
func (a *chDocs) Close() error                   { return a.c.Close() }

// chMatchWhere renders the target family condition plus one JSONExtract
// clause per match field, keys sorted for stable SQL
func chMatchWhere(pattern string, match map[string]any) (string, []any, error) {
	var conds []string
	var args []any

	if i := strings.IndexByte(pattern, '*'); i >= 0 {
		conds = append(conds, "startsWith(target, ?)")
		args = append(args, pattern[:i])
	} else {
		conds = append(conds, "(target = ? OR startsWith(target, ?))")
		args = append(args, pattern, pattern+"-")
	}

	keys := make([]string, 0, len(match))
	for k := range match {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := match[k].(type) {
		case string:
			conds = append(conds, fmt.Sprintf("JSONExtractString(body, '%s') = ?", k))
			args = append(args, v)
		case bool:
			conds = append(conds, fmt.Sprintf("JSONExtractBool(body, '%s') = ?", k))
			args = append(args, v)
		case int:
			conds = append(conds, fmt.Sprintf("JSONExtractFloat(body, '%s') = ?", k))
			args = append(args, float64(v))
		case int64:
			conds = append(conds, fmt.Sprintf("JSONExtractFloat(body, '%s') = ?", k))
			args = append(args, float64(v))
		case float64:
			conds = append(conds, fmt.Sprintf("JSONExtractFloat(body, '%s') = ?", k))
			args = append(args, v)
		default:
			return "", nil, perr.InvalidArgf("unsupported match value %T for field %s", v, k)
		}
	}
	return strings.Join(conds, " AND "), args, nil
}
