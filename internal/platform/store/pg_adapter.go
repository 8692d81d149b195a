package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	perr "outlier/internal/platform/errors"
	"outlier/internal/platform/logger"
	"outlier/internal/platform/store/pg"
)

// one table for every target family; the target column carries the family name
var pgDocsSchema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		target     text        NOT NULL,
		id         text        NOT NULL,
		body       jsonb       NOT NULL,
		updated_at timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (target, id)
	)`,
	`CREATE INDEX IF NOT EXISTS documents_body_gin ON documents USING gin (body jsonb_path_ops)`,
}

const pgDocsUpsert = `
INSERT INTO documents (target, id, body, updated_at)
VALUES ($1, $2, $3::jsonb, now())
ON CONFLICT (target, id) DO UPDATE SET body = EXCLUDED.body, updated_at = now()
RETURNING (xmax = 0) AS inserted`

const pgDocsDelete = `
DELETE FROM documents
WHERE (target = $1 OR target LIKE $2) AND body @> $3::jsonb`

// pgDocs implements DocStore over a pg pool
// it emits query trace events when a tracer is configured on pg.PG
type pgDocs struct {
	p   *pg.PG
	log logger.Logger
}

func newPGDocs(p *pg.PG, log logger.Logger) *pgDocs {
	return &pgDocs{p: p, log: log.With().Str("component", "docs").Str("backend", "pg").Logger()}
}

// ensureSchema brings up the documents table; statements run one at a time
// because the extended protocol rejects multi-statement strings
func (a *pgDocs) ensureSchema(ctx context.Context) error {
	for _, stmt := range pgDocsSchema {
		if _, err := a.p.Pool.Exec(ctx, stmt); err != nil {
			return perr.FromPostgresf(err, "ensure documents schema")
		}
	}
	return nil
}

func (a *pgDocs) BulkWrite(ctx context.Context, actions []BulkAction) (BulkResult, error) {
	res := BulkResult{Items: make([]BulkItem, 0, len(actions))}
	for _, act := range actions {
		id := assignID(act.ID)
		start := time.Now()
		var inserted bool
		err := a.p.Pool.QueryRow(ctx, pgDocsUpsert, act.Target, id, string(act.Body)).Scan(&inserted)
		a.emit(ctx, pgDocsUpsert, []any{act.Target, id}, start, err)
		if err != nil {
			// a server-side rejection fails this document only; anything
			// else is a transport problem and aborts the batch
			if _, ok := perr.ExtractPgError(err); ok {
				res.Items = append(res.Items, BulkItem{ID: id, Result: WriteNoop, Cause: err.Error()})
				continue
			}
			return res, perr.FromPostgresf(err, "bulk write %d documents", len(actions))
		}
		res.Items = append(res.Items, BulkItem{ID: id, Result: upsertResult(inserted)})
	}
	a.log.Trace().Int("actions", len(actions)).Int("failed", len(res.Failures())).Msg("bulk write")
	return res, nil
}

// Write upserts one document; refresh policies are a no-op here because
// readers see committed rows immediately
func (a *pgDocs) Write(ctx context.Context, act BulkAction, _ RefreshPolicy) (WriteResult, error) {
	id := assignID(act.ID)
	start := time.Now()
	var inserted bool
	err := a.p.Pool.QueryRow(ctx, pgDocsUpsert, act.Target, id, string(act.Body)).Scan(&inserted)
	a.emit(ctx, pgDocsUpsert, []any{act.Target, id}, start, err)
	if err != nil {
		return WriteNoop, perr.FromPostgresf(err, "write document %s/%s", act.Target, id)
	}
	return upsertResult(inserted), nil
}

func (a *pgDocs) WriteAsync(ctx context.Context, act BulkAction, policy RefreshPolicy, done WriteCallback) {
	go func() {
		r, err := a.Write(ctx, act, policy)
		if done != nil {
			done(r, err)
		}
	}()
}

// Refresh is a no-op; postgres visibility is transactional
func (a *pgDocs) Refresh(_ context.Context, targets ...string) error {
	a.log.Trace().Strs("targets", targets).Msg("refresh noop")
	return nil
}

func (a *pgDocs) DeleteMatching(ctx context.Context, target string, match map[string]any) (int64, error) {
	body, err := json.Marshal(match)
	if err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodeJSON, "marshal match for %s", target)
	}
	exact, like := targetFamilySQL(target)
	start := time.Now()
	ct, err := a.p.Pool.Exec(ctx, pgDocsDelete, exact, like, string(body))
	a.emit(ctx, pgDocsDelete, []any{exact, like}, start, err)
	if err != nil {
		return 0, perr.FromPostgresf(err, "delete matching in %s", target)
	}
	n := ct.RowsAffected()
	a.log.Debug().Str("target", target).Int64("deleted", n).Msg("documents deleted")
	return n, nil
}

func (a *pgDocs) Ping(ctx context.Context) error {
	if a == nil {
		return errors.New("pg: nil adapter")
	}
	var one int
	return a.p.Pool.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func (a *pgDocs) Close() error { a.p.Close(); return nil }

// emit sends a query event to the configured tracer
func (a *pgDocs) emit(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if a == nil || a.p == nil || a.p.Tracer == nil {
		return
	}
	elapsedUS := time.Since(start).Microseconds()
	slow := a.p.SlowMs >= 0 && elapsedUS >= int64(a.p.SlowMs)*1000
	a.p.Tracer.OnQuery(ctx, pg.QueryEvent{
		SQL:       sql,
		Args:      args,
		ElapsedUS: elapsedUS,
		Err:       err,
		Slow:      slow,
	})
}

func upsertResult(inserted bool) WriteResult {
	if inserted {
		return WriteCreated
	}
	return WriteUpdated
}

// targetFamilySQL renders a target pattern into the exact and LIKE forms
// that cover write aliases and rolled generations of the same family
func targetFamilySQL(pattern string) (exact, like string) {
	if i := strings.IndexByte(pattern, '*'); i >= 0 {
		return pattern, likePrefix(pattern[:i]) + "%"
	}
	return pattern, likePrefix(pattern) + "-%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePrefix(s string) string { return likeEscaper.Replace(s) }
