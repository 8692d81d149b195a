package store

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	bbolt "go.etcd.io/bbolt"

	perr "outlier/internal/platform/errors"
	"outlier/internal/platform/logger"
	"outlier/internal/platform/store/bolt"
)

// boltDocs implements DocStore over the embedded file store.
// One bucket per target, document id as key, raw JSON body as value
type boltDocs struct {
	b   *bolt.Bolt
	log logger.Logger
}

func newBoltDocs(b *bolt.Bolt, log logger.Logger) *boltDocs {
	return &boltDocs{b: b, log: log.With().Str("component", "docs").Str("backend", "bolt").Logger()}
}

func (a *boltDocs) BulkWrite(_ context.Context, actions []BulkAction) (BulkResult, error) {
	res := BulkResult{Items: make([]BulkItem, 0, len(actions))}
	err := a.b.Update(func(tx *bbolt.Tx) error {
		for _, act := range actions {
			id := assignID(act.ID)
			bk, err := tx.CreateBucketIfNotExists([]byte(act.Target))
			if err != nil {
				res.Items = append(res.Items, BulkItem{ID: id, Result: WriteNoop, Cause: err.Error()})
				continue
			}
			key := []byte(id)
			result := WriteCreated
			if bk.Get(key) != nil {
				result = WriteUpdated
			}
			if err := bk.Put(key, act.Body); err != nil {
				res.Items = append(res.Items, BulkItem{ID: id, Result: WriteNoop, Cause: err.Error()})
				continue
			}
			res.Items = append(res.Items, BulkItem{ID: id, Result: result})
		}
		return nil
	})
	if err != nil {
		// commit failed, nothing landed
		return BulkResult{}, perr.Wrapf(err, perr.ErrorCodeDB, "bulk write %d documents", len(actions))
	}
	a.log.Trace().Int("actions", len(actions)).Int("failed", len(res.Failures())).Msg("bulk write")
	return res, nil
}

func (a *boltDocs) Write(_ context.Context, act BulkAction, policy RefreshPolicy) (WriteResult, error) {
	id := assignID(act.ID)
	result := WriteCreated
	err := a.b.Update(func(tx *bbolt.Tx) error {
		bk, err := tx.CreateBucketIfNotExists([]byte(act.Target))
		if err != nil {
			return err
		}
		key := []byte(id)
		if bk.Get(key) != nil {
			result = WriteUpdated
		}
		return bk.Put(key, act.Body)
	})
	if err != nil {
		return WriteNoop, perr.Wrapf(err, perr.ErrorCodeDB, "write document %s/%s", act.Target, id)
	}
	if policy != RefreshNone {
		if err := a.b.Sync(); err != nil {
			return result, perr.Wrapf(err, perr.ErrorCodeDB, "sync after write")
		}
	}
	return result, nil
}

func (a *boltDocs) WriteAsync(ctx context.Context, act BulkAction, policy RefreshPolicy, done WriteCallback) {
	go func() {
		r, err := a.Write(ctx, act, policy)
		if done != nil {
			done(r, err)
		}
	}()
}

// Refresh flushes the file when NoSync batching is on; buckets need no
// per-target work
func (a *boltDocs) Refresh(_ context.Context, targets ...string) error {
	if err := a.b.Sync(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "sync %s", strings.Join(targets, ","))
	}
	return nil
}

func (a *boltDocs) DeleteMatching(_ context.Context, target string, match map[string]any) (int64, error) {
	var deleted int64
	err := a.b.Update(func(tx *bbolt.Tx) error {
		var buckets [][]byte
		if err := tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			if TargetMatches(target, string(name)) {
				buckets = append(buckets, append([]byte(nil), name...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, name := range buckets {
			bk := tx.Bucket(name)
			if bk == nil {
				continue
			}
			// collect first, deleting while iterating is unsafe
			var keys [][]byte
			if err := bk.ForEach(func(k, v []byte) error {
				if docMatches(v, match) {
					keys = append(keys, append([]byte(nil), k...))
				}
				return nil
			}); err != nil {
				return err
			}
			for _, k := range keys {
				if err := bk.Delete(k); err != nil {
					return err
				}
				deleted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodeDB, "delete matching in %s", target)
	}
	a.log.Debug().Str("target", target).Int64("deleted", deleted).Msg("documents deleted")
	return deleted, nil
}

func (a *boltDocs) Ping(_ context.Context) error {
	if a == nil || a.b == nil {
		return errors.New("bolt: nil adapter")
	}
	return a.b.View(func(*bbolt.Tx) error { return nil })
}

func (a *boltDocs) Close() error { return a.b.Close() }

// docMatches unmarshals the stored body and checks that every match field
// is present with an equal value
func docMatches(body []byte, match map[string]any) bool {
	if len(match) == 0 {
		return true
	}
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return false
	}
	for k, want := range match {
		got, ok := doc[k]
		if !ok || !looseEqual(got, want) {
			return false
		}
	}
	return true
}

// looseEqual compares a decoded JSON value against a native Go match value,
// folding numeric types onto float64 the way encoding/json does
func looseEqual(got, want any) bool {
	switch w := want.(type) {
	case string:
		g, ok := got.(string)
		return ok && g == w
	case bool:
		g, ok := got.(bool)
		return ok && g == w
	case int:
		g, ok := got.(float64)
		return ok && g == float64(w)
	case int64:
		g, ok := got.(float64)
		return ok && g == float64(w)
	case float64:
		g, ok := got.(float64)
		return ok && g == w
	case nil:
		return got == nil
	default:
		return reflect.DeepEqual(got, want)
	}
}
