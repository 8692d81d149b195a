package service

import (
	"context"
	"fmt"
	"sync"

	"outlier/internal/modkit"
	"outlier/internal/modkit/repokit"
)

type writeCall struct {
	action repokit.BulkAction
	policy repokit.RefreshPolicy
}

type deleteCall struct {
	target string
	match  map[string]any
}

// fakeDocs records every seam call so tests can assert on exactly what the
// writer sent, without a real backend
type fakeDocs struct {
	mu        sync.Mutex
	bulks     [][]repokit.BulkAction
	writes    []writeCall
	refreshes [][]string
	deletes   []deleteCall

	bulkErr  error             // returned from BulkWrite as a transport error
	failIDs  map[string]string // action id -> rejection cause
	writeRes repokit.WriteResult
	writeErr error
	deleted  int64
}

var _ repokit.Docs = (*fakeDocs)(nil)

func (f *fakeDocs) BulkWrite(_ context.Context, actions []repokit.BulkAction) (repokit.BulkResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bulkErr != nil {
		return repokit.BulkResult{}, f.bulkErr
	}

	batch := make([]repokit.BulkAction, len(actions))
	copy(batch, actions)
	f.bulks = append(f.bulks, batch)

	res := repokit.BulkResult{Items: make([]repokit.BulkItem, len(actions))}
	for i, a := range actions {
		id := a.ID
		if id == "" {
			id = fmt.Sprintf("gen-%d", i)
		}
		res.Items[i] = repokit.BulkItem{ID: id, Result: repokit.WriteCreated, Cause: f.failIDs[a.ID]}
	}
	return res, nil
}

func (f *fakeDocs) Write(_ context.Context, action repokit.BulkAction, policy repokit.RefreshPolicy) (repokit.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, writeCall{action: action, policy: policy})
	return f.writeRes, f.writeErr
}

func (f *fakeDocs) WriteAsync(ctx context.Context, action repokit.BulkAction, policy repokit.RefreshPolicy, done repokit.WriteCallback) {
	go func() {
		res, err := f.Write(ctx, action, policy)
		if done != nil {
			done(res, err)
		}
	}()
}

func (f *fakeDocs) Refresh(_ context.Context, targets ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ts := make([]string, len(targets))
	copy(ts, targets)
	f.refreshes = append(f.refreshes, ts)
	return nil
}

func (f *fakeDocs) DeleteMatching(_ context.Context, target string, match map[string]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, deleteCall{target: target, match: match})
	return f.deleted, nil
}

func (f *fakeDocs) Close() error { return nil }

func (f *fakeDocs) bulkCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bulks)
}

func (f *fakeDocs) bulk(i int) []repokit.BulkAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bulks[i]
}

func newTestSvc(fd *fakeDocs, cfg Config) *Svc {
	return New(modkit.Deps{Docs: fd}, cfg)
}
