package repokit

import (
	"context"
	"testing"
)

func TestReExportedPolicies_RoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		p    RefreshPolicy
		want string
	}{
		{RefreshNone, "none"},
		{RefreshWaitUntil, "wait_until"},
		{RefreshImmediate, "immediate"},
	}
	for _, tc := range cases {
		if got := tc.p.String(); got != tc.want {
			t.Fatalf("policy string = %q, want %q", got, tc.want)
		}
	}
}

func TestReExportedResults_RoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		r    WriteResult
		want string
	}{
		{WriteCreated, "created"},
		{WriteUpdated, "updated"},
		{WriteNoop, "noop"},
	}
	for _, tc := range cases {
		if got := tc.r.String(); got != tc.want {
			t.Fatalf("result string = %q, want %q", got, tc.want)
		}
	}
}

func TestBulkResult_ThroughAliases(t *testing.T) {
	t.Parallel()

	res := BulkResult{Items: []BulkItem{
		{ID: "a", Result: WriteCreated},
		{ID: "b", Result: WriteNoop, Cause: context.DeadlineExceeded.Error()},
	}}

	if !res.HasFailures() {
		t.Fatalf("expected failures to be reported through the alias")
	}
	if got := len(res.Failures()); got != 1 {
		t.Fatalf("failure count = %d, want 1", got)
	}
}

func TestTargetMatches_Delegates(t *testing.T) {
	t.Parallel()

	if !TargetMatches("anomalies-job", "anomalies-job-write") {
		t.Fatalf("family pattern should cover the write alias")
	}
	if TargetMatches("anomalies-job", "anomalies-jobber") {
		t.Fatalf("family pattern should not cover sibling names")
	}
}
