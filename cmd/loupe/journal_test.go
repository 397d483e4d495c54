package main

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mercator-hq/loupe/pkg/config"
	"mercator-hq/loupe/pkg/journal"
	"mercator-hq/loupe/pkg/journal/storage"
)

func TestExchangeTable(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	exchanges := []*journal.Exchange{
		{
			RequestID:     "req-2",
			StartedAt:     now.Add(-2 * time.Hour),
			Duration:      1500 * time.Microsecond,
			Method:        "POST",
			Path:          "/users",
			StatusCode:    201,
			RequestBytes:  2048,
			ResponseBytes: 12,
		},
		{
			RequestID:   "req-1",
			StartedAt:   now.Add(-3 * time.Hour),
			Duration:    time.Second,
			Method:      "GET",
			Path:        "/",
			StatusCode:  500,
			FailureKind: "transport",
		},
	}

	table := exchangeTable(exchanges, now)

	if len(table.Headers) != 9 || table.Headers[1] != "REQUEST ID" {
		t.Fatalf("headers = %v", table.Headers)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}

	want := []string{"2 hours ago", "req-2", "POST", "/users", "201", "1.5ms", "2.0 kB", "12 B", "-"}
	for i, cell := range table.Rows[0] {
		if cell != want[i] {
			t.Errorf("row 0 column %s = %q, want %q", table.Headers[i], cell, want[i])
		}
	}
	if got := table.Rows[1][8]; got != "transport" {
		t.Errorf("failure column = %q, want transport", got)
	}
}

func TestBuildQuery(t *testing.T) {
	t.Cleanup(func() { resetFlags(rootCmd) })

	journalFlags.limit = 5
	journalFlags.since = time.Hour
	journalFlags.method = "post"
	journalFlags.status = 201
	journalFlags.failed = true

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	q := buildQuery(now)

	if q.Limit != 5 || q.Method != "POST" || q.Status != 201 || !q.Failed {
		t.Errorf("query = %+v", q)
	}
	if q.Since == nil || !q.Since.Equal(now.Add(-time.Hour)) {
		t.Errorf("Since = %v, want %v", q.Since, now.Add(-time.Hour))
	}

	journalFlags.since = 0
	if q := buildQuery(now); q.Since != nil {
		t.Errorf("Since = %v, want nil without --since", q.Since)
	}
}

func seedJournal(t *testing.T, exchanges ...*journal.Exchange) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "journal.db")
	cfg := config.NewDefault().Journal
	cfg.SQLite.Path = path

	store, err := storage.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	for _, e := range exchanges {
		if err := store.Store(context.Background(), e); err != nil {
			t.Fatalf("store: %v", err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return path
}

func TestJournalList(t *testing.T) {
	now := time.Now().UTC()
	path := seedJournal(t,
		&journal.Exchange{ID: "1", RequestID: "req-old", StartedAt: now.Add(-time.Minute), Method: "GET", Path: "/a", StatusCode: 200},
		&journal.Exchange{ID: "2", RequestID: "req-new", StartedAt: now, Method: "GET", Path: "/b", StatusCode: 500, FailureKind: "transport"},
	)

	out := executeCommand(t, "journal", "list", "--path", path, "--output", "json")

	var got []journal.Exchange
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(got) != 2 {
		t.Fatalf("got %d exchanges, want 2", len(got))
	}
	if got[0].RequestID != "req-new" {
		t.Errorf("first exchange = %q, want newest first", got[0].RequestID)
	}

	out = executeCommand(t, "journal", "list", "--path", path, "--failed")
	if !strings.Contains(out, "req-new") || strings.Contains(out, "req-old") {
		t.Errorf("--failed output:\n%s", out)
	}
	if !strings.Contains(out, "REQUEST ID") {
		t.Errorf("text output has no header:\n%s", out)
	}
}

func TestJournalList_BadOutput(t *testing.T) {
	if _, err := executeCommandErr(t, "journal", "list", "--backend", "memory", "--output", "xml"); err == nil {
		t.Error("expected an error for an unknown output format")
	}
}

func TestJournalPrune(t *testing.T) {
	now := time.Now().UTC()
	path := seedJournal(t,
		&journal.Exchange{ID: "1", RequestID: "expired", StartedAt: now.AddDate(0, 0, -90), Method: "GET", Path: "/", StatusCode: 200},
		&journal.Exchange{ID: "2", RequestID: "recent", StartedAt: now, Method: "GET", Path: "/", StatusCode: 200},
	)
	t.Setenv("LOUPE_JOURNAL_RETENTION_DAYS", "30")

	out := executeCommand(t, "journal", "prune", "--path", path)
	if !strings.Contains(out, "Pruned 1 exchanges, 1 remaining") {
		t.Errorf("prune output = %q", out)
	}
}
