package recorder

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/loupe/pkg/config"
	"mercator-hq/loupe/pkg/journal"
	"mercator-hq/loupe/pkg/journal/storage"
	"mercator-hq/loupe/pkg/telemetry/metrics"
)

// blockingStorage blocks every Store until release is closed.
type blockingStorage struct {
	*storage.MemoryStorage
	release chan struct{}
}

func (s *blockingStorage) Store(ctx context.Context, e *journal.Exchange) error {
	<-s.release
	return s.MemoryStorage.Store(ctx, e)
}

// failingStorage fails every Store.
type failingStorage struct {
	*storage.MemoryStorage
	mu    sync.Mutex
	calls int
}

func (s *failingStorage) Store(ctx context.Context, e *journal.Exchange) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return errors.New("disk full")
}

func journalConfig(buffer int) config.JournalConfig {
	return config.JournalConfig{
		Enabled: true,
		Backend: "memory",
		Recorder: config.RecorderConfig{
			AsyncBuffer:  buffer,
			WriteTimeout: time.Second,
		},
	}
}

func TestRecorder_RecordAndClose(t *testing.T) {
	store := storage.NewMemoryStorage(0)
	rec := New(store, journalConfig(10), nil, nil)

	for i := 0; i < 5; i++ {
		rec.Record(&journal.Exchange{RequestID: "req", Method: "GET", Path: "/", StartedAt: time.Now()})
	}

	if err := rec.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got, _ := store.Query(context.Background(), nil)
	if len(got) != 5 {
		t.Fatalf("stored %d exchanges, want 5", len(got))
	}
	for _, e := range got {
		if e.ID == "" {
			t.Error("exchange ID was not assigned")
		}
		if e.RecordedAt.IsZero() {
			t.Error("RecordedAt was not assigned")
		}
	}
}

func TestRecorder_KeepsExistingID(t *testing.T) {
	store := storage.NewMemoryStorage(0)
	rec := New(store, journalConfig(1), nil, nil)

	rec.Record(&journal.Exchange{ID: "fixed", RequestID: "req"})
	rec.Close()

	got, _ := store.Query(context.Background(), nil)
	if len(got) != 1 || got[0].ID != "fixed" {
		t.Errorf("stored = %+v, want ID fixed", got)
	}
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	store := &blockingStorage{MemoryStorage: storage.NewMemoryStorage(0), release: make(chan struct{})}
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true}, prometheus.NewRegistry())
	rec := New(store, journalConfig(1), nil, collector)

	// The first exchange is taken by the worker and blocks in Store; the
	// next fills the buffer; the rest are dropped.
	rec.Record(&journal.Exchange{RequestID: "first"})
	deadline := time.Now().Add(time.Second)
	for rec.Pending() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	for i := 0; i < 4; i++ {
		start := time.Now()
		rec.Record(&journal.Exchange{RequestID: "extra"})
		if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
			t.Fatalf("Record() blocked for %v", elapsed)
		}
	}

	close(store.release)
	rec.Close()

	if count, _ := store.Count(context.Background()); count != 2 {
		t.Errorf("stored %d exchanges, want 2", count)
	}

	expected := `
# HELP loupe_proxy_journal_dropped_total Total number of exchanges dropped because the journal buffer was full
# TYPE loupe_proxy_journal_dropped_total counter
loupe_proxy_journal_dropped_total 3
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "loupe_proxy_journal_dropped_total"); err != nil {
		t.Error(err)
	}
}

func TestRecorder_RecordAfterClose(t *testing.T) {
	store := storage.NewMemoryStorage(0)
	rec := New(store, journalConfig(10), nil, nil)
	rec.Close()

	rec.Record(&journal.Exchange{RequestID: "late"})

	if count, _ := store.Count(context.Background()); count != 0 {
		t.Errorf("stored %d exchanges after Close, want 0", count)
	}

	if err := rec.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestRecorder_StoreFailureDoesNotStopWorker(t *testing.T) {
	store := &failingStorage{MemoryStorage: storage.NewMemoryStorage(0)}
	rec := New(store, journalConfig(10), nil, nil)

	rec.Record(&journal.Exchange{RequestID: "a"})
	rec.Record(&journal.Exchange{RequestID: "b"})
	rec.Close()

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.calls != 2 {
		t.Errorf("Store called %d times, want 2", store.calls)
	}
}

func TestRecorder_RecordRacingClose(t *testing.T) {
	const writers, perWriter = 8, 100

	store := storage.NewMemoryStorage(0)
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true}, prometheus.NewRegistry())
	rec := New(store, journalConfig(writers*perWriter), nil, collector)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for i := 0; i < perWriter; i++ {
				rec.Record(&journal.Exchange{RequestID: "racing"})
			}
		}()
	}

	close(start)
	time.Sleep(time.Millisecond)
	if err := rec.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	wg.Wait()

	if pending := rec.Pending(); pending != 0 {
		t.Errorf("Pending() = %d after Close, want 0", pending)
	}

	stored, _ := store.Count(context.Background())
	dropped := droppedTotal(t, collector.Registry())
	if stored+dropped != writers*perWriter {
		t.Errorf("stored %d + dropped %d = %d, want every exchange accounted for (%d)",
			stored, dropped, stored+dropped, writers*perWriter)
	}
}

func droppedTotal(t *testing.T, registry *prometheus.Registry) int64 {
	t.Helper()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "loupe_proxy_journal_dropped_total" {
			return int64(mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	return 0
}
