package storage

import (
	"context"
	"sync"
	"time"

	"mercator-hq/loupe/pkg/journal"
)

// MemoryStorage implements journal.Storage with a bounded in-memory buffer.
// When full, the oldest exchange is evicted. Contents are lost on restart.
type MemoryStorage struct {
	records    []*journal.Exchange // oldest first
	maxRecords int
	mu         sync.RWMutex
}

// NewMemoryStorage creates a memory backend holding at most maxRecords
// exchanges. A non-positive maxRecords means unbounded.
func NewMemoryStorage(maxRecords int) *MemoryStorage {
	return &MemoryStorage{maxRecords: maxRecords}
}

// Store appends a copy of exchange, evicting the oldest entry when full.
func (s *MemoryStorage) Store(ctx context.Context, exchange *journal.Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exchangeCopy := *exchange
	s.records = append(s.records, &exchangeCopy)

	if s.maxRecords > 0 && len(s.records) > s.maxRecords {
		s.records = s.records[len(s.records)-s.maxRecords:]
	}

	return nil
}

// Query returns copies of matching exchanges, newest first.
func (s *MemoryStorage) Query(ctx context.Context, q *journal.Query) ([]*journal.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := q.EffectiveLimit()
	results := []*journal.Exchange{}

	for i := len(s.records) - 1; i >= 0 && len(results) < limit; i-- {
		if q.Matches(s.records[i]) {
			exchangeCopy := *s.records[i]
			results = append(results, &exchangeCopy)
		}
	}

	return results, nil
}

// Count returns the number of stored exchanges.
func (s *MemoryStorage) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.records)), nil
}

// DeleteBefore removes exchanges started before cutoff.
func (s *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	for _, record := range s.records {
		if !record.StartedAt.Before(cutoff) {
			kept = append(kept, record)
		}
	}

	deleted := int64(len(s.records) - len(kept))
	clear(s.records[len(kept):])
	s.records = kept

	return deleted, nil
}

// Trim removes the oldest exchanges until at most keep remain.
func (s *MemoryStorage) Trim(ctx context.Context, keep int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	excess := int64(len(s.records)) - keep
	if excess <= 0 {
		return 0, nil
	}

	s.records = append([]*journal.Exchange(nil), s.records[excess:]...)
	return excess, nil
}

// Ping always succeeds.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close releases the buffered exchanges.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	return nil
}
