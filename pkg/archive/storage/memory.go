package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"mercator-hq/configurator/pkg/archive"
)

// MemoryStorage implements archive.Storage in memory. Records are lost
// when the process exits.
type MemoryStorage struct {
	records map[string]*archive.Record
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]*archive.Record)}
}

// Store saves a copy of record.
func (s *MemoryStorage) Store(ctx context.Context, record *archive.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *record
	s.records[record.ID] = &recordCopy
	return nil
}

// Query returns copies of the matching records, oldest first.
func (s *MemoryStorage) Query(ctx context.Context, query *archive.Query) ([]*archive.Record, error) {
	s.mu.RLock()
	matched := s.matching(query)
	s.mu.RUnlock()

	if query == nil {
		return matched, nil
	}

	start := min(query.Offset, len(matched))
	matched = matched[start:]
	if query.Limit > 0 && query.Limit < len(matched) {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

// Count returns the number of matching records.
func (s *MemoryStorage) Count(ctx context.Context, query *archive.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, r := range s.records {
		if query.Matches(r) {
			count++
		}
	}
	return count, nil
}

// DeleteOlderThan removes records recorded before cutoff.
func (s *MemoryStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, r := range s.records {
		if r.RecordedAt.Before(cutoff) {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// DeleteOldest removes the oldest records until at most keep remain.
func (s *MemoryStorage) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	excess := int64(len(s.records)) - max(keep, 0)
	if excess <= 0 {
		return 0, nil
	}

	ordered := s.matching(nil)
	for _, r := range ordered[:excess] {
		delete(s.records, r.ID)
	}
	return excess, nil
}

// Close clears the records.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*archive.Record)
	return nil
}

// matching returns sorted copies of the records matching query. The caller
// holds the lock.
func (s *MemoryStorage) matching(query *archive.Query) []*archive.Record {
	results := make([]*archive.Record, 0, len(s.records))
	for _, r := range s.records {
		if query.Matches(r) {
			recordCopy := *r
			results = append(results, &recordCopy)
		}
	}
	slices.SortFunc(results, compareRecords)
	return results
}

func compareRecords(a, b *archive.Record) int {
	if c := a.RecordedAt.Compare(b.RecordedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
