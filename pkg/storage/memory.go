package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore caches prediction records in process memory. It is safe for
// concurrent use by multiple goroutines.
//
// If a TTL is configured, a background goroutine periodically evicts stale
// records. For multi-instance deployments sharing a cache, use RedisStore.
type MemoryStore struct {
	mu            sync.RWMutex
	records       map[string]Record
	ttl           time.Duration
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	cleanupDone   chan struct{}
	stopped       bool
	stopMu        sync.Mutex
}

// NewMemoryStore creates an in-memory prediction cache with no TTL.
// Records are kept until overwritten.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
	}
}

// NewMemoryStoreWithTTL creates an in-memory cache that evicts records
// older than ttl. A background goroutine runs every cleanupInterval
// (default one minute); call Stop when the store is no longer needed to
// avoid leaking it.
func NewMemoryStoreWithTTL(ttl, cleanupInterval time.Duration) *MemoryStore {
	if ttl <= 0 {
		panic("TTL must be positive")
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	store := &MemoryStore{
		records:       make(map[string]Record),
		ttl:           ttl,
		cleanupTicker: time.NewTicker(cleanupInterval),
		stopCleanup:   make(chan struct{}),
		cleanupDone:   make(chan struct{}),
	}

	go store.runCleanup()

	return store
}

// Stop shuts down the background cleanup goroutine. It blocks until the
// goroutine exits. Safe to call multiple times, and a no-op for stores
// created without TTL.
func (s *MemoryStore) Stop() {
	if s.cleanupTicker == nil {
		return
	}

	s.stopMu.Lock()
	defer s.stopMu.Unlock()

	if s.stopped {
		return
	}

	close(s.stopCleanup)
	<-s.cleanupDone
	s.cleanupTicker.Stop()
	s.stopped = true
}

func (s *MemoryStore) runCleanup() {
	defer close(s.cleanupDone)

	for {
		select {
		case <-s.cleanupTicker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, record := range s.records {
		if now.Sub(record.GeneratedAt) > s.ttl {
			delete(s.records, key)
		}
	}
}

// Put stores a record under its key, replacing any existing record.
func (s *MemoryStore) Put(ctx context.Context, record Record) error {
	if record.Key == "" {
		return fmt.Errorf("record key cannot be empty")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Key] = record
	return nil
}

// Get retrieves the record stored under key, reporting whether it exists.
func (s *MemoryStore) Get(ctx context.Context, key string) (Record, bool, error) {
	select {
	case <-ctx.Done():
		return Record{}, false, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, found := s.records[key]
	return record, found, nil
}

// Len returns the number of records currently cached. Primarily useful for
// tests and metrics.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
