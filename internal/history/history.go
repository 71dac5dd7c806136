// Package history keeps an in-memory log of past conversions.
package history

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultLimit is the number of records Recent returns for limit <= 0.
const DefaultLimit = 10

// Record describes one finished conversion.
type Record struct {
	ID            string        `json:"id"`
	FileName      string        `json:"fileName"`
	ModelName     string        `json:"modelName"`
	OriginalSize  int64         `json:"originalSize"`
	ConvertedSize int64         `json:"convertedSize"`
	Vertices      int           `json:"vertices"`
	Faces         int           `json:"faces"`
	Duration      time.Duration `json:"duration"`
	CreatedAt     time.Time     `json:"createdAt"`

	seq uint64 // Insertion order, breaks CreatedAt ties
}

// Store persists conversion records.
type Store interface {
	// Create assigns ID and CreatedAt and stores the record.
	Create(rec Record) Record
	// Recent returns up to limit records, newest first.
	Recent(limit int) []Record
	Get(id string) (Record, bool)
}

// MemStore is a Store backed by a map. Safe for concurrent use.
type MemStore struct {
	mu       sync.RWMutex
	records  map[string]Record
	capacity int
	nextSeq  uint64
	now      func() time.Time
}

// NewMemStore creates a store that keeps at most capacity records,
// dropping the oldest first. capacity <= 0 means unbounded.
func NewMemStore(capacity int) *MemStore {
	return &MemStore{
		records:  make(map[string]Record),
		capacity: capacity,
		now:      time.Now,
	}
}

// Create implements Store.
func (s *MemStore) Create(rec Record) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = uuid.NewString()
	rec.CreatedAt = s.now()
	s.nextSeq++
	rec.seq = s.nextSeq
	s.records[rec.ID] = rec

	if s.capacity > 0 && len(s.records) > s.capacity {
		s.evictOldest()
	}
	return rec
}

// Recent implements Store.
func (s *MemStore) Recent(limit int) []Record {
	if limit <= 0 {
		limit = DefaultLimit
	}

	s.mu.RLock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	s.mu.RUnlock()

	sortNewestFirst(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Get implements Store.
func (s *MemStore) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

// Len returns the number of stored records.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// evictOldest removes the oldest record. Caller holds the write lock.
func (s *MemStore) evictOldest() {
	var oldest Record
	first := true
	for _, rec := range s.records {
		if first || older(rec, oldest) {
			oldest = rec
			first = false
		}
	}
	delete(s.records, oldest.ID)
}

// Records created in the same clock tick keep their insertion order.
func older(a, b Record) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.seq < b.seq
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func sortNewestFirst(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		return older(recs[j], recs[i])
	})
}
