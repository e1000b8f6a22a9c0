package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/hupe1980/ensemble/core"
)

// ErrNotFound is returned when no record exists for an id.
var ErrNotFound = errors.New("record not found")

// Record is the persisted outcome of one run.
type Record struct {
	ID         string             `json:"id"`
	Category   string             `json:"category"`
	Mode       string             `json:"mode"`
	Reason     string             `json:"reason,omitempty"`
	Results    []core.ResultEntry `json:"results"`
	Transcript []core.Entry       `json:"transcript"`
	StartedAt  time.Time          `json:"started_at"`
	Duration   time.Duration      `json:"duration"`
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	c := r
	c.Results = append([]core.ResultEntry(nil), r.Results...)
	c.Transcript = append([]core.Entry(nil), r.Transcript...)
	return c
}

// Store persists run records.
type Store interface {
	// Save stores or overwrites a record.
	Save(ctx context.Context, r Record) error
	// Get returns the record with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)
	// List returns records newest first. An empty category lists every
	// category; limit <= 0 means no limit.
	List(ctx context.Context, category string, limit int) ([]Record, error)
}

// InMemoryStore is a volatile Store backed by a map. It is safe for
// concurrent use; records are cloned on the way in and out.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]Record)}
}

// Save implements Store.
func (s *InMemoryStore) Save(_ context.Context, r Record) error {
	if r.ID == "" {
		return errors.New("record id must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.ID] = r.Clone()
	return nil
}

// Get implements Store.
func (s *InMemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r.Clone(), nil
}

// List implements Store.
func (s *InMemoryStore) List(_ context.Context, category string, limit int) ([]Record, error) {
	s.mu.RLock()
	out := lo.FilterMap(lo.Values(s.records), func(r Record, _ int) (Record, bool) {
		return r.Clone(), category == "" || r.Category == category
	})
	s.mu.RUnlock()

	SortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SortNewestFirst orders records by start time descending, id breaking ties.
func SortNewestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].StartedAt.Equal(records[j].StartedAt) {
			return records[i].StartedAt.After(records[j].StartedAt)
		}
		return records[i].ID > records[j].ID
	})
}
