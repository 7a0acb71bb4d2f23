package report

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUStore keeps the most recent records in memory and delegates to a
// backing Store on miss.
type LRUStore struct {
	cache *lru.Cache[string, *RunRecord]
	back  Store
}

// NewLRUStore creates an LRU cache with the given capacity in front of
// back. Capacity below 1 is raised to 1.
func NewLRUStore(size int, back Store) *LRUStore {
	if size < 1 {
		size = 1
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, *RunRecord](size)
	return &LRUStore{cache: cache, back: back}
}

// Save caches the record and writes it through to the backing store.
func (s *LRUStore) Save(rec *RunRecord) error {
	s.cache.Add(rec.ID, rec)
	return s.back.Save(rec)
}

// Load checks the cache first. On miss the record is read from the
// backing store and promoted into the cache.
func (s *LRUStore) Load(runID string) (*RunRecord, error) {
	if rec, ok := s.cache.Get(runID); ok {
		return rec, nil
	}
	rec, err := s.back.Load(runID)
	if err != nil {
		return nil, err
	}
	s.cache.Add(runID, rec)
	return rec, nil
}

// List reads through to the backing store, which sees records written by
// other processes too.
func (s *LRUStore) List(n int) ([]*RunRecord, error) {
	recs, err := s.back.List(n)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		s.cache.Add(rec.ID, rec)
	}
	return recs, nil
}
