package intake

import "sync"

// DedupStore remembers workout ids whose processing reached a terminal state.
type DedupStore interface {
	Contains(id string) bool
	// MarkProcessed records id and reports whether it was newly added.
	MarkProcessed(id string) bool
	Len() int
}

// Store is the in-memory DedupStore. It only grows and is lost on restart.
type Store struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

var _ DedupStore = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{ids: make(map[string]struct{})}
}

func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

func (s *Store) MarkProcessed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
