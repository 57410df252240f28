package memory

import (
	"sync"

	"termvec/internal/domain"
)

// Storage is a map-backed embedding table.
type Storage struct {
	mu      sync.RWMutex
	vectors map[string]domain.Vector
	sealed  bool
}

func NewStorage() *Storage {
	return &Storage{vectors: make(map[string]domain.Vector)}
}

// FromMap builds a sealed table from an existing map. Vectors are not copied.
func FromMap(m map[string]domain.Vector) *Storage {
	s := &Storage{vectors: make(map[string]domain.Vector, len(m)), sealed: true}
	for w, v := range m {
		s.vectors[w] = v
	}
	return s
}

func (s *Storage) Put(word string, vec domain.Vector) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return false, domain.ErrSealed
	}
	_, replaced := s.vectors[word]
	s.vectors[word] = vec
	return replaced, nil
}

func (s *Storage) Seal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sealed = true
	return nil
}

func (s *Storage) Sealed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sealed
}

func (s *Storage) Lookup(word string) (domain.Vector, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vectors[word]
	return v, ok, nil
}

func (s *Storage) Len() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors), nil
}

// Close drops the table contents.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	return nil
}
