package mockapi

import (
	"errors"
	"slices"
	"sync"

	"github.com/Makepad-fr/menuadmin/internal/model"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnknownField = errors.New("unknown field")
)

// Store is an ordered in-memory collection. Values are copied in and out,
// so callers never share records with the store.
type Store[T model.Entity[T]] struct {
	mu    sync.RWMutex
	items []T
}

func NewStore[T model.Entity[T]](items ...T) *Store[T] {
	return &Store[T]{items: slices.Clone(items)}
}

func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Store[T]) Get(id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.items[i], nil
	}
	var zero T
	return zero, ErrNotFound
}

// Put replaces the record with the same key or appends it.
func (s *Store[T]) Put(it T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(it.Key()); i >= 0 {
		s.items[i] = it
		return
	}
	s.items = append(s.items, it)
}

func (s *Store[T]) SetFlag(id, field string, value bool) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	i := s.index(id)
	if i < 0 {
		return zero, ErrNotFound
	}
	updated, ok := s.items[i].WithFlag(field, value)
	if !ok {
		return zero, ErrUnknownField
	}
	s.items[i] = updated
	return updated, nil
}

func (s *Store[T]) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store[T]) index(id string) int {
	return slices.IndexFunc(s.items, func(it T) bool { return it.Key() == id })
}
