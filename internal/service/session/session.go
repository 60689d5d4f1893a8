// Package session keeps each visitor's Selection in memory. Nothing is persisted: a
// restart starts everyone from the defaults again.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ougirez/iodmap/internal/domain"
	"github.com/ougirez/iodmap/internal/pkg/metrics"
)

type entry struct {
	mu        sync.Mutex
	selection *domain.Selection
	lastSeen  time.Time
}

type Store struct {
	rules   *domain.SelectionRules
	idleTTL time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

func NewStore(rules *domain.SelectionRules, idleTTL time.Duration) *Store {
	return &Store{
		rules:   rules,
		idleTTL: idleTTL,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Create starts a session with the default selection and returns its id.
func (s *Store) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.evictLocked()
	s.entries[id] = &entry{selection: domain.NewSelection(s.rules), lastSeen: s.now()}
	metrics.ActiveSessions.Set(float64(len(s.entries)))
	s.mu.Unlock()
	return id
}

// GetOrCreate resolves id, recreating the defaults under the same id when it was
// evicted. A signed token outlives an idle session.
func (s *Store) GetOrCreate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	if e, ok := s.entries[id]; ok {
		e.lastSeen = s.now()
		return
	}
	s.entries[id] = &entry{selection: domain.NewSelection(s.rules), lastSeen: s.now()}
	metrics.ActiveSessions.Set(float64(len(s.entries)))
}

func (s *Store) get(id string) (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if ok {
		e.lastSeen = s.now()
	}
	return e, ok
}

// Snapshot returns a copy of the session's selection that the caller may keep.
func (s *Store) Snapshot(id string) (*domain.Selection, bool) {
	e, ok := s.get(id)
	if !ok {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection.Clone(), true
}

// Update applies fn to a working copy and keeps it only when fn succeeds, so a
// rejected patch leaves the session untouched. It returns a copy of the result.
func (s *Store) Update(id string, fn func(sel *domain.Selection) error) (*domain.Selection, bool, error) {
	e, ok := s.get(id)
	if !ok {
		return nil, false, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	working := e.selection.Clone()
	if err := fn(working); err != nil {
		return nil, true, err
	}
	e.selection = working
	return working.Clone(), true, nil
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	metrics.ActiveSessions.Set(float64(len(s.entries)))
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) evictLocked() {
	if s.idleTTL <= 0 {
		return
	}
	cutoff := s.now().Add(-s.idleTTL)
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, id)
		}
	}
}
