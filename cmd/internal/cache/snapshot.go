// Package cache keeps read-through, in-memory snapshots of small tables.
package cache

import (
	"strconv"
	"sync"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/singleflight"
)

// Snapshot holds the last loaded copy of a collection. Reads are served from
// memory until Invalidate is called; the next read reloads it. When a reload
// fails and an older copy exists, the older copy is served instead.
//
// gen counts invalidations. A load only marks the copy valid when no
// invalidation happened while it ran.
type Snapshot[T any] struct {
	name  string
	load  func() ([]T, error)
	group singleflight.Group

	mu    sync.RWMutex
	items []T
	valid bool
	ever  bool
	gen   uint64
}

func NewSnapshot[T any](name string, load func() ([]T, error)) *Snapshot[T] {
	return &Snapshot[T]{name: name, load: load}
}

// Get returns a copy of the collection; callers may reorder or filter it freely.
func (s *Snapshot[T]) Get() ([]T, error) {
	s.mu.RLock()
	if s.valid {
		items := clone(s.items)
		s.mu.RUnlock()
		return items, nil
	}
	gen := s.gen
	s.mu.RUnlock()

	key := s.name + ":" + strconv.FormatUint(gen, 10)
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.refresh(gen)
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]T)), nil
}

// Invalidate marks the snapshot stale without dropping it.
func (s *Snapshot[T]) Invalidate() {
	s.mu.Lock()
	s.valid = false
	s.gen++
	s.mu.Unlock()
}

func (s *Snapshot[T]) refresh(gen uint64) ([]T, error) {
	items, err := s.load()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if s.ever {
			log.Warnf("cache %s: reload failed, serving stale copy: %v", s.name, err)
			return s.items, nil
		}
		return nil, err
	}

	if gen != s.gen {
		// Invalidated mid-load; keep the copy only as a fallback
		if !s.ever {
			s.items = items
			s.ever = true
		}
		return items, nil
	}

	s.items = items
	s.valid = true
	s.ever = true
	return items, nil
}

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
