// Package event provides the bounded per-till history store for camera and
// POS events. The store keeps the K most recent events of each kind per till.
package event

import (
	"sync"

	"security-core/engine/internal/event/domain"
)

// history is a fixed-depth ring of the most recent events of one kind.
type history[T any] struct {
	buf  []*T
	next int
	n    int
}

func newHistory[T any](depth int) *history[T] {
	return &history[T]{buf: make([]*T, depth)}
}

func (h *history[T]) push(v *T) {
	h.buf[h.next] = v
	h.next = (h.next + 1) % len(h.buf)
	if h.n < len(h.buf) {
		h.n++
	}
}

// latest returns the most recently pushed value, or nil if empty.
func (h *history[T]) latest() *T {
	if h.n == 0 {
		return nil
	}
	return h.buf[(h.next-1+len(h.buf))%len(h.buf)]
}

func (h *history[T]) len() int { return h.n }

type tillHistory struct {
	camera *history[domain.CameraEvent]
	pos    *history[domain.PosEvent]
}

// Store holds the latest known state per till for both event types.
// Safe for concurrent use; the map is guarded by an RWMutex and held only for
// O(1) ring operations, so writers for different tills do not block each
// other for any meaningful time. Callers that need a read-then-decide
// sequence to be atomic per till must serialize on a per-till lock of their
// own (see the correlation service).
type Store struct {
	mu    sync.RWMutex
	tills map[string]*tillHistory
	depth int
}

// NewStore returns a Store that retains the depth most recent events of each
// kind per till. depth must be >= 1.
func NewStore(depth int) *Store {
	if depth < 1 {
		depth = 1
	}
	return &Store{tills: make(map[string]*tillHistory), depth: depth}
}

func (s *Store) till(id string) *tillHistory {
	if t, ok := s.tills[id]; ok {
		return t
	}
	t := &tillHistory{
		camera: newHistory[domain.CameraEvent](s.depth),
		pos:    newHistory[domain.PosEvent](s.depth),
	}
	s.tills[id] = t
	return t
}

// PutCamera records evt as the till's most recent camera event, evicting the
// oldest retained camera event once the ring is full.
func (s *Store) PutCamera(evt *domain.CameraEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.till(evt.TillID).camera.push(evt)
}

// PutPos records evt as the till's most recent POS event, evicting the oldest
// retained POS event once the ring is full.
func (s *Store) PutPos(evt *domain.PosEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.till(evt.TillID).pos.push(evt)
}

// Latest returns the most recent camera and POS events for the till. Either
// side is nil when no event of that kind has been seen.
func (s *Store) Latest(tillID string) (*domain.CameraEvent, *domain.PosEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tills[tillID]
	if !ok {
		return nil, nil
	}
	return t.camera.latest(), t.pos.latest()
}

// Depth returns the configured per-till retention depth.
func (s *Store) Depth() int { return s.depth }

// Len returns how many camera and POS events are currently retained for the
// till. Used by tests to assert the retention bound.
func (s *Store) Len(tillID string) (cameras, pos int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tills[tillID]
	if !ok {
		return 0, 0
	}
	return t.camera.len(), t.pos.len()
}
