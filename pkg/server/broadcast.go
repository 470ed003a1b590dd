package server

import (
	"sync"

	"bomberwire/pkg/protocol"
)

// BroadcastQueue is the single process-wide FIFO the game engine pushes
// outgoing ServerMessages onto. The server's dispatch loop pops each
// message, appends it to the past-messages log, then fans it out to
// every live session, reaping closed ones along the way.
type BroadcastQueue struct {
	ch chan protocol.ServerMessage
}

// NewBroadcastQueue creates a queue with the given buffer depth.
func NewBroadcastQueue(depth int) *BroadcastQueue {
	return &BroadcastQueue{ch: make(chan protocol.ServerMessage, depth)}
}

// Push enqueues one message, blocking if the queue is full.
func (q *BroadcastQueue) Push(msg protocol.ServerMessage) {
	q.ch <- msg
}

// Pop blocks until a message is available.
func (q *BroadcastQueue) Pop() protocol.ServerMessage {
	return <-q.ch
}

// SessionRegistry tracks the set of currently live sessions so the
// dispatch loop can fan a broadcast out to all of them and drop ones
// that have closed.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[uint32]*Session
}

// NewSessionRegistry returns an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[uint32]*Session)}
}

// Add registers a newly accepted session.
func (r *SessionRegistry) Add(s *Session) {
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
}

// Remove drops a session from the registry, e.g. once it has closed.
func (r *SessionRegistry) Remove(id uint32) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Dispatch delivers msg to every live session, reaping any that have
// closed since the last dispatch.
func (r *SessionRegistry) Dispatch(msg protocol.ServerMessage) {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		if s.Closed() {
			delete(r.sessions, id)
			continue
		}
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		if err := s.Enqueue(msg); err != nil {
			r.Remove(s.ID)
		}
	}
}

// Snapshot returns every currently live session, for intent collection.
func (r *SessionRegistry) Snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		if !s.Closed() {
			out = append(out, s)
		}
	}
	return out
}
