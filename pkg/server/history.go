package server

import (
	"sync"

	"bomberwire/pkg/protocol"
)

// PastMessagesLog is the append-only replay buffer a freshly attached
// session is brought up to date with: one synthetic Hello followed by
// every AcceptedPlayer (in Lobby) or every Turn (in Game) emitted so
// far. It is reseeded with a fresh Hello at every Lobby<->Game boundary.
type PastMessagesLog struct {
	mu       sync.Mutex
	messages []protocol.ServerMessage
}

// NewPastMessagesLog returns an empty log.
func NewPastMessagesLog() *PastMessagesLog {
	return &PastMessagesLog{}
}

// Append records one more broadcast message.
func (l *PastMessagesLog) Append(msg protocol.ServerMessage) {
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()
}

// Reset replaces the log's contents with a single seed message — the
// fresh Hello every Lobby<->Game transition starts replay over with.
func (l *PastMessagesLog) Reset(hello protocol.ServerMessage) {
	l.mu.Lock()
	l.messages = []protocol.ServerMessage{hello}
	l.mu.Unlock()
}

// Snapshot returns a copy of the log's current contents. The acceptor
// seeds a newly constructed session's send queue with this snapshot
// before the session can observe any subsequently appended message,
// giving late joiners a consistent, gap-free replay.
func (l *PastMessagesLog) Snapshot() []protocol.ServerMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]protocol.ServerMessage, len(l.messages))
	copy(out, l.messages)
	return out
}
