// Package server implements the authoritative Bomberman server: the TCP
// acceptor, per-client sessions, the broadcast queue and past-messages
// replay log, and the game manager that drives the tick engine in
// pkg/game.
package server

import (
	"bufio"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bomberwire/pkg/protocol"
)

// JoinHandler reacts to a Join message a session receives. It is
// implemented by GameManager; Session never reaches into game state
// itself, it only forwards the request.
type JoinHandler interface {
	HandleJoin(sess *Session, name string)
}

// Session is one accepted TCP connection: a receive goroutine, a send
// goroutine, a mutex-guarded latest-intent slot (mirroring the teacher's
// per-connection Player.mu field), and a bounded, channel-backed send
// queue standing in for a mutex+condvar blocking queue.
type Session struct {
	ID      uint32
	Conn    net.Conn
	Address string
	LogID   uuid.UUID

	log zerolog.Logger

	sendQueue chan protocol.ServerMessage
	closed    chan struct{}
	closeOnce sync.Once

	mu        sync.Mutex
	intent    protocol.ClientMessage
	hasIntent bool
}

// NewSession wraps an accepted connection. queueDepth bounds the send
// queue; a slow client blocks the broadcaster once it fills, matching
// the bounded-blocking contract of the original queue.
func NewSession(id uint32, conn net.Conn, address string, queueDepth int, log zerolog.Logger) *Session {
	logID := uuid.New()
	return &Session{
		ID:        id,
		Conn:      conn,
		Address:   address,
		LogID:     logID,
		log:       log.With().Str("session_id", logID.String()).Logger(),
		sendQueue: make(chan protocol.ServerMessage, queueDepth),
		closed:    make(chan struct{}),
	}
}

// Start spawns the session's receive and send goroutines together. Use
// StartSend/StartReceive instead when the caller needs to seed the send
// queue (the past-messages replay) before any inbound message can be
// processed — see Server.onAccept.
func (s *Session) Start(handler JoinHandler) {
	s.StartSend()
	s.StartReceive(handler)
}

// StartSend spawns only the send goroutine, so a caller can enqueue a
// past-messages snapshot (drained concurrently) before the session is
// registered for live broadcast and before StartReceive is called.
func (s *Session) StartSend() {
	go s.sendLoop()
}

// StartReceive spawns only the receive goroutine.
func (s *Session) StartReceive(handler JoinHandler) {
	go s.receiveLoop(handler)
}

// Enqueue pushes one ServerMessage onto the session's send queue,
// blocking while the queue is full. It returns ErrPeerClosed if the
// session closes before the message could be queued.
func (s *Session) Enqueue(msg protocol.ServerMessage) error {
	select {
	case s.sendQueue <- msg:
		return nil
	case <-s.closed:
		return ErrPeerClosed
	}
}

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// Close tears the session down exactly once: it closes the socket and
// signals the sentinel channel, waking any goroutine blocked in Enqueue
// or the send loop's select.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.Conn.Close()
	})
}

// TakeIntent returns and clears the session's latest unread intent, if
// any. The game-loop goroutine calls this once per player per turn; any
// intent received between two calls overwrites the previous one.
func (s *Session) TakeIntent() (protocol.ClientMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasIntent {
		return nil, false
	}
	msg := s.intent
	s.intent = nil
	s.hasIntent = false
	return msg, true
}

func (s *Session) setIntent(msg protocol.ClientMessage) {
	s.mu.Lock()
	s.intent = msg
	s.hasIntent = true
	s.mu.Unlock()
}

func (s *Session) receiveLoop(handler JoinHandler) {
	defer s.Close()
	r := bufio.NewReader(s.Conn)
	for {
		msg, err := protocol.DecodeClientMessage(r)
		if err != nil {
			s.log.Debug().Err(err).Uint32("client_id", s.ID).Msg("session receive ended")
			return
		}
		switch v := msg.(type) {
		case protocol.JoinClient:
			handler.HandleJoin(s, v.Name)
		default:
			s.setIntent(msg)
		}
	}
}

func (s *Session) sendLoop() {
	defer s.Close()
	for {
		select {
		case msg := <-s.sendQueue:
			if err := protocol.EncodeServerMessage(s.Conn, msg); err != nil {
				s.log.Debug().Err(err).Uint32("client_id", s.ID).Msg("session send failed")
				return
			}
		case <-s.closed:
			return
		}
	}
}
