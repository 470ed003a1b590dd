package server

import (
	"net"
	"sync/atomic"

	"github.com/rs/zerolog"

	"bomberwire/pkg/game"
)

// Server is the top-level authoritative process: a TCP listener, the
// game manager driving ticks, and everything that wires a newly accepted
// socket into a live Session. It generalizes the teacher's single
// Server struct (pkg/server/server.go: listener + players map + acceptLoop)
// to this spec's split-ownership model, where GameState belongs
// exclusively to the game-loop goroutine inside GameManager.
type Server struct {
	cfg        game.Config
	queueDepth int

	listener net.Listener
	log      zerolog.Logger

	broadcast *BroadcastQueue
	history   *PastMessagesLog
	registry  *SessionRegistry
	manager   *GameManager

	nextClientID atomic.Uint32
	stopCh       chan struct{}
}

// NewServer constructs a Server in a not-yet-listening state.
// queueDepth bounds each session's per-connection send queue; it must be
// large enough that a fresh session's past-messages replay never
// deadlocks against a non-draining reader, since sessions are seeded
// before being registered for live broadcast (see Start's accept loop).
func NewServer(cfg game.Config, queueDepth int, log zerolog.Logger) *Server {
	broadcast := NewBroadcastQueue(256)
	history := NewPastMessagesLog()
	registry := NewSessionRegistry()
	manager := NewGameManager(cfg, broadcast, history, registry, log.With().Str("component", "manager").Logger())

	return &Server{
		cfg:        cfg,
		queueDepth: queueDepth,
		log:        log,
		broadcast:  broadcast,
		history:    history,
		registry:   registry,
		manager:    manager,
		stopCh:     make(chan struct{}),
	}
}

// Start binds the IPv6 dual-stack listener, spawns the game manager's
// goroutines, and starts the accept loop. It returns once listening has
// succeeded; Accept errors after that point are logged and do not stop
// the server, matching the teacher's acceptLoop tolerance for transient
// accept failures.
func (s *Server) Start(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	s.listener = listener
	s.log.Info().Str("address", address).Msg("server listening")

	s.manager.Start()
	go s.acceptLoop()
	return nil
}

// Stop closes the listener, waking the accept loop's blocking Accept
// call. In-flight sessions are left to close on their own socket errors;
// there is no coordinated drain, matching spec.md's non-goal of graceful
// reconnection handling.
func (s *Server) Stop() {
	close(s.stopCh)
	if s.listener != nil {
		s.listener.Close()
	}
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
				s.log.Error().Err(err).Msg("accept failed")
				continue
			}
		}
		go s.onAccept(conn)
	}
}

// onAccept implements spec.md §4.5: set TCP_NODELAY, assign a dense
// client_id, start the new session's send goroutine, snapshot the
// past-messages log into its send queue before the session is visible to
// live broadcast, then register it and start its receive goroutine.
func (s *Server) onAccept(conn net.Conn) {
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			s.log.Warn().Err(err).Msg("failed to set TCP_NODELAY")
		}
	}

	clientID := s.nextClientID.Add(1)
	address := conn.RemoteAddr().String()
	sessLog := s.log.With().Uint32("client_id", clientID).Str("remote_addr", address).Logger()

	sess := NewSession(clientID, conn, address, s.queueDepth, sessLog)

	// Seed the replay snapshot and register the session before a single
	// inbound message is processed: starting the receive loop only after
	// registration guarantees no AcceptedPlayer/Turn this client's own
	// Join provokes can be dispatched before the client is listed to
	// receive it.
	sess.StartSend()
	for _, msg := range s.history.Snapshot() {
		if err := sess.Enqueue(msg); err != nil {
			sessLog.Debug().Msg("session closed during history replay")
			return
		}
	}
	s.registry.Add(sess)
	sess.StartReceive(s.manager)

	sessLog.Info().Msg("client accepted")
}
