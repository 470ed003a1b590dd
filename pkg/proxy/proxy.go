package proxy

import (
	"bufio"
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bomberwire/pkg/protocol"
)

// Proxy bridges one GUI (UDP) to one authoritative server (TCP). It runs
// the two unidirectional relay loops from spec.md §4.3 as goroutines, the
// way the teacher spawns a per-connection goroutine with `go` from its
// accept loop — generalized here to a pair of peer loops instead of one
// request/response handler, since both directions of this bridge are
// independently driven streams.
type Proxy struct {
	name string

	udpConn *net.UDPConn
	guiAddr *net.UDPAddr
	tcpConn net.Conn

	state *GameState
	log   zerolog.Logger

	runID uuid.UUID
	errCh chan error
}

// New dials the server over TCP and binds a local UDP socket for the
// GUI bridge. Both sockets are opened eagerly so a bind/dial failure at
// startup is reported before any goroutine is spawned, matching spec.md
// §7's "resource/config errors at startup: print and exit" policy.
func New(guiAddr *net.UDPAddr, localPort int, serverAddr, name string, log zerolog.Logger) (*Proxy, error) {
	udpConn, err := net.ListenUDP("udp", &net.UDPAddr{Port: localPort})
	if err != nil {
		return nil, fmt.Errorf("proxy: bind local udp port %d: %w", localPort, err)
	}

	tcpConn, err := net.Dial("tcp", serverAddr)
	if err != nil {
		udpConn.Close()
		return nil, fmt.Errorf("proxy: dial server %s: %w", serverAddr, err)
	}
	if tc, ok := tcpConn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}

	runID := uuid.New()
	return &Proxy{
		name:    name,
		udpConn: udpConn,
		guiAddr: guiAddr,
		tcpConn: tcpConn,
		state:   NewGameState(),
		log:     log.With().Str("run_id", runID.String()).Logger(),
		runID:   runID,
		errCh:   make(chan error, 2),
	}, nil
}

// Run starts both relay loops and blocks until either one fails. Per
// spec.md §7, any failure on either thread terminates the whole proxy
// process — there is no partial-degradation mode, since the GUI treats
// proxy death as end-of-stream.
func (p *Proxy) Run() error {
	go p.guiToServerLoop()
	go p.serverToGUILoop()
	err := <-p.errCh
	p.Close()
	return err
}

// Close tears down both sockets. Safe to call after Run returns.
func (p *Proxy) Close() {
	p.udpConn.Close()
	p.tcpConn.Close()
}

func (p *Proxy) fail(err error) {
	select {
	case p.errCh <- err:
	default:
	}
}

// guiToServerLoop implements spec.md §4.3's GUI->Server relay: receive
// one UDP datagram, parse it as an InputMessage (dropping anything
// malformed), and either synthesize a Join (in Lobby, regardless of
// which input the GUI actually sent) or translate the action 1:1 into a
// ClientMessage forwarded over TCP.
func (p *Proxy) guiToServerLoop() {
	buf := make([]byte, 512)
	for {
		n, _, err := p.udpConn.ReadFromUDP(buf)
		if err != nil {
			p.fail(fmt.Errorf("proxy: gui socket: %w", err))
			return
		}

		input, err := protocol.ParseInputDatagram(buf[:n])
		if err != nil {
			p.log.Debug().Err(err).Msg("dropped malformed input datagram")
			continue
		}

		clientMsg := p.translateInput(input)
		if clientMsg == nil {
			continue
		}
		if err := protocol.EncodeClientMessage(p.tcpConn, clientMsg); err != nil {
			p.fail(fmt.Errorf("proxy: send to server: %w", err))
			return
		}
	}
}

func (p *Proxy) translateInput(input protocol.InputMessage) protocol.ClientMessage {
	if p.state.Phase() == PhaseLobby {
		return protocol.JoinClient{Name: p.name}
	}
	switch v := input.(type) {
	case protocol.PlaceBombInput:
		return protocol.PlaceBombClient{}
	case protocol.PlaceBlockInput:
		return protocol.PlaceBlockClient{}
	case protocol.MoveInput:
		return protocol.MoveClient{Direction: v.Direction}
	default:
		return nil
	}
}

// serverToGUILoop implements spec.md §4.3's Server->GUI relay: decode
// one ServerMessage from the trusted TCP stream, fold it into the local
// GameState mirror, and forward a DrawMessage snapshot to the GUI when
// GameState.Apply says the update is forward-worthy.
func (p *Proxy) serverToGUILoop() {
	r := bufio.NewReader(p.tcpConn)
	drawBuf := make([]byte, 0, 4096)
	for {
		msg, err := protocol.DecodeServerMessage(r)
		if err != nil {
			p.fail(fmt.Errorf("proxy: server stream: %w", err))
			return
		}

		draw, forward := p.state.Apply(msg)
		if !forward {
			continue
		}

		w := &sliceWriter{buf: drawBuf[:0]}
		if err := protocol.EncodeDrawMessage(w, draw); err != nil {
			p.log.Error().Err(err).Msg("failed to encode draw message")
			continue
		}
		drawBuf = w.buf
		if _, err := p.udpConn.WriteToUDP(drawBuf, p.guiAddr); err != nil {
			p.fail(fmt.Errorf("proxy: send to gui: %w", err))
			return
		}
	}
}

// sliceWriter is an io.Writer over a reusable byte slice, avoiding a
// fresh bytes.Buffer allocation on every forwarded draw.
type sliceWriter struct{ buf []byte }

func (w *sliceWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}
