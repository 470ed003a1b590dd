package server

import (
	"time"

	"github.com/rs/zerolog"

	"bomberwire/pkg/game"
	"bomberwire/pkg/protocol"
)

// joinRequest is the typed message a Session's receive goroutine posts
// instead of reaching into the engine directly: the engine stays owned
// exclusively by the game-loop goroutine, which drains this channel.
type joinRequest struct {
	sess *Session
	name string
}

// GameManager wraps a pkg/game.Engine with everything that is a
// connection-layer concept rather than a board concept: the client_id
// -> player_id mapping, the broadcast queue, the past-messages log, and
// the goroutines that drive ticks and fan broadcasts out to sessions.
type GameManager struct {
	cfg    game.Config
	engine *game.Engine

	broadcast *BroadcastQueue
	history   *PastMessagesLog
	registry  *SessionRegistry
	log       zerolog.Logger

	joinRequests chan joinRequest

	// Touched only by the game-loop goroutine.
	clientJoined    map[uint32]struct{}
	sessionByPlayer map[game.PlayerID]*Session
}

// NewGameManager constructs a manager in Lobby phase. Call Start to
// spawn its goroutines.
func NewGameManager(cfg game.Config, broadcast *BroadcastQueue, history *PastMessagesLog, registry *SessionRegistry, log zerolog.Logger) *GameManager {
	return &GameManager{
		cfg:             cfg,
		engine:          game.NewEngine(cfg),
		broadcast:       broadcast,
		history:         history,
		registry:        registry,
		log:             log,
		joinRequests:    make(chan joinRequest, 64),
		clientJoined:    make(map[uint32]struct{}),
		sessionByPlayer: make(map[game.PlayerID]*Session),
	}
}

// HandleJoin implements JoinHandler: it only posts a typed request onto
// the manager's inbox. It may be called concurrently by any number of
// session receive goroutines.
func (g *GameManager) HandleJoin(sess *Session, name string) {
	g.joinRequests <- joinRequest{sess: sess, name: name}
}

// Start seeds the past-messages log with the initial Hello (so the very
// first connecting session has a non-empty replay snapshot), then spawns
// the dispatch loop (broadcast queue -> history -> live sessions) and
// the game loop (lobby fill -> ticks -> end -> reset, forever).
func (g *GameManager) Start() {
	g.history.Reset(g.helloMessage())
	go g.dispatchLoop()
	go g.runForever()
}

// dispatchLoop drains the broadcast queue, recording each message into
// the past-messages log and fanning it out to every live session.
// Hello is never pushed through here (it only ever seeds the log via
// Reset); GameStarted and GameEnded are transition markers delivered
// live but never replayed, per spec.md §4.4's exact log contents. Each
// of them also reseeds the log with a fresh Hello here, in broadcast
// order, so a message queued ahead of the transition is never appended
// after the game loop's own Reset.
func (g *GameManager) dispatchLoop() {
	for {
		msg := g.broadcast.Pop()
		switch msg.(type) {
		case protocol.GameStartedServer, protocol.GameEndedServer:
			g.history.Reset(g.helloMessage())
		case protocol.HelloServer:
		default:
			g.history.Append(msg)
		}
		g.registry.Dispatch(msg)
	}
}

func (g *GameManager) helloMessage() protocol.ServerMessage {
	return protocol.HelloServer{
		ServerName:      g.cfg.ServerName,
		PlayersCount:    g.cfg.PlayersCount,
		SizeX:           g.cfg.SizeX,
		SizeY:           g.cfg.SizeY,
		GameLength:      g.cfg.GameLength,
		ExplosionRadius: g.cfg.ExplosionRadius,
		BombTimer:       g.cfg.BombTimer,
	}
}

func (g *GameManager) runForever() {
	for {
		g.collectPlayers()
		g.startGame()
		g.runTurns()
		g.endGame()
	}
}

// collectPlayers implements collect_players: blocks on incoming Join
// requests until the lobby holds players_count players.
func (g *GameManager) collectPlayers() {
	for uint8(len(g.engine.State.Players)) < g.cfg.PlayersCount {
		req := <-g.joinRequests
		g.processJoin(req)
	}
}

func (g *GameManager) processJoin(req joinRequest) {
	if _, already := g.clientJoined[req.sess.ID]; already {
		g.log.Debug().Err(ErrAlreadyJoined).Uint32("client_id", req.sess.ID).Msg("ignoring duplicate join")
		return
	}
	id, player, ok := g.engine.AddPlayer(req.name, req.sess.Address)
	if !ok {
		// The connecting client remains a spectator: it is already
		// registered in the session registry and will keep receiving
		// broadcasts, it just never becomes a player for this game.
		reason := ErrLobbyFull
		if g.engine.State.Phase != game.PhaseLobby {
			reason = ErrGameInProgress
		}
		g.log.Debug().Err(reason).Uint32("client_id", req.sess.ID).Str("name", req.name).Msg("join refused")
		return
	}
	g.clientJoined[req.sess.ID] = struct{}{}
	g.sessionByPlayer[id] = req.sess
	g.broadcast.Push(protocol.AcceptedPlayerServer{ID: id, Player: player})
}

// drainPendingJoins processes any Join requests that arrived since the
// lobby filled (mid-game spectators), without blocking the tick loop.
func (g *GameManager) drainPendingJoins() {
	for {
		select {
		case req := <-g.joinRequests:
			g.processJoin(req)
		default:
			return
		}
	}
}

func (g *GameManager) startGame() {
	g.engine.StartGame()
	g.history.Reset(g.helloMessage())

	players := make(map[game.PlayerID]protocol.Player, len(g.engine.State.Players))
	for id, p := range g.engine.State.Players {
		players[id] = p
	}
	g.broadcast.Push(protocol.GameStartedServer{Players: players})

	events := g.engine.InitializeGameState()
	g.broadcast.Push(protocol.TurnServer{Turn: 0, Events: events})
}

func (g *GameManager) runTurns() {
	for turn := uint16(1); turn <= g.cfg.GameLength; turn++ {
		time.Sleep(time.Duration(g.cfg.TurnDuration) * time.Millisecond)
		g.drainPendingJoins()

		intents := g.collectIntents()
		events := g.engine.RunTurn(turn, intents)
		g.broadcast.Push(protocol.TurnServer{Turn: turn, Events: events})
	}
}

func (g *GameManager) collectIntents() map[game.PlayerID]protocol.ClientMessage {
	intents := make(map[game.PlayerID]protocol.ClientMessage, len(g.sessionByPlayer))
	for id, sess := range g.sessionByPlayer {
		if msg, ok := sess.TakeIntent(); ok {
			intents[id] = msg
		}
	}
	return intents
}

func (g *GameManager) endGame() {
	g.engine.EndGame()

	scores := make(map[game.PlayerID]uint32, len(g.engine.State.Scores))
	for id, s := range g.engine.State.Scores {
		scores[id] = s
	}
	g.broadcast.Push(protocol.GameEndedServer{Scores: scores})

	g.engine.Reset()
	g.clientJoined = make(map[uint32]struct{})
	g.sessionByPlayer = make(map[game.PlayerID]*Session)
	g.history.Reset(g.helloMessage())
}
