// Package proxy implements the client proxy half of the protocol: a
// UDP<->TCP bridge that relays a GUI's InputMessages to the authoritative
// server and turns the server's ServerMessages into DrawMessage
// snapshots the GUI renders, per spec.md §4.3.
package proxy

import (
	"sync"
	"sync/atomic"

	"bomberwire/pkg/protocol"
)

// Phase mirrors pkg/game.Phase but lives here as its own small type so
// pkg/proxy has no dependency on the server-side engine: the proxy never
// touches pkg/game, it only mirrors what the wire protocol tells it.
type Phase int32

const (
	PhaseLobby Phase = iota
	PhaseGame
)

// GameState is the proxy's local mirror of the authoritative board,
// rebuilt purely from ServerMessages. Phase is an atomic.Int32 rather
// than a mutex-guarded field: per spec.md §9's REDESIGN note, it is the
// one genuine cross-goroutine read of game state (the GUI->server loop
// consults it to decide Join vs. action on every datagram, while the
// server->GUI loop writes it on GameStarted/GameEnded). Every other
// field is touched only inside Apply, which holds mu while it runs.
type GameState struct {
	phase atomic.Int32

	mu sync.Mutex

	serverName      string
	playersCount    uint8
	sizeX, sizeY    uint16
	gameLength      uint16
	explosionRadius uint16
	bombTimer       uint16

	turn            uint16
	players         map[uint8]protocol.Player
	playerPositions map[uint8]protocol.Position
	blocks          map[protocol.Position]struct{}
	bombs           map[uint32]protocol.Bomb
	explosions      map[protocol.Position]struct{}
	scores          map[uint8]uint32
}

// NewGameState returns an empty Lobby-phase mirror.
func NewGameState() *GameState {
	s := &GameState{
		players:         make(map[uint8]protocol.Player),
		playerPositions: make(map[uint8]protocol.Position),
		blocks:          make(map[protocol.Position]struct{}),
		bombs:           make(map[uint32]protocol.Bomb),
		explosions:      make(map[protocol.Position]struct{}),
		scores:          make(map[uint8]uint32),
	}
	s.phase.Store(int32(PhaseLobby))
	return s
}

// Phase is the lock-free cross-goroutine read the GUI->server loop
// performs on every datagram.
func (s *GameState) Phase() Phase {
	return Phase(s.phase.Load())
}

// Apply mutates the mirror according to one ServerMessage and returns
// the DrawMessage that should be forwarded to the GUI, if any.
// GameStarted never forwards (the client stays on the Lobby draw until
// the first Turn, per spec.md §4.3); every other variant does.
func (s *GameState) Apply(msg protocol.ServerMessage) (protocol.DrawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch v := msg.(type) {
	case protocol.HelloServer:
		s.serverName = v.ServerName
		s.playersCount = v.PlayersCount
		s.sizeX, s.sizeY = v.SizeX, v.SizeY
		s.gameLength = v.GameLength
		s.explosionRadius = v.ExplosionRadius
		s.bombTimer = v.BombTimer
		return s.lobbyDrawLocked(), true

	case protocol.AcceptedPlayerServer:
		s.players[v.ID] = v.Player
		s.scores[v.ID] = 0
		return s.lobbyDrawLocked(), true

	case protocol.GameStartedServer:
		s.players = make(map[uint8]protocol.Player, len(v.Players))
		s.scores = make(map[uint8]uint32, len(v.Players))
		for id, p := range v.Players {
			s.players[id] = p
			s.scores[id] = 0
		}
		s.phase.Store(int32(PhaseGame))
		return nil, false

	case protocol.TurnServer:
		s.applyTurnLocked(v)
		return s.gameDrawLocked(), true

	case protocol.GameEndedServer:
		for id, score := range v.Scores {
			s.scores[id] = score
		}
		draw := s.gameDrawLocked()
		s.clearDynamicLocked()
		s.phase.Store(int32(PhaseLobby))
		return draw, true
	}
	return nil, false
}

// applyTurnLocked implements the client-side half of run_turn: decrement
// every bomb's timer, clear the transient explosions set, then apply
// each event in receipt order. robots_destroyed/blocks_destroyed are
// accumulated as the union across every BombExploded event this turn
// and only scored/removed once all events have been applied, per
// spec.md §4.3's exact wording.
func (s *GameState) applyTurnLocked(t protocol.TurnServer) {
	s.turn = t.Turn

	for id, bomb := range s.bombs {
		bomb.Timer--
		s.bombs[id] = bomb
	}
	s.explosions = make(map[protocol.Position]struct{})

	destroyedRobots := make(map[uint8]struct{})
	destroyedBlocks := make(map[protocol.Position]struct{})

	for _, evt := range t.Events {
		switch e := evt.(type) {
		case protocol.BombPlacedEvent:
			s.bombs[e.BombID] = protocol.Bomb{Position: e.Position, Timer: s.bombTimer}

		case protocol.BombExplodedEvent:
			// BombExplodedEvent only carries what it destroyed, not its
			// footprint: explosions must be recomputed locally from the
			// bomb's position, explosion_radius, and the mirrored blocks
			// set, the same ray-casting algorithm the engine itself runs
			// (pkg/game.explosionFootprint), since s.blocks still holds
			// the pre-tick snapshot at this point in the loop (blocks
			// destroyed this turn are only removed once every event has
			// been applied, below).
			if bomb, ok := s.bombs[e.BombID]; ok {
				for pos := range explosionFootprint(bomb.Position, s.explosionRadius, s.sizeX, s.sizeY, s.blocks) {
					s.explosions[pos] = struct{}{}
				}
			}
			for _, pid := range e.RobotsDestroyed {
				destroyedRobots[pid] = struct{}{}
			}
			for _, pos := range e.BlocksDestroyed {
				destroyedBlocks[pos] = struct{}{}
			}
			delete(s.bombs, e.BombID)

		case protocol.PlayerMovedEvent:
			s.playerPositions[e.PlayerID] = e.Position

		case protocol.BlockPlacedEvent:
			s.blocks[e.Position] = struct{}{}
		}
	}

	for pid := range destroyedRobots {
		s.scores[pid]++
	}
	for pos := range destroyedBlocks {
		delete(s.blocks, pos)
	}
}

// explosionFootprint recomputes the cells one bomb's blast touches: the
// bomb's own cell plus up to radius cells along each of the four
// cardinal rays, stopping at the first block or board edge. It mirrors
// pkg/game.explosionFootprint exactly (ray-casting against a blocks
// snapshot), since the wire protocol never transmits the footprint
// itself — only the bomb id and what it destroyed — and the proxy has
// no dependency on pkg/game to share the implementation with.
func explosionFootprint(center protocol.Position, radius, sizeX, sizeY uint16, blocks map[protocol.Position]struct{}) map[protocol.Position]struct{} {
	footprint := map[protocol.Position]struct{}{center: {}}

	type step struct{ dx, dy int32 }
	rays := []step{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

	for _, ray := range rays {
		x, y := int32(center.X), int32(center.Y)
		for i := uint16(0); i < radius; i++ {
			x += ray.dx
			y += ray.dy
			if x < 0 || y < 0 || x >= int32(sizeX) || y >= int32(sizeY) {
				break
			}
			pos := protocol.Position{X: uint16(x), Y: uint16(y)}
			footprint[pos] = struct{}{}
			if _, isBlock := blocks[pos]; isBlock {
				break
			}
		}
	}

	return footprint
}

func (s *GameState) clearDynamicLocked() {
	s.turn = 0
	s.players = make(map[uint8]protocol.Player)
	s.playerPositions = make(map[uint8]protocol.Position)
	s.blocks = make(map[protocol.Position]struct{})
	s.bombs = make(map[uint32]protocol.Bomb)
	s.explosions = make(map[protocol.Position]struct{})
	s.scores = make(map[uint8]uint32)
}

func (s *GameState) lobbyDrawLocked() protocol.LobbyDraw {
	players := make(map[uint8]protocol.Player, len(s.players))
	for id, p := range s.players {
		players[id] = p
	}
	return protocol.LobbyDraw{
		ServerName:      s.serverName,
		PlayersCount:    s.playersCount,
		SizeX:           s.sizeX,
		SizeY:           s.sizeY,
		GameLength:      s.gameLength,
		ExplosionRadius: s.explosionRadius,
		BombTimer:       s.bombTimer,
		Players:         players,
	}
}

func (s *GameState) gameDrawLocked() protocol.GameDraw {
	players := make(map[uint8]protocol.Player, len(s.players))
	for id, p := range s.players {
		players[id] = p
	}
	positions := make(map[uint8]protocol.Position, len(s.playerPositions))
	for id, p := range s.playerPositions {
		positions[id] = p
	}
	blocks := make([]protocol.Position, 0, len(s.blocks))
	for pos := range s.blocks {
		blocks = append(blocks, pos)
	}
	bombs := make(map[uint32]protocol.Bomb, len(s.bombs))
	for id, b := range s.bombs {
		bombs[id] = b
	}
	explosions := make([]protocol.Position, 0, len(s.explosions))
	for pos := range s.explosions {
		explosions = append(explosions, pos)
	}
	scores := make(map[uint8]uint32, len(s.scores))
	for id, sc := range s.scores {
		scores[id] = sc
	}
	return protocol.GameDraw{
		ServerName:      s.serverName,
		SizeX:           s.sizeX,
		SizeY:           s.sizeY,
		GameLength:      s.gameLength,
		Turn:            s.turn,
		Players:         players,
		PlayerPositions: positions,
		Blocks:          blocks,
		Bombs:           bombs,
		Explosions:      explosions,
		Scores:          scores,
	}
}
