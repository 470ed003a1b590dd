// Package game holds the authoritative board state and the deterministic
// tick engine that advances it, independent of how players are
// transported to and from the board (see pkg/server for that).
package game

import (
	"sort"

	"bomberwire/pkg/protocol"
)

// Phase is the coarse lifecycle state of one game.
type Phase uint8

const (
	PhaseLobby Phase = iota
	PhaseGame
)

func (p Phase) String() string {
	if p == PhaseGame {
		return "game"
	}
	return "lobby"
}

// PlayerID is the dense per-game player identifier assigned in Join order.
type PlayerID = uint8

// BombID is the dense, monotonically increasing bomb identifier.
type BombID = uint32

// Config is the static, immutable-for-the-lifetime-of-a-game configuration
// a game manager is constructed with.
type Config struct {
	ServerName      string
	PlayersCount    uint8
	SizeX, SizeY    uint16
	GameLength      uint16
	ExplosionRadius uint16
	BombTimer       uint16
	TurnDuration    uint64 // milliseconds
	InitialBlocks   uint16
	Seed            uint32
}

// State is the authoritative value-typed game board. It is owned
// exclusively by the game manager's run loop; nothing outside pkg/game
// mutates it directly.
type State struct {
	Phase Phase

	Turn            uint16
	Players         map[PlayerID]protocol.Player
	PlayerPositions map[PlayerID]protocol.Position
	Blocks          map[protocol.Position]struct{}
	Bombs           map[BombID]protocol.Bomb
	Explosions      map[protocol.Position]struct{}
	Scores          map[PlayerID]uint32
}

// NewState returns an empty Lobby-phase board.
func NewState() *State {
	return &State{
		Phase:           PhaseLobby,
		Players:         make(map[PlayerID]protocol.Player),
		PlayerPositions: make(map[PlayerID]protocol.Position),
		Blocks:          make(map[protocol.Position]struct{}),
		Bombs:           make(map[BombID]protocol.Bomb),
		Explosions:      make(map[protocol.Position]struct{}),
		Scores:          make(map[PlayerID]uint32),
	}
}

// Reset clears all dynamic state and returns to Lobby, per run_turn's
// reset_game_state contract. The PRNG is intentionally untouched by
// this method — callers own it and it is never reseeded between games.
func (s *State) Reset() {
	s.Phase = PhaseLobby
	s.Turn = 0
	s.Players = make(map[PlayerID]protocol.Player)
	s.PlayerPositions = make(map[PlayerID]protocol.Position)
	s.Blocks = make(map[protocol.Position]struct{})
	s.Bombs = make(map[BombID]protocol.Bomb)
	s.Explosions = make(map[protocol.Position]struct{})
	s.Scores = make(map[PlayerID]uint32)
}

// InBounds reports whether p lies within a board of the given dimensions.
func InBounds(p protocol.Position, sizeX, sizeY uint16) bool {
	return p.X < sizeX && p.Y < sizeY
}

// orderedPlayerIDs returns the player ids present in s.Players sorted
// ascending, matching the "player_id order" iteration contract used
// throughout tick processing and initial-world setup.
func orderedPlayerIDs(players map[PlayerID]protocol.Player) []PlayerID {
	ids := make([]PlayerID, 0, len(players))
	for id := range players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
