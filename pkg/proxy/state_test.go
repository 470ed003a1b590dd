package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bomberwire/pkg/protocol"
)

func TestApplyHelloUpdatesConfigAndStaysLobby(t *testing.T) {
	s := NewGameState()
	draw, forward := s.Apply(protocol.HelloServer{
		ServerName: "arena", PlayersCount: 2, SizeX: 5, SizeY: 5,
		GameLength: 10, ExplosionRadius: 2, BombTimer: 3,
	})
	require.True(t, forward)
	assert.Equal(t, PhaseLobby, s.Phase())
	lobby, ok := draw.(protocol.LobbyDraw)
	require.True(t, ok)
	assert.Equal(t, "arena", lobby.ServerName)
	assert.Equal(t, uint8(2), lobby.PlayersCount)
}

func TestApplyAcceptedPlayerAddsToLobbyDraw(t *testing.T) {
	s := NewGameState()
	s.Apply(protocol.HelloServer{PlayersCount: 2})
	draw, forward := s.Apply(protocol.AcceptedPlayerServer{ID: 0, Player: protocol.Player{Name: "A", Address: "1.2.3.4:1"}})
	require.True(t, forward)
	lobby := draw.(protocol.LobbyDraw)
	require.Contains(t, lobby.Players, uint8(0))
	assert.Equal(t, "A", lobby.Players[0].Name)
}

func TestGameStartedNotForwardedAndTransitionsPhase(t *testing.T) {
	s := NewGameState()
	_, forward := s.Apply(protocol.GameStartedServer{
		Players: map[uint8]protocol.Player{0: {Name: "A"}, 1: {Name: "B"}},
	})
	assert.False(t, forward)
	assert.Equal(t, PhaseGame, s.Phase())
}

func TestApplyTurnUnionsExplosionsAndAwardsScoreOnce(t *testing.T) {
	s := NewGameState()
	s.Apply(protocol.GameStartedServer{Players: map[uint8]protocol.Player{0: {Name: "A"}}})
	s.Apply(protocol.TurnServer{Turn: 0, Events: []protocol.Event{
		protocol.PlayerMovedEvent{PlayerID: 0, Position: protocol.Position{X: 2, Y: 2}},
	}})

	// Two bombs placed, both expiring this turn, each reporting player 0 as
	// destroyed: the score must still go up by exactly 1 (union, not sum).
	draw, forward := s.Apply(protocol.TurnServer{Turn: 1, Events: []protocol.Event{
		protocol.BombPlacedEvent{BombID: 1, Position: protocol.Position{X: 2, Y: 2}},
		protocol.BombPlacedEvent{BombID: 2, Position: protocol.Position{X: 2, Y: 2}},
		protocol.BombExplodedEvent{BombID: 1, RobotsDestroyed: []uint8{0}, BlocksDestroyed: nil},
		protocol.BombExplodedEvent{BombID: 2, RobotsDestroyed: []uint8{0}, BlocksDestroyed: nil},
		protocol.PlayerMovedEvent{PlayerID: 0, Position: protocol.Position{X: 4, Y: 4}},
	}})
	require.True(t, forward)
	game := draw.(protocol.GameDraw)
	assert.Equal(t, uint32(1), game.Scores[0])
	assert.Equal(t, protocol.Position{X: 4, Y: 4}, game.PlayerPositions[0])
}

func TestApplyTurnRecomputesFullExplosionFootprint(t *testing.T) {
	// Mirrors pkg/game's TestBombExplosionFootprintAndDestroyedBlock: board
	// 5x5, radius 2, bomb at (2,2), block at (3,2), no players. The wire
	// event only reports the destroyed block, so the empty cells along
	// each ray must be reconstructed locally, not just unioned in from
	// the destroyed lists.
	s := NewGameState()
	s.Apply(protocol.HelloServer{SizeX: 5, SizeY: 5, ExplosionRadius: 2, BombTimer: 1})
	s.Apply(protocol.GameStartedServer{Players: map[uint8]protocol.Player{}})
	s.Apply(protocol.TurnServer{Turn: 0, Events: []protocol.Event{
		protocol.BlockPlacedEvent{Position: protocol.Position{X: 3, Y: 2}},
	}})
	s.Apply(protocol.TurnServer{Turn: 1, Events: []protocol.Event{
		protocol.BombPlacedEvent{BombID: 1, Position: protocol.Position{X: 2, Y: 2}},
	}})
	draw, _ := s.Apply(protocol.TurnServer{Turn: 2, Events: []protocol.Event{
		protocol.BombExplodedEvent{BombID: 1, RobotsDestroyed: nil, BlocksDestroyed: []protocol.Position{{X: 3, Y: 2}}},
	}})

	game := draw.(protocol.GameDraw)
	want := []protocol.Position{
		{X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 0}, {X: 2, Y: 1},
		{X: 2, Y: 2}, {X: 2, Y: 3}, {X: 2, Y: 4}, {X: 3, Y: 2},
	}
	assert.Len(t, game.Explosions, len(want))
	for _, pos := range want {
		assert.Contains(t, game.Explosions, pos)
	}
}

func TestApplyTurnRemovesDestroyedBlocksAtEndOfTurn(t *testing.T) {
	s := NewGameState()
	s.Apply(protocol.GameStartedServer{Players: map[uint8]protocol.Player{}})
	s.Apply(protocol.TurnServer{Turn: 0, Events: []protocol.Event{
		protocol.BlockPlacedEvent{Position: protocol.Position{X: 3, Y: 2}},
	}})
	s.bombTimer = 1
	s.Apply(protocol.TurnServer{Turn: 1, Events: []protocol.Event{
		protocol.BombPlacedEvent{BombID: 7, Position: protocol.Position{X: 2, Y: 2}},
	}})
	draw, _ := s.Apply(protocol.TurnServer{Turn: 2, Events: []protocol.Event{
		protocol.BombExplodedEvent{BombID: 7, RobotsDestroyed: nil, BlocksDestroyed: []protocol.Position{{X: 3, Y: 2}}},
	}})
	game := draw.(protocol.GameDraw)
	assert.NotContains(t, game.Blocks, protocol.Position{X: 3, Y: 2})
}

func TestApplyGameEndedOverwritesScoresThenClears(t *testing.T) {
	s := NewGameState()
	s.Apply(protocol.GameStartedServer{Players: map[uint8]protocol.Player{0: {Name: "A"}}})
	draw, forward := s.Apply(protocol.GameEndedServer{Scores: map[uint8]uint32{0: 5}})
	require.True(t, forward)
	game := draw.(protocol.GameDraw)
	assert.Equal(t, uint32(5), game.Scores[0])
	assert.Equal(t, PhaseLobby, s.Phase())

	// Internal state is now clear: a fresh Hello starts a brand new lobby.
	next, _ := s.Apply(protocol.HelloServer{PlayersCount: 2})
	lobby := next.(protocol.LobbyDraw)
	assert.Empty(t, lobby.Players)
}
