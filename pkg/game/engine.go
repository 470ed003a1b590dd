package game

import (
	"sort"

	"bomberwire/pkg/protocol"
)

// Engine owns one game's State plus the id generators and PRNG needed to
// advance it. It has no notion of sockets, sessions, or broadcast
// delivery — pkg/server wraps an Engine and is responsible for turning
// the events it produces into broadcast ServerMessages.
type Engine struct {
	Config Config
	State  *State
	rng    *RNG

	nextPlayerID PlayerID
	nextBombID   BombID
}

// NewEngine constructs an Engine in Lobby phase with an empty board. The
// PRNG is seeded once here and is never reseeded for the lifetime of the
// process, even across Reset calls between games.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		Config: cfg,
		State:  NewState(),
		rng:    NewRNG(cfg.Seed),
	}
}

// AddPlayer implements add_player: accepts a Join if the lobby has room
// and this caller (identified externally by a connection, not tracked
// here) hasn't already joined. The "already joined" check is the
// caller's responsibility since it concerns the client_id -> player_id
// mapping, which is a server/session concept, not a game one.
func (m *Engine) AddPlayer(name, address string) (id PlayerID, player protocol.Player, ok bool) {
	if m.State.Phase != PhaseLobby {
		return 0, protocol.Player{}, false
	}
	if uint8(len(m.State.Players)) >= m.Config.PlayersCount {
		return 0, protocol.Player{}, false
	}

	id = m.nextPlayerID
	m.nextPlayerID++

	player = protocol.Player{Name: name, Address: address}
	m.State.Players[id] = player
	m.State.Scores[id] = 0
	return id, player, true
}

// StartGame implements start_game: freezes the player roster and moves
// to the Game phase. The caller is responsible for resetting the
// past-messages log and broadcasting GameStarted.
func (m *Engine) StartGame() {
	m.State.Phase = PhaseGame
}

// InitializeGameState implements initialize_game_state: spawns every
// player at a random position, then scatters initial_blocks blocks,
// skipping draws that land on an already-occupied cell. It returns the
// events that make up the synthetic turn-0 Turn message.
func (m *Engine) InitializeGameState() []protocol.Event {
	m.State.Turn = 0
	var events []protocol.Event

	for _, id := range orderedPlayerIDs(m.State.Players) {
		pos := m.rng.RandomPosition(m.Config.SizeX, m.Config.SizeY)
		m.State.PlayerPositions[id] = pos
		events = append(events, protocol.PlayerMovedEvent{PlayerID: id, Position: pos})
	}

	for i := uint16(0); i < m.Config.InitialBlocks; i++ {
		pos := m.rng.RandomPosition(m.Config.SizeX, m.Config.SizeY)
		if _, occupied := m.State.Blocks[pos]; occupied {
			continue
		}
		m.State.Blocks[pos] = struct{}{}
		events = append(events, protocol.BlockPlacedEvent{Position: pos})
	}

	return events
}

// RunTurn implements run_turn in the exact six-step order the protocol's
// ordering guarantees depend on: bomb countdown and explosion resolution
// first (against one pre-tick snapshot, so chained bombs in the same
// tick never see each other's destruction), then player moves in
// player_id order against the post-explosion board.
func (m *Engine) RunTurn(turn uint16, intents map[PlayerID]protocol.ClientMessage) []protocol.Event {
	m.State.Turn = turn
	var events []protocol.Event

	m.State.Explosions = make(map[protocol.Position]struct{})
	destroyedRobots, destroyedBlocks, exploded := m.resolveExplosions(&events)

	for _, bombID := range exploded {
		delete(m.State.Bombs, bombID)
	}
	for pos := range destroyedBlocks {
		delete(m.State.Blocks, pos)
	}

	for _, id := range orderedPlayerIDs(m.State.Players) {
		if _, hit := destroyedRobots[id]; hit {
			m.State.Scores[id]++
			pos := m.rng.RandomPosition(m.Config.SizeX, m.Config.SizeY)
			m.State.PlayerPositions[id] = pos
			events = append(events, protocol.PlayerMovedEvent{PlayerID: id, Position: pos})
			continue
		}
		if msg, has := intents[id]; has {
			if e, ok := m.applyIntent(id, msg); ok {
				events = append(events, e)
			}
		}
	}

	return events
}

// resolveExplosions decrements every bomb timer, computes the footprint
// of each bomb that reaches zero against one shared pre-tick snapshot,
// and appends one BombExploded event per expiring bomb. It returns the
// turn-wide union of destroyed robots and blocks and the set of bomb ids
// to remove.
func (m *Engine) resolveExplosions(events *[]protocol.Event) (map[PlayerID]struct{}, map[protocol.Position]struct{}, []BombID) {
	destroyedRobots := make(map[PlayerID]struct{})
	destroyedBlocks := make(map[protocol.Position]struct{})
	var exploded []BombID

	type expiring = struct {
		id   BombID
		bomb protocol.Bomb
	}
	var expired []expiring

	for id, bomb := range m.State.Bombs {
		bomb.Timer--
		if bomb.Timer == 0 {
			expired = append(expired, expiring{id: id, bomb: bomb})
		} else {
			m.State.Bombs[id] = bomb
		}
	}
	sortBombIDs(expired)

	for _, ex := range expired {
		footprint := explosionFootprint(ex.bomb.Position, m.Config.ExplosionRadius, m.Config.SizeX, m.Config.SizeY, m.State.Blocks)

		var robots []PlayerID
		var blocks []protocol.Position
		for pos := range footprint {
			m.State.Explosions[pos] = struct{}{}
			for pid, ppos := range m.State.PlayerPositions {
				if ppos == pos {
					robots = append(robots, pid)
					destroyedRobots[pid] = struct{}{}
				}
			}
			if _, isBlock := m.State.Blocks[pos]; isBlock {
				blocks = append(blocks, pos)
				destroyedBlocks[pos] = struct{}{}
			}
		}
		sortPlayerIDs(robots)

		*events = append(*events, protocol.BombExplodedEvent{
			BombID:          ex.id,
			RobotsDestroyed: robots,
			BlocksDestroyed: blocks,
		})
		exploded = append(exploded, ex.id)
	}

	return destroyedRobots, destroyedBlocks, exploded
}

// explosionFootprint computes the cells one bomb's blast touches: the
// bomb's own cell plus up to radius cells along each of the four
// cardinal rays, stopping at the first block or board edge. The ray
// that stops on a block still includes that block's cell.
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

// applyIntent implements the PlaceBomb/PlaceBlock/Move intent rules.
func (m *Engine) applyIntent(id PlayerID, msg protocol.ClientMessage) (protocol.Event, bool) {
	switch v := msg.(type) {
	case protocol.PlaceBombClient:
		pos := m.State.PlayerPositions[id]
		bombID := m.nextBombID
		m.nextBombID++
		m.State.Bombs[bombID] = protocol.Bomb{Position: pos, Timer: m.Config.BombTimer}
		return protocol.BombPlacedEvent{BombID: bombID, Position: pos}, true

	case protocol.PlaceBlockClient:
		pos := m.State.PlayerPositions[id]
		if _, occupied := m.State.Blocks[pos]; occupied {
			return nil, false
		}
		m.State.Blocks[pos] = struct{}{}
		return protocol.BlockPlacedEvent{Position: pos}, true

	case protocol.MoveClient:
		cur := m.State.PlayerPositions[id]
		target, ok := step(cur, v.Direction)
		if !ok || !InBounds(target, m.Config.SizeX, m.Config.SizeY) {
			return nil, false
		}
		if _, blocked := m.State.Blocks[target]; blocked {
			return nil, false
		}
		m.State.PlayerPositions[id] = target
		return protocol.PlayerMovedEvent{PlayerID: id, Position: target}, true
	}
	return nil, false
}

// step computes the target cell of one directional move. It returns
// ok=false when the move would underflow the unsigned coordinate space
// (Down from y=0, Left from x=0) rather than wrapping.
func step(p protocol.Position, dir protocol.Direction) (protocol.Position, bool) {
	switch dir {
	case protocol.DirUp:
		return protocol.Position{X: p.X, Y: p.Y + 1}, true
	case protocol.DirDown:
		if p.Y == 0 {
			return protocol.Position{}, false
		}
		return protocol.Position{X: p.X, Y: p.Y - 1}, true
	case protocol.DirRight:
		return protocol.Position{X: p.X + 1, Y: p.Y}, true
	case protocol.DirLeft:
		if p.X == 0 {
			return protocol.Position{}, false
		}
		return protocol.Position{X: p.X - 1, Y: p.Y}, true
	}
	return protocol.Position{}, false
}

// EndGame implements end_game: returns to Lobby. The caller owns
// emitting GameEnded with a snapshot of State.Scores.
func (m *Engine) EndGame() {
	m.State.Phase = PhaseLobby
}

// Reset implements reset_game_state: clears dynamic state and both id
// generators. The PRNG continues its stream untouched.
func (m *Engine) Reset() {
	m.State.Reset()
	m.nextPlayerID = 0
	m.nextBombID = 0
}

func sortPlayerIDs(ids []PlayerID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func sortBombIDs(expired []struct {
	id   BombID
	bomb protocol.Bomb
}) {
	sort.Slice(expired, func(i, j int) bool { return expired[i].id < expired[j].id })
}
