package server

import "errors"

// ErrPeerClosed is returned by Session.Enqueue when the session has been
// closed before the message could be queued.
var ErrPeerClosed = errors.New("server: peer closed")

// ErrLobbyFull is logged by GameManager.processJoin when a Join arrives
// while the lobby already holds players_count players.
var ErrLobbyFull = errors.New("server: lobby is full")

// ErrGameInProgress is logged by GameManager.processJoin when a Join
// arrives mid-game; the connecting client stays a spectator.
var ErrGameInProgress = errors.New("server: game already in progress")

// ErrAlreadyJoined is logged by GameManager.processJoin when a client_id
// that already mapped to a player_id sends a second Join.
var ErrAlreadyJoined = errors.New("server: client already joined")
