package protocol

import (
	"fmt"
	"io"
)

// EventTag identifies which Event variant follows on the wire.
type EventTag uint8

const (
	EventTagBombPlaced EventTag = iota
	EventTagBombExploded
	EventTagPlayerMoved
	EventTagBlockPlaced
)

// Event is one entry inside a Turn message. Each concrete type below
// implements it; callers type-switch on the concrete type the way the
// client proxy and the tests do (see pkg/proxy's GameState.applyTurnLocked).
type Event interface {
	Tag() EventTag
	encode(w io.Writer) error
}

// BombPlacedEvent records a new bomb appearing on the board.
type BombPlacedEvent struct {
	BombID   uint32
	Position Position
}

func (e BombPlacedEvent) Tag() EventTag { return EventTagBombPlaced }

func (e BombPlacedEvent) encode(w io.Writer) error {
	if err := WriteUint32(w, e.BombID); err != nil {
		return err
	}
	return WritePosition(w, e.Position)
}

func decodeBombPlaced(r io.Reader) (Event, error) {
	id, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	pos, err := ReadPosition(r)
	if err != nil {
		return nil, err
	}
	return BombPlacedEvent{BombID: id, Position: pos}, nil
}

// BombExplodedEvent records a bomb's detonation footprint.
type BombExplodedEvent struct {
	BombID          uint32
	RobotsDestroyed []uint8
	BlocksDestroyed []Position
}

func (e BombExplodedEvent) Tag() EventTag { return EventTagBombExploded }

func (e BombExplodedEvent) encode(w io.Writer) error {
	if err := WriteUint32(w, e.BombID); err != nil {
		return err
	}
	if err := WriteU8List(w, e.RobotsDestroyed); err != nil {
		return err
	}
	return WritePositionSet(w, e.BlocksDestroyed)
}

func decodeBombExploded(r io.Reader) (Event, error) {
	id, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	robots, err := ReadU8List(r)
	if err != nil {
		return nil, err
	}
	blocks, err := ReadPositionSet(r)
	if err != nil {
		return nil, err
	}
	return BombExplodedEvent{BombID: id, RobotsDestroyed: robots, BlocksDestroyed: blocks}, nil
}

// PlayerMovedEvent records a player's new position, whether from a Move
// intent or a post-destruction teleport.
type PlayerMovedEvent struct {
	PlayerID uint8
	Position Position
}

func (e PlayerMovedEvent) Tag() EventTag { return EventTagPlayerMoved }

func (e PlayerMovedEvent) encode(w io.Writer) error {
	if err := WriteUint8(w, e.PlayerID); err != nil {
		return err
	}
	return WritePosition(w, e.Position)
}

func decodePlayerMoved(r io.Reader) (Event, error) {
	id, err := ReadUint8(r)
	if err != nil {
		return nil, err
	}
	pos, err := ReadPosition(r)
	if err != nil {
		return nil, err
	}
	return PlayerMovedEvent{PlayerID: id, Position: pos}, nil
}

// BlockPlacedEvent records a new block appearing on the board.
type BlockPlacedEvent struct {
	Position Position
}

func (e BlockPlacedEvent) Tag() EventTag { return EventTagBlockPlaced }

func (e BlockPlacedEvent) encode(w io.Writer) error {
	return WritePosition(w, e.Position)
}

func decodeBlockPlaced(r io.Reader) (Event, error) {
	pos, err := ReadPosition(r)
	if err != nil {
		return nil, err
	}
	return BlockPlacedEvent{Position: pos}, nil
}

// WriteEvent writes an event's tag followed by its payload.
func WriteEvent(w io.Writer, e Event) error {
	if err := WriteUint8(w, uint8(e.Tag())); err != nil {
		return err
	}
	return e.encode(w)
}

// ReadEvent reads one tagged event.
func ReadEvent(r io.Reader) (Event, error) {
	tagByte, err := ReadUint8(r)
	if err != nil {
		return nil, err
	}
	switch EventTag(tagByte) {
	case EventTagBombPlaced:
		return decodeBombPlaced(r)
	case EventTagBombExploded:
		return decodeBombExploded(r)
	case EventTagPlayerMoved:
		return decodePlayerMoved(r)
	case EventTagBlockPlaced:
		return decodeBlockPlaced(r)
	default:
		return nil, fmt.Errorf("protocol: unknown event tag %d", tagByte)
	}
}

// WriteEventList writes a u32-length-prefixed list of events in order.
func WriteEventList(w io.Writer, events []Event) error {
	if err := WriteListLen(w, len(events)); err != nil {
		return err
	}
	for _, e := range events {
		if err := WriteEvent(w, e); err != nil {
			return err
		}
	}
	return nil
}

// ReadEventList reads a list of events written by WriteEventList.
func ReadEventList(r io.Reader) ([]Event, error) {
	n, err := ReadListLen(r)
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, n)
	for i := uint32(0); i < n; i++ {
		e, err := ReadEvent(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
