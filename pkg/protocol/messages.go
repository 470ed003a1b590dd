package protocol

import (
	"fmt"
	"io"
)

// ---- InputMessage: GUI -> client proxy, one per UDP datagram ----

// InputTag identifies which InputMessage variant follows on the wire.
type InputTag uint8

const (
	InputTagPlaceBomb InputTag = iota
	InputTagPlaceBlock
	InputTagMove
)

// InputMessage is a GUI-originated action. Any datagram that does not
// decode to exactly one of these, with no trailing bytes, is dropped by
// the caller (ParseInputDatagram enforces the "no trailing bytes" rule).
type InputMessage interface {
	InputTag() InputTag
}

type PlaceBombInput struct{}

func (PlaceBombInput) InputTag() InputTag { return InputTagPlaceBomb }

type PlaceBlockInput struct{}

func (PlaceBlockInput) InputTag() InputTag { return InputTagPlaceBlock }

type MoveInput struct{ Direction Direction }

func (MoveInput) InputTag() InputTag { return InputTagMove }

// DecodeInputMessage reads one InputMessage from r.
func DecodeInputMessage(r io.Reader) (InputMessage, error) {
	tag, err := ReadUint8(r)
	if err != nil {
		return nil, err
	}
	switch InputTag(tag) {
	case InputTagPlaceBomb:
		return PlaceBombInput{}, nil
	case InputTagPlaceBlock:
		return PlaceBlockInput{}, nil
	case InputTagMove:
		d, err := ReadUint8(r)
		if err != nil {
			return nil, err
		}
		dir := Direction(d)
		if !dir.Valid() {
			return nil, fmt.Errorf("protocol: invalid direction %d", d)
		}
		return MoveInput{Direction: dir}, nil
	default:
		return nil, fmt.Errorf("protocol: unknown input tag %d", tag)
	}
}

// EncodeInputMessage writes one InputMessage to w.
func EncodeInputMessage(w io.Writer, m InputMessage) error {
	if err := WriteUint8(w, uint8(m.InputTag())); err != nil {
		return err
	}
	if mv, ok := m.(MoveInput); ok {
		return WriteUint8(w, uint8(mv.Direction))
	}
	return nil
}

// ParseInputDatagram decodes a whole UDP datagram as an InputMessage.
// Any parse error, or any trailing byte left after a valid decode, is
// reported so the caller can silently drop the datagram.
func ParseInputDatagram(data []byte) (InputMessage, error) {
	r := newBoundedReader(data)
	m, err := DecodeInputMessage(r)
	if err != nil {
		return nil, err
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("protocol: %d trailing bytes in input datagram", r.remaining())
	}
	return m, nil
}

// ---- ClientMessage: client proxy -> server, over TCP ----

// ClientTag identifies which ClientMessage variant follows on the wire.
type ClientTag uint8

const (
	ClientTagJoin ClientTag = iota
	ClientTagPlaceBomb
	ClientTagPlaceBlock
	ClientTagMove
)

// ClientMessage is an action forwarded by the client proxy. Any parse
// failure closes the TCP connection (the server does not resynchronize).
type ClientMessage interface {
	ClientTag() ClientTag
}

type JoinClient struct{ Name string }

func (JoinClient) ClientTag() ClientTag { return ClientTagJoin }

type PlaceBombClient struct{}

func (PlaceBombClient) ClientTag() ClientTag { return ClientTagPlaceBomb }

type PlaceBlockClient struct{}

func (PlaceBlockClient) ClientTag() ClientTag { return ClientTagPlaceBlock }

type MoveClient struct{ Direction Direction }

func (MoveClient) ClientTag() ClientTag { return ClientTagMove }

// DecodeClientMessage reads one ClientMessage from r.
func DecodeClientMessage(r io.Reader) (ClientMessage, error) {
	tag, err := ReadUint8(r)
	if err != nil {
		return nil, err
	}
	switch ClientTag(tag) {
	case ClientTagJoin:
		name, err := ReadString(r)
		if err != nil {
			return nil, err
		}
		return JoinClient{Name: name}, nil
	case ClientTagPlaceBomb:
		return PlaceBombClient{}, nil
	case ClientTagPlaceBlock:
		return PlaceBlockClient{}, nil
	case ClientTagMove:
		d, err := ReadUint8(r)
		if err != nil {
			return nil, err
		}
		dir := Direction(d)
		if !dir.Valid() {
			return nil, fmt.Errorf("protocol: invalid direction %d", d)
		}
		return MoveClient{Direction: dir}, nil
	default:
		return nil, fmt.Errorf("protocol: unknown client tag %d", tag)
	}
}

// EncodeClientMessage writes one ClientMessage to w.
func EncodeClientMessage(w io.Writer, m ClientMessage) error {
	if err := WriteUint8(w, uint8(m.ClientTag())); err != nil {
		return err
	}
	switch v := m.(type) {
	case JoinClient:
		return WriteString(w, v.Name)
	case MoveClient:
		return WriteUint8(w, uint8(v.Direction))
	}
	return nil
}

// ---- ServerMessage: server -> client proxy, over TCP ----

// ServerTag identifies which ServerMessage variant follows on the wire.
type ServerTag uint8

const (
	ServerTagHello ServerTag = iota
	ServerTagAcceptedPlayer
	ServerTagGameStarted
	ServerTagTurn
	ServerTagGameEnded
)

// ServerMessage is an authoritative broadcast from the server. Any parse
// failure here is fatal to the client proxy: the server stream is
// trusted, so a decode error means the stream is out of sync.
type ServerMessage interface {
	ServerTag() ServerTag
}

type HelloServer struct {
	ServerName      string
	PlayersCount    uint8
	SizeX, SizeY    uint16
	GameLength      uint16
	ExplosionRadius uint16
	BombTimer       uint16
}

func (HelloServer) ServerTag() ServerTag { return ServerTagHello }

type AcceptedPlayerServer struct {
	ID     uint8
	Player Player
}

func (AcceptedPlayerServer) ServerTag() ServerTag { return ServerTagAcceptedPlayer }

type GameStartedServer struct {
	Players map[uint8]Player
}

func (GameStartedServer) ServerTag() ServerTag { return ServerTagGameStarted }

type TurnServer struct {
	Turn   uint16
	Events []Event
}

func (TurnServer) ServerTag() ServerTag { return ServerTagTurn }

type GameEndedServer struct {
	Scores map[uint8]uint32
}

func (GameEndedServer) ServerTag() ServerTag { return ServerTagGameEnded }

// DecodeServerMessage reads one ServerMessage from r.
func DecodeServerMessage(r io.Reader) (ServerMessage, error) {
	tag, err := ReadUint8(r)
	if err != nil {
		return nil, err
	}
	switch ServerTag(tag) {
	case ServerTagHello:
		name, err := ReadString(r)
		if err != nil {
			return nil, err
		}
		count, err := ReadUint8(r)
		if err != nil {
			return nil, err
		}
		sx, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		sy, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		length, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		radius, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		timer, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		return HelloServer{
			ServerName: name, PlayersCount: count,
			SizeX: sx, SizeY: sy, GameLength: length,
			ExplosionRadius: radius, BombTimer: timer,
		}, nil

	case ServerTagAcceptedPlayer:
		id, err := ReadUint8(r)
		if err != nil {
			return nil, err
		}
		p, err := ReadPlayer(r)
		if err != nil {
			return nil, err
		}
		return AcceptedPlayerServer{ID: id, Player: p}, nil

	case ServerTagGameStarted:
		players, err := ReadMap(r, ReadUint8, ReadPlayer)
		if err != nil {
			return nil, err
		}
		return GameStartedServer{Players: players}, nil

	case ServerTagTurn:
		turn, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		events, err := ReadEventList(r)
		if err != nil {
			return nil, err
		}
		return TurnServer{Turn: turn, Events: events}, nil

	case ServerTagGameEnded:
		scores, err := ReadMap(r, ReadUint8, ReadUint32)
		if err != nil {
			return nil, err
		}
		return GameEndedServer{Scores: scores}, nil

	default:
		return nil, fmt.Errorf("protocol: unknown server tag %d", tag)
	}
}

// EncodeServerMessage writes one ServerMessage to w.
func EncodeServerMessage(w io.Writer, m ServerMessage) error {
	if err := WriteUint8(w, uint8(m.ServerTag())); err != nil {
		return err
	}
	switch v := m.(type) {
	case HelloServer:
		if err := WriteString(w, v.ServerName); err != nil {
			return err
		}
		if err := WriteUint8(w, v.PlayersCount); err != nil {
			return err
		}
		if err := WriteUint16(w, v.SizeX); err != nil {
			return err
		}
		if err := WriteUint16(w, v.SizeY); err != nil {
			return err
		}
		if err := WriteUint16(w, v.GameLength); err != nil {
			return err
		}
		if err := WriteUint16(w, v.ExplosionRadius); err != nil {
			return err
		}
		return WriteUint16(w, v.BombTimer)

	case AcceptedPlayerServer:
		if err := WriteUint8(w, v.ID); err != nil {
			return err
		}
		return WritePlayer(w, v.Player)

	case GameStartedServer:
		return WriteMap(w, v.Players, WriteUint8, WritePlayer)

	case TurnServer:
		if err := WriteUint16(w, v.Turn); err != nil {
			return err
		}
		return WriteEventList(w, v.Events)

	case GameEndedServer:
		return WriteMap(w, v.Scores, WriteUint8, WriteUint32)
	}
	return fmt.Errorf("protocol: unencodable server message %T", m)
}

// ---- DrawMessage: client proxy -> GUI, one per UDP datagram ----

// DrawTag identifies which DrawMessage variant follows on the wire.
type DrawTag uint8

const (
	DrawTagLobby DrawTag = iota
	DrawTagGame
)

// DrawMessage is a render-ready snapshot sent to the GUI.
type DrawMessage interface {
	DrawTag() DrawTag
}

type LobbyDraw struct {
	ServerName      string
	PlayersCount    uint8
	SizeX, SizeY    uint16
	GameLength      uint16
	ExplosionRadius uint16
	BombTimer       uint16
	Players         map[uint8]Player
}

func (LobbyDraw) DrawTag() DrawTag { return DrawTagLobby }

type GameDraw struct {
	ServerName      string
	SizeX, SizeY    uint16
	GameLength      uint16
	Turn            uint16
	Players         map[uint8]Player
	PlayerPositions map[uint8]Position
	Blocks          []Position
	Bombs           map[uint32]Bomb
	Explosions      []Position
	Scores          map[uint8]uint32
}

func (GameDraw) DrawTag() DrawTag { return DrawTagGame }

func writeBomb(w io.Writer, b Bomb) error {
	if err := WritePosition(w, b.Position); err != nil {
		return err
	}
	return WriteUint16(w, b.Timer)
}

func readBomb(r io.Reader) (Bomb, error) {
	pos, err := ReadPosition(r)
	if err != nil {
		return Bomb{}, err
	}
	timer, err := ReadUint16(r)
	if err != nil {
		return Bomb{}, err
	}
	return Bomb{Position: pos, Timer: timer}, nil
}

// EncodeDrawMessage writes one DrawMessage to w.
func EncodeDrawMessage(w io.Writer, m DrawMessage) error {
	if err := WriteUint8(w, uint8(m.DrawTag())); err != nil {
		return err
	}
	switch v := m.(type) {
	case LobbyDraw:
		if err := WriteString(w, v.ServerName); err != nil {
			return err
		}
		if err := WriteUint8(w, v.PlayersCount); err != nil {
			return err
		}
		if err := WriteUint16(w, v.SizeX); err != nil {
			return err
		}
		if err := WriteUint16(w, v.SizeY); err != nil {
			return err
		}
		if err := WriteUint16(w, v.GameLength); err != nil {
			return err
		}
		if err := WriteUint16(w, v.ExplosionRadius); err != nil {
			return err
		}
		if err := WriteUint16(w, v.BombTimer); err != nil {
			return err
		}
		return WriteMap(w, v.Players, WriteUint8, WritePlayer)

	case GameDraw:
		if err := WriteString(w, v.ServerName); err != nil {
			return err
		}
		if err := WriteUint16(w, v.SizeX); err != nil {
			return err
		}
		if err := WriteUint16(w, v.SizeY); err != nil {
			return err
		}
		if err := WriteUint16(w, v.GameLength); err != nil {
			return err
		}
		if err := WriteUint16(w, v.Turn); err != nil {
			return err
		}
		if err := WriteMap(w, v.Players, WriteUint8, WritePlayer); err != nil {
			return err
		}
		if err := WriteMap(w, v.PlayerPositions, WriteUint8, WritePosition); err != nil {
			return err
		}
		if err := WritePositionSet(w, v.Blocks); err != nil {
			return err
		}
		if err := WriteMap(w, v.Bombs, WriteUint32, writeBomb); err != nil {
			return err
		}
		if err := WritePositionSet(w, v.Explosions); err != nil {
			return err
		}
		return WriteMap(w, v.Scores, WriteUint8, WriteUint32)
	}
	return fmt.Errorf("protocol: unencodable draw message %T", m)
}

// DecodeDrawMessage reads one DrawMessage from r.
func DecodeDrawMessage(r io.Reader) (DrawMessage, error) {
	tag, err := ReadUint8(r)
	if err != nil {
		return nil, err
	}
	switch DrawTag(tag) {
	case DrawTagLobby:
		name, err := ReadString(r)
		if err != nil {
			return nil, err
		}
		count, err := ReadUint8(r)
		if err != nil {
			return nil, err
		}
		sx, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		sy, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		length, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		radius, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		timer, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		players, err := ReadMap(r, ReadUint8, ReadPlayer)
		if err != nil {
			return nil, err
		}
		return LobbyDraw{
			ServerName: name, PlayersCount: count, SizeX: sx, SizeY: sy,
			GameLength: length, ExplosionRadius: radius, BombTimer: timer,
			Players: players,
		}, nil

	case DrawTagGame:
		name, err := ReadString(r)
		if err != nil {
			return nil, err
		}
		sx, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		sy, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		length, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		turn, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		players, err := ReadMap(r, ReadUint8, ReadPlayer)
		if err != nil {
			return nil, err
		}
		positions, err := ReadMap(r, ReadUint8, ReadPosition)
		if err != nil {
			return nil, err
		}
		blocks, err := ReadPositionSet(r)
		if err != nil {
			return nil, err
		}
		bombs, err := ReadMap(r, ReadUint32, readBomb)
		if err != nil {
			return nil, err
		}
		explosions, err := ReadPositionSet(r)
		if err != nil {
			return nil, err
		}
		scores, err := ReadMap(r, ReadUint8, ReadUint32)
		if err != nil {
			return nil, err
		}
		return GameDraw{
			ServerName: name, SizeX: sx, SizeY: sy, GameLength: length, Turn: turn,
			Players: players, PlayerPositions: positions, Blocks: blocks,
			Bombs: bombs, Explosions: explosions, Scores: scores,
		}, nil

	default:
		return nil, fmt.Errorf("protocol: unknown draw tag %d", tag)
	}
}

// ParseDrawDatagram decodes a whole UDP datagram as a DrawMessage.
func ParseDrawDatagram(data []byte) (DrawMessage, error) {
	r := newBoundedReader(data)
	m, err := DecodeDrawMessage(r)
	if err != nil {
		return nil, err
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("protocol: %d trailing bytes in draw datagram", r.remaining())
	}
	return m, nil
}
