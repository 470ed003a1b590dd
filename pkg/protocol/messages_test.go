package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputMessageRoundTrip(t *testing.T) {
	inputs := []InputMessage{
		PlaceBombInput{},
		PlaceBlockInput{},
		MoveInput{Direction: DirLeft},
	}
	for _, in := range inputs {
		var buf bytes.Buffer
		require.NoError(t, EncodeInputMessage(&buf, in))
		got, err := ParseInputDatagram(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, in, got)
	}
}

func TestParseInputDatagramRejectsTrailingBytes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeInputMessage(&buf, PlaceBombInput{}))
	buf.WriteByte(0x00) // extraneous trailing byte

	_, err := ParseInputDatagram(buf.Bytes())
	assert.Error(t, err)
}

func TestParseInputDatagramRejectsTruncated(t *testing.T) {
	// Move needs a direction byte that isn't present.
	_, err := ParseInputDatagram([]byte{uint8(InputTagMove)})
	assert.Error(t, err)
}

func TestParseInputDatagramRejectsInvalidDirection(t *testing.T) {
	_, err := ParseInputDatagram([]byte{uint8(InputTagMove), 0xFF})
	assert.Error(t, err)
}

func TestParseInputDatagramRejectsUnknownTag(t *testing.T) {
	_, err := ParseInputDatagram([]byte{0xFF})
	assert.Error(t, err)
}

func TestClientMessageRoundTrip(t *testing.T) {
	msgs := []ClientMessage{
		JoinClient{Name: "grondhammer"},
		PlaceBombClient{},
		PlaceBlockClient{},
		MoveClient{Direction: DirUp},
	}
	for _, m := range msgs {
		var buf bytes.Buffer
		require.NoError(t, EncodeClientMessage(&buf, m))
		got, err := DecodeClientMessage(&buf)
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func TestServerMessageRoundTrip(t *testing.T) {
	msgs := []ServerMessage{
		HelloServer{
			ServerName: "arena-1", PlayersCount: 4,
			SizeX: 15, SizeY: 15, GameLength: 300,
			ExplosionRadius: 2, BombTimer: 3,
		},
		AcceptedPlayerServer{ID: 2, Player: Player{Name: "p2", Address: "127.0.0.1:9001"}},
		GameStartedServer{Players: map[uint8]Player{
			0: {Name: "p0", Address: "a"},
			1: {Name: "p1", Address: "b"},
		}},
		TurnServer{Turn: 12, Events: []Event{
			PlayerMovedEvent{PlayerID: 0, Position: Position{X: 1, Y: 1}},
		}},
		GameEndedServer{Scores: map[uint8]uint32{0: 3, 1: 1}},
	}
	for _, m := range msgs {
		var buf bytes.Buffer
		require.NoError(t, EncodeServerMessage(&buf, m))
		got, err := DecodeServerMessage(&buf)
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func TestDrawMessageRoundTrip(t *testing.T) {
	msgs := []DrawMessage{
		LobbyDraw{
			ServerName: "arena-1", PlayersCount: 4,
			SizeX: 15, SizeY: 15, GameLength: 300,
			ExplosionRadius: 2, BombTimer: 3,
			Players: map[uint8]Player{0: {Name: "p0", Address: "a"}},
		},
		GameDraw{
			ServerName: "arena-1", SizeX: 15, SizeY: 15, GameLength: 300, Turn: 7,
			Players:         map[uint8]Player{0: {Name: "p0", Address: "a"}},
			PlayerPositions: map[uint8]Position{0: {X: 1, Y: 1}},
			Blocks:          []Position{{X: 0, Y: 0}, {X: 2, Y: 2}},
			Bombs:           map[uint32]Bomb{1: {Position: Position{X: 3, Y: 3}, Timer: 2}},
			Explosions:      []Position{{X: 3, Y: 3}},
			Scores:          map[uint8]uint32{0: 1},
		},
	}
	for _, m := range msgs {
		var buf bytes.Buffer
		require.NoError(t, EncodeDrawMessage(&buf, m))
		got, err := ParseDrawDatagram(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func TestParseDrawDatagramRejectsTrailingBytes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeDrawMessage(&buf, LobbyDraw{ServerName: "x"}))
	buf.WriteByte(0xAA)

	_, err := ParseDrawDatagram(buf.Bytes())
	assert.Error(t, err)
}

func TestDecodeClientMessageUnknownTagIsFatal(t *testing.T) {
	_, err := DecodeClientMessage(bytes.NewReader([]byte{0xFF}))
	assert.Error(t, err)
}

func TestDecodeServerMessageTruncatedIsTruncated(t *testing.T) {
	_, err := DecodeServerMessage(bytes.NewReader([]byte{uint8(ServerTagHello)}))
	assert.ErrorIs(t, err, ErrTruncated)
}
