package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRoundTrip(t *testing.T) {
	events := []Event{
		BombPlacedEvent{BombID: 7, Position: Position{X: 3, Y: 4}},
		BombExplodedEvent{
			BombID:          7,
			RobotsDestroyed: []uint8{2, 0},
			BlocksDestroyed: []Position{{X: 2, Y: 4}, {X: 4, Y: 4}},
		},
		PlayerMovedEvent{PlayerID: 1, Position: Position{X: 5, Y: 5}},
		BlockPlacedEvent{Position: Position{X: 0, Y: 0}},
	}

	for _, e := range events {
		var buf bytes.Buffer
		require.NoError(t, WriteEvent(&buf, e))
		got, err := ReadEvent(&buf)
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}
}

func TestEventListRoundTrip(t *testing.T) {
	events := []Event{
		PlayerMovedEvent{PlayerID: 0, Position: Position{X: 1, Y: 1}},
		BombPlacedEvent{BombID: 1, Position: Position{X: 2, Y: 2}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEventList(&buf, events))
	got, err := ReadEventList(&buf)
	require.NoError(t, err)
	assert.Equal(t, events, got)
}

func TestEmptyEventListRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEventList(&buf, nil))
	got, err := ReadEventList(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadEventUnknownTag(t *testing.T) {
	r := bytes.NewReader([]byte{0xFF})
	_, err := ReadEvent(r)
	assert.Error(t, err)
}

func TestBombExplodedSortsDestroyedBlocks(t *testing.T) {
	e := BombExplodedEvent{
		BombID:          1,
		BlocksDestroyed: []Position{{X: 9, Y: 0}, {X: 0, Y: 0}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteEvent(&buf, e))

	got, err := ReadEvent(&buf)
	require.NoError(t, err)
	exploded := got.(BombExplodedEvent)
	assert.Equal(t, []Position{{X: 0, Y: 0}, {X: 9, Y: 0}}, exploded.BlocksDestroyed)
}
