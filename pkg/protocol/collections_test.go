package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMapIsKeyAscendingOnWire(t *testing.T) {
	m := map[uint8]uint32{5: 50, 1: 10, 3: 30}

	var buf bytes.Buffer
	require.NoError(t, WriteMap(&buf, m, WriteUint8, WriteUint32))

	// Re-encoding a map built with a different insertion order must
	// produce byte-identical output, since map iteration order is random.
	m2 := map[uint8]uint32{3: 30, 1: 10, 5: 50}
	var buf2 bytes.Buffer
	require.NoError(t, WriteMap(&buf2, m2, WriteUint8, WriteUint32))
	assert.Equal(t, buf.Bytes(), buf2.Bytes())

	got, err := ReadMap(bytes.NewReader(buf.Bytes()), ReadUint8, ReadUint32)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestPositionSetIsSortedOnWire(t *testing.T) {
	positions := []Position{{X: 2, Y: 9}, {X: 1, Y: 5}, {X: 1, Y: 1}}

	var buf bytes.Buffer
	require.NoError(t, WritePositionSet(&buf, positions))

	got, err := ReadPositionSet(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []Position{{X: 1, Y: 1}, {X: 1, Y: 5}, {X: 2, Y: 9}}, got)
}

func TestU8ListPreservesOrder(t *testing.T) {
	values := []uint8{9, 3, 3, 1}

	var buf bytes.Buffer
	require.NoError(t, WriteU8List(&buf, values))

	got, err := ReadU8List(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, values, got)
}
