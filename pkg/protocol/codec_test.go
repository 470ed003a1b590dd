package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUintRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteUint8(&buf, 0xAB))
	require.NoError(t, WriteUint16(&buf, 0x1234))
	require.NoError(t, WriteUint32(&buf, 0xDEADBEEF))
	require.NoError(t, WriteUint64(&buf, 0x0102030405060708))

	u8, err := ReadUint8(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), u8)

	u16, err := ReadUint16(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)

	u32, err := ReadUint32(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)

	u64, err := ReadUint64(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), u64)
}

func TestUint16IsBigEndianOnWire(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteUint16(&buf, 0x0102))
	assert.Equal(t, []byte{0x01, 0x02}, buf.Bytes())
}

func TestStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteString(&buf, "grondhammer"))
	s, err := ReadString(&buf)
	require.NoError(t, err)
	assert.Equal(t, "grondhammer", s)
}

func TestEmptyStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteString(&buf, ""))
	s, err := ReadString(&buf)
	require.NoError(t, err)
	assert.Equal(t, "", s)
}

func TestWriteStringOversized(t *testing.T) {
	var buf bytes.Buffer
	err := WriteString(&buf, string(make([]byte, MaxStringLen+1)))
	assert.ErrorIs(t, err, ErrOversized)
}

func TestReadUint32TruncatedPrefix(t *testing.T) {
	// Only 2 of the 4 required bytes are present.
	r := bytes.NewReader([]byte{0x01, 0x02})
	_, err := ReadUint32(r)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestReadStringTruncatedBody(t *testing.T) {
	// Length prefix claims 5 bytes but only 2 follow.
	r := bytes.NewReader([]byte{5, 'h', 'i'})
	_, err := ReadString(r)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestReadUint8OnEmptyReaderIsTruncated(t *testing.T) {
	r := bytes.NewReader(nil)
	_, err := ReadUint8(r)
	assert.ErrorIs(t, err, ErrTruncated)
}
