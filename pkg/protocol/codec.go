// Package protocol implements the wire codec and message envelopes shared
// by the bomberwire server and client proxy: big-endian fixed-width
// integers, length-prefixed strings, and length-prefixed lists, tag-first
// and self-delimiting so a TCP reader never needs an outer frame length.
package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// ErrTruncated is returned when fewer bytes remain than a value requires.
// Over UDP the datagram is simply dropped; over TCP, io.ReadFull already
// blocks for more bytes on a live socket, so ErrTruncated there only
// surfaces once the peer has actually gone away mid-message.
var ErrTruncated = errors.New("protocol: truncated message")

// ErrOversized is returned when a length prefix exceeds what the type
// allows (currently only strings, capped at 255 bytes by their u8 prefix).
var ErrOversized = errors.New("protocol: value too large to encode")

// MaxStringLen is the largest string encodable, bounded by its uint8
// length prefix.
const MaxStringLen = 255

func wrapTruncated(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}

// ReadUint8 reads a single unsigned byte.
func ReadUint8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapTruncated(err)
	}
	return buf[0], nil
}

// WriteUint8 writes a single unsigned byte.
func WriteUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

// ReadUint16 reads a big-endian unsigned 16-bit integer.
func ReadUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapTruncated(err)
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// WriteUint16 writes a big-endian unsigned 16-bit integer.
func WriteUint16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint32 reads a big-endian unsigned 32-bit integer.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapTruncated(err)
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// WriteUint32 writes a big-endian unsigned 32-bit integer.
func WriteUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint64 reads a big-endian unsigned 64-bit integer.
func ReadUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapTruncated(err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// WriteUint64 writes a big-endian unsigned 64-bit integer.
func WriteUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadString reads a u8-length-prefixed byte string.
func ReadString(r io.Reader) (string, error) {
	n, err := ReadUint8(r)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", wrapTruncated(err)
	}
	return string(buf), nil
}

// WriteString writes a u8-length-prefixed byte string. Strings longer than
// MaxStringLen cannot be represented and return ErrOversized.
func WriteString(w io.Writer, s string) error {
	if len(s) > MaxStringLen {
		return ErrOversized
	}
	if err := WriteUint8(w, uint8(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

// ReadListLen reads the u32 element count that precedes every list.
func ReadListLen(r io.Reader) (uint32, error) {
	return ReadUint32(r)
}

// WriteListLen writes the u32 element count that precedes every list.
func WriteListLen(w io.Writer, n int) error {
	return WriteUint32(w, uint32(n))
}

// boundedReader wraps a single UDP datagram so a decoder can check for
// trailing bytes after pulling out one message.
type boundedReader struct {
	*bytes.Reader
}

func newBoundedReader(data []byte) *boundedReader {
	return &boundedReader{bytes.NewReader(data)}
}

func (b *boundedReader) remaining() int {
	return b.Len()
}
