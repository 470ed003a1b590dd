package protocol

import (
	"cmp"
	"io"
	"sort"
)

// WriteMap writes m as a list of (key, value) pairs in key-ascending order,
// per the wire format's determinism requirement for maps.
func WriteMap[K cmp.Ordered, V any](w io.Writer, m map[K]V, writeKey func(io.Writer, K) error, writeVal func(io.Writer, V) error) error {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	if err := WriteListLen(w, len(keys)); err != nil {
		return err
	}
	for _, k := range keys {
		if err := writeKey(w, k); err != nil {
			return err
		}
		if err := writeVal(w, m[k]); err != nil {
			return err
		}
	}
	return nil
}

// ReadMap reads a list of (key, value) pairs written by WriteMap.
func ReadMap[K comparable, V any](r io.Reader, readKey func(io.Reader) (K, error), readVal func(io.Reader) (V, error)) (map[K]V, error) {
	n, err := ReadListLen(r)
	if err != nil {
		return nil, err
	}
	m := make(map[K]V, n)
	for i := uint32(0); i < n; i++ {
		k, err := readKey(r)
		if err != nil {
			return nil, err
		}
		v, err := readVal(r)
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}

// WritePositionSet writes a set of positions as a list sorted by (X, Y),
// giving the same deterministic wire output guarantee maps get.
func WritePositionSet(w io.Writer, positions []Position) error {
	sorted := append([]Position(nil), positions...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})
	if err := WriteListLen(w, len(sorted)); err != nil {
		return err
	}
	for _, p := range sorted {
		if err := WritePosition(w, p); err != nil {
			return err
		}
	}
	return nil
}

// ReadPositionSet reads a list of positions written by WritePositionSet.
func ReadPositionSet(r io.Reader) ([]Position, error) {
	n, err := ReadListLen(r)
	if err != nil {
		return nil, err
	}
	out := make([]Position, 0, n)
	for i := uint32(0); i < n; i++ {
		p, err := ReadPosition(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// WriteU8List writes a list of uint8 values (e.g. player ids) in the order
// given — callers that need a deterministic order sort before calling.
func WriteU8List(w io.Writer, values []uint8) error {
	if err := WriteListLen(w, len(values)); err != nil {
		return err
	}
	for _, v := range values {
		if err := WriteUint8(w, v); err != nil {
			return err
		}
	}
	return nil
}

// ReadU8List reads a list of uint8 values written by WriteU8List.
func ReadU8List(r io.Reader) ([]uint8, error) {
	n, err := ReadListLen(r)
	if err != nil {
		return nil, err
	}
	out := make([]uint8, 0, n)
	for i := uint32(0); i < n; i++ {
		v, err := ReadUint8(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
