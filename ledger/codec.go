package ledger

import (
	"encoding/binary"
	"fmt"
)

// Cleartext payloads cross the oracle boundary as an ordered list of
// strings: uvarint item count, then uvarint length + bytes per item. The
// verifier expects exactly [label, payload]; the oracle must encode in
// the same order the handles were requested.

// EncodeCleartexts encodes an ordered list of strings into the oracle
// cleartext wire format.
func EncodeCleartexts(items ...string) []byte {
	var buf []byte
	buf = binary.AppendUvarint(buf, uint64(len(items)))
	for _, item := range items {
		buf = binary.AppendUvarint(buf, uint64(len(item)))
		buf = append(buf, item...)
	}
	return buf
}

// DecodeCleartexts decodes a [label, payload] pair from the oracle
// cleartext wire format. Any deviation from exactly two well-formed items
// fails with ErrDecode.
func DecodeCleartexts(data []byte) (label, payload string, err error) {
	count, n := binary.Uvarint(data)
	if n <= 0 {
		return "", "", fmt.Errorf("reading item count: %w", ErrDecode)
	}
	data = data[n:]
	if count != 2 {
		return "", "", fmt.Errorf("expected 2 cleartext items, got %d: %w", count, ErrDecode)
	}

	items := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		size, n := binary.Uvarint(data)
		if n <= 0 {
			return "", "", fmt.Errorf("reading item %d length: %w", i, ErrDecode)
		}
		data = data[n:]
		if uint64(len(data)) < size {
			return "", "", fmt.Errorf("item %d truncated: %w", i, ErrDecode)
		}
		items = append(items, string(data[:size]))
		data = data[size:]
	}

	if len(data) != 0 {
		return "", "", fmt.Errorf("%d trailing bytes after payload: %w", len(data), ErrDecode)
	}

	return items[0], items[1], nil
}
