package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// maxFrameBytes bounds a single frame's declared length, guarding
// against a corrupt or hostile length prefix causing an unbounded
// allocation.
const maxFrameBytes = 1 << 20

// WriteEvent encodes ev as JSON and writes it to w as a single
// length-prefixed (little-endian uint32) frame.
func WriteEvent(w io.Writer, ev SessionEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode session event: %w", err)
	}

	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(body)))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}

	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write frame body: %w", err)
	}

	return nil
}

// ReadEvent reads one length-prefixed frame from r and decodes it.
func ReadEvent(r io.Reader) (SessionEvent, error) {
	var header [4]byte

	if _, err := io.ReadFull(r, header[:]); err != nil {
		return SessionEvent{}, fmt.Errorf("read frame header: %w", err)
	}

	length := binary.LittleEndian.Uint32(header[:])
	if length > maxFrameBytes {
		return SessionEvent{}, fmt.Errorf("frame too large: %d bytes", length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return SessionEvent{}, fmt.Errorf("read frame body: %w", err)
	}

	var ev SessionEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return SessionEvent{}, fmt.Errorf("decode session event: %w", err)
	}

	return ev, nil
}
