package vm

import (
	"encoding/binary"
	"fmt"
	"io"
)

// LoadImage reads a raw LC-3 image from r and writes it into the machine's
// memory. The first big-endian 16-bit word is the origin address; every
// subsequent big-endian word is placed at consecutive addresses starting
// there. Byte order conversion happens regardless of host endianness, and
// the read is clamped so it cannot imply a write past address 0xFFFF.
func (m *Machine) LoadImage(r io.Reader) error {
	var originBuf [2]byte
	if _, err := io.ReadFull(r, originBuf[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return fmt.Errorf("lc3: image too short to contain an origin word")
		}
		return fmt.Errorf("lc3: reading origin: %w", err)
	}
	origin := binary.BigEndian.Uint16(originBuf[:])

	maxWords := int(MemorySize) - int(origin)

	words := make([]uint16, 0, 256)
	var wordBuf [2]byte
	for len(words) < maxWords {
		n, err := io.ReadFull(r, wordBuf[:])
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			return fmt.Errorf("lc3: image truncated mid-word")
		}
		if err != nil {
			return fmt.Errorf("lc3: reading image: %w", err)
		}
		if n != 2 {
			break
		}
		words = append(words, binary.BigEndian.Uint16(wordBuf[:]))
	}

	m.loadWords(origin, words)
	return nil
}
