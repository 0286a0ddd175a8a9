package snapshot

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Magic bytes identify snapshot files.
var magicBytes = []byte("XLASNAP1")

const (
	lenSize      = 4
	checksumSize = sha256.Size
)

var (
	ErrInvalidMagic     = errors.New("snapshot: invalid magic bytes")
	ErrChecksumMismatch = errors.New("snapshot: checksum mismatch")
	ErrTruncated        = errors.New("snapshot: truncated file")
)

// Read reads and decodes one snapshot file. Any failure means the file is
// not a valid snapshot; the caller decides whether to continue with other
// files.
func Read(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	if len(raw) < len(magicBytes)+lenSize+checksumSize {
		return nil, ErrTruncated
	}
	if !bytes.Equal(raw[:len(magicBytes)], magicBytes) {
		return nil, ErrInvalidMagic
	}

	body, trailer := raw[:len(raw)-checksumSize], raw[len(raw)-checksumSize:]
	sum := sha256.Sum256(body)
	if !bytes.Equal(sum[:], trailer) {
		return nil, ErrChecksumMismatch
	}

	payloadLen := binary.BigEndian.Uint32(body[len(magicBytes):])
	payload := body[len(magicBytes)+lenSize:]
	if uint32(len(payload)) != payloadLen {
		return nil, ErrTruncated
	}

	return Unmarshal(payload)
}

// Write encodes a snapshot and writes it atomically (temp file + rename).
// Used by the capture side and by tests building fixtures.
func Write(path string, s *Snapshot) error {
	payload := Marshal(s)

	body := make([]byte, 0, len(magicBytes)+lenSize+len(payload)+checksumSize)
	body = append(body, magicBytes...)
	body = binary.BigEndian.AppendUint32(body, uint32(len(payload)))
	body = append(body, payload...)
	sum := sha256.Sum256(body)
	body = append(body, sum[:]...)

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, body, 0644); err != nil {
		return fmt.Errorf("snapshot: write temp file: %w", err)
	}
	defer os.Remove(tempPath)

	if err := os.Rename(tempPath, filepath.Clean(path)); err != nil {
		return fmt.Errorf("snapshot: rename: %w", err)
	}
	return nil
}
