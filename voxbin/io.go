package voxbin

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	xxhash "github.com/cespare/xxhash/v2"
)

// Encode writes header and body for g to w. Every value is validated before
// the first byte is written.
func Encode(w io.Writer, sp Spacing, g *Grid) error {
	hdr, err := NewHeader(sp, g)
	if err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}
	// Grid storage already is x-major / z-fastest RGBA, the body layout.
	_, err = w.Write(g.data)
	return err
}

// EncodeToBytes returns a complete save file as bytes instead of writing to disk.
func EncodeToBytes(sp Spacing, g *Grid) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(HeaderSize + len(g.Bytes()))
	if err := Encode(&buf, sp, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads one save from r. The stream must end right after the body.
func Decode(r io.Reader) (*Grid, Spacing, error) {
	var raw [HeaderSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, Spacing{}, truncated("header", err)
	}
	hdr, err := ParseHeader(raw[:])
	if err != nil {
		return nil, Spacing{}, err
	}
	g, err := NewGrid(int(hdr.W), int(hdr.H), int(hdr.D))
	if err != nil {
		return nil, Spacing{}, err
	}
	if _, err := io.ReadFull(r, g.data); err != nil {
		return nil, Spacing{}, truncated("body", err)
	}
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n > 0 {
		return nil, Spacing{}, ErrTrailingData
	}
	return g, hdr.Spacing(), nil
}

func truncated(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s", ErrTruncated, what)
	}
	return err
}

// DecodeBytes parses a save file held in memory.
func DecodeBytes(data []byte) (*Grid, Spacing, error) {
	return Decode(bytes.NewReader(data))
}

// LoadFile reads and decodes a save file from disk.
func LoadFile(path string) (*Grid, Spacing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Spacing{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	g, sp, err := DecodeBytes(data)
	if err != nil {
		return nil, Spacing{}, fmt.Errorf("%s: %w", path, err)
	}
	return g, sp, nil
}

// Summary describes a save file without holding on to its voxels.
type Summary struct {
	Header Header
	Filled int
	Size   int
	Digest uint64
}

// Summarize decodes data and reports its header, fill count and xxhash64 digest.
func Summarize(data []byte) (Summary, error) {
	g, _, err := DecodeBytes(data)
	if err != nil {
		return Summary{}, err
	}
	hdr, _ := ParseHeader(data)
	return Summary{Header: hdr, Filled: g.Filled(), Size: len(data), Digest: xxhash.Sum64(data)}, nil
}
