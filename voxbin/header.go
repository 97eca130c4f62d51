package voxbin

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed length of a save header.
const HeaderSize = 6

// Spacing is the physical distance between adjacent voxels along each axis,
// in units chosen by the consumer. Each component must fit in a byte.
type Spacing struct {
	X, Y, Z int
}

// Validate rejects components outside [0,255].
func (s Spacing) Validate() error {
	for i, v := range [3]int{s.X, s.Y, s.Z} {
		if v < 0 || v > 255 {
			return fmt.Errorf("%w: spacing.%c=%d", ErrEncoding, "xyz"[i], v)
		}
	}
	return nil
}

// ParseSpacing builds a Spacing from a three-component list and validates it.
func ParseSpacing(v []int) (Spacing, error) {
	if len(v) != 3 {
		return Spacing{}, fmt.Errorf("%w: spacing needs 3 components, got %d", ErrEncoding, len(v))
	}
	sp := Spacing{X: v[0], Y: v[1], Z: v[2]}
	if err := sp.Validate(); err != nil {
		return Spacing{}, err
	}
	return sp, nil
}

func (s Spacing) String() string { return fmt.Sprintf("%d,%d,%d", s.X, s.Y, s.Z) }

// Header is the 6-byte prefix of a save file. Field order is the on-disk order.
// There is no magic or version; the layout is positional.
type Header struct {
	SX, SY, SZ uint8
	W, H, D    uint8
}

// NewHeader validates spacing and grid and returns the header describing them.
func NewHeader(sp Spacing, g *Grid) (Header, error) {
	if err := sp.Validate(); err != nil {
		return Header{}, err
	}
	if err := g.Validate(); err != nil {
		return Header{}, err
	}
	return Header{
		SX: uint8(sp.X), SY: uint8(sp.Y), SZ: uint8(sp.Z),
		W: uint8(g.w), H: uint8(g.h), D: uint8(g.d),
	}, nil
}

// ParseHeader decodes the header at the start of b.
func ParseHeader(b []byte) (Header, error) {
	var h Header
	if len(b) < HeaderSize {
		return h, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, HeaderSize, len(b))
	}
	if err := binary.Read(bytes.NewReader(b[:HeaderSize]), binary.LittleEndian, &h); err != nil {
		return h, err
	}
	if err := checkDims(int(h.W), int(h.H), int(h.D)); err != nil {
		return h, err
	}
	return h, nil
}

// Spacing returns the header spacing.
func (h Header) Spacing() Spacing { return Spacing{X: int(h.SX), Y: int(h.SY), Z: int(h.SZ)} }

// BodyLen is the number of voxel bytes that must follow the header.
func (h Header) BodyLen() int { return int(h.W) * int(h.H) * int(h.D) * Channels }

// FileSize is HeaderSize + BodyLen.
func (h Header) FileSize() int { return HeaderSize + h.BodyLen() }
