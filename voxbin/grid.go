package voxbin

import (
	"bytes"
	"fmt"
	"image/color"
)

const (
	// MaxDim is the largest extent a grid axis can have; dims are stored as single bytes.
	MaxDim = 255
	// Channels is the number of bytes per voxel (r, g, b, a).
	Channels = 4
)

// Grid is a dense W×H×D grid of RGBA voxels.
// Storage is x-major with z fastest, which is also the on-disk body order,
// so voxel (x,y,z) lives at ((x*H+y)*D+z)*4.
type Grid struct {
	w, h, d int
	data    []uint8
}

// NewGrid returns a zeroed (fully transparent) grid.
func NewGrid(w, h, d int) (*Grid, error) {
	if err := checkDims(w, h, d); err != nil {
		return nil, err
	}
	return &Grid{w: w, h: h, d: d, data: make([]uint8, w*h*d*Channels)}, nil
}

func checkDims(w, h, d int) error {
	for i, v := range [3]int{w, h, d} {
		if v <= 0 || v > MaxDim {
			return fmt.Errorf("%w: %s=%d (want 1..%d)", ErrInvalidDimension, "WHD"[i:i+1], v, MaxDim)
		}
	}
	return nil
}

// Dims returns the grid extents.
func (g *Grid) Dims() (w, h, d int) { return g.w, g.h, g.d }

// Len is the number of voxels.
func (g *Grid) Len() int { return g.w * g.h * g.d }

// Bytes exposes the raw RGBA body. Callers must not retain it across mutations.
func (g *Grid) Bytes() []uint8 { return g.data }

// Validate checks that the declared dims match the backing storage.
func (g *Grid) Validate() error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", ErrInvalidDimension)
	}
	if err := checkDims(g.w, g.h, g.d); err != nil {
		return err
	}
	if want := g.w * g.h * g.d * Channels; len(g.data) != want {
		return fmt.Errorf("%w: %dx%dx%d grid backed by %d bytes, want %d",
			ErrInvalidDimension, g.w, g.h, g.d, len(g.data), want)
	}
	return nil
}

func (g *Grid) offset(x, y, z int) (int, error) {
	if x < 0 || x >= g.w || y < 0 || y >= g.h || z < 0 || z >= g.d {
		return 0, fmt.Errorf("%w: (%d,%d,%d) in %dx%dx%d", ErrOutOfBounds, x, y, z, g.w, g.h, g.d)
	}
	return ((x*g.h+y)*g.d + z) * Channels, nil
}

// At returns the voxel at (x,y,z). Out-of-grid coordinates read as empty.
func (g *Grid) At(x, y, z int) color.RGBA {
	o, err := g.offset(x, y, z)
	if err != nil {
		return color.RGBA{}
	}
	return color.RGBA{R: g.data[o], G: g.data[o+1], B: g.data[o+2], A: g.data[o+3]}
}

// Set stores c at (x,y,z).
func (g *Grid) Set(x, y, z int, c color.RGBA) error {
	o, err := g.offset(x, y, z)
	if err != nil {
		return err
	}
	g.data[o], g.data[o+1], g.data[o+2], g.data[o+3] = c.R, c.G, c.B, c.A
	return nil
}

// SetChannels stores integer channel values, rejecting any outside [0,255]
// before the grid is touched.
func (g *Grid) SetChannels(x, y, z int, ch [Channels]int) error {
	for i, v := range ch {
		if v < 0 || v > 255 {
			return fmt.Errorf("%w: channel %c=%d at (%d,%d,%d)", ErrEncoding, "rgba"[i], v, x, y, z)
		}
	}
	return g.Set(x, y, z, color.RGBA{R: uint8(ch[0]), G: uint8(ch[1]), B: uint8(ch[2]), A: uint8(ch[3])})
}

// Fill sets every voxel from f, in body order.
func (g *Grid) Fill(f func(x, y, z int) color.RGBA) {
	o := 0
	for x := 0; x < g.w; x++ {
		for y := 0; y < g.h; y++ {
			for z := 0; z < g.d; z++ {
				c := f(x, y, z)
				g.data[o], g.data[o+1], g.data[o+2], g.data[o+3] = c.R, c.G, c.B, c.A
				o += Channels
			}
		}
	}
}

// Filled counts voxels with a non-zero alpha.
func (g *Grid) Filled() int {
	n := 0
	for o := Channels - 1; o < len(g.data); o += Channels {
		if g.data[o] != 0 {
			n++
		}
	}
	return n
}

// Equal reports whether both grids have the same dims and voxels.
func (g *Grid) Equal(o *Grid) bool {
	return g.w == o.w && g.h == o.h && g.d == o.d && bytes.Equal(g.data, o.data)
}
