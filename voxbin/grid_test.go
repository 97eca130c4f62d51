package voxbin

import (
	"errors"
	"image/color"
	"testing"
)

func TestNewGridDimensionBounds(t *testing.T) {
	cases := []struct {
		w, h, d int
		ok      bool
	}{
		{1, 1, 1, true},
		{255, 1, 1, true},
		{1, 255, 255, true},
		{0, 1, 1, false},
		{1, 0, 1, false},
		{1, 1, 256, false},
		{256, 1, 1, false},
		{-3, 2, 2, false},
	}
	for _, c := range cases {
		g, err := NewGrid(c.w, c.h, c.d)
		if c.ok {
			if err != nil {
				t.Fatalf("NewGrid(%d,%d,%d): unexpected error %v", c.w, c.h, c.d, err)
			}
			if got := len(g.Bytes()); got != c.w*c.h*c.d*Channels {
				t.Fatalf("NewGrid(%d,%d,%d): %d bytes of storage", c.w, c.h, c.d, got)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidDimension) {
			t.Fatalf("NewGrid(%d,%d,%d): want ErrInvalidDimension, got %v", c.w, c.h, c.d, err)
		}
	}
}

func TestNewGridIsZeroed(t *testing.T) {
	g, err := NewGrid(3, 4, 5)
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range g.Bytes() {
		if b != 0 {
			t.Fatalf("byte %d = %d, want 0", i, b)
		}
	}
	if g.Filled() != 0 {
		t.Fatalf("Filled = %d, want 0", g.Filled())
	}
}

func TestGridSetAt(t *testing.T) {
	g, _ := NewGrid(2, 3, 4)
	c := color.RGBA{R: 1, G: 2, B: 3, A: 4}
	if err := g.Set(1, 2, 3, c); err != nil {
		t.Fatal(err)
	}
	if got := g.At(1, 2, 3); got != c {
		t.Fatalf("At = %v, want %v", got, c)
	}
	// last voxel in body order
	if got := g.Bytes()[len(g.Bytes())-4:]; got[0] != 1 || got[3] != 4 {
		t.Fatalf("tail bytes = %v", got)
	}
	if err := g.Set(2, 0, 0, c); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("Set outside grid: want ErrOutOfBounds, got %v", err)
	}
	if got := g.At(-1, 0, 0); got != (color.RGBA{}) {
		t.Fatalf("At outside grid = %v, want empty", got)
	}
}

func TestSetChannelsBoundaries(t *testing.T) {
	g, _ := NewGrid(1, 1, 1)
	if err := g.SetChannels(0, 0, 0, [4]int{255, 0, 255, 255}); err != nil {
		t.Fatalf("255 must be accepted: %v", err)
	}
	for _, bad := range [][4]int{{256, 0, 0, 0}, {0, -1, 0, 0}, {0, 0, 0, 1000}} {
		before := append([]byte(nil), g.Bytes()...)
		err := g.SetChannels(0, 0, 0, bad)
		if !errors.Is(err, ErrEncoding) {
			t.Fatalf("SetChannels(%v): want ErrEncoding, got %v", bad, err)
		}
		if string(before) != string(g.Bytes()) {
			t.Fatalf("SetChannels(%v) modified the grid", bad)
		}
	}
}

func TestGridValidateMismatch(t *testing.T) {
	g := &Grid{w: 2, h: 2, d: 2, data: make([]uint8, 7)}
	if err := g.Validate(); !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("want ErrInvalidDimension, got %v", err)
	}
	var nilGrid *Grid
	if err := nilGrid.Validate(); !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("nil grid: want ErrInvalidDimension, got %v", err)
	}
}

func TestGridFillOrder(t *testing.T) {
	g, _ := NewGrid(2, 2, 2)
	n := uint8(0)
	g.Fill(func(x, y, z int) color.RGBA {
		n++
		return color.RGBA{R: n, A: 255}
	})
	// z is fastest, x slowest
	if g.At(0, 0, 1).R != 2 || g.At(0, 1, 0).R != 3 || g.At(1, 0, 0).R != 5 {
		t.Fatalf("unexpected fill order: %v", g.Bytes())
	}
	if g.Filled() != 8 {
		t.Fatalf("Filled = %d, want 8", g.Filled())
	}
}
