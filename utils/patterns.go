package utils

import (
	"fmt"
	"image/color"
	"math/rand"
	"sort"

	"github.com/voxelsplace/voxbin/voxbin"
)

// PatternOptions tunes the generators that take parameters.
type PatternOptions struct {
	Percentage float64 // noise fill, 0..100
	Seed       int64
}

type patternFunc func(g *voxbin.Grid, opts PatternOptions)

var patterns = map[string]patternFunc{
	"checker": fillChecker,
	"bottle":  fillBottle,
	"noise":   fillNoise,
}

// Patterns lists the generator names accepted by GeneratePattern.
func Patterns() []string {
	names := make([]string, 0, len(patterns))
	for n := range patterns {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GeneratePattern returns a new w×h×d grid filled by the named generator.
func GeneratePattern(name string, w, h, d int, opts PatternOptions) (*voxbin.Grid, error) {
	fill, ok := patterns[name]
	if !ok {
		return nil, fmt.Errorf("unknown pattern %q (want one of %v)", name, Patterns())
	}
	g, err := voxbin.NewGrid(w, h, d)
	if err != nil {
		return nil, err
	}
	fill(g, opts)
	return g, nil
}

// fillChecker fills every voxel whose coordinate sum is even, coloured by its
// normalised position: red along x, green along y, blue along z.
func fillChecker(g *voxbin.Grid, _ PatternOptions) {
	w, h, d := g.Dims()
	g.Fill(func(x, y, z int) color.RGBA {
		if (x+y+z)%2 != 0 {
			return color.RGBA{}
		}
		return color.RGBA{
			R: uint8(float64(x) / float64(w) * 255),
			G: uint8(float64(y) / float64(h) * 255),
			B: uint8(float64(z) / float64(d) * 255),
			A: 255,
		}
	})
}

// fillBottle draws a blue shell on every border face, leaving a disc open in the top (max y) face.
func fillBottle(g *voxbin.Grid, _ PatternOptions) {
	w, h, d := g.Dims()
	r := min(w, d) / 3
	blue := color.RGBA{B: 255, A: 255}
	g.Fill(func(x, y, z int) color.RGBA {
		border := x == 0 || y == 0 || z == 0 || x == w-1 || y == h-1 || z == d-1
		if !border {
			return color.RGBA{}
		}
		dx, dz := x-w/2, z-d/2
		if y == h-1 && dx*dx+dz*dz < r*r {
			return color.RGBA{}
		}
		return blue
	})
}

// fillNoise fills the given percentage of voxels with random opaque colours.
// Remaining voxels stay empty.
func fillNoise(g *voxbin.Grid, opts PatternOptions) {
	r := rand.New(rand.NewSource(opts.Seed))
	percentage := max(0, min(100, opts.Percentage))
	total := g.Len()
	want := min(total, int(float64(total)*(percentage/100.0)+0.5))

	// Fisher-Yates shuffle only first 'want' items
	idx := make([]int, total)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < want; i++ {
		j := i + r.Intn(total-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	_, h, d := g.Dims()
	for _, i := range idx[:want] {
		x := i / (h * d)
		y := (i / d) % h
		z := i % d
		c := color.RGBA{R: uint8(r.Intn(256)), G: uint8(r.Intn(256)), B: uint8(r.Intn(256)), A: 255}
		_ = g.Set(x, y, z, c)
	}
}
