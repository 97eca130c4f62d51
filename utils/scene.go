package utils

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/voxelsplace/voxbin/voxbin"
)

// sceneJSON is {"dims":[W,H,D],"spacing":[sx,sy,sz],"voxels":[{"x":0,"y":0,"z":0,"rgba":[r,g,b,a]}]}.
// Values are plain ints so out-of-range input is reported instead of wrapped.
type sceneJSON struct {
	Dims    []int       `json:"dims"`
	Spacing []int       `json:"spacing"`
	Voxels  []voxelJSON `json:"voxels"`
}

type voxelJSON struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Z    int    `json:"z"`
	RGBA [4]int `json:"rgba"`
}

// Scene is a decoded scene document. HasSpacing reports whether the document set spacing.
type Scene struct {
	Grid       *voxbin.Grid
	Spacing    voxbin.Spacing
	HasSpacing bool
}

// ParseScene builds a grid from a JSON scene document.
func ParseScene(data []byte) (*Scene, error) {
	var doc sceneJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid scene JSON: %w", err)
	}
	if len(doc.Dims) != 3 {
		return nil, fmt.Errorf("%w: scene dims need 3 components, got %d", voxbin.ErrInvalidDimension, len(doc.Dims))
	}
	g, err := voxbin.NewGrid(doc.Dims[0], doc.Dims[1], doc.Dims[2])
	if err != nil {
		return nil, err
	}
	sc := &Scene{Grid: g}
	if doc.Spacing != nil {
		sp, err := voxbin.ParseSpacing(doc.Spacing)
		if err != nil {
			return nil, fmt.Errorf("scene spacing: %w", err)
		}
		sc.Spacing, sc.HasSpacing = sp, true
	}
	if err := applyVoxels(g, doc.Voxels); err != nil {
		return nil, err
	}
	return sc, nil
}

// applyVoxels writes each voxel edit in order; later edits win.
func applyVoxels(g *voxbin.Grid, voxels []voxelJSON) error {
	for i, v := range voxels {
		if err := g.SetChannels(v.X, v.Y, v.Z, v.RGBA); err != nil {
			return fmt.Errorf("voxel #%d: %w", i, err)
		}
	}
	return nil
}

// LoadScene reads a JSON scene document from disk.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := ParseScene(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}
