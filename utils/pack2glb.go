package utils

import (
	"fmt"
	"math"

	"github.com/qmuntal/gltf"

	"github.com/voxelsplace/voxbin/voxbin"
)

// RunPACK2GLB converts a pack into a .glb with one node per save, laid out
// side by side on the x/z plane so entries do not overlap.
func RunPACK2GLB(inPackPath, outGlbPath string) error {
	pack, err := LoadPack(inPackPath)
	if err != nil {
		return err
	}
	doc, err := BuildPackGLB(pack)
	if err != nil {
		return err
	}
	return gltf.SaveBinary(doc, outGlbPath)
}

// BuildPackGLB meshes every entry of pack into one document.
func BuildPackGLB(pack *voxbin.Pack) (*gltf.Document, error) {
	n := len(pack.Entries)
	if n == 0 {
		return nil, fmt.Errorf("empty pack")
	}
	doc := gltf.NewDocument()
	doc.Asset.Generator = "voxbin pack -> GLB"
	doc.Materials = []*gltf.Material{newMaterial(true)}

	cols := int(math.Ceil(math.Sqrt(float64(n))))
	// cell size is the largest scaled extent so differently sized saves still line up
	var stepX, stepZ float64
	type decoded struct {
		grid *voxbin.Grid
		sp   voxbin.Spacing
	}
	grids := make([]decoded, n)
	for i, e := range pack.Entries {
		g, sp, err := voxbin.DecodeBytes(e.Data)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, e.Name, err)
		}
		grids[i] = decoded{g, sp}
		w, _, d := g.Dims()
		s := sp.Scale()
		stepX = max(stepX, float64(w)*float64(s[0]))
		stepZ = max(stepZ, float64(d)*float64(s[2]))
	}

	for i, e := range pack.Entries {
		idx := addGridMesh(doc, e.Name, grids[i].grid, grids[i].sp, 0)
		doc.Nodes[idx].Translation = [3]float64{float64(i%cols) * stepX, 0, float64(i/cols) * stepZ}
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, idx)
	}
	return doc, nil
}
