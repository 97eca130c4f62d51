package utils

import (
	"math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/voxelsplace/voxbin/voxbin"
)

// meshBuffers turns a greedy mesh into glTF vertex streams.
func meshBuffers(mesh *voxbin.Mesh) (positions [][3]float32, normals [][3]float32, colors [][4]float32, indices []uint32) {
	positions = make([][3]float32, len(mesh.Vertices))
	colors = make([][4]float32, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		positions[i] = v.Position
		colors[i] = [4]float32{
			float32(v.Color.R) / 255,
			float32(v.Color.G) / 255,
			float32(v.Color.B) / 255,
			float32(v.Color.A) / 255,
		}
	}
	indices = append([]uint32(nil), mesh.Indices...)

	// flat normals per face
	normals = make([][3]float32, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		v0, v1, v2 := indices[i], indices[i+1], indices[i+2]
		p0, p1, p2 := positions[v0], positions[v1], positions[v2]
		vec1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		vec2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		cross := [3]float32{
			vec1[1]*vec2[2] - vec1[2]*vec2[1],
			vec1[2]*vec2[0] - vec1[0]*vec2[2],
			vec1[0]*vec2[1] - vec1[1]*vec2[0],
		}
		length := float32(math.Sqrt(float64(cross[0]*cross[0] + cross[1]*cross[1] + cross[2]*cross[2])))
		if length > 0 {
			cross[0] /= length
			cross[1] /= length
			cross[2] /= length
		}
		normals[v0] = cross
		normals[v1] = cross
		normals[v2] = cross
	}
	return positions, normals, colors, indices
}

func newMaterial(blend bool) *gltf.Material {
	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float64{1, 1, 1, 1},
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(1),
	}
	m := &gltf.Material{PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}
	if blend {
		m.AlphaMode = gltf.AlphaBlend
	}
	return m
}

// addGridMesh meshes g into doc and returns the index of the new node.
// Empty grids produce a node without a mesh.
func addGridMesh(doc *gltf.Document, name string, g *voxbin.Grid, sp voxbin.Spacing, material int) int {
	mesh := voxbin.GenerateMesh(g, sp)
	node := &gltf.Node{Name: name}
	if len(mesh.Indices) > 0 {
		positions, normals, colors, indices := meshBuffers(mesh)
		prim := &gltf.Primitive{
			Attributes: map[string]int{
				gltf.POSITION: modeler.WritePosition(doc, positions),
				gltf.NORMAL:   modeler.WriteNormal(doc, normals),
				gltf.COLOR_0:  modeler.WriteColor(doc, colors),
			},
			Indices:  gltf.Index(modeler.WriteIndices(doc, indices)),
			Material: gltf.Index(material),
		}
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}})
		node.Mesh = gltf.Index(len(doc.Meshes) - 1)
	}
	doc.Nodes = append(doc.Nodes, node)
	return len(doc.Nodes) - 1
}

// BuildGLB returns a glTF document with one greedy-meshed node for g.
func BuildGLB(g *voxbin.Grid, sp voxbin.Spacing) *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "voxbin save -> GLB"
	blend := false
	for o := voxbin.Channels - 1; o < len(g.Bytes()); o += voxbin.Channels {
		if a := g.Bytes()[o]; a != 0 && a != 255 {
			blend = true
			break
		}
	}
	doc.Materials = []*gltf.Material{newMaterial(blend)}
	node := addGridMesh(doc, "Save", g, sp, 0)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, node)
	return doc
}

// RunBIN2GLB converts a save file into a binary glTF preview.
func RunBIN2GLB(inPath, outPath string) error {
	g, sp, err := voxbin.LoadFile(inPath)
	if err != nil {
		return err
	}
	return gltf.SaveBinary(BuildGLB(g, sp), outPath)
}
