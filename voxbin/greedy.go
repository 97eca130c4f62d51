package voxbin

import "image/color"

// Vertex is one mesh corner, in spacing-scaled units.
type Vertex struct {
	Position [3]float32
	Color    color.RGBA
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

type dirSpec struct {
	normal [3]float32
	u, v   int
	du, dv [3]int
}

var directions = []dirSpec{
	{[3]float32{1, 0, 0}, 1, 2, [3]int{0, 1, 0}, [3]int{0, 0, 1}},
	{[3]float32{-1, 0, 0}, 1, 2, [3]int{0, 1, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, 1, 0}, 0, 2, [3]int{1, 0, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, -1, 0}, 0, 2, [3]int{1, 0, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, 0, 1}, 0, 1, [3]int{1, 0, 0}, [3]int{0, 1, 0}},
	{[3]float32{0, 0, -1}, 0, 1, [3]int{1, 0, 0}, [3]int{0, 1, 0}},
}

// Scale turns spacing into per-axis vertex multipliers; a zero component counts as 1.
func (sp Spacing) Scale() [3]float32 {
	s := [3]float32{float32(sp.X), float32(sp.Y), float32(sp.Z)}
	for i := range s {
		if s[i] == 0 {
			s[i] = 1
		}
	}
	return s
}

func addQuad(mesh *Mesh, dir dirSpec, start [3]int, w, h int, c color.RGBA, perp int, s [3]float32) {
	base := [3]int{}
	base[perp] = start[0]
	if dir.normal[perp] > 0 {
		base[perp]++
	}
	base[dir.u] = start[1]
	base[dir.v] = start[2]

	corner := func(a, b int) Vertex {
		var p [3]float32
		for i := 0; i < 3; i++ {
			p[i] = float32(base[i]+dir.du[i]*a+dir.dv[i]*b) * s[i]
		}
		return Vertex{Position: p, Color: c}
	}
	verts := [4]Vertex{corner(0, 0), corner(h, 0), corner(h, w), corner(0, w)}

	swap := (dir.normal[perp] < 0) != (perp == 1)
	if swap {
		verts[1], verts[3] = verts[3], verts[1]
	}

	baseIdx := uint32(len(mesh.Vertices))
	mesh.Vertices = append(mesh.Vertices, verts[:]...)
	mesh.Indices = append(mesh.Indices, baseIdx, baseIdx+1, baseIdx+2, baseIdx, baseIdx+2, baseIdx+3)
}

// GenerateMesh builds a greedy surface mesh of every voxel with non-zero alpha.
// Faces merge only across voxels with identical RGBA.
func GenerateMesh(g *Grid, sp Spacing) *Mesh {
	mesh := &Mesh{}
	dims := [3]int{g.w, g.h, g.d}
	s := sp.Scale()

	for _, dir := range directions {
		perp := 3 - dir.u - dir.v

		for p := 0; p < dims[perp]; p++ {
			mask := make([][]color.RGBA, dims[dir.u])
			visited := make([][]bool, dims[dir.u])
			for i := range mask {
				mask[i] = make([]color.RGBA, dims[dir.v])
				visited[i] = make([]bool, dims[dir.v])
			}

			for u := 0; u < dims[dir.u]; u++ {
				for v := 0; v < dims[dir.v]; v++ {
					pos := [3]int{}
					pos[dir.u] = u
					pos[dir.v] = v
					pos[perp] = p

					voxel := g.At(pos[0], pos[1], pos[2])
					if voxel.A == 0 {
						continue
					}

					adj := pos
					if dir.normal[perp] < 0 {
						adj[perp] = p - 1
					} else {
						adj[perp] = p + 1
					}
					// At reads outside the grid as empty, so border faces are always emitted.
					if g.At(adj[0], adj[1], adj[2]).A == 0 {
						mask[u][v] = voxel
					}
				}
			}

			for u := 0; u < dims[dir.u]; u++ {
				for v := 0; v < dims[dir.v]; {
					if mask[u][v].A == 0 || visited[u][v] {
						v++
						continue
					}
					c := mask[u][v]
					width := 1
					for w := v + 1; w < dims[dir.v] && mask[u][w] == c && !visited[u][w]; w++ {
						width++
					}
					height := 1
					stop := false
					for h := u + 1; h < dims[dir.u] && !stop; h++ {
						for w := v; w < v+width; w++ {
							if mask[h][w] != c || visited[h][w] {
								stop = true
								break
							}
						}
						if !stop {
							height++
						}
					}
					for hu := u; hu < u+height; hu++ {
						for hv := v; hv < v+width; hv++ {
							visited[hu][hv] = true
						}
					}
					addQuad(mesh, dir, [3]int{p, u, v}, width, height, c, perp, s)
					v += width
				}
			}
		}
	}
	return mesh
}
