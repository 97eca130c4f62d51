package utils

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/rs/zerolog"

	"github.com/voxelsplace/voxbin/voxbin"
)

func TestGeneratePatternChecker(t *testing.T) {
	g, err := GeneratePattern("checker", 4, 4, 2, PatternOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := g.Filled(); got != 16 {
		t.Fatalf("checker filled %d voxels, want 16", got)
	}
	if g.At(0, 0, 0).A != 255 || g.At(1, 0, 0).A != 0 {
		t.Fatal("checker parity wrong")
	}
	if c := g.At(2, 0, 0); c.R != 127 {
		t.Fatalf("red channel = %d", c.R)
	}
}

func TestGeneratePatternBottle(t *testing.T) {
	g, err := GeneratePattern("bottle", 9, 9, 9, PatternOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if g.At(4, 4, 4).A != 0 {
		t.Fatal("bottle interior must be empty")
	}
	if g.At(0, 4, 4).B != 255 || g.At(4, 0, 4).A != 255 {
		t.Fatal("bottle walls missing")
	}
	if g.At(4, 8, 4).A != 0 {
		t.Fatal("bottle neck must be open")
	}
}

func TestGeneratePatternNoise(t *testing.T) {
	opts := PatternOptions{Percentage: 25, Seed: 7}
	a, err := GeneratePattern("noise", 10, 10, 10, opts)
	if err != nil {
		t.Fatal(err)
	}
	if got := a.Filled(); got != 250 {
		t.Fatalf("noise filled %d voxels, want 250", got)
	}
	b, _ := GeneratePattern("noise", 10, 10, 10, opts)
	if !a.Equal(b) {
		t.Fatal("same seed must give the same grid")
	}
	full, _ := GeneratePattern("noise", 3, 3, 3, PatternOptions{Percentage: 150})
	if full.Filled() != 27 {
		t.Fatalf("percentage is not clamped: %d", full.Filled())
	}
}

func TestGeneratePatternErrors(t *testing.T) {
	if _, err := GeneratePattern("spiral", 2, 2, 2, PatternOptions{}); err == nil {
		t.Fatal("unknown pattern accepted")
	}
	if _, err := GeneratePattern("checker", 0, 2, 2, PatternOptions{}); !errors.Is(err, voxbin.ErrInvalidDimension) {
		t.Fatalf("want ErrInvalidDimension, got %v", err)
	}
}

func TestParseScene(t *testing.T) {
	sc, err := ParseScene([]byte(`{
		"dims": [2, 2, 1],
		"spacing": [10, 10, 60],
		"voxels": [
			{"x": 1, "y": 0, "z": 0, "rgba": [128, 0, 0, 255]},
			{"x": 0, "y": 1, "z": 0, "rgba": [0, 128, 0, 255]}
		]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if !sc.HasSpacing || sc.Spacing != (voxbin.Spacing{X: 10, Y: 10, Z: 60}) {
		t.Fatalf("spacing = %v (set %v)", sc.Spacing, sc.HasSpacing)
	}
	if sc.Grid.At(1, 0, 0).R != 128 || sc.Grid.At(0, 1, 0).G != 128 || sc.Grid.Filled() != 2 {
		t.Fatal("voxels not applied")
	}
}

func TestParseSceneErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"dims length", `{"dims":[2,2]}`, voxbin.ErrInvalidDimension},
		{"dims range", `{"dims":[256,1,1]}`, voxbin.ErrInvalidDimension},
		{"spacing range", `{"dims":[1,1,1],"spacing":[0,0,256]}`, voxbin.ErrEncoding},
		{"channel range", `{"dims":[1,1,1],"voxels":[{"x":0,"y":0,"z":0,"rgba":[0,0,0,256]}]}`, voxbin.ErrEncoding},
		{"negative channel", `{"dims":[1,1,1],"voxels":[{"x":0,"y":0,"z":0,"rgba":[-1,0,0,0]}]}`, voxbin.ErrEncoding},
		{"outside grid", `{"dims":[1,1,1],"voxels":[{"x":1,"y":0,"z":0,"rgba":[0,0,0,255]}]}`, voxbin.ErrOutOfBounds},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := ParseScene([]byte(c.doc)); !errors.Is(err, c.want) {
				t.Fatalf("want %v, got %v", c.want, err)
			}
		})
	}
	if _, err := ParseScene([]byte(`{`)); err == nil {
		t.Fatal("invalid JSON accepted")
	}
}

func writeSave(t *testing.T, dir, name string, pattern string) string {
	t.Helper()
	g, err := GeneratePattern(pattern, 6, 5, 4, PatternOptions{Percentage: 30, Seed: 3})
	if err != nil {
		t.Fatal(err)
	}
	data, err := voxbin.EncodeToBytes(voxbin.Spacing{X: 10, Y: 10, Z: 60}, g)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCreatePackAndUnpack(t *testing.T) {
	src := t.TempDir()
	inputs := []string{
		writeSave(t, src, "save_a.bin", "checker"),
		writeSave(t, src, "save_b.bin", "bottle"),
		writeSave(t, src, "save_c.bin", "noise"),
	}
	packPath := filepath.Join(t.TempDir(), "all.voxpack")
	opts := PackOptions{Layout: voxbin.LayoutCDC, Compression: voxbin.PackCompZstd, Log: zerolog.Nop()}
	if err := CreatePack(inputs, packPath, opts); err != nil {
		t.Fatal(err)
	}

	pack, err := LoadPack(packPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(pack.Entries) != 3 || pack.Entries[1].Name != "save_b.bin" {
		t.Fatalf("entries = %d, second %q", len(pack.Entries), pack.Entries[1].Name)
	}

	out := filepath.Join(t.TempDir(), "out")
	if err := UnpackToDir(packPath, out); err != nil {
		t.Fatal(err)
	}
	for _, in := range inputs {
		want, _ := os.ReadFile(in)
		got, err := os.ReadFile(filepath.Join(out, filepath.Base(in)))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("%s differs after unpack", filepath.Base(in))
		}
	}
}

func TestCreatePackRejectsInvalidInput(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.bin")
	_ = os.WriteFile(bad, []byte{1, 2, 3}, 0o644)
	err := CreatePack([]string{bad}, filepath.Join(dir, "x.voxpack"), PackOptions{Log: zerolog.Nop()})
	if !errors.Is(err, voxbin.ErrTruncated) {
		t.Fatalf("want ErrTruncated, got %v", err)
	}
	if err := CreatePack(nil, filepath.Join(dir, "y.voxpack"), PackOptions{}); err == nil {
		t.Fatal("empty input list accepted")
	}
}

func TestUnpackRefusesPathEntries(t *testing.T) {
	dir := t.TempDir()
	data, _ := os.ReadFile(writeSave(t, dir, "ok.bin", "checker"))
	p := &voxbin.Pack{}
	if err := p.Add("../escape.bin", data); err != nil {
		t.Fatal(err)
	}
	blob, err := p.Marshal(voxbin.LayoutRaw, voxbin.PackCompNone)
	if err != nil {
		t.Fatal(err)
	}
	packPath := filepath.Join(dir, "evil.voxpack")
	_ = os.WriteFile(packPath, blob, 0o644)
	if err := UnpackToDir(packPath, filepath.Join(dir, "out")); err == nil {
		t.Fatal("entry escaping the output directory was written")
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.bin")); err == nil {
		t.Fatal("escape.bin written outside the output directory")
	}
}

func TestRunBIN2GLB(t *testing.T) {
	dir := t.TempDir()
	in := writeSave(t, dir, "save.bin", "bottle")
	out := filepath.Join(dir, "save.glb")
	if err := RunBIN2GLB(in, out); err != nil {
		t.Fatal(err)
	}
	doc, err := gltf.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Meshes) != 1 || len(doc.Nodes) != 1 {
		t.Fatalf("meshes=%d nodes=%d", len(doc.Meshes), len(doc.Nodes))
	}
	if doc.Materials[0].AlphaMode != gltf.AlphaOpaque {
		t.Fatal("fully opaque save should use an opaque material")
	}
}

func TestBuildGLBEmptyGrid(t *testing.T) {
	g, _ := voxbin.NewGrid(2, 2, 2)
	doc := BuildGLB(g, voxbin.Spacing{})
	if len(doc.Meshes) != 0 || len(doc.Nodes) != 1 {
		t.Fatalf("meshes=%d nodes=%d", len(doc.Meshes), len(doc.Nodes))
	}
}

func TestRunPACK2GLB(t *testing.T) {
	src := t.TempDir()
	inputs := []string{
		writeSave(t, src, "a.bin", "checker"),
		writeSave(t, src, "b.bin", "noise"),
	}
	packPath := filepath.Join(src, "p.voxpack")
	if err := CreatePack(inputs, packPath, PackOptions{Layout: voxbin.LayoutRaw, Compression: voxbin.PackCompZlib, Log: zerolog.Nop()}); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(src, "p.glb")
	if err := RunPACK2GLB(packPath, out); err != nil {
		t.Fatal(err)
	}
	doc, err := gltf.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Nodes) != 2 || len(doc.Scenes[0].Nodes) != 2 {
		t.Fatalf("nodes=%d scene nodes=%d", len(doc.Nodes), len(doc.Scenes[0].Nodes))
	}
	// 6x5x4 saves at spacing 10,10,60 are laid out 60 units apart on x
	if doc.Nodes[1].Translation != [3]float64{60, 0, 0} {
		t.Fatalf("second entry at %v, want [60 0 0]", doc.Nodes[1].Translation)
	}
}

func TestBuildGLBIndices(t *testing.T) {
	g, _ := voxbin.NewGrid(2, 1, 1)
	_ = g.SetChannels(0, 0, 0, [4]int{255, 0, 0, 128})
	doc := BuildGLB(g, voxbin.Spacing{X: 1, Y: 1, Z: 1})
	if len(doc.Scenes[0].Nodes) != 1 || doc.Scenes[0].Nodes[0] != 0 {
		t.Fatalf("scene nodes = %v", doc.Scenes[0].Nodes)
	}
	node := doc.Nodes[0]
	if node.Mesh == nil || *node.Mesh != 0 {
		t.Fatalf("node mesh = %v", node.Mesh)
	}
	prim := doc.Meshes[0].Primitives[0]
	for _, attr := range []string{gltf.POSITION, gltf.NORMAL, gltf.COLOR_0} {
		if idx, ok := prim.Attributes[attr]; !ok || idx >= len(doc.Accessors) {
			t.Fatalf("attribute %s = %d, %v", attr, idx, ok)
		}
	}
	if prim.Indices == nil || *prim.Indices >= len(doc.Accessors) || prim.Material == nil || *prim.Material != 0 {
		t.Fatal("primitive indices or material not set")
	}
	if doc.Materials[0].AlphaMode != gltf.AlphaBlend {
		t.Fatal("translucent voxel should switch to a blended material")
	}
	if *doc.Materials[0].PBRMetallicRoughness.BaseColorFactor != [4]float64{1, 1, 1, 1} {
		t.Fatal("base colour factor must be white")
	}
}

func TestCreatePackRejectsSameBaseName(t *testing.T) {
	a := writeSave(t, t.TempDir(), "save.bin", "checker")
	b := writeSave(t, t.TempDir(), "save.bin", "noise")
	out := filepath.Join(t.TempDir(), "dup.voxpack")
	err := CreatePack([]string{a, b}, out, PackOptions{Log: zerolog.Nop()})
	if !errors.Is(err, voxbin.ErrDuplicateEntry) {
		t.Fatalf("want ErrDuplicateEntry, got %v", err)
	}
	if _, err := os.Stat(out); err == nil {
		t.Fatal("pack written despite duplicate entry names")
	}
}
