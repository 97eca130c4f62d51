package api

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/qmuntal/gltf"

	"github.com/voxelsplace/voxbin/utils"
	"github.com/voxelsplace/voxbin/voxbin"
)

// SceneToSaveBytes converts a JSON scene document into save file bytes.
// fallback is used when the scene does not set its own spacing.
func SceneToSaveBytes(sceneJSON []byte, fallback voxbin.Spacing) ([]byte, error) {
	sc, err := utils.ParseScene(sceneJSON)
	if err != nil {
		return nil, err
	}
	sp := fallback
	if sc.HasSpacing {
		sp = sc.Spacing
	}
	return voxbin.EncodeToBytes(sp, sc.Grid)
}

// SaveToGLB takes save file bytes and returns a .glb preview.
func SaveToGLB(save []byte) ([]byte, error) {
	g, sp, err := voxbin.DecodeBytes(save)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(utils.BuildGLB(g, sp)); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// PackSaves builds a zstd-compressed CDC pack from named save blobs, in name order.
func PackSaves(files map[string][]byte) ([]byte, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files")
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	pack := &voxbin.Pack{}
	for _, name := range names {
		if err := pack.Add(name, files[name]); err != nil {
			return nil, err
		}
	}
	return pack.Marshal(voxbin.LayoutCDC, voxbin.PackCompZstd)
}

// UnpackToMemory returns a map of entry name -> save bytes from a pack blob.
func UnpackToMemory(packBytes []byte) (map[string][]byte, error) {
	pack, _, err := voxbin.UnmarshalPack(packBytes)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(pack.Entries))
	for _, e := range pack.Entries {
		out[e.Name] = e.Data
	}
	return out, nil
}
