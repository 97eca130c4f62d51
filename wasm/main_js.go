//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/voxelsplace/voxbin/api"
	"github.com/voxelsplace/voxbin/voxbin"
)

func toUint8Array(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

func fromUint8Array(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

// scene2save(sceneJSON string, [sx, sy, sz]) -> Uint8Array | error string
func scene2save(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing scene JSON")
	}
	sp := voxbin.Spacing{X: 1, Y: 1, Z: 1}
	if len(args) >= 2 && args[1].Length() == 3 {
		sp = voxbin.Spacing{X: args[1].Index(0).Int(), Y: args[1].Index(1).Int(), Z: args[1].Index(2).Int()}
	}
	out, err := api.SceneToSaveBytes([]byte(args[0].String()), sp)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toUint8Array(out)
}

func save2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing save bytes")
	}
	out, err := api.SaveToGLB(fromUint8Array(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toUint8Array(out)
}

func packSaves(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing files object")
	}
	filesObj := args[0]
	files := map[string][]byte{}
	keys := js.Global().Get("Object").Call("keys", filesObj)
	for i := 0; i < keys.Length(); i++ {
		k := keys.Index(i).String()
		files[k] = fromUint8Array(filesObj.Get(k))
	}
	out, err := api.PackSaves(files)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toUint8Array(out)
}

func unpackSaves(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing pack bytes")
	}
	files, err := api.UnpackToMemory(fromUint8Array(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	result := js.Global().Get("Object").New()
	for name, b := range files {
		result.Set(name, toUint8Array(b))
	}
	return result
}

func main() {
	js.Global().Set("scene2save", js.FuncOf(scene2save))
	js.Global().Set("save2glb", js.FuncOf(save2glb))
	js.Global().Set("packSaves", js.FuncOf(packSaves))
	js.Global().Set("unpackSaves", js.FuncOf(unpackSaves))
	select {}
}
