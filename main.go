//go:build !(js && wasm)

package main

import "github.com/voxelsplace/voxbin/cmd"

func main() {
	cmd.Execute()
}
