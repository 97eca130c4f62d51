package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/voxelsplace/voxbin/utils"
	"github.com/voxelsplace/voxbin/voxbin"
)

// PackExt is the conventional extension of save packs.
const PackExt = ".voxpack"

var (
	packLayout      string
	packCompression string
)

var glbCmd = &cobra.Command{
	Use:   "glb <input.bin|input.voxpack> <output.glb>",
	Short: "Convert a save or a pack into a greedy-meshed glTF preview",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if filepath.Ext(args[0]) == PackExt {
			return utils.RunPACK2GLB(args[0], args[1])
		}
		return utils.RunBIN2GLB(args[0], args[1])
	},
}

var packCmd = &cobra.Command{
	Use:   "pack <output.voxpack> <input.bin> [input.bin...]",
	Short: "Bundle saves into one compressed pack",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runPack,
}

var unpackCmd = &cobra.Command{
	Use:   "unpack <input.voxpack> <output_dir>",
	Short: "Extract every save of a pack into a directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return utils.UnpackToDir(args[0], args[1])
	},
}

func init() {
	packCmd.Flags().StringVar(&packLayout, "layout", "cdc", "content layout: raw or cdc (chunk dedupe)")
	packCmd.Flags().StringVar(&packCompression, "compression", "zstd", "none, zlib or zstd")
}

func runPack(cmd *cobra.Command, args []string) error {
	var layout voxbin.PackLayout
	switch packLayout {
	case "raw":
		layout = voxbin.LayoutRaw
	case "cdc":
		layout = voxbin.LayoutCDC
	default:
		return fmt.Errorf("unknown layout %q (want raw or cdc)", packLayout)
	}
	comp, err := voxbin.ParsePackCompression(packCompression)
	if err != nil {
		return err
	}
	return utils.CreatePack(args[1:], args[0], utils.PackOptions{Layout: layout, Compression: comp, Log: logger})
}
