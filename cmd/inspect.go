package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/voxelsplace/voxbin/voxbin"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <save.bin>",
	Short: "Print the header and contents summary of a save",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	s, err := voxbin.Summarize(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	h := s.Header
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "file:    %s\n", args[0])
	fmt.Fprintf(out, "size:    %s (%d bytes)\n", humanize.Bytes(uint64(s.Size)), s.Size)
	fmt.Fprintf(out, "dims:    %dx%dx%d\n", h.W, h.H, h.D)
	fmt.Fprintf(out, "spacing: %s\n", h.Spacing())
	fmt.Fprintf(out, "filled:  %d of %d voxels\n", s.Filled, int(h.W)*int(h.H)*int(h.D))
	fmt.Fprintf(out, "xxhash:  %016x\n", s.Digest)
	return nil
}
