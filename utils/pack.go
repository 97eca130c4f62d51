package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/voxelsplace/voxbin/voxbin"
)

// PackOptions selects the pack layout and codec.
type PackOptions struct {
	Layout      voxbin.PackLayout
	Compression voxbin.PackCompression
	Log         zerolog.Logger
}

// CreatePack reads save files and writes them into one pack at outputFile.
// Entries keep the base name of each input and the input order.
func CreatePack(inputFiles []string, outputFile string, opts PackOptions) error {
	if len(inputFiles) == 0 {
		return fmt.Errorf("no save files provided")
	}
	type item struct {
		data []byte
		err  error
	}
	items := make([]item, len(inputFiles))

	var wg sync.WaitGroup
	for i := range inputFiles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			items[i].data, items[i].err = os.ReadFile(inputFiles[i])
		}(i)
	}
	wg.Wait()

	pack := &voxbin.Pack{}
	raw := 0
	for i, it := range items {
		if it.err != nil {
			return it.err
		}
		if err := pack.Add(filepath.Base(inputFiles[i]), it.data); err != nil {
			return err
		}
		raw += len(it.data)
	}

	start := time.Now()
	data, err := pack.Marshal(opts.Layout, opts.Compression)
	if err != nil {
		return err
	}
	opts.Log.Info().
		Int("entries", len(pack.Entries)).
		Str("raw", humanize.Bytes(uint64(raw))).
		Str("packed", humanize.Bytes(uint64(len(data)))).
		Stringer("compression", opts.Compression).
		Dur("took", time.Since(start)).
		Msg("pack written")
	return os.WriteFile(outputFile, data, 0o644)
}

// LoadPack reads and parses a pack file.
func LoadPack(packFile string) (*voxbin.Pack, error) {
	data, err := os.ReadFile(packFile)
	if err != nil {
		return nil, err
	}
	pack, _, err := voxbin.UnmarshalPack(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", packFile, err)
	}
	return pack, nil
}

// UnpackToDir writes every save in packFile into outputDir under its entry name.
func UnpackToDir(packFile, outputDir string) error {
	pack, err := LoadPack(packFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	var wg sync.WaitGroup
	errCh := make(chan error, len(pack.Entries))
	for _, e := range pack.Entries {
		wg.Add(1)
		go func(e voxbin.PackEntry) {
			defer wg.Done()
			// entry names are base names; refuse anything that would escape outputDir
			name := filepath.Base(e.Name)
			if name != e.Name || name == "." || name == ".." {
				errCh <- fmt.Errorf("refusing entry name %q", e.Name)
				return
			}
			if err := os.WriteFile(filepath.Join(outputDir, name), e.Data, 0o644); err != nil {
				errCh <- err
			}
		}(e)
	}
	wg.Wait()
	close(errCh)
	if err, ok := <-errCh; ok {
		return err
	}
	return nil
}
