package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/voxelsplace/voxbin/voxbin"
)

// DefaultPath is looked up in the working directory when --config is not given.
const DefaultPath = "voxbin.toml"

// Config is the merged result of defaults and voxbin.toml.
type Config struct {
	Export     Export
	Visualizer Visualizer
	Log        Log
}

// Export holds the [export] section: where saves go and how they are named.
type Export struct {
	Dest      string
	Spacing   voxbin.Spacing
	Collision voxbin.CollisionPolicy
}

// Visualizer is the external program that receives the artifact id.
type Visualizer struct {
	Dir     string
	Program string
	Args    []string
}

// Log holds the [log] section.
type Log struct {
	Level  string
	Format string
}

// Default mirrors the layout the visualizer expects: saves/ next to its Cargo.toml,
// started with `cargo run -- <id>`.
func Default() Config {
	return Config{
		Export: Export{
			Dest:      ".",
			Spacing:   voxbin.Spacing{X: 10, Y: 10, Z: 60},
			Collision: voxbin.CollisionSuffix,
		},
		Visualizer: Visualizer{
			Dir:     ".",
			Program: "cargo",
			Args:    []string{"run", "--", "{id}"},
		},
		Log: Log{Level: "info", Format: "console"},
	}
}

type fileConfig struct {
	Export struct {
		Dest      string `toml:"dest"`
		Spacing   []int  `toml:"spacing"`
		Collision string `toml:"collision"`
	} `toml:"export"`
	Visualizer struct {
		Dir     string   `toml:"dir"`
		Program string   `toml:"program"`
		Args    []string `toml:"args"`
	} `toml:"visualizer"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
}

// Load overlays the keys defined in path on Default. A missing file is not an error
// unless required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("export", "dest") {
		cfg.Export.Dest = strings.TrimSpace(raw.Export.Dest)
	}
	if meta.IsDefined("export", "spacing") {
		sp, err := voxbin.ParseSpacing(raw.Export.Spacing)
		if err != nil {
			return Config{}, fmt.Errorf("parse export.spacing: %w", err)
		}
		cfg.Export.Spacing = sp
	}
	if meta.IsDefined("export", "collision") {
		p, err := voxbin.ParseCollisionPolicy(strings.TrimSpace(raw.Export.Collision))
		if err != nil {
			return Config{}, fmt.Errorf("parse export.collision: %w", err)
		}
		cfg.Export.Collision = p
	}
	if meta.IsDefined("visualizer", "dir") {
		cfg.Visualizer.Dir = strings.TrimSpace(raw.Visualizer.Dir)
	}
	if meta.IsDefined("visualizer", "program") {
		cfg.Visualizer.Program = strings.TrimSpace(raw.Visualizer.Program)
	}
	if meta.IsDefined("visualizer", "args") {
		cfg.Visualizer.Args = raw.Visualizer.Args
	}
	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "format") {
		cfg.Log.Format = strings.TrimSpace(raw.Log.Format)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}
	return cfg, nil
}
