package voxbin

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

const (
	// SavesDir is created under the destination directory to hold every save.
	SavesDir = "saves"
	// Ext is the save file extension. It is not part of the artifact id.
	Ext = ".bin"
	// TimestampLayout formats artifact ids with one-second resolution.
	TimestampLayout = "2006-01-02-15-04-05"

	maxCollisionSuffix = 999
)

// TimestampName is the default artifact id: save_YYYY-MM-DD-HH-MM-SS.
func TimestampName(t time.Time) string {
	return "save_" + t.Format(TimestampLayout)
}

// ArtifactPath is where the save with the given id lives under destDir.
func ArtifactPath(destDir, id string) string {
	return filepath.Join(destDir, SavesDir, id+Ext)
}

// CollisionPolicy decides what happens when the artifact id is already taken,
// which with the default namer means two exports in the same second.
type CollisionPolicy int

const (
	// CollisionSuffix appends -1, -2, ... to the id until a free name is found.
	CollisionSuffix CollisionPolicy = iota
	// CollisionFail returns ErrNameCollision and leaves the existing file alone.
	CollisionFail
)

// ParseCollisionPolicy maps the config spelling to a policy.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch s {
	case "", "suffix":
		return CollisionSuffix, nil
	case "fail":
		return CollisionFail, nil
	}
	return 0, fmt.Errorf("unknown collision policy %q (want suffix or fail)", s)
}

// Artifact describes one written save.
type Artifact struct {
	ID     string
	Path   string
	Size   int
	Digest uint64 // xxhash64 of the whole file
}

// LaunchResult reports how an external consumer was started.
type LaunchResult struct {
	PID     int
	Command string
}

// Launcher hands an artifact id to an external consumer such as the visualizer.
// Implementations report only whether the launch itself succeeded.
type Launcher interface {
	Launch(ctx context.Context, artifactID string) (LaunchResult, error)
}

// Exporter owns one grid and writes it to timestamped save files.
// It is not safe for concurrent use.
type Exporter struct {
	grid      *Grid
	now       func() time.Time
	namer     func(time.Time) string
	collision CollisionPolicy
	log       zerolog.Logger
	openFile  func(path string, flag int, perm fs.FileMode) (io.WriteCloser, error)
}

func openOSFile(path string, flag int, perm fs.FileMode) (io.WriteCloser, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock replaces time.Now as the source of artifact timestamps.
func WithClock(now func() time.Time) Option { return func(e *Exporter) { e.now = now } }

// WithNamer replaces TimestampName.
func WithNamer(f func(time.Time) string) Option { return func(e *Exporter) { e.namer = f } }

// WithCollisionPolicy selects what happens when the artifact id is already taken.
func WithCollisionPolicy(p CollisionPolicy) Option { return func(e *Exporter) { e.collision = p } }

// WithLogger sets the logger used for export and hand-off events.
func WithLogger(l zerolog.Logger) Option { return func(e *Exporter) { e.log = l } }

// NewExporter allocates a zeroed w×h×d grid.
func NewExporter(w, h, d int, opts ...Option) (*Exporter, error) {
	g, err := NewGrid(w, h, d)
	if err != nil {
		return nil, err
	}
	return NewExporterForGrid(g, opts...)
}

// NewExporterForGrid wraps an existing grid. The exporter takes ownership of it.
func NewExporterForGrid(g *Grid, opts ...Option) (*Exporter, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	e := &Exporter{
		grid:  g,
		now:   time.Now,
		namer: TimestampName,
		log:      zerolog.Nop(),
		openFile: openOSFile,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Grid returns the owned grid for editing between exports.
func (e *Exporter) Grid() *Grid { return e.grid }

// Export writes destDir/saves/<id>.bin and returns the artifact id.
func (e *Exporter) Export(sp Spacing, destDir string) (string, error) {
	a, err := e.ExportArtifact(sp, destDir)
	return a.ID, err
}

// ExportArtifact is Export with the full artifact description.
// On failure no file is left behind under the chosen name.
func (e *Exporter) ExportArtifact(sp Spacing, destDir string) (Artifact, error) {
	hdr, err := NewHeader(sp, e.grid)
	if err != nil {
		return Artifact{}, err
	}
	dir := filepath.Join(destDir, SavesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("%w: create %s: %w", ErrIO, dir, err)
	}
	f, id, path, err := e.create(dir, e.namer(e.now()))
	if err != nil {
		return Artifact{}, err
	}

	digest := xxhash.New()
	werr := writeSave(f, digest, hdr, e.grid.data)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(path)
		return Artifact{}, fmt.Errorf("%w: write %s: %w", ErrIO, path, werr)
	}

	a := Artifact{ID: id, Path: path, Size: hdr.FileSize(), Digest: digest.Sum64()}
	e.log.Info().
		Str("id", a.ID).
		Str("path", a.Path).
		Str("size", humanize.Bytes(uint64(a.Size))).
		Str("spacing", sp.String()).
		Str("xxhash", fmt.Sprintf("%016x", a.Digest)).
		Msg("save exported")
	return a, nil
}

func writeSave(f io.Writer, digest io.Writer, hdr Header, body []byte) error {
	bw := bufio.NewWriter(io.MultiWriter(f, digest))
	if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
		return err
	}
	if _, err := bw.Write(body); err != nil {
		return err
	}
	return bw.Flush()
}

// create opens dir/<base>.bin exclusively, resolving collisions per policy.
func (e *Exporter) create(dir, base string) (io.WriteCloser, string, string, error) {
	for i := 0; i <= maxCollisionSuffix; i++ {
		id := base
		if i > 0 {
			id = fmt.Sprintf("%s-%d", base, i)
		}
		path := filepath.Join(dir, id+Ext)
		f, err := e.openFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, id, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", "", fmt.Errorf("%w: open %s: %w", ErrIO, path, err)
		}
		if e.collision == CollisionFail {
			return nil, "", "", fmt.Errorf("%w: %s", ErrNameCollision, path)
		}
		e.log.Debug().Str("path", path).Msg("artifact name taken, trying next suffix")
	}
	return nil, "", "", fmt.Errorf("%w: %s and %d suffixed names", ErrNameCollision, base, maxCollisionSuffix)
}

// ExportAndHandOff exports the grid, then passes the artifact id to l.
// The id is returned even when the launch fails so the caller can retry by hand.
func (e *Exporter) ExportAndHandOff(ctx context.Context, sp Spacing, destDir string, l Launcher) (string, LaunchResult, error) {
	id, err := e.Export(sp, destDir)
	if err != nil {
		return "", LaunchResult{}, err
	}
	res, err := l.Launch(ctx, id)
	if err != nil {
		return id, res, fmt.Errorf("launch consumer for %s: %w", id, err)
	}
	e.log.Info().Str("id", id).Int("pid", res.PID).Str("command", res.Command).Msg("handed off to consumer")
	return id, res, nil
}
