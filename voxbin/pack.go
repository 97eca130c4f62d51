package voxbin

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// PackCompression indicates the compression used for the pack content section.
type PackCompression uint8

const (
	PackCompNone PackCompression = 0
	PackCompZlib PackCompression = 1
	PackCompZstd PackCompression = 2
)

// ParsePackCompression maps a CLI spelling to a codec.
func ParsePackCompression(s string) (PackCompression, error) {
	switch s {
	case "none":
		return PackCompNone, nil
	case "zlib":
		return PackCompZlib, nil
	case "", "zstd":
		return PackCompZstd, nil
	}
	return 0, fmt.Errorf("unknown compression %q (want none, zlib or zstd)", s)
}

func (c PackCompression) String() string {
	switch c {
	case PackCompNone:
		return "none"
	case PackCompZlib:
		return "zlib"
	case PackCompZstd:
		return "zstd"
	}
	return fmt.Sprintf("compression(%d)", uint8(c))
}

// PackLayout specifies how the content section encodes entries.
type PackLayout uint8

const (
	// LayoutRaw stores each save as one blob.
	LayoutRaw PackLayout = 0
	// LayoutCDC stores a content-defined chunk dictionary and entries as sequences of chunk refs.
	// Saves of the same scene exported over time share most of their bytes.
	LayoutCDC PackLayout = 1
)

const (
	packMagic   = "VOXBPACK"
	packVersion = 1

	cdcTarget = 4096
	cdcMin    = 1024
	cdcMax    = 16384
)

var (
	// ErrNotPack is returned when data does not start with the pack magic.
	ErrNotPack = errors.New("voxbin: not a save pack")
	// ErrPackVersion is returned for packs written by a newer format revision.
	ErrPackVersion = errors.New("voxbin: unsupported pack version")
)

// PackEntry is one complete save file (header and body) inside a pack.
type PackEntry struct {
	Name string
	Data []byte
}

// Pack is an ordered collection of saves.
type Pack struct {
	Entries []PackEntry
}

// checkSave verifies that data is exactly one well-formed save.
func checkSave(name string, data []byte) (Header, error) {
	hdr, err := ParseHeader(data)
	if err != nil {
		return hdr, fmt.Errorf("%s: %w", name, err)
	}
	if len(data) != hdr.FileSize() {
		return hdr, fmt.Errorf("%s: %w: %d bytes for a %dx%dx%d save (want %d)",
			name, ErrTruncated, len(data), hdr.W, hdr.H, hdr.D, hdr.FileSize())
	}
	return hdr, nil
}

// Add validates data as a save and appends it. Entry names must be unique.
func (p *Pack) Add(name string, data []byte) error {
	if len(name) > 0xFFFF {
		return fmt.Errorf("entry name too long: %d bytes", len(name))
	}
	if p.has(name) {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, name)
	}
	if _, err := checkSave(name, data); err != nil {
		return err
	}
	p.Entries = append(p.Entries, PackEntry{Name: name, Data: data})
	return nil
}

func (p *Pack) has(name string) bool {
	for _, e := range p.Entries {
		if e.Name == name {
			return true
		}
	}
	return false
}

// Marshal encodes the pack with the given layout and compression codec.
func (p *Pack) Marshal(layout PackLayout, comp PackCompression) ([]byte, error) {
	content := []byte{byte(layout)}
	switch layout {
	case LayoutRaw:
		content = binary.LittleEndian.AppendUint32(content, uint32(len(p.Entries)))
		for _, e := range p.Entries {
			content = appendName(content, e.Name)
			content = binary.LittleEndian.AppendUint32(content, uint32(len(e.Data)))
			content = append(content, e.Data...)
		}
	case LayoutCDC:
		content = binary.LittleEndian.AppendUint32(content, cdcTarget)
		content = binary.LittleEndian.AppendUint32(content, cdcMin)
		content = binary.LittleEndian.AppendUint32(content, cdcMax)
		dict, seqs := buildCDCIndex(p.Entries, cdcTarget, cdcMin, cdcMax)
		content = binary.LittleEndian.AppendUint32(content, uint32(len(dict)))
		for _, blk := range dict {
			content = binary.LittleEndian.AppendUint32(content, uint32(len(blk)))
			content = append(content, blk...)
		}
		content = binary.LittleEndian.AppendUint32(content, uint32(len(p.Entries)))
		for i, e := range p.Entries {
			content = appendName(content, e.Name)
			content = binary.LittleEndian.AppendUint32(content, uint32(len(e.Data)))
			content = binary.LittleEndian.AppendUint32(content, uint32(len(seqs[i])))
			for _, idx := range seqs[i] {
				content = binary.LittleEndian.AppendUint32(content, uint32(idx))
			}
		}
	default:
		return nil, fmt.Errorf("unsupported pack layout: %d", layout)
	}

	var body []byte
	switch comp {
	case PackCompNone:
		body = content
	case PackCompZlib:
		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(content); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		body = buf.Bytes()
	case PackCompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		body = enc.EncodeAll(content, nil)
		_ = enc.Close()
	default:
		return nil, fmt.Errorf("unsupported compression: %d", comp)
	}

	out := make([]byte, 0, len(packMagic)+2+len(body))
	out = append(out, packMagic...)
	out = append(out, packVersion, byte(comp))
	return append(out, body...), nil
}

func appendName(dst []byte, name string) []byte {
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(name)))
	return append(dst, name...)
}

// UnmarshalPack parses a pack and checks every entry is a well-formed save.
func UnmarshalPack(data []byte) (*Pack, PackCompression, error) {
	if len(data) < len(packMagic)+2 || string(data[:len(packMagic)]) != packMagic {
		return nil, 0, ErrNotPack
	}
	if v := data[len(packMagic)]; v != packVersion {
		return nil, 0, fmt.Errorf("%w: %d", ErrPackVersion, v)
	}
	comp := PackCompression(data[len(packMagic)+1])
	content := data[len(packMagic)+2:]
	switch comp {
	case PackCompNone:
	case PackCompZlib:
		zr, err := zlib.NewReader(bytes.NewReader(content))
		if err != nil {
			return nil, 0, err
		}
		defer zr.Close()
		if content, err = io.ReadAll(zr); err != nil {
			return nil, 0, err
		}
	case PackCompZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, 0, err
		}
		defer dec.Close()
		if content, err = dec.DecodeAll(content, nil); err != nil {
			return nil, 0, err
		}
	default:
		return nil, 0, fmt.Errorf("unsupported compression: %d", comp)
	}

	r := &packReader{r: bytes.NewReader(content)}
	var pack *Pack
	switch layout := PackLayout(r.u8()); layout {
	case LayoutRaw:
		pack = readRaw(r)
	case LayoutCDC:
		pack = readCDC(r)
	default:
		if r.err == nil {
			return nil, 0, fmt.Errorf("unknown pack layout: %d", layout)
		}
	}
	if r.err != nil {
		return nil, 0, r.err
	}
	seen := make(map[string]bool, len(pack.Entries))
	for _, e := range pack.Entries {
		if seen[e.Name] {
			return nil, 0, fmt.Errorf("%w: %s", ErrDuplicateEntry, e.Name)
		}
		seen[e.Name] = true
		if _, err := checkSave(e.Name, e.Data); err != nil {
			return nil, 0, err
		}
	}
	return pack, comp, nil
}

func readRaw(r *packReader) *Pack {
	n := r.u32()
	pack := &Pack{}
	for i := uint32(0); i < n && r.err == nil; i++ {
		name := string(r.bytes(int(r.u16())))
		data := r.bytes(int(r.u32()))
		pack.Entries = append(pack.Entries, PackEntry{Name: name, Data: data})
	}
	return pack
}

func readCDC(r *packReader) *Pack {
	// chunking parameters are informational for readers
	r.u32()
	r.u32()
	r.u32()
	nBlocks := r.u32()
	var blocks [][]byte
	for i := uint32(0); i < nBlocks && r.err == nil; i++ {
		blocks = append(blocks, r.bytes(int(r.u32())))
	}
	n := r.u32()
	pack := &Pack{}
	for i := uint32(0); i < n && r.err == nil; i++ {
		name := string(r.bytes(int(r.u16())))
		rawLen := int(r.u32())
		seqLen := r.u32()
		var data []byte
		for j := uint32(0); j < seqLen && r.err == nil; j++ {
			idx := r.u32()
			if r.err == nil && int(idx) >= len(blocks) {
				r.err = fmt.Errorf("%w: block index %d of %d", ErrTruncated, idx, len(blocks))
				break
			}
			if r.err == nil {
				data = append(data, blocks[idx]...)
			}
		}
		if r.err == nil && len(data) != rawLen {
			r.err = fmt.Errorf("%w: entry %s rebuilt to %d bytes, want %d", ErrTruncated, name, len(data), rawLen)
		}
		pack.Entries = append(pack.Entries, PackEntry{Name: name, Data: data})
	}
	return pack
}

// packReader is a bytes.Reader with a sticky error; short reads become ErrTruncated.
type packReader struct {
	r   *bytes.Reader
	err error
}

func (p *packReader) read(v any) {
	if p.err != nil {
		return
	}
	if err := binary.Read(p.r, binary.LittleEndian, v); err != nil {
		p.err = fmt.Errorf("%w: pack content", ErrTruncated)
	}
}

func (p *packReader) u8() uint8   { var v uint8; p.read(&v); return v }
func (p *packReader) u16() uint16 { var v uint16; p.read(&v); return v }
func (p *packReader) u32() uint32 { var v uint32; p.read(&v); return v }

func (p *packReader) bytes(n int) []byte {
	if p.err != nil {
		return nil
	}
	if n > p.r.Len() {
		p.err = fmt.Errorf("%w: want %d bytes, %d left", ErrTruncated, n, p.r.Len())
		return nil
	}
	b := make([]byte, n)
	_, _ = io.ReadFull(p.r, b)
	return b
}
