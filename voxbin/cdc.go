package voxbin

import (
	"bytes"
	"encoding/binary"
	"math/bits"

	xxhash "github.com/cespare/xxhash/v2"
)

// gear is the rolling-hash table for content-defined chunking, derived
// deterministically from xxhash so packs are reproducible.
var gear = func() [256]uint64 {
	var t [256]uint64
	seed := xxhash.Sum64String("voxbin-cdc-gear")
	var b [16]byte
	for i := range t {
		binary.LittleEndian.PutUint64(b[:8], seed+uint64(i)*0x9E3779B185EBCA87)
		binary.LittleEndian.PutUint64(b[8:], ^(seed + uint64(i)*0xC2B2AE3D27D4EB4F))
		v := xxhash.Sum64(b[:])
		if v == 0 {
			v = 0x9E3779B185EBCA87
		}
		t[i] = v
	}
	return t
}()

// buildCDCIndex cuts every entry into content-defined chunks, stores each distinct
// chunk once and returns per entry the sequence of chunk indices.
func buildCDCIndex(entries []PackEntry, target, minSz, maxSz int) ([][]byte, [][]int) {
	// round target down to a power of two so the boundary test is a mask
	mask := uint64(1)<<(bits.Len(uint(target))-1) - 1

	var blocks [][]byte
	index := make(map[uint64][]int)
	addBlock := func(b []byte) int {
		h := xxhash.Sum64(b)
		for _, idx := range index[h] {
			if bytes.Equal(blocks[idx], b) {
				return idx
			}
		}
		idx := len(blocks)
		blocks = append(blocks, b)
		index[h] = append(index[h], idx)
		return idx
	}

	seqs := make([][]int, len(entries))
	for i, e := range entries {
		data := e.Data
		var seq []int
		start := 0
		var h uint64
		for pos := 0; pos < len(data); pos++ {
			h = h<<1 + gear[data[pos]]
			n := pos - start + 1
			if n < minSz {
				continue
			}
			if h&mask == 0 || n >= maxSz {
				seq = append(seq, addBlock(data[start:pos+1]))
				start = pos + 1
				h = 0
			}
		}
		if start < len(data) {
			seq = append(seq, addBlock(data[start:]))
		}
		seqs[i] = seq
	}
	return blocks, seqs
}
