// Package world models Minecraft world data: region containers, chunks,
// and the block color palette used to turn a chunk's surface into pixels.
//
// A region file holds a 32×32 grid of chunks for one square of the infinite
// world grid. Chunks are stored as compressed NBT payloads addressed by a
// sector table at the start of the file. This package decodes that container
// and exposes each chunk's top visible layer as a grid of colors.
package world

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"

	"github.com/HEPOMAHTIK/MinedMap/pkg/errors"
	"github.com/HEPOMAHTIK/MinedMap/pkg/nbt"
)

const (
	// RegionSize is the number of chunks along one axis of a region.
	RegionSize = 32

	// chunkCount is the number of chunk slots in a region's sector table.
	chunkCount = RegionSize * RegionSize

	// sectorSize is the allocation unit of a region file.
	sectorSize = 4096
)

// Compression schemes used for chunk payloads.
const (
	compressionGzip = 1
	compressionZlib = 2
)

// RegionCoord identifies a region's position in the infinite world grid.
// Immutable once parsed; derived solely from a validated filename.
type RegionCoord struct {
	X, Z int32
}

// FormatRegionName renders the canonical region filename for a coordinate.
func FormatRegionName(x, z int32) string {
	return fmt.Sprintf("r.%d.%d.mca", x, z)
}

// TileName renders the output tile filename for a coordinate.
func TileName(x, z int32) string {
	return fmt.Sprintf("r.%d.%d.png", x, z)
}

// ParseRegionName extracts a region coordinate from a filename of the form
// "r.<x>.<z>.mca". The extracted integers are re-rendered and compared
// byte-for-byte against the original name; any difference (leading zeros,
// explicit plus signs, embedded NUL bytes, trailing garbage) rejects the
// name. Rejection is not an error: non-conforming names are simply not
// region files.
func ParseRegionName(name string) (RegionCoord, bool) {
	var x, z int32
	if n, err := fmt.Sscanf(name, "r.%d.%d.mca", &x, &z); err != nil || n != 2 {
		return RegionCoord{}, false
	}
	if FormatRegionName(x, z) != name {
		return RegionCoord{}, false
	}
	return RegionCoord{X: x, Z: z}, true
}

// Bounds accumulates the coordinate extent of all validated regions.
// It only widens; there is no shrink operation.
type Bounds struct {
	MinX, MaxX int32
	MinZ, MaxZ int32
}

// NewBounds returns an empty extent initialized to the identity extremes,
// so that the first Extend sets all four edges.
func NewBounds() Bounds {
	return Bounds{
		MinX: math.MaxInt32, MaxX: math.MinInt32,
		MinZ: math.MaxInt32, MaxZ: math.MinInt32,
	}
}

// Extend widens the bounds to include c.
func (b *Bounds) Extend(c RegionCoord) {
	if c.X < b.MinX {
		b.MinX = c.X
	}
	if c.X > b.MaxX {
		b.MaxX = c.X
	}
	if c.Z < b.MinZ {
		b.MinZ = c.Z
	}
	if c.Z > b.MaxZ {
		b.MaxZ = c.Z
	}
}

// Empty reports whether no coordinate has been folded in yet.
func (b *Bounds) Empty() bool {
	return b.MinX > b.MaxX
}

// ChunkVisitor receives one decoded chunk and its position within the
// region (0 ≤ cx, cz < RegionSize).
type ChunkVisitor func(cx, cz int, c *Chunk)

// VisitChunks decodes every present chunk in the region file at path and
// invokes visit once per chunk, synchronously, before returning. Chunk
// slots with no stored data are skipped silently; any corruption of the
// container or a chunk payload aborts the whole region with an error.
func VisitChunks(path string, visit ChunkVisitor) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDecodeFailed, err, "open region %s", path)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return errors.Wrap(errors.ErrCodeStatFailed, err, "stat region %s", path)
	}
	size := fi.Size()

	// Sector table: 1024 big-endian entries, 3 bytes sector offset + 1 byte
	// sector count. The second 4 KiB (per-chunk timestamps) is not used.
	locations := make([]byte, sectorSize)
	if _, err := io.ReadFull(f, locations); err != nil {
		return errors.Wrap(errors.ErrCodeCorruptRegion, err, "read sector table of %s", path)
	}

	for idx := 0; idx < chunkCount; idx++ {
		loc := binary.BigEndian.Uint32(locations[idx*4:])
		offset := int64(loc >> 8)
		sectors := int64(loc & 0xff)
		if offset == 0 || sectors == 0 {
			continue
		}

		cx, cz := idx%RegionSize, idx/RegionSize

		start := offset * sectorSize
		if start+sectors*sectorSize > size {
			return errors.New(errors.ErrCodeCorruptRegion,
				"chunk %d,%d: sectors [%d,%d) past end of %s", cx, cz, offset, offset+sectors, path)
		}

		chunk, err := readChunkAt(f, start, sectors*sectorSize)
		if err != nil {
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeDecodeFailed
			}
			return errors.Wrap(code, err, "chunk %d,%d of %s", cx, cz, path)
		}

		visit(cx, cz, chunk)
	}

	return nil
}

// readChunkAt decodes the chunk payload stored at the given file offset.
// The payload is a 4-byte big-endian length, a 1-byte compression scheme,
// and length-1 bytes of compressed NBT.
func readChunkAt(f *os.File, start, allocated int64) (*Chunk, error) {
	var head [5]byte
	if _, err := f.ReadAt(head[:], start); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptRegion, err, "read payload header")
	}

	length := int64(binary.BigEndian.Uint32(head[:4]))
	scheme := head[4]
	if length < 1 || length > allocated {
		return nil, errors.New(errors.ErrCodeCorruptRegion, "payload length %d exceeds %d allocated bytes", length, allocated)
	}

	payload := io.NewSectionReader(f, start+5, length-1)

	var zr io.ReadCloser
	var err error
	switch scheme {
	case compressionGzip:
		zr, err = gzip.NewReader(payload)
	case compressionZlib:
		zr, err = zlib.NewReader(payload)
	default:
		return nil, errors.New(errors.ErrCodeCorruptRegion, "unknown compression scheme %d", scheme)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptRegion, err, "open compressed payload")
	}
	defer zr.Close()

	root, err := nbt.Parse(zr)
	if err != nil {
		return nil, err
	}
	return ChunkFromNBT(root)
}
