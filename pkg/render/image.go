// Package render composites decoded region data into pixel buffers and
// persists them as PNG tiles.
//
// The three pieces mirror the stages of one region's conversion: Image is
// the square pixel buffer chunks are drawn into, NeedsUpdate decides
// whether a tile must be regenerated at all, and TileWriter encodes and
// atomically publishes the finished buffer.
package render

import (
	"encoding/binary"
	"image"

	"github.com/HEPOMAHTIK/MinedMap/pkg/world"
)

// TileSize is the side length of a region tile in pixels: one pixel per
// block, 32 chunks of 16 blocks along each axis.
const TileSize = world.RegionSize * world.ChunkSize

// Image is a square TileSize×TileSize pixel buffer. Pixels are stored in
// one contiguous row-major allocation, 4 bytes per pixel in RGBA channel
// order (the network byte order of the 32-bit color values), and start
// zero-initialized: fully transparent black. Chunks the decoder never
// visits leave their area transparent, which is an observable hole rather
// than an error.
type Image struct {
	pix []uint8
}

// NewImage allocates a zeroed tile buffer.
func NewImage() *Image {
	return &Image{pix: make([]uint8, TileSize*TileSize*4)}
}

// SetPixel stores a 32-bit RGBA color (0xRRGGBBAA) at the given position
// in network byte order.
func (img *Image) SetPixel(row, col int, c uint32) {
	binary.BigEndian.PutUint32(img.pix[(row*TileSize+col)*4:], c)
}

// PixelAt returns the color stored at the given position.
func (img *Image) PixelAt(row, col int) uint32 {
	return binary.BigEndian.Uint32(img.pix[(row*TileSize+col)*4:])
}

// DrawChunk writes one chunk's top layer into the buffer region covered by
// chunk position (cx, cz). Each destination pixel is written exactly once
// per conversion; there is no blending or overdraw resolution.
func (img *Image) DrawChunk(cx, cz int, layer *world.Blocks) {
	for u := 0; u < world.ChunkSize; u++ {
		for v := 0; v < world.ChunkSize; v++ {
			img.SetPixel(cz*world.ChunkSize+v, cx*world.ChunkSize+u, layer.Colors[u][v])
		}
	}
}

// NRGBA returns a view of the buffer as a stdlib image for the PNG
// encoder. The returned image aliases the buffer; it is not a copy.
func (img *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    img.pix,
		Stride: TileSize * 4,
		Rect:   image.Rect(0, 0, TileSize, TileSize),
	}
}
