package world

import (
	"github.com/HEPOMAHTIK/MinedMap/pkg/errors"
	"github.com/HEPOMAHTIK/MinedMap/pkg/nbt"
)

const (
	// ChunkSize is the number of blocks along one horizontal axis of a chunk.
	ChunkSize = 16

	// sectionHeight is the number of block layers in one chunk section.
	sectionHeight = 16

	// maxSections is the number of vertical sections in a chunk column.
	maxSections = 16
)

// section is one 16×16×16 slab of blocks. Block ids are indexed
// (y*ChunkSize + z)*ChunkSize + x.
type section struct {
	blocks []byte
}

// Chunk is one decoded chunk column: up to 16 vertical sections indexed by
// their Y coordinate. Sections absent from the source data stay nil and
// read as air.
type Chunk struct {
	sections [maxSections]*section
}

// ChunkFromNBT builds a Chunk from a parsed chunk NBT tree
// (root → Level → Sections).
func ChunkFromNBT(root nbt.Compound) (*Chunk, error) {
	level, ok := root.Compound("Level")
	if !ok {
		return nil, errors.New(errors.ErrCodeCorruptNBT, "chunk has no Level compound")
	}

	c := &Chunk{}

	sections, ok := level.List("Sections")
	if !ok {
		// A chunk that has been created but never populated carries no
		// sections; it renders fully transparent.
		return c, nil
	}

	for _, elem := range sections.Elems {
		sec, ok := elem.(nbt.Compound)
		if !ok {
			return nil, errors.New(errors.ErrCodeCorruptNBT, "section is not a compound")
		}
		y, ok := sec.Byte("Y")
		if !ok || y < 0 || int(y) >= maxSections {
			return nil, errors.New(errors.ErrCodeCorruptNBT, "section has invalid Y index")
		}
		blocks, ok := sec.ByteArray("Blocks")
		if !ok || len(blocks) != ChunkSize*ChunkSize*sectionHeight {
			return nil, errors.New(errors.ErrCodeCorruptNBT, "section %d has invalid Blocks array", y)
		}
		c.sections[y] = &section{blocks: blocks}
	}

	return c, nil
}

// blockAt returns the block id at chunk-local (x, y, z), where y spans the
// full column height. Missing sections read as air (0).
func (c *Chunk) blockAt(x, y, z int) uint8 {
	sec := c.sections[y/sectionHeight]
	if sec == nil {
		return 0
	}
	return sec.blocks[((y%sectionHeight)*ChunkSize+z)*ChunkSize+x]
}

// Blocks is the top visible layer of a chunk: one resolved RGBA color per
// block column, indexed [x][z]. Columns with no visible block stay 0
// (transparent black).
type Blocks struct {
	Colors [ChunkSize][ChunkSize]uint32
}

// TopLayer scans each block column from the highest present section down
// and resolves the first visible block through the palette. The block's
// height shades its color so terrain relief stays readable.
func (c *Chunk) TopLayer(p *Palette) *Blocks {
	top := -1
	for y := maxSections - 1; y >= 0; y-- {
		if c.sections[y] != nil {
			top = (y+1)*sectionHeight - 1
			break
		}
	}

	layer := &Blocks{}
	if top < 0 {
		return layer
	}

	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			for y := top; y >= 0; y-- {
				id := c.blockAt(x, y, z)
				if !p.Visible(id) {
					continue
				}
				layer.Colors[x][z] = p.Color(id, uint8(y))
				break
			}
		}
	}

	return layer
}
