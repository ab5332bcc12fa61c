package world

import (
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/HEPOMAHTIK/MinedMap/pkg/errors"
)

// Palette maps block ids to base RGBA colors. Ids without an entry are
// invisible: the top-layer scan passes through them.
type Palette struct {
	colors map[uint8]uint32
}

// defaultBlockColors covers the common terrain blocks. Colors are 32-bit
// RGBA values (0xRRGGBBAA); alpha is always opaque here, transparency
// comes from ids that have no entry at all.
var defaultBlockColors = map[uint8]uint32{
	1:   0x7d7d7dff, // stone
	2:   0x56812dff, // grass
	3:   0x8a6142ff, // dirt
	4:   0x757575ff, // cobblestone
	5:   0x9c7f4eff, // planks
	7:   0x333333ff, // bedrock
	8:   0x2e43f4ff, // flowing water
	9:   0x2e43f4ff, // water
	10:  0xd45a12ff, // flowing lava
	11:  0xd45a12ff, // lava
	12:  0xdbd3a0ff, // sand
	13:  0x857b7bff, // gravel
	14:  0x8f8b7cff, // gold ore
	15:  0x87827eff, // iron ore
	16:  0x737373ff, // coal ore
	17:  0x665132ff, // log
	18:  0x22570cff, // leaves
	24:  0xd5cd94ff, // sandstone
	35:  0xdededeff, // wool
	43:  0xa8a8a8ff, // double stone slab
	44:  0xa8a8a8ff, // stone slab
	45:  0x9c5e50ff, // bricks
	48:  0x5c6b5cff, // mossy cobblestone
	49:  0x14121eff, // obsidian
	56:  0x818c8fff, // diamond ore
	60:  0x734b2dff, // farmland
	78:  0xf0fbfbff, // snow layer
	79:  0x7dadffff, // ice
	80:  0xf0fbfbff, // snow block
	82:  0x9ea4b0ff, // clay
	87:  0x6f3634ff, // netherrack
	88:  0x554134ff, // soul sand
	89:  0x897141ff, // glowstone
	98:  0x7d7d7dff, // stone bricks
	110: 0x6a5a60ff, // mycelium
	159: 0xb1988fff, // stained clay
	174: 0xa0c2f0ff, // packed ice
	179: 0xa85a22ff, // red sandstone
}

// DefaultPalette returns the built-in block color table.
func DefaultPalette() *Palette {
	colors := make(map[uint8]uint32, len(defaultBlockColors))
	for id, c := range defaultBlockColors {
		colors[id] = c
	}
	return &Palette{colors: colors}
}

// Visible reports whether the block id renders at all.
func (p *Palette) Visible(id uint8) bool {
	_, ok := p.colors[id]
	return ok
}

// Color resolves the shaded color of a block. The block's height scales
// the RGB channels between 50% and 100% so higher terrain renders
// brighter; alpha is preserved.
func (p *Palette) Color(id uint8, height uint8) uint32 {
	base, ok := p.colors[id]
	if !ok {
		return 0
	}

	shade := func(c uint32) uint32 {
		return c * (255 + uint32(height)) / 510
	}

	r := shade(base >> 24 & 0xff)
	g := shade(base >> 16 & 0xff)
	b := shade(base >> 8 & 0xff)
	a := base & 0xff

	return r<<24 | g<<16 | b<<8 | a
}

// paletteFile is the TOML schema for palette overrides:
//
//	[blocks]
//	"2" = "#3aa02cff"
//	"20" = ""         # empty string removes an entry
type paletteFile struct {
	Blocks map[string]string `toml:"blocks"`
}

// LoadPalette reads a TOML override file and applies it over the default
// table. Entries replace or add colors by block id; an empty color string
// deletes the entry, making the block invisible.
func LoadPalette(path string) (*Palette, error) {
	p := DefaultPalette()

	var file paletteFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse palette %s", path)
	}

	for key, value := range file.Blocks {
		id, err := strconv.ParseUint(key, 10, 8)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "palette %s: invalid block id %q", path, key)
		}
		if value == "" {
			delete(p.colors, uint8(id))
			continue
		}
		hex, ok := strings.CutPrefix(value, "#")
		if !ok || len(hex) != 8 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "palette %s: invalid color %q for block %q", path, value, key)
		}
		c, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "palette %s: invalid color %q for block %q", path, value, key)
		}
		p.colors[uint8(id)] = uint32(c)
	}

	return p, nil
}
