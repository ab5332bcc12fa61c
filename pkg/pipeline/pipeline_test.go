package pipeline

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zlib"

	"github.com/HEPOMAHTIK/MinedMap/pkg/nbt"
	"github.com/HEPOMAHTIK/MinedMap/pkg/render"
	"github.com/HEPOMAHTIK/MinedMap/pkg/world"
)

// quietRunner builds a runner that discards its log output.
func quietRunner() *Runner {
	return NewRunner(log.New(io.Discard))
}

// testChunk builds a chunk whose bottom layer is solid stone.
func testChunk(t *testing.T) *world.Chunk {
	t.Helper()
	blocks := make([]byte, 16*16*16)
	for i := 0; i < 16*16; i++ {
		blocks[i] = 1
	}
	c, err := world.ChunkFromNBT(nbt.Compound{
		"Level": nbt.Compound{
			"Sections": nbt.List{ElemType: nbt.TypeCompound, Elems: []any{
				nbt.Compound{"Y": int8(0), "Blocks": blocks},
			}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// worldWith creates a world directory whose region subdirectory holds the
// given filenames as small dummy files.
func worldWith(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	regionDir := filepath.Join(dir, "region")
	if err := os.Mkdir(regionDir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(regionDir, name), []byte("stub"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestExecuteConvertsAndIsolatesFailures(t *testing.T) {
	worldDir := worldWith(t, "r.0.0.mca", "r.1.0.mca")
	out := t.TempDir()

	chunk := testChunk(t)
	decode := func(path string, visit world.ChunkVisitor) error {
		if filepath.Base(path) == "r.1.0.mca" {
			return fmt.Errorf("injected corruption")
		}
		visit(0, 0, chunk)
		return nil
	}

	result, err := quietRunner().Execute(context.Background(), Options{
		WorldDir:  worldDir,
		OutputDir: out,
		Decode:    decode,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Published != 1 || result.Failed != 1 {
		t.Errorf("result = %+v, want 1 published and 1 failed", result)
	}

	// The failed region still widened the bounds.
	b := result.Bounds
	if b.MinX != 0 || b.MaxX != 1 || b.MinZ != 0 || b.MaxZ != 0 {
		t.Errorf("bounds = %+v", b)
	}

	if _, err := os.Stat(filepath.Join(out, "r.0.0.png")); err != nil {
		t.Error("successful region should have published its tile")
	}
	if _, err := os.Stat(filepath.Join(out, "r.1.0.png")); !os.IsNotExist(err) {
		t.Error("failed region must not publish a tile")
	}
}

func TestExecuteSilentlyRejectsForeignNames(t *testing.T) {
	worldDir := worldWith(t, "r.0.0.mca", "r.01.0.mca", "level.dat", "r.5.5.mca.bak")
	out := t.TempDir()

	chunk := testChunk(t)
	result, err := quietRunner().Execute(context.Background(), Options{
		WorldDir:  worldDir,
		OutputDir: out,
		Decode: func(path string, visit world.ChunkVisitor) error {
			visit(0, 0, chunk)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Rejected != 3 || result.Published != 1 {
		t.Errorf("result = %+v, want 3 rejected and 1 published", result)
	}

	// Rejected names must not leak into the bounds.
	b := result.Bounds
	if b.MinX != 0 || b.MaxX != 0 || b.MinZ != 0 || b.MaxZ != 0 {
		t.Errorf("bounds = %+v, polluted by rejected names", b)
	}
}

func TestExecuteSkipsUpToDate(t *testing.T) {
	worldDir := worldWith(t, "r.0.0.mca")
	out := t.TempDir()

	chunk := testChunk(t)
	decodes := 0
	opts := Options{
		WorldDir:  worldDir,
		OutputDir: out,
		Decode: func(path string, visit world.ChunkVisitor) error {
			decodes++
			visit(0, 0, chunk)
			return nil
		},
	}

	runner := quietRunner()
	if _, err := runner.Execute(context.Background(), opts); err != nil {
		t.Fatalf("first run: %v", err)
	}

	tile := filepath.Join(out, "r.0.0.png")
	firstBytes, err := os.ReadFile(tile)
	if err != nil {
		t.Fatal(err)
	}
	firstStat, err := os.Stat(tile)
	if err != nil {
		t.Fatal(err)
	}

	// Second run with unchanged input: classified up-to-date, tile
	// bytes and mtime untouched.
	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.Skipped != 1 || result.Published != 0 {
		t.Errorf("second run result = %+v, want 1 skipped", result)
	}
	if decodes != 1 {
		t.Errorf("decoder ran %d times, want 1", decodes)
	}

	secondBytes, err := os.ReadFile(tile)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(firstBytes, secondBytes) {
		t.Error("tile bytes changed across an up-to-date run")
	}
	secondStat, err := os.Stat(tile)
	if err != nil {
		t.Fatal(err)
	}
	if !secondStat.ModTime().Equal(firstStat.ModTime()) {
		t.Error("tile mtime changed across an up-to-date run")
	}

	// Force overrides the staleness check.
	opts.Force = true
	result, err = runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if result.Published != 1 {
		t.Errorf("forced run result = %+v, want 1 published", result)
	}
}

func TestExecuteRegeneratesStaleTile(t *testing.T) {
	worldDir := worldWith(t, "r.0.0.mca")
	out := t.TempDir()

	// A tile older than its region is stale.
	tile := filepath.Join(out, "r.0.0.png")
	if err := os.WriteFile(tile, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(tile, old, old); err != nil {
		t.Fatal(err)
	}

	chunk := testChunk(t)
	result, err := quietRunner().Execute(context.Background(), Options{
		WorldDir:  worldDir,
		OutputDir: out,
		Decode: func(path string, visit world.ChunkVisitor) error {
			visit(0, 0, chunk)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Published != 1 {
		t.Errorf("result = %+v, want 1 published", result)
	}
}

func TestExecuteMissingRegionDir(t *testing.T) {
	_, err := quietRunner().Execute(context.Background(), Options{
		WorldDir:  t.TempDir(), // no region subdirectory
		OutputDir: t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected run-fatal error for missing region directory")
	}
}

func TestExecuteValidatesOptions(t *testing.T) {
	if _, err := quietRunner().Execute(context.Background(), Options{}); err == nil {
		t.Fatal("expected error for empty options")
	}
}

// writeRegionFile assembles a real region file with a single chunk in
// slot 0 whose bottom layer is solid stone, zlib-compressed.
func writeRegionFile(t *testing.T, path string) {
	t.Helper()

	var tags bytes.Buffer
	writeTag := func(typ byte, name string) {
		tags.WriteByte(typ)
		binary.Write(&tags, binary.BigEndian, uint16(len(name)))
		tags.WriteString(name)
	}

	blocks := make([]byte, 16*16*16)
	for i := 0; i < 16*16; i++ {
		blocks[i] = 1
	}

	writeTag(10, "")
	writeTag(10, "Level")
	writeTag(9, "Sections")
	tags.WriteByte(10)
	binary.Write(&tags, binary.BigEndian, int32(1))
	writeTag(1, "Y")
	tags.WriteByte(0)
	writeTag(7, "Blocks")
	binary.Write(&tags, binary.BigEndian, int32(len(blocks)))
	tags.Write(blocks)
	tags.WriteByte(0)
	tags.WriteByte(0)
	tags.WriteByte(0)

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	zw.Write(tags.Bytes())
	zw.Close()

	payload := make([]byte, 5+compressed.Len())
	binary.BigEndian.PutUint32(payload, uint32(compressed.Len()+1))
	payload[4] = 2 // zlib
	copy(payload[5:], compressed.Bytes())

	sectors := (len(payload) + 4095) / 4096
	file := make([]byte, 2*4096+sectors*4096)
	binary.BigEndian.PutUint32(file, 2<<8|uint32(sectors))
	copy(file[2*4096:], payload)

	if err := os.WriteFile(path, file, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestExecuteEndToEnd(t *testing.T) {
	worldDir := t.TempDir()
	regionDir := filepath.Join(worldDir, "region")
	if err := os.Mkdir(regionDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeRegionFile(t, filepath.Join(regionDir, "r.0.0.mca"))
	out := t.TempDir()

	result, err := quietRunner().Execute(context.Background(), Options{
		WorldDir:  worldDir,
		OutputDir: out,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Published != 1 {
		t.Fatalf("result = %+v, want 1 published", result)
	}

	f, err := os.Open(filepath.Join(out, "r.0.0.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode tile: %v", err)
	}

	// The stone at (0,0,0) renders with the palette color shaded for
	// height 0.
	c := world.DefaultPalette().Color(1, 0)
	want := color.NRGBA{R: uint8(c >> 24), G: uint8(c >> 16), B: uint8(c >> 8), A: uint8(c)}
	if got := nrgbaAt(t, img, 0, 0); got != want {
		t.Errorf("pixel (0,0) = %+v, want %+v", got, want)
	}

	// The last row and column belong to a chunk the decoder never
	// visited: exactly transparent black.
	if got := nrgbaAt(t, img, render.TileSize-1, render.TileSize-1); got != (color.NRGBA{}) {
		t.Errorf("uncovered pixel = %+v, want transparent black", got)
	}
}

// nrgbaAt reads a pixel's straight-alpha channels from a decoded tile.
func nrgbaAt(t *testing.T, img image.Image, x, y int) color.NRGBA {
	t.Helper()
	n, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("decoded tile is %T, want *image.NRGBA", img)
	}
	return n.NRGBAAt(x, y)
}
