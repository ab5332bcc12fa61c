// Package nbt implements the read side of the NBT (Named Binary Tag)
// serialization format used by Minecraft world data.
//
// NBT is a tree of tagged values: big-endian scalars, length-prefixed
// strings and arrays, homogeneous lists, and string-keyed compounds.
// This package parses a complete tree into Go values and provides typed
// navigation helpers for walking it.
//
// # Usage
//
//	root, err := nbt.Parse(r)
//	if err != nil {
//	    return err
//	}
//	level, ok := root.Compound("Level")
package nbt

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/HEPOMAHTIK/MinedMap/pkg/errors"
)

// Type identifies the payload kind of a tag.
type Type byte

// Tag types as defined by the NBT format.
const (
	TypeEnd Type = iota
	TypeByte
	TypeShort
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeByteArray
	TypeString
	TypeList
	TypeCompound
	TypeIntArray
	TypeLongArray
)

// maxDepth bounds the nesting of compounds and lists so that adversarial
// input cannot exhaust the stack.
const maxDepth = 64

// Compound is a string-keyed collection of tag values. Values are one of:
// int8, int16, int32, int64, float32, float64, []byte, string, List,
// Compound, []int32, []int64.
type Compound map[string]any

// List is a homogeneous sequence of tag values.
type List struct {
	ElemType Type
	Elems    []any
}

// Parse reads one complete NBT tree from r. The root tag must be a
// compound; its name is discarded.
func Parse(r io.Reader) (Compound, error) {
	br := bufio.NewReader(r)

	typ, err := readByte(br)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptNBT, err, "read root tag type")
	}
	if Type(typ) != TypeCompound {
		return nil, errors.New(errors.ErrCodeCorruptNBT, "root tag is %d, want compound", typ)
	}
	if _, err := readString(br); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptNBT, err, "read root tag name")
	}

	c, err := readCompound(br, 0)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func readCompound(r *bufio.Reader, depth int) (Compound, error) {
	if depth > maxDepth {
		return nil, errors.New(errors.ErrCodeCorruptNBT, "nesting deeper than %d levels", maxDepth)
	}

	c := make(Compound)
	for {
		typ, err := readByte(r)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCorruptNBT, err, "read tag type")
		}
		if Type(typ) == TypeEnd {
			return c, nil
		}

		name, err := readString(r)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCorruptNBT, err, "read tag name")
		}
		v, err := readPayload(r, Type(typ), depth+1)
		if err != nil {
			return nil, err
		}
		c[name] = v
	}
}

func readPayload(r *bufio.Reader, typ Type, depth int) (any, error) {
	if depth > maxDepth {
		return nil, errors.New(errors.ErrCodeCorruptNBT, "nesting deeper than %d levels", maxDepth)
	}

	switch typ {
	case TypeByte:
		b, err := readByte(r)
		return int8(b), wrapRead(err)
	case TypeShort:
		var v int16
		err := binary.Read(r, binary.BigEndian, &v)
		return v, wrapRead(err)
	case TypeInt:
		var v int32
		err := binary.Read(r, binary.BigEndian, &v)
		return v, wrapRead(err)
	case TypeLong:
		var v int64
		err := binary.Read(r, binary.BigEndian, &v)
		return v, wrapRead(err)
	case TypeFloat:
		var v float32
		err := binary.Read(r, binary.BigEndian, &v)
		return v, wrapRead(err)
	case TypeDouble:
		var v float64
		err := binary.Read(r, binary.BigEndian, &v)
		return v, wrapRead(err)
	case TypeByteArray:
		n, err := readLength(r)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, wrapRead(err)
		}
		return buf, nil
	case TypeString:
		s, err := readString(r)
		return s, wrapRead(err)
	case TypeList:
		return readList(r, depth)
	case TypeCompound:
		return readCompound(r, depth)
	case TypeIntArray:
		n, err := readLength(r)
		if err != nil {
			return nil, err
		}
		vals := make([]int32, n)
		if err := binary.Read(r, binary.BigEndian, vals); err != nil {
			return nil, wrapRead(err)
		}
		return vals, nil
	case TypeLongArray:
		n, err := readLength(r)
		if err != nil {
			return nil, err
		}
		vals := make([]int64, n)
		if err := binary.Read(r, binary.BigEndian, vals); err != nil {
			return nil, wrapRead(err)
		}
		return vals, nil
	default:
		return nil, errors.New(errors.ErrCodeCorruptNBT, "unknown tag type %d", typ)
	}
}

func readList(r *bufio.Reader, depth int) (List, error) {
	typ, err := readByte(r)
	if err != nil {
		return List{}, wrapRead(err)
	}
	n, err := readLength(r)
	if err != nil {
		return List{}, err
	}

	l := List{ElemType: Type(typ)}
	if n == 0 {
		return l, nil
	}
	if Type(typ) == TypeEnd {
		return List{}, errors.New(errors.ErrCodeCorruptNBT, "non-empty list of end tags")
	}

	l.Elems = make([]any, 0, min(n, listPrealloc))
	for i := 0; i < n; i++ {
		v, err := readPayload(r, Type(typ), depth+1)
		if err != nil {
			return List{}, err
		}
		l.Elems = append(l.Elems, v)
	}
	return l, nil
}

// listPrealloc caps the initial allocation for list elements so a forged
// length cannot allocate unbounded memory before the read fails.
const listPrealloc = 4096

func readByte(r *bufio.Reader) (byte, error) {
	return r.ReadByte()
}

func readString(r *bufio.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// readLength reads a signed 32-bit array/list length and rejects negatives.
func readLength(r *bufio.Reader) (int, error) {
	var n int32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return 0, wrapRead(err)
	}
	if n < 0 {
		return 0, errors.New(errors.ErrCodeCorruptNBT, "negative length %d", n)
	}
	return int(n), nil
}

func wrapRead(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(errors.ErrCodeCorruptNBT, err, "read tag payload")
}

// Compound returns the compound stored under key.
func (c Compound) Compound(key string) (Compound, bool) {
	v, ok := c[key].(Compound)
	return v, ok
}

// List returns the list stored under key.
func (c Compound) List(key string) (List, bool) {
	v, ok := c[key].(List)
	return v, ok
}

// ByteArray returns the byte array stored under key.
func (c Compound) ByteArray(key string) ([]byte, bool) {
	v, ok := c[key].([]byte)
	return v, ok
}

// Byte returns the int8 stored under key.
func (c Compound) Byte(key string) (int8, bool) {
	v, ok := c[key].(int8)
	return v, ok
}

// Int returns the int32 stored under key.
func (c Compound) Int(key string) (int32, bool) {
	v, ok := c[key].(int32)
	return v, ok
}

// Long returns the int64 stored under key.
func (c Compound) Long(key string) (int64, bool) {
	v, ok := c[key].(int64)
	return v, ok
}

// String returns the string stored under key.
func (c Compound) String(key string) (string, bool) {
	v, ok := c[key].(string)
	return v, ok
}
