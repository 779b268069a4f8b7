// Copyright 2025 Martin Vik
// SPDX-License-Identifier: MIT

package exifedit

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/text/encoding/charmap"
)

// Group classifies the directory a tag belongs to. The generic IFD number
// of the directory distinguishes repeated instances of the same group,
// e.g. the primary image (0) from the thumbnail (1).
type Group uint8

const (
	// GroupGeneric is the primary directory chain (IFD0, IFD1, ...).
	GroupGeneric Group = iota
	// GroupExif is the Exif-private sub-directory.
	GroupExif
	// GroupGPS is the GPS info sub-directory.
	GroupGPS
	// GroupInterop is the interoperability sub-directory.
	GroupInterop
)

func (g Group) String() string {
	switch g {
	case GroupGeneric:
		return "Generic"
	case GroupExif:
		return "Exif"
	case GroupGPS:
		return "GPS"
	case GroupInterop:
		return "Interop"
	default:
		return fmt.Sprintf("Group(%d)", uint8(g))
	}
}

// DataType represents the basic TIFF tag data types.
type DataType uint16

const (
	TypeUnsignedByte  DataType = 1
	TypeASCII         DataType = 2
	TypeUnsignedShort DataType = 3
	TypeUnsignedLong  DataType = 4
	TypeUnsignedRat   DataType = 5
	TypeSignedByte    DataType = 6
	TypeUndef         DataType = 7
	TypeSignedShort   DataType = 8
	TypeSignedLong    DataType = 9
	TypeSignedRat     DataType = 10
	TypeFloat         DataType = 11
	TypeDouble        DataType = 12
)

// Size in bytes of each type.
var typeSize = map[DataType]uint32{
	TypeUnsignedByte:  1,
	TypeASCII:         1,
	TypeUnsignedShort: 2,
	TypeUnsignedLong:  4,
	TypeUnsignedRat:   8,
	TypeSignedByte:    1,
	TypeUndef:         1,
	TypeSignedShort:   2,
	TypeSignedLong:    4,
	TypeSignedRat:     8,
	TypeFloat:         4,
	TypeDouble:        8,
}

// Tag is a single metadata entry: a 16-bit code, the group of the directory
// it belongs to, and a typed payload. The payload is a discriminated value
// keyed by the DataType:
//
//	TypeUnsignedByte, TypeUndef   []byte
//	TypeASCII                     string
//	TypeUnsignedShort             []uint16
//	TypeUnsignedLong              []uint32
//	TypeUnsignedRat               []Rat[uint32]
//	TypeSignedByte                []int8
//	TypeSignedShort               []int16
//	TypeSignedLong                []int32
//	TypeSignedRat                 []Rat[int32]
//	TypeFloat                     []float32
//	TypeDouble                    []float64
//
// The in-file byte representation of the payload depends on the endianness
// of the owning Metadata container.
type Tag struct {
	code  uint16
	group Group
	typ   DataType
	value any
}

// NewTag returns a Tag after validating that value matches the declared
// data type.
func NewTag(code uint16, group Group, typ DataType, value any) (Tag, error) {
	if err := validateValue(typ, value); err != nil {
		return Tag{}, fmt.Errorf("tag 0x%04x: %w", code, err)
	}
	return Tag{code: code, group: group, typ: typ, value: value}, nil
}

// Code returns the 16-bit numeric tag code.
func (t Tag) Code() uint16 {
	return t.code
}

// Group returns the group classifier of the tag.
func (t Tag) Group() Group {
	return t.group
}

// Type returns the data type of the tag payload.
func (t Tag) Type() DataType {
	return t.typ
}

// Value returns the typed payload. See the Tag documentation for the
// mapping from DataType to Go type.
func (t Tag) Value() any {
	return t.value
}

func (t Tag) String() string {
	v := t.value
	if s, ok := v.(string); ok {
		v = printableString(s)
	}
	return fmt.Sprintf("%s(%s)=%v", TagName(t.code), t.group, v)
}

// Equal reports whether two tags have the same code, group, type and
// payload. Used by go-cmp.
func (t Tag) Equal(o Tag) bool {
	if t.code != o.code || t.group != o.group || t.typ != o.typ {
		return false
	}
	return valuesEqual(t.typ, t.value, o.value)
}

func valuesEqual(typ DataType, a, b any) bool {
	switch typ {
	case TypeUnsignedRat:
		av, aok := a.([]Rat[uint32])
		bv, bok := b.([]Rat[uint32])
		if !aok || !bok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i].Num() != bv[i].Num() || av[i].Den() != bv[i].Den() {
				return false
			}
		}
		return true
	case TypeSignedRat:
		av, aok := a.([]Rat[int32])
		bv, bok := b.([]Rat[int32])
		if !aok || !bok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i].Num() != bv[i].Num() || av[i].Den() != bv[i].Den() {
				return false
			}
		}
		return true
	default:
		return sliceValuesEqual(a, b)
	}
}

func sliceValuesEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []byte:
		bv, ok := b.([]byte)
		return ok && sliceEq(av, bv)
	case []int8:
		bv, ok := b.([]int8)
		return ok && sliceEq(av, bv)
	case []uint16:
		bv, ok := b.([]uint16)
		return ok && sliceEq(av, bv)
	case []int16:
		bv, ok := b.([]int16)
		return ok && sliceEq(av, bv)
	case []uint32:
		bv, ok := b.([]uint32)
		return ok && sliceEq(av, bv)
	case []int32:
		bv, ok := b.([]int32)
		return ok && sliceEq(av, bv)
	case []float32:
		bv, ok := b.([]float32)
		return ok && sliceEq(av, bv)
	case []float64:
		bv, ok := b.([]float64)
		return ok && sliceEq(av, bv)
	default:
		return false
	}
}

func sliceEq[E comparable](a, b []E) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func validateValue(typ DataType, value any) error {
	ok := false
	switch typ {
	case TypeUnsignedByte, TypeUndef:
		_, ok = value.([]byte)
	case TypeASCII:
		_, ok = value.(string)
	case TypeUnsignedShort:
		_, ok = value.([]uint16)
	case TypeUnsignedLong:
		_, ok = value.([]uint32)
	case TypeUnsignedRat:
		_, ok = value.([]Rat[uint32])
	case TypeSignedByte:
		_, ok = value.([]int8)
	case TypeSignedShort:
		_, ok = value.([]int16)
	case TypeSignedLong:
		_, ok = value.([]int32)
	case TypeSignedRat:
		_, ok = value.([]Rat[int32])
	case TypeFloat:
		_, ok = value.([]float32)
	case TypeDouble:
		_, ok = value.([]float64)
	default:
		return fmt.Errorf("unknown data type %d", typ)
	}
	if !ok {
		return fmt.Errorf("value %T does not match data type %d", value, typ)
	}
	return nil
}

// encodeValue serializes the payload with the given byte order and returns
// the raw value bytes together with the TIFF value count. ASCII strings are
// encoded as Latin-1 with a trailing NUL, the way EXIF stores them.
func (t Tag) encodeValue(bo binary.AppendByteOrder) (data []byte, count uint32, err error) {
	switch t.typ {
	case TypeUnsignedByte, TypeUndef:
		v := t.value.([]byte)
		return v, uint32(len(v)), nil
	case TypeSignedByte:
		v := t.value.([]int8)
		data = make([]byte, len(v))
		for i, b := range v {
			data[i] = byte(b)
		}
		return data, uint32(len(v)), nil
	case TypeASCII:
		s := t.value.(string)
		data, err = charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, 0, fmt.Errorf("tag 0x%04x: ASCII value is not Latin-1 encodable: %w", t.code, err)
		}
		data = append(data, 0)
		return data, uint32(len(data)), nil
	case TypeUnsignedShort:
		v := t.value.([]uint16)
		for _, e := range v {
			data = bo.AppendUint16(data, e)
		}
		return data, uint32(len(v)), nil
	case TypeSignedShort:
		v := t.value.([]int16)
		for _, e := range v {
			data = bo.AppendUint16(data, uint16(e))
		}
		return data, uint32(len(v)), nil
	case TypeUnsignedLong:
		v := t.value.([]uint32)
		for _, e := range v {
			data = bo.AppendUint32(data, e)
		}
		return data, uint32(len(v)), nil
	case TypeSignedLong:
		v := t.value.([]int32)
		for _, e := range v {
			data = bo.AppendUint32(data, uint32(e))
		}
		return data, uint32(len(v)), nil
	case TypeUnsignedRat:
		v := t.value.([]Rat[uint32])
		for _, e := range v {
			data = bo.AppendUint32(data, e.Num())
			data = bo.AppendUint32(data, e.Den())
		}
		return data, uint32(len(v)), nil
	case TypeSignedRat:
		v := t.value.([]Rat[int32])
		for _, e := range v {
			data = bo.AppendUint32(data, uint32(e.Num()))
			data = bo.AppendUint32(data, uint32(e.Den()))
		}
		return data, uint32(len(v)), nil
	case TypeFloat:
		v := t.value.([]float32)
		for _, e := range v {
			data = bo.AppendUint32(data, math.Float32bits(e))
		}
		return data, uint32(len(v)), nil
	case TypeDouble:
		v := t.value.([]float64)
		for _, e := range v {
			data = bo.AppendUint64(data, math.Float64bits(e))
		}
		return data, uint32(len(v)), nil
	default:
		return nil, 0, fmt.Errorf("tag 0x%04x: unknown data type %d", t.code, t.typ)
	}
}

// decodeValue is the inverse of encodeValue: it builds the typed payload
// from count values in raw.
func decodeValue(typ DataType, count uint32, raw []byte, bo binary.ByteOrder) (any, error) {
	size, ok := typeSize[typ]
	if !ok {
		return nil, fmt.Errorf("unknown data type %d", typ)
	}
	if uint32(len(raw)) < size*count {
		return nil, fmt.Errorf("value truncated: need %d bytes, have %d", size*count, len(raw))
	}
	n := int(count)
	switch typ {
	case TypeUnsignedByte, TypeUndef:
		v := make([]byte, n)
		copy(v, raw[:n])
		return v, nil
	case TypeSignedByte:
		v := make([]int8, n)
		for i := range v {
			v[i] = int8(raw[i])
		}
		return v, nil
	case TypeASCII:
		b, _ := charmap.ISO8859_1.NewDecoder().Bytes(trimBytesNulls(raw[:n]))
		return string(b), nil
	case TypeUnsignedShort:
		v := make([]uint16, n)
		for i := range v {
			v[i] = bo.Uint16(raw[i*2:])
		}
		return v, nil
	case TypeSignedShort:
		v := make([]int16, n)
		for i := range v {
			v[i] = int16(bo.Uint16(raw[i*2:]))
		}
		return v, nil
	case TypeUnsignedLong:
		v := make([]uint32, n)
		for i := range v {
			v[i] = bo.Uint32(raw[i*4:])
		}
		return v, nil
	case TypeSignedLong:
		v := make([]int32, n)
		for i := range v {
			v[i] = int32(bo.Uint32(raw[i*4:]))
		}
		return v, nil
	case TypeUnsignedRat:
		v := make([]Rat[uint32], n)
		for i := range v {
			v[i] = newRatRaw(bo.Uint32(raw[i*8:]), bo.Uint32(raw[i*8+4:]))
		}
		return v, nil
	case TypeSignedRat:
		v := make([]Rat[int32], n)
		for i := range v {
			v[i] = newRatRaw(int32(bo.Uint32(raw[i*8:])), int32(bo.Uint32(raw[i*8+4:])))
		}
		return v, nil
	case TypeFloat:
		v := make([]float32, n)
		for i := range v {
			v[i] = math.Float32frombits(bo.Uint32(raw[i*4:]))
		}
		return v, nil
	case TypeDouble:
		v := make([]float64, n)
		for i := range v {
			v[i] = math.Float64frombits(bo.Uint64(raw[i*8:]))
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown data type %d", typ)
	}
}
