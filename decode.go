// Copyright 2025 Martin Vik
// SPDX-License-Identifier: MIT

package exifedit

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// DecodeMetadata parses a generic metadata byte stream, as produced by
// Metadata.Encode or extracted by a Codec, back into a Metadata container.
// Directories that decode to zero tags are dropped.
func DecodeMetadata(b []byte, opts Options) (*Metadata, error) {
	opts = opts.withDefaults()

	if !bytes.HasPrefix(b, exifHeaderPrefix) {
		return nil, newInvalidFormatErrorf("missing Exif header")
	}
	tiff := b[len(exifHeaderPrefix):]
	if len(tiff) < tiffHeaderSize {
		return nil, fmt.Errorf("exifedit: truncated TIFF header")
	}

	var endian Endian
	switch string(tiff[:2]) {
	case "II":
		endian = LittleEndian
	case "MM":
		endian = BigEndian
	default:
		return nil, newInvalidFormatErrorf("unknown byte order marker %q", tiff[:2])
	}
	bo := endian.byteOrder()
	if bo.Uint16(tiff[2:4]) != tiffMagic {
		return nil, newInvalidFormatErrorf("bad TIFF magic")
	}

	d := &metaDecoder{
		tiff:    tiff,
		bo:      bo,
		opts:    opts,
		m:       &Metadata{endian: endian},
		visited: map[uint32]bool{},
	}

	offset := bo.Uint32(tiff[4:8])
	for nr := uint32(0); offset != 0; nr++ {
		next, err := d.decodeIFD(offset, GroupGeneric, nr)
		if err != nil {
			return nil, err
		}
		offset = next
	}

	d.m.sortIFDs()
	d.m.version = 0
	return d.m, nil
}

type metaDecoder struct {
	tiff []byte
	bo   binary.ByteOrder
	opts Options
	m    *Metadata

	tagCount uint32
	// visited guards against directory pointer loops in hostile input.
	visited map[uint32]bool
}

func (d *metaDecoder) decodeIFD(offset uint32, group Group, nr uint32) (next uint32, err error) {
	if d.visited[offset] {
		return 0, fmt.Errorf("exifedit: IFD pointer loop at offset %d", offset)
	}
	d.visited[offset] = true

	if int64(offset)+2 > int64(len(d.tiff)) {
		return 0, fmt.Errorf("exifedit: IFD offset %d out of bounds", offset)
	}
	entryCount := uint32(d.bo.Uint16(d.tiff[offset:]))
	tableEnd := int64(offset) + 2 + int64(ifdEntrySize)*int64(entryCount) + 4
	if tableEnd > int64(len(d.tiff)) {
		return 0, fmt.Errorf("exifedit: IFD at offset %d truncated", offset)
	}

	for i := uint32(0); i < entryCount; i++ {
		base := offset + 2 + i*ifdEntrySize
		code := d.bo.Uint16(d.tiff[base:])
		typ := DataType(d.bo.Uint16(d.tiff[base+2:]))
		count := d.bo.Uint32(d.tiff[base+4:])

		if subGroup, ok := pointerGroup(code); ok {
			target := d.bo.Uint32(d.tiff[base+8:])
			if _, err := d.decodeIFD(target, subGroup, nr); err != nil {
				return 0, err
			}
			continue
		}

		size, ok := typeSize[typ]
		if !ok {
			d.opts.Warnf("unknown data type %d for tag 0x%04x; skipping", typ, code)
			continue
		}
		valLen64 := uint64(size) * uint64(count)
		if valLen64 > uint64(d.opts.LimitTagSize) {
			d.opts.Warnf("tag 0x%04x value of %d bytes exceeds limit %d; skipping", code, valLen64, d.opts.LimitTagSize)
			continue
		}
		valLen := uint32(valLen64)

		var raw []byte
		if valLen <= 4 {
			raw = d.tiff[base+8 : base+12]
		} else {
			valOffset := d.bo.Uint32(d.tiff[base+8:])
			if int64(valOffset)+int64(valLen) > int64(len(d.tiff)) {
				return 0, fmt.Errorf("exifedit: tag 0x%04x value at offset %d out of bounds", code, valOffset)
			}
			raw = d.tiff[valOffset : valOffset+valLen]
		}

		value, err := decodeValue(typ, count, raw, d.bo)
		if err != nil {
			return 0, fmt.Errorf("exifedit: tag 0x%04x: %w", code, err)
		}

		d.tagCount++
		if d.tagCount > d.opts.LimitNumTags {
			return 0, fmt.Errorf("exifedit: more than %d tags", d.opts.LimitNumTags)
		}

		d.m.EnsureIFD(group, nr).AddTag(Tag{
			code:  code,
			group: group,
			typ:   typ,
			value: value,
		})
	}

	return d.bo.Uint32(d.tiff[tableEnd-4:]), nil
}

func pointerGroup(code uint16) (Group, bool) {
	switch code {
	case exifIFDPointer:
		return GroupExif, true
	case gpsIFDPointer:
		return GroupGPS, true
	case interopIFDPointer:
		return GroupInterop, true
	default:
		return 0, false
	}
}
