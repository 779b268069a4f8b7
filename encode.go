// Copyright 2025 Martin Vik
// SPDX-License-Identifier: MIT

package exifedit

import (
	"sort"
)

// The generic byte stream is an Exif stream: the fixed 6-byte Exif header
// followed by a TIFF structure. All offsets are relative to the start of
// the TIFF header.
var exifHeaderPrefix = []byte("Exif\x00\x00")

const (
	tiffMagic      = 0x002a
	tiffHeaderSize = 8
	ifdEntrySize   = 12
)

// ifdEntry is one 12-byte directory entry about to be serialized. Exactly
// one of data and ptr is set: data carries raw value bytes, ptr links to a
// sub-directory block.
type ifdEntry struct {
	code  uint16
	typ   DataType
	count uint32
	data  []byte
	ptr   *ifdBlock
}

// ifdBlock is one directory in its physical form: the sorted entry list
// plus the block's assigned offset. next links primary blocks into the
// IFD0 → IFD1 chain.
type ifdBlock struct {
	entries []ifdEntry
	offset  uint32
	next    *ifdBlock
}

func (b *ifdBlock) size() uint32 {
	s := uint32(2 + ifdEntrySize*len(b.entries) + 4)
	for _, e := range b.entries {
		if e.ptr == nil && len(e.data) > 4 {
			s += uint32(len(e.data) + len(e.data)%2)
		}
	}
	return s
}

func (b *ifdBlock) addPointer(code uint16, target *ifdBlock) {
	b.entries = append(b.entries, ifdEntry{
		code:  code,
		typ:   TypeUnsignedLong,
		count: 1,
		ptr:   target,
	})
}

func (b *ifdBlock) sortEntries() {
	sort.SliceStable(b.entries, func(i, j int) bool {
		return b.entries[i].code < b.entries[j].code
	})
}

// Encode serializes the endianness and all directories into one flat,
// container-agnostic byte stream. Sub-directories (Exif, GPS, Interop) are
// attached to the primary directory of their generic IFD number through
// pointer tags; primary directories are chained through the next-IFD
// offset. A container without directories encodes as a single empty IFD0
// so that the stream is always well formed.
func (m *Metadata) Encode() ([]byte, error) {
	abo := m.endian.appendByteOrder()

	nrs := m.genericIFDNrs()

	var blocks []*ifdBlock
	var primaries []*ifdBlock

	for _, nr := range nrs {
		primary, err := m.newBlock(GroupGeneric, nr)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, primary)
		primaries = append(primaries, primary)

		var exifBlock *ifdBlock
		if m.IFD(GroupExif, nr) != nil {
			if exifBlock, err = m.newBlock(GroupExif, nr); err != nil {
				return nil, err
			}
			primary.addPointer(exifIFDPointer, exifBlock)
			blocks = append(blocks, exifBlock)
		}
		if m.IFD(GroupGPS, nr) != nil {
			gpsBlock, err := m.newBlock(GroupGPS, nr)
			if err != nil {
				return nil, err
			}
			primary.addPointer(gpsIFDPointer, gpsBlock)
			blocks = append(blocks, gpsBlock)
		}
		if m.IFD(GroupInterop, nr) != nil {
			interopBlock, err := m.newBlock(GroupInterop, nr)
			if err != nil {
				return nil, err
			}
			// The interoperability directory conventionally hangs off the
			// Exif directory; fall back to the primary when there is none.
			if exifBlock != nil {
				exifBlock.addPointer(interopIFDPointer, interopBlock)
			} else {
				primary.addPointer(interopIFDPointer, interopBlock)
			}
			blocks = append(blocks, interopBlock)
		}
	}

	for i := 0; i+1 < len(primaries); i++ {
		primaries[i].next = primaries[i+1]
	}

	off := uint32(tiffHeaderSize)
	for _, b := range blocks {
		b.sortEntries()
		b.offset = off
		off += b.size()
	}

	out := make([]byte, 0, len(exifHeaderPrefix)+int(off))
	out = append(out, exifHeaderPrefix...)
	if m.endian == BigEndian {
		out = append(out, 'M', 'M')
	} else {
		out = append(out, 'I', 'I')
	}
	out = abo.AppendUint16(out, tiffMagic)
	out = abo.AppendUint32(out, tiffHeaderSize)

	for _, b := range blocks {
		out = abo.AppendUint16(out, uint16(len(b.entries)))
		extOffset := b.offset + uint32(2+ifdEntrySize*len(b.entries)+4)
		var ext []byte
		for _, e := range b.entries {
			out = abo.AppendUint16(out, e.code)
			out = abo.AppendUint16(out, uint16(e.typ))
			out = abo.AppendUint32(out, e.count)
			switch {
			case e.ptr != nil:
				out = abo.AppendUint32(out, e.ptr.offset)
			case len(e.data) <= 4:
				var cell [4]byte
				copy(cell[:], e.data)
				out = append(out, cell[:]...)
			default:
				out = abo.AppendUint32(out, extOffset+uint32(len(ext)))
				ext = append(ext, e.data...)
				if len(e.data)%2 == 1 {
					ext = append(ext, 0)
				}
			}
		}
		var next uint32
		if b.next != nil {
			next = b.next.offset
		}
		out = abo.AppendUint32(out, next)
		out = append(out, ext...)
	}

	return out, nil
}

// newBlock builds the physical entry list for the directory with the given
// identity. A nil directory yields an empty block.
func (m *Metadata) newBlock(group Group, nr uint32) (*ifdBlock, error) {
	b := &ifdBlock{}
	d := m.IFD(group, nr)
	if d == nil {
		return b, nil
	}
	abo := m.endian.appendByteOrder()
	for _, t := range d.tags {
		data, count, err := t.encodeValue(abo)
		if err != nil {
			return nil, err
		}
		b.entries = append(b.entries, ifdEntry{
			code:  t.code,
			typ:   t.typ,
			count: count,
			data:  data,
		})
	}
	return b, nil
}

// genericIFDNrs returns the sorted distinct generic IFD numbers present in
// the container, or [0] when the container is empty.
func (m *Metadata) genericIFDNrs() []uint32 {
	seen := map[uint32]bool{}
	var nrs []uint32
	for _, d := range m.ifds {
		if !seen[d.genericIFDNr] {
			seen[d.genericIFDNr] = true
			nrs = append(nrs, d.genericIFDNr)
		}
	}
	if len(nrs) == 0 {
		return []uint32{0}
	}
	sort.Slice(nrs, func(i, j int) bool { return nrs[i] < nrs[j] })
	return nrs
}
