// Copyright 2025 Martin Vik
// SPDX-License-Identifier: MIT

package exifedit

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// Endian is the byte order governing multi-byte integer interpretation of
// the tag payloads of a Metadata container.
type Endian uint8

const (
	// LittleEndian is the "II" (Intel) byte order.
	LittleEndian Endian = iota
	// BigEndian is the "MM" (Motorola) byte order.
	BigEndian
)

func (e Endian) String() string {
	switch e {
	case LittleEndian:
		return "LittleEndian"
	case BigEndian:
		return "BigEndian"
	default:
		return fmt.Sprintf("Endian(%d)", uint8(e))
	}
}

func (e Endian) byteOrder() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (e Endian) appendByteOrder() binary.AppendByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Metadata owns the endianness and the ordered collection of image file
// directories for one image.
//
// Metadata is not safe for concurrent use. A TagIterator must be fully
// consumed before the container or any of its directories is mutated again;
// the iterator panics if it detects interleaved mutation.
type Metadata struct {
	endian Endian
	ifds   []*ImageFileDirectory

	// version is bumped on every mutation of the container or of its
	// attached directories and guards live iterators against traversal of
	// a changed container.
	version uint64
}

// NewMetadata returns an empty container with little-endian byte order.
func NewMetadata() *Metadata {
	return &Metadata{endian: LittleEndian}
}

// Endianness returns the byte order of the container.
func (m *Metadata) Endianness() Endian {
	return m.endian
}

// SetEndianness sets the byte order used when the container is encoded.
func (m *Metadata) SetEndianness(e Endian) {
	m.endian = e
	m.version++
}

// IFDs returns the directories in canonical order. The returned slice is a
// view; callers must not modify it.
func (m *Metadata) IFDs() []*ImageFileDirectory {
	return m.ifds
}

// IFD returns the directory with the given identity, or nil if the
// container has none. Absence is a normal result, not an error.
func (m *Metadata) IFD(group Group, genericIFDNr uint32) *ImageFileDirectory {
	for _, d := range m.ifds {
		if d.group == group && d.genericIFDNr == genericIFDNr {
			return d
		}
	}
	return nil
}

// EnsureIFD returns the directory with the given identity, creating an
// empty one if the container has none. Creation re-sorts the directory
// collection into canonical order.
func (m *Metadata) EnsureIFD(group Group, genericIFDNr uint32) *ImageFileDirectory {
	if d := m.IFD(group, genericIFDNr); d != nil {
		return d
	}
	d := NewIFD(group, genericIFDNr)
	d.containerVersion = &m.version
	m.ifds = append(m.ifds, d)
	m.sortIFDs()
	m.version++
	return d
}

// sortIFDs restores the canonical order: by generic IFD number, then group.
func (m *Metadata) sortIFDs() {
	sort.SliceStable(m.ifds, func(i, j int) bool {
		a, b := m.ifds[i], m.ifds[j]
		if a.genericIFDNr != b.genericIFDNr {
			return a.genericIFDNr < b.genericIFDNr
		}
		return a.group < b.group
	})
}

// TagsOf returns an iterator over all tags whose code equals the code of t.
func (m *Metadata) TagsOf(t Tag) *TagIterator {
	return m.TagsByCode(t.Code())
}

// TagsByCode returns an iterator over all tags with the given code, across
// all directories in container order.
func (m *Metadata) TagsByCode(code uint16) *TagIterator {
	return &TagIterator{
		m:       m,
		version: m.version,
		code:    code,
	}
}

// TagIterator is a lazy, single-pass, forward-only traversal over all
// directories of a Metadata container, yielding every tag with a requested
// code. It scans directories in container order and tags in storage order.
//
// The container must not be mutated while the iterator is in use; Next
// panics if it detects that.
type TagIterator struct {
	m        *Metadata
	version  uint64
	code     uint16
	ifdIndex int
	tagIndex int
}

// Next returns the next matching tag, or false once all directories are
// consumed. The returned pointer references the tag stored in the
// container; it stays valid until the owning directory is mutated.
func (it *TagIterator) Next() (*Tag, bool) {
	if it.version != it.m.version {
		panic("exifedit: Metadata mutated during tag iteration")
	}
	for it.ifdIndex < len(it.m.ifds) {
		tags := it.m.ifds[it.ifdIndex].tags
		if it.tagIndex < len(tags) {
			it.tagIndex++
			if tags[it.tagIndex-1].code == it.code {
				return &tags[it.tagIndex-1], true
			}
		} else {
			it.tagIndex = 0
			it.ifdIndex++
		}
	}
	return nil, false
}
